package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/time/rate"

	"github.com/ta9ss/weather-service/internal/catalog"
	"github.com/ta9ss/weather-service/internal/config"
	httphandler "github.com/ta9ss/weather-service/internal/http"
	"github.com/ta9ss/weather-service/internal/lifecycle"
	"github.com/ta9ss/weather-service/internal/observability"
)

func main() {
	logger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}

	var stopSink func() error
	if cfg.LogBuffered {
		sink, stop := observability.NewBufferedSink(zapcore.Lock(os.Stderr), time.Second)
		logger = observability.NewLoggerWithSink(sink, observability.ParseLogLevel(os.Getenv("LOG_LEVEL")))
		stopSink = stop
	}
	defer func() { _ = logger.Sync() }()

	cat, err := catalog.New(cfg.CatalogMode, cfg.StaticEntries, cfg.Cities)
	if err != nil {
		logger.Fatal("catalog", zap.Error(err))
	}
	observability.SetTrackedCities(cat.Cities())
	logger.Info("catalog ready",
		zap.String("env", cfg.EnvName),
		zap.String("mode", string(cat.Mode())),
		zap.Strings("cities", cat.Cities()),
	)

	var limiter *rate.Limiter
	if cfg.RateLimitRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	}

	if cfg.StaticDir != "" {
		if info, err := os.Stat(cfg.StaticDir); err != nil || !info.IsDir() {
			logger.Warn("static directory unavailable; assets will 404", zap.String("dir", cfg.StaticDir))
		}
	}

	router := httphandler.NewRouter(httphandler.RouterConfig{
		Catalog:        cat,
		Logger:         logger,
		StaticDir:      cfg.StaticDir,
		RequestTimeout: cfg.RequestTimeout,
		RateLimiter:    limiter,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", cfg.Addr()))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	<-ctx.Done()
	stop()

	logger.Info("graceful shutdown triggered")
	lifecycle.SetShuttingDown(true)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}

	logger.Info("waiting for in-flight requests", zap.Int64("count", httphandler.InFlightCount()))
	waitCtx, waitCancel := context.WithTimeout(context.Background(), cfg.InFlightTimeout)
	defer waitCancel()
	if err := httphandler.WaitForInFlight(waitCtx, cfg.InFlightCheckInterval); err != nil {
		logger.Warn("in-flight requests not completed", zap.Error(err), zap.Int64("remaining", httphandler.InFlightCount()))
	}

	logger.Info("shutdown complete")
	flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer flushCancel()
	if err := observability.FlushTelemetry(flushCtx, logger, stopSink); err != nil {
		fmt.Fprintf(os.Stderr, "telemetry flush: %v\n", err)
	}
}
