package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ta9ss/weather-service/internal/observability"
)

// RouterConfig holds what NewRouter needs to assemble the service.
type RouterConfig struct {
	Catalog        WeatherCatalog
	Logger         *zap.Logger
	StaticDir      string // empty disables the /static/ mount
	RequestTimeout time.Duration
	RateLimiter    *rate.Limiter // nil disables rate limiting
	NewTraceID     func() string // nil uses uuid.NewString
}

// NewRouter builds the route table and wraps it in the middleware chain:
// trace, then metrics, then recovery, then the router. The /weather subrouter adds rate limit and timeout.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := observability.SafeLogger(cfg.Logger)
	handler := NewHandler(cfg.Catalog, logger)

	// Match on the escaped path without cleaning so every /weather/{city}
	// segment, including "..", "." and an encoded "/", reaches the handler.
	router := mux.NewRouter().UseEncodedPath().SkipClean(true)
	router.NotFoundHandler = http.HandlerFunc(NotFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(MethodNotAllowed)

	router.HandleFunc("/", handler.GetRoot).Methods(http.MethodGet)
	router.HandleFunc("/health", handler.GetHealth).Methods(http.MethodGet)
	router.HandleFunc("/ready", handler.GetReady).Methods(http.MethodGet)
	router.Handle("/metrics", observability.MetricsHandler()).Methods(http.MethodGet)

	weatherRouter := router.PathPrefix("/weather").Subrouter()
	weatherRouter.Use(RateLimitMiddleware(cfg.RateLimiter))
	weatherRouter.Use(TimeoutMiddleware(cfg.RequestTimeout))
	weatherRouter.HandleFunc("/{city}", handler.GetWeather).Methods(http.MethodGet)

	if cfg.StaticDir != "" {
		router.PathPrefix(StaticPrefix).Handler(StaticHandler(cfg.StaticDir, logger)).Methods(http.MethodGet, http.MethodHead)
	}

	return Chain(router,
		TraceMiddleware(logger, cfg.NewTraceID),
		MetricsMiddleware,
		RecoveryMiddleware(logger),
	)
}
