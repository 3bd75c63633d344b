package http

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ta9ss/weather-service/internal/observability"
)

// Chain wraps h with mws. The first middleware is the outermost: it sees the
// request first and the response last.
func Chain(h http.Handler, mws ...mux.MiddlewareFunc) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// TraceMiddleware assigns a fresh trace id to every request, stamps it on the
// response header before the handler runs, and emits one access log record
// (request_processed) once the handler returns or unwinds. Inbound trace headers
// are ignored. newID defaults to uuid.NewString.
//
// The request logger placed in the context drops entries its core cannot write,
// so no log call downstream can fail the request.
func TraceMiddleware(logger *zap.Logger, newID func() string) mux.MiddlewareFunc {
	logger = observability.SafeLogger(logger)
	if newID == nil {
		newID = uuid.NewString
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			traceID := newID()
			w.Header().Set(HeaderTraceID, traceID)

			reqLogger := logger.With(zap.String("trace_id", traceID))
			r = r.WithContext(withTrace(r.Context(), traceID, reqLogger))
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			start := time.Now()
			completed := false
			defer func() {
				status := statusOrOK(ww.Status())
				if !completed && ww.Status() == 0 {
					status = http.StatusInternalServerError
				}
				logger.Info("request_processed",
					zap.String("trace_id", traceID),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", status),
					zap.Float64("duration", roundSeconds(time.Since(start))),
				)
			}()
			next.ServeHTTP(ww, r)
			completed = true
		})
	}
}

// roundSeconds returns d in seconds rounded to 4 decimal places (0.1ms).
func roundSeconds(d time.Duration) float64 {
	return math.Round(d.Seconds()*1e4) / 1e4
}

// statusOrOK maps "nothing written" to the 200 net/http sends implicitly.
func statusOrOK(code int) int {
	if code == 0 {
		return http.StatusOK
	}
	return code
}

// MetricsMiddleware records request count, latency, and in-flight gauge per route template.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		globalInFlightTracker.Increment()
		observability.HTTPRequestsInFlight.Inc()
		defer func() {
			observability.HTTPRequestsInFlight.Dec()
			globalInFlightTracker.Decrement()
		}()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		duration := time.Since(start).Seconds()
		route := getRoute(r)
		method := r.Method
		statusCode := statusCodeString(statusOrOK(ww.Status()))

		observability.HTTPRequestsTotal.WithLabelValues(method, route, statusCode).Inc()
		observability.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration)
	})
}

// getRoute maps a path to a bounded route label for metrics.
func getRoute(r *http.Request) string {
	path := r.URL.Path
	switch {
	case path == "/", path == "/health", path == "/ready", path == "/metrics":
		return path
	case strings.HasPrefix(path, "/weather/"):
		return "/weather/{city}"
	case strings.HasPrefix(path, StaticPrefix):
		return StaticPrefix + "*"
	default:
		return "other"
	}
}

// statusCodeString buckets a status code into its class, e.g. 404 -> "4xx".
func statusCodeString(code int) string {
	return fmt.Sprintf("%dxx", code/100)
}

// RecoveryMiddleware turns a handler panic into a 500 with a generic body.
// The panic value and stack go to the log only. http.ErrAbortHandler is re-raised.
func RecoveryMiddleware(logger *zap.Logger) mux.MiddlewareFunc {
	logger = observability.SafeLogger(logger)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			defer func() {
				p := recover()
				if p == nil {
					return
				}
				if p == http.ErrAbortHandler {
					panic(p)
				}
				observability.PanicsRecoveredTotal.Inc()
				LoggerFromContext(r.Context(), logger).Error("handler panic",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Any("panic", p),
					zap.Stack("stack"),
				)
				if ww.Status() == 0 {
					writeError(ww, r, http.StatusInternalServerError, "INTERNAL", "Internal server error")
				}
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

// TimeoutMiddleware sets a deadline on the request context. When exceeded, downstream handlers
// observe context.DeadlineExceeded. Apply only to routes that need it (e.g. /weather).
// A non-positive timeout disables it.
func TimeoutMiddleware(timeout time.Duration) mux.MiddlewareFunc {
	if timeout <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RateLimitMiddleware returns 429 when the token bucket is exhausted. Disabled when limiter is nil.
func RateLimitMiddleware(limiter *rate.Limiter) mux.MiddlewareFunc {
	if limiter == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				LoggerFromContext(r.Context(), nil).Debug("rate limit denied")
				observability.RateLimitDeniedTotal.Inc()
				writeError(w, r, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
