package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/ta9ss/weather-service/internal/catalog"
	"github.com/ta9ss/weather-service/internal/lifecycle"
	"github.com/ta9ss/weather-service/internal/models"
	"github.com/ta9ss/weather-service/internal/observability"
)

// WeatherCatalog is the lookup surface the handlers need from catalog.Catalog.
type WeatherCatalog interface {
	Lookup(city string) (models.WeatherRecord, error)
	Mode() catalog.Mode
	Cities() []string
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	catalog WeatherCatalog
	logger  *zap.Logger
}

// NewHandler returns a new Handler.
func NewHandler(c WeatherCatalog, logger *zap.Logger) *Handler {
	return &Handler{
		catalog: c,
		logger:  observability.SafeLogger(logger),
	}
}

// GetRoot handles GET /.
func (h *Handler) GetRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Welcome to ta9ss Weather API",
		"mode":    h.catalog.Mode(),
		"cities":  h.catalog.Cities(),
	})
}

// GetHealth handles GET /health. It is a liveness probe and never consults the catalog.
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// GetReady handles GET /ready. Returns 503 once graceful shutdown has begun.
func (h *Handler) GetReady(w http.ResponseWriter, r *http.Request) {
	if lifecycle.IsShuttingDown() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "shutting-down"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// GetWeather handles GET /weather/{city}.
func (h *Handler) GetWeather(w http.ResponseWriter, r *http.Request) {
	if err := r.Context().Err(); err != nil {
		writeError(w, r, http.StatusServiceUnavailable, "TIMEOUT", "Request timed out")
		return
	}

	city := cityFromPath(r)
	record, err := h.catalog.Lookup(city)
	if err != nil {
		var notFound *catalog.NotFoundError
		if errors.As(err, &notFound) {
			observability.CityNotSupportedTotal.Inc()
			LoggerFromContext(r.Context(), h.logger).Warn("city not supported", zap.String("city", notFound.City))
			writeError(w, r, http.StatusNotFound, "CITY_NOT_SUPPORTED", notFound.Error())
			return
		}
		LoggerFromContext(r.Context(), h.logger).Error("weather lookup failed", zap.String("city", city), zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "INTERNAL", "Internal server error")
		return
	}

	observability.RecordWeatherQuery(record.City)
	writeJSON(w, http.StatusOK, record)
}

// cityFromPath returns the {city} segment decoded once. The router matches on the
// escaped path, so "new%2Fyork" arrives as one segment and decodes to "new/york".
func cityFromPath(r *http.Request) string {
	raw := mux.Vars(r)["city"]
	if city, err := url.PathUnescape(raw); err == nil {
		return city
	}
	return raw
}

// NotFound answers requests that match no route.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusNotFound, "NOT_FOUND", "Not found")
}

// MethodNotAllowed answers requests whose path matched with the wrong method.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
}

// writeJSON writes a JSON response with the specified HTTP status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Detail  string `json:"detail"`
	Code    string `json:"code"`
	TraceID string `json:"traceId,omitempty"`
}

// writeError writes detail, code, and the trace id from the request context.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, detail string) {
	writeJSON(w, status, errorBody{
		Detail:  detail,
		Code:    code,
		TraceID: TraceIDFromContext(r.Context()),
	})
}
