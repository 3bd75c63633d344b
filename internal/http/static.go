package http

import (
	"net/http"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/ta9ss/weather-service/internal/observability"
)

// StaticPrefix is the path under which static assets are mounted.
const StaticPrefix = "/static/"

// StaticHandler serves files under dir byte-for-byte. Missing files and
// directories answer 404 JSON and log a warning; directories are never listed.
func StaticHandler(dir string, logger *zap.Logger) http.Handler {
	root := http.Dir(dir)
	logger = observability.SafeLogger(logger)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := path.Clean("/" + strings.TrimPrefix(r.URL.Path, StaticPrefix))

		f, err := root.Open(name)
		if err != nil {
			assetNotFound(w, r, logger, name)
			return
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil || info.IsDir() {
			assetNotFound(w, r, logger, name)
			return
		}
		http.ServeContent(w, r, info.Name(), info.ModTime(), f)
	})
}

func assetNotFound(w http.ResponseWriter, r *http.Request, logger *zap.Logger, name string) {
	observability.StaticNotFoundTotal.Inc()
	LoggerFromContext(r.Context(), logger).Warn("static asset not found", zap.String("asset", name))
	writeError(w, r, http.StatusNotFound, "ASSET_NOT_FOUND", "Asset not found: "+name)
}
