package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/aurorahealth/medscheduler/pkg/logging"
)

// Recoverer converts panics into a generic 500. The panic value and stack go
// to the log only; response bodies never carry internal detail.
func Recoverer(logger *logging.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic recovered",
						"panic", rec,
						"method", r.Method,
						"path", r.URL.Path,
						"stack", string(debug.Stack()),
					)
					http.Error(w, "internal error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
