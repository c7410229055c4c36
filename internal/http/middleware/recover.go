package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/pdishant5/Might-Ampora-Backend/internal/httputil"
)

// Recover creates middleware that recovers from handler panics and returns
// an opaque server error.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic recovered",
						"panic", rec,
						"path", r.URL.Path,
						"stack", string(debug.Stack()),
					)
					httputil.Error(w, http.StatusInternalServerError, "internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
