// Package admin guards the admin API with a static operator token.
package admin

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	dErrors "anchorage/pkg/domain-errors"
	"anchorage/pkg/platform/httputil"
	request "anchorage/pkg/platform/middleware/request"
)

// RequireAdminToken rejects requests whose X-Admin-Token header does not
// match expectedToken. An empty expectedToken locks the surface entirely,
// so a missing deployment secret fails closed rather than open.
func RequireAdminToken(expectedToken string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			presented := r.Header.Get("X-Admin-Token")

			// Constant-time comparison; the token is a bearer secret.
			match := subtle.ConstantTimeCompare([]byte(presented), []byte(expectedToken)) == 1
			if expectedToken == "" || !match {
				logger.WarnContext(r.Context(), "admin token rejected",
					"request_id", request.GetRequestID(r.Context()),
					"path", r.URL.Path,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "admin token required"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
