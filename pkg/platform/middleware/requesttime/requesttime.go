// Package requesttime pins one "now" per HTTP request. Audit events written
// at different points of a mutation then carry the same timestamp, so the
// trail orders by request rather than by how long each step took.
package requesttime

import (
	"net/http"
	"time"

	"anchorage/pkg/requestcontext"
)

// Middleware stamps the request context with the arrival time.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
