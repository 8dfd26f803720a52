// Package metadata captures where a request came from. The client IP and
// User-Agent land in the request context so audit events can record them
// without touching net/http.
package metadata

import (
	"net/http"
	"strings"

	"anchorage/pkg/requestcontext"
)

// ClientMetadata stores the client IP and User-Agent in the request context.
// Apply it early; downstream middleware (device naming) and audit enrichment
// read these values.
func ClientMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithClientMetadata(r.Context(), clientIP(r), r.Header.Get("User-Agent"))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// clientIP resolves the originating address when the service sits behind
// proxies or a load balancer. X-Forwarded-For lists client first, then each
// proxy hop; X-Real-IP is the nginx convention; RemoteAddr carries a port
// that must be stripped (IPv6 addresses are bracketed, so the last colon is
// the separator either way).
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	if addr := r.RemoteAddr; addr != "" {
		if idx := strings.LastIndex(addr, ":"); idx != -1 {
			return addr[:idx]
		}
		return addr
	}

	return "unknown"
}
