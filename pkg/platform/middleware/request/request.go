// Package request provides request ID middleware and context accessors.
// Every request gets an ID, either propagated from the X-Request-ID header
// or freshly generated, so log lines and audit events can be correlated.
package request

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"anchorage/pkg/requestcontext"
)

const headerRequestID = "X-Request-ID"

// Middleware attaches a request ID to the context and echoes it on the
// response so clients can report it back.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(headerRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		w.Header().Set(headerRequestID, requestID)
		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	return requestcontext.RequestID(ctx)
}

// WithRequestID injects a request ID into a context.
// Useful for service unit tests that don't run the full HTTP middleware chain.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return requestcontext.WithRequestID(ctx, requestID)
}
