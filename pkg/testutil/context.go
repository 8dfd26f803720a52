package testutil

import (
	"net/http"
	"time"

	"anchorage/pkg/requestcontext"
)

// WithActor marks the request as performed by the given operator identity.
// This simulates what the admin auth middleware does for authenticated
// requests.
func WithActor(req *http.Request, actor string) *http.Request {
	return req.WithContext(requestcontext.WithActor(req.Context(), actor))
}

// WithRequestID attaches a request ID to the request context, as the request
// middleware would.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}

// WithClientMetadata attaches client IP and user agent to the request
// context, as the metadata middleware would.
func WithClientMetadata(req *http.Request, clientIP, userAgent string) *http.Request {
	return req.WithContext(requestcontext.WithClientMetadata(req.Context(), clientIP, userAgent))
}

// WithFrozenTime pins the request-scoped clock so audit timestamps are
// deterministic.
func WithFrozenTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}
