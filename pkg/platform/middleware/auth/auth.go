package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	request "anchorage/pkg/platform/middleware/request"
	"anchorage/pkg/requestcontext"
)

// TokenValidator defines the interface for validating bearer tokens.
type TokenValidator interface {
	ValidateToken(tokenString string) (*TokenClaims, error)
}

// TokenClaims represents the claims we expect from the token validator.
type TokenClaims struct {
	Subject string
	Role    string
	JTI     string
}

// GetActor retrieves the authenticated subject from the context.
func GetActor(ctx context.Context) string {
	return requestcontext.Actor(ctx)
}

// writeJSONError writes a JSON error response with the given status code and error details.
func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"%s","error_description":"%s"}`, errCode, errDesc))
}

func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			const bearerPrefix = "Bearer "
			if after, ok := strings.CutPrefix(authHeader, bearerPrefix); ok {
				token := after
				claims, err := validator.ValidateToken(token)
				if err != nil {
					ctx := r.Context()
					requestID := request.GetRequestID(ctx)
					logger.WarnContext(ctx, "unauthorized access - invalid token",
						"error", err,
						"request_id", requestID,
					)
					writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
					return
				}

				ctx := requestcontext.WithActor(r.Context(), claims.Subject)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			// No Authorization header or invalid format
			ctx := r.Context()
			requestID := request.GetRequestID(ctx)
			logger.WarnContext(ctx, "unauthorized access - missing token",
				"request_id", requestID,
			)
			writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header")
		})
	}
}
