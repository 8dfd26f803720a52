// Package httptransport assembles the HTTP surface: middleware chain, feature
// routes, the admin group, and the operational endpoints.
package httptransport

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"anchorage/internal/platform/metrics"
	"anchorage/internal/truststore/handler"
	"anchorage/pkg/platform/httputil"
	"anchorage/pkg/platform/middleware/device"
	"anchorage/pkg/platform/middleware/metadata"
	request "anchorage/pkg/platform/middleware/request"
	"anchorage/pkg/platform/middleware/requesttime"
)

// Deps carries everything the router mounts. AdminAuth guards the management
// routes; the router refuses to start without it so a wiring mistake can
// never expose them unauthenticated.
type Deps struct {
	Logger     *slog.Logger
	Truststore *handler.Handler
	AdminAuth  func(http.Handler) http.Handler

	// HTTPMetrics is optional; without it no per-request metrics are recorded.
	HTTPMetrics *metrics.HTTPMetrics
	// Ready reports whether the backing store is reachable. nil means the
	// service is ready as soon as it is up.
	Ready func(ctx context.Context) error
}

// NewRouter wires the middleware chain and all routes.
func NewRouter(deps Deps) (http.Handler, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Truststore == nil {
		return nil, fmt.Errorf("truststore handler is required")
	}
	if deps.AdminAuth == nil {
		return nil, fmt.Errorf("admin auth middleware is required")
	}

	r := chi.NewRouter()

	r.Use(request.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(device.Middleware)
	r.Use(requesttime.Middleware)
	if deps.HTTPMetrics != nil {
		r.Use(deps.HTTPMetrics.Middleware)
	}

	deps.Truststore.Register(r)

	r.Group(func(r chi.Router) {
		r.Use(deps.AdminAuth)
		deps.Truststore.RegisterAdmin(r)
	})

	r.Get("/healthz", handleHealthz)
	r.Get("/readyz", handleReadyz(deps.Ready))
	r.Handle("/metrics", promhttp.Handler())

	return r, nil
}

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handleReadyz(ready func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ready != nil {
			if err := ready(r.Context()); err != nil {
				httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
					"status": "unavailable",
					"reason": err.Error(),
				})
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
