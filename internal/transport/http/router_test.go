package httptransport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"anchorage/internal/admintoken"
	"anchorage/internal/platform/metrics"
	"anchorage/internal/truststore/admin"
	"anchorage/internal/truststore/handler"
	"anchorage/internal/truststore/models"
	"anchorage/internal/truststore/service"
	"anchorage/internal/truststore/store/settings"
	"anchorage/pkg/platform/audit/publisher"
	auditmem "anchorage/pkg/platform/audit/store/memory"
	adminmw "anchorage/pkg/platform/middleware/admin"
	authmw "anchorage/pkg/platform/middleware/auth"
	"anchorage/pkg/testutil"
)

const testAdminToken = "router-suite-admin-token"

// RouterSuite exercises the assembled HTTP surface: middleware order, route
// guarding, and the operational endpoints.
type RouterSuite struct {
	suite.Suite
	logger  *slog.Logger
	metrics *metrics.HTTPMetrics

	store      *settings.InMemoryStore
	auditStore *auditmem.InMemoryStore
	pub        *publisher.Publisher
	truststore *handler.Handler
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupSuite() {
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	// promauto registers against the default registry, so construct once for
	// the whole suite.
	s.metrics = metrics.NewHTTP()
}

func (s *RouterSuite) SetupTest() {
	s.store = settings.NewInMemoryStore()
	s.auditStore = auditmem.NewInMemoryStore()
	s.pub = publisher.NewPublisher(s.auditStore)

	svc, err := service.New(s.store, service.WithLogger(s.logger))
	s.Require().NoError(err)

	adminSvc, err := admin.New(s.store, s.store,
		admin.WithLogger(s.logger),
		admin.WithAuditPublisher(s.pub),
		admin.WithAuditLog(s.auditStore),
	)
	s.Require().NoError(err)

	s.truststore = handler.New(svc, adminSvc, s.logger)
}

func (s *RouterSuite) TearDownTest() {
	s.pub.Close()
}

// newRouter assembles a router with token-based admin auth and the suite's
// shared metrics.
func (s *RouterSuite) newRouter() http.Handler {
	router, err := NewRouter(Deps{
		Logger:      s.logger,
		Truststore:  s.truststore,
		AdminAuth:   adminmw.RequireAdminToken(testAdminToken, s.logger),
		HTTPMetrics: s.metrics,
	})
	s.Require().NoError(err)
	return router
}

func (s *RouterSuite) serve(router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// =============================================================================
// Dependency Validation
// =============================================================================

func (s *RouterSuite) TestNewRouter_MissingDeps() {
	adminAuth := adminmw.RequireAdminToken(testAdminToken, s.logger)

	cases := []struct {
		name string
		deps Deps
	}{
		{"no logger", Deps{Truststore: s.truststore, AdminAuth: adminAuth}},
		{"no handler", Deps{Logger: s.logger, AdminAuth: adminAuth}},
		{"no admin auth", Deps{Logger: s.logger, Truststore: s.truststore}},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			router, err := NewRouter(tc.deps)
			s.Error(err)
			s.Nil(router)
		})
	}
}

// =============================================================================
// Route Guarding
// =============================================================================

func (s *RouterSuite) TestPublicRoutesNeedNoCredentials() {
	router := s.newRouter()

	rec := s.serve(router, httptest.NewRequest(http.MethodGet, "/truststore/user/roots", nil))
	s.Equal(http.StatusOK, rec.Code)

	rec = s.serve(router, httptest.NewRequest(http.MethodGet, "/truststore/machine/disallowed", nil))
	s.Equal(http.StatusOK, rec.Code)
}

func (s *RouterSuite) TestAdminRoutesRejectMissingToken() {
	router := s.newRouter()

	rec := s.serve(router, httptest.NewRequest(http.MethodGet, "/admin/truststore/user/settings", nil))
	s.Equal(http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/admin/truststore/audit", nil)
	req.Header.Set("X-Admin-Token", "not-the-token")
	rec = s.serve(router, req)
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *RouterSuite) TestAdminRoutesAcceptToken() {
	router := s.newRouter()

	req := httptest.NewRequest(http.MethodGet, "/admin/truststore/user/settings", nil)
	req.Header.Set("X-Admin-Token", testAdminToken)
	rec := s.serve(router, req)
	s.Equal(http.StatusOK, rec.Code)
}

func (s *RouterSuite) TestAdminRoutesWithBearerAuth() {
	tokens, err := admintoken.New("router-suite-signing-key", "anchorage-test", "anchorage-admin")
	s.Require().NoError(err)

	router, err := NewRouter(Deps{
		Logger:     s.logger,
		Truststore: s.truststore,
		AdminAuth:  authmw.RequireAuth(admintoken.NewServiceAdapter(tokens), s.logger),
	})
	s.Require().NoError(err)

	rec := s.serve(router, httptest.NewRequest(http.MethodGet, "/admin/truststore/user/settings", nil))
	s.Equal(http.StatusUnauthorized, rec.Code, "missing bearer token must be rejected")

	minted, err := tokens.Mint("ops@example.test", time.Minute)
	s.Require().NoError(err)

	cert := testutil.NewTestCert(s.T(), "Bearer Managed Root")
	body, err := json.Marshal(map[string]any{"pem": models.EncodePEM(cert)})
	s.Require().NoError(err)

	req := httptest.NewRequest(http.MethodPut,
		"/admin/truststore/user/settings/"+models.Fingerprint(cert), bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+minted)
	req.Header.Set("Content-Type", "application/json")
	rec = s.serve(router, req)
	s.Require().Equal(http.StatusNoContent, rec.Code)

	// The authenticated subject flows through the context into the audit
	// trail.
	events, err := s.auditStore.ListAll(context.Background())
	s.Require().NoError(err)
	s.Require().NotEmpty(events)
	s.Equal("ops@example.test", events[0].ActorID)
}

// =============================================================================
// Operational Endpoints
// =============================================================================

func (s *RouterSuite) TestHealthz() {
	rec := s.serve(s.newRouter(), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"status":"ok"}`, rec.Body.String())
}

func (s *RouterSuite) TestReadyz_NoCheckMeansReady() {
	rec := s.serve(s.newRouter(), httptest.NewRequest(http.MethodGet, "/readyz", nil))
	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"status":"ready"}`, rec.Body.String())
}

func (s *RouterSuite) TestReadyz_FailingCheck() {
	router, err := NewRouter(Deps{
		Logger:     s.logger,
		Truststore: s.truststore,
		AdminAuth:  adminmw.RequireAdminToken(testAdminToken, s.logger),
		Ready: func(context.Context) error {
			return errors.New("store unreachable")
		},
	})
	s.Require().NoError(err)

	rec := s.serve(router, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	s.Equal(http.StatusServiceUnavailable, rec.Code)
	s.Contains(rec.Body.String(), "store unreachable")
}

func (s *RouterSuite) TestMetricsEndpointExposesRequestCounts() {
	router := s.newRouter()

	rec := s.serve(router, httptest.NewRequest(http.MethodGet, "/truststore/user/roots", nil))
	s.Require().Equal(http.StatusOK, rec.Code)

	rec = s.serve(router, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "anchorage_http_requests_total")
	s.Contains(rec.Body.String(), `route="/truststore/{scope}/roots"`,
		"metrics must label by route pattern, not raw path")
}

func (s *RouterSuite) TestRequestIDEchoedOnResponse() {
	router := s.newRouter()

	rec := s.serve(router, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	s.NotEmpty(rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "caller-supplied-id")
	rec = s.serve(router, req)
	s.Equal("caller-supplied-id", rec.Header().Get("X-Request-ID"))
}
