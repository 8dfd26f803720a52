package admin

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"anchorage/internal/truststore/models"
	"anchorage/internal/truststore/ports/mocks"
	"anchorage/internal/truststore/store/settings"
	dErrors "anchorage/pkg/domain-errors"
	audit "anchorage/pkg/platform/audit"
	"anchorage/pkg/platform/audit/publisher"
	auditmem "anchorage/pkg/platform/audit/store/memory"
	"anchorage/pkg/platform/sentinel"
	"anchorage/pkg/requestcontext"
	"anchorage/pkg/testutil"
)

// =============================================================================
// Admin Service Test Suite
// =============================================================================
// Justification for unit tests: the admin service manages trust-settings
// mutations. Tests verify constructor invariants, input validation, error
// code mapping, and audit event emission.

type AdminServiceSuite struct {
	suite.Suite
	store      *settings.InMemoryStore
	auditStore *auditmem.InMemoryStore
	pub        *publisher.Publisher
	service    *Service
}

func TestAdminServiceSuite(t *testing.T) {
	suite.Run(t, new(AdminServiceSuite))
}

func (s *AdminServiceSuite) SetupTest() {
	s.store = settings.NewInMemoryStore()
	s.auditStore = auditmem.NewInMemoryStore()
	s.pub = publisher.NewPublisher(s.auditStore)

	var err error
	s.service, err = New(s.store, s.store,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithAuditPublisher(s.pub),
		WithAuditLog(s.auditStore),
	)
	s.Require().NoError(err)
}

func (s *AdminServiceSuite) TearDownTest() {
	s.pub.Close()
}

// auditedActions returns the actions recorded so far, oldest first.
func (s *AdminServiceSuite) auditedActions() []string {
	events, err := s.auditStore.ListAll(context.Background())
	s.Require().NoError(err)
	actions := make([]string, 0, len(events))
	for _, event := range events {
		actions = append(actions, event.Action)
	}
	return actions
}

// =============================================================================
// Constructor Tests (Invariant Enforcement)
// =============================================================================

func (s *AdminServiceSuite) TestNew() {
	s.Run("nil store returns error", func() {
		_, err := New(nil, s.store)
		s.Error(err)
		s.Contains(err.Error(), "store is required")
	})

	s.Run("nil settings writer returns error", func() {
		_, err := New(s.store, nil)
		s.Error(err)
		s.Contains(err.Error(), "settings writer is required")
	})

	s.Run("valid dependencies return configured service", func() {
		svc, err := New(s.store, s.store)
		s.NoError(err)
		s.NotNil(svc)
	})

	s.Run("with options applies options", func() {
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		svc, err := New(s.store, s.store,
			WithLogger(logger),
			WithAuditPublisher(s.pub),
			WithAuditLog(s.auditStore),
		)
		s.NoError(err)
		s.Equal(logger, svc.logger)
		s.Equal(s.pub, svc.auditPublisher)
		s.Equal(s.auditStore, svc.auditLog)
	})
}

// =============================================================================
// ListSettings Tests
// =============================================================================

func (s *AdminServiceSuite) TestListSettings() {
	ctx := context.Background()

	s.Run("rejects unknown domain", func() {
		_, err := s.service.ListSettings(ctx, models.Domain(42))
		s.True(dErrors.Is(err, dErrors.CodeBadRequest))
	})

	s.Run("empty domain yields empty list", func() {
		entries, err := s.service.ListSettings(ctx, models.DomainUser)
		s.NoError(err)
		s.Empty(entries)
		s.NotNil(entries, "callers must be able to range without a nil check")
	})

	s.Run("returns certificates with settings in store order", func() {
		first := testutil.NewTestCert(s.T(), "First Root")
		second := testutil.NewTestCert(s.T(), "Second Root")
		s.Require().NoError(s.store.PutSettings(ctx, models.DomainAdmin, first, nil))
		s.Require().NoError(s.store.PutSettings(ctx, models.DomainAdmin, second,
			models.TrustSettings{{models.KeyResult: models.OutcomeDeny}}))

		entries, err := s.service.ListSettings(ctx, models.DomainAdmin)
		s.NoError(err)
		s.Require().Len(entries, 2)
		s.Equal(models.Fingerprint(first), models.Fingerprint(entries[0].Certificate))
		s.Empty(entries[0].Settings)
		s.Equal(models.Fingerprint(second), models.Fingerprint(entries[1].Certificate))
		s.Require().Len(entries[1].Settings, 1)
	})

	s.Run("store failure maps to unavailable", func() {
		ctrl := gomock.NewController(s.T())
		store := mocks.NewMockStore(ctrl)
		store.EXPECT().
			CertificatesWithSettings(gomock.Any(), models.DomainUser).
			Return(nil, errors.New("connection refused"))

		svc, err := New(store, s.store)
		s.Require().NoError(err)

		_, err = svc.ListSettings(ctx, models.DomainUser)
		s.True(dErrors.Is(err, dErrors.CodeUnavailable))
	})
}

// =============================================================================
// ReplaceSettings Tests
// =============================================================================

func (s *AdminServiceSuite) TestReplaceSettings() {
	ctx := context.Background()

	s.Run("rejects unknown domain", func() {
		cert := testutil.NewTestCert(s.T(), "Root")
		err := s.service.ReplaceSettings(ctx, models.Domain(42), cert, nil)
		s.True(dErrors.Is(err, dErrors.CodeBadRequest))
	})

	s.Run("rejects nil certificate", func() {
		err := s.service.ReplaceSettings(ctx, models.DomainUser, nil, nil)
		s.True(dErrors.Is(err, dErrors.CodeBadRequest))
	})

	s.Run("stores settings and audits the mutation", func() {
		cert := testutil.NewTestCert(s.T(), "Deny Root")
		deny := models.TrustSettings{{models.KeyResult: models.OutcomeDeny}}
		ctx := requestcontext.WithActor(context.Background(), "operator@example.com")

		s.Require().NoError(s.service.ReplaceSettings(ctx, models.DomainUser, cert, deny))

		stored, err := s.store.TrustSettings(ctx, models.DomainUser, cert)
		s.NoError(err)
		s.Equal(deny, stored)

		events, err := s.auditStore.ListAll(context.Background())
		s.Require().NoError(err)
		s.Require().Len(events, 1)
		s.Equal(string(audit.EventSettingsReplaced), events[0].Action)
		s.Equal("user", events[0].Domain)
		s.Equal(models.Fingerprint(cert), events[0].Fingerprint)
		s.Equal("deny", events[0].Outcome)
		s.Equal("operator@example.com", events[0].ActorID)
	})

	s.Run("empty settings audit as trust root", func() {
		cert := testutil.NewTestCert(s.T(), "Plain Root")

		s.Require().NoError(s.service.ReplaceSettings(ctx, models.DomainSystem, cert, nil))

		events, err := s.auditStore.ListAll(context.Background())
		s.Require().NoError(err)
		s.Require().NotEmpty(events)
		s.Equal("trust_root", events[len(events)-1].Outcome)
	})

	s.Run("read-only writer maps to forbidden", func() {
		ctrl := gomock.NewController(s.T())
		writer := mocks.NewMockSettingsWriter(ctrl)
		writer.EXPECT().
			PutSettings(gomock.Any(), models.DomainUser, gomock.Any(), gomock.Any()).
			Return(sentinel.ErrReadOnly)

		svc, err := New(s.store, writer)
		s.Require().NoError(err)

		err = svc.ReplaceSettings(ctx, models.DomainUser, testutil.NewTestCert(s.T(), "Root"), nil)
		s.True(dErrors.Is(err, dErrors.CodeForbidden))
	})

	s.Run("writer failure maps to unavailable and skips audit", func() {
		ctrl := gomock.NewController(s.T())
		writer := mocks.NewMockSettingsWriter(ctrl)
		writer.EXPECT().
			PutSettings(gomock.Any(), models.DomainUser, gomock.Any(), gomock.Any()).
			Return(errors.New("disk full"))

		svc, err := New(s.store, writer, WithAuditPublisher(s.pub))
		s.Require().NoError(err)

		before := len(s.auditedActions())
		err = svc.ReplaceSettings(ctx, models.DomainUser, testutil.NewTestCert(s.T(), "Root"), nil)
		s.True(dErrors.Is(err, dErrors.CodeUnavailable))
		s.Len(s.auditedActions(), before, "failed mutations must not be audited as applied")
	})
}

// =============================================================================
// RemoveSettings Tests
// =============================================================================

func (s *AdminServiceSuite) TestRemoveSettings() {
	ctx := context.Background()

	s.Run("rejects empty fingerprint", func() {
		err := s.service.RemoveSettings(ctx, models.DomainUser, "")
		s.True(dErrors.Is(err, dErrors.CodeBadRequest))
	})

	s.Run("missing fingerprint maps to not found", func() {
		err := s.service.RemoveSettings(ctx, models.DomainUser, "no-such-fingerprint")
		s.True(dErrors.Is(err, dErrors.CodeNotFound))
	})

	s.Run("removes settings and audits the mutation", func() {
		cert := testutil.NewTestCert(s.T(), "Short Lived Root")
		s.Require().NoError(s.store.PutSettings(ctx, models.DomainAdmin, cert, nil))
		fingerprint := models.Fingerprint(cert)

		s.Require().NoError(s.service.RemoveSettings(ctx, models.DomainAdmin, fingerprint))

		entries, err := s.service.ListSettings(ctx, models.DomainAdmin)
		s.NoError(err)
		s.Empty(entries)

		events, err := s.auditStore.ListAll(context.Background())
		s.Require().NoError(err)
		s.Require().Len(events, 1)
		s.Equal(string(audit.EventSettingsRemoved), events[0].Action)
		s.Equal("admin", events[0].Domain)
		s.Equal(fingerprint, events[0].Fingerprint)
	})
}

// =============================================================================
// RecentAuditEvents Tests
// =============================================================================

func (s *AdminServiceSuite) TestRecentAuditEvents() {
	ctx := context.Background()

	s.Run("unconfigured audit log maps to unavailable", func() {
		svc, err := New(s.store, s.store)
		s.Require().NoError(err)

		_, err = svc.RecentAuditEvents(ctx, 10)
		s.True(dErrors.Is(err, dErrors.CodeUnavailable))
	})

	s.Run("caps and defaults the limit", func() {
		for i := 0; i < 3; i++ {
			cert := testutil.NewTestCert(s.T(), "Audit Root")
			s.Require().NoError(s.service.ReplaceSettings(ctx, models.DomainUser, cert, nil))
		}

		events, err := s.service.RecentAuditEvents(ctx, 2)
		s.NoError(err)
		s.Len(events, 2)

		all, err := s.service.RecentAuditEvents(ctx, 0)
		s.NoError(err)
		s.Len(all, 3, "non-positive limit falls back to the default page size")
	})
}
