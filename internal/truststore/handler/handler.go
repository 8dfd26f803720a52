// Package handler exposes the trust-settings API over HTTP: public
// enumeration routes and the admin management surface.
package handler

import (
	"context"
	"crypto/x509"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	contracts "anchorage/contracts/truststore"
	"anchorage/internal/truststore/admin"
	"anchorage/internal/truststore/models"
	dErrors "anchorage/pkg/domain-errors"
	"anchorage/pkg/platform/audit"
	"anchorage/pkg/platform/httputil"
	request "anchorage/pkg/platform/middleware/request"
)

// Service defines the interface for trust-settings enumeration.
type Service interface {
	EnumerateUserRoots(ctx context.Context) ([]*x509.Certificate, error)
	EnumerateMachineRoots(ctx context.Context) ([]*x509.Certificate, error)
	EnumerateUserDisallowed(ctx context.Context) ([]*x509.Certificate, error)
	EnumerateMachineDisallowed(ctx context.Context) ([]*x509.Certificate, error)
}

// AdminService defines the interface for trust-settings management.
type AdminService interface {
	ListSettings(ctx context.Context, domain models.Domain) ([]admin.Entry, error)
	ReplaceSettings(ctx context.Context, domain models.Domain, cert *x509.Certificate, settings models.TrustSettings) error
	RemoveSettings(ctx context.Context, domain models.Domain, fingerprint string) error
	RecentAuditEvents(ctx context.Context, limit int) ([]audit.Event, error)
}

// Handler handles truststore endpoints.
type Handler struct {
	logger  *slog.Logger
	service Service
	admin   AdminService
}

// New creates a new truststore Handler.
func New(service Service, adminService AdminService, logger *slog.Logger) *Handler {
	return &Handler{
		logger:  logger,
		service: service,
		admin:   adminService,
	}
}

// Register registers the public enumeration routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/truststore/{scope}/roots", h.handleEnumerateRoots)
	r.Get("/truststore/{scope}/disallowed", h.handleEnumerateDisallowed)
}

// RegisterAdmin registers the management routes with the chi router. The
// caller is expected to guard them with admin authentication middleware.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/admin/truststore/{domain}/settings", h.handleListSettings)
	r.Put("/admin/truststore/{domain}/settings/{fingerprint}", h.handleReplaceSettings)
	r.Delete("/admin/truststore/{domain}/settings/{fingerprint}", h.handleRemoveSettings)
	r.Get("/admin/truststore/audit", h.handleListAudit)
}

func (h *Handler) handleEnumerateRoots(w http.ResponseWriter, r *http.Request) {
	h.handleEnumerate(w, r, models.OutcomeTrustRoot)
}

func (h *Handler) handleEnumerateDisallowed(w http.ResponseWriter, r *http.Request) {
	h.handleEnumerate(w, r, models.OutcomeDeny)
}

// handleEnumerate serves one (scope, outcome) enumeration. The response is
// either the complete ordered match collection or an error; there is no
// partial-success shape.
func (h *Handler) handleEnumerate(w http.ResponseWriter, r *http.Request, desired models.Outcome) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	scope, err := models.ParseScope(chi.URLParam(r, "scope"))
	if err != nil {
		h.logger.WarnContext(ctx, "invalid enumeration scope",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, err.Error()))
		return
	}

	certs, err := h.enumerate(ctx, scope, desired)
	if err != nil {
		h.logger.ErrorContext(ctx, "trust settings enumeration failed",
			"request_id", requestID,
			"scope", scope,
			"outcome", desired,
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnavailable, "trust settings enumeration failed"))
		return
	}

	entries := make([]contracts.CertificateEntry, 0, len(certs))
	for _, cert := range certs {
		entries = append(entries, contracts.CertificateEntry{
			Fingerprint: models.Fingerprint(cert),
			Subject:     cert.Subject.String(),
			PEM:         models.EncodePEM(cert),
		})
	}

	httputil.WriteJSON(w, http.StatusOK, contracts.EnumerateResponse{
		Scope:        scope.String(),
		Outcome:      desired.String(),
		Count:        len(entries),
		Certificates: entries,
	})
}

// enumerate dispatches to the operation matching scope and outcome.
func (h *Handler) enumerate(ctx context.Context, scope models.Scope, desired models.Outcome) ([]*x509.Certificate, error) {
	switch {
	case scope == models.ScopeUser && desired == models.OutcomeTrustRoot:
		return h.service.EnumerateUserRoots(ctx)
	case scope == models.ScopeMachine && desired == models.OutcomeTrustRoot:
		return h.service.EnumerateMachineRoots(ctx)
	case scope == models.ScopeUser:
		return h.service.EnumerateUserDisallowed(ctx)
	default:
		return h.service.EnumerateMachineDisallowed(ctx)
	}
}

func (h *Handler) handleListSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	domain, err := models.ParseDomain(chi.URLParam(r, "domain"))
	if err != nil {
		h.warnBadRequest(ctx, "invalid settings domain", err)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, err.Error()))
		return
	}

	entries, err := h.admin.ListSettings(ctx, domain)
	if err != nil {
		h.logServiceError(ctx, "failed to list trust settings", err)
		httputil.WriteError(w, err)
		return
	}

	resp := contracts.ListSettingsResponse{
		Domain:  domain.String(),
		Entries: make([]contracts.SettingsEntry, 0, len(entries)),
	}
	for _, entry := range entries {
		resp.Entries = append(resp.Entries, contracts.SettingsEntry{
			Fingerprint: models.Fingerprint(entry.Certificate),
			Subject:     entry.Certificate.Subject.String(),
			Records:     toWireRecords(entry.Settings),
		})
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleReplaceSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	domain, err := models.ParseDomain(chi.URLParam(r, "domain"))
	if err != nil {
		h.warnBadRequest(ctx, "invalid settings domain", err)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, err.Error()))
		return
	}

	var req contracts.PutSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.warnBadRequest(ctx, "invalid replace settings request", err)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	cert, err := models.ParsePEM([]byte(req.PEM))
	if err != nil {
		h.warnBadRequest(ctx, "invalid certificate in replace settings request", err)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid certificate PEM"))
		return
	}

	if !strings.EqualFold(models.Fingerprint(cert), chi.URLParam(r, "fingerprint")) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "fingerprint does not match certificate"))
		return
	}

	settings := make(models.TrustSettings, 0, len(req.Records))
	for _, record := range req.Records {
		settings = append(settings, models.Record(record))
	}

	if err := h.admin.ReplaceSettings(ctx, domain, cert, settings); err != nil {
		h.logServiceError(ctx, "failed to replace trust settings", err)
		httputil.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleRemoveSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	domain, err := models.ParseDomain(chi.URLParam(r, "domain"))
	if err != nil {
		h.warnBadRequest(ctx, "invalid settings domain", err)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, err.Error()))
		return
	}

	if err := h.admin.RemoveSettings(ctx, domain, chi.URLParam(r, "fingerprint")); err != nil {
		h.logServiceError(ctx, "failed to remove trust settings", err)
		httputil.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListAudit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	events, err := h.admin.RecentAuditEvents(ctx, limit)
	if err != nil {
		h.logServiceError(ctx, "failed to list audit events", err)
		httputil.WriteError(w, err)
		return
	}

	resp := contracts.ListAuditResponse{
		Count:  len(events),
		Events: make([]contracts.AuditEventEntry, 0, len(events)),
	}
	for _, event := range events {
		resp.Events = append(resp.Events, toWireAuditEntry(event))
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}

// warnBadRequest logs a client error with the request ID.
func (h *Handler) warnBadRequest(ctx context.Context, msg string, err error) {
	h.logger.WarnContext(ctx, msg,
		"request_id", request.GetRequestID(ctx),
		"error", err.Error(),
	)
}

// logServiceError logs a service failure at the severity its code implies.
// Client-caused errors stay at warn so operator dashboards track real faults.
func (h *Handler) logServiceError(ctx context.Context, msg string, err error) {
	args := []any{
		"request_id", request.GetRequestID(ctx),
		"error", err.Error(),
	}
	switch dErrors.CodeOf(err) {
	case dErrors.CodeBadRequest, dErrors.CodeValidation, dErrors.CodeNotFound, dErrors.CodeForbidden:
		h.logger.WarnContext(ctx, msg, args...)
	default:
		h.logger.ErrorContext(ctx, msg, args...)
	}
}

func toWireRecords(settings models.TrustSettings) []contracts.SettingsRecord {
	records := make([]contracts.SettingsRecord, 0, len(settings))
	for _, record := range settings {
		records = append(records, contracts.SettingsRecord(record))
	}
	return records
}

func toWireAuditEntry(event audit.Event) contracts.AuditEventEntry {
	return contracts.AuditEventEntry{
		Category:    string(event.Category),
		Timestamp:   event.Timestamp,
		Action:      event.Action,
		Scope:       event.Scope,
		Domain:      event.Domain,
		Outcome:     event.Outcome,
		Fingerprint: event.Fingerprint,
		Subject:     event.Subject,
		Count:       event.Count,
		Reason:      event.Reason,
		RequestID:   event.RequestID,
		Actor:       event.ActorID,
		ClientIP:    event.ClientIP,
		Device:      event.Device,
	}
}
