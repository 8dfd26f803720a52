// Package observability glues structured logging and audit emission for the
// truststore module.
package observability

import (
	"context"
	"log/slog"

	"anchorage/internal/truststore/ports"
	audit "anchorage/pkg/platform/audit"
	"anchorage/pkg/requestcontext"
)

// LogAudit logs an audit event and forwards it to the audit publisher when
// one is configured. Request-scoped metadata (request ID, client IP, device,
// actor) is filled in from the context so callers only set domain fields.
func LogAudit(ctx context.Context, logger *slog.Logger, publisher ports.AuditPublisher, event audit.Event, attrs ...any) {
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if event.ClientIP == "" {
		event.ClientIP = requestcontext.ClientIP(ctx)
	}
	if event.Device == "" {
		event.Device = requestcontext.DeviceName(ctx)
	}
	if event.ActorID == "" {
		event.ActorID = requestcontext.Actor(ctx)
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}

	if logger != nil {
		args := append(attrs, "event", event.Action, "log_type", "audit")
		if event.RequestID != "" {
			args = append(args, "request_id", event.RequestID)
		}
		logger.InfoContext(ctx, event.Action, args...)
	}

	if publisher == nil {
		return
	}
	if err := publisher.Emit(ctx, event); err != nil && logger != nil {
		logger.WarnContext(ctx, "failed to emit audit event", "event", event.Action, "error", err)
	}
}
