package api

import (
	"log/slog"
	"net/http"
	"time"
)

// AuditEvent identifies the type of security-relevant action being logged.
type AuditEvent string

const (
	AuditSignup           AuditEvent = "signup"
	AuditSignupDuplicate  AuditEvent = "signup_duplicate"
	AuditLoginSuccess     AuditEvent = "login_success"
	AuditLoginFailure     AuditEvent = "login_failure"
	AuditLoginRateLimited AuditEvent = "login_rate_limited"
	AuditAuthorizeFailure AuditEvent = "authorize_failure"
	AuditProfileUpdated   AuditEvent = "profile_updated"
)

// auditLogger wraps slog.Logger for structured security audit logging.
type auditLogger struct {
	logger  *slog.Logger
	metrics *metricsCollector
}

func newAuditLogger(logger *slog.Logger) *auditLogger {
	return &auditLogger{
		logger: logger.With("component", "audit"),
	}
}

func (al *auditLogger) log(event AuditEvent, r *http.Request, attrs ...slog.Attr) {
	baseAttrs := []slog.Attr{
		slog.String("event", string(event)),
		slog.String("remote_addr", r.RemoteAddr),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}
	baseAttrs = append(baseAttrs, attrs...)

	al.logger.LogAttrs(r.Context(), slog.LevelInfo, "audit", baseAttrs...)
	if al.metrics != nil {
		al.metrics.recordEvent(event)
	}
}

// logEvent records a successful action. userID may be empty when the event
// is not tied to a known account.
func (al *auditLogger) logEvent(event AuditEvent, r *http.Request, userID string, extra ...slog.Attr) {
	attrs := make([]slog.Attr, 0, len(extra)+1)
	if userID != "" {
		attrs = append(attrs, slog.String("user_id", userID))
	}
	attrs = append(attrs, extra...)
	al.log(event, r, attrs...)
}

// logFailure records a rejected action with its internal reason. The reason
// stays server-side; responses carry only the collapsed message.
func (al *auditLogger) logFailure(event AuditEvent, r *http.Request, reason string, extra ...slog.Attr) {
	attrs := append([]slog.Attr{slog.String("reason", reason)}, extra...)
	al.log(event, r, attrs...)
}

// logError records an unexpected internal error with full detail.
func (al *auditLogger) logError(r *http.Request, err error) {
	al.logger.LogAttrs(r.Context(), slog.LevelError, "internal error",
		slog.String("remote_addr", r.RemoteAddr),
		slog.String("error", err.Error()),
	)
}
