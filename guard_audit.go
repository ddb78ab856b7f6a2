package goGuard

import (
	"context"
	"errors"
	"time"

	"github.com/MrEthical07/goGuard/navigate"
	"github.com/MrEthical07/goGuard/session"
)

const (
	auditEventInitializeTriggered = "initialize_triggered"
	auditEventLogoutForced        = "logout_forced"
	auditEventRedirectLogin       = "redirect_login"
	auditEventRedirectDashboard   = "redirect_dashboard"
	auditEventRedirectFailed      = "redirect_failed"
)

// AuditErrorCode defines a public type used by goGuard APIs.
//
// AuditErrorCode instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditErrorCode string

const (
	auditErrNoSession           AuditErrorCode = "no_session"
	auditErrResolverUnavailable AuditErrorCode = "resolver_unavailable"
	auditErrTokenCache          AuditErrorCode = "token_cache"
	auditErrRedirectFailed      AuditErrorCode = "redirect_failed"
	auditErrLogoutFailed        AuditErrorCode = "logout_failed"
	auditErrNotReady            AuditErrorCode = "not_ready"
	auditErrInternal            AuditErrorCode = "internal_error"
)

func (g *Guard) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	snap session.Snapshot,
	location navigate.Location,
	target navigate.Path,
	err error,
	metadataBuilder func() map[string]string,
) {
	if g == nil || g.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		SessionID: snap.SessionID,
		Location:  location,
		Target:    target,
		Success:   success,
		Metadata:  metadata,
	}
	if snap.Profile != nil {
		event.UserID = snap.Profile.ID
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	g.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, session.ErrNoSession):
		return auditErrNoSession
	case errors.Is(err, session.ErrResolverUnavailable):
		return auditErrResolverUnavailable
	case errors.Is(err, session.ErrNoToken),
		errors.Is(err, session.ErrTokenCacheCorrupt):
		return auditErrTokenCache
	case errors.Is(err, ErrRedirectFailed):
		return auditErrRedirectFailed
	case errors.Is(err, ErrLogoutFailed):
		return auditErrLogoutFailed
	case errors.Is(err, ErrGuardNotReady):
		return auditErrNotReady
	default:
		return auditErrInternal
	}
}
