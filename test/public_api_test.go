package test

import (
	"context"
	"testing"

	goGuard "github.com/MrEthical07/goGuard"
	"github.com/MrEthical07/goGuard/navigate"
	"github.com/MrEthical07/goGuard/session"
)

// This test intentionally guards public API compile-compat for consumers.
func TestPublicAPISurfaceCompile(t *testing.T) {
	_ = goGuard.New
	_ = goGuard.DefaultConfig
	_ = goGuard.FailClosedConfig

	var _ *goGuard.Guard
	var _ goGuard.Config
	var _ goGuard.Decision
	var _ goGuard.Request
	var _ *goGuard.Protected
	var _ goGuard.SessionHandle
	var _ goGuard.Renderer
	var _ goGuard.AuditSink
	var _ goGuard.AuditEvent
	var _ goGuard.LintWarnings
	var _ goGuard.SecurityReport

	var _ goGuard.State = goGuard.StateUninitialized
	var _ goGuard.State = goGuard.StateAuthorized
	var _ goGuard.Outcome = goGuard.OutcomeLoading
	var _ goGuard.Outcome = goGuard.OutcomeRender
	var _ goGuard.Outcome = goGuard.OutcomeRedirect

	var _ error = goGuard.ErrGuardNotReady
	var _ error = goGuard.ErrRedirectFailed
	var _ error = goGuard.ErrLogoutFailed

	var _ goGuard.SessionHandle = (*session.Store)(nil)
	var _ goGuard.Renderer = goGuard.RenderFunc(nil)
	var _ goGuard.AuditSink = (*goGuard.ChannelSink)(nil)
	var _ goGuard.AuditSink = (*goGuard.JSONWriterSink)(nil)
	var _ goGuard.AuditSink = goGuard.NoOpSink{}

	var _ navigate.Navigator = (*navigate.Recorder)(nil)
	var _ navigate.Navigator = navigate.Func(nil)
	var _ session.Resolver = (*session.HTTPResolver)(nil)
	var _ session.Resolver = (*session.TokenResolver)(nil)
	var _ session.Resolver = session.ResolverFunc(nil)
	var _ session.TokenCache = (*session.MemoryTokenCache)(nil)
	var _ session.TokenCache = (*session.FileTokenCache)(nil)

	var _ error = session.ErrNoSession
	var _ error = session.ErrResolverUnavailable
	var _ error = session.ErrNoToken
	var _ error = session.ErrTokenCacheCorrupt
	var _ error = session.ErrStoreClosed

	var _ func(*goGuard.Guard, context.Context, goGuard.Request) goGuard.Decision = (*goGuard.Guard).Evaluate
	var _ func(*goGuard.Guard, goGuard.Request, goGuard.Renderer) *goGuard.Protected = (*goGuard.Guard).Protect
	var _ func(*goGuard.Protected, context.Context) string = (*goGuard.Protected).Render
	var _ func(*session.Store) session.Snapshot = (*session.Store).Snapshot
	var _ func(*session.Store, context.Context, string, *session.Profile) (string, error) = (*session.Store).Establish
	var _ func(*session.Store, context.Context) error = (*session.Store).Logout
}
