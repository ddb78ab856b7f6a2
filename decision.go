package goGuard

import (
	"context"

	"github.com/MrEthical07/goGuard/navigate"
	"github.com/MrEthical07/goGuard/session"
)

// State is the session state one evaluation derived from one snapshot. It is
// computed, never stored: the same snapshot always derives the same state.
type State uint8

const (
	// StateUninitialized: no initialization attempt has completed yet.
	StateUninitialized State = iota
	// StateLoading: session initialization is in flight.
	StateLoading
	// StateUnauthenticated: initialization completed with no signed-in user.
	StateUnauthenticated
	// StateInactive: authenticated, but the account is deactivated.
	StateInactive
	// StateRoleMismatch: authenticated and active, but the required role does not match.
	StateRoleMismatch
	// StateAuthorized: authenticated, active, and clear of the role check.
	StateAuthorized
)

// String describes the string operation and its observable behavior.
//
// String does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateInactive:
		return "inactive"
	case StateRoleMismatch:
		return "role_mismatch"
	case StateAuthorized:
		return "authorized"
	default:
		return "unknown"
	}
}

// Outcome is what the host should do with the protected view after an evaluation.
// The zero value is OutcomeLoading, so an absent or half-built guard never renders
// protected content by accident.
type Outcome uint8

const (
	// OutcomeLoading: show the loading placeholder; do not invoke the children.
	OutcomeLoading Outcome = iota
	// OutcomeRender: render the wrapped content.
	OutcomeRender
	// OutcomeRedirect: execute Decision.Redirect and render nothing.
	OutcomeRedirect
)

// String describes the string operation and its observable behavior.
//
// String does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (o Outcome) String() string {
	switch o {
	case OutcomeLoading:
		return "loading"
	case OutcomeRender:
		return "render"
	case OutcomeRedirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// Redirect names the destination of a redirect outcome together with the context
// the destination view receives.
type Redirect struct {
	Target  navigate.Path
	Context navigate.RedirectContext
}

// Decision is the complete result of one evaluation: the derived state, the render
// outcome, the redirect (non-nil exactly when Outcome is OutcomeRedirect), and
// which side effects this particular evaluation fired. Decisions are ephemeral;
// callers act on them and drop them.
type Decision struct {
	State    State
	Outcome  Outcome
	Redirect *Redirect

	// InitializeRequested reports that this evaluation asked the session handle to
	// start initialization. At most one evaluation per snapshot version reports it.
	InitializeRequested bool
	// LogoutForced reports that this evaluation told the session handle to sign the
	// stale, deactivated session out. It may repeat while the condition persists.
	LogoutForced bool
}

// Request describes one protected view to the guard: the role it requires (empty
// means any authenticated active user) and the location recorded as the redirect
// origin. A Request is fixed at the call site and reused across evaluations.
type Request struct {
	RequiredRole string
	Location     navigate.Location
}

// SessionHandle is the session dependency the guard consumes. It is passed in
// explicitly at build time — the guard holds no ambient session singleton — so
// tests and multi-tenant hosts construct guards against isolated stores.
//
// [session.Store] satisfies the interface. Snapshot must return a consistent
// copy; InitializeAuth must be idempotent fire-and-forget; Logout must be
// synchronous, idempotent, and safe to repeat on a signed-out session.
type SessionHandle interface {
	Snapshot() session.Snapshot
	InitializeAuth()
	Logout(ctx context.Context) error
}

// Renderer produces the markup for a view. The guard never interprets the output;
// it only decides whether the renderer runs at all.
type Renderer interface {
	Render() string
}

// RenderFunc adapts a plain function to the [Renderer] interface.
type RenderFunc func() string

// Render calls f.
func (f RenderFunc) Render() string { return f() }
