package goGuard

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/MrEthical07/goGuard/navigate"
)

// Guard is the access-control engine for protected views.
//
// A Guard is created through the [Builder], holds its dependencies (session
// handle, navigator, audit sink, metrics) for its whole lifetime, and is safe
// for concurrent use. Evaluate is the only entry point that decides anything;
// Protect wraps it for view composition.
//
//	Docs: docs/guard.md
type Guard struct {
	config    Config
	session   SessionHandle
	navigator navigate.Navigator
	metrics   *Metrics
	audit     *auditDispatcher

	// initRequested holds snapshot version + 1 of the last snapshot for which an
	// initialization request was issued. Zero means never. The offset keeps
	// version 0 distinguishable from "never requested".
	initRequested atomic.Uint64
}

// Evaluate derives the access decision for one protected view from one session
// snapshot.
//
// Exactly one snapshot is read per call and every clause of the decision is
// computed from that copy, never from live session state. Concurrent
// evaluations may interleave with session transitions; each still returns a
// decision that was correct for the snapshot it saw. Evaluate never blocks on
// the network: the side effects it can fire are fire-and-forget
// (InitializeAuth) or local state transitions (Logout).
//
// The clauses apply in a fixed order and the first match wins:
//
//	1. uninitialized, idle session    -> request initialization (once per version)
//	2. authenticated but deactivated  -> force logout, then fall through
//	3. loading                        -> OutcomeLoading
//	4. not authenticated              -> redirect to the login route
//	5. account inactive               -> redirect to login, flagged inactive
//	6. required role not held         -> redirect to the user's own dashboard
//	7. otherwise                      -> OutcomeRender
//
// A nil Guard (or one built without a session handle) returns OutcomeLoading
// so that protected content is withheld rather than exposed.
func (g *Guard) Evaluate(ctx context.Context, req Request) Decision {
	if g == nil || g.session == nil {
		return Decision{State: StateUninitialized, Outcome: OutcomeLoading}
	}

	if g.metrics.LatencyEnabled() {
		start := time.Now()
		defer func() {
			g.metrics.Observe(MetricEvaluateLatency, time.Since(start))
		}()
	}

	snap := g.session.Snapshot()

	var decision Decision

	// Clause 1: kick off session initialization, at most once per snapshot
	// version. Suppressed duplicates still evaluate the remaining clauses.
	if !snap.Initialized && !snap.Loading {
		if g.markInitRequested(snap.Version) {
			g.session.InitializeAuth()
			decision.InitializeRequested = true
			g.metricInc(MetricInitializeTriggered)
			g.emitAudit(ctx, auditEventInitializeTriggered, true, snap, req.Location, "", nil, nil)
		}
	}

	absentActive := g.config.Policy.MissingActive != ActivePolicyDefaultInactive
	active := snap.Profile.ActiveOrDefault(absentActive)

	// Clause 2: an authenticated session whose profile says the account is
	// deactivated is stale. Sign it out before deciding where to send the user;
	// the decision below still reads the snapshot taken above.
	if snap.Authenticated && snap.Profile != nil && !active {
		decision.LogoutForced = true
		g.metricInc(MetricLogoutForced)
		if err := g.session.Logout(ctx); err != nil {
			log.Print("goGuard: forced logout failed: ", err)
			g.emitAudit(ctx, auditEventLogoutForced, false, snap, req.Location, "",
				fmt.Errorf("%w: %v", ErrLogoutFailed, err), nil)
		} else {
			g.emitAudit(ctx, auditEventLogoutForced, true, snap, req.Location, "", nil, nil)
		}
	}

	switch {
	case snap.Loading:
		decision.State = StateLoading
		decision.Outcome = OutcomeLoading
		g.metricInc(MetricEvaluateLoading)

	case !snap.Authenticated:
		if snap.Initialized {
			decision.State = StateUnauthenticated
		} else {
			decision.State = StateUninitialized
		}
		decision.Outcome = OutcomeRedirect
		decision.Redirect = &Redirect{
			Target:  g.config.Routes.Login,
			Context: navigate.RedirectContext{From: req.Location},
		}
		g.metricInc(MetricEvaluateRedirectLogin)
		g.emitAudit(ctx, auditEventRedirectLogin, true, snap, req.Location, g.config.Routes.Login, nil, nil)

	case !active:
		decision.State = StateInactive
		decision.Outcome = OutcomeRedirect
		decision.Redirect = &Redirect{
			Target:  g.config.Routes.Login,
			Context: navigate.RedirectContext{From: req.Location, Inactive: true},
		}
		g.metricInc(MetricEvaluateRedirectInactive)
		g.emitAudit(ctx, auditEventRedirectLogin, true, snap, req.Location, g.config.Routes.Login, nil,
			func() map[string]string {
				return map[string]string{"inactive": "true"}
			})

	case req.RequiredRole != "" && snap.Profile.RoleOrEmpty() != req.RequiredRole:
		target := g.roleDashboard(snap.Profile.RoleOrEmpty())
		decision.State = StateRoleMismatch
		decision.Outcome = OutcomeRedirect
		decision.Redirect = &Redirect{Target: target}
		g.metricInc(MetricEvaluateRedirectRoleMismatch)
		role := snap.Profile.RoleOrEmpty()
		g.emitAudit(ctx, auditEventRedirectDashboard, true, snap, req.Location, target, nil,
			func() map[string]string {
				return map[string]string{
					"required_role": req.RequiredRole,
					"role":          role,
				}
			})

	default:
		decision.State = StateAuthorized
		decision.Outcome = OutcomeRender
		g.metricInc(MetricEvaluateAuthorized)
	}

	return decision
}

// markInitRequested records that initialization was requested for the given
// snapshot version. It returns true for exactly one caller per version; a new
// version re-arms the request.
func (g *Guard) markInitRequested(version uint64) bool {
	marker := version + 1
	for {
		prev := g.initRequested.Load()
		if prev == marker {
			return false
		}
		if g.initRequested.CompareAndSwap(prev, marker) {
			return true
		}
	}
}

// roleDashboard resolves the dashboard for a user's actual role. Unknown or
// empty roles land on the default dashboard; the required role is never used
// as a destination.
func (g *Guard) roleDashboard(role string) navigate.Path {
	if role != "" {
		if target, ok := g.config.Routes.RoleDashboards[role]; ok && target != "" {
			return target
		}
	}
	return g.config.Routes.DefaultDashboard
}

// Ready reports whether the guard can evaluate: a session handle and a
// navigator are wired. A not-ready guard still answers Evaluate, always with
// OutcomeLoading; Ready is for hosts that prefer to fail fast at startup.
func (g *Guard) Ready() error {
	if g == nil || g.session == nil || g.navigator == nil {
		return ErrGuardNotReady
	}
	return nil
}

// Config returns a copy of the guard's effective configuration.
//
// Config does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (g *Guard) Config() Config {
	if g == nil {
		return Config{}
	}
	return cloneConfig(g.config)
}

// MetricsSnapshot returns a point-in-time copy of the guard's counters and
// latency histograms. When metrics are disabled the maps are empty, never nil.
func (g *Guard) MetricsSnapshot() MetricsSnapshot {
	if g == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return g.metrics.Snapshot()
}

// AuditDropped reports how many audit events were discarded because the audit
// buffer was full. Zero when auditing is disabled.
func (g *Guard) AuditDropped() uint64 {
	if g == nil || g.audit == nil {
		return 0
	}
	return g.audit.Dropped()
}

// Close flushes and stops the audit dispatcher. It does not close the session
// handle; the session's owner does that. Close is idempotent.
func (g *Guard) Close() {
	if g == nil {
		return
	}
	if g.audit != nil {
		g.audit.Close()
	}
}

func (g *Guard) metricInc(id MetricID) {
	if g.metrics != nil {
		g.metrics.Inc(id)
	}
}
