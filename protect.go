package goGuard

import (
	"context"
	"fmt"
	"log"
)

// Protected binds one guard, one request, and the view it protects. It is the
// composition surface hosts embed wherever a route needs gating: build it once
// next to the view, call Render on every frame or request, and let the guard
// decide whether the children run.
type Protected struct {
	guard    *Guard
	req      Request
	children Renderer
	loading  Renderer
}

// Protect wraps children behind the guard's decision for req. The returned
// Protected renders the children only on OutcomeRender; on OutcomeRedirect it
// executes the redirect through the guard's navigator and renders nothing; on
// OutcomeLoading it renders the loading placeholder.
func (g *Guard) Protect(req Request, children Renderer) *Protected {
	return &Protected{
		guard:    g,
		req:      req,
		children: children,
		loading:  RenderFunc(defaultLoading),
	}
}

func defaultLoading() string { return "loading..." }

// WithLoading replaces the placeholder rendered while the session is still
// resolving. A nil renderer keeps the current one. WithLoading returns the
// receiver for chaining and is not safe to call concurrently with Render.
func (p *Protected) WithLoading(loading Renderer) *Protected {
	if loading != nil {
		p.loading = loading
	}
	return p
}

// Render evaluates the guard and acts on the outcome: the children's markup for
// an authorized session, the loading placeholder while resolving, and the empty
// string after dispatching a redirect. Redirect execution failures are logged,
// counted, and audited; the protected content stays withheld either way.
func (p *Protected) Render(ctx context.Context) string {
	if p == nil {
		return defaultLoading()
	}

	decision := p.guard.Evaluate(ctx, p.req)

	switch decision.Outcome {
	case OutcomeRender:
		if p.children == nil {
			return ""
		}
		return p.children.Render()

	case OutcomeRedirect:
		p.execRedirect(ctx, decision)
		return ""

	default:
		if p.loading == nil {
			return ""
		}
		return p.loading.Render()
	}
}

func (p *Protected) execRedirect(ctx context.Context, decision Decision) {
	if decision.Redirect == nil {
		return
	}
	g := p.guard
	if g == nil || g.navigator == nil {
		return
	}

	err := g.navigator.Redirect(ctx, decision.Redirect.Target, decision.Redirect.Context)
	if err == nil {
		return
	}

	log.Print("goGuard: redirect failed: ", err)
	g.metricInc(MetricRedirectFailed)
	// Snapshot here only supplies session identity for the audit record; the
	// decision being reported was already fixed by Evaluate.
	g.emitAudit(ctx, auditEventRedirectFailed, false, g.session.Snapshot(), p.req.Location,
		decision.Redirect.Target, fmt.Errorf("%w: %v", ErrRedirectFailed, err), nil)
}
