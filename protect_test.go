package goGuard

import (
	"context"
	"errors"
	"testing"

	"github.com/MrEthical07/goGuard/navigate"
	"github.com/MrEthical07/goGuard/session"
)

type countingRenderer struct {
	calls int
	out   string
}

func (r *countingRenderer) Render() string {
	r.calls++
	return r.out
}

func TestProtectRendersChildrenWhenAuthorized(t *testing.T) {
	h := newStubSession(authedSnapshot(activeProfile("student")))
	guard, rec := newTestGuard(t, defaultConfig(), h)

	children := &countingRenderer{out: "<notes/>"}
	view := guard.Protect(Request{Location: "/notes"}, children)

	got := view.Render(context.Background())
	if got != "<notes/>" {
		t.Fatalf("expected children output, got %q", got)
	}
	if children.calls != 1 {
		t.Fatalf("expected children rendered once, got %d", children.calls)
	}
	if len(rec.Calls()) != 0 {
		t.Fatal("authorized render must not navigate")
	}
}

func TestProtectShowsLoadingPlaceholder(t *testing.T) {
	h := newStubSession(session.Snapshot{Loading: true})
	guard, _ := newTestGuard(t, defaultConfig(), h)

	children := &countingRenderer{out: "<notes/>"}
	view := guard.Protect(Request{Location: "/notes"}, children)

	if got := view.Render(context.Background()); got != "loading..." {
		t.Fatalf("expected default loading placeholder, got %q", got)
	}
	if children.calls != 0 {
		t.Fatal("children must not be invoked while loading")
	}

	view.WithLoading(RenderFunc(func() string { return "<spinner/>" }))
	if got := view.Render(context.Background()); got != "<spinner/>" {
		t.Fatalf("expected custom loading placeholder, got %q", got)
	}
	if children.calls != 0 {
		t.Fatal("children must not be invoked while loading")
	}
}

func TestProtectExecutesRedirectAndRendersNothing(t *testing.T) {
	h := newStubSession(session.Snapshot{Initialized: true})
	guard, rec := newTestGuard(t, defaultConfig(), h)

	children := &countingRenderer{out: "<notes/>"}
	view := guard.Protect(Request{Location: "/notes/9"}, children)

	if got := view.Render(context.Background()); got != "" {
		t.Fatalf("expected empty output on redirect, got %q", got)
	}
	if children.calls != 0 {
		t.Fatal("children must not be invoked on redirect")
	}

	call, ok := rec.Last()
	if !ok {
		t.Fatal("expected a recorded redirect")
	}
	if call.Target != "/login" {
		t.Fatalf("expected redirect to /login, got %q", call.Target)
	}
	if call.Context.From != "/notes/9" {
		t.Fatalf("expected redirect context from /notes/9, got %q", call.Context.From)
	}
	if call.Context.Inactive {
		t.Fatal("plain unauthenticated redirect must not carry the inactive flag")
	}
}

func TestProtectNavigatorFailureRendersNothing(t *testing.T) {
	h := newStubSession(session.Snapshot{Initialized: true})
	failing := navigate.Func(func(context.Context, navigate.Path, navigate.RedirectContext) error {
		return errors.New("router detached")
	})
	guard, err := New().
		WithSession(h).
		WithNavigator(failing).
		WithMetricsEnabled(true).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer guard.Close()

	view := guard.Protect(Request{Location: "/notes"}, RenderFunc(func() string { return "<notes/>" }))

	if got := view.Render(context.Background()); got != "" {
		t.Fatalf("expected empty output when redirect execution fails, got %q", got)
	}
	if got := guard.MetricsSnapshot().Counters[MetricRedirectFailed]; got != 1 {
		t.Fatalf("expected redirect failure counter 1, got %d", got)
	}
}

func TestProtectNilChildrenRenderEmpty(t *testing.T) {
	h := newStubSession(authedSnapshot(activeProfile("student")))
	guard, _ := newTestGuard(t, defaultConfig(), h)

	view := guard.Protect(Request{Location: "/notes"}, nil)
	if got := view.Render(context.Background()); got != "" {
		t.Fatalf("expected empty output for nil children, got %q", got)
	}
}

func TestProtectTransitionsAcrossRenders(t *testing.T) {
	// The host re-renders on every session change; one Protected value must track
	// the session through loading, signed-in, and signed-out phases.
	h := newStubSession(session.Snapshot{Loading: true})
	guard, rec := newTestGuard(t, defaultConfig(), h)

	children := &countingRenderer{out: "<notes/>"}
	view := guard.Protect(Request{Location: "/notes"}, children)
	ctx := context.Background()

	if got := view.Render(ctx); got != "loading..." {
		t.Fatalf("phase 1: expected loading, got %q", got)
	}

	h.set(authedSnapshot(activeProfile("student")))
	if got := view.Render(ctx); got != "<notes/>" {
		t.Fatalf("phase 2: expected children, got %q", got)
	}

	h.set(session.Snapshot{Initialized: true, Version: 9})
	if got := view.Render(ctx); got != "" {
		t.Fatalf("phase 3: expected redirect (empty output), got %q", got)
	}
	if call, ok := rec.Last(); !ok || call.Target != "/login" {
		t.Fatalf("phase 3: expected login redirect, got %+v ok=%v", call, ok)
	}
}
