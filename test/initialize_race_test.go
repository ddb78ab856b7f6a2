//go:build integration
// +build integration

package test

import (
	"context"
	"sync"
	"testing"

	goGuard "github.com/MrEthical07/goGuard"
	"github.com/MrEthical07/goGuard/session"
)

// TestInitializeRaceSingleResolution hammers an uninitialized guard from many
// goroutines. The guard requests initialization once per snapshot version and
// the store single-flights resolution, so the backend must see exactly one
// profile fetch no matter how many evaluations race.
func TestInitializeRaceSingleResolution(t *testing.T) {
	ctx := context.Background()
	stack := newGuardStack(t, goGuard.DefaultConfig())

	stack.backend.setToken("tok-1", studentProfile())
	if err := stack.tokens.Store(ctx, "tok-1"); err != nil {
		t.Fatalf("seed token: %v", err)
	}

	const workers = 16
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)

	var requested sync.Map
	for i := 0; i < workers; i++ {
		go func(id int) {
			defer wg.Done()
			<-start
			d := stack.guard.Evaluate(ctx, goGuard.Request{Location: "/notes"})
			if d.InitializeRequested {
				requested.Store(id, true)
			}
		}(i)
	}

	close(start)
	wg.Wait()

	stack.waitFor(t, func(s session.Snapshot) bool { return s.Initialized && !s.Loading })

	if got := stack.backend.hits.Load(); got != 1 {
		t.Fatalf("expected exactly one profile fetch, got %d", got)
	}

	winners := 0
	requested.Range(func(_, _ any) bool {
		winners++
		return true
	})
	if winners > 1 {
		t.Fatalf("at most one evaluation may request initialization, got %d", winners)
	}

	// The restored session authorizes the next evaluation.
	d := stack.guard.Evaluate(ctx, goGuard.Request{RequiredRole: "student", Location: "/notes"})
	if d.Outcome != goGuard.OutcomeRender {
		t.Fatalf("expected render after restore, got %v", d.Outcome)
	}
}

// TestInitializeOncePerProcess: logout does not reset Initialized, so a
// signed-out session redirects instead of fetching the profile again.
func TestInitializeOncePerProcess(t *testing.T) {
	ctx := context.Background()
	stack := newGuardStack(t, goGuard.DefaultConfig())

	stack.backend.setToken("tok-1", studentProfile())
	if err := stack.tokens.Store(ctx, "tok-1"); err != nil {
		t.Fatalf("seed token: %v", err)
	}

	stack.guard.Evaluate(ctx, goGuard.Request{Location: "/notes"})
	stack.waitFor(t, func(s session.Snapshot) bool { return s.Initialized && !s.Loading })

	if got := stack.backend.hits.Load(); got != 1 {
		t.Fatalf("expected one fetch on cold start, got %d", got)
	}

	if err := stack.store.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}

	d := stack.guard.Evaluate(ctx, goGuard.Request{Location: "/notes"})
	if d.Outcome != goGuard.OutcomeRedirect || d.InitializeRequested {
		t.Fatalf("signed-out session should redirect without re-initializing, got %+v", d)
	}
	if got := stack.backend.hits.Load(); got != 1 {
		t.Fatalf("logout must not cause another profile fetch, got %d", got)
	}
}
