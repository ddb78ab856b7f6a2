//go:build integration
// +build integration

package test

import (
	"context"
	"sync"
	"testing"
	"time"

	goGuard "github.com/MrEthical07/goGuard"
	"github.com/MrEthical07/goGuard/session"
)

// TestStoreConsistencyDecisionsUnderChurn hammers Evaluate while the backend
// profile flips between roles and refreshes race the readers. Every decision
// must be internally consistent even when the snapshot it saw is already
// stale by the time it returns.
func TestStoreConsistencyDecisionsUnderChurn(t *testing.T) {
	ctx := context.Background()
	stack := newGuardStack(t, goGuard.DefaultConfig())

	stack.backend.setToken("tok-1", studentProfile())
	if _, err := stack.store.Establish(ctx, "tok-1", studentProfile()); err != nil {
		t.Fatalf("establish: %v", err)
	}

	stop := make(chan struct{})
	var churn sync.WaitGroup
	churn.Add(1)
	go func() {
		defer churn.Done()
		flip := false
		for {
			select {
			case <-stop:
				return
			default:
			}
			if flip {
				stack.backend.setToken("tok-1", adminProfile())
			} else {
				stack.backend.setToken("tok-1", studentProfile())
			}
			flip = !flip
			stack.store.Refresh()
			time.Sleep(time.Millisecond)
		}
	}()

	req := goGuard.Request{RequiredRole: "admin", Location: "/admin/stats"}
	validTargets := map[string]bool{"/dashboard": true, "/admin/dashboard": true}

	const workers = 8
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < 500; j++ {
				d := stack.guard.Evaluate(ctx, req)

				switch d.Outcome {
				case goGuard.OutcomeRender:
					if d.State != goGuard.StateAuthorized || d.Redirect != nil {
						t.Errorf("render decision inconsistent: %+v", d)
						return
					}
				case goGuard.OutcomeRedirect:
					if d.Redirect == nil {
						t.Errorf("redirect decision without target: %+v", d)
						return
					}
					if d.State == goGuard.StateRoleMismatch && !validTargets[string(d.Redirect.Target)] {
						t.Errorf("role mismatch redirected to unknown dashboard: %+v", d.Redirect)
						return
					}
				case goGuard.OutcomeLoading:
					if d.Redirect != nil {
						t.Errorf("loading decision carries a redirect: %+v", d)
						return
					}
				}
			}
		}()
	}

	wg.Wait()
	close(stop)
	churn.Wait()
}

// TestStoreConsistencyVersionNeverDecreases subscribes through heavy mutation
// and verifies the published versions are monotonic.
func TestStoreConsistencyVersionNeverDecreases(t *testing.T) {
	ctx := context.Background()
	store := session.NewStore(nil, nil)
	defer store.Close()

	ch, cancel := store.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			if _, err := store.Establish(ctx, "tok", studentProfile()); err != nil {
				t.Errorf("establish: %v", err)
				return
			}
			if err := store.Logout(ctx); err != nil {
				t.Errorf("logout: %v", err)
				return
			}
		}
	}()

	var last uint64
	for {
		select {
		case <-ch:
			snap := store.Snapshot()
			if snap.Version < last {
				t.Fatalf("version went backwards: %d -> %d", last, snap.Version)
			}
			last = snap.Version
		case <-done:
			return
		}
	}
}
