package navigate

import (
	"context"
	"sync"
	"testing"
)

func TestRecorderRecordsInOrder(t *testing.T) {
	rec := NewRecorder()
	ctx := context.Background()

	if _, ok := rec.Last(); ok {
		t.Fatal("fresh recorder should have no calls")
	}

	if err := rec.Redirect(ctx, "/login", RedirectContext{From: "/notes"}); err != nil {
		t.Fatalf("redirect: %v", err)
	}
	if err := rec.Redirect(ctx, "/dashboard", RedirectContext{}); err != nil {
		t.Fatalf("redirect: %v", err)
	}

	calls := rec.Calls()
	if len(calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(calls))
	}
	if calls[0].Target != "/login" || calls[0].Context.From != "/notes" {
		t.Fatalf("unexpected first call: %+v", calls[0])
	}

	last, ok := rec.Last()
	if !ok || last.Target != "/dashboard" {
		t.Fatalf("unexpected last call: %+v, %v", last, ok)
	}
}

func TestRecorderCallsReturnsCopy(t *testing.T) {
	rec := NewRecorder()
	_ = rec.Redirect(context.Background(), "/login", RedirectContext{})

	calls := rec.Calls()
	calls[0].Target = "/mutated"

	if got, _ := rec.Last(); got.Target != "/login" {
		t.Fatalf("mutating the returned slice leaked into the recorder: %+v", got)
	}
}

func TestRecorderReset(t *testing.T) {
	rec := NewRecorder()
	_ = rec.Redirect(context.Background(), "/login", RedirectContext{})

	rec.Reset()
	if len(rec.Calls()) != 0 {
		t.Fatal("reset should discard recorded calls")
	}
}

func TestRecorderConcurrentUse(t *testing.T) {
	rec := NewRecorder()

	const goroutines = 16
	const perG = 50

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perG; j++ {
				_ = rec.Redirect(context.Background(), "/login", RedirectContext{})
			}
		}()
	}
	wg.Wait()

	if got := len(rec.Calls()); got != goroutines*perG {
		t.Fatalf("expected %d calls, got %d", goroutines*perG, got)
	}
}

func TestFuncAdapter(t *testing.T) {
	var got Path
	nav := Func(func(_ context.Context, target Path, _ RedirectContext) error {
		got = target
		return nil
	})

	if err := nav.Redirect(context.Background(), "/login", RedirectContext{}); err != nil {
		t.Fatalf("redirect: %v", err)
	}
	if got != "/login" {
		t.Fatalf("adapter should pass the target through, got %q", got)
	}
}
