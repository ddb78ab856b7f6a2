package navigate

import (
	"context"
	"sync"
)

// Call is one recorded redirect.
type Call struct {
	Target  Path
	Context RedirectContext
}

// Recorder is a [Navigator] that records every redirect instead of executing one.
// It is safe for concurrent use and intended for tests and the scenario runner.
type Recorder struct {
	mu    sync.Mutex
	calls []Call
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Redirect records the call and returns nil.
func (r *Recorder) Redirect(_ context.Context, target Path, rc RedirectContext) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls = append(r.calls, Call{Target: target, Context: rc})
	return nil
}

// Calls returns a copy of the recorded redirects in order.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// Last returns the most recent recorded redirect, if any.
func (r *Recorder) Last() (Call, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.calls) == 0 {
		return Call{}, false
	}
	return r.calls[len(r.calls)-1], true
}

// Reset discards all recorded redirects.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls = nil
}
