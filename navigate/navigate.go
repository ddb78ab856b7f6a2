package navigate

import "context"

// Path identifies a route destination ("/login", "/admin/dashboard"). Values are
// owned by the host application's routing table and passed to the guard through its
// configuration; the guard never invents paths.
type Path string

// Location identifies the view a guard evaluation is protecting. It is recorded in
// [RedirectContext.From] so the host can return the user there after login.
type Location string

// RedirectContext travels with every redirect the guard issues.
//
// From is the location the user was trying to reach. Inactive is set only when the
// redirect was caused by an explicitly deactivated account, so the login view can
// explain the forced sign-out instead of showing a plain login form.
type RedirectContext struct {
	From     Location `json:"from,omitempty"`
	Inactive bool     `json:"inactive,omitempty"`
}

// Navigator executes a redirect decided by the guard.
//
// Redirect replaces the current view with target. Implementations must not push a
// history entry. The returned error is advisory: the guard logs and audits it but
// never re-dispatches, so implementations should not rely on retries.
//
// Redirect may be called from the goroutine that evaluated the guard; implementations
// that hand off to an event loop should do so without blocking.
type Navigator interface {
	Redirect(ctx context.Context, target Path, rc RedirectContext) error
}

// Func adapts a plain function to the [Navigator] interface.
type Func func(ctx context.Context, target Path, rc RedirectContext) error

// Redirect calls f.
func (f Func) Redirect(ctx context.Context, target Path, rc RedirectContext) error {
	return f(ctx, target, rc)
}
