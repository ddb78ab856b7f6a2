// Package navigate defines the navigation contract the route guard drives: typed route
// paths, the redirect context handed to the host application, and the [Navigator]
// interface that executes redirects.
//
// # Redirect semantics
//
// A [Navigator] replaces the current view. Implementations MUST NOT push a history
// entry: a guarded view that immediately redirects must not remain reachable through
// back-navigation. Beyond that the mechanics (hash routing, history API, TUI view
// swap) are entirely the host's concern.
//
// # Architecture boundaries
//
// This package carries no policy. Which path a session is sent to, and why, is decided
// by the guard; this package only names the destination and the context
// ([RedirectContext]) that travels with it.
//
// # What this package must NOT do
//
//   - Import goGuard or session (no upward imports).
//   - Decide redirect targets.
//   - Retry or queue failed redirects (the guard treats failures as advisory).
package navigate
