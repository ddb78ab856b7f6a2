// Package session owns the client-side session snapshot the route guard evaluates:
// authentication status, loading flag, and the user profile, published as immutable
// [Snapshot] values with a monotonically increasing version.
//
// # Snapshot model
//
// The [Store] is the single writer. Readers always receive a copy; a snapshot taken
// at the start of an evaluation never changes underneath it, no matter which store
// mutations land concurrently. Every mutation bumps Version, so "did anything change"
// is a single integer comparison.
//
// # Initialization
//
// [Store.InitializeAuth] is fire-and-forget and idempotent: a compare-and-swap gate
// admits one resolution at a time, the loading flag is published immediately, and the
// outcome (authenticated, signed out, or resolver failure) arrives as a later
// snapshot. In-flight initialization runs on the store's own context and cannot be
// cancelled by callers.
//
// # Architecture boundaries
//
// This package owns session state, token caching ([TokenCache]) and profile
// resolution ([Resolver]). It does NOT decide what renders or where the user is
// sent — those decisions belong to the guard.
//
// # What this package must NOT do
//
//   - Import goGuard or navigate (no upward imports).
//   - Treat a missing is_active field as inactive (the guard owns that policy).
//   - Block snapshot reads on network calls.
package session
