// Package goGuard provides a client-side route guard: a deterministic access
// decision engine that derives render, loading, or redirect outcomes from an
// application session's snapshot, with route-level role gating and automatic
// sign-out of deactivated accounts.
//
// The package is designed for concurrent UI workloads: Guard methods are safe to
// call from multiple goroutines after initialization through [Builder.Build].
// Every evaluation reads exactly one session snapshot and decides from that copy,
// so re-renders racing session transitions still produce internally consistent
// decisions.
//
// # Architecture boundaries
//
// goGuard is the public surface. It exposes [Guard], [Builder], [Config],
// [Decision], and value types (MetricsSnapshot, SecurityReport, etc.). Session
// state lives in the session sub-package, navigation in navigate; the guard
// consumes both through narrow interfaces and owns neither.
//
// # What this package must NOT do
//
//   - Authenticate anyone. It projects session state onto decisions; the login
//     flow, token issuance, and profile resolution belong to the session layer
//     and the backing API.
//   - Authorize server-side requests. A redirect is a UX affordance, not an
//     enforcement boundary; the backend must re-check every call.
//   - Push history entries. Guard-driven navigation always replaces, so the back
//     button never walks through rejected routes.
//
// # Performance contract
//
// Evaluate is the hot path. It must not perform I/O: its side effects are a
// fire-and-forget initialization request and a local logout transition, and
// audit emission is buffered and non-blocking by default. A render loop may call
// it on every frame.
package goGuard
