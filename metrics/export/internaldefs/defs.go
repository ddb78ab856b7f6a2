package internaldefs

import (
	goGuard "github.com/MrEthical07/goGuard"
)

// CounterDef defines a public type used by goGuard APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   goGuard.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by goGuard APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   goGuard.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the route guard engine.
var CounterDefs = []CounterDef{
	{ID: goGuard.MetricEvaluateAuthorized, Name: "goguard_evaluate_authorized_total", Help: "Evaluations that rendered the protected view."},
	{ID: goGuard.MetricEvaluateLoading, Name: "goguard_evaluate_loading_total", Help: "Evaluations that returned the loading outcome."},
	{ID: goGuard.MetricEvaluateRedirectLogin, Name: "goguard_evaluate_redirect_login_total", Help: "Evaluations redirected to login for an unauthenticated session."},
	{ID: goGuard.MetricEvaluateRedirectInactive, Name: "goguard_evaluate_redirect_inactive_total", Help: "Evaluations redirected to login for a deactivated account."},
	{ID: goGuard.MetricEvaluateRedirectRoleMismatch, Name: "goguard_evaluate_redirect_role_mismatch_total", Help: "Evaluations redirected to a dashboard for a role mismatch."},
	{ID: goGuard.MetricInitializeTriggered, Name: "goguard_initialize_triggered_total", Help: "Session initialization requests issued by evaluations."},
	{ID: goGuard.MetricLogoutForced, Name: "goguard_logout_forced_total", Help: "Forced logouts of deactivated sessions."},
	{ID: goGuard.MetricRedirectFailed, Name: "goguard_redirect_failed_total", Help: "Navigator redirect executions that returned an error."},
}

// HistogramDefs is an exported constant or variable used by the route guard engine.
var HistogramDefs = []HistogramDef{
	{ID: goGuard.MetricEvaluateLatency, Name: "goguard_evaluate_latency_seconds", Help: "Evaluate latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the route guard engine.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix is an exported constant or variable used by the route guard engine.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets describes the normalizebuckets operation and its observable behavior.
//
// NormalizeBuckets may return an error when input validation, dependency calls, or security checks fail.
// NormalizeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
//
// CumulativeBuckets may return an error when input validation, dependency calls, or security checks fail.
// CumulativeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
