package goGuard

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/MrEthical07/goGuard/navigate"
)

// Config defines a public type used by goGuard APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Routes  RoutesConfig
	Policy  PolicyConfig
	Audit   AuditConfig
	Metrics MetricsConfig
}

/*
====================================
ROUTES CONFIG
====================================
*/

// RoutesConfig defines a public type used by goGuard APIs.
//
// RoutesConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RoutesConfig struct {
	// Login receives every unauthenticated or deactivated visitor.
	Login navigate.Path
	// DefaultDashboard receives role mismatches whose actual role has no entry
	// in RoleDashboards, including users with no role at all.
	DefaultDashboard navigate.Path
	// RoleDashboards maps a user's actual role to that role's home view. Lookup
	// uses the role the user holds, never the role a view required.
	RoleDashboards map[string]navigate.Path
}

/*
====================================
POLICY CONFIG
====================================
*/

// ActivePolicy defines a public type used by goGuard APIs.
//
// ActivePolicy instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type ActivePolicy int

const (
	// ActivePolicyDefaultActive treats a profile that never mentioned is_active
	// as active. Only an explicit false deactivates. This matches upstream APIs
	// that omit the field for ordinary accounts, and it is the default.
	ActivePolicyDefaultActive ActivePolicy = iota
	// ActivePolicyDefaultInactive treats a missing is_active as deactivated.
	// Fail-closed: use it when the profile source is untrusted or lossy.
	ActivePolicyDefaultInactive
)

// PolicyConfig defines a public type used by goGuard APIs.
//
// PolicyConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type PolicyConfig struct {
	MissingActive ActivePolicy
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig defines a public type used by goGuard APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	// DropIfFull discards events when the buffer is full instead of blocking
	// the evaluation path. Dropped events are counted.
	DropIfFull bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig defines a public type used by goGuard APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
DEFAULTS & PRESETS
====================================
*/

func defaultConfig() Config {
	return Config{
		Routes: RoutesConfig{
			Login:            "/login",
			DefaultDashboard: "/dashboard",
			RoleDashboards: map[string]navigate.Path{
				"admin": "/admin/dashboard",
			},
		},
		Policy: PolicyConfig{
			MissingActive: ActivePolicyDefaultActive,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

// DefaultConfig returns the baseline configuration: login at /login, the
// shared dashboard at /dashboard, an admin dashboard, fail-open handling of a
// missing is_active, audit and metrics off.
func DefaultConfig() Config {
	return defaultConfig()
}

// FailClosedConfig returns a hardened preset: a missing is_active counts as
// deactivated, and audit plus metrics are on so every redirect and forced
// logout leaves a trace. Routes match DefaultConfig.
func FailClosedConfig() Config {
	cfg := defaultConfig()
	cfg.Policy.MissingActive = ActivePolicyDefaultInactive
	cfg.Audit.Enabled = true
	cfg.Metrics.Enabled = true
	cfg.Metrics.EnableLatencyHistograms = true
	return cfg
}

func cloneConfig(cfg Config) Config {
	out := cfg
	if cfg.Routes.RoleDashboards != nil {
		out.Routes.RoleDashboards = make(map[string]navigate.Path, len(cfg.Routes.RoleDashboards))
		for role, target := range cfg.Routes.RoleDashboards {
			out.Routes.RoleDashboards[role] = target
		}
	}
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Config) Validate() error {
	// Routes
	if c.Routes.Login == "" {
		return errors.New("Routes Login must not be empty")
	}
	if !strings.HasPrefix(string(c.Routes.Login), "/") {
		return errors.New("Routes Login must be an app-absolute path")
	}
	if c.Routes.DefaultDashboard == "" {
		return errors.New("Routes DefaultDashboard must not be empty")
	}
	if !strings.HasPrefix(string(c.Routes.DefaultDashboard), "/") {
		return errors.New("Routes DefaultDashboard must be an app-absolute path")
	}
	for role, target := range c.Routes.RoleDashboards {
		if role == "" {
			return errors.New("Routes RoleDashboards must not contain an empty role")
		}
		if target == "" || !strings.HasPrefix(string(target), "/") {
			return errors.New("Routes RoleDashboards targets must be app-absolute paths")
		}
	}

	// Policy
	switch c.Policy.MissingActive {
	case ActivePolicyDefaultActive, ActivePolicyDefaultInactive:
		// valid
	default:
		return errors.New("Policy MissingActive is invalid")
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when Audit is enabled")
	}

	return nil
}

/*
====================================
LINT
====================================
*/

// LintSeverity defines a public type used by goGuard APIs.
//
// LintSeverity instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type LintSeverity int

const (
	// LintInfo is an exported constant or variable used by the route guard engine.
	LintInfo LintSeverity = iota
	// LintLow is an exported constant or variable used by the route guard engine.
	LintLow
	// LintMedium is an exported constant or variable used by the route guard engine.
	LintMedium
	// LintHigh is an exported constant or variable used by the route guard engine.
	LintHigh
)

// String describes the string operation and its observable behavior.
//
// String does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s LintSeverity) String() string {
	switch s {
	case LintInfo:
		return "INFO"
	case LintLow:
		return "LOW"
	case LintMedium:
		return "MEDIUM"
	case LintHigh:
		return "HIGH"
	default:
		return "UNKNOWN"
	}
}

// LintWarning defines a public type used by goGuard APIs.
//
// LintWarning instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type LintWarning struct {
	Code     string
	Severity LintSeverity
	Message  string
}

// LintWarnings defines a public type used by goGuard APIs.
//
// LintWarnings instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type LintWarnings []LintWarning

// Codes returns the warning codes in lint order.
func (ws LintWarnings) Codes() []string {
	out := make([]string, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.Code)
	}
	return out
}

// BySeverity returns the warnings at or above min, preserving lint order.
func (ws LintWarnings) BySeverity(min LintSeverity) LintWarnings {
	var out LintWarnings
	for _, w := range ws {
		if w.Severity >= min {
			out = append(out, w)
		}
	}
	return out
}

// AsError folds the warnings at or above min into a single error, or nil when
// none reach it. Useful as a startup gate: cfg.Lint().AsError(LintHigh).
func (ws LintWarnings) AsError(min LintSeverity) error {
	flagged := ws.BySeverity(min)
	if len(flagged) == 0 {
		return nil
	}
	return fmt.Errorf("config lint: %s", strings.Join(flagged.Codes(), ", "))
}

// Lint reports configurations that validate but deserve a second look. It never
// rejects anything; Validate does that. The main subject is the fail-open
// default: a config that treats a missing is_active as active is legal and
// common, but an operator should have seen the warning at least once.
//
//	Docs: docs/config.md
func (c *Config) Lint() LintWarnings {
	var ws LintWarnings

	if c.Policy.MissingActive == ActivePolicyDefaultActive {
		ws = append(ws, LintWarning{
			Code:     "active_fail_open",
			Severity: LintMedium,
			Message:  "profiles without is_active are treated as active; set Policy.MissingActive to ActivePolicyDefaultInactive to fail closed",
		})
	}

	if !c.Audit.Enabled {
		ws = append(ws, LintWarning{
			Code:     "audit_disabled",
			Severity: LintLow,
			Message:  "audit is disabled; redirects and forced logouts leave no trace",
		})
	}
	if c.Audit.Enabled && !c.Audit.DropIfFull {
		ws = append(ws, LintWarning{
			Code:     "audit_blocking",
			Severity: LintMedium,
			Message:  "audit buffer blocks when full; a slow sink can stall evaluations",
		})
	}

	if c.Routes.DefaultDashboard == c.Routes.Login {
		ws = append(ws, LintWarning{
			Code:     "dashboard_equals_login",
			Severity: LintHigh,
			Message:  "DefaultDashboard equals Login; role mismatches would bounce authenticated users to the login view",
		})
	} else {
		roles := make([]string, 0, len(c.Routes.RoleDashboards))
		for role, target := range c.Routes.RoleDashboards {
			if target == c.Routes.Login {
				roles = append(roles, role)
			}
		}
		if len(roles) > 0 {
			sort.Strings(roles)
			ws = append(ws, LintWarning{
				Code:     "dashboard_equals_login",
				Severity: LintHigh,
				Message:  fmt.Sprintf("RoleDashboards for %s equal Login; role mismatches would bounce authenticated users to the login view", strings.Join(roles, ", ")),
			})
		}
	}

	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		ws = append(ws, LintWarning{
			Code:     "latency_without_metrics",
			Severity: LintInfo,
			Message:  "EnableLatencyHistograms has no effect while Metrics.Enabled is false",
		})
	}

	return ws
}
