// Command goguard-sim exercises a real guard from the command line.
//
// Scenario mode replays a scripted session against the decision engine and
// prints one trace line per step, a summary, and the audit log:
//
//	goguard-sim -scenario deactivation.json
//
// A scenario is JSON: an optional config, an initial snapshot, and steps that
// either replace the snapshot or evaluate a request:
//
//	{
//	  "name": "deactivated mid-session",
//	  "config": {"missing_active": "inactive", "role_dashboards": {"admin": "/admin/dashboard"}},
//	  "initial": {"authenticated": false},
//	  "steps": [
//	    {"evaluate": {"location": "/notes"}},
//	    {"set": {"authenticated": true, "initialized": true,
//	             "profile": {"username": "maya", "role": "student", "is_active": false}}},
//	    {"evaluate": {"location": "/notes"}}
//	  ]
//	}
//
// A set step that omits version gets the previous version plus one. Audit is
// always on in scenario mode; the JSONL lines follow the trace on stdout.
//
// Bench mode (the default) measures the evaluation path: -ops evaluations
// across -concurrency workers over -snapshots synthetic sessions, one phase
// with no role requirement and one requiring "admin". The guard's counters
// are checked against exact expected totals; any drift counts as a failure
// in the results line. -metrics additionally prints each phase's Prometheus
// exposition.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	goGuard "github.com/MrEthical07/goGuard"
	"github.com/MrEthical07/goGuard/metrics/export/prometheus"
	"github.com/MrEthical07/goGuard/navigate"
	"github.com/MrEthical07/goGuard/session"
	"github.com/google/uuid"
)

func main() {
	var (
		scenarioPath = flag.String("scenario", "", "path to a scenario JSON file; empty runs the bench")
		snapshots    = flag.Int("snapshots", 4096, "number of synthetic snapshots in bench mode")
		concurrency  = flag.Int("concurrency", 256, "number of concurrent workers in bench mode")
		ops          = flag.Int("ops", 200000, "evaluations per phase in bench mode")
		metrics      = flag.Bool("metrics", false, "print the Prometheus exposition after each bench phase")
	)
	flag.Parse()

	runID := uuid.NewString()

	if *scenarioPath != "" {
		if err := runScenario(os.Stdout, runID, *scenarioPath); err != nil {
			fmt.Fprintf(os.Stderr, "scenario failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *snapshots <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "snapshots, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	runBench(runID, *snapshots, *concurrency, *ops, *metrics)
}

type scenarioFile struct {
	Name    string          `json:"name,omitempty"`
	Config  *scenarioConfig `json:"config,omitempty"`
	Initial snapshotSpec    `json:"initial"`
	Steps   []scenarioStep  `json:"steps"`
}

type scenarioConfig struct {
	FailClosed       bool              `json:"fail_closed,omitempty"`
	Login            string            `json:"login,omitempty"`
	DefaultDashboard string            `json:"default_dashboard,omitempty"`
	RoleDashboards   map[string]string `json:"role_dashboards,omitempty"`
	MissingActive    string            `json:"missing_active,omitempty"`
}

// build starts from the default preset (or the fail-closed one) and lays the
// scenario's overrides on top. Audit is forced on: the JSONL trace is half the
// point of a scenario run.
func (sc *scenarioConfig) build() (goGuard.Config, error) {
	cfg := goGuard.DefaultConfig()
	if sc != nil {
		if sc.FailClosed {
			cfg = goGuard.FailClosedConfig()
		}
		if sc.Login != "" {
			cfg.Routes.Login = navigate.Path(sc.Login)
		}
		if sc.DefaultDashboard != "" {
			cfg.Routes.DefaultDashboard = navigate.Path(sc.DefaultDashboard)
		}
		if len(sc.RoleDashboards) > 0 {
			cfg.Routes.RoleDashboards = make(map[string]navigate.Path, len(sc.RoleDashboards))
			for role, target := range sc.RoleDashboards {
				cfg.Routes.RoleDashboards[role] = navigate.Path(target)
			}
		}
		switch sc.MissingActive {
		case "":
		case "active":
			cfg.Policy.MissingActive = goGuard.ActivePolicyDefaultActive
		case "inactive":
			cfg.Policy.MissingActive = goGuard.ActivePolicyDefaultInactive
		default:
			return goGuard.Config{}, fmt.Errorf("config: missing_active must be \"active\" or \"inactive\", got %q", sc.MissingActive)
		}
	}
	cfg.Audit.Enabled = true
	return cfg, nil
}

type snapshotSpec struct {
	Authenticated bool             `json:"authenticated,omitempty"`
	Loading       bool             `json:"loading,omitempty"`
	Initialized   bool             `json:"initialized,omitempty"`
	Version       uint64           `json:"version,omitempty"`
	SessionID     string           `json:"session_id,omitempty"`
	Profile       *session.Profile `json:"profile,omitempty"`
}

func (s snapshotSpec) snapshot() session.Snapshot {
	return session.Snapshot{
		Authenticated: s.Authenticated,
		Loading:       s.Loading,
		Initialized:   s.Initialized,
		Version:       s.Version,
		SessionID:     s.SessionID,
		Profile:       s.Profile.Clone(),
	}
}

type scenarioStep struct {
	Set      *snapshotSpec `json:"set,omitempty"`
	Evaluate *evaluateSpec `json:"evaluate,omitempty"`
}

type evaluateSpec struct {
	RequiredRole string `json:"required_role,omitempty"`
	Location     string `json:"location,omitempty"`
}

// simSession is the scripted session handle behind a scenario run. Set steps
// replace the snapshot wholesale; a forced logout applies the same transition
// the real store does, so the trace after it matches what a host would see.
type simSession struct {
	mu   sync.Mutex
	snap session.Snapshot

	initCalls   int
	logoutCalls int
}

func (s *simSession) Snapshot() session.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.snap
	out.Profile = s.snap.Profile.Clone()
	return out
}

func (s *simSession) InitializeAuth() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initCalls++
}

func (s *simSession) Logout(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logoutCalls++
	signedIn := s.snap.Authenticated || s.snap.Profile != nil || s.snap.SessionID != ""
	if signedIn {
		s.snap.Authenticated = false
		s.snap.Loading = false
		s.snap.Initialized = true
		s.snap.Profile = nil
		s.snap.SessionID = ""
		s.snap.Version++
	}
	return nil
}

func (s *simSession) set(snap session.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap
}

func (s *simSession) version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.Version
}

func (s *simSession) calls() (initCalls, logoutCalls int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initCalls, s.logoutCalls
}

func runScenario(out io.Writer, runID, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var sc scenarioFile
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&sc); err != nil {
		return fmt.Errorf("parse %s: %v", path, err)
	}
	if len(sc.Steps) == 0 {
		return fmt.Errorf("parse %s: scenario has no steps", path)
	}

	cfg, err := sc.Config.build()
	if err != nil {
		return err
	}

	handle := &simSession{snap: sc.Initial.snapshot()}
	rec := navigate.NewRecorder()
	var auditBuf bytes.Buffer

	guard, err := goGuard.New().
		WithConfig(cfg).
		WithSession(handle).
		WithNavigator(rec).
		WithAuditSink(goGuard.NewJSONWriterSink(&auditBuf)).
		Build()
	if err != nil {
		return err
	}
	if err := guard.Ready(); err != nil {
		return err
	}

	name := sc.Name
	if name == "" {
		name = path
	}
	fmt.Fprintf(out, "run %s: scenario %q steps=%d\n", runID, name, len(sc.Steps))

	ctx := context.Background()
	evaluations := 0
	for i, step := range sc.Steps {
		n := i + 1
		switch {
		case step.Set != nil && step.Evaluate != nil:
			return fmt.Errorf("step %d: set and evaluate are mutually exclusive", n)

		case step.Set != nil:
			snap := step.Set.snapshot()
			if snap.Version == 0 {
				// Versions drive the once-per-snapshot initialization gate, so
				// an unnumbered step still has to move the version forward.
				snap.Version = handle.version() + 1
			}
			handle.set(snap)
			fmt.Fprintf(out, "step %d: set %s\n", n, formatSnapshot(snap))

		case step.Evaluate != nil:
			evaluations++
			req := goGuard.Request{
				RequiredRole: step.Evaluate.RequiredRole,
				Location:     navigate.Location(step.Evaluate.Location),
			}
			d := guard.Evaluate(ctx, req)
			if d.Outcome == goGuard.OutcomeRedirect && d.Redirect != nil {
				// Execute the redirect the way a host would, so the recorder
				// sees the same calls a navigator would have received.
				_ = rec.Redirect(ctx, d.Redirect.Target, d.Redirect.Context)
			}
			fmt.Fprintf(out, "step %d: evaluate %s -> %s\n", n, formatRequest(req), formatDecision(d))

		default:
			return fmt.Errorf("step %d: needs either set or evaluate", n)
		}
	}

	// Close flushes the audit dispatcher; only then is the buffer complete.
	guard.Close()

	initCalls, logoutCalls := handle.calls()
	fmt.Fprintln(out, "---- summary ----")
	fmt.Fprintf(out, "steps=%d evaluations=%d redirects=%d init_requests=%d forced_logouts=%d audit_dropped=%d\n",
		len(sc.Steps), evaluations, len(rec.Calls()), initCalls, logoutCalls, guard.AuditDropped())
	fmt.Fprintln(out, "---- audit ----")
	_, _ = out.Write(auditBuf.Bytes())
	return nil
}

func formatSnapshot(snap session.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "authenticated=%t loading=%t initialized=%t version=%d",
		snap.Authenticated, snap.Loading, snap.Initialized, snap.Version)
	if snap.SessionID != "" {
		fmt.Fprintf(&b, " session=%s", snap.SessionID)
	}
	if snap.Profile == nil {
		b.WriteString(" profile=none")
	} else {
		fmt.Fprintf(&b, " user=%s role=%s active=%s",
			snap.Profile.Username, snap.Profile.RoleOrEmpty(), formatActive(snap.Profile.Active))
	}
	return b.String()
}

func formatActive(active *bool) string {
	if active == nil {
		return "absent"
	}
	return fmt.Sprintf("%t", *active)
}

func formatRequest(req goGuard.Request) string {
	if req.RequiredRole == "" {
		return fmt.Sprintf("location=%s", req.Location)
	}
	return fmt.Sprintf("location=%s required_role=%s", req.Location, req.RequiredRole)
}

func formatDecision(d goGuard.Decision) string {
	var b strings.Builder
	fmt.Fprintf(&b, "state=%s outcome=%s", d.State, d.Outcome)
	if d.Redirect != nil {
		fmt.Fprintf(&b, " target=%s", d.Redirect.Target)
		if d.Redirect.Context.From != "" {
			fmt.Fprintf(&b, " from=%s", d.Redirect.Context.From)
		}
		if d.Redirect.Context.Inactive {
			b.WriteString(" inactive=true")
		}
	}
	if d.InitializeRequested {
		b.WriteString(" init_requested=true")
	}
	if d.LogoutForced {
		b.WriteString(" logout_forced=true")
	}
	return b.String()
}

func runBench(runID string, nsnaps, concurrency, ops int, metrics bool) {
	fmt.Printf("run %s: bench snapshots=%d concurrency=%d ops=%d\n", runID, nsnaps, concurrency, ops)

	snaps := makeSnapshots(nsnaps)

	plain, plainExpo := runPhase(snaps, goGuard.Request{Location: "/bench"}, ops, concurrency, metrics)
	role, roleExpo := runPhase(snaps, goGuard.Request{RequiredRole: "admin", Location: "/bench/admin"}, ops, concurrency, metrics)

	fmt.Println("---- results ----")
	printStats("evaluate", plain)
	printStats("evaluate_role", role)

	if metrics {
		fmt.Println("---- metrics: evaluate ----")
		fmt.Print(plainExpo)
		fmt.Println("---- metrics: evaluate_role ----")
		fmt.Print(roleExpo)
	}
}

// runPhase drives one guard over the shared population and verifies its
// counters afterwards. Each phase gets a fresh guard so the totals are exact.
func runPhase(snaps []session.Snapshot, req goGuard.Request, ops, concurrency int, metrics bool) (phaseStats, string) {
	handle := newBenchSession(snaps)

	guard, err := goGuard.New().
		WithSession(handle).
		WithNavigator(navigate.NewRecorder()).
		WithMetricsEnabled(true).
		WithLatencyHistograms(metrics).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "guard build failed: %v\n", err)
		os.Exit(1)
	}
	defer guard.Close()

	var (
		wg        sync.WaitGroup
		cursor    atomic.Int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	ctx := context.Background()
	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				i := int(cursor.Add(1)) - 1
				if i >= ops {
					return
				}
				t0 := time.Now()
				_ = guard.Evaluate(ctx, req)
				d := time.Since(t0)
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	total := time.Since(start)

	failures := counterFailures(guard.MetricsSnapshot(), expectedCounters(snaps, ops, req.RequiredRole))

	expo := ""
	if metrics {
		expo = prometheus.NewPrometheusExporter(guard).Render()
	}
	return computeStats(total, latencies, failures), expo
}

// benchSession hands the synthetic snapshots out round-robin. The cursor is
// the only shared mutable state, which keeps the expected counter totals per
// phase exact. Profile pointers are shared and treated as immutable for the
// whole run.
type benchSession struct {
	snaps  []session.Snapshot
	cursor atomic.Uint64
}

func newBenchSession(snaps []session.Snapshot) *benchSession {
	return &benchSession{snaps: snaps}
}

func (s *benchSession) Snapshot() session.Snapshot {
	i := s.cursor.Add(1) - 1
	return s.snaps[i%uint64(len(s.snaps))]
}

// InitializeAuth is a no-op; the synthetic population never carries an
// uninitialized idle snapshot.
func (s *benchSession) InitializeAuth() {}

// Logout is a no-op. The population is shared; signing one entry out would
// change what the other workers draw.
func (s *benchSession) Logout(context.Context) error { return nil }

// makeSnapshots builds the synthetic population. Kinds cycle every eight
// entries so any slice length exercises every decision path: three authorized
// admins and two authorized members per cycle, then a loading, a signed-out,
// and a deactivated entry.
func makeSnapshots(n int) []session.Snapshot {
	active := true
	inactive := false

	out := make([]session.Snapshot, n)
	for i := range out {
		snap := session.Snapshot{
			Initialized: true,
			Version:     uint64(i + 1),
		}
		switch i % 8 {
		case 0, 1, 2:
			snap.Authenticated = true
			snap.SessionID = fmt.Sprintf("sess-%d", i)
			snap.Profile = &session.Profile{
				ID:       fmt.Sprintf("u-%d", i),
				Username: "admin",
				Role:     "admin",
				Active:   &active,
			}
		case 3, 4:
			snap.Authenticated = true
			snap.SessionID = fmt.Sprintf("sess-%d", i)
			snap.Profile = &session.Profile{
				ID:       fmt.Sprintf("u-%d", i),
				Username: "member",
				Role:     "member",
				Active:   &active,
			}
		case 5:
			snap.Loading = true
			snap.Initialized = false
		case 6:
			// Initialization settled with nobody signed in.
		case 7:
			snap.Authenticated = true
			snap.SessionID = fmt.Sprintf("sess-%d", i)
			snap.Profile = &session.Profile{
				ID:       fmt.Sprintf("u-%d", i),
				Username: "member",
				Role:     "member",
				Active:   &inactive,
			}
		}
		out[i] = snap
	}
	return out
}

// expectedMetric mirrors the decision ladder under the default policy. The
// bench charges every synthetic snapshot against this oracle; drift between
// the two shows up as failures.
func expectedMetric(snap session.Snapshot, requiredRole string) goGuard.MetricID {
	switch {
	case snap.Loading:
		return goGuard.MetricEvaluateLoading
	case !snap.Authenticated:
		return goGuard.MetricEvaluateRedirectLogin
	case !snap.Profile.ActiveOrDefault(true):
		return goGuard.MetricEvaluateRedirectInactive
	case requiredRole != "" && snap.Profile.RoleOrEmpty() != requiredRole:
		return goGuard.MetricEvaluateRedirectRoleMismatch
	default:
		return goGuard.MetricEvaluateAuthorized
	}
}

// expectedCounters computes the exact totals a phase must produce. The cursor
// hands indexes out 0..ops-1 exactly once each, so the consumption count per
// snapshot is ops/len plus one for the first ops%len entries.
func expectedCounters(snaps []session.Snapshot, ops int, requiredRole string) map[goGuard.MetricID]uint64 {
	expected := make(map[goGuard.MetricID]uint64)
	base := uint64(ops / len(snaps))
	extra := ops % len(snaps)
	for i, snap := range snaps {
		consumed := base
		if i < extra {
			consumed++
		}
		if consumed == 0 {
			continue
		}
		expected[expectedMetric(snap, requiredRole)] += consumed
		if snap.Authenticated && !snap.Profile.ActiveOrDefault(true) {
			expected[goGuard.MetricLogoutForced] += consumed
		}
	}
	return expected
}

func counterFailures(got goGuard.MetricsSnapshot, expected map[goGuard.MetricID]uint64) int64 {
	checked := []goGuard.MetricID{
		goGuard.MetricEvaluateAuthorized,
		goGuard.MetricEvaluateLoading,
		goGuard.MetricEvaluateRedirectLogin,
		goGuard.MetricEvaluateRedirectInactive,
		goGuard.MetricEvaluateRedirectRoleMismatch,
		goGuard.MetricLogoutForced,
	}
	var failures int64
	for _, id := range checked {
		want := expected[id]
		have := got.Counters[id]
		if have > want {
			failures += int64(have - want)
		} else {
			failures += int64(want - have)
		}
	}
	return failures
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
