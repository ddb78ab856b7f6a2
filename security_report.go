package goGuard

import "github.com/MrEthical07/goGuard/navigate"

type SecurityReport struct {
	FailOpenOnMissingActive bool
	LoginRoute              navigate.Path
	DefaultDashboard        navigate.Path
	RoleDashboards          int
	AuditEnabled            bool
	AuditDropIfFull         bool
	MetricsEnabled          bool
	LatencyHistograms       bool
	HighLintFindings        int
}

func (g *Guard) SecurityReport() SecurityReport {
	if g == nil {
		return SecurityReport{}
	}

	return SecurityReport{
		FailOpenOnMissingActive: g.config.Policy.MissingActive == ActivePolicyDefaultActive,
		LoginRoute:              g.config.Routes.Login,
		DefaultDashboard:        g.config.Routes.DefaultDashboard,
		RoleDashboards:          len(g.config.Routes.RoleDashboards),
		AuditEnabled:            g.config.Audit.Enabled,
		AuditDropIfFull:         g.config.Audit.DropIfFull,
		MetricsEnabled:          g.config.Metrics.Enabled,
		LatencyHistograms:       g.config.Metrics.EnableLatencyHistograms,
		HighLintFindings:        len(g.config.Lint().BySeverity(LintHigh)),
	}
}
