package qualitygate

import "fmt"

// GateConfig defines the configuration for quality gates. Zero or negative
// thresholds disable their gate, except MaxCritical, which is meaningful at
// zero (no critical hotspots tolerated).
type GateConfig struct {
	Enabled bool `mapstructure:"enabled" json:"enabled"`

	MaxCritical      int    `mapstructure:"max_critical" json:"max_critical"`
	CriticalSeverity string `mapstructure:"critical_severity" json:"critical_severity"`

	MaxNASARate  float64 `mapstructure:"max_nasa_rate" json:"max_nasa_rate"`
	NASASeverity string  `mapstructure:"nasa_severity" json:"nasa_severity"`

	MaxDensity      float64 `mapstructure:"max_density" json:"max_density"`
	DensitySeverity string  `mapstructure:"density_severity" json:"density_severity"`

	MaxCoupling      float64 `mapstructure:"max_coupling" json:"max_coupling"`
	CouplingSeverity string  `mapstructure:"coupling_severity" json:"coupling_severity"`
}

// DefaultConfig returns sensible default gate configuration.
func DefaultConfig() *GateConfig {
	return &GateConfig{
		Enabled:          true,
		MaxCritical:      0,
		CriticalSeverity: "required",
		MaxNASARate:      0.25,
		NASASeverity:     "required",
		MaxDensity:       0, // disabled by default
		DensitySeverity:  "advisory",
		MaxCoupling:      0, // disabled by default
		CouplingSeverity: "advisory",
	}
}

// parseSeverity converts a string to GateSeverity.
func parseSeverity(s string) GateSeverity {
	switch s {
	case "critical":
		return SeverityCritical
	case "required":
		return SeverityRequired
	case "advisory":
		return SeverityAdvisory
	default:
		return SeverityRequired
	}
}

// BuildPipeline constructs a gate pipeline from configuration.
func BuildPipeline(cfg *GateConfig) *Pipeline {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	p := NewPipeline()

	if cfg.MaxCritical >= 0 {
		p.AddGate(NewCriticalHotspotGate(cfg.MaxCritical, parseSeverity(cfg.CriticalSeverity)))
	}

	if cfg.MaxNASARate > 0 {
		p.AddGate(NewNASARateGate(cfg.MaxNASARate, parseSeverity(cfg.NASASeverity)))
	}

	if cfg.MaxDensity > 0 {
		p.AddGate(NewDensityGate(cfg.MaxDensity, parseSeverity(cfg.DensitySeverity)))
	}

	if cfg.MaxCoupling > 0 {
		p.AddGate(NewCouplingStrengthGate(cfg.MaxCoupling, parseSeverity(cfg.CouplingSeverity)))
	}

	return p
}

// FormatReport returns a human-readable quality gate report.
func FormatReport(result *PipelineResult) string {
	var s string
	s += "╔══════════════════════════════════════════╗\n"
	s += "║        Quality Gate Report               ║\n"
	s += "╠══════════════════════════════════════════╣\n"

	for _, gr := range result.Gates {
		icon := "✓"
		switch gr.Status {
		case GateFailed:
			icon = "✗"
		case GateSkipped:
			icon = "○"
		case GateWarning:
			icon = "⚠"
		}

		severity := ""
		switch gr.Severity {
		case SeverityCritical:
			severity = "[CRITICAL]"
		case SeverityRequired:
			severity = "[REQUIRED]"
		case SeverityAdvisory:
			severity = "[ADVISORY]"
		}

		s += fmt.Sprintf("║ %s %-18s %-10s %s\n", icon, gr.Name, severity, gr.Message)
		for _, d := range gr.Details {
			s += fmt.Sprintf("║   → %s\n", d)
		}
	}

	s += "╠══════════════════════════════════════════╣\n"
	status := "PASSED"
	if result.Status == GateFailed {
		status = "FAILED"
	}
	s += fmt.Sprintf("║ Result: %s (%s)\n", status, result.Summary)
	s += "╚══════════════════════════════════════════╝\n"

	return s
}
