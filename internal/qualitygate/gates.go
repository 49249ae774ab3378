package qualitygate

import "fmt"

// CriticalHotspotGate fails when the ranking contains more critical
// hotspots than allowed.
type CriticalHotspotGate struct {
	MaxCritical int
	severity    GateSeverity
}

func NewCriticalHotspotGate(maxCritical int, severity GateSeverity) *CriticalHotspotGate {
	return &CriticalHotspotGate{MaxCritical: maxCritical, severity: severity}
}

func (g *CriticalHotspotGate) Name() string           { return "critical_hotspots" }
func (g *CriticalHotspotGate) Severity() GateSeverity { return g.severity }
func (g *CriticalHotspotGate) Evaluate(ctx *EvalContext) (*GateResult, error) {
	count := ctx.CriticalHotspots()
	r := &GateResult{
		Name:      g.Name(),
		Severity:  g.severity,
		Score:     float64(count),
		Threshold: float64(g.MaxCritical),
	}
	if count <= g.MaxCritical {
		r.Status = GatePassed
		r.Message = fmt.Sprintf("%d critical hotspots within limit %d", count, g.MaxCritical)
	} else {
		r.Status = GateFailed
		r.Message = fmt.Sprintf("%d critical hotspots exceed limit %d", count, g.MaxCritical)
		for _, h := range ctx.Graph.Hotspots {
			if h.Priority == "critical" {
				r.Details = append(r.Details, fmt.Sprintf("%s (score %.2f)", h.Label, h.Score))
			}
		}
	}
	return r, nil
}

// NASARateGate fails when too large a share of graph nodes carries
// safety-rule violations.
type NASARateGate struct {
	MaxRate  float64
	severity GateSeverity
}

func NewNASARateGate(maxRate float64, severity GateSeverity) *NASARateGate {
	return &NASARateGate{MaxRate: maxRate, severity: severity}
}

func (g *NASARateGate) Name() string           { return "nasa_rate" }
func (g *NASARateGate) Severity() GateSeverity { return g.severity }
func (g *NASARateGate) Evaluate(ctx *EvalContext) (*GateResult, error) {
	rate := ctx.Graph.Statistics.NASAViolationRate
	r := &GateResult{
		Name:      g.Name(),
		Severity:  g.severity,
		Score:     rate,
		Threshold: g.MaxRate,
	}
	if ctx.Graph.Statistics.TotalNodes == 0 {
		r.Status = GateSkipped
		r.Message = "Empty graph, no NASA rate to evaluate"
		return r, nil
	}
	if rate <= g.MaxRate {
		r.Status = GatePassed
		r.Message = fmt.Sprintf("NASA violation rate %.1f%% within limit %.1f%%", rate*100, g.MaxRate*100)
	} else {
		r.Status = GateFailed
		r.Message = fmt.Sprintf("NASA violation rate %.1f%% exceeds limit %.1f%%", rate*100, g.MaxRate*100)
	}
	return r, nil
}

// DensityGate fails when the graph is denser than allowed; a dense coupling
// graph means relationships are spread across most entity pairs.
type DensityGate struct {
	MaxDensity float64
	severity   GateSeverity
}

func NewDensityGate(maxDensity float64, severity GateSeverity) *DensityGate {
	return &DensityGate{MaxDensity: maxDensity, severity: severity}
}

func (g *DensityGate) Name() string           { return "graph_density" }
func (g *DensityGate) Severity() GateSeverity { return g.severity }
func (g *DensityGate) Evaluate(ctx *EvalContext) (*GateResult, error) {
	density := ctx.Graph.Statistics.GraphDensity
	r := &GateResult{
		Name:      g.Name(),
		Severity:  g.severity,
		Score:     density,
		Threshold: g.MaxDensity,
	}
	if density <= g.MaxDensity {
		r.Status = GatePassed
		r.Message = fmt.Sprintf("Graph density %.3f within limit %.3f", density, g.MaxDensity)
	} else {
		r.Status = GateFailed
		r.Message = fmt.Sprintf("Graph density %.3f exceeds limit %.3f", density, g.MaxDensity)
	}
	return r, nil
}

// CouplingStrengthGate fails when the average aggregated edge weight
// exceeds a threshold.
type CouplingStrengthGate struct {
	MaxAverage float64
	severity   GateSeverity
}

func NewCouplingStrengthGate(maxAverage float64, severity GateSeverity) *CouplingStrengthGate {
	return &CouplingStrengthGate{MaxAverage: maxAverage, severity: severity}
}

func (g *CouplingStrengthGate) Name() string           { return "coupling_strength" }
func (g *CouplingStrengthGate) Severity() GateSeverity { return g.severity }
func (g *CouplingStrengthGate) Evaluate(ctx *EvalContext) (*GateResult, error) {
	avg := ctx.Graph.Statistics.AverageCouplingStrength
	r := &GateResult{
		Name:      g.Name(),
		Severity:  g.severity,
		Score:     avg,
		Threshold: g.MaxAverage,
	}
	if ctx.Graph.Statistics.TotalEdges == 0 {
		r.Status = GateSkipped
		r.Message = "No edges, no coupling strength to evaluate"
		return r, nil
	}
	if avg <= g.MaxAverage {
		r.Status = GatePassed
		r.Message = fmt.Sprintf("Average coupling strength %.2f within limit %.2f", avg, g.MaxAverage)
	} else {
		r.Status = GateFailed
		r.Message = fmt.Sprintf("Average coupling strength %.2f exceeds limit %.2f", avg, g.MaxAverage)
	}
	return r, nil
}
