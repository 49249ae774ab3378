package qualitygate

import (
	"errors"
	"strings"
	"testing"

	"github.com/couplegraph/couplegraph/internal/graph"
)

func testGraph(critical int, stats graph.Statistics) *graph.CouplingGraph {
	g := &graph.CouplingGraph{Statistics: stats}
	for i := 0; i < critical; i++ {
		g.Hotspots = append(g.Hotspots, graph.Hotspot{
			Label:    "hot",
			Score:    6.0,
			Priority: graph.PriorityCritical,
		})
	}
	return g
}

func TestCriticalHotspotGate(t *testing.T) {
	tests := []struct {
		name        string
		maxCritical int
		critical    int
		wantStatus  GateStatus
	}{
		{
			name:        "pass with none",
			maxCritical: 0,
			critical:    0,
			wantStatus:  GatePassed,
		},
		{
			name:        "pass at limit",
			maxCritical: 2,
			critical:    2,
			wantStatus:  GatePassed,
		},
		{
			name:        "fail above limit",
			maxCritical: 0,
			critical:    1,
			wantStatus:  GateFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gate := NewCriticalHotspotGate(tt.maxCritical, SeverityRequired)
			ctx := &EvalContext{Graph: testGraph(tt.critical, graph.Statistics{})}

			result, err := gate.Evaluate(ctx)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.Status != tt.wantStatus {
				t.Errorf("status = %s, want %s", result.Status, tt.wantStatus)
			}
			if tt.wantStatus == GateFailed && len(result.Details) != tt.critical {
				t.Errorf("expected %d detail lines, got %d", tt.critical, len(result.Details))
			}
		})
	}
}

func TestNASARateGate(t *testing.T) {
	tests := []struct {
		name       string
		maxRate    float64
		stats      graph.Statistics
		wantStatus GateStatus
	}{
		{
			name:       "pass under limit",
			maxRate:    0.25,
			stats:      graph.Statistics{TotalNodes: 10, NASAViolationRate: 0.1},
			wantStatus: GatePassed,
		},
		{
			name:       "fail over limit",
			maxRate:    0.25,
			stats:      graph.Statistics{TotalNodes: 10, NASAViolationRate: 0.5},
			wantStatus: GateFailed,
		},
		{
			name:       "skip on empty graph",
			maxRate:    0.25,
			stats:      graph.Statistics{},
			wantStatus: GateSkipped,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gate := NewNASARateGate(tt.maxRate, SeverityRequired)
			ctx := &EvalContext{Graph: testGraph(0, tt.stats)}

			result, err := gate.Evaluate(ctx)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.Status != tt.wantStatus {
				t.Errorf("status = %s, want %s", result.Status, tt.wantStatus)
			}
		})
	}
}

func TestDensityGate(t *testing.T) {
	gate := NewDensityGate(0.3, SeverityAdvisory)

	ctx := &EvalContext{Graph: testGraph(0, graph.Statistics{TotalNodes: 5, TotalEdges: 6, GraphDensity: 0.5})}
	result, err := gate.Evaluate(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if result.Status != GateFailed {
		t.Errorf("dense graph should fail, got %s", result.Status)
	}

	ctx = &EvalContext{Graph: testGraph(0, graph.Statistics{TotalNodes: 5, TotalEdges: 2, GraphDensity: 0.1})}
	result, _ = gate.Evaluate(ctx)
	if result.Status != GatePassed {
		t.Errorf("sparse graph should pass, got %s", result.Status)
	}
}

func TestCouplingStrengthGate_SkipsWithoutEdges(t *testing.T) {
	gate := NewCouplingStrengthGate(2.0, SeverityAdvisory)
	ctx := &EvalContext{Graph: testGraph(0, graph.Statistics{TotalNodes: 3})}

	result, err := gate.Evaluate(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if result.Status != GateSkipped {
		t.Errorf("expected skipped, got %s", result.Status)
	}
}

// failingGate is a test double whose evaluation errors.
type failingGate struct {
	severity GateSeverity
}

func (g *failingGate) Name() string           { return "failing" }
func (g *failingGate) Severity() GateSeverity { return g.severity }
func (g *failingGate) Evaluate(ctx *EvalContext) (*GateResult, error) {
	return nil, errors.New("boom")
}

func TestPipeline_RequiredFailureFailsOverall(t *testing.T) {
	p := NewPipeline(
		NewCriticalHotspotGate(0, SeverityRequired),
		NewDensityGate(0.9, SeverityAdvisory),
	)

	ctx := &EvalContext{Graph: testGraph(2, graph.Statistics{TotalNodes: 3, GraphDensity: 0.2})}
	result := p.Run(ctx)

	if result.Status != GateFailed {
		t.Errorf("overall status = %s, want failed", result.Status)
	}
	if result.FailedCount != 1 {
		t.Errorf("failed count = %d, want 1", result.FailedCount)
	}
	if result.PassedCount != 1 {
		t.Errorf("passed count = %d, want 1", result.PassedCount)
	}
}

func TestPipeline_CriticalFailureSkipsRemaining(t *testing.T) {
	p := NewPipeline(
		NewCriticalHotspotGate(0, SeverityCritical),
		NewDensityGate(0.9, SeverityAdvisory),
	)

	ctx := &EvalContext{Graph: testGraph(1, graph.Statistics{TotalNodes: 3, GraphDensity: 0.2})}
	result := p.Run(ctx)

	if result.Status != GateFailed {
		t.Fatalf("overall status = %s, want failed", result.Status)
	}
	if result.SkippedCount != 1 {
		t.Errorf("skipped count = %d, want 1", result.SkippedCount)
	}
	if got := result.Gates[1].Status; got != GateSkipped {
		t.Errorf("second gate status = %s, want skipped", got)
	}
}

func TestPipeline_EvaluationErrorFailsGate(t *testing.T) {
	p := NewPipeline(&failingGate{severity: SeverityRequired})

	result := p.Run(&EvalContext{Graph: testGraph(0, graph.Statistics{})})

	if result.Status != GateFailed {
		t.Errorf("overall status = %s, want failed", result.Status)
	}
	if !strings.Contains(result.Gates[0].Message, "boom") {
		t.Errorf("expected error message in gate result, got %q", result.Gates[0].Message)
	}
}

func TestBuildPipeline_Defaults(t *testing.T) {
	p := BuildPipeline(nil)

	// Defaults: critical hotspots and NASA rate gates enabled.
	if len(p.gates) != 2 {
		t.Fatalf("expected 2 gates from defaults, got %d", len(p.gates))
	}
	if p.gates[0].Name() != "critical_hotspots" {
		t.Errorf("first gate = %s, want critical_hotspots", p.gates[0].Name())
	}
	if p.gates[1].Name() != "nasa_rate" {
		t.Errorf("second gate = %s, want nasa_rate", p.gates[1].Name())
	}
}

func TestBuildPipeline_AllGates(t *testing.T) {
	cfg := &GateConfig{
		Enabled:          true,
		MaxCritical:      1,
		CriticalSeverity: "critical",
		MaxNASARate:      0.5,
		NASASeverity:     "required",
		MaxDensity:       0.3,
		DensitySeverity:  "advisory",
		MaxCoupling:      4.0,
		CouplingSeverity: "advisory",
	}

	p := BuildPipeline(cfg)
	if len(p.gates) != 4 {
		t.Fatalf("expected 4 gates, got %d", len(p.gates))
	}
	if p.gates[0].Severity() != SeverityCritical {
		t.Errorf("critical gate severity = %s, want critical", p.gates[0].Severity())
	}
}

func TestFormatReport(t *testing.T) {
	p := BuildPipeline(nil)
	result := p.Run(&EvalContext{Graph: testGraph(1, graph.Statistics{TotalNodes: 4, NASAViolationRate: 0.1})})

	report := FormatReport(result)
	if !strings.Contains(report, "Quality Gate Report") {
		t.Error("report missing header")
	}
	if !strings.Contains(report, "FAILED") {
		t.Error("report should show FAILED overall status")
	}
	if !strings.Contains(report, "critical_hotspots") {
		t.Error("report missing gate name")
	}
}
