package metrics

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/couplegraph/couplegraph/internal/graph"
)

// RunMetrics collects statistics for a full analysis run.
type RunMetrics struct {
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at,omitempty"`
	Duration   time.Duration `json:"duration_ms,omitempty"`
	Input      InputMetrics  `json:"input"`
	Graph      GraphMetrics  `json:"graph"`
	Output     OutputMetrics `json:"output"`
	Errors     []string      `json:"errors,omitempty"`
}

type InputMetrics struct {
	Violations int    `json:"violations"`
	Files      int    `json:"files"`
	Scope      string `json:"scope"`
	ChurnFiles int    `json:"churn_files"`
	Covered    int    `json:"covered_files"`
}

type GraphMetrics struct {
	Nodes            int     `json:"nodes"`
	Edges            int     `json:"edges"`
	Hotspots         int     `json:"hotspots"`
	CriticalHotspots int     `json:"critical_hotspots"`
	Density          float64 `json:"density"`
	TopHotspot       string  `json:"top_hotspot,omitempty"`
}

type OutputMetrics struct {
	Format string `json:"format"`
	Path   string `json:"path"`
	Stored bool   `json:"stored"` // persisted to the graph store
}

// New starts tracking an analysis run.
func New() *RunMetrics {
	return &RunMetrics{StartedAt: time.Now()}
}

// CollectInput records feed-side metrics.
func (m *RunMetrics) CollectInput(violations, files int, scope string, churnFiles, coveredFiles int) {
	m.Input.Violations = violations
	m.Input.Files = files
	m.Input.Scope = scope
	m.Input.ChurnFiles = churnFiles
	m.Input.Covered = coveredFiles
}

// CollectGraph records graph-side metrics from the finished artifact.
func (m *RunMetrics) CollectGraph(g *graph.CouplingGraph) {
	m.Graph.Nodes = len(g.Nodes)
	m.Graph.Edges = len(g.Edges)
	m.Graph.Hotspots = len(g.Hotspots)
	m.Graph.Density = g.Statistics.GraphDensity
	for _, h := range g.Hotspots {
		if h.Priority == graph.PriorityCritical {
			m.Graph.CriticalHotspots++
		}
	}
	if len(g.Hotspots) > 0 {
		m.Graph.TopHotspot = g.Hotspots[0].Label
	}
}

// CollectOutput records where and how the graph was written.
func (m *RunMetrics) CollectOutput(format, path string, stored bool) {
	m.Output.Format = format
	m.Output.Path = path
	m.Output.Stored = stored
}

// Finish marks the run as complete.
func (m *RunMetrics) Finish(errs []string) {
	m.FinishedAt = time.Now()
	m.Duration = m.FinishedAt.Sub(m.StartedAt)
	m.Errors = errs
}

// PrintSummary writes a human-readable summary.
func (m *RunMetrics) PrintSummary(w io.Writer) {
	fmt.Fprintf(w, "\n╔══════════════════════════════════════╗\n")
	fmt.Fprintf(w, "║      COUPLEGRAPH ANALYSIS REPORT     ║\n")
	fmt.Fprintf(w, "╠══════════════════════════════════════╣\n")
	fmt.Fprintf(w, "║ Duration:    %-23s║\n", m.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "╠══════════════════════════════════════╣\n")
	fmt.Fprintf(w, "║ INPUT (%s)\n", m.Input.Scope)
	fmt.Fprintf(w, "║   Violations:  %d\n", m.Input.Violations)
	fmt.Fprintf(w, "║   Files:       %d\n", m.Input.Files)
	fmt.Fprintf(w, "║   Churn data:  %d files\n", m.Input.ChurnFiles)
	fmt.Fprintf(w, "║   Coverage:    %d files\n", m.Input.Covered)
	fmt.Fprintf(w, "╠══════════════════════════════════════╣\n")
	fmt.Fprintf(w, "║ GRAPH\n")
	fmt.Fprintf(w, "║   Nodes:       %d\n", m.Graph.Nodes)
	fmt.Fprintf(w, "║   Edges:       %d\n", m.Graph.Edges)
	fmt.Fprintf(w, "║   Hotspots:    %d (%d critical)\n", m.Graph.Hotspots, m.Graph.CriticalHotspots)
	fmt.Fprintf(w, "║   Density:     %.3f\n", m.Graph.Density)
	if m.Graph.TopHotspot != "" {
		fmt.Fprintf(w, "║   Top hotspot: %s\n", m.Graph.TopHotspot)
	}
	fmt.Fprintf(w, "╠══════════════════════════════════════╣\n")
	fmt.Fprintf(w, "║ OUTPUT (%s)\n", m.Output.Format)
	fmt.Fprintf(w, "║   Path:        %s\n", m.Output.Path)
	if m.Output.Stored {
		fmt.Fprintf(w, "║   Graph store: written\n")
	}
	if len(m.Errors) > 0 {
		fmt.Fprintf(w, "╠══════════════════════════════════════╣\n")
		fmt.Fprintf(w, "║ ERRORS\n")
		for _, e := range m.Errors {
			fmt.Fprintf(w, "║   • %s\n", e)
		}
	}
	fmt.Fprintf(w, "╚══════════════════════════════════════╝\n")
}

// JSON returns the metrics as formatted JSON.
func (m *RunMetrics) JSON() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}
