// Package graph implements the coupling graph and hotspot ranking engine:
// it ingests violation records from an upstream detection pipeline, builds
// a typed, weighted, deduplicated graph of code-entity relationships,
// computes a composite refactoring-priority score per entity, and derives
// graph-level statistics. Serialization lives in internal/export.
package graph

import (
	"time"

	"github.com/couplegraph/couplegraph/internal/violation"
)

// GraphVersion identifies the artifact schema carried in metadata.
const GraphVersion = "1.0"

// Metadata describes one analysis run.
type Metadata struct {
	ExportTimestamp    string `json:"export_timestamp"`
	TotalFilesAnalyzed int    `json:"total_files_analyzed"`
	TotalViolations    int    `json:"total_violations"`
	GraphVersion       string `json:"graph_version"`
	AnalysisScope      string `json:"analysis_scope"`
}

// CouplingGraph is the complete artifact of one analysis run. It is built
// in a single pass and treated as immutable once returned.
type CouplingGraph struct {
	Nodes      []*Node    `json:"nodes"`
	Edges      []Edge     `json:"edges"`
	Metadata   Metadata   `json:"metadata"`
	Hotspots   []Hotspot  `json:"hotspots"`
	Statistics Statistics `json:"statistics"`
}

// Input bundles the violation feed with its optional side inputs.
type Input struct {
	Results  violation.AnalysisResults
	Churn    violation.ChurnMap
	Coverage violation.CoverageMap
}

// Builder runs the pipeline: nodes, edges, aggregation, hotspot scoring,
// statistics. A Builder is safe for sequential reuse across runs; each run
// produces an independent graph.
type Builder struct {
	weights    WeightConfig
	locality   LocalityResolver
	lines      LineCounter
	hexWidth   int
	lineRefCap int
	workers    int
	now        func() time.Time
}

// Option configures a Builder.
type Option func(*Builder)

// WithWeights overrides the weighting tables.
func WithWeights(w WeightConfig) Option {
	return func(b *Builder) { b.weights = w }
}

// WithLocalityResolver replaces the presence-heuristic locality resolver.
func WithLocalityResolver(r LocalityResolver) Option {
	return func(b *Builder) { b.locality = r }
}

// WithLineCounter injects the file line-count collaborator. Nil disables
// line counts entirely.
func WithLineCounter(lc LineCounter) Option {
	return func(b *Builder) { b.lines = lc }
}

// WithIDHexWidth sets the truncated digest width of node ids.
func WithIDHexWidth(width int) Option {
	return func(b *Builder) { b.hexWidth = width }
}

// WithLineRefCap bounds line references per aggregated edge; 0 keeps them
// unbounded.
func WithLineRefCap(cap int) Option {
	return func(b *Builder) { b.lineRefCap = cap }
}

// WithWorkers enables the partitioned parallel build with n workers.
// n <= 1 keeps the build fully sequential.
func WithWorkers(n int) Option {
	return func(b *Builder) { b.workers = n }
}

// WithNow overrides the metadata timestamp source.
func WithNow(now func() time.Time) Option {
	return func(b *Builder) { b.now = now }
}

// NewBuilder creates a Builder with the reference defaults: default weight
// tables, presence locality, filesystem line counter, 64-bit ids,
// unbounded line references, sequential build.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		weights:  DefaultWeights(),
		locality: PresenceLocality{},
		lines:    NewFSLineCounter(0),
		hexWidth: DefaultIDHexWidth,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build runs the full pipeline over the input. Malformed records never
// fail the build; an empty feed yields a valid empty graph.
func (b *Builder) Build(in Input) *CouplingGraph {
	var nodes []*Node
	var raw []Edge

	if b.workers > 1 && len(in.Results.Violations) > 1 {
		nodes, raw = b.buildPartitioned(in)
	} else {
		reg := NewRegistry(b.hexWidth, b.lines, in.Churn, in.Coverage)
		eb := NewEdgeBuilder(b.weights, b.locality)
		for _, v := range in.Results.Violations {
			reg.Observe(v)
			raw = append(raw, eb.Build(v, reg)...)
		}
		nodes = reg.Nodes()
	}

	edges := NewAggregator(b.lineRefCap).Aggregate(raw)
	hotspots := ScoreHotspots(nodes, edges)
	stats := ComputeStatistics(nodes, edges)

	return &CouplingGraph{
		Nodes:    nodes,
		Edges:    edges,
		Hotspots: hotspots,
		Metadata: Metadata{
			ExportTimestamp:    b.now().Format(time.RFC3339),
			TotalFilesAnalyzed: in.Results.DistinctFiles(),
			TotalViolations:    len(in.Results.Violations),
			GraphVersion:       GraphVersion,
			AnalysisScope:      in.Results.EffectiveScope(),
		},
		Statistics: stats,
	}
}
