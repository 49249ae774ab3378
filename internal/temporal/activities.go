package temporal

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/couplegraph/couplegraph/internal/config"
	"github.com/couplegraph/couplegraph/internal/export"
	"github.com/couplegraph/couplegraph/internal/graph"
	"github.com/couplegraph/couplegraph/internal/graphstore"
	"github.com/couplegraph/couplegraph/internal/observability"
	"github.com/couplegraph/couplegraph/internal/violation"
)

// IngestResult carries the decoded feeds between activities. All fields are
// JSON-serializable for the Temporal data converter.
type IngestResult struct {
	Results  violation.AnalysisResults
	Churn    violation.ChurnMap
	Coverage violation.CoverageMap
	Warnings []string
}

// BuildResult carries the finished graph and its headline counts.
type BuildResult struct {
	Graph    *graph.CouplingGraph
	Nodes    int
	Edges    int
	Hotspots int
	Critical int
}

// Dependencies holds shared resources injected into activities.
type Dependencies struct {
	Config     *config.Config
	Repository graphstore.Repository // nil disables StoreActivity
}

var deps *Dependencies

// SetDependencies injects shared resources (called during worker setup).
func SetDependencies(d *Dependencies) {
	deps = d
}

// IngestActivity decodes the violation feed and its optional side inputs.
// A missing or malformed side input degrades to a warning; a missing
// violation feed fails the activity.
func IngestActivity(ctx context.Context, input AnalysisInput) (IngestResult, error) {
	ctx, span := observability.StartIngestSpan(ctx, input.InputPath)
	defer span.End()

	out := IngestResult{}

	f, err := os.Open(input.InputPath)
	if err != nil {
		observability.RecordError(span, err)
		return out, fmt.Errorf("opening violation feed: %w", err)
	}
	defer f.Close()

	results, err := violation.ReadResults(f)
	if err != nil {
		observability.RecordError(span, err)
		return out, err
	}
	out.Results = *results
	if input.Scope != "" {
		out.Results.Scope = input.Scope
	}

	if input.ChurnPath != "" {
		churn, err := readChurnFile(input.ChurnPath)
		if err != nil {
			out.Warnings = append(out.Warnings, fmt.Sprintf("churn data: %v", err))
		} else {
			out.Churn = churn
		}
	}

	if input.CoveragePath != "" {
		coverage, err := readCoverageFile(input.CoveragePath)
		if err != nil {
			out.Warnings = append(out.Warnings, fmt.Sprintf("coverage data: %v", err))
		} else {
			out.Coverage = coverage
		}
	}

	observability.RecordIngestResult(span, len(out.Results.Violations), out.Results.DistinctFiles())
	observability.Metrics().RecordIngest(ctx, len(out.Results.Violations), out.Results.DistinctFiles(), out.Results.EffectiveScope())

	return out, nil
}

// BuildExportActivity builds the coupling graph and writes it to the
// configured output path.
func BuildExportActivity(ctx context.Context, input AnalysisInput, ingested IngestResult) (BuildResult, error) {
	ctx, span := observability.StartBuildSpan(ctx, len(ingested.Results.Violations))
	defer span.End()

	format, err := export.ParseFormat(input.Format)
	if err != nil {
		observability.RecordError(span, err)
		return BuildResult{}, err
	}

	opts := []graph.Option{}
	if deps != nil && deps.Config != nil {
		ac := deps.Config.Analysis
		opts = append(opts,
			graph.WithWeights(ac.WeightConfig()),
			graph.WithIDHexWidth(ac.EffectiveHexWidth()),
			graph.WithLineRefCap(ac.LineRefCap),
			graph.WithWorkers(ac.Workers),
			graph.WithLineCounter(graph.NewFSLineCounter(ac.LineCountCache)),
		)
	}

	start := time.Now()
	g := graph.NewBuilder(opts...).Build(graph.Input{
		Results:  ingested.Results,
		Churn:    ingested.Churn,
		Coverage: ingested.Coverage,
	})

	result := BuildResult{Graph: g, Nodes: len(g.Nodes), Edges: len(g.Edges), Hotspots: len(g.Hotspots)}
	for _, h := range g.Hotspots {
		if h.Priority == graph.PriorityCritical {
			result.Critical++
		}
	}

	observability.RecordBuildResult(span, result.Nodes, result.Edges, result.Hotspots)
	observability.Metrics().RecordBuild(ctx, result.Nodes, result.Edges, result.Hotspots, time.Since(start))

	exportStart := time.Now()
	err = export.WriteFile(g, input.OutputPath, format)
	observability.Metrics().RecordExport(ctx, string(format), time.Since(exportStart), err)
	if err != nil {
		observability.RecordError(span, err)
		return BuildResult{}, err
	}

	return result, nil
}

// StoreActivity persists the graph to the configured graph store.
func StoreActivity(ctx context.Context, input AnalysisInput, built BuildResult) error {
	ctx, span := observability.StartStoreSpan(ctx, input.Project)
	defer span.End()

	if deps == nil || deps.Repository == nil {
		err := fmt.Errorf("no graph store configured")
		observability.RecordError(span, err)
		return err
	}

	start := time.Now()
	if err := deps.Repository.StoreGraph(ctx, input.Project, built.Graph); err != nil {
		observability.RecordError(span, err)
		return fmt.Errorf("storing graph: %w", err)
	}
	observability.Metrics().RecordStore(ctx, input.Project, time.Since(start))

	return nil
}

func readChurnFile(path string) (violation.ChurnMap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return violation.ReadChurn(f)
}

func readCoverageFile(path string) (violation.CoverageMap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return violation.ReadCoverage(f)
}
