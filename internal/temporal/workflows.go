package temporal

import (
	"fmt"
	"time"

	"go.temporal.io/sdk/workflow"
)

// TaskQueue is the default task queue for analysis workflows.
const TaskQueue = "couplegraph-analysis"

// AnalysisInput holds the workflow parameters for one analysis run.
type AnalysisInput struct {
	InputPath  string // Violation feed (JSON)
	OutputPath string // Export destination
	Format     string // "json" or "gexf"
	Scope      string // Analysis scope label recorded in metadata

	// Optional enrichment feeds
	ChurnPath    string
	CoveragePath string

	// Graph store persistence (optional)
	Project    string
	StoreGraph bool
}

// AnalysisOutput holds the workflow result.
type AnalysisOutput struct {
	OutputPath string
	Nodes      int
	Edges      int
	Hotspots   int
	Critical   int
	Stored     bool
	Errors     []string
}

// AnalysisWorkflow orchestrates ingest, build/export, and graph store
// persistence as separate activities so each step retries independently.
func AnalysisWorkflow(ctx workflow.Context, input AnalysisInput) (*AnalysisOutput, error) {
	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 10 * time.Minute,
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	var ingested IngestResult
	if err := workflow.ExecuteActivity(ctx, IngestActivity, input).Get(ctx, &ingested); err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}

	var built BuildResult
	if err := workflow.ExecuteActivity(ctx, BuildExportActivity, input, ingested).Get(ctx, &built); err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}

	output := &AnalysisOutput{
		OutputPath: input.OutputPath,
		Nodes:      built.Nodes,
		Edges:      built.Edges,
		Hotspots:   built.Hotspots,
		Critical:   built.Critical,
		Errors:     ingested.Warnings,
	}

	if input.StoreGraph {
		if err := workflow.ExecuteActivity(ctx, StoreActivity, input, built).Get(ctx, nil); err != nil {
			// Persistence failure does not invalidate the exported artifact.
			output.Errors = append(output.Errors, fmt.Sprintf("graph store: %v", err))
			return output, nil
		}
		output.Stored = true
	}

	return output, nil
}
