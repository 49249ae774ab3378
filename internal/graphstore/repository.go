// Package graphstore provides optional persistence for coupling graphs,
// keyed by project. Persistence is a sink on top of the pipeline; the
// engine itself never reads stored state.
package graphstore

import (
	"context"

	"github.com/couplegraph/couplegraph/internal/graph"
)

// Repository stores finished coupling graphs.
type Repository interface {
	// StoreGraph persists a run's graph for a project, replacing any
	// previous run for the same project.
	StoreGraph(ctx context.Context, project string, g *graph.CouplingGraph) error
	// LoadHotspots returns the stored ranking for a project, best first,
	// at most limit entries (limit <= 0 means all).
	LoadHotspots(ctx context.Context, project string, limit int) ([]graph.Hotspot, error)
	// Close releases resources.
	Close(ctx context.Context) error
}
