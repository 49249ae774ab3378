package observability

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MeterName is the name used for the couplegraph meter.
const MeterName = "github.com/couplegraph/couplegraph"

// PipelineMetrics contains the instruments for the analysis pipeline.
type PipelineMetrics struct {
	// Ingest instruments
	ViolationsTotal metric.Int64Counter
	FilesTotal      metric.Int64Counter

	// Build instruments
	NodesTotal    metric.Int64Counter
	EdgesTotal    metric.Int64Counter
	HotspotsTotal metric.Int64Counter
	BuildDuration metric.Float64Histogram

	// Export instruments
	ExportsTotal   metric.Int64Counter
	ExportDuration metric.Float64Histogram
	ExportErrors   metric.Int64Counter

	// Graph store instruments
	StoreWritesTotal metric.Int64Counter
	StoreDuration    metric.Float64Histogram

	// Worker instruments
	ActiveWorkers metric.Int64UpDownCounter
}

// NewPipelineMetrics creates the pipeline instruments on the global meter
// provider. Instrument creation only fails on invalid names, so errors are
// returned rather than swallowed.
func NewPipelineMetrics() (*PipelineMetrics, error) {
	meter := otel.Meter(MeterName)

	m := &PipelineMetrics{}
	var err error

	if m.ViolationsTotal, err = meter.Int64Counter("couplegraph_violations_total",
		metric.WithDescription("Total violations ingested")); err != nil {
		return nil, err
	}
	if m.FilesTotal, err = meter.Int64Counter("couplegraph_files_total",
		metric.WithDescription("Total distinct files seen in violation feeds")); err != nil {
		return nil, err
	}
	if m.NodesTotal, err = meter.Int64Counter("couplegraph_nodes_total",
		metric.WithDescription("Total graph nodes built")); err != nil {
		return nil, err
	}
	if m.EdgesTotal, err = meter.Int64Counter("couplegraph_edges_total",
		metric.WithDescription("Total aggregated edges built")); err != nil {
		return nil, err
	}
	if m.HotspotsTotal, err = meter.Int64Counter("couplegraph_hotspots_total",
		metric.WithDescription("Total ranked hotspots")); err != nil {
		return nil, err
	}
	if m.BuildDuration, err = meter.Float64Histogram("couplegraph_build_duration_seconds",
		metric.WithDescription("Graph build duration")); err != nil {
		return nil, err
	}
	if m.ExportsTotal, err = meter.Int64Counter("couplegraph_exports_total",
		metric.WithDescription("Total export operations")); err != nil {
		return nil, err
	}
	if m.ExportDuration, err = meter.Float64Histogram("couplegraph_export_duration_seconds",
		metric.WithDescription("Export serialization duration")); err != nil {
		return nil, err
	}
	if m.ExportErrors, err = meter.Int64Counter("couplegraph_export_errors_total",
		metric.WithDescription("Total failed export operations")); err != nil {
		return nil, err
	}
	if m.StoreWritesTotal, err = meter.Int64Counter("couplegraph_store_writes_total",
		metric.WithDescription("Total graph store writes")); err != nil {
		return nil, err
	}
	if m.StoreDuration, err = meter.Float64Histogram("couplegraph_store_duration_seconds",
		metric.WithDescription("Graph store write duration")); err != nil {
		return nil, err
	}
	if m.ActiveWorkers, err = meter.Int64UpDownCounter("couplegraph_active_workers",
		metric.WithDescription("Number of active build workers")); err != nil {
		return nil, err
	}

	return m, nil
}

// RecordIngest records feed-side counts.
func (m *PipelineMetrics) RecordIngest(ctx context.Context, violations, files int, scope string) {
	attrs := metric.WithAttributes(attribute.String("scope", scope))
	m.ViolationsTotal.Add(ctx, int64(violations), attrs)
	m.FilesTotal.Add(ctx, int64(files), attrs)
}

// RecordBuild records graph size and build latency.
func (m *PipelineMetrics) RecordBuild(ctx context.Context, nodes, edges, hotspots int, elapsed time.Duration) {
	m.NodesTotal.Add(ctx, int64(nodes))
	m.EdgesTotal.Add(ctx, int64(edges))
	m.HotspotsTotal.Add(ctx, int64(hotspots))
	m.BuildDuration.Record(ctx, elapsed.Seconds())
}

// RecordExport records a serialization operation.
func (m *PipelineMetrics) RecordExport(ctx context.Context, format string, elapsed time.Duration, err error) {
	attrs := metric.WithAttributes(attribute.String("format", format))
	m.ExportsTotal.Add(ctx, 1, attrs)
	m.ExportDuration.Record(ctx, elapsed.Seconds(), attrs)
	if err != nil {
		m.ExportErrors.Add(ctx, 1, attrs)
	}
}

// RecordStore records a graph store write.
func (m *PipelineMetrics) RecordStore(ctx context.Context, project string, elapsed time.Duration) {
	attrs := metric.WithAttributes(attribute.String("project", project))
	m.StoreWritesTotal.Add(ctx, 1, attrs)
	m.StoreDuration.Record(ctx, elapsed.Seconds(), attrs)
}

var (
	globalMetrics *PipelineMetrics
	metricsOnce   sync.Once
)

// Metrics returns the global pipeline metrics instance.
func Metrics() *PipelineMetrics {
	metricsOnce.Do(func() {
		m, err := NewPipelineMetrics()
		if err != nil {
			// Invalid instrument names are a programming error.
			panic(err)
		}
		globalMetrics = m
	})
	return globalMetrics
}
