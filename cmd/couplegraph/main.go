package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/couplegraph/couplegraph/internal/config"
	"github.com/couplegraph/couplegraph/internal/export"
	"github.com/couplegraph/couplegraph/internal/graph"
	"github.com/couplegraph/couplegraph/internal/graphstore/neo4j"
	"github.com/couplegraph/couplegraph/internal/metrics"
	"github.com/couplegraph/couplegraph/internal/observability"
	"github.com/couplegraph/couplegraph/internal/qualitygate"
	"github.com/couplegraph/couplegraph/internal/violation"
)

func main() {
	var (
		inputPath    string
		outputPath   string
		formatName   string
		scope        string
		churnPath    string
		coveragePath string
		configPath   string
		jsonReport   bool
		workers      int

		project  string
		neo4jURI string
	)

	rootCmd := &cobra.Command{
		Use:   "couplegraph",
		Short: "Coupling graph and hotspot ranking engine",
	}

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Build the coupling graph from a violation feed and export it",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(exportOptions{
				configPath:   configPath,
				inputPath:    inputPath,
				outputPath:   outputPath,
				format:       formatName,
				scope:        scope,
				churnPath:    churnPath,
				coveragePath: coveragePath,
				jsonReport:   jsonReport,
				workers:      workers,
				project:      project,
				neo4jURI:     neo4jURI,
			})
		},
	}

	exportCmd.Flags().StringVar(&inputPath, "input", "", "Violation feed (JSON)")
	exportCmd.Flags().StringVar(&outputPath, "output", "", "Output file path")
	exportCmd.Flags().StringVar(&formatName, "format", "json", "Export format (json or gexf)")
	exportCmd.Flags().StringVar(&scope, "scope", "", "Override the analysis scope recorded in metadata")
	exportCmd.Flags().StringVar(&churnPath, "churn", "", "Churn side input (JSON)")
	exportCmd.Flags().StringVar(&coveragePath, "coverage", "", "Test coverage side input (JSON)")
	exportCmd.Flags().StringVar(&configPath, "config", "configs/couplegraph.yaml", "Config file path")
	exportCmd.Flags().BoolVar(&jsonReport, "json", false, "Output metrics as JSON")
	exportCmd.Flags().IntVar(&workers, "workers", 0, "Parallel build workers (0 uses config, 1 is sequential)")
	exportCmd.Flags().StringVar(&project, "project", "", "Project name for graph store persistence")
	exportCmd.Flags().StringVar(&neo4jURI, "neo4j-uri", "", "Neo4j URI; overrides config, requires --project")
	_ = exportCmd.MarkFlagRequired("input")
	_ = exportCmd.MarkFlagRequired("output")

	var topN int
	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Build the graph and print statistics and top hotspots",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(configPath, inputPath, churnPath, coveragePath, topN, jsonReport)
		},
	}
	statsCmd.Flags().StringVar(&inputPath, "input", "", "Violation feed (JSON)")
	statsCmd.Flags().StringVar(&churnPath, "churn", "", "Churn side input (JSON)")
	statsCmd.Flags().StringVar(&coveragePath, "coverage", "", "Test coverage side input (JSON)")
	statsCmd.Flags().StringVar(&configPath, "config", "configs/couplegraph.yaml", "Config file path")
	statsCmd.Flags().IntVar(&topN, "top", 10, "Number of hotspots to list")
	statsCmd.Flags().BoolVar(&jsonReport, "json", false, "Output statistics as JSON")
	_ = statsCmd.MarkFlagRequired("input")

	var (
		graphPath   string
		maxCritical int
		maxNASARate float64
	)
	gateCmd := &cobra.Command{
		Use:   "gate",
		Short: "Evaluate quality gates against an exported graph",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGate(graphPath, maxCritical, maxNASARate)
		},
	}
	gateCmd.Flags().StringVar(&graphPath, "graph", "", "Exported graph artifact (JSON)")
	gateCmd.Flags().IntVar(&maxCritical, "max-critical", 0, "Maximum critical hotspots allowed")
	gateCmd.Flags().Float64Var(&maxNASARate, "max-nasa-rate", 0.25, "Maximum NASA violation rate allowed")
	_ = gateCmd.MarkFlagRequired("graph")

	rootCmd.AddCommand(exportCmd, statsCmd, gateCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

type exportOptions struct {
	configPath   string
	inputPath    string
	outputPath   string
	format       string
	scope        string
	churnPath    string
	coveragePath string
	jsonReport   bool
	workers      int
	project      string
	neo4jURI     string
}

func runExport(opts exportOptions) error {
	ctx := context.Background()
	m := metrics.New()
	var warnings []string

	cfg := loadConfig(opts.configPath)

	tp, err := observability.InitTracing(ctx, &observability.TracingConfig{
		ServiceName:  "couplegraph",
		Environment:  cfg.Tracing.Environment,
		OTLPEndpoint: cfg.Tracing.OTLPEndpoint,
		SampleRate:   cfg.Tracing.SampleRate,
	})
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("tracing: %v", err))
	} else {
		defer tp.Shutdown(ctx)
	}

	format, err := export.ParseFormat(opts.format)
	if err != nil {
		return err
	}

	in, ingestWarnings, err := readInput(opts.inputPath, opts.churnPath, opts.coveragePath, opts.scope)
	if err != nil {
		return err
	}
	warnings = append(warnings, ingestWarnings...)
	m.CollectInput(len(in.Results.Violations), in.Results.DistinctFiles(), in.Results.EffectiveScope(),
		len(in.Churn), len(in.Coverage))

	workers := cfg.Analysis.Workers
	if opts.workers > 0 {
		workers = opts.workers
	}

	start := time.Now()
	g := graph.NewBuilder(
		graph.WithWeights(cfg.Analysis.WeightConfig()),
		graph.WithIDHexWidth(cfg.Analysis.EffectiveHexWidth()),
		graph.WithLineRefCap(cfg.Analysis.LineRefCap),
		graph.WithLineCounter(graph.NewFSLineCounter(cfg.Analysis.LineCountCache)),
		graph.WithWorkers(workers),
	).Build(in)
	observability.Metrics().RecordBuild(ctx, len(g.Nodes), len(g.Edges), len(g.Hotspots), time.Since(start))

	m.CollectGraph(g)

	exportStart := time.Now()
	err = export.WriteFile(g, opts.outputPath, format)
	observability.Metrics().RecordExport(ctx, string(format), time.Since(exportStart), err)
	if err != nil {
		return err
	}

	stored := false
	uri := opts.neo4jURI
	if uri == "" {
		uri = cfg.Graph.URI
	}
	if opts.project != "" && uri != "" {
		if err := storeGraph(ctx, uri, cfg.Graph.Username, cfg.Graph.Password, opts.project, g); err != nil {
			warnings = append(warnings, fmt.Sprintf("graph store: %v", err))
		} else {
			stored = true
		}
	}

	m.CollectOutput(string(format), opts.outputPath, stored)
	m.Finish(warnings)

	if opts.jsonReport {
		data, _ := m.JSON()
		fmt.Println(string(data))
	} else {
		m.PrintSummary(os.Stdout)
	}

	return nil
}

func runStats(configPath, inputPath, churnPath, coveragePath string, topN int, jsonReport bool) error {
	cfg := loadConfig(configPath)

	in, warnings, err := readInput(inputPath, churnPath, coveragePath, "")
	if err != nil {
		return err
	}
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
	}

	g := graph.NewBuilder(
		graph.WithWeights(cfg.Analysis.WeightConfig()),
		graph.WithIDHexWidth(cfg.Analysis.EffectiveHexWidth()),
		graph.WithLineRefCap(cfg.Analysis.LineRefCap),
		graph.WithLineCounter(graph.NewFSLineCounter(cfg.Analysis.LineCountCache)),
		graph.WithWorkers(cfg.Analysis.Workers),
	).Build(in)

	if jsonReport {
		out := struct {
			Statistics graph.Statistics `json:"statistics"`
			Hotspots   []graph.Hotspot  `json:"hotspots"`
		}{Statistics: g.Statistics, Hotspots: topHotspots(g, topN)}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	s := g.Statistics
	fmt.Printf("Nodes:             %d (files %d, classes %d, functions %d)\n",
		s.TotalNodes, s.FileNodes, s.ClassNodes, s.FunctionNodes)
	fmt.Printf("Edges:             %d (most common: %s)\n", s.TotalEdges, s.MostCommonEdgeType)
	fmt.Printf("Density:           %.4f\n", s.GraphDensity)
	fmt.Printf("Avg coupling:      %.2f\n", s.AverageCouplingStrength)
	fmt.Printf("NASA rate:         %.1f%%\n", s.NASAViolationRate*100)

	hotspots := topHotspots(g, topN)
	if len(hotspots) > 0 {
		fmt.Printf("\nTop %d hotspots:\n", len(hotspots))
		for i, h := range hotspots {
			fmt.Printf("  %2d. [%-8s] %-30s score %.2f (coupling %.1f, violations %d)\n",
				i+1, h.Priority, h.Label, h.Score, h.CouplingScore, h.ViolationCount)
		}
	}

	return nil
}

func runGate(graphPath string, maxCritical int, maxNASARate float64) error {
	data, err := os.ReadFile(graphPath)
	if err != nil {
		return fmt.Errorf("reading graph artifact: %w", err)
	}

	var g graph.CouplingGraph
	if err := json.Unmarshal(data, &g); err != nil {
		return fmt.Errorf("parsing graph artifact: %w", err)
	}

	gateCfg := qualitygate.DefaultConfig()
	gateCfg.MaxCritical = maxCritical
	gateCfg.MaxNASARate = maxNASARate

	pipeline := qualitygate.BuildPipeline(gateCfg)
	result := pipeline.Run(&qualitygate.EvalContext{Graph: &g})

	fmt.Print(qualitygate.FormatReport(result))

	if result.Status == qualitygate.GateFailed {
		return fmt.Errorf("quality gates failed")
	}
	return nil
}

func loadConfig(path string) *config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: config load failed (%v), using defaults\n", err)
		cfg = &config.Config{}
	}
	return cfg
}

// readInput decodes the violation feed plus optional side inputs. Side input
// failures degrade to warnings.
func readInput(inputPath, churnPath, coveragePath, scope string) (graph.Input, []string, error) {
	var in graph.Input
	var warnings []string

	f, err := os.Open(inputPath)
	if err != nil {
		return in, nil, fmt.Errorf("opening violation feed: %w", err)
	}
	defer f.Close()

	results, err := violation.ReadResults(f)
	if err != nil {
		return in, nil, err
	}
	in.Results = *results
	if scope != "" {
		in.Results.Scope = scope
	}

	if churnPath != "" {
		cf, err := os.Open(churnPath)
		if err == nil {
			in.Churn, err = violation.ReadChurn(cf)
			cf.Close()
		}
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("churn data: %v", err))
		}
	}

	if coveragePath != "" {
		vf, err := os.Open(coveragePath)
		if err == nil {
			in.Coverage, err = violation.ReadCoverage(vf)
			vf.Close()
		}
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("coverage data: %v", err))
		}
	}

	return in, warnings, nil
}

func storeGraph(ctx context.Context, uri, username, password, project string, g *graph.CouplingGraph) error {
	repo, err := neo4j.NewNeo4j(ctx, uri, username, password)
	if err != nil {
		return err
	}
	defer repo.Close(ctx)
	return repo.StoreGraph(ctx, project, g)
}

func topHotspots(g *graph.CouplingGraph, n int) []graph.Hotspot {
	if n <= 0 || n >= len(g.Hotspots) {
		return g.Hotspots
	}
	return g.Hotspots[:n]
}
