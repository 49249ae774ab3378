package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/couplegraph/couplegraph/internal/graph"
)

// Config holds all application configuration.
type Config struct {
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Graph    GraphConfig    `mapstructure:"graph"`
	Temporal TemporalConfig `mapstructure:"temporal"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
}

// AnalysisConfig tunes the coupling graph engine.
type AnalysisConfig struct {
	// IDHexWidth is the truncated digest length of node ids in hex chars.
	// 16 (64 bits) by default; 8 reproduces the legacy id scheme at a
	// real collision risk on large codebases.
	IDHexWidth int `mapstructure:"id_hex_width"`

	// LineRefCap bounds line references per aggregated edge; 0 keeps them
	// unbounded.
	LineRefCap int `mapstructure:"line_ref_cap"`

	// LineCountCache bounds the filesystem line counter's LRU cache.
	LineCountCache int `mapstructure:"line_count_cache"`

	// Workers enables the partitioned parallel build when > 1.
	Workers int `mapstructure:"workers"`

	// Weights overrides base weights per violation type; unset types keep
	// their defaults.
	Weights map[string]float64 `mapstructure:"weights"`

	// LocalityMultipliers overrides the locality multiplier table.
	LocalityMultipliers map[string]float64 `mapstructure:"locality_multipliers"`
}

// GraphConfig configures the optional Neo4j graph store.
type GraphConfig struct {
	URI      string `mapstructure:"uri"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type TemporalConfig struct {
	Host      string `mapstructure:"host"`
	Namespace string `mapstructure:"namespace"`
	TaskQueue string `mapstructure:"task_queue"`
}

type TracingConfig struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	Environment  string  `mapstructure:"environment"`
	SampleRate   float64 `mapstructure:"sample_rate"`
}

// WeightConfig materializes the configured weighting tables, starting from
// the reference defaults and applying overrides on top.
func (c AnalysisConfig) WeightConfig() graph.WeightConfig {
	w := graph.DefaultWeights()
	for typ, weight := range c.Weights {
		w.Base[typ] = weight
	}
	for loc, mult := range c.LocalityMultipliers {
		w.Locality[graph.Locality(loc)] = mult
	}
	return w
}

// Validate checks configuration for issues and returns warnings.
func (c *Config) Validate() []string {
	var warnings []string

	if w := c.Analysis.IDHexWidth; w != 0 && (w < 8 || w > 64) {
		warnings = append(warnings, fmt.Sprintf("analysis.id_hex_width %d is outside [8, 64]; the default of %d will be used", w, graph.DefaultIDHexWidth))
	}
	if c.Analysis.LineRefCap < 0 {
		warnings = append(warnings, fmt.Sprintf("analysis.line_ref_cap %d is negative; line references stay unbounded", c.Analysis.LineRefCap))
	}
	for typ, weight := range c.Analysis.Weights {
		if weight <= 0 {
			warnings = append(warnings, fmt.Sprintf("analysis.weights[%s] = %.2f is not positive", typ, weight))
		}
	}
	for loc, mult := range c.Analysis.LocalityMultipliers {
		if mult <= 0 {
			warnings = append(warnings, fmt.Sprintf("analysis.locality_multipliers[%s] = %.2f is not positive", loc, mult))
		}
	}
	if r := c.Tracing.SampleRate; r < 0 || r > 1.0 {
		warnings = append(warnings, fmt.Sprintf("tracing.sample_rate %.2f is outside [0.0, 1.0]", r))
	}

	return warnings
}

// Load reads configuration from file and environment.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("COUPLEGRAPH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if warnings := cfg.Validate(); len(warnings) > 0 {
		for _, warning := range warnings {
			fmt.Fprintf(os.Stderr, "Warning: %s\n", warning)
		}
	}

	return &cfg, nil
}

// EffectiveHexWidth returns the id width the builder should use.
func (c AnalysisConfig) EffectiveHexWidth() int {
	if c.IDHexWidth >= 8 && c.IDHexWidth <= 64 {
		return c.IDHexWidth
	}
	return graph.DefaultIDHexWidth
}
