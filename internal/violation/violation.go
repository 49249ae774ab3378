// Package violation defines the input contract for the coupling graph
// engine: violation records produced by an upstream detection pipeline,
// plus the optional churn and test-coverage side inputs.
//
// The feed is loosely structured. Every field except the violation type is
// optional and takes a documented default; a malformed record is never a
// reason to fail an analysis run.
package violation

import (
	"encoding/json"
	"fmt"
	"io"
)

// Defaults applied to absent fields.
const (
	DefaultFilePath = "unknown"
	DefaultSeverity = "medium"
	DefaultType     = "unknown"
)

// Reference points at another code location coupled to the violation site.
type Reference struct {
	FilePath     string `json:"file_path,omitempty"`
	ClassName    string `json:"class_name,omitempty"`
	FunctionName string `json:"function_name,omitempty"`
	LineNumber   int    `json:"line_number,omitempty"`
}

// Violation is one record from the upstream detector feed.
type Violation struct {
	Type         string      `json:"type"`
	FilePath     string      `json:"file_path,omitempty"`
	LineNumber   int         `json:"line_number,omitempty"`
	Severity     string      `json:"severity,omitempty"`
	ClassName    string      `json:"class_name,omitempty"`
	FunctionName string      `json:"function_name,omitempty"`
	Complexity   *float64    `json:"complexity,omitempty"`
	References   []Reference `json:"references,omitempty"`
}

// EffectiveType returns the violation type, defaulting when absent.
func (v Violation) EffectiveType() string {
	if v.Type == "" {
		return DefaultType
	}
	return v.Type
}

// PathOrUnknown returns the file path, defaulting when absent. The raw
// FilePath stays empty for locality decisions: a record that names no file
// at all is cross-module, but its nodes still land under "unknown".
func (v Violation) PathOrUnknown() string {
	if v.FilePath == "" {
		return DefaultFilePath
	}
	return v.FilePath
}

// EffectiveSeverity returns the severity, defaulting when absent.
func (v Violation) EffectiveSeverity() string {
	if v.Severity == "" {
		return DefaultSeverity
	}
	return v.Severity
}

// nasaTypes is the fixed set of violation types mapped to NASA Power of Ten
// safety-rule categories. Used only as a score multiplier downstream.
var nasaTypes = map[string]struct{}{
	"god_object":          {},
	"unbounded_loop":      {},
	"dynamic_allocation":  {},
	"large_function":      {},
	"deep_nesting":        {},
	"global_data":         {},
	"unchecked_return":    {},
	"complex_expressions": {},
}

// IsNASA reports whether the violation falls into a NASA safety category.
func (v Violation) IsNASA() bool {
	_, ok := nasaTypes[v.Type]
	return ok
}

// AnalysisResults is the top-level document produced by the detector feed.
type AnalysisResults struct {
	Violations []Violation `json:"violations"`
	Scope      string      `json:"scope,omitempty"`
}

// EffectiveScope returns the analysis scope, defaulting when absent.
func (r AnalysisResults) EffectiveScope() string {
	if r.Scope == "" {
		return "unknown"
	}
	return r.Scope
}

// DistinctFiles counts the distinct file paths referenced by the feed,
// counting records without a path once under the default.
func (r AnalysisResults) DistinctFiles() int {
	seen := make(map[string]struct{}, len(r.Violations))
	for _, v := range r.Violations {
		seen[v.PathOrUnknown()] = struct{}{}
	}
	return len(seen)
}

// ReadResults decodes a detector feed. Unknown fields are ignored and an
// empty violations list is valid input.
func ReadResults(r io.Reader) (*AnalysisResults, error) {
	var results AnalysisResults
	if err := json.NewDecoder(r).Decode(&results); err != nil {
		return nil, fmt.Errorf("decoding analysis results: %w", err)
	}
	return &results, nil
}

// ChurnMap maps file paths to churn rates (e.g. commits per time period).
type ChurnMap map[string]float64

// ReadChurn decodes a churn side input.
func ReadChurn(r io.Reader) (ChurnMap, error) {
	var m ChurnMap
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("decoding churn data: %w", err)
	}
	return m, nil
}

// coverageEntry mirrors the per-file coverage record; the coverage ratio
// itself may be absent even when the file has an entry.
type coverageEntry struct {
	Coverage *float64 `json:"coverage"`
}

// CoverageMap maps file paths to coverage ratios in [0, 1]. A nil value
// means the file had an entry without a usable ratio.
type CoverageMap map[string]*float64

// ReadCoverage decodes a test-coverage side input.
func ReadCoverage(r io.Reader) (CoverageMap, error) {
	var raw map[string]coverageEntry
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding coverage data: %w", err)
	}
	m := make(CoverageMap, len(raw))
	for path, entry := range raw {
		m[path] = entry.Coverage
	}
	return m, nil
}
