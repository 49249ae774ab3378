package graph

import (
	"github.com/couplegraph/couplegraph/internal/violation"
)

// Locality is the narrowest scope shared by two coupled elements. It is a
// weighting heuristic, not a result of scope analysis.
type Locality string

const (
	SameFunction Locality = "same_function"
	SameClass    Locality = "same_class"
	SameModule   Locality = "same_module"
	CrossModule  Locality = "cross_module"
)

// LineRef is one (source_line, target_line) pair contributing to an edge.
// It marshals as a 2-element JSON array.
type LineRef [2]int

// Edge represents one relationship instance between two nodes, possibly
// self-referencing.
type Edge struct {
	SourceID string    `json:"source_id"`
	TargetID string    `json:"target_id"`
	Type     string    `json:"edge_type"`
	Weight   float64   `json:"weight"`
	Severity string    `json:"severity"`
	Locality Locality  `json:"locality"`
	LineRefs []LineRef `json:"line_references"`
}

// WeightConfig holds the immutable weighting tables injected into the edge
// builder. Unknown violation types fall back to DefaultBaseWeight; unknown
// localities to a multiplier of 1.0.
type WeightConfig struct {
	Base     map[string]float64
	Locality map[Locality]float64
}

// DefaultBaseWeight applies to violation types missing from the base table.
const DefaultBaseWeight = 1.0

// DefaultWeights returns the reference weighting scheme.
func DefaultWeights() WeightConfig {
	return WeightConfig{
		Base: map[string]float64{
			"connascence_of_name":      1.0,
			"connascence_of_type":      1.2,
			"connascence_of_meaning":   1.5,
			"connascence_of_position":  2.0,
			"connascence_of_algorithm": 3.0,
			"connascence_of_execution": 2.5,
			"connascence_of_timing":    3.5,
			"connascence_of_value":     2.2,
			"connascence_of_identity":  4.0,
			"god_object":               5.0,
		},
		Locality: map[Locality]float64{
			SameFunction: 0.8,
			SameClass:    1.0,
			SameModule:   1.3,
			CrossModule:  2.0,
		},
	}
}

// base returns the base weight for a violation type.
func (w WeightConfig) base(violationType string) float64 {
	if bw, ok := w.Base[violationType]; ok {
		return bw
	}
	return DefaultBaseWeight
}

// multiplier returns the locality multiplier.
func (w WeightConfig) multiplier(l Locality) float64 {
	if m, ok := w.Locality[l]; ok {
		return m
	}
	return 1.0
}

// LocalityResolver decides the locality of a violation. The interface
// exists so a resolver backed by real scope data can replace the default
// presence heuristic without touching the edge builder.
type LocalityResolver interface {
	Resolve(v violation.Violation) Locality
}

// PresenceLocality is the default resolver: the narrowest location field a
// violation names determines its locality. This stands in for true scope
// analysis and is documented as a limitation.
type PresenceLocality struct{}

func (PresenceLocality) Resolve(v violation.Violation) Locality {
	switch {
	case v.FunctionName != "":
		return SameFunction
	case v.ClassName != "":
		return SameClass
	case v.FilePath != "":
		return SameModule
	default:
		return CrossModule
	}
}

// EdgeBuilder converts violations into weighted relationship edges.
type EdgeBuilder struct {
	weights  WeightConfig
	locality LocalityResolver
}

// NewEdgeBuilder creates an edge builder with the given tables and
// resolver. A nil resolver selects the presence heuristic.
func NewEdgeBuilder(weights WeightConfig, locality LocalityResolver) *EdgeBuilder {
	if locality == nil {
		locality = PresenceLocality{}
	}
	return &EdgeBuilder{weights: weights, locality: locality}
}

// Build emits the edges for one violation. Precedence, first match wins:
//
//  1. god_object: one self-loop on the class node.
//  2. explicit references: one edge per reference from the violation's own
//     most-specific location; self-references are dropped.
//  3. otherwise: one self-loop on the file node.
//
// The registry is consulted for id derivation only; reference targets are
// not materialized as nodes.
func (b *EdgeBuilder) Build(v violation.Violation, reg *Registry) []Edge {
	edgeType := v.EffectiveType()
	locality := b.locality.Resolve(v)
	weight := b.weights.base(edgeType) * b.weights.multiplier(locality)
	severity := v.EffectiveSeverity()
	path := v.PathOrUnknown()

	if edgeType == "god_object" {
		class := v.ClassName
		if class == "" {
			class = "unknown"
		}
		classID := reg.Class(path, class).ID
		return []Edge{{
			SourceID: classID,
			TargetID: classID,
			Type:     edgeType,
			Weight:   weight,
			Severity: severity,
			Locality: locality,
			LineRefs: []LineRef{{v.LineNumber, v.LineNumber}},
		}}
	}

	if len(v.References) > 0 {
		sourceID := b.locationID(reg, path, v.ClassName, v.FunctionName)
		edges := make([]Edge, 0, len(v.References))
		for _, ref := range v.References {
			refPath := ref.FilePath
			if refPath == "" {
				refPath = violation.DefaultFilePath
			}
			targetID := b.locationID(reg, refPath, ref.ClassName, ref.FunctionName)
			if targetID == sourceID {
				// Self-references carry no coupling information.
				continue
			}
			edges = append(edges, Edge{
				SourceID: sourceID,
				TargetID: targetID,
				Type:     edgeType,
				Weight:   weight,
				Severity: severity,
				Locality: locality,
				LineRefs: []LineRef{{v.LineNumber, ref.LineNumber}},
			})
		}
		return edges
	}

	fileID := reg.File(path).ID
	return []Edge{{
		SourceID: fileID,
		TargetID: fileID,
		Type:     edgeType,
		Weight:   weight,
		Severity: severity,
		Locality: locality,
		LineRefs: []LineRef{{v.LineNumber, v.LineNumber}},
	}}
}

// locationID resolves a location to a node id at the most specific
// available granularity: function > class > file.
func (b *EdgeBuilder) locationID(reg *Registry, path, class, fn string) string {
	switch {
	case fn != "":
		return reg.ID(NodeFunction, functionIdentifier(path, class, fn))
	case class != "":
		return reg.ID(NodeClass, classIdentifier(path, class))
	default:
		return reg.ID(NodeFile, path)
	}
}
