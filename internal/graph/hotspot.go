package graph

import (
	"math"
	"sort"
)

// Priority buckets for hotspot scores.
const (
	PriorityCritical = "critical"
	PriorityHigh     = "high"
	PriorityMedium   = "medium"
	PriorityLow      = "low"
)

// Hotspot is one ranked refactoring target. Only file and class nodes are
// ranked; function nodes stay in the graph but never appear here.
type Hotspot struct {
	NodeID             string   `json:"node_id"`
	Label              string   `json:"label"`
	FilePath           *string  `json:"file_path"`
	Kind               NodeKind `json:"node_type"`
	Score              float64  `json:"hotspot_score"`
	CouplingScore      float64  `json:"coupling_score"`
	ChurnRate          float64  `json:"churn_rate"`
	TestRisk           float64  `json:"test_risk"`
	Complexity         float64  `json:"complexity"`
	ViolationCount     int      `json:"violation_count"`
	NASAViolationCount int      `json:"nasa_violation_count"`
	Priority           string   `json:"priority"`
}

// Scoring weights for the composite hotspot formula.
const (
	couplingWeight = 0.4
	churnWeight    = 0.3
	testRiskWeight = 0.2
	cxWeight       = 0.1

	// nasaMultiplier doubles the score of any node carrying safety-rule
	// violations.
	nasaMultiplier = 2.0

	// unknownCoverage is the neutral coverage assumed when no data exists.
	unknownCoverage = 0.5
)

// ScoreHotspots computes composite refactoring-priority scores over the
// finished nodes and aggregated edges, writes each score back onto its node
// exactly once, and returns the ranking sorted descending by score. The
// sort is stable: ties keep node creation order for reproducibility.
func ScoreHotspots(nodes []*Node, edges []Edge) []Hotspot {
	coupling := couplingStrength(edges)

	hotspots := make([]Hotspot, 0, len(nodes))
	for _, n := range nodes {
		if n.Kind != NodeFile && n.Kind != NodeClass {
			continue
		}

		couplingScore := coupling[n.ID]
		churnScore := 0.0
		if n.ChurnRate != nil {
			churnScore = *n.ChurnRate
		}
		covered := unknownCoverage
		if n.TestCoverage != nil {
			covered = *n.TestCoverage
		}
		testRisk := 1.0 - covered
		complexity := 1.0
		if n.Complexity != nil {
			complexity = *n.Complexity
		}
		nasa := 1.0
		if n.NASAViolationCount > 0 {
			nasa = nasaMultiplier
		}

		score := (couplingScore*couplingWeight +
			churnScore*churnWeight +
			testRisk*testRiskWeight +
			math.Log(complexity+1)*cxWeight) * nasa

		s := score
		n.HotspotScore = &s

		hotspots = append(hotspots, Hotspot{
			NodeID:             n.ID,
			Label:              n.Label,
			FilePath:           n.FilePath,
			Kind:               n.Kind,
			Score:              score,
			CouplingScore:      couplingScore,
			ChurnRate:          churnScore,
			TestRisk:           testRisk,
			Complexity:         complexity,
			ViolationCount:     n.ViolationCount,
			NASAViolationCount: n.NASAViolationCount,
			Priority:           ClassifyPriority(score),
		})
	}

	sort.SliceStable(hotspots, func(i, j int) bool {
		return hotspots[i].Score > hotspots[j].Score
	})

	return hotspots
}

// couplingStrength sums each node's outgoing edge weight plus half the
// weight of incoming edges. Self-loops contribute once, as outgoing.
func couplingStrength(edges []Edge) map[string]float64 {
	coupling := make(map[string]float64)
	for _, e := range edges {
		coupling[e.SourceID] += e.Weight
		if e.SourceID != e.TargetID {
			coupling[e.TargetID] += e.Weight * 0.5
		}
	}
	return coupling
}

// ClassifyPriority maps a hotspot score to its priority bucket.
func ClassifyPriority(score float64) string {
	switch {
	case score >= 5.0:
		return PriorityCritical
	case score >= 3.0:
		return PriorityHigh
	case score >= 1.5:
		return PriorityMedium
	default:
		return PriorityLow
	}
}
