package graph

// Statistics holds graph-level metrics derived from the finished nodes and
// edges. All ratio fields guard their divisions: an empty graph yields
// zeroes and a "none" most-common edge type.
type Statistics struct {
	TotalNodes              int     `json:"total_nodes"`
	TotalEdges              int     `json:"total_edges"`
	GraphDensity            float64 `json:"graph_density"`
	AverageCouplingStrength float64 `json:"average_coupling_strength"`
	NASAViolationRate       float64 `json:"nasa_violation_rate"`
	FileNodes               int     `json:"file_nodes"`
	ClassNodes              int     `json:"class_nodes"`
	FunctionNodes           int     `json:"function_nodes"`
	MostCommonEdgeType      string  `json:"most_common_edge_type"`
}

// ComputeStatistics is a pure function over the finished graph content.
func ComputeStatistics(nodes []*Node, edges []Edge) Statistics {
	stats := Statistics{
		TotalNodes:         len(nodes),
		TotalEdges:         len(edges),
		MostCommonEdgeType: "none",
	}

	nasaNodes := 0
	for _, n := range nodes {
		switch n.Kind {
		case NodeFile:
			stats.FileNodes++
		case NodeClass:
			stats.ClassNodes++
		case NodeFunction:
			stats.FunctionNodes++
		}
		if n.NASAViolationCount > 0 {
			nasaNodes++
		}
	}

	totalWeight := 0.0
	edgeTypes := make(map[string]int)
	for _, e := range edges {
		edgeTypes[e.Type]++
		totalWeight += e.Weight
	}

	// Density over a directed graph without self-loop capacity; defined as
	// 0.0 for graphs of one node or fewer.
	if maxEdges := len(nodes) * (len(nodes) - 1); maxEdges > 0 {
		stats.GraphDensity = float64(len(edges)) / float64(maxEdges)
	}
	if len(edges) > 0 {
		stats.AverageCouplingStrength = totalWeight / float64(len(edges))
	}
	if len(nodes) > 0 {
		stats.NASAViolationRate = float64(nasaNodes) / float64(len(nodes))
	}

	// Highest occurrence count wins; ties break toward the type seen
	// earliest in the edge list so the result is order-independent of map
	// iteration.
	best := -1
	for _, e := range edges {
		if count := edgeTypes[e.Type]; count > best {
			best = count
			stats.MostCommonEdgeType = e.Type
		}
	}

	return stats
}
