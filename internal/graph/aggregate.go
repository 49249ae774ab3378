package graph

// edgeKey identifies the aggregation bucket for an edge.
type edgeKey struct {
	source string
	target string
	typ    string
}

// Aggregator merges duplicate edges keyed on (source, target, type).
// Weights sum and line references append; severity, locality and every
// other descriptive field keep the values of the first edge inserted for a
// key. That first-writer rule is a documented contract: insertion order
// decides, and callers that parallelize must pin insertion order first.
//
// Output order is the insertion order of first occurrence, so aggregation
// is deterministic for a fixed input order.
type Aggregator struct {
	// lineRefCap bounds line_references per aggregated edge; 0 means
	// unbounded. Truncation keeps the most recent entries.
	lineRefCap int
}

// NewAggregator creates an aggregator. cap <= 0 leaves line references
// unbounded.
func NewAggregator(lineRefCap int) *Aggregator {
	if lineRefCap < 0 {
		lineRefCap = 0
	}
	return &Aggregator{lineRefCap: lineRefCap}
}

// Aggregate merges the edge list. The input is not modified; accumulator
// edges own fresh line-reference slices. Aggregating an already-aggregated
// list (one edge per distinct key) returns an equal list.
func (a *Aggregator) Aggregate(edges []Edge) []Edge {
	index := make(map[edgeKey]int, len(edges))
	out := make([]Edge, 0, len(edges))

	for _, e := range edges {
		key := edgeKey{e.SourceID, e.TargetID, e.Type}
		if i, ok := index[key]; ok {
			out[i].Weight += e.Weight
			out[i].LineRefs = append(out[i].LineRefs, e.LineRefs...)
			continue
		}
		acc := e
		acc.LineRefs = append([]LineRef(nil), e.LineRefs...)
		index[key] = len(out)
		out = append(out, acc)
	}

	if a.lineRefCap > 0 {
		for i := range out {
			if n := len(out[i].LineRefs); n > a.lineRefCap {
				out[i].LineRefs = out[i].LineRefs[n-a.lineRefCap:]
			}
		}
	}

	return out
}
