package graph

import (
	"golang.org/x/sync/errgroup"
)

// buildPartitioned splits the violation slice into contiguous chunks, runs
// node and edge extraction per chunk in parallel, then merges the chunk
// deltas sequentially in chunk order. Because chunks are contiguous and
// merged in order, first-writer fields (labels, complexity, edge severity)
// resolve to the lowest violation index, and node/edge order matches the
// sequential build exactly. All numeric totals are additive, so the merged
// graph is identical to a sequential one.
func (b *Builder) buildPartitioned(in Input) ([]*Node, []Edge) {
	violations := in.Results.Violations
	workers := b.workers
	if workers > len(violations) {
		workers = len(violations)
	}

	type delta struct {
		nodes []*Node
		edges []Edge
	}
	deltas := make([]delta, workers)

	chunk := (len(violations) + workers - 1) / workers

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		lo := w * chunk
		if lo > len(violations) {
			lo = len(violations)
		}
		hi := lo + chunk
		if hi > len(violations) {
			hi = len(violations)
		}
		part := violations[lo:hi]
		out := &deltas[w]
		g.Go(func() error {
			reg := NewRegistry(b.hexWidth, b.lines, in.Churn, in.Coverage)
			eb := NewEdgeBuilder(b.weights, b.locality)
			for _, v := range part {
				reg.Observe(v)
				out.edges = append(out.edges, eb.Build(v, reg)...)
			}
			out.nodes = reg.Nodes()
			return nil
		})
	}
	// Workers only write their own delta slot and never return errors.
	_ = g.Wait()

	merged := NewRegistry(b.hexWidth, nil, nil, nil)
	var edges []Edge
	for _, d := range deltas {
		for _, n := range d.nodes {
			merged.merge(n)
		}
		edges = append(edges, d.edges...)
	}
	return merged.Nodes(), edges
}

// merge folds a node delta from a partition into the registry: counts add,
// every other field keeps the earliest partition's value.
func (r *Registry) merge(n *Node) {
	if existing, ok := r.nodes[n.ID]; ok {
		existing.ViolationCount += n.ViolationCount
		existing.NASAViolationCount += n.NASAViolationCount
		return
	}
	copied := *n
	r.insert(&copied)
}
