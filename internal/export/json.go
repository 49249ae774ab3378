package export

import (
	"encoding/json"
	"io"

	"github.com/couplegraph/couplegraph/internal/graph"
)

// document fixes the section order of the JSON report.
type document struct {
	Metadata   graph.Metadata   `json:"metadata"`
	Statistics graph.Statistics `json:"statistics"`
	Nodes      []*graph.Node    `json:"nodes"`
	Edges      []graph.Edge     `json:"edges"`
	Hotspots   []graph.Hotspot  `json:"hotspots"`
}

// WriteJSON emits the tree-shaped report: metadata, statistics, nodes,
// edges, hotspots. Absent optional numerics serialize as null, never
// omitted; line references serialize as arrays of 2-element arrays.
func WriteJSON(g *graph.CouplingGraph, w io.Writer) error {
	doc := document{
		Metadata:   g.Metadata,
		Statistics: g.Statistics,
		Nodes:      g.Nodes,
		Edges:      g.Edges,
		Hotspots:   g.Hotspots,
	}
	// Empty sections render as [] rather than null.
	if doc.Nodes == nil {
		doc.Nodes = []*graph.Node{}
	}
	if doc.Edges == nil {
		doc.Edges = []graph.Edge{}
	}
	if doc.Hotspots == nil {
		doc.Hotspots = []graph.Hotspot{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
