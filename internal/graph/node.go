package graph

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"

	"github.com/couplegraph/couplegraph/internal/violation"
)

// NodeKind classifies graph nodes.
type NodeKind string

const (
	NodeFile     NodeKind = "file"
	NodeClass    NodeKind = "class"
	NodeFunction NodeKind = "function"
	NodeModule   NodeKind = "module"
)

// Node represents a file, class, or function in the coupling graph.
// Optional numeric fields are pointers so that "absent" survives into the
// JSON export as null rather than a zero.
type Node struct {
	ID                 string   `json:"id"`
	Label              string   `json:"label"`
	Kind               NodeKind `json:"node_type"`
	FilePath           *string  `json:"file_path"`
	LineCount          *int     `json:"line_count"`
	Complexity         *float64 `json:"complexity"`
	TestCoverage       *float64 `json:"test_coverage"`
	ChurnRate          *float64 `json:"churn_rate"`
	ViolationCount     int      `json:"violation_count"`
	NASAViolationCount int      `json:"nasa_violation_count"`
	HotspotScore       *float64 `json:"hotspot_score"`
}

// DefaultIDHexWidth is the truncated digest length for node ids, in hex
// characters. 16 chars is 64 bits; the reference implementation used 8
// (32 bits), which collides far earlier on large codebases. Widths down to
// 8 remain configurable for byte-compatibility with existing tooling.
const DefaultIDHexWidth = 16

// NodeID derives the stable identifier for a (kind, identifier) pair:
// kind + "_" + the first width hex chars of a SHA-256 digest.
func NodeID(kind NodeKind, identifier string, width int) string {
	if width <= 0 {
		width = DefaultIDHexWidth
	}
	sum := sha256.Sum256([]byte(identifier))
	digest := hex.EncodeToString(sum[:])
	if width < len(digest) {
		digest = digest[:width]
	}
	return string(kind) + "_" + digest
}

// classIdentifier and functionIdentifier build the canonical identifier
// strings hashed into node ids.
func classIdentifier(path, class string) string {
	return path + "::" + class
}

func functionIdentifier(path, class, fn string) string {
	if class == "" {
		class = "module"
	}
	return path + "::" + class + "::" + fn
}

// Registry builds and deduplicates nodes keyed on (kind, identifier).
// It is the only component that creates nodes; every later stage works
// with the instances it hands out.
type Registry struct {
	nodes    map[string]*Node
	order    []*Node
	hexWidth int
	lines    LineCounter
	churn    violation.ChurnMap
	coverage violation.CoverageMap
}

// NewRegistry creates an empty registry. lines may be nil, in which case
// file nodes carry no line count.
func NewRegistry(hexWidth int, lines LineCounter, churn violation.ChurnMap, coverage violation.CoverageMap) *Registry {
	if hexWidth <= 0 {
		hexWidth = DefaultIDHexWidth
	}
	return &Registry{
		nodes:    make(map[string]*Node),
		hexWidth: hexWidth,
		lines:    lines,
		churn:    churn,
		coverage: coverage,
	}
}

// ID computes the node id a given location would resolve to, without
// creating a node.
func (r *Registry) ID(kind NodeKind, identifier string) string {
	return NodeID(kind, identifier, r.hexWidth)
}

// File returns the node for a file path, creating it on first sight.
// Line count, churn rate and coverage are resolved once, at creation;
// a failing line-count lookup leaves the field absent.
func (r *Registry) File(path string) *Node {
	id := r.ID(NodeFile, path)
	if n, ok := r.nodes[id]; ok {
		return n
	}
	n := &Node{
		ID:       id,
		Label:    filepath.Base(path),
		Kind:     NodeFile,
		FilePath: &path,
	}
	if r.lines != nil {
		if count, ok := r.lines.CountLines(path); ok {
			n.LineCount = &count
		}
	}
	if rate, ok := r.churn[path]; ok {
		n.ChurnRate = &rate
	}
	if cov, ok := r.coverage[path]; ok && cov != nil {
		n.TestCoverage = cov
	}
	r.insert(n)
	return n
}

// Class returns the class node for (path, class), creating it on first sight.
func (r *Registry) Class(path, class string) *Node {
	id := r.ID(NodeClass, classIdentifier(path, class))
	if n, ok := r.nodes[id]; ok {
		return n
	}
	n := &Node{
		ID:       id,
		Label:    class,
		Kind:     NodeClass,
		FilePath: &path,
	}
	r.insert(n)
	return n
}

// Function returns the function node for (path, class, fn), creating it on
// first sight. Complexity is a first-writer field: only the creating
// violation's value is retained.
func (r *Registry) Function(path, class, fn string, complexity *float64) *Node {
	id := r.ID(NodeFunction, functionIdentifier(path, class, fn))
	if n, ok := r.nodes[id]; ok {
		return n
	}
	n := &Node{
		ID:         id,
		Label:      fn,
		Kind:       NodeFunction,
		FilePath:   &path,
		Complexity: complexity,
	}
	r.insert(n)
	return n
}

// Observe registers every node a violation's location implies (file always,
// class and function when named) and accumulates violation counts on each.
func (r *Registry) Observe(v violation.Violation) {
	nasa := v.IsNASA()
	path := v.PathOrUnknown()

	record := func(n *Node) {
		n.ViolationCount++
		if nasa {
			n.NASAViolationCount++
		}
	}

	record(r.File(path))
	if v.ClassName != "" {
		record(r.Class(path, v.ClassName))
	}
	if v.FunctionName != "" {
		record(r.Function(path, v.ClassName, v.FunctionName, v.Complexity))
	}
}

// Nodes returns all nodes in creation order.
func (r *Registry) Nodes() []*Node {
	return r.order
}

// Len reports the number of registered nodes.
func (r *Registry) Len() int { return len(r.nodes) }

func (r *Registry) insert(n *Node) {
	r.nodes[n.ID] = n
	r.order = append(r.order, n)
}
