// Package export serializes a finished coupling graph into its external
// formats: a tree-shaped JSON report and a Gephi-compatible GEXF document.
// Both serializers are pure; callers choose the destination.
package export

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/couplegraph/couplegraph/internal/graph"
)

// Format selects an output format.
type Format string

const (
	FormatJSON Format = "json"
	FormatGEXF Format = "gexf"
)

// ParseFormat validates a format string, case-insensitively. An
// unsupported format is the one input error this package raises loudly,
// before any serialization work.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatGEXF:
		return FormatGEXF, nil
	default:
		return "", fmt.Errorf("unsupported format: %q (supported: json, gexf)", s)
	}
}

// Write serializes the graph to w in the given format.
func Write(g *graph.CouplingGraph, w io.Writer, format Format) error {
	switch format {
	case FormatJSON:
		return WriteJSON(g, w)
	case FormatGEXF:
		return WriteGEXF(g, w)
	default:
		return fmt.Errorf("unsupported format: %q (supported: json, gexf)", format)
	}
}

// WriteFile validates the format, then creates path and writes the graph
// to it. The file is not touched when the format is unsupported.
func WriteFile(g *graph.CouplingGraph, path string, format Format) error {
	if _, err := ParseFormat(string(format)); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	if err := Write(g, f, format); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
