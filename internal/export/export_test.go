package export

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/couplegraph/couplegraph/internal/graph"
)

func sampleGraph() *graph.CouplingGraph {
	path := "a.py"
	score := 5.2
	churn := 0.4
	return &graph.CouplingGraph{
		Nodes: []*graph.Node{
			{
				ID:                 "file_abc",
				Label:              "a.py",
				Kind:               graph.NodeFile,
				FilePath:           &path,
				ChurnRate:          &churn,
				HotspotScore:       &score,
				ViolationCount:     3,
				NASAViolationCount: 1,
			},
			{
				ID:       "class_def",
				Label:    "Foo",
				Kind:     graph.NodeClass,
				FilePath: &path,
			},
		},
		Edges: []graph.Edge{
			{
				SourceID: "file_abc",
				TargetID: "class_def",
				Type:     "connascence_of_name",
				Weight:   2.6,
				Severity: "high",
				Locality: graph.SameModule,
				LineRefs: []graph.LineRef{{10, 20}},
			},
		},
		Metadata: graph.Metadata{
			ExportTimestamp:    "2026-03-14T09:30:00Z",
			TotalFilesAnalyzed: 1,
			TotalViolations:    3,
			GraphVersion:       "1.0",
			AnalysisScope:      "project",
		},
		Hotspots: []graph.Hotspot{
			{NodeID: "file_abc", Label: "a.py", Kind: graph.NodeFile, Score: 5.2, Priority: "critical"},
		},
		Statistics: graph.Statistics{
			TotalNodes:         2,
			TotalEdges:         1,
			MostCommonEdgeType: "connascence_of_name",
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "json", want: FormatJSON},
		{in: "JSON", want: FormatJSON},
		{in: "gexf", want: FormatGEXF},
		{in: "GeXf", want: FormatGEXF},
		{in: "yaml", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseFormat(%q) expected error", tt.in)
			} else if !strings.Contains(err.Error(), "unsupported format") {
				t.Errorf("ParseFormat(%q) error = %v", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseFormat(%q) = (%v, %v), want %v", tt.in, got, err, tt.want)
		}
	}
}

func TestWriteJSON_SectionOrderAndNulls(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(sampleGraph(), &buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	// Top-level sections appear in the documented order.
	order := []string{`"metadata"`, `"statistics"`, `"nodes"`, `"edges"`, `"hotspots"`}
	last := -1
	for _, key := range order {
		idx := strings.Index(out, key)
		if idx < 0 {
			t.Fatalf("missing section %s", key)
		}
		if idx < last {
			t.Errorf("section %s out of order", key)
		}
		last = idx
	}

	// Absent optional metrics serialize as explicit nulls.
	if !strings.Contains(out, `"line_count": null`) {
		t.Error("expected absent line_count as null")
	}
	if !strings.Contains(out, `"test_coverage": null`) {
		t.Error("expected absent test_coverage as null")
	}

	// Line references render as nested arrays.
	var doc struct {
		Edges []struct {
			LineReferences [][]int `json:"line_references"`
		} `json:"edges"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatal(err)
	}
	if len(doc.Edges) != 1 || len(doc.Edges[0].LineReferences) != 1 {
		t.Fatalf("edges = %+v", doc.Edges)
	}
	if got := doc.Edges[0].LineReferences[0]; got[0] != 10 || got[1] != 20 {
		t.Errorf("line reference = %v, want [10 20]", got)
	}
}

func TestWriteJSON_EmptyGraphHasEmptyArrays(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&graph.CouplingGraph{}, &buf); err != nil {
		t.Fatal(err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"nodes", "edges", "hotspots"} {
		if string(doc[key]) != "[]" {
			t.Errorf("%s = %s, want []", key, doc[key])
		}
	}
}

func TestWriteJSON_RoundTripsIntoGraph(t *testing.T) {
	var buf bytes.Buffer
	g := sampleGraph()
	if err := WriteJSON(g, &buf); err != nil {
		t.Fatal(err)
	}

	var decoded graph.CouplingGraph
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Metadata != g.Metadata {
		t.Errorf("metadata = %+v, want %+v", decoded.Metadata, g.Metadata)
	}
	if len(decoded.Nodes) != 2 || len(decoded.Hotspots) != 1 {
		t.Errorf("decoded sizes: %d nodes, %d hotspots", len(decoded.Nodes), len(decoded.Hotspots))
	}
}

func TestWriteGEXF(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteGEXF(sampleGraph(), &buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	if !strings.HasPrefix(out, xml.Header) {
		t.Error("missing XML header")
	}
	for _, want := range []string{
		`xmlns="http://www.gexf.net/1.2draft"`,
		`version="1.2"`,
		`<creator>couplegraph</creator>`,
		`mode="static"`,
		`defaultedgetype="directed"`,
		`<attribute id="0" title="node_type" type="string">`,
		`<attribute id="5" title="test_coverage" type="double">`,
		`<node id="file_abc" label="a.py">`,
		`<edge id="0" source="file_abc" target="class_def" weight="2.6" label="connascence_of_name">`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s", want)
		}
	}

	// Absent metrics default to 0.0; present ones carry their value.
	if !strings.Contains(out, `<attvalue for="3" value="5.2">`) {
		t.Error("hotspot score attvalue missing")
	}
	if !strings.Contains(out, `<attvalue for="5" value="0.0">`) {
		t.Error("absent coverage should default to 0.0")
	}

	// Well-formed XML.
	var doc gexfDoc
	if err := xml.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("output is not valid XML: %v", err)
	}
	if len(doc.Graph.Nodes.Nodes) != 2 || len(doc.Graph.Edges.Edges) != 1 {
		t.Errorf("decoded %d nodes, %d edges", len(doc.Graph.Nodes.Nodes), len(doc.Graph.Edges.Edges))
	}
}

func TestWriteGEXF_SequentialEdgeIDs(t *testing.T) {
	g := sampleGraph()
	g.Edges = append(g.Edges, graph.Edge{SourceID: "class_def", TargetID: "file_abc", Type: "t", Weight: 1})

	var buf bytes.Buffer
	if err := WriteGEXF(g, &buf); err != nil {
		t.Fatal(err)
	}

	var doc gexfDoc
	if err := xml.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatal(err)
	}
	for i, e := range doc.Graph.Edges.Edges {
		if e.ID != string(rune('0'+i)) {
			t.Errorf("edge %d id = %s", i, e.ID)
		}
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "graph.json")

	if err := WriteFile(sampleGraph(), path, FormatJSON); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !json.Valid(data) {
		t.Error("written file is not valid JSON")
	}
}

func TestWriteFile_UnsupportedFormatTouchesNothing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "graph.yaml")

	err := WriteFile(sampleGraph(), path, Format("yaml"))
	if err == nil {
		t.Fatal("expected error for unsupported format")
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Error("unsupported format must not create the output file")
	}
}
