package neo4j

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/couplegraph/couplegraph/internal/graph"
	"github.com/couplegraph/couplegraph/internal/graphstore"
)

// Neo4jRepository implements graphstore.Repository using Neo4j. Entities
// are stored as (:Entity {id, project, ...}) nodes with [:COUPLES]
// relationships carrying edge type and aggregated weight.
type Neo4jRepository struct {
	driver neo4j.DriverWithContext
}

// NewNeo4j creates a Neo4j-backed repository and verifies connectivity.
func NewNeo4j(ctx context.Context, uri, username, password string) (*Neo4jRepository, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		return nil, fmt.Errorf("neo4j connectivity: %w", err)
	}
	return &Neo4jRepository{driver: driver}, nil
}

func (r *Neo4jRepository) StoreGraph(ctx context.Context, project string, g *graph.CouplingGraph) error {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	// Replace the previous run for this project.
	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		_, err := tx.Run(ctx,
			"MATCH (e:Entity {project: $project}) DETACH DELETE e",
			map[string]any{"project": project})
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("clear previous run: %w", err)
	}

	_, err = session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for _, n := range g.Nodes {
			params := map[string]any{
				"id":         n.ID,
				"project":    project,
				"label":      n.Label,
				"kind":       string(n.Kind),
				"violations": n.ViolationCount,
				"nasa":       n.NASAViolationCount,
				"score":      floatOrZero(n.HotspotScore),
			}
			if n.FilePath != nil {
				params["path"] = *n.FilePath
			} else {
				params["path"] = ""
			}
			_, err := tx.Run(ctx,
				"MERGE (e:Entity {id: $id, project: $project}) "+
					"SET e.label = $label, e.kind = $kind, e.path = $path, "+
					"e.violation_count = $violations, e.nasa_violation_count = $nasa, "+
					"e.hotspot_score = $score",
				params)
			if err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("store nodes: %w", err)
	}

	_, err = session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for _, e := range g.Edges {
			_, err := tx.Run(ctx,
				"MERGE (a:Entity {id: $source, project: $project}) "+
					"MERGE (b:Entity {id: $target, project: $project}) "+
					"MERGE (a)-[c:COUPLES {edge_type: $type}]->(b) "+
					"SET c.weight = $weight, c.severity = $severity, c.locality = $locality",
				map[string]any{
					"project":  project,
					"source":   e.SourceID,
					"target":   e.TargetID,
					"type":     e.Type,
					"weight":   e.Weight,
					"severity": e.Severity,
					"locality": string(e.Locality),
				})
			if err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("store edges: %w", err)
	}
	return nil
}

func (r *Neo4jRepository) LoadHotspots(ctx context.Context, project string, limit int) ([]graph.Hotspot, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	query := "MATCH (e:Entity {project: $project}) WHERE e.kind IN ['file', 'class'] " +
		"RETURN e.id, e.label, e.kind, e.path, e.hotspot_score, e.violation_count, e.nasa_violation_count " +
		"ORDER BY e.hotspot_score DESC"
	params := map[string]any{"project": project}
	if limit > 0 {
		query += " LIMIT $limit"
		params["limit"] = limit
	}

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		records, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		var hotspots []graph.Hotspot
		for records.Next(ctx) {
			rec := records.Record()
			h := graph.Hotspot{}
			if v, _ := rec.Get("e.id"); v != nil {
				h.NodeID = v.(string)
			}
			if v, _ := rec.Get("e.label"); v != nil {
				h.Label = v.(string)
			}
			if v, _ := rec.Get("e.kind"); v != nil {
				h.Kind = graph.NodeKind(v.(string))
			}
			if v, _ := rec.Get("e.path"); v != nil {
				path := v.(string)
				h.FilePath = &path
			}
			if v, _ := rec.Get("e.hotspot_score"); v != nil {
				h.Score = v.(float64)
			}
			if v, _ := rec.Get("e.violation_count"); v != nil {
				h.ViolationCount = int(v.(int64))
			}
			if v, _ := rec.Get("e.nasa_violation_count"); v != nil {
				h.NASAViolationCount = int(v.(int64))
			}
			h.Priority = graph.ClassifyPriority(h.Score)
			hotspots = append(hotspots, h)
		}
		return hotspots, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]graph.Hotspot), nil
}

func (r *Neo4jRepository) Close(ctx context.Context) error {
	return r.driver.Close(ctx)
}

func floatOrZero(v *float64) float64 {
	if v == nil {
		return 0.0
	}
	return *v
}

var _ graphstore.Repository = (*Neo4jRepository)(nil)
