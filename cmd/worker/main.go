package main

import (
	"context"
	"fmt"
	"log"
	"os"

	temporalclient "go.temporal.io/sdk/client"

	"github.com/couplegraph/couplegraph/internal/config"
	"github.com/couplegraph/couplegraph/internal/graphstore"
	"github.com/couplegraph/couplegraph/internal/graphstore/neo4j"
	"github.com/couplegraph/couplegraph/internal/observability"
	"github.com/couplegraph/couplegraph/internal/server"
	temporalmod "github.com/couplegraph/couplegraph/internal/temporal"
)

func main() {
	configPath := "configs/couplegraph.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()

	tp, err := observability.InitTracing(ctx, &observability.TracingConfig{
		ServiceName:  "couplegraph-worker",
		Environment:  cfg.Tracing.Environment,
		OTLPEndpoint: cfg.Tracing.OTLPEndpoint,
		SampleRate:   cfg.Tracing.SampleRate,
	})
	if err != nil {
		log.Fatalf("tracing: %v", err)
	}

	// Graph store is optional; the worker runs export-only without it.
	var repo graphstore.Repository
	if cfg.Graph.URI != "" {
		neo4jRepo, err := neo4j.NewNeo4j(ctx, cfg.Graph.URI, cfg.Graph.Username, cfg.Graph.Password)
		if err != nil {
			log.Fatalf("graph store: %v", err)
		}
		repo = neo4jRepo
	}

	temporalmod.SetDependencies(&temporalmod.Dependencies{
		Config:     cfg,
		Repository: repo,
	})

	c, err := temporalclient.Dial(temporalclient.Options{
		HostPort:  cfg.Temporal.Host,
		Namespace: cfg.Temporal.Namespace,
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w, err := temporalmod.StartWorker(c, cfg.Temporal.TaskQueue)
	if err != nil {
		log.Fatalf("worker: %v", err)
	}

	fmt.Printf("Worker started on task queue: %s\n", cfg.Temporal.TaskQueue)

	graceful := server.NewGracefulServer(&server.HealthConfig{Version: "0.1.0"}, nil)
	graceful.Health.RegisterCheck("temporal", server.TemporalHealthChecker(func(ctx context.Context) error {
		_, err := c.CheckHealth(ctx, &temporalclient.CheckHealthRequest{})
		return err
	}))
	if repo != nil {
		graceful.Health.RegisterCheck("graph-store", server.GraphStoreHealthChecker(func(ctx context.Context) error {
			_, err := repo.LoadHotspots(ctx, "", 1)
			return err
		}))
	}

	graceful.Shutdown.RegisterHook("temporal-worker", 20, func(ctx context.Context) error {
		w.Stop()
		return nil
	})
	if repo != nil {
		graceful.Shutdown.RegisterHook("graph-store", 90, repo.Close)
	}
	graceful.Shutdown.RegisterHook("tracing", 80, tp.Shutdown)

	if err := graceful.Start(":8080"); err != nil {
		log.Fatalf("health server: %v", err)
	}

	graceful.Wait()
	fmt.Println("Worker stopped")
}
