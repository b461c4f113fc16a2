package app

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/constella-backend/internal/data/db"
	"github.com/yungbote/constella-backend/internal/data/graph"
	"github.com/yungbote/constella-backend/internal/platform/logger"
	"github.com/yungbote/constella-backend/internal/platform/neo4jdb"
	"github.com/yungbote/constella-backend/internal/platform/openai"
	"github.com/yungbote/constella-backend/internal/platform/redisdb"
)

type Clients struct {
	Relational *db.PostgresService
	Neo4j      *neo4jdb.Client
	Graph      graph.Store
	Redis      *goredis.Client
	OpenAI     openai.Client
}

func (c Clients) DB() *gorm.DB {
	if c.Relational == nil {
		return nil
	}
	return c.Relational.DB()
}

func wireClients(ctx context.Context, log *logger.Logger) (Clients, error) {
	log.Info("Wiring clients...")
	var out Clients

	// Relational
	rel, err := db.NewPostgresService(log)
	if err != nil {
		return out, fmt.Errorf("init relational store: %w", err)
	}
	out.Relational = rel
	if err := db.AutoMigrateAll(rel.DB()); err != nil {
		out.Close()
		return Clients{}, fmt.Errorf("automigrate: %w", err)
	}
	if err := db.EnsureKnowledgeIndexes(rel.DB()); err != nil {
		out.Close()
		return Clients{}, fmt.Errorf("knowledge indexes: %w", err)
	}

	// Graph
	nc, err := neo4jdb.NewFromEnv(log)
	if err != nil {
		out.Close()
		return Clients{}, fmt.Errorf("init neo4j: %w", err)
	}
	if nc == nil {
		log.Warn("NEO4J_URI not set; using the in-process graph store")
		out.Graph = graph.NewMemoryStore()
	} else {
		out.Neo4j = nc
		store, err := graph.NewNeo4jStore(nc, log)
		if err != nil {
			out.Close()
			return Clients{}, fmt.Errorf("init graph store: %w", err)
		}
		if err := store.EnsureSchema(ctx); err != nil {
			out.Close()
			return Clients{}, fmt.Errorf("graph schema: %w", err)
		}
		out.Graph = store
	}

	// Redis (optional)
	rdb, err := redisdb.NewFromEnv(log)
	if err != nil {
		out.Close()
		return Clients{}, fmt.Errorf("init redis: %w", err)
	}
	out.Redis = rdb

	// Openai
	oc, err := openai.NewClient(log)
	if err != nil {
		out.Close()
		return Clients{}, fmt.Errorf("init openai client: %w", err)
	}
	out.OpenAI = oc

	return out, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	// The neo4j store owns the driver once built.
	if c.Graph != nil {
		_ = c.Graph.Close(ctx)
	} else if c.Neo4j != nil {
		_ = c.Neo4j.Close(ctx)
	}
	if c.Relational != nil {
		_ = c.Relational.Close()
	}
}
