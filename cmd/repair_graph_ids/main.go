// Command repair_graph_ids stamps relational topic ids onto graph nodes by
// canonical name. Run it after ghost commits have been reported.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/constella-backend/internal/data/db"
	"github.com/yungbote/constella-backend/internal/data/graph"
	"github.com/yungbote/constella-backend/internal/data/repos"
	"github.com/yungbote/constella-backend/internal/modules/knowledge"
	"github.com/yungbote/constella-backend/internal/platform/dbctx"
	"github.com/yungbote/constella-backend/internal/platform/logger"
	"github.com/yungbote/constella-backend/internal/platform/neo4jdb"
)

type nameList []string

func (l *nameList) String() string { return strings.Join(*l, ",") }
func (l *nameList) Set(v string) error {
	v = strings.TrimSpace(v)
	if v != "" {
		*l = append(*l, v)
	}
	return nil
}

func main() {
	var names nameList
	var dryRun bool
	flag.Var(&names, "name", "topic name to repair (repeatable); default all topics")
	flag.BoolVar(&dryRun, "dry-run", false, "print the topics that would be stamped")
	flag.Parse()

	log, err := logger.New(os.Getenv("LOG_MODE"))
	if err != nil {
		fmt.Printf("init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx := context.Background()
	rel, err := db.NewPostgresService(log)
	if err != nil {
		fmt.Printf("init relational store: %v\n", err)
		os.Exit(1)
	}
	defer rel.Close()

	ids, err := repos.NewTopicRepo(rel.DB(), log).ListIDsByName(dbctx.Background(ctx))
	if err != nil {
		fmt.Printf("load topics: %v\n", err)
		os.Exit(1)
	}
	ids = filterNames(ids, names)

	if dryRun {
		for name, id := range ids {
			fmt.Printf("%s\t%s\n", id, name)
		}
		fmt.Printf("dry run: %d topics\n", len(ids))
		return
	}

	client, err := neo4jdb.NewFromEnv(log)
	if err != nil || client == nil {
		fmt.Printf("init neo4j: NEO4J_URI required (%v)\n", err)
		os.Exit(1)
	}
	store, err := graph.NewNeo4jStore(client, log)
	if err != nil {
		fmt.Printf("init graph store: %v\n", err)
		os.Exit(1)
	}
	defer store.Close(ctx)

	n, err := store.RepairTopicIDs(ctx, ids)
	if err != nil {
		fmt.Printf("repair: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("repaired %d graph nodes (%d topics)\n", n, len(ids))
}

func filterNames(ids map[string]uuid.UUID, names []string) map[string]uuid.UUID {
	if len(names) == 0 {
		return ids
	}
	out := make(map[string]uuid.UUID, len(names))
	for _, raw := range names {
		name := knowledge.CanonicalName(raw)
		if id, ok := ids[name]; ok {
			out[name] = id
		}
	}
	return out
}
