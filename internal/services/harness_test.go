package services

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/constella-backend/internal/data/aggregates"
	"github.com/yungbote/constella-backend/internal/data/graph"
	"github.com/yungbote/constella-backend/internal/data/repos"
	"github.com/yungbote/constella-backend/internal/data/repos/testutil"
	"github.com/yungbote/constella-backend/internal/platform/logger"
)

type fakeGenerator struct {
	mu      sync.Mutex
	calls   int
	queries []string
	out     string
	err     error

	jsonCalls int
	jsonOut   string
	jsonErr   error
}

func (g *fakeGenerator) Generate(_ context.Context, query, _ string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.queries = append(g.queries, query)
	return g.out, g.err
}

func (g *fakeGenerator) CompleteJSON(_ context.Context, _, _ string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.jsonCalls++
	return g.jsonOut, g.jsonErr
}

func (g *fakeGenerator) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

type harness struct {
	db    *gorm.DB
	log   *logger.Logger
	store *graph.MemoryStore
	gen   *fakeGenerator

	topics    repos.TopicRepo
	articles  repos.ArticleRepo
	aliases   repos.AliasRepo
	tags      repos.TagRepo
	users     repos.UserRepo
	ship      repos.DiscoveryRepo
	messages  repos.ChatMessageRepo
	discovery DiscoveryService
	deps      KnowledgeDeps
	knowledge *knowledgeService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	h := &harness{
		db:       db,
		log:      log,
		store:    graph.NewMemoryStore(),
		gen:      &fakeGenerator{},
		topics:   repos.NewTopicRepo(db, log),
		articles: repos.NewArticleRepo(db, log),
		aliases:  repos.NewAliasRepo(db, log),
		tags:     repos.NewTagRepo(db, log),
		users:    repos.NewUserRepo(db, log),
		ship:     repos.NewDiscoveryRepo(db, log),
		messages: repos.NewChatMessageRepo(db, log),
	}
	h.discovery = NewDiscoveryService(log, h.users, h.ship, aggregates.NewWriter(aggregates.BaseDeps{DB: db, Log: log}))
	h.deps = KnowledgeDeps{
		Log:       log,
		Resolver:  NewTopicResolver(log, h.topics, h.aliases, h.articles),
		Generator: h.gen,
		Discovery: h.discovery,
		DualTx:    aggregates.NewDualTxRunner(aggregates.BaseDeps{DB: db, Log: log}, h.store),
		Topics:    h.topics,
		Articles:  h.articles,
		Aliases:   h.aliases,
		Tags:      h.tags,
	}
	h.knowledge = newKnowledgeService(h.deps)
	return h
}

// suffix keeps names unique across tests sharing one database.
func suffix() string {
	return strings.ReplaceAll(uuid.NewString()[:8], "-", "")
}

func generated(t *testing.T, fields map[string]any) string {
	t.Helper()
	b, err := json.Marshal(fields)
	if err != nil {
		t.Fatalf("marshal generator output: %v", err)
	}
	return "```json\n" + string(b) + "\n```"
}
