package aggregates_test

import (
	"context"
	"errors"
	"testing"

	"github.com/yungbote/constella-backend/internal/data/aggregates"
	aggtestutil "github.com/yungbote/constella-backend/internal/data/aggregates/testutil"
	"github.com/yungbote/constella-backend/internal/data/graph"
	"github.com/yungbote/constella-backend/internal/data/repos/knowledge"
	"github.com/yungbote/constella-backend/internal/data/repos/testutil"
	domainknowledge "github.com/yungbote/constella-backend/internal/domain/knowledge"
	"github.com/yungbote/constella-backend/internal/platform/dbctx"
)

func TestDualTx_RelationalCommitFaultLeavesGhostProjection(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	ctx := context.Background()

	store := graph.NewMemoryStore()
	runner := &aggtestutil.InjectedTxRunner{DB: db, FailCommit: errors.New("commit lost")}
	hooks := &aggtestutil.HooksRecorder{}
	dual := aggregates.NewDualTxRunner(aggregates.BaseDeps{DB: db, Log: log, Runner: runner, Hooks: hooks}, store)
	topics := knowledge.NewTopicRepo(db, log)

	err := dual.InDualTx(ctx, "knowledge.synthesize", func(dbc dbctx.Context, gtx graph.Tx) error {
		topic, err := topics.Upsert(dbc, "ghost planet")
		if err != nil {
			return err
		}
		return gtx.SyncTopic(dbc.Ctx, graph.TopicSync{Name: topic.Name, TopicID: topic.ID, Mentions: []string{"sun"}})
	})
	if !errors.Is(err, domainknowledge.ErrSagaAborted) {
		t.Fatalf("InDualTx: want saga abort, got %v", err)
	}

	row, err := topics.GetByName(dbctx.Background(ctx), "ghost planet")
	if err != nil {
		t.Fatalf("GetByName: %v", err)
	}
	if row != nil {
		t.Fatalf("relational side: expected no topic row, got %+v", row)
	}
	node, ok := store.Node("ghost planet")
	if !ok || node.Ghost {
		t.Fatalf("graph side: expected committed projection, got %+v ok=%v", node, ok)
	}
	if got := hooks.Ghosts(); len(got) != 1 {
		t.Fatalf("ghost commits: want=1 got=%v", got)
	}
	if runner.RollbackCalls != 1 || runner.CommitCalls != 0 {
		t.Fatalf("runner: commit=%d rollback=%d", runner.CommitCalls, runner.RollbackCalls)
	}
}

func TestDualTx_CommitsRelationalRows(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	ctx := context.Background()

	store := graph.NewMemoryStore()
	dual := aggregates.NewDualTxRunner(aggregates.BaseDeps{DB: db, Log: log}, store)
	topics := knowledge.NewTopicRepo(db, log)

	name := "committed planet"
	t.Cleanup(func() {
		_ = db.Exec("DELETE FROM topic WHERE name = ?", name).Error
	})

	err := dual.InDualTx(ctx, "knowledge.synthesize", func(dbc dbctx.Context, gtx graph.Tx) error {
		topic, err := topics.Upsert(dbc, name)
		if err != nil {
			return err
		}
		return gtx.SyncTopic(dbc.Ctx, graph.TopicSync{Name: topic.Name, TopicID: topic.ID})
	})
	if err != nil {
		t.Fatalf("InDualTx: %v", err)
	}
	row, err := topics.GetByName(dbctx.Background(ctx), name)
	if err != nil || row == nil {
		t.Fatalf("GetByName: row=%+v err=%v", row, err)
	}
	node, ok := store.Node(name)
	if !ok || node.TopicID != row.ID {
		t.Fatalf("graph node: got %+v ok=%v want topic id %s", node, ok, row.ID)
	}
}
