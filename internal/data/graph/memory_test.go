package graph

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/google/uuid"
)

func mustBegin(t *testing.T, s Store) Tx {
	t.Helper()
	tx, err := s.Begin(context.Background())
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	return tx
}

func TestMemoryStore_SyncCreatesGhosts(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	id := uuid.New()

	tx := mustBegin(t, s)
	if err := tx.SyncTopic(ctx, TopicSync{Name: "mars", TopicID: id, Mentions: []string{"phobos", "mars"}, Tags: []string{"planet"}}); err != nil {
		t.Fatalf("SyncTopic: %v", err)
	}
	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	mars, ok := s.Node("mars")
	if !ok || mars.Ghost || mars.TopicID != id {
		t.Fatalf("mars: got %+v ok=%v", mars, ok)
	}
	phobos, ok := s.Node("phobos")
	if !ok || !phobos.Ghost {
		t.Fatalf("phobos: want ghost, got %+v ok=%v", phobos, ok)
	}
	if got := s.Mentions("mars"); !reflect.DeepEqual(got, []string{"phobos"}) {
		t.Fatalf("mentions: got %v", got)
	}
	if got := s.Tags("mars"); !reflect.DeepEqual(got, []string{"planet"}) {
		t.Fatalf("tags: got %v", got)
	}

	// a later sync of the ghost promotes it
	tx = mustBegin(t, s)
	if err := tx.SyncTopic(ctx, TopicSync{Name: "phobos", TopicID: uuid.New()}); err != nil {
		t.Fatalf("SyncTopic phobos: %v", err)
	}
	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if phobos, _ := s.Node("phobos"); phobos.Ghost {
		t.Fatalf("phobos: still ghost after sync")
	}
}

func TestMemoryStore_RollbackDiscards(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	tx := mustBegin(t, s)
	if err := tx.SyncTopic(ctx, TopicSync{Name: "venus", Mentions: []string{"sun"}}); err != nil {
		t.Fatalf("SyncTopic: %v", err)
	}
	if err := tx.Rollback(ctx); err != nil {
		t.Fatalf("Rollback: %v", err)
	}
	if s.NodeCount() != 0 {
		t.Fatalf("nodes after rollback: want=0 got=%d", s.NodeCount())
	}
	if err := tx.Commit(ctx); !errors.Is(err, ErrTxDone) {
		t.Fatalf("Commit after Rollback: want=%v got=%v", ErrTxDone, err)
	}

	// the write slot was released
	tx = mustBegin(t, s)
	_ = tx.Rollback(ctx)
}

func TestMemoryStore_FailNextCommit(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	boom := errors.New("boom")
	s.FailNextCommit(boom)

	tx := mustBegin(t, s)
	_ = tx.SyncTopic(ctx, TopicSync{Name: "venus"})
	if err := tx.Commit(ctx); !errors.Is(err, boom) {
		t.Fatalf("Commit: want=%v got=%v", boom, err)
	}
	if s.NodeCount() != 0 {
		t.Fatalf("nodes: want=0 got=%d", s.NodeCount())
	}
}

func TestMemoryStore_MergeAliasesFoldsGhost(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	tx := mustBegin(t, s)
	// an earlier article mentioned the Korean name, leaving a ghost
	if err := tx.SyncTopic(ctx, TopicSync{Name: "galaxy", TopicID: uuid.New(), Mentions: []string{"블랙홀"}}); err != nil {
		t.Fatalf("SyncTopic galaxy: %v", err)
	}
	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if n, ok := s.Node("블랙홀"); !ok || !n.Ghost {
		t.Fatalf("블랙홀: want ghost, got %+v ok=%v", n, ok)
	}

	bhID := uuid.New()
	tx = mustBegin(t, s)
	if err := tx.SyncTopic(ctx, TopicSync{Name: "black hole", TopicID: bhID, Mentions: []string{"event horizon"}, Tags: []string{"space"}}); err != nil {
		t.Fatalf("SyncTopic black hole: %v", err)
	}
	if err := tx.MergeAliases(ctx, "black hole", []string{"블랙홀", "black hole"}); err != nil {
		t.Fatalf("MergeAliases: %v", err)
	}
	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if _, ok := s.Node("블랙홀"); ok {
		t.Fatalf("블랙홀: alias node should be removed")
	}
	if got := s.Mentions("galaxy"); !reflect.DeepEqual(got, []string{"black hole"}) {
		t.Fatalf("galaxy mentions: got %v", got)
	}
	bh, ok := s.Node("black hole")
	if !ok || bh.Ghost || bh.TopicID != bhID {
		t.Fatalf("black hole: got %+v ok=%v", bh, ok)
	}
	if got := s.Mentions("black hole"); !reflect.DeepEqual(got, []string{"event horizon"}) {
		t.Fatalf("black hole mentions: got %v", got)
	}
}

func TestMemoryStore_MergeAliasesMovesOutgoing(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	tx := mustBegin(t, s)
	_ = tx.SyncTopic(ctx, TopicSync{Name: "bh", Mentions: []string{"gravity", "black hole"}, Tags: []string{"astro"}})
	_ = tx.SyncTopic(ctx, TopicSync{Name: "black hole", Mentions: []string{"bh"}})
	if err := tx.MergeAliases(ctx, "black hole", []string{"bh"}); err != nil {
		t.Fatalf("MergeAliases: %v", err)
	}
	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	// no self-loop, gravity moved over, tag moved over
	if got := s.Mentions("black hole"); !reflect.DeepEqual(got, []string{"gravity"}) {
		t.Fatalf("mentions: got %v", got)
	}
	if got := s.Tags("black hole"); !reflect.DeepEqual(got, []string{"astro"}) {
		t.Fatalf("tags: got %v", got)
	}
}

func TestMemoryStore_Neighborhood(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	tx := mustBegin(t, s)
	_ = tx.SyncTopic(ctx, TopicSync{Name: "mars", Mentions: []string{"phobos"}})
	_ = tx.SyncTopic(ctx, TopicSync{Name: "jupiter", Mentions: []string{"mars", "io"}})
	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	sg, err := s.Neighborhood(ctx, []string{"mars", "missing"})
	if err != nil {
		t.Fatalf("Neighborhood: %v", err)
	}
	var names []string
	for _, n := range sg.Nodes {
		names = append(names, n.Name)
	}
	if !reflect.DeepEqual(names, []string{"jupiter", "mars", "phobos"}) {
		t.Fatalf("nodes: got %v", names)
	}
	want := []Edge{
		{Source: "jupiter", Target: "mars", Type: EdgeMentions},
		{Source: "mars", Target: "phobos", Type: EdgeMentions},
	}
	if !reflect.DeepEqual(sg.Edges, want) {
		t.Fatalf("edges: want=%v got=%v", want, sg.Edges)
	}
}

func TestMemoryStore_RepairTopicIDs(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	tx := mustBegin(t, s)
	_ = tx.SyncTopic(ctx, TopicSync{Name: "mars", Mentions: []string{"phobos"}})
	_ = tx.Commit(ctx)

	id := uuid.New()
	n, err := s.RepairTopicIDs(ctx, map[string]uuid.UUID{"phobos": id, "deimos": uuid.New()})
	if err != nil {
		t.Fatalf("RepairTopicIDs: %v", err)
	}
	if n != 1 {
		t.Fatalf("repaired: want=1 got=%d", n)
	}
	if phobos, _ := s.Node("phobos"); phobos.Ghost || phobos.TopicID != id {
		t.Fatalf("phobos: got %+v", phobos)
	}
}
