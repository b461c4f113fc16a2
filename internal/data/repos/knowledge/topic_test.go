package knowledge

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/constella-backend/internal/data/repos/testutil"
	types "github.com/yungbote/constella-backend/internal/domain"
	"github.com/yungbote/constella-backend/internal/platform/dbctx"
)

func TestTopicRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	repo := NewTopicRepo(db, testutil.Logger(t))

	created, err := repo.Upsert(dbc, "black hole")
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if created == nil || created.ID == uuid.Nil {
		t.Fatalf("Upsert: expected row, got %+v", created)
	}

	again, err := repo.Upsert(dbc, "black hole")
	if err != nil {
		t.Fatalf("Upsert (again): %v", err)
	}
	if again.ID != created.ID {
		t.Fatalf("Upsert (again): want=%s got=%s", created.ID, again.ID)
	}

	byName, err := repo.GetByName(dbc, "black hole")
	if err != nil || byName == nil || byName.ID != created.ID {
		t.Fatalf("GetByName: row=%+v err=%v", byName, err)
	}
	missing, err := repo.GetByName(dbc, "nothing")
	if err != nil || missing != nil {
		t.Fatalf("GetByName (missing): row=%+v err=%v", missing, err)
	}

	if _, err := repo.Upsert(dbc, "mars"); err != nil {
		t.Fatalf("Upsert mars: %v", err)
	}
	names, err := repo.ListNames(dbc)
	if err != nil {
		t.Fatalf("ListNames: %v", err)
	}
	if len(names) != 2 || names[0] != "black hole" || names[1] != "mars" {
		t.Fatalf("ListNames: got %v", names)
	}

	ids, err := repo.ListIDsByName(dbc)
	if err != nil {
		t.Fatalf("ListIDsByName: %v", err)
	}
	if ids["black hole"] != created.ID {
		t.Fatalf("ListIDsByName: want=%s got=%s", created.ID, ids["black hole"])
	}

	tags, err := NewTagRepo(db, testutil.Logger(t)).EnsureByNames(dbc, []string{"Space", "space", " physics "})
	if err != nil {
		t.Fatalf("EnsureByNames: %v", err)
	}
	if len(tags) != 2 {
		t.Fatalf("EnsureByNames: want=2 got=%d", len(tags))
	}
	tagIDs := []uuid.UUID{tags[0].ID, tags[1].ID}
	if err := repo.AttachTags(dbc, created.ID, tagIDs); err != nil {
		t.Fatalf("AttachTags: %v", err)
	}
	if err := repo.AttachTags(dbc, created.ID, tagIDs); err != nil {
		t.Fatalf("AttachTags (again): %v", err)
	}
	attached, err := NewTagRepo(db, testutil.Logger(t)).ListByTopic(dbc, created.ID)
	if err != nil {
		t.Fatalf("ListByTopic: %v", err)
	}
	if len(attached) != 2 || attached[0].Name != "physics" {
		t.Fatalf("ListByTopic: got %+v", attached)
	}
}

func TestArticleRepo_UpsertPerLanguage(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	topic := testutil.SeedTopic(t, ctx, tx, "saturn")
	repo := NewArticleRepo(db, testutil.Logger(t))

	en, err := repo.Upsert(dbc, &types.Article{TopicID: topic.ID, Language: "en", Title: "Saturn", Content: "v1"})
	if err != nil {
		t.Fatalf("Upsert en: %v", err)
	}
	if _, err := repo.Upsert(dbc, &types.Article{TopicID: topic.ID, Language: "ko", Title: "토성", Content: "ko"}); err != nil {
		t.Fatalf("Upsert ko: %v", err)
	}
	updated, err := repo.Upsert(dbc, &types.Article{TopicID: topic.ID, Language: "en", Title: "Saturn", Content: "v2"})
	if err != nil {
		t.Fatalf("Upsert en v2: %v", err)
	}
	if updated.ID != en.ID || updated.Content != "v2" {
		t.Fatalf("Upsert en v2: got id=%s content=%q", updated.ID, updated.Content)
	}

	all, err := repo.ListByTopic(dbc, topic.ID)
	if err != nil {
		t.Fatalf("ListByTopic: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("ListByTopic: want=2 got=%d", len(all))
	}

	none, err := repo.GetByTopicLanguage(dbc, topic.ID, "fr")
	if err != nil || none != nil {
		t.Fatalf("GetByTopicLanguage (fr): row=%+v err=%v", none, err)
	}
}

func TestAliasRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	bh := testutil.SeedTopic(t, ctx, tx, "black hole")
	other := testutil.SeedTopic(t, ctx, tx, "wormhole")
	repo := NewAliasRepo(db, testutil.Logger(t))

	if err := repo.InsertIgnore(dbc, bh.ID, []string{"블랙홀", "Black Hole"}); err != nil {
		t.Fatalf("InsertIgnore: %v", err)
	}
	// conflicting name keeps its first owner
	if err := repo.InsertIgnore(dbc, other.ID, []string{"블랙홀"}); err != nil {
		t.Fatalf("InsertIgnore (dup): %v", err)
	}

	got, err := repo.GetTopicByAlias(dbc, "블랙홀")
	if err != nil || got == nil || got.ID != bh.ID {
		t.Fatalf("GetTopicByAlias: row=%+v err=%v", got, err)
	}

	names, err := repo.ListAliasNames(dbc)
	if err != nil {
		t.Fatalf("ListAliasNames: %v", err)
	}
	if len(names) != 2 {
		t.Fatalf("ListAliasNames: want=2 got=%d", len(names))
	}
	for _, n := range names {
		if n.TopicName != "black hole" {
			t.Fatalf("ListAliasNames: unexpected %+v", n)
		}
	}
}

func TestDiscoveryRepo_SingleRowRefreshed(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	user := testutil.SeedUser(t, ctx, tx)
	first := testutil.SeedTopic(t, ctx, tx, "venus")
	second := testutil.SeedTopic(t, ctx, tx, "jupiter")
	repo := NewDiscoveryRepo(db, testutil.Logger(t))

	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Hour)
	if err := repo.Upsert(dbc, user.ID, first.ID, t0); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := repo.Upsert(dbc, user.ID, first.ID, t1); err != nil {
		t.Fatalf("Upsert (again): %v", err)
	}

	var n int64
	if err := tx.Model(&types.DiscoveryRecord{}).Where("user_id = ?", user.ID).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("rows: want=1 got=%d", n)
	}
	row, err := repo.Get(dbc, user.ID, first.ID)
	if err != nil || row == nil {
		t.Fatalf("Get: row=%+v err=%v", row, err)
	}
	if !row.DiscoveredAt.Equal(t1) {
		t.Fatalf("DiscoveredAt: want=%v got=%v", t1, row.DiscoveredAt)
	}

	if err := repo.Upsert(dbc, user.ID, second.ID, t0.Add(2*time.Hour)); err != nil {
		t.Fatalf("Upsert second: %v", err)
	}
	entries, err := repo.ListEntries(dbc, user.ID)
	if err != nil {
		t.Fatalf("ListEntries: %v", err)
	}
	if len(entries) != 2 || entries[0].Name != "jupiter" || entries[1].Name != "venus" {
		t.Fatalf("ListEntries: got %+v", entries)
	}

	ok, err := repo.Exists(dbc, user.ID, second.ID)
	if err != nil || !ok {
		t.Fatalf("Exists: ok=%v err=%v", ok, err)
	}
	ok, err = repo.Exists(dbc, uuid.New(), second.ID)
	if err != nil || ok {
		t.Fatalf("Exists (other user): ok=%v err=%v", ok, err)
	}
}

func TestChatMessageRepo_ListRecent(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	user := testutil.SeedUser(t, ctx, tx)
	repo := NewChatMessageRepo(db, testutil.Logger(t))

	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	var rows []*types.ChatMessage
	for i := 0; i < 5; i++ {
		rows = append(rows, &types.ChatMessage{UserID: user.ID, Role: types.ChatRoleUser, Content: string(rune('a' + i)), CreatedAt: base.Add(time.Duration(i) * time.Minute)})
	}
	if _, err := repo.Create(dbc, rows); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.ListRecent(dbc, user.ID, 3)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(got) != 3 || got[0].Content != "c" || got[2].Content != "e" {
		t.Fatalf("ListRecent: got %+v", got)
	}
}

func TestUserRepo_Ensure(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	repo := NewUserRepo(db, testutil.Logger(t))
	id := uuid.New()
	for i := 0; i < 2; i++ {
		if err := repo.Ensure(dbc, id); err != nil {
			t.Fatalf("Ensure #%d: %v", i, err)
		}
	}
	var n int64
	if err := tx.Model(&types.User{}).Where("id = ?", id).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("users: want=1 got=%d", n)
	}
}
