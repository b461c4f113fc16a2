package graph

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/yungbote/constella-backend/internal/platform/logger"
	"github.com/yungbote/constella-backend/internal/platform/neo4jdb"
)

type neo4jStore struct {
	client *neo4jdb.Client
	log    *logger.Logger
}

func NewNeo4jStore(client *neo4jdb.Client, log *logger.Logger) (Store, error) {
	if client == nil || client.Driver == nil {
		return nil, fmt.Errorf("neo4j topic graph: client required")
	}
	return &neo4jStore{client: client, log: log.With("store", "Neo4jTopicGraph")}, nil
}

func (s *neo4jStore) EnsureSchema(ctx context.Context) error {
	session := s.client.WriteSession(ctx)
	defer session.Close(ctx)

	// Best-effort; restricted users may not be allowed to create constraints.
	for _, stmt := range []string{
		`CREATE CONSTRAINT topic_name_unique IF NOT EXISTS FOR (t:Topic) REQUIRE t.name IS UNIQUE`,
		`CREATE CONSTRAINT tag_name_unique IF NOT EXISTS FOR (t:Tag) REQUIRE t.name IS UNIQUE`,
		`CREATE INDEX topic_topic_id_idx IF NOT EXISTS FOR (t:Topic) ON (t.topicId)`,
	} {
		res, err := session.Run(ctx, stmt, nil)
		if err != nil {
			s.log.Warn("neo4j schema init failed (continuing)", "error", err)
			continue
		}
		_, _ = res.Consume(ctx)
	}
	return nil
}

func (s *neo4jStore) Begin(ctx context.Context) (Tx, error) {
	session := s.client.WriteSession(ctx)
	tx, err := session.BeginTransaction(ctx)
	if err != nil {
		_ = session.Close(ctx)
		return nil, fmt.Errorf("neo4j begin: %w", err)
	}
	return &neo4jTx{session: session, tx: tx, log: s.log}, nil
}

func (s *neo4jStore) Neighborhood(ctx context.Context, names []string) (*Subgraph, error) {
	out := &Subgraph{Nodes: []Node{}, Edges: []Edge{}}
	if len(names) == 0 {
		return out, nil
	}
	session := s.client.ReadSession(ctx)
	defer session.Close(ctx)

	res, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		nodeRes, err := tx.Run(ctx, `
MATCH (t:Topic) WHERE t.name IN $names
OPTIONAL MATCH (t)-[:MENTIONS]-(n:Topic)
WITH collect(DISTINCT t) + collect(DISTINCT n) AS ns
UNWIND ns AS x
WITH DISTINCT x
RETURN x.name AS name, coalesce(x.ghost, false) AS ghost, coalesce(x.topicId, '') AS topicId
`, map[string]any{"names": names})
		if err != nil {
			return nil, err
		}
		records, err := nodeRes.Collect(ctx)
		if err != nil {
			return nil, err
		}
		sg := &Subgraph{Nodes: make([]Node, 0, len(records)), Edges: []Edge{}}
		all := make([]string, 0, len(records))
		for _, rec := range records {
			n := Node{Name: recordString(rec, "name")}
			if g, ok := rec.Get("ghost"); ok {
				n.Ghost, _ = g.(bool)
			}
			if id, err := uuid.Parse(recordString(rec, "topicId")); err == nil {
				n.TopicID = id
			}
			sg.Nodes = append(sg.Nodes, n)
			all = append(all, n.Name)
		}

		edgeRes, err := tx.Run(ctx, `
MATCH (a:Topic)-[:MENTIONS]->(b:Topic)
WHERE a.name IN $all AND b.name IN $all
RETURN a.name AS source, b.name AS target
`, map[string]any{"all": all})
		if err != nil {
			return nil, err
		}
		edgeRecords, err := edgeRes.Collect(ctx)
		if err != nil {
			return nil, err
		}
		for _, rec := range edgeRecords {
			sg.Edges = append(sg.Edges, Edge{
				Source: recordString(rec, "source"),
				Target: recordString(rec, "target"),
				Type:   EdgeMentions,
			})
		}
		return sg, nil
	})
	if err != nil {
		return nil, fmt.Errorf("neo4j neighborhood: %w", err)
	}
	out = res.(*Subgraph)
	sort.Slice(out.Nodes, func(i, j int) bool { return out.Nodes[i].Name < out.Nodes[j].Name })
	sort.Slice(out.Edges, func(i, j int) bool {
		if out.Edges[i].Source != out.Edges[j].Source {
			return out.Edges[i].Source < out.Edges[j].Source
		}
		return out.Edges[i].Target < out.Edges[j].Target
	})
	return out, nil
}

func (s *neo4jStore) RepairTopicIDs(ctx context.Context, ids map[string]uuid.UUID) (int, error) {
	rows := make([]map[string]any, 0, len(ids))
	for name, id := range ids {
		if name == "" || id == uuid.Nil {
			continue
		}
		rows = append(rows, map[string]any{"name": name, "topicId": id.String()})
	}
	if len(rows) == 0 {
		return 0, nil
	}
	session := s.client.WriteSession(ctx)
	defer session.Close(ctx)

	n, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
UNWIND $rows AS r
MATCH (t:Topic {name: r.name})
SET t.topicId = r.topicId, t.ghost = false, t.updatedAt = $now
RETURN count(t) AS n
`, map[string]any{"rows": rows, "now": time.Now().UTC().Format(time.RFC3339Nano)})
		if err != nil {
			return nil, err
		}
		rec, err := res.Single(ctx)
		if err != nil {
			return nil, err
		}
		v, _ := rec.Get("n")
		count, _ := v.(int64)
		return int(count), nil
	})
	if err != nil {
		return 0, fmt.Errorf("neo4j repair topic ids: %w", err)
	}
	return n.(int), nil
}

func (s *neo4jStore) Close(ctx context.Context) error {
	return s.client.Close(ctx)
}

type neo4jTx struct {
	session neo4j.SessionWithContext
	tx      neo4j.ExplicitTransaction
	log     *logger.Logger
	done    bool
}

func (t *neo4jTx) run(ctx context.Context, cypher string, params map[string]any) error {
	if t.done {
		return ErrTxDone
	}
	res, err := t.tx.Run(ctx, cypher, params)
	if err != nil {
		return err
	}
	_, err = res.Consume(ctx)
	return err
}

func (t *neo4jTx) SyncTopic(ctx context.Context, in TopicSync) error {
	if in.Name == "" {
		return nil
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	mentions := make([]string, 0, len(in.Mentions))
	for _, m := range in.Mentions {
		if m != "" && m != in.Name {
			mentions = append(mentions, m)
		}
	}
	topicID := ""
	if in.TopicID != uuid.Nil {
		topicID = in.TopicID.String()
	}

	if err := t.run(ctx, `
MERGE (t:Topic {name: $name})
ON CREATE SET t.createdAt = $now
SET t.topicId = $topicId, t.ghost = false, t.updatedAt = $now
WITH t
UNWIND $mentions AS m
MERGE (r:Topic {name: m})
ON CREATE SET r.ghost = true, r.createdAt = $now, r.updatedAt = $now
MERGE (t)-[:MENTIONS]->(r)
`, map[string]any{"name": in.Name, "topicId": topicID, "mentions": mentions, "now": now}); err != nil {
		return fmt.Errorf("neo4j sync topic %q: %w", in.Name, err)
	}

	if len(in.Tags) == 0 {
		return nil
	}
	if err := t.run(ctx, `
MATCH (t:Topic {name: $name})
UNWIND $tags AS tag
MERGE (g:Tag {name: tag})
MERGE (t)-[:TAGGED]->(g)
`, map[string]any{"name": in.Name, "tags": in.Tags}); err != nil {
		return fmt.Errorf("neo4j sync tags %q: %w", in.Name, err)
	}
	return nil
}

const (
	mergeIncomingMentions = `MATCH (c:Topic {name: $canonical})
MATCH (src:Topic)-[:MENTIONS]->(a:Topic {name: $alias})
WHERE src <> c AND src <> a
MERGE (src)-[:MENTIONS]->(c)`
	mergeOutgoingMentions = `MATCH (c:Topic {name: $canonical})
MATCH (a:Topic {name: $alias})-[:MENTIONS]->(dst:Topic)
WHERE dst <> c AND dst <> a
MERGE (c)-[:MENTIONS]->(dst)`
	mergeTags = `MATCH (c:Topic {name: $canonical})
MATCH (a:Topic {name: $alias})-[:TAGGED]->(g:Tag)
MERGE (c)-[:TAGGED]->(g)`
	deleteAlias = `MATCH (c:Topic {name: $canonical})
MATCH (a:Topic {name: $alias})
DETACH DELETE a`
)

// Edges are re-pointed before the alias node goes; DETACH DELETE drops the rest.
var mergeAliasStatements = []string{
	mergeIncomingMentions,
	mergeOutgoingMentions,
	mergeTags,
	deleteAlias,
}

type cypherStatement struct {
	cypher string
	params map[string]any
}

// mergeAliasPlan lists the statements MergeAliases runs, in order. Empty
// aliases and the canonical name itself are skipped.
func mergeAliasPlan(canonical string, aliases []string) []cypherStatement {
	var out []cypherStatement
	for _, alias := range aliases {
		if alias == "" || alias == canonical {
			continue
		}
		params := map[string]any{"canonical": canonical, "alias": alias}
		for _, stmt := range mergeAliasStatements {
			out = append(out, cypherStatement{cypher: stmt, params: params})
		}
	}
	return out
}

func (t *neo4jTx) MergeAliases(ctx context.Context, canonical string, aliases []string) error {
	for _, st := range mergeAliasPlan(canonical, aliases) {
		if err := t.run(ctx, st.cypher, st.params); err != nil {
			return fmt.Errorf("neo4j merge alias %q into %q: %w", st.params["alias"], canonical, err)
		}
	}
	return nil
}

func (t *neo4jTx) Commit(ctx context.Context) error {
	if t.done {
		return ErrTxDone
	}
	t.done = true
	defer t.session.Close(ctx)
	return t.tx.Commit(ctx)
}

func (t *neo4jTx) Rollback(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	defer t.session.Close(ctx)
	return t.tx.Rollback(ctx)
}

func recordString(rec *neo4j.Record, key string) string {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}
