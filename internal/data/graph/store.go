package graph

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

const (
	LabelTopic = "Topic"
	LabelTag   = "Tag"

	EdgeMentions = "MENTIONS"
	EdgeTagged   = "TAGGED"
)

var ErrTxDone = errors.New("graph transaction already finished")

// TopicSync is the projection of one generated topic. Name and Mentions are
// canonical names; mentions that have no node yet become ghost nodes.
type TopicSync struct {
	Name     string
	TopicID  uuid.UUID
	Mentions []string
	Tags     []string
}

// Node is a Topic node. Names are unique, so the name doubles as the key.
type Node struct {
	Name    string    `json:"name"`
	Ghost   bool      `json:"ghost"`
	TopicID uuid.UUID `json:"topic_id"`
}

type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type"`
}

type Subgraph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Tx is a unit of graph writes. Exactly one of Commit or Rollback ends it.
type Tx interface {
	SyncTopic(ctx context.Context, in TopicSync) error
	// MergeAliases folds each alias node into canonical: incoming MENTIONS are
	// redirected to canonical, outgoing MENTIONS and TAGGED now originate from
	// it, and the alias node is removed. Aliases equal to canonical are skipped.
	MergeAliases(ctx context.Context, canonical string, aliases []string) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type Store interface {
	Begin(ctx context.Context) (Tx, error)
	// Neighborhood returns the named nodes, their one-hop MENTIONS neighbours
	// in either direction, and the MENTIONS edges among them.
	Neighborhood(ctx context.Context, names []string) (*Subgraph, error)
	// RepairTopicIDs sets topicId (and clears ghost) on nodes whose name has a
	// relational Topic. Returns the number of nodes touched.
	RepairTopicIDs(ctx context.Context, ids map[string]uuid.UUID) (int, error)
	EnsureSchema(ctx context.Context) error
	Close(ctx context.Context) error
}
