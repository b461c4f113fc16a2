package graph

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memNode struct {
	Node
	CreatedAt time.Time
	UpdatedAt time.Time
}

type memState struct {
	nodes    map[string]*memNode
	mentions map[string]map[string]struct{}
	tagged   map[string]map[string]struct{}
	tags     map[string]struct{}
}

func newMemState() *memState {
	return &memState{
		nodes:    map[string]*memNode{},
		mentions: map[string]map[string]struct{}{},
		tagged:   map[string]map[string]struct{}{},
		tags:     map[string]struct{}{},
	}
}

func cloneSet(in map[string]map[string]struct{}) map[string]map[string]struct{} {
	out := make(map[string]map[string]struct{}, len(in))
	for k, inner := range in {
		cp := make(map[string]struct{}, len(inner))
		for v := range inner {
			cp[v] = struct{}{}
		}
		out[k] = cp
	}
	return out
}

func (s *memState) clone() *memState {
	out := &memState{
		nodes:    make(map[string]*memNode, len(s.nodes)),
		mentions: cloneSet(s.mentions),
		tagged:   cloneSet(s.tagged),
		tags:     make(map[string]struct{}, len(s.tags)),
	}
	for k, n := range s.nodes {
		cp := *n
		out.nodes[k] = &cp
	}
	for k := range s.tags {
		out.tags[k] = struct{}{}
	}
	return out
}

func addEdge(set map[string]map[string]struct{}, from, to string) {
	inner, ok := set[from]
	if !ok {
		inner = map[string]struct{}{}
		set[from] = inner
	}
	inner[to] = struct{}{}
}

// MemoryStore is an in-process Store. Writers are serialized: a transaction
// holds the write slot from Begin until Commit or Rollback and works on a
// private copy that replaces the shared state on Commit.
type MemoryStore struct {
	writeSlot chan struct{}

	mu    sync.RWMutex
	state *memState

	failMu         sync.Mutex
	failNextCommit error

	now func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		writeSlot: make(chan struct{}, 1),
		state:     newMemState(),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// FailNextCommit makes the next Commit return err without applying writes.
func (s *MemoryStore) FailNextCommit(err error) {
	s.failMu.Lock()
	s.failNextCommit = err
	s.failMu.Unlock()
}

func (s *MemoryStore) Begin(ctx context.Context) (Tx, error) {
	select {
	case s.writeSlot <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	s.mu.RLock()
	work := s.state.clone()
	s.mu.RUnlock()
	return &memoryTx{store: s, state: work}, nil
}

func (s *MemoryStore) Node(name string) (Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.state.nodes[name]
	if !ok {
		return Node{}, false
	}
	return n.Node, true
}

// Mentions lists the MENTIONS targets of name, sorted.
func (s *MemoryStore) Mentions(name string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedKeys(s.state.mentions[name])
}

// Tags lists the Tag names attached to name, sorted.
func (s *MemoryStore) Tags(name string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedKeys(s.state.tagged[name])
}

func (s *MemoryStore) NodeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.state.nodes)
}

func (s *MemoryStore) Neighborhood(ctx context.Context, names []string) (*Subgraph, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	include := map[string]struct{}{}
	for _, name := range names {
		if _, ok := s.state.nodes[name]; !ok {
			continue
		}
		include[name] = struct{}{}
		for to := range s.state.mentions[name] {
			include[to] = struct{}{}
		}
		for from, targets := range s.state.mentions {
			if _, ok := targets[name]; ok {
				include[from] = struct{}{}
			}
		}
	}

	out := &Subgraph{Nodes: []Node{}, Edges: []Edge{}}
	for _, name := range sortedKeys(include) {
		if n, ok := s.state.nodes[name]; ok {
			out.Nodes = append(out.Nodes, n.Node)
		}
	}
	for _, from := range sortedKeys(include) {
		for _, to := range sortedKeys(s.state.mentions[from]) {
			if _, ok := include[to]; ok {
				out.Edges = append(out.Edges, Edge{Source: from, Target: to, Type: EdgeMentions})
			}
		}
	}
	return out, nil
}

func (s *MemoryStore) RepairTopicIDs(ctx context.Context, ids map[string]uuid.UUID) (int, error) {
	tx, err := s.Begin(ctx)
	if err != nil {
		return 0, err
	}
	mtx := tx.(*memoryTx)
	n := 0
	for name, id := range ids {
		node, ok := mtx.state.nodes[name]
		if !ok || id == uuid.Nil {
			continue
		}
		node.TopicID = id
		node.Ghost = false
		node.UpdatedAt = s.now()
		n++
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *MemoryStore) EnsureSchema(context.Context) error { return nil }

func (s *MemoryStore) Close(context.Context) error { return nil }

type memoryTx struct {
	store *MemoryStore
	state *memState
	done  bool
}

func (t *memoryTx) SyncTopic(ctx context.Context, in TopicSync) error {
	if t.done {
		return ErrTxDone
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if in.Name == "" {
		return nil
	}
	now := t.store.now()
	main := t.ensureNode(in.Name, now)
	main.TopicID = in.TopicID
	main.Ghost = false
	main.UpdatedAt = now

	for _, m := range in.Mentions {
		if m == "" || m == in.Name {
			continue
		}
		t.ensureNode(m, now)
		addEdge(t.state.mentions, in.Name, m)
	}
	for _, tag := range in.Tags {
		if tag == "" {
			continue
		}
		t.state.tags[tag] = struct{}{}
		addEdge(t.state.tagged, in.Name, tag)
	}
	return nil
}

func (t *memoryTx) ensureNode(name string, now time.Time) *memNode {
	n, ok := t.state.nodes[name]
	if !ok {
		n = &memNode{Node: Node{Name: name, Ghost: true}, CreatedAt: now, UpdatedAt: now}
		t.state.nodes[name] = n
	}
	return n
}

func (t *memoryTx) MergeAliases(ctx context.Context, canonical string, aliases []string) error {
	if t.done {
		return ErrTxDone
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	st := t.state
	if _, ok := st.nodes[canonical]; !ok {
		return nil
	}
	for _, alias := range aliases {
		if alias == canonical {
			continue
		}
		if _, ok := st.nodes[alias]; !ok {
			continue
		}
		for src, targets := range st.mentions {
			if src == canonical || src == alias {
				continue
			}
			if _, ok := targets[alias]; ok {
				addEdge(st.mentions, src, canonical)
			}
		}
		for dst := range st.mentions[alias] {
			if dst == canonical || dst == alias {
				continue
			}
			addEdge(st.mentions, canonical, dst)
		}
		for tag := range st.tagged[alias] {
			addEdge(st.tagged, canonical, tag)
		}

		delete(st.nodes, alias)
		delete(st.mentions, alias)
		delete(st.tagged, alias)
		for _, targets := range st.mentions {
			delete(targets, alias)
		}
	}
	return nil
}

func (t *memoryTx) Commit(context.Context) error {
	if t.done {
		return ErrTxDone
	}
	t.done = true
	defer func() { <-t.store.writeSlot }()

	t.store.failMu.Lock()
	injected := t.store.failNextCommit
	t.store.failNextCommit = nil
	t.store.failMu.Unlock()
	if injected != nil {
		return injected
	}

	t.store.mu.Lock()
	t.store.state = t.state
	t.store.mu.Unlock()
	return nil
}

func (t *memoryTx) Rollback(context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	<-t.store.writeSlot
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
