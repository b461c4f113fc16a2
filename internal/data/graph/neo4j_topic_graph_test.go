package graph

import (
	"strings"
	"testing"
)

func TestMergeAliasPlan_OrderAndSkips(t *testing.T) {
	plan := mergeAliasPlan("black hole", []string{"", "블랙홀", "black hole", "bh"})
	if len(plan) != 2*len(mergeAliasStatements) {
		t.Fatalf("plan length: want=%d got=%d", 2*len(mergeAliasStatements), len(plan))
	}
	want := []string{mergeIncomingMentions, mergeOutgoingMentions, mergeTags, deleteAlias}
	for i, st := range plan {
		if st.cypher != want[i%len(want)] {
			t.Fatalf("statement %d: want=%q got=%q", i, want[i%len(want)], st.cypher)
		}
		if st.params["canonical"] != "black hole" {
			t.Fatalf("statement %d canonical: want=%q got=%v", i, "black hole", st.params["canonical"])
		}
	}
	if got := plan[0].params["alias"]; got != "블랙홀" {
		t.Fatalf("first alias: want=%q got=%v", "블랙홀", got)
	}
	if got := plan[len(want)].params["alias"]; got != "bh" {
		t.Fatalf("second alias: want=%q got=%v", "bh", got)
	}
}

func TestMergeAliasPlan_NothingToMerge(t *testing.T) {
	if plan := mergeAliasPlan("mars", []string{"mars", ""}); len(plan) != 0 {
		t.Fatalf("plan: want empty got=%d statements", len(plan))
	}
}

func TestMergeAliasStatements_Shape(t *testing.T) {
	cases := []struct {
		name     string
		cypher   string
		contains []string
	}{
		{"incoming", mergeIncomingMentions, []string{"(src:Topic)-[:MENTIONS]->(a:Topic {name: $alias})", "WHERE src <> c AND src <> a", "MERGE (src)-[:MENTIONS]->(c)"}},
		{"outgoing", mergeOutgoingMentions, []string{"(a:Topic {name: $alias})-[:MENTIONS]->(dst:Topic)", "WHERE dst <> c AND dst <> a", "MERGE (c)-[:MENTIONS]->(dst)"}},
		{"tagged", mergeTags, []string{"(a:Topic {name: $alias})-[:TAGGED]->(g:Tag)", "MERGE (c)-[:TAGGED]->(g)"}},
		{"delete", deleteAlias, []string{"MATCH (c:Topic {name: $canonical})", "DETACH DELETE a"}},
	}
	for _, tc := range cases {
		for _, frag := range tc.contains {
			if !strings.Contains(tc.cypher, frag) {
				t.Fatalf("%s: missing %q in %q", tc.name, frag, tc.cypher)
			}
		}
	}
	// only the final statement removes the alias node
	for i, stmt := range mergeAliasStatements[:len(mergeAliasStatements)-1] {
		if strings.Contains(stmt, "DELETE") {
			t.Fatalf("statement %d deletes before edges are re-pointed: %q", i, stmt)
		}
	}
}
