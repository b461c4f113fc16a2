package knowledge

import (
	types "github.com/yungbote/constella-backend/internal/domain"
)

// KeywordIndex is the set of names the linker knows about, and a lookup from
// any of them back to the canonical topic name.
type KeywordIndex struct {
	keywords []string
	byKey    map[string]string
}

func NewKeywordIndex(topicNames []string, aliases []types.AliasName) *KeywordIndex {
	ix := &KeywordIndex{byKey: make(map[string]string, len(topicNames)+len(aliases))}
	add := func(display, canonical string) {
		display = DisplayName(display)
		if display == "" {
			return
		}
		k := strippedKey(display)
		if _, ok := ix.byKey[k]; ok {
			return
		}
		ix.byKey[k] = CanonicalName(canonical)
		ix.keywords = append(ix.keywords, display)
	}
	for _, n := range topicNames {
		add(n, n)
	}
	for _, a := range aliases {
		add(a.Name, a.TopicName)
	}
	return ix
}

func (ix *KeywordIndex) Keywords() []string {
	if ix == nil {
		return nil
	}
	return ix.keywords
}

// Canonical maps a linked name to its topic. Unknown names map to their own
// canonical form and become ghost nodes downstream.
func (ix *KeywordIndex) Canonical(name string) string {
	if ix != nil {
		if c, ok := ix.byKey[strippedKey(name)]; ok {
			return c
		}
	}
	return CanonicalName(name)
}

// Mentions resolves linked names to distinct canonical names, dropping self.
func (ix *KeywordIndex) Mentions(linked []string, self string) []string {
	self = CanonicalName(self)
	seen := make(map[string]struct{}, len(linked))
	out := make([]string, 0, len(linked))
	for _, n := range linked {
		c := ix.Canonical(n)
		if c == "" || c == self {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
