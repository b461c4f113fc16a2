package knowledge

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// UnknownTopic is the sentinel the generator uses for queries it cannot classify.
const UnknownTopic = "unknown"

// CanonicalName is the storage key for a topic: NFC, trimmed, lower-cased.
func CanonicalName(s string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFC.String(s)))
}

// DisplayName trims and NFC-normalizes s without changing case. Alias rows are
// keyed by this form.
func DisplayName(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}

// IsUnknownTopic reports whether the generator declined to classify the query.
func IsUnknownTopic(topic string) bool {
	return CanonicalName(topic) == UnknownTopic
}

// AliasCandidates returns the distinct display forms among names whose
// canonical form differs from canonical. Blank names are skipped.
func AliasCandidates(canonical string, names ...string) []string {
	canonical = CanonicalName(canonical)
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		d := DisplayName(n)
		if d == "" || CanonicalName(d) == canonical {
			continue
		}
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	return out
}

func strippedKey(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, CanonicalName(s))
}

func containsHangul(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Hangul, r) {
			return true
		}
	}
	return false
}

// isWordRune mirrors the \w class of a Latin-oriented regex engine, extended
// to accented Latin, Greek and Cyrillic letters. Hangul and other scripts
// whose particles attach directly to nouns are never word runes.
func isWordRune(r rune) bool {
	if r == '_' {
		return true
	}
	if r < 0x80 {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	}
	return unicode.In(r, unicode.Latin, unicode.Greek, unicode.Cyrillic) || unicode.Is(unicode.Nd, r)
}
