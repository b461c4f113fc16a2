package knowledge

import (
	"regexp"
	"strings"
)

var (
	markdownLinkRe = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	wikiLinkRe     = regexp.MustCompile(`\[\[(.*?)\]\]`)
)

// NormalizeMarkdownLinks rewrites [label](url) as [[label]].
func NormalizeMarkdownLinks(s string) string {
	return markdownLinkRe.ReplaceAllString(s, "[[$1]]")
}

// ExtractLinks returns the distinct names wrapped in [[...]] in order of
// first appearance.
func ExtractLinks(s string) []string {
	matches := wikiLinkRe.FindAllStringSubmatch(s, -1)
	seen := make(map[string]struct{}, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		name := strings.TrimSpace(strings.Trim(m[1], "[]"))
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
