package knowledge

import (
	"regexp"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

const (
	minKeywordRunes  = 2
	maxLinkPasses    = 8
	maxCachedPattern = 20000
)

var existingLinkRe = regexp.MustCompile(`\[\[.*?\]\]`)

// Linker wraps known names in [[...]] markers. Compiled patterns are cached
// per keyword and shared across requests.
type Linker struct {
	mu       sync.RWMutex
	patterns map[string]*regexp.Regexp
}

func NewLinker() *Linker {
	return &Linker{patterns: make(map[string]*regexp.Regexp)}
}

type segment struct {
	text   string
	linked bool
}

// Link marks every unlinked occurrence of a keyword in text. Longer keywords
// are tried first so they claim their span before any substring does.
// Latin keywords require word boundaries; keywords containing Hangul match
// anywhere so that attached particles (블랙홀의) still link. The result is a
// fixed point: Link(Link(t, k), k) == Link(t, k).
//
// Matching runs on the NFC form of text. When nothing is linked the input is
// returned byte for byte; otherwise the result is NFC.
func (l *Linker) Link(text string, keywords []string) string {
	if text == "" || len(keywords) == 0 {
		return text
	}
	nfc := norm.NFC.String(text)
	kws := prepareKeywords(nfc, keywords)
	if len(kws) == 0 {
		return text
	}
	out := nfc
	for i := 0; i < maxLinkPasses; i++ {
		next := l.linkOnce(out, kws)
		if next == out {
			break
		}
		out = next
	}
	if out == nfc {
		return text
	}
	return out
}

func (l *Linker) linkOnce(text string, kws []string) string {
	segs := splitSegments(text)
	for _, kw := range kws {
		re := l.pattern(kw)
		bounded := !containsHangul(kw)
		next := make([]segment, 0, len(segs))
		for _, seg := range segs {
			if seg.linked {
				next = append(next, seg)
				continue
			}
			next = append(next, linkSegment(seg.text, kw, re, bounded)...)
		}
		segs = next
	}
	var b strings.Builder
	b.Grow(len(text))
	for _, seg := range segs {
		b.WriteString(seg.text)
	}
	return b.String()
}

func (l *Linker) pattern(kw string) *regexp.Regexp {
	l.mu.RLock()
	re, ok := l.patterns[kw]
	l.mu.RUnlock()
	if ok {
		return re
	}
	re = regexp.MustCompile(`(?i)` + regexp.QuoteMeta(kw))
	l.mu.Lock()
	if len(l.patterns) >= maxCachedPattern {
		l.patterns = make(map[string]*regexp.Regexp)
	}
	l.patterns[kw] = re
	l.mu.Unlock()
	return re
}

// prepareKeywords normalizes, dedupes and orders keywords, dropping any that
// cannot appear in text.
func prepareKeywords(text string, keywords []string) []string {
	lowerText := strings.ToLower(text)
	seen := make(map[string]struct{}, len(keywords))
	out := make([]string, 0, len(keywords))
	for _, raw := range keywords {
		kw := strings.TrimSpace(norm.NFC.String(raw))
		if utf8.RuneCountInString(kw) < minKeywordRunes || strings.ContainsAny(kw, "[]\n") {
			continue
		}
		low := strings.ToLower(kw)
		if _, ok := seen[low]; ok {
			continue
		}
		seen[low] = struct{}{}
		if !strings.Contains(lowerText, low) {
			continue
		}
		out = append(out, kw)
	}
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := utf8.RuneCountInString(out[i]), utf8.RuneCountInString(out[j])
		if ri != rj {
			return ri > rj
		}
		return out[i] < out[j]
	})
	return out
}

func splitSegments(text string) []segment {
	var segs []segment
	last := 0
	for _, loc := range existingLinkRe.FindAllStringIndex(text, -1) {
		if loc[0] > last {
			segs = append(segs, segment{text: text[last:loc[0]]})
		}
		segs = append(segs, segment{text: text[loc[0]:loc[1]], linked: true})
		last = loc[1]
	}
	if last < len(text) {
		segs = append(segs, segment{text: text[last:]})
	}
	return segs
}

// linkSegment links every acceptable match of kw inside one unlinked segment.
// Segment edges always border a [[...]] marker or the text boundary, so they
// count as non-word.
func linkSegment(s, kw string, re *regexp.Regexp, bounded bool) []segment {
	first, _ := utf8.DecodeRuneInString(kw)
	last, _ := utf8.DecodeLastRuneInString(kw)
	checkStart := bounded && isWordRune(first)
	checkEnd := bounded && isWordRune(last)

	var out []segment
	plainStart := 0
	pos := 0
	for pos < len(s) {
		loc := re.FindStringIndex(s[pos:])
		if loc == nil {
			break
		}
		start, end := pos+loc[0], pos+loc[1]
		if (checkStart && wordBefore(s, start)) || (checkEnd && wordAfter(s, end)) {
			_, size := utf8.DecodeRuneInString(s[start:])
			pos = start + size
			continue
		}
		if start > plainStart {
			out = append(out, segment{text: s[plainStart:start]})
		}
		out = append(out, segment{text: "[[" + s[start:end] + "]]", linked: true})
		plainStart = end
		pos = end
	}
	if plainStart == 0 && len(out) == 0 {
		return []segment{{text: s}}
	}
	if plainStart < len(s) {
		out = append(out, segment{text: s[plainStart:]})
	}
	return out
}

func wordBefore(s string, i int) bool {
	if i == 0 {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return isWordRune(r)
}

func wordAfter(s string, i int) bool {
	if i >= len(s) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return isWordRune(r)
}
