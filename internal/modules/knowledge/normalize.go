package knowledge

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"unicode"

	domainknowledge "github.com/yungbote/constella-backend/internal/domain/knowledge"
)

// GeneratedContent is generator output coerced into the fixed schema.
type GeneratedContent struct {
	Topic         string
	CanonicalName string
	Title         string
	Content       string
	ChatResponse  string
	Tags          []string
	// Extras holds unrecognized keys, lower-cased.
	Extras map[string]any
}

const maxUnwrapDepth = 4

const (
	fieldTopic         = "topic"
	fieldCanonicalName = "canonicalName"
	fieldTitle         = "title"
	fieldTags          = "tags"
	fieldContent       = "content"
	fieldChatResponse  = "chatResponse"
)

type keyRule struct {
	substr string
	field  string
}

// keyRules are evaluated in order against the lower-cased, punctuation-free
// key; the first rule whose substring is contained wins. More specific
// substrings come first so "canonical_topic" is a canonical name, not a topic.
var keyRules = []keyRule{
	{substr: "chatresponse", field: fieldChatResponse},
	{substr: "canonical", field: fieldCanonicalName},
	{substr: "topic", field: fieldTopic},
	{substr: "title", field: fieldTitle},
	{substr: "tags", field: fieldTags},
	{substr: "content", field: fieldContent},
}

var wrapperKeys = []string{"response", "result"}

// Normalize extracts, decodes, unwraps and validates raw generator output.
func Normalize(raw string) (*GeneratedContent, error) {
	obj, err := decodePayload(raw)
	if err != nil {
		return nil, &domainknowledge.MalformedOutputError{Raw: raw, Cause: err}
	}

	fields, extras := mapKeys(obj)
	out := &GeneratedContent{
		Topic:        asString(fields[fieldTopic]),
		Title:        asString(fields[fieldTitle]),
		Content:      asString(fields[fieldContent]),
		ChatResponse: asString(fields[fieldChatResponse]),
		Tags:         asStringList(fields[fieldTags]),
		Extras:       extras,
	}
	out.CanonicalName = asString(fields[fieldCanonicalName])

	var missing []string
	if strings.TrimSpace(out.Topic) == "" {
		missing = append(missing, fieldTopic)
	}
	if strings.TrimSpace(out.Content) == "" {
		missing = append(missing, fieldContent)
	}
	if len(missing) > 0 {
		return nil, &domainknowledge.IncompleteOutputError{Missing: missing, Raw: raw}
	}
	if strings.TrimSpace(out.CanonicalName) == "" {
		out.CanonicalName = out.Topic
	}
	return out, nil
}

// ExtractJSON returns the outermost {...} or [...] span of s, whichever opens
// first. The closer is the last matching closer in s. If no span exists the
// trimmed input is returned unchanged.
func ExtractJSON(s string) string {
	spans := candidateSpans(s)
	if len(spans) == 0 {
		return strings.TrimSpace(s)
	}
	return spans[0]
}

func candidateSpans(s string) []string {
	type span struct{ start, end int }
	var spans []span
	for _, pair := range [][2]byte{{'{', '}'}, {'[', ']'}} {
		start := strings.IndexByte(s, pair[0])
		end := strings.LastIndexByte(s, pair[1])
		if start >= 0 && end > start {
			spans = append(spans, span{start, end})
		}
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })
	out := make([]string, 0, len(spans))
	for _, sp := range spans {
		out = append(out, s[sp.start:sp.end+1])
	}
	return out
}

// decodePayload tries the span that opens first, then the other one, so
// prose such as "see [1]" ahead of an object does not defeat extraction.
func decodePayload(raw string) (map[string]any, error) {
	spans := candidateSpans(raw)
	if len(spans) == 0 {
		return nil, fmt.Errorf("no JSON object or array found")
	}
	var firstErr error
	for _, candidate := range spans {
		var v any
		if err := json.Unmarshal([]byte(candidate), &v); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		obj, ok := unwrap(v, 0)
		if !ok {
			if firstErr == nil {
				firstErr = fmt.Errorf("no JSON object within %d levels", maxUnwrapDepth)
			}
			continue
		}
		return obj, nil
	}
	return nil, firstErr
}

func unwrap(v any, depth int) (map[string]any, bool) {
	if depth > maxUnwrapDepth {
		return nil, false
	}
	switch t := v.(type) {
	case []any:
		if len(t) == 0 {
			return nil, false
		}
		return unwrap(t[0], depth+1)
	case map[string]any:
		if hasPayloadField(t) {
			return t, true
		}
		for _, wk := range wrapperKeys {
			for k, inner := range t {
				if !strings.EqualFold(strings.TrimSpace(k), wk) {
					continue
				}
				switch inner.(type) {
				case map[string]any, []any:
					return unwrap(inner, depth+1)
				}
			}
		}
		return t, true
	default:
		return nil, false
	}
}

func hasPayloadField(obj map[string]any) bool {
	for k := range obj {
		switch fieldFor(k) {
		case fieldTopic, fieldContent:
			return true
		}
	}
	return false
}

func keyForm(k string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return -1
	}, k)
}

func fieldFor(key string) string {
	form := keyForm(key)
	for _, rule := range keyRules {
		if strings.Contains(form, rule.substr) {
			return rule.field
		}
	}
	return ""
}

// mapKeys assigns each key to a field. When several keys land on the same
// field, an exact match of the rule substring wins, then the lexically
// smallest key, so the result does not depend on map iteration order.
func mapKeys(obj map[string]any) (map[string]any, map[string]any) {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := map[string]any{}
	exact := map[string]bool{}
	extras := map[string]any{}
	for _, k := range keys {
		field := fieldFor(k)
		if field == "" {
			extras[strings.ToLower(strings.TrimSpace(k))] = obj[k]
			continue
		}
		isExact := keyForm(k) == ruleSubstr(field)
		if _, taken := fields[field]; taken && (exact[field] || !isExact) {
			continue
		}
		fields[field] = obj[k]
		exact[field] = isExact
	}
	if len(extras) == 0 {
		extras = nil
	}
	return fields, extras
}

func ruleSubstr(field string) string {
	for _, rule := range keyRules {
		if rule.field == field {
			return rule.substr
		}
	}
	return ""
}

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64, bool, json.Number:
		return fmt.Sprint(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

func asStringList(v any) []string {
	out := []string{}
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			if s := strings.TrimSpace(asString(item)); s != "" {
				out = append(out, s)
			}
		}
	case string:
		for _, part := range strings.Split(t, ",") {
			if s := strings.TrimSpace(part); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
