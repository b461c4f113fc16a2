package services

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/yungbote/constella-backend/internal/modules/knowledge"
	"github.com/yungbote/constella-backend/internal/platform/logger"
)

type NameTranslator interface {
	// TranslateNames maps each name to its translation in language. English
	// is the identity mapping. Any generator or parse failure yields an empty
	// map and callers fall back to the original names.
	TranslateNames(ctx context.Context, names []string, language string) map[string]string
}

type nameTranslator struct {
	log       *logger.Logger
	generator ContentGenerator
	prompts   *PromptSet
}

func NewNameTranslator(log *logger.Logger, generator ContentGenerator, prompts *PromptSet) NameTranslator {
	serviceLog := log.With("service", "NameTranslator")
	if prompts == nil {
		prompts = CurrentPrompts(serviceLog)
	}
	return &nameTranslator{log: serviceLog, generator: generator, prompts: prompts}
}

func (t *nameTranslator) TranslateNames(ctx context.Context, names []string, language string) map[string]string {
	language = normalizeLanguage(language)
	if language == DefaultLanguage {
		out := make(map[string]string, len(names))
		for _, n := range names {
			out[n] = n
		}
		return out
	}
	if len(names) == 0 || t.generator == nil {
		return map[string]string{}
	}

	list, err := json.Marshal(names)
	if err != nil {
		return map[string]string{}
	}
	system, user := t.prompts.TranslateNames.Render(map[string]string{
		"names":         string(list),
		"language":      language,
		"language_name": t.prompts.LanguageName(language),
	})
	raw, err := t.generator.CompleteJSON(ctx, system, user)
	if err != nil {
		t.log.Warn("translate names failed", "language", language, "count", len(names), "error", err)
		return map[string]string{}
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(knowledge.ExtractJSON(raw)), &decoded); err != nil {
		t.log.Warn("translate names: unparseable response", "language", language, "error", err)
		return map[string]string{}
	}
	out := make(map[string]string, len(decoded))
	for k, v := range decoded {
		s, ok := v.(string)
		if !ok || strings.TrimSpace(s) == "" {
			continue
		}
		out[k] = s
	}
	return out
}
