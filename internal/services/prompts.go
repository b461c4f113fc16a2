package services

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/constella-backend/internal/platform/logger"
)

//go:embed prompts.yaml
var embeddedPrompts []byte

// PromptsOverrideEnv points at a YAML file that replaces the embedded prompts.
const PromptsOverrideEnv = "KNOWLEDGE_PROMPTS_YAML"

type PromptTemplate struct {
	System string `yaml:"system"`
	User   string `yaml:"user"`
}

// Render substitutes {{name}} placeholders. Unknown placeholders are left as is.
func (t PromptTemplate) Render(vars map[string]string) (system string, user string) {
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{{"+k+"}}", v)
	}
	r := strings.NewReplacer(pairs...)
	return r.Replace(t.System), r.Replace(t.User)
}

type PromptSet struct {
	Version        int               `yaml:"version"`
	Synthesis      PromptTemplate    `yaml:"synthesis"`
	TranslateNames PromptTemplate    `yaml:"translate_names"`
	Languages      map[string]string `yaml:"languages"`
}

// LanguageName returns the display name used inside prompts for a language code.
func (p *PromptSet) LanguageName(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if p != nil {
		if name, ok := p.Languages[code]; ok && strings.TrimSpace(name) != "" {
			return name
		}
	}
	if name, ok := fallbackPrompts.Languages[code]; ok {
		return name
	}
	if code == "" {
		return "English"
	}
	return code
}

var fallbackPrompts = PromptSet{
	Version: 1,
	Synthesis: PromptTemplate{
		System: "You are the archivist of a learning platform. Answer in {{language_name}} with a single JSON object.",
		User: "Request: \"{{query}}\". Reply with JSON keys topic, canonicalName, title, content, chatResponse, tags. " +
			"content is markdown with 3 to 5 [[Keyword]] links. Use topic \"Unknown\" if the request has no learnable topic.",
	},
	TranslateNames: PromptTemplate{
		System: "Reply with a single JSON object only.",
		User:   "Translate these topic names into {{language_name}} and reply with a JSON object mapping each original to its translation: {{names}}",
	},
	Languages: map[string]string{
		"en": "English",
		"ko": "Korean (한국어)",
	},
}

var (
	promptsOnce  sync.Once
	promptsCache *PromptSet
	promptsErr   error
)

// CurrentPrompts loads the prompt set once. A broken override or embedded file
// logs a warning and falls back to the built-in prompts.
func CurrentPrompts(log *logger.Logger) *PromptSet {
	promptsOnce.Do(func() {
		promptsCache, promptsErr = LoadPrompts()
	})
	if promptsErr != nil {
		if log != nil {
			log.Warn("knowledge prompts load failed; using fallback", "error", promptsErr)
		}
		return &fallbackPrompts
	}
	return promptsCache
}

func LoadPrompts() (*PromptSet, error) {
	data, err := readPrompts()
	if err != nil {
		return nil, err
	}
	return parsePrompts(data)
}

func parsePrompts(data []byte) (*PromptSet, error) {
	var set PromptSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("parse prompts: %w", err)
	}
	if strings.TrimSpace(set.Synthesis.User) == "" {
		return nil, fmt.Errorf("prompts: synthesis.user is required")
	}
	if strings.TrimSpace(set.TranslateNames.User) == "" {
		set.TranslateNames = fallbackPrompts.TranslateNames
	}
	return &set, nil
}

func readPrompts() ([]byte, error) {
	if path := strings.TrimSpace(os.Getenv(PromptsOverrideEnv)); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", PromptsOverrideEnv, err)
		}
		return data, nil
	}
	if len(embeddedPrompts) == 0 {
		return nil, fmt.Errorf("embedded prompts are empty")
	}
	return embeddedPrompts, nil
}
