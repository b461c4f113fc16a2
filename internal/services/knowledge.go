package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"

	"github.com/yungbote/constella-backend/internal/data/aggregates"
	"github.com/yungbote/constella-backend/internal/data/graph"
	"github.com/yungbote/constella-backend/internal/data/repos"
	types "github.com/yungbote/constella-backend/internal/domain"
	domainknowledge "github.com/yungbote/constella-backend/internal/domain/knowledge"
	"github.com/yungbote/constella-backend/internal/modules/knowledge"
	"github.com/yungbote/constella-backend/internal/observability"
	"github.com/yungbote/constella-backend/internal/platform/dbctx"
	"github.com/yungbote/constella-backend/internal/platform/logger"
)

const maxQueryRunes = 500

const (
	outcomeCacheHit     = "cache_hit"
	outcomeGenerated    = "generated"
	outcomeUnknownTopic = "unknown_topic"
	outcomeFailed       = "failed"
)

// SynthesisResult is what a query produces. TopicID is uuid.Nil when the
// generator could not identify a topic and nothing was stored.
type SynthesisResult struct {
	AnswerText       string    `json:"answer"`
	ArticleContent   string    `json:"content"`
	IsNewlyGenerated bool      `json:"is_new"`
	TopicID          uuid.UUID `json:"topic_id"`
	TopicName        string    `json:"topic_name,omitempty"`
	Language         string    `json:"language"`
}

type KnowledgeService interface {
	// ResolveOrSynthesize serves a fresh stored article when there is one and
	// otherwise generates, stores and projects a new one. The user's discovery
	// of the topic is recorded either way; a failure to record it is logged
	// and never returned.
	ResolveOrSynthesize(ctx context.Context, userID uuid.UUID, query, language string) (*SynthesisResult, error)
}

// KnowledgeDeps wires KnowledgeService. Limiter and Metrics may be nil.
type KnowledgeDeps struct {
	Log       *logger.Logger
	Resolver  TopicResolver
	Generator ContentGenerator
	Limiter   GenerationLimiter
	Discovery DiscoveryService
	DualTx    *aggregates.DualTxRunner
	Metrics   *observability.Metrics
	Policy    knowledge.StalenessPolicy

	Topics   repos.TopicRepo
	Articles repos.ArticleRepo
	Aliases  repos.AliasRepo
	Tags     repos.TagRepo
}

type knowledgeService struct {
	KnowledgeDeps
	log    *logger.Logger
	linker *knowledge.Linker
	now    func() time.Time
}

func NewKnowledgeService(deps KnowledgeDeps) KnowledgeService {
	return newKnowledgeService(deps)
}

func newKnowledgeService(deps KnowledgeDeps) *knowledgeService {
	return &knowledgeService{
		KnowledgeDeps: deps,
		log:           deps.Log.With("service", "KnowledgeService"),
		linker:        knowledge.NewLinker(),
		now:           time.Now,
	}
}

func (s *knowledgeService) ResolveOrSynthesize(ctx context.Context, userID uuid.UUID, query, language string) (*SynthesisResult, error) {
	ctx, span := observability.StartSpan(ctx, "knowledge.resolve_or_synthesize",
		attribute.String("language", normalizeLanguage(language)),
	)
	out, outcome, err := s.resolveOrSynthesize(ctx, userID, query, language)
	if err != nil {
		outcome = outcomeFailed
	}
	span.SetAttributes(attribute.String("outcome", outcome))
	observability.EndSpan(span, err)
	s.Metrics.IncSynthesis(outcome)
	return out, err
}

func (s *knowledgeService) resolveOrSynthesize(ctx context.Context, userID uuid.UUID, query, language string) (*SynthesisResult, string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, outcomeFailed, fmt.Errorf("%w: query is empty", domainknowledge.ErrInvalidQuery)
	}
	if utf8.RuneCountInString(query) > maxQueryRunes {
		return nil, outcomeFailed, fmt.Errorf("%w: query longer than %d characters", domainknowledge.ErrInvalidQuery, maxQueryRunes)
	}
	language = normalizeLanguage(language)

	res, err := s.Resolver.Resolve(ctx, query, language)
	if err != nil {
		return nil, outcomeFailed, err
	}

	if res.Found() && !s.Policy.NeedsRegeneration(res.Topic, res.Article, s.now()) {
		s.recordDiscovery(ctx, userID, res.Topic.ID)
		return &SynthesisResult{
			AnswerText:     knowledge.ComposeArchiveAnswer(res.Topic.Name, res.Article.Content),
			ArticleContent: res.Article.Content,
			TopicID:        res.Topic.ID,
			TopicName:      res.Topic.Name,
			Language:       language,
		}, outcomeCacheHit, nil
	}

	if s.Limiter != nil {
		if err := s.Limiter.Allow(ctx, userID); err != nil {
			return nil, outcomeFailed, err
		}
	}

	raw, err := s.Generator.Generate(ctx, query, language)
	if err != nil {
		return nil, outcomeFailed, err
	}
	gen, err := knowledge.Normalize(raw)
	if err != nil {
		s.log.Warn("generator output rejected", "query", query, "language", language, "error", err, "raw", truncate(raw, 512))
		return nil, outcomeFailed, err
	}

	content := knowledge.NormalizeMarkdownLinks(gen.Content)
	answer := knowledge.NormalizeMarkdownLinks(gen.ChatResponse)

	if knowledge.IsUnknownTopic(gen.Topic) {
		return &SynthesisResult{
			AnswerText:     answer,
			ArticleContent: content,
			Language:       language,
		}, outcomeUnknownTopic, nil
	}

	canonical := knowledge.CanonicalName(gen.CanonicalName)
	if canonical == "" {
		canonical = knowledge.CanonicalName(gen.Topic)
	}
	title := strings.TrimSpace(gen.Title)
	if title == "" {
		title = knowledge.DisplayName(gen.Topic)
	}

	topic, content, answer, err := s.persist(ctx, "knowledge.synthesize", articleWrite{
		Canonical: canonical,
		Language:  language,
		Title:     title,
		Content:   content,
		Answer:    answer,
		Tags:      gen.Tags,
		Extras:    gen.Extras,
		Aliases:   knowledge.AliasCandidates(canonical, query, gen.Topic),
		AutoLink:  true,
	})
	if err != nil {
		return nil, outcomeFailed, err
	}

	s.recordDiscovery(ctx, userID, topic.ID)
	return &SynthesisResult{
		AnswerText:       knowledge.ComposeGeneratedAnswer(answer, content),
		ArticleContent:   content,
		IsNewlyGenerated: true,
		TopicID:          topic.ID,
		TopicName:        topic.Name,
		Language:         language,
	}, outcomeGenerated, nil
}

// articleWrite is one article plus everything it projects into the graph.
type articleWrite struct {
	Canonical string
	Language  string
	Title     string
	Content   string
	Answer    string
	Tags      []string
	Extras    map[string]any
	Aliases   []string
	// AutoLink wraps known names in the text before storing it.
	AutoLink bool
}

// persist auto-links the text against every known name, then writes rows and
// graph projection in one dual transaction. It returns the linked text.
func (s *knowledgeService) persist(ctx context.Context, op string, in articleWrite) (*types.Topic, string, string, error) {
	index, err := s.loadKeywordIndex(ctx, in.Canonical, in.Aliases)
	if err != nil {
		return nil, "", "", err
	}
	content, answer := in.Content, in.Answer
	if in.AutoLink {
		keywords := index.Keywords()
		content = s.linker.Link(content, keywords)
		if strings.TrimSpace(answer) != "" {
			answer = s.linker.Link(answer, keywords)
		}
	}
	mentions := index.Mentions(knowledge.ExtractLinks(content), in.Canonical)

	mergeNames := make([]string, 0, len(in.Aliases))
	for _, a := range in.Aliases {
		mergeNames = append(mergeNames, knowledge.CanonicalName(a))
	}

	var extras datatypes.JSON
	if len(in.Extras) > 0 {
		b, err := json.Marshal(in.Extras)
		if err != nil {
			return nil, "", "", fmt.Errorf("encode extras: %w", err)
		}
		extras = datatypes.JSON(b)
	}

	ctx, span := observability.StartSpan(ctx, "knowledge.persist",
		attribute.String("topic", in.Canonical),
		attribute.Int("mentions", len(mentions)),
	)
	var topic *types.Topic
	err = s.DualTx.InDualTx(ctx, op, func(dbc dbctx.Context, gtx graph.Tx) error {
		t, err := s.Topics.Upsert(dbc, in.Canonical)
		if err != nil {
			return fmt.Errorf("upsert topic: %w", err)
		}
		tags, err := s.Tags.EnsureByNames(dbc, in.Tags)
		if err != nil {
			return fmt.Errorf("ensure tags: %w", err)
		}
		tagIDs := make([]uuid.UUID, 0, len(tags))
		tagNames := make([]string, 0, len(tags))
		for _, tg := range tags {
			tagIDs = append(tagIDs, tg.ID)
			tagNames = append(tagNames, tg.Name)
		}
		if err := s.Topics.AttachTags(dbc, t.ID, tagIDs); err != nil {
			return fmt.Errorf("attach tags: %w", err)
		}
		if _, err := s.Articles.Upsert(dbc, &types.Article{
			TopicID:  t.ID,
			Language: in.Language,
			Title:    in.Title,
			Content:  content,
			Extras:   extras,
		}); err != nil {
			return fmt.Errorf("upsert article: %w", err)
		}
		if err := s.Aliases.InsertIgnore(dbc, t.ID, in.Aliases); err != nil {
			return fmt.Errorf("insert aliases: %w", err)
		}

		if err := gtx.SyncTopic(dbc.Ctx, graph.TopicSync{
			Name:     t.Name,
			TopicID:  t.ID,
			Mentions: mentions,
			Tags:     tagNames,
		}); err != nil {
			return fmt.Errorf("graph sync: %w", err)
		}
		if err := gtx.MergeAliases(dbc.Ctx, t.Name, mergeNames); err != nil {
			return fmt.Errorf("graph merge aliases: %w", err)
		}
		topic = t
		return nil
	})
	observability.EndSpan(span, err)
	if err != nil {
		s.log.Error("knowledge write aborted", "op", op, "topic", in.Canonical, "error", err)
		return nil, "", "", err
	}
	return topic, content, answer, nil
}

// loadKeywordIndex reads every topic and alias name. The topic being written
// and its new aliases are included so links to them resolve to self.
func (s *knowledgeService) loadKeywordIndex(ctx context.Context, canonical string, aliases []string) (*knowledge.KeywordIndex, error) {
	var (
		names       []string
		aliasLookup []types.AliasName
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		names, err = s.Topics.ListNames(dbctx.Context{Ctx: gctx})
		if err != nil {
			return fmt.Errorf("list topic names: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		aliasLookup, err = s.Aliases.ListAliasNames(dbctx.Context{Ctx: gctx})
		if err != nil {
			return fmt.Errorf("list aliases: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	names = append(names, canonical)
	for _, a := range aliases {
		aliasLookup = append(aliasLookup, types.AliasName{Name: a, TopicName: canonical})
	}
	return knowledge.NewKeywordIndex(names, aliasLookup), nil
}

func (s *knowledgeService) recordDiscovery(ctx context.Context, userID, topicID uuid.UUID) {
	if s.Discovery == nil || userID == uuid.Nil {
		return
	}
	if err := s.Discovery.Record(ctx, userID, topicID); err != nil {
		s.Metrics.IncDiscoveryFailure()
		s.log.Error("ship log update failed", "user_id", userID.String(), "topic_id", topicID.String(), "error", err)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "…"
}
