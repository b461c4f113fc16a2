package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/constella-backend/internal/data/repos"
	types "github.com/yungbote/constella-backend/internal/domain"
	domainknowledge "github.com/yungbote/constella-backend/internal/domain/knowledge"
	"github.com/yungbote/constella-backend/internal/platform/dbctx"
	"github.com/yungbote/constella-backend/internal/platform/logger"
)

const ChatHistoryLimit = 50

type ChatService interface {
	// Send stores the user's message, runs it through ResolveOrSynthesize and
	// stores the answer. A failed synthesis leaves only the user message.
	Send(ctx context.Context, userID uuid.UUID, message, language string) (*SynthesisResult, error)
	// History returns the most recent messages, oldest first.
	History(ctx context.Context, userID uuid.UUID) ([]*types.ChatMessage, error)
}

type chatService struct {
	log       *logger.Logger
	users     repos.UserRepo
	messages  repos.ChatMessageRepo
	knowledge KnowledgeService
	now       func() time.Time
}

func NewChatService(
	baseLog *logger.Logger,
	userRepo repos.UserRepo,
	messageRepo repos.ChatMessageRepo,
	knowledgeService KnowledgeService,
) ChatService {
	return &chatService{
		log:       baseLog.With("service", "ChatService"),
		users:     userRepo,
		messages:  messageRepo,
		knowledge: knowledgeService,
		now:       time.Now,
	}
}

func (s *chatService) Send(ctx context.Context, userID uuid.UUID, message, language string) (*SynthesisResult, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, fmt.Errorf("%w: message is required", domainknowledge.ErrInvalidQuery)
	}
	dbc := dbctx.Context{Ctx: ctx}
	if err := s.users.Ensure(dbc, userID); err != nil {
		return nil, fmt.Errorf("ensure user: %w", err)
	}
	if _, err := s.messages.Create(dbc, []*types.ChatMessage{{
		UserID:    userID,
		Role:      types.ChatRoleUser,
		Content:   message,
		CreatedAt: s.now().UTC(),
	}}); err != nil {
		return nil, fmt.Errorf("store user message: %w", err)
	}

	res, err := s.knowledge.ResolveOrSynthesize(ctx, userID, message, language)
	if err != nil {
		return nil, err
	}

	if _, err := s.messages.Create(dbc, []*types.ChatMessage{{
		UserID:    userID,
		Role:      types.ChatRoleAssistant,
		Content:   res.AnswerText,
		CreatedAt: s.now().UTC(),
	}}); err != nil {
		s.log.Warn("store assistant message failed", "user_id", userID.String(), "error", err)
	}
	return res, nil
}

func (s *chatService) History(ctx context.Context, userID uuid.UUID) ([]*types.ChatMessage, error) {
	out, err := s.messages.ListRecent(dbctx.Context{Ctx: ctx}, userID, ChatHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("list chat history: %w", err)
	}
	if out == nil {
		out = []*types.ChatMessage{}
	}
	return out, nil
}
