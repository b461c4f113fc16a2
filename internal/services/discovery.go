package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/constella-backend/internal/data/aggregates"
	"github.com/yungbote/constella-backend/internal/data/repos"
	types "github.com/yungbote/constella-backend/internal/domain"
	domainknowledge "github.com/yungbote/constella-backend/internal/domain/knowledge"
	"github.com/yungbote/constella-backend/internal/platform/dbctx"
	"github.com/yungbote/constella-backend/internal/platform/logger"
)

type DiscoveryService interface {
	// Record marks topicID as discovered by userID now. Errors wrap
	// knowledge.ErrDiscoveryLog.
	Record(ctx context.Context, userID, topicID uuid.UUID) error
	IsDiscovered(ctx context.Context, userID, topicID uuid.UUID) (bool, error)
	// ShipLog lists the user's discoveries, newest first.
	ShipLog(ctx context.Context, userID uuid.UUID) ([]types.ShipLogEntry, error)
}

type discoveryService struct {
	log       *logger.Logger
	users     repos.UserRepo
	discovery repos.DiscoveryRepo
	writer    *aggregates.Writer
	now       func() time.Time
}

// NewDiscoveryService records discoveries through writer; a nil writer
// writes without a transaction.
func NewDiscoveryService(log *logger.Logger, users repos.UserRepo, discovery repos.DiscoveryRepo, writer *aggregates.Writer) DiscoveryService {
	return &discoveryService{
		log:       log.With("service", "DiscoveryService"),
		users:     users,
		discovery: discovery,
		writer:    writer,
		now:       time.Now,
	}
}

func (s *discoveryService) Record(ctx context.Context, userID, topicID uuid.UUID) error {
	if userID == uuid.Nil || topicID == uuid.Nil {
		return fmt.Errorf("%w: missing user or topic id", domainknowledge.ErrDiscoveryLog)
	}
	at := s.now().UTC()
	err := s.writer.Write(ctx, "discovery.record", func(dbc dbctx.Context) error {
		if err := s.users.Ensure(dbc, userID); err != nil {
			return fmt.Errorf("ensure user: %w", err)
		}
		return s.discovery.Upsert(dbc, userID, topicID, at)
	})
	if err != nil {
		return fmt.Errorf("%w: %w", domainknowledge.ErrDiscoveryLog, err)
	}
	return nil
}

func (s *discoveryService) IsDiscovered(ctx context.Context, userID, topicID uuid.UUID) (bool, error) {
	if userID == uuid.Nil || topicID == uuid.Nil {
		return false, nil
	}
	return s.discovery.Exists(dbctx.Context{Ctx: ctx}, userID, topicID)
}

func (s *discoveryService) ShipLog(ctx context.Context, userID uuid.UUID) ([]types.ShipLogEntry, error) {
	entries, err := s.discovery.ListEntries(dbctx.Context{Ctx: ctx}, userID)
	if err != nil {
		return nil, fmt.Errorf("list ship log: %w", err)
	}
	if entries == nil {
		entries = []types.ShipLogEntry{}
	}
	return entries, nil
}
