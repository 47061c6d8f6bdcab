package audit

import (
	"context"
	"time"

	"github.com/fruverhq/fruver-pos/internal/logger"
	"github.com/fruverhq/fruver-pos/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type storeSink struct {
	repo   Repository
	logger logger.Logger
}

// NewStoreSink persists events through the audit repository.
func NewStoreSink(repo Repository, log logger.Logger) Sink {
	return &storeSink{
		repo:   repo,
		logger: log,
	}
}

func (s *storeSink) Record(ctx context.Context, e Event) {
	entry := &model.AuditLog{
		ID:         uuid.New().String(),
		ActorID:    e.ActorID,
		ActorEmail: e.ActorEmail,
		Action:     e.Action,
		Entity:     e.Entity,
		EntityID:   e.EntityID,
		Metadata:   e.Metadata,
		IP:         e.IP,
		CreatedAt:  time.Now(),
	}

	if err := s.repo.Insert(ctx, entry); err != nil {
		s.logger.Error("audit write failed",
			zap.String("action", e.Action),
			zap.String("entity", e.Entity),
			zap.String("entity_id", e.EntityID),
			zap.Error(err),
		)
	}
}
