package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/glenjamindle/solartrack-pro/internal/event"
	"github.com/glenjamindle/solartrack-pro/internal/model"
	"github.com/glenjamindle/solartrack-pro/internal/repository"
	"github.com/glenjamindle/solartrack-pro/pkg/outbox"
	"github.com/glenjamindle/solartrack-pro/pkg/trace"
)

const aggregateTypeRefusal = "pile_refusal"

// RefusalService 负责桩基拒锤上报
// 与 EntryService 一样走 outbox：拒锤落库和 refusal.flagged 事件同事务。
type RefusalService struct {
	refusalRepo *repository.RefusalRepository
	entryRepo   *repository.EntryRepository
	outboxRepo  *outbox.Repository
	logger      *zap.Logger
}

func NewRefusalService(
	refusalRepo *repository.RefusalRepository,
	entryRepo *repository.EntryRepository,
	outboxRepo *outbox.Repository,
	logger *zap.Logger,
) *RefusalService {
	return &RefusalService{
		refusalRepo: refusalRepo,
		entryRepo:   entryRepo,
		outboxRepo:  outboxRepo,
		logger:      logger,
	}
}

// Flag records a pile refusal and queues its refusal.flagged event.
func (s *RefusalService) Flag(ctx context.Context, userID int, ref *model.PileRefusal) error {
	tx, err := s.entryRepo.Pool().Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.refusalRepo.CreateInTx(ctx, tx, ref); err != nil {
		return fmt.Errorf("failed to insert refusal: %w", err)
	}

	refusalID := int64(ref.ID)
	payload := event.RefusalFlaggedPayload{
		RefusalID: ref.ID,
		ProjectID: ref.ProjectID,
		UserID:    userID,
		Location:  ref.Location,
		TraceID:   trace.FromContext(ctx),
	}
	if err := outbox.InsertEventInTx(ctx, tx, s.outboxRepo, aggregateTypeRefusal, &refusalID, event.RoutingKeyRefusalFlagged, payload); err != nil {
		return fmt.Errorf("failed to queue refusal.flagged: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	s.logger.Info("Pile refusal flagged",
		zap.Int("refusal_id", ref.ID),
		zap.Int("project_id", ref.ProjectID),
		zap.String("location", ref.Location),
	)

	return nil
}

// List returns all refusals for a project.
func (s *RefusalService) List(ctx context.Context, projectID int) ([]model.PileRefusal, error) {
	return s.refusalRepo.ListByProject(ctx, projectID)
}
