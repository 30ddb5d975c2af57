package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/glenjamindle/solartrack-pro/internal/event"
	"github.com/glenjamindle/solartrack-pro/internal/model"
	"github.com/glenjamindle/solartrack-pro/internal/repository"
	"github.com/glenjamindle/solartrack-pro/pkg/metrics"
	"github.com/glenjamindle/solartrack-pro/pkg/outbox"
	"github.com/glenjamindle/solartrack-pro/pkg/trace"
)

const aggregateTypeEntry = "production_entry"

// SyncResult 一次批量同步的结果
type SyncResult struct {
	Synced     int `json:"synced"`
	Duplicates int `json:"duplicates"`
}

// EntryService 负责生产记录的写入
// 每条记录与其 entry.synced 事件在同一事务中落库（outbox 模式），
// 离线队列的回放按客户端幂等键去重。
type EntryService struct {
	entryRepo  *repository.EntryRepository
	outboxRepo *outbox.Repository
	logger     *zap.Logger
}

func NewEntryService(entryRepo *repository.EntryRepository, outboxRepo *outbox.Repository, logger *zap.Logger) *EntryService {
	return &EntryService{
		entryRepo:  entryRepo,
		outboxRepo: outboxRepo,
		logger:     logger,
	}
}

// Create inserts a production entry and queues its entry.synced event.
// Returns false when the idempotency key has already been synced.
func (s *EntryService) Create(ctx context.Context, userID int, e *model.ProductionEntry) (bool, error) {
	inserted, err := s.createOne(ctx, userID, e, "api")
	if err != nil {
		return false, err
	}
	if inserted {
		metrics.IncrementEntriesSynced("api", 1)
	}
	return inserted, nil
}

// SyncBatch replays a client's queued offline mutations in order. Each
// mutation commits independently so a mid-batch failure keeps earlier
// progress; duplicates are counted, not errors.
func (s *EntryService) SyncBatch(ctx context.Context, userID int, entries []model.ProductionEntry) (SyncResult, error) {
	var res SyncResult
	for i := range entries {
		inserted, err := s.createOne(ctx, userID, &entries[i], "batch_replay")
		if err != nil {
			return res, fmt.Errorf("sync stopped at mutation %d: %w", i, err)
		}
		if inserted {
			res.Synced++
		} else {
			res.Duplicates++
		}
	}

	if res.Synced > 0 {
		metrics.IncrementEntriesSynced("batch_replay", res.Synced)
	}

	s.logger.Info("Offline mutations replayed",
		zap.Int("user_id", userID),
		zap.Int("synced", res.Synced),
		zap.Int("duplicates", res.Duplicates),
	)

	return res, nil
}

func (s *EntryService) createOne(ctx context.Context, userID int, e *model.ProductionEntry, source string) (bool, error) {
	tx, err := s.entryRepo.Pool().Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	inserted, err := s.entryRepo.CreateInTx(ctx, tx, e)
	if err != nil {
		return false, fmt.Errorf("failed to insert entry: %w", err)
	}

	if inserted {
		entryID := int64(e.ID)
		payload := event.EntrySyncedPayload{
			EntryID:        e.ID,
			ProjectID:      e.ProjectID,
			UserID:         userID,
			IdempotencyKey: e.IdempotencyKey,
			Source:         source,
			TraceID:        trace.FromContext(ctx),
		}
		if err := outbox.InsertEventInTx(ctx, tx, s.outboxRepo, aggregateTypeEntry, &entryID, event.RoutingKeyEntrySynced, payload); err != nil {
			return false, fmt.Errorf("failed to queue entry.synced: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit: %w", err)
	}

	return inserted, nil
}
