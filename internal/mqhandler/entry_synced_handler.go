package mqhandler

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/glenjamindle/solartrack-pro/internal/event"
	"github.com/glenjamindle/solartrack-pro/internal/service"
	"github.com/glenjamindle/solartrack-pro/pkg/util"
)

// EntrySyncedHandler 消费 entry.synced：新记录落库后作废该项目的预测缓存
// 幂等：同一个幂等键的事件只处理一次（Redis SetNX 去重）。
type EntrySyncedHandler struct {
	forecastService *service.ForecastService
	deduper         *util.Deduper
	logger          *zap.Logger
}

func NewEntrySyncedHandler(forecastService *service.ForecastService, deduper *util.Deduper, logger *zap.Logger) *EntrySyncedHandler {
	return &EntrySyncedHandler{
		forecastService: forecastService,
		deduper:         deduper,
		logger:          logger,
	}
}

func (h *EntrySyncedHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	var p event.EntrySyncedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.logger.Error("Failed to unmarshal EntrySyncedPayload", zap.Error(err))
		return err // 交给 Consumer 的重试/DLQ 机制处理
	}

	h.logger.Info("Handling entry.synced event",
		zap.Int("entry_id", p.EntryID),
		zap.Int("project_id", p.ProjectID),
		zap.String("source", p.Source),
	)

	if p.ProjectID <= 0 {
		h.logger.Error("Invalid project_id in entry.synced event",
			zap.Int("project_id", p.ProjectID),
			zap.Int("entry_id", p.EntryID),
		)
		return fmt.Errorf("invalid project_id: %d (must be > 0)", p.ProjectID)
	}

	if !h.deduper.AcquireOnce(ctx, "entry_synced", p.IdempotencyKey) {
		h.logger.Info("Duplicate entry.synced event skipped",
			zap.Int("entry_id", p.EntryID),
			zap.String("idempotency_key", p.IdempotencyKey),
		)
		return nil
	}

	if err := h.forecastService.InvalidateCache(ctx, p.ProjectID); err != nil {
		isRetryable, errType := util.IsRetryableError(err)
		h.logger.Error("Failed to invalidate forecast cache",
			zap.Int("project_id", p.ProjectID),
			zap.String("error_type", errType),
			zap.Bool("retryable", isRetryable),
			zap.Error(err),
		)
		if !isRetryable {
			return nil
		}
		return err
	}

	h.logger.Info("Forecast cache invalidated",
		zap.Int("project_id", p.ProjectID),
		zap.Int("entry_id", p.EntryID),
	)

	// 顺手预热：失败只记日志，下次 API 请求会重算
	if _, err := h.forecastService.Forecast(ctx, p.ProjectID, p.UserID); err != nil {
		h.logger.Warn("Forecast warm recompute failed",
			zap.Int("project_id", p.ProjectID),
			zap.Error(err),
		)
	}

	return nil
}
