package mqhandler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/glenjamindle/solartrack-pro/internal/event"
	"github.com/glenjamindle/solartrack-pro/internal/model"
	"github.com/glenjamindle/solartrack-pro/internal/repository"
	"github.com/glenjamindle/solartrack-pro/pkg/util"
)

const maxRemediationRetries int64 = 5

// RefusalFlaggedHandler 消费 refusal.flagged：自动开一条整改质检项
// 幂等靠查库：同一项目同一桩位已有整改项就跳过，重投不会开重复单。
type RefusalFlaggedHandler struct {
	inspectionRepo *repository.InspectionRepository
	refusalRepo    *repository.RefusalRepository
	retryCounter   *util.RetryCounter
	logger         *zap.Logger
}

func NewRefusalFlaggedHandler(
	inspectionRepo *repository.InspectionRepository,
	refusalRepo *repository.RefusalRepository,
	retryCounter *util.RetryCounter,
	logger *zap.Logger,
) *RefusalFlaggedHandler {
	return &RefusalFlaggedHandler{
		inspectionRepo: inspectionRepo,
		refusalRepo:    refusalRepo,
		retryCounter:   retryCounter,
		logger:         logger,
	}
}

func (h *RefusalFlaggedHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	var p event.RefusalFlaggedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.logger.Error("Failed to unmarshal RefusalFlaggedPayload", zap.Error(err))
		return err // 交给 Consumer 的重试/DLQ 机制处理
	}

	h.logger.Info("Handling refusal.flagged event",
		zap.Int("refusal_id", p.RefusalID),
		zap.Int("project_id", p.ProjectID),
		zap.String("location", p.Location),
	)

	if p.RefusalID <= 0 {
		h.logger.Error("Invalid refusal_id in refusal.flagged event",
			zap.Int("refusal_id", p.RefusalID),
		)
		return fmt.Errorf("invalid refusal_id: %d (must be > 0)", p.RefusalID)
	}

	exists, err := h.inspectionRepo.ExistsRemediationForRefusal(ctx, p.ProjectID, p.Location)
	if err != nil {
		return h.classifyAndMaybeRetry(ctx, &p, "check existing remediation", err)
	}
	if exists {
		h.logger.Info("Remediation already open, skipping",
			zap.Int("refusal_id", p.RefusalID),
			zap.String("location", p.Location),
		)
		return nil
	}

	ins := &model.Inspection{
		ProjectID: p.ProjectID,
		Category:  model.InspectionCategoryRemediation,
		Result:    model.InspectionResultFail,
		Notes:     fmt.Sprintf("pile refusal at %s, remediation required", p.Location),
		Date:      time.Now(),
	}
	if err := h.inspectionRepo.Create(ctx, ins); err != nil {
		return h.classifyAndMaybeRetry(ctx, &p, "create remediation inspection", err)
	}

	if err := h.refusalRepo.UpdateStatus(ctx, p.RefusalID, model.RefusalStatusRemediationOpen); err != nil {
		return h.classifyAndMaybeRetry(ctx, &p, "update refusal status", err)
	}

	h.logger.Info("Remediation inspection opened",
		zap.Int("refusal_id", p.RefusalID),
		zap.Int("inspection_id", ins.ID),
		zap.String("location", p.Location),
	)
	return nil
}

// classifyAndMaybeRetry 不可重试的错误直接 ack 掉，可重试的在次数内 nack 重投
func (h *RefusalFlaggedHandler) classifyAndMaybeRetry(ctx context.Context, p *event.RefusalFlaggedPayload, stage string, err error) error {
	isRetryable, errType := util.IsRetryableError(err)
	h.logger.Error("Failed to "+stage,
		zap.Int("refusal_id", p.RefusalID),
		zap.String("error_type", errType),
		zap.Bool("retryable", isRetryable),
		zap.Error(err),
	)

	if !isRetryable {
		return nil
	}

	retryKey := util.FormatRetryKey("refusal_flagged", fmt.Sprintf("%d", p.RefusalID))
	retryCount, rerr := h.retryCounter.IncrementAndGet(ctx, retryKey)
	if rerr != nil {
		// Redis 错误不影响处理，继续执行
		h.logger.Warn("Failed to get retry count, continuing anyway",
			zap.Int("refusal_id", p.RefusalID),
			zap.Error(rerr),
		)
		retryCount = 1
	}

	if !util.ShouldRetry(retryCount, maxRemediationRetries, isRetryable) {
		h.logger.Error("Max retries exceeded, dropping refusal.flagged event",
			zap.Int("refusal_id", p.RefusalID),
			zap.Int64("retry_count", retryCount),
		)
		return nil
	}

	return err
}
