package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/glenjamindle/solartrack-pro/pkg/outbox"
)

// AdminHandler outbox 事件的人工运维接口，仅管理员可用
type AdminHandler struct {
	outboxRepo    *outbox.Repository
	replayService *outbox.ReplayService
	logger        *zap.Logger
}

func NewAdminHandler(outboxRepo *outbox.Repository, replayService *outbox.ReplayService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		outboxRepo:    outboxRepo,
		replayService: replayService,
		logger:        logger,
	}
}

// ListFailedEvents handles GET /admin/outbox/failed
func (h *AdminHandler) ListFailedEvents(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}

	events, err := h.outboxRepo.GetFailedEvents(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("ListFailedEvents: failed to fetch events", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch events"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": events})
}

// ReplayEvent handles POST /admin/outbox/:event_id/replay
func (h *AdminHandler) ReplayEvent(c *gin.Context) {
	eventID, err := strconv.ParseInt(c.Param("event_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}

	if err := h.replayService.ReplayEvent(c.Request.Context(), eventID); err != nil {
		h.logger.Error("ReplayEvent: replay failed",
			zap.Int64("event_id", eventID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "replay failed"})
		return
	}

	h.logger.Info("Outbox event replayed",
		zap.Int64("event_id", eventID),
		zap.Int("user_id", c.GetInt("user_id")),
	)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ReplayFailedEvents handles POST /admin/outbox/replay-failed
func (h *AdminHandler) ReplayFailedEvents(c *gin.Context) {
	limit := 100
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}

	replayed, err := h.replayService.ReplayFailedEvents(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("ReplayFailedEvents: replay failed",
			zap.Int("replayed", replayed),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":    "replay failed partway",
			"replayed": replayed,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"replayed": replayed})
}
