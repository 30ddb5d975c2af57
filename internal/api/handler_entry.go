package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/glenjamindle/solartrack-pro/internal/model"
	"github.com/glenjamindle/solartrack-pro/internal/repository"
	"github.com/glenjamindle/solartrack-pro/internal/service"
)

// EntryHandler 生产记录上报与离线批量补录
type EntryHandler struct {
	entryService *service.EntryService
	entryRepo    *repository.EntryRepository
	logger       *zap.Logger
}

func NewEntryHandler(entryService *service.EntryService, entryRepo *repository.EntryRepository, logger *zap.Logger) *EntryHandler {
	return &EntryHandler{
		entryService: entryService,
		entryRepo:    entryRepo,
		logger:       logger,
	}
}

type entryRequest struct {
	Crew           string `json:"crew"`
	Date           string `json:"date"`
	Piles          int    `json:"piles"`
	RackingTables  int    `json:"racking_tables"`
	Modules        int    `json:"modules"`
	IdempotencyKey string `json:"idempotency_key"`
}

func (req *entryRequest) toModel(projectID int) (*model.ProductionEntry, error) {
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, err
	}

	return &model.ProductionEntry{
		ProjectID:      projectID,
		Crew:           req.Crew,
		Date:           date,
		Piles:          req.Piles,
		RackingTables:  req.RackingTables,
		Modules:        req.Modules,
		IdempotencyKey: req.IdempotencyKey,
	}, nil
}

// CreateEntry handles POST /projects/:id/entries
func (h *EntryHandler) CreateEntry(c *gin.Context) {
	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	var req entryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if req.IdempotencyKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "idempotency_key required"})
		return
	}

	e, err := req.toModel(projectID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
		return
	}

	userID := c.GetInt("user_id")
	inserted, err := h.entryService.Create(c.Request.Context(), userID, e)
	if err != nil {
		h.logger.Error("CreateEntry: failed to create entry",
			zap.Int("project_id", projectID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create entry"})
		return
	}

	if !inserted {
		// 幂等键已同步过，返回成功但标记为重复
		c.JSON(http.StatusOK, gin.H{"status": "duplicate"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entry_id": e.ID,
		"status":   "synced",
	})
}

// SyncEntries handles POST /projects/:id/entries/sync
// 客户端离线队列按提交顺序重放，重复的幂等键只计数不报错。
func (h *EntryHandler) SyncEntries(c *gin.Context) {
	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	var req struct {
		Entries []entryRequest `json:"entries"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if len(req.Entries) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "entries required"})
		return
	}

	entries := make([]model.ProductionEntry, 0, len(req.Entries))
	for i := range req.Entries {
		if req.Entries[i].IdempotencyKey == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "idempotency_key required for every entry"})
			return
		}
		e, err := req.Entries[i].toModel(projectID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
			return
		}
		entries = append(entries, *e)
	}

	userID := c.GetInt("user_id")
	res, err := h.entryService.SyncBatch(c.Request.Context(), userID, entries)
	if err != nil {
		h.logger.Error("SyncEntries: batch replay failed",
			zap.Int("project_id", projectID),
			zap.Int("synced", res.Synced),
			zap.Error(err),
		)
		// 部分成功：已提交的记录不回滚，客户端按返回计数截断本地队列
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":      "sync failed partway",
			"synced":     res.Synced,
			"duplicates": res.Duplicates,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"synced":     res.Synced,
		"duplicates": res.Duplicates,
	})
}

// ListEntries handles GET /projects/:id/entries
func (h *EntryHandler) ListEntries(c *gin.Context) {
	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	entries, err := h.entryRepo.ListByProject(c.Request.Context(), projectID)
	if err != nil {
		h.logger.Error("ListEntries: failed to fetch entries",
			zap.Int("project_id", projectID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch entries"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries})
}
