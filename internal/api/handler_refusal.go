package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/glenjamindle/solartrack-pro/internal/model"
	"github.com/glenjamindle/solartrack-pro/internal/service"
)

// RefusalHandler 桩基拒锤上报与查询
type RefusalHandler struct {
	refusalService *service.RefusalService
	logger         *zap.Logger
}

func NewRefusalHandler(refusalService *service.RefusalService, logger *zap.Logger) *RefusalHandler {
	return &RefusalHandler{
		refusalService: refusalService,
		logger:         logger,
	}
}

// FlagRefusal handles POST /projects/:id/refusals
func (h *RefusalHandler) FlagRefusal(c *gin.Context) {
	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	var req struct {
		Location     string  `json:"location"`
		TargetDepth  float64 `json:"target_depth"`
		ReachedDepth float64 `json:"reached_depth"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if req.Location == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "location required"})
		return
	}
	if req.ReachedDepth >= req.TargetDepth {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reached depth must be below target depth"})
		return
	}

	ref := &model.PileRefusal{
		ProjectID:    projectID,
		Location:     req.Location,
		TargetDepth:  req.TargetDepth,
		ReachedDepth: req.ReachedDepth,
		Status:       model.RefusalStatusFlagged,
	}

	userID := c.GetInt("user_id")
	if err := h.refusalService.Flag(c.Request.Context(), userID, ref); err != nil {
		h.logger.Error("FlagRefusal: failed to flag refusal",
			zap.Int("project_id", projectID),
			zap.String("location", req.Location),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to flag refusal"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"refusal": ref})
}

// ListRefusals handles GET /projects/:id/refusals
func (h *RefusalHandler) ListRefusals(c *gin.Context) {
	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	refusals, err := h.refusalService.List(c.Request.Context(), projectID)
	if err != nil {
		h.logger.Error("ListRefusals: failed to fetch refusals",
			zap.Int("project_id", projectID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch refusals"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"refusals": refusals})
}
