package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/glenjamindle/solartrack-pro/internal/model"
	"github.com/glenjamindle/solartrack-pro/internal/repository"
)

// InspectionHandler 质检记录
type InspectionHandler struct {
	inspectionRepo *repository.InspectionRepository
	logger         *zap.Logger
}

func NewInspectionHandler(inspectionRepo *repository.InspectionRepository, logger *zap.Logger) *InspectionHandler {
	return &InspectionHandler{
		inspectionRepo: inspectionRepo,
		logger:         logger,
	}
}

// CreateInspection handles POST /projects/:id/inspections
func (h *InspectionHandler) CreateInspection(c *gin.Context) {
	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	var req struct {
		Category string `json:"category"`
		Result   string `json:"result"`
		Notes    string `json:"notes"`
		Date     string `json:"date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	switch req.Category {
	case model.InspectionCategoryPile, model.InspectionCategoryRacking,
		model.InspectionCategoryModule, model.InspectionCategoryRemediation:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category"})
		return
	}

	if req.Result != model.InspectionResultPass && req.Result != model.InspectionResultFail {
		c.JSON(http.StatusBadRequest, gin.H{"error": "result must be pass or fail"})
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
		return
	}

	ins := &model.Inspection{
		ProjectID: projectID,
		Category:  req.Category,
		Result:    req.Result,
		Notes:     req.Notes,
		Date:      date,
	}

	if err := h.inspectionRepo.Create(c.Request.Context(), ins); err != nil {
		h.logger.Error("CreateInspection: failed to create inspection",
			zap.Int("project_id", projectID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create inspection"})
		return
	}

	h.logger.Info("Inspection recorded",
		zap.Int("inspection_id", ins.ID),
		zap.Int("project_id", projectID),
		zap.String("category", ins.Category),
		zap.String("result", ins.Result),
	)
	c.JSON(http.StatusOK, gin.H{"inspection": ins})
}

// ListInspections handles GET /projects/:id/inspections
func (h *InspectionHandler) ListInspections(c *gin.Context) {
	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	inspections, err := h.inspectionRepo.ListByProject(c.Request.Context(), projectID)
	if err != nil {
		h.logger.Error("ListInspections: failed to fetch inspections",
			zap.Int("project_id", projectID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch inspections"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"inspections": inspections})
}
