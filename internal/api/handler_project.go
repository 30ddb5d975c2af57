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

// ProjectHandler 项目计划的增删改查
// 编辑计划和删除是敏感操作，路由层挂 RequirePermission。
type ProjectHandler struct {
	projectRepo     *repository.ProjectRepository
	forecastService *service.ForecastService
	logger          *zap.Logger
}

func NewProjectHandler(projectRepo *repository.ProjectRepository, forecastService *service.ForecastService, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{
		projectRepo:     projectRepo,
		forecastService: forecastService,
		logger:          logger,
	}
}

type projectRequest struct {
	Name               string `json:"name"`
	TotalPiles         int    `json:"total_piles"`
	TotalRackingTables int    `json:"total_racking_tables"`
	TotalModules       int    `json:"total_modules"`

	PlannedStartDate string `json:"planned_start_date"`
	PlannedEndDate   string `json:"planned_end_date"`

	PlannedPilesPerDay   float64 `json:"planned_piles_per_day"`
	PlannedRackingPerDay float64 `json:"planned_racking_per_day"`
	PlannedModulesPerDay float64 `json:"planned_modules_per_day"`
}

func (req *projectRequest) toModel(userID int) (*model.Project, error) {
	start, err := time.Parse("2006-01-02", req.PlannedStartDate)
	if err != nil {
		return nil, err
	}
	end, err := time.Parse("2006-01-02", req.PlannedEndDate)
	if err != nil {
		return nil, err
	}

	return &model.Project{
		UserID:               userID,
		Name:                 req.Name,
		TotalPiles:           req.TotalPiles,
		TotalRackingTables:   req.TotalRackingTables,
		TotalModules:         req.TotalModules,
		PlannedStartDate:     start,
		PlannedEndDate:       end,
		PlannedPilesPerDay:   req.PlannedPilesPerDay,
		PlannedRackingPerDay: req.PlannedRackingPerDay,
		PlannedModulesPerDay: req.PlannedModulesPerDay,
	}, nil
}

// CreateProject handles POST /projects
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name required"})
		return
	}

	userID := c.GetInt("user_id")
	p, err := req.toModel(userID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid planned dates, expected YYYY-MM-DD"})
		return
	}

	if err := h.projectRepo.Create(c.Request.Context(), p); err != nil {
		h.logger.Error("CreateProject: failed to create project",
			zap.Int("user_id", userID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create project"})
		return
	}

	h.logger.Info("Project created",
		zap.Int("project_id", p.ID),
		zap.Int("user_id", userID),
		zap.String("name", p.Name),
	)
	c.JSON(http.StatusOK, gin.H{"project": p})
}

// ListProjects handles GET /projects
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	userID := c.GetInt("user_id")

	projects, err := h.projectRepo.ListByUser(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("ListProjects: failed to fetch projects",
			zap.Int("user_id", userID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch projects"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

// GetProject handles GET /projects/:id
func (h *ProjectHandler) GetProject(c *gin.Context) {
	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	userID := c.GetInt("user_id")
	p, err := h.projectRepo.FindByID(c.Request.Context(), projectID, userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"project": p})
}

// UpdatePlan handles PUT /projects/:id/plan
// 计划变更后预测缓存作废，下次请求重算。
func (h *ProjectHandler) UpdatePlan(c *gin.Context) {
	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	userID := c.GetInt("user_id")
	if _, err := h.projectRepo.FindByID(c.Request.Context(), projectID, userID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}

	p, err := req.toModel(userID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid planned dates, expected YYYY-MM-DD"})
		return
	}
	p.ID = projectID

	if err := h.projectRepo.UpdatePlan(c.Request.Context(), p); err != nil {
		h.logger.Error("UpdatePlan: failed to update plan",
			zap.Int("project_id", projectID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update plan"})
		return
	}

	if err := h.forecastService.InvalidateCache(c.Request.Context(), projectID); err != nil {
		h.logger.Warn("UpdatePlan: failed to invalidate forecast cache",
			zap.Int("project_id", projectID),
			zap.Error(err),
		)
	}

	h.logger.Info("Project plan updated",
		zap.Int("project_id", projectID),
		zap.Int("user_id", userID),
	)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// DeleteProject handles DELETE /projects/:id
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	userID := c.GetInt("user_id")
	if err := h.projectRepo.Delete(c.Request.Context(), projectID, userID); err != nil {
		h.logger.Error("DeleteProject: failed to delete project",
			zap.Int("project_id", projectID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete project"})
		return
	}

	if err := h.forecastService.InvalidateCache(c.Request.Context(), projectID); err != nil {
		h.logger.Warn("DeleteProject: failed to invalidate forecast cache",
			zap.Int("project_id", projectID),
			zap.Error(err),
		)
	}

	h.logger.Info("Project deleted",
		zap.Int("project_id", projectID),
		zap.Int("user_id", userID),
	)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
