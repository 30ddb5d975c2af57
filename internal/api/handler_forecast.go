package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/glenjamindle/solartrack-pro/internal/forecast"
	"github.com/glenjamindle/solartrack-pro/internal/service"
)

// ForecastHandler 预测、完成度、产量统计与报表下载
type ForecastHandler struct {
	forecastService *service.ForecastService
	reportService   *service.ReportService
	logger          *zap.Logger
}

func NewForecastHandler(forecastService *service.ForecastService, reportService *service.ReportService, logger *zap.Logger) *ForecastHandler {
	return &ForecastHandler{
		forecastService: forecastService,
		reportService:   reportService,
		logger:          logger,
	}
}

// GetForecast handles GET /projects/:id/forecast
func (h *ForecastHandler) GetForecast(c *gin.Context) {
	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	userID := c.GetInt("user_id")
	res, err := h.forecastService.Forecast(c.Request.Context(), projectID, userID)
	if err != nil {
		h.logger.Error("GetForecast: failed to compute forecast",
			zap.Int("project_id", projectID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute forecast"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"forecast": res})
}

// GetPercentComplete handles GET /projects/:id/percent-complete
func (h *ForecastHandler) GetPercentComplete(c *gin.Context) {
	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	userID := c.GetInt("user_id")
	pct, err := h.forecastService.PercentComplete(c.Request.Context(), projectID, userID)
	if err != nil {
		h.logger.Error("GetPercentComplete: failed to compute completion",
			zap.Int("project_id", projectID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute completion"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"percent_complete": pct})
}

// GetProductionStats handles GET /projects/:id/stats?period=today|week|month
func (h *ForecastHandler) GetProductionStats(c *gin.Context) {
	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	period := forecast.Period(c.DefaultQuery("period", string(forecast.PeriodToday)))
	switch period {
	case forecast.PeriodToday, forecast.PeriodWeek, forecast.PeriodMonth:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "period must be today, week or month"})
		return
	}

	userID := c.GetInt("user_id")
	totals, err := h.forecastService.ProductionStats(c.Request.Context(), projectID, userID, period)
	if err != nil {
		h.logger.Error("GetProductionStats: failed to compute stats",
			zap.Int("project_id", projectID),
			zap.String("period", string(period)),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"period": period,
		"totals": totals,
	})
}

// DownloadReport handles GET /projects/:id/report
func (h *ForecastHandler) DownloadReport(c *gin.Context) {
	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	userID := c.GetInt("user_id")
	body, err := h.reportService.BuildProgressCSV(c.Request.Context(), projectID, userID)
	if err != nil {
		h.logger.Error("DownloadReport: failed to build report",
			zap.Int("project_id", projectID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build report"})
		return
	}

	filename := fmt.Sprintf("progress_report_%d.csv", projectID)
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "text/csv", body)
}
