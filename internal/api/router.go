package api

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/glenjamindle/solartrack-pro/pkg/rbac"
)

type Router struct {
	Engine *gin.Engine
}

func NewRouter(
	authHandler *AuthHandler,
	projectHandler *ProjectHandler,
	entryHandler *EntryHandler,
	forecastHandler *ForecastHandler,
	inspectionHandler *InspectionHandler,
	refusalHandler *RefusalHandler,
	adminHandler *AdminHandler,
	jwtSecret string,
	logger *zap.Logger,
	db *pgxpool.Pool,
) *Router {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(TraceMiddleware())
	r.Use(RequestLogMiddleware(logger))

	// Health endpoints (放在最前面)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(200)
	})

	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c, 1*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			c.JSON(500, gin.H{"status": "db_not_ready", "error": err.Error()})
			return
		}

		c.JSON(200, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public
	r.POST("/register", authHandler.Register)
	r.POST("/login", authHandler.Login)

	// Protected
	auth := r.Group("/")
	auth.Use(AuthMiddleware(jwtSecret))
	{
		auth.POST("/projects", projectHandler.CreateProject)
		auth.GET("/projects", projectHandler.ListProjects)
		auth.GET("/projects/:id", projectHandler.GetProject)
		auth.PUT("/projects/:id/plan", RequirePermission(rbac.PermissionEditPlan), projectHandler.UpdatePlan)
		auth.DELETE("/projects/:id", RequirePermission(rbac.PermissionDeleteProject), projectHandler.DeleteProject)

		auth.POST("/projects/:id/entries", RequirePermission(rbac.PermissionCreateEntry), entryHandler.CreateEntry)
		auth.POST("/projects/:id/entries/sync", RequirePermission(rbac.PermissionSyncEntries), entryHandler.SyncEntries)
		auth.GET("/projects/:id/entries", entryHandler.ListEntries)

		auth.GET("/projects/:id/forecast", forecastHandler.GetForecast)
		auth.GET("/projects/:id/percent-complete", forecastHandler.GetPercentComplete)
		auth.GET("/projects/:id/stats", forecastHandler.GetProductionStats)
		auth.GET("/projects/:id/report", forecastHandler.DownloadReport)

		auth.POST("/projects/:id/inspections", RequirePermission(rbac.PermissionRecordInspection), inspectionHandler.CreateInspection)
		auth.GET("/projects/:id/inspections", inspectionHandler.ListInspections)

		auth.POST("/projects/:id/refusals", RequirePermission(rbac.PermissionFlagRefusal), refusalHandler.FlagRefusal)
		auth.GET("/projects/:id/refusals", refusalHandler.ListRefusals)

		admin := auth.Group("/admin")
		admin.Use(RequirePermission(rbac.PermissionReplayEvents))
		{
			admin.GET("/outbox/failed", adminHandler.ListFailedEvents)
			admin.POST("/outbox/:event_id/replay", adminHandler.ReplayEvent)
			admin.POST("/outbox/replay-failed", adminHandler.ReplayFailedEvents)
		}
	}

	return &Router{Engine: r}
}

func (r *Router) Run(port string) error {
	return r.Engine.Run(port)
}
