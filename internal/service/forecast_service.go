package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/glenjamindle/solartrack-pro/internal/forecast"
	"github.com/glenjamindle/solartrack-pro/internal/model"
	"github.com/glenjamindle/solartrack-pro/internal/repository"
	"github.com/glenjamindle/solartrack-pro/pkg/logger"
	"github.com/glenjamindle/solartrack-pro/pkg/metrics"
)

// ForecastService 封装预测引擎：取数、调用纯计算、缓存结果
// 引擎本身无状态，缓存只是避免每次请求都全量拉取生产记录。
type ForecastService struct {
	projectRepo *repository.ProjectRepository
	entryRepo   *repository.EntryRepository
	rdb         *redis.Client
	log         *zap.Logger
	cacheTTL    time.Duration

	// now is swappable in tests; production uses time.Now.
	now func() time.Time
}

func NewForecastService(
	projectRepo *repository.ProjectRepository,
	entryRepo *repository.EntryRepository,
	rdb *redis.Client,
	log *zap.Logger,
	cacheTTL time.Duration,
) *ForecastService {
	return &ForecastService{
		projectRepo: projectRepo,
		entryRepo:   entryRepo,
		rdb:         rdb,
		log:         log,
		cacheTTL:    cacheTTL,
		now:         time.Now,
	}
}

func forecastCacheKey(projectID int) string {
	return fmt.Sprintf("forecast:%d", projectID)
}

// Forecast returns the schedule forecast for a project, served from the Redis
// cache when fresh. The cache is invalidated by the worker on entry.synced.
func (s *ForecastService) Forecast(ctx context.Context, projectID, userID int) (*forecast.Result, error) {
	started := time.Now()

	cached, err := s.rdb.Get(ctx, forecastCacheKey(projectID)).Bytes()
	if err == nil {
		var res forecast.Result
		if err := json.Unmarshal(cached, &res); err == nil {
			metrics.RecordForecastCompute("hit", time.Since(started))
			return &res, nil
		}
		// 缓存坏了就当 miss 处理
	} else if err != redis.Nil {
		logger.WithTrace(ctx, s.log).Warn("Forecast cache read failed", zap.Error(err))
	}

	plan, entries, err := s.load(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}

	res := forecast.Calculate(plan, entries, s.now())

	if body, err := json.Marshal(res); err == nil {
		if err := s.rdb.Set(ctx, forecastCacheKey(projectID), body, s.cacheTTL).Err(); err != nil {
			logger.WithTrace(ctx, s.log).Warn("Forecast cache write failed", zap.Error(err))
		}
	}

	metrics.RecordForecastCompute("miss", time.Since(started))
	return &res, nil
}

// PercentComplete returns the per-category and weighted overall completion.
func (s *ForecastService) PercentComplete(ctx context.Context, projectID, userID int) (forecast.Percent, error) {
	plan, entries, err := s.load(ctx, projectID, userID)
	if err != nil {
		return forecast.Percent{}, err
	}
	return forecast.PercentComplete(plan, entries), nil
}

// ProductionStats returns production sums for the requested period.
func (s *ForecastService) ProductionStats(ctx context.Context, projectID, userID int, period forecast.Period) (forecast.Totals, error) {
	_, entries, err := s.load(ctx, projectID, userID)
	if err != nil {
		return forecast.Totals{}, err
	}
	return forecast.ProductionStats(entries, period, s.now()), nil
}

// InvalidateCache drops the cached forecast for a project.
func (s *ForecastService) InvalidateCache(ctx context.Context, projectID int) error {
	return s.rdb.Del(ctx, forecastCacheKey(projectID)).Err()
}

// load fetches the plan and the full entry list and converts them to the
// engine's input types.
func (s *ForecastService) load(ctx context.Context, projectID, userID int) (forecast.Plan, []forecast.Entry, error) {
	project, err := s.projectRepo.FindByID(ctx, projectID, userID)
	if err != nil {
		return forecast.Plan{}, nil, fmt.Errorf("failed to load project: %w", err)
	}

	rows, err := s.entryRepo.ListByProject(ctx, projectID)
	if err != nil {
		return forecast.Plan{}, nil, fmt.Errorf("failed to load entries: %w", err)
	}

	return PlanFromProject(project), EntriesFromModels(rows), nil
}

// PlanFromProject maps the persisted project onto the engine's plan input.
func PlanFromProject(p *model.Project) forecast.Plan {
	return forecast.Plan{
		TotalPiles:           p.TotalPiles,
		TotalRackingTables:   p.TotalRackingTables,
		TotalModules:         p.TotalModules,
		PlannedStart:         p.PlannedStartDate,
		PlannedEnd:           p.PlannedEndDate,
		PlannedPilesPerDay:   p.PlannedPilesPerDay,
		PlannedRackingPerDay: p.PlannedRackingPerDay,
		PlannedModulesPerDay: p.PlannedModulesPerDay,
	}
}

// EntriesFromModels maps persisted production entries onto the engine's input.
func EntriesFromModels(rows []model.ProductionEntry) []forecast.Entry {
	entries := make([]forecast.Entry, len(rows))
	for i, r := range rows {
		entries[i] = forecast.Entry{
			Date:          r.Date,
			Piles:         r.Piles,
			RackingTables: r.RackingTables,
			Modules:       r.Modules,
		}
	}
	return entries
}
