// Package forecast computes schedule forecasts and progress aggregates for a
// solar-farm construction project. It is a pure calculator: callers supply the
// project plan, the production entries and the reference date ("today"), and
// get derived data back. No I/O, no clock reads, safe for concurrent use.
package forecast

import (
	"math"
	"sort"
	"time"
)

// Overall progress weights. Module installation is the dominant cost driver,
// so it carries most of the weight. The trio must sum to 1.0.
const (
	WeightPiles   = 0.15
	WeightRacking = 0.25
	WeightModules = 0.60
)

// Health 施工进度红绿灯
type Health string

const (
	HealthGreen  Health = "green"
	HealthYellow Health = "yellow"
	HealthRed    Health = "red"
)

// 计划外延迟超过一周判红
const yellowThresholdDays = 7

// rollingWindow is the number of most recent entries (not calendar days) used
// for the average daily production rate.
const rollingWindow = 7

const isoDate = "2006-01-02"

// Plan 项目计划（目标量与计划日期），对预测引擎只读
type Plan struct {
	TotalPiles         int
	TotalRackingTables int
	TotalModules       int

	PlannedStart time.Time
	PlannedEnd   time.Time

	// 没有实际产量数据之前的兜底日产能
	PlannedPilesPerDay   float64
	PlannedRackingPerDay float64
	PlannedModulesPerDay float64
}

// Entry 单个班组单日的生产上报
type Entry struct {
	Date          time.Time
	Piles         int
	RackingTables int
	Modules       int
}

// Totals 按类别汇总的安装量
type Totals struct {
	Piles         int `json:"piles"`
	RackingTables int `json:"racking_tables"`
	Modules       int `json:"modules"`
}

// Rates 按类别的日均产量
type Rates struct {
	Piles         float64 `json:"piles"`
	RackingTables float64 `json:"racking_tables"`
	Modules       float64 `json:"modules"`
}

// Percent 按类别的完成百分比（保留一位小数）
type Percent struct {
	Piles   float64 `json:"piles"`
	Racking float64 `json:"racking"`
	Modules float64 `json:"modules"`
	Overall float64 `json:"overall"`
}

// Result 预测结果，按需计算，不落库
type Result struct {
	Dates           []string  `json:"dates"`
	PlannedProgress []float64 `json:"planned_progress"`
	ActualProgress  []float64 `json:"actual_progress"`

	ProjectedCompletion *time.Time `json:"projected_completion"`
	DaysVariance        int        `json:"days_variance"`
	Health              Health     `json:"schedule_health"`

	Remaining    Totals `json:"remaining_work"`
	AverageDaily Rates  `json:"average_daily_production"`
}

// Period 生产统计的时间窗口
type Period string

const (
	PeriodToday Period = "today"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// Calculate computes the full schedule forecast: the planned-vs-actual progress
// curves, installed/remaining totals, the rolling average production rate, the
// projected completion date and the schedule health signal.
//
// Progress percentages are derived against the module target, which governs
// schedule extrapolation. today is truncated to calendar-day granularity.
func Calculate(plan Plan, entries []Entry, today time.Time) Result {
	start := dateOnly(plan.PlannedStart)

	totalDays := daysBetween(plan.PlannedStart, plan.PlannedEnd)
	if totalDays < 1 {
		// 计划日期倒挂时兜底为 1，避免除零
		totalDays = 1
	}

	daysElapsed := daysBetween(plan.PlannedStart, today)
	if daysElapsed < 0 {
		daysElapsed = 0
	}

	// 稳定排序：同一天多个班组的上报保持输入顺序
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return dateOnly(sorted[i].Date).Before(dateOnly(sorted[j].Date))
	})

	modulesByDate := make(map[string]int, len(sorted))
	for _, e := range sorted {
		modulesByDate[dateOnly(e.Date).Format(isoDate)] += e.Modules
	}

	curveDays := daysElapsed
	if curveDays > totalDays {
		curveDays = totalDays
	}

	res := Result{
		Dates:           make([]string, 0, curveDays+1),
		PlannedProgress: make([]float64, 0, curveDays+1),
		ActualProgress:  make([]float64, 0, curveDays+1),
	}

	cumulativeModules := 0
	for i := 0; i <= curveDays; i++ {
		day := start.AddDate(0, 0, i).Format(isoDate)
		cumulativeModules += modulesByDate[day]

		actual := 0.0
		if plan.TotalModules > 0 {
			actual = clampPercent(float64(cumulativeModules) / float64(plan.TotalModules) * 100)
		}

		res.Dates = append(res.Dates, day)
		res.ActualProgress = append(res.ActualProgress, actual)
		res.PlannedProgress = append(res.PlannedProgress, float64(i)/float64(totalDays)*100)
	}

	// 安装总量用全量数据（含窗口外、未来日期的补录），不限于曲线区间
	installed := sumTotals(entries)

	res.Remaining = Totals{
		Piles:         clampNonNegative(plan.TotalPiles - installed.Piles),
		RackingTables: clampNonNegative(plan.TotalRackingTables - installed.RackingTables),
		Modules:       clampNonNegative(plan.TotalModules - installed.Modules),
	}

	res.AverageDaily = averageDaily(plan, sorted)

	switch {
	case res.AverageDaily.Modules > 0 && res.Remaining.Modules > 0:
		daysNeeded := int(math.Ceil(float64(res.Remaining.Modules) / res.AverageDaily.Modules))
		completion := dateOnly(today).AddDate(0, 0, daysNeeded)
		res.ProjectedCompletion = &completion
		res.DaysVariance = daysBetween(plan.PlannedEnd, completion)
	case res.Remaining.Modules == 0:
		// 目标已达成：完成日就是今天（提前完成时 variance 为负）
		completion := dateOnly(today)
		res.ProjectedCompletion = &completion
		res.DaysVariance = daysBetween(plan.PlannedEnd, today)
	default:
		// 没有产能可外推，预测完成日无定义
		res.ProjectedCompletion = nil
		res.DaysVariance = 0
	}

	res.Health = classifyVariance(res.DaysVariance)

	return res
}

// PercentComplete aggregates completion percentages over the whole entry list,
// with no date framing. Each category is measured against its own target; the
// overall figure is the fixed-weight blend. Values carry one decimal place.
func PercentComplete(plan Plan, entries []Entry) Percent {
	installed := sumTotals(entries)

	piles := percentOf(installed.Piles, plan.TotalPiles)
	racking := percentOf(installed.RackingTables, plan.TotalRackingTables)
	modules := percentOf(installed.Modules, plan.TotalModules)

	return Percent{
		Piles:   round1(piles),
		Racking: round1(racking),
		Modules: round1(modules),
		Overall: round1(piles*WeightPiles + racking*WeightRacking + modules*WeightModules),
	}
}

// ProductionStats sums production over entries dated on or after the period's
// window start. There is no upper bound: future-dated entries count as long as
// they are at least as recent as the window start.
func ProductionStats(entries []Entry, period Period, today time.Time) Totals {
	windowStart := dateOnly(today)
	switch period {
	case PeriodWeek:
		windowStart = windowStart.AddDate(0, 0, -7)
	case PeriodMonth:
		windowStart = windowStart.AddDate(0, -1, 0)
	}

	var t Totals
	for _, e := range entries {
		if dateOnly(e.Date).Before(windowStart) {
			continue
		}
		t.Piles += e.Piles
		t.RackingTables += e.RackingTables
		t.Modules += e.Modules
	}
	return t
}

// averageDaily returns the mean production of the most recent entries, by
// record order rather than calendar window: sparse data can stretch the window
// past a week of wall-clock time. With no entries at all, the planned per-day
// rates stand in.
func averageDaily(plan Plan, sorted []Entry) Rates {
	if len(sorted) == 0 {
		return Rates{
			Piles:         plan.PlannedPilesPerDay,
			RackingTables: plan.PlannedRackingPerDay,
			Modules:       plan.PlannedModulesPerDay,
		}
	}

	window := sorted
	if len(window) > rollingWindow {
		window = window[len(window)-rollingWindow:]
	}

	sum := sumTotals(window)
	n := float64(len(window))

	return Rates{
		Piles:         float64(sum.Piles) / n,
		RackingTables: float64(sum.RackingTables) / n,
		Modules:       float64(sum.Modules) / n,
	}
}

func classifyVariance(daysVariance int) Health {
	switch {
	case daysVariance <= 0:
		return HealthGreen
	case daysVariance <= yellowThresholdDays:
		return HealthYellow
	default:
		return HealthRed
	}
}

func sumTotals(entries []Entry) Totals {
	var t Totals
	for _, e := range entries {
		t.Piles += e.Piles
		t.RackingTables += e.RackingTables
		t.Modules += e.Modules
	}
	return t
}

func percentOf(installed, target int) float64 {
	if target <= 0 {
		return 0
	}
	return float64(installed) / float64(target) * 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func clampNonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

// dateOnly 截断到日历日粒度，忽略时分秒
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func daysBetween(a, b time.Time) int {
	return int(dateOnly(b).Sub(dateOnly(a)) / (24 * time.Hour))
}
