package forecast

import (
	"reflect"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testPlan() Plan {
	return Plan{
		TotalPiles:           2000,
		TotalRackingTables:   500,
		TotalModules:         1000,
		PlannedStart:         date(2024, 1, 1),
		PlannedEnd:           date(2024, 1, 11),
		PlannedPilesPerDay:   50,
		PlannedRackingPerDay: 10,
		PlannedModulesPerDay: 100,
	}
}

func TestCalculateOnSchedule(t *testing.T) {
	plan := testPlan()
	entries := []Entry{
		{Date: date(2024, 1, 6), Piles: 100, RackingTables: 20, Modules: 500},
	}
	today := date(2024, 1, 6)

	res := Calculate(plan, entries, today)

	// daysElapsed=5, so the curve holds day offsets 0..5
	if len(res.Dates) != 6 {
		t.Fatalf("expected 6 curve points, got %d", len(res.Dates))
	}
	if res.Dates[0] != "2024-01-01" || res.Dates[5] != "2024-01-06" {
		t.Errorf("unexpected date range: %s .. %s", res.Dates[0], res.Dates[5])
	}
	if res.ActualProgress[5] != 50.0 {
		t.Errorf("actual progress at day 5 = %v, want 50.0", res.ActualProgress[5])
	}
	if res.PlannedProgress[5] != 50.0 {
		t.Errorf("planned progress at day 5 = %v, want 50.0", res.PlannedProgress[5])
	}
	if res.PlannedProgress[0] != 0 {
		t.Errorf("planned progress at day 0 = %v, want 0", res.PlannedProgress[0])
	}

	if res.Remaining.Modules != 500 {
		t.Errorf("remaining modules = %d, want 500", res.Remaining.Modules)
	}

	// Single entry of 500 modules/day clears the remaining 500 in one day.
	if res.ProjectedCompletion == nil {
		t.Fatal("expected a projected completion date")
	}
	if got := res.ProjectedCompletion.Format("2006-01-02"); got != "2024-01-07" {
		t.Errorf("projected completion = %s, want 2024-01-07", got)
	}
	if res.DaysVariance > 0 {
		t.Errorf("days variance = %d, want <= 0", res.DaysVariance)
	}
	if res.Health != HealthGreen {
		t.Errorf("health = %s, want green", res.Health)
	}
}

func TestCalculateBehindSchedule(t *testing.T) {
	plan := testPlan()

	// Only 100 of 1000 modules by day 8 of 10.
	var entries []Entry
	daily := []int{10, 10, 10, 15, 15, 10, 15, 15}
	for i, m := range daily {
		entries = append(entries, Entry{Date: date(2024, 1, 1+i), Modules: m})
	}
	today := date(2024, 1, 9)

	res := Calculate(plan, entries, today)

	if res.Remaining.Modules != 900 {
		t.Fatalf("remaining modules = %d, want 900", res.Remaining.Modules)
	}
	if res.ProjectedCompletion == nil {
		t.Fatal("expected a projected completion date")
	}
	if !res.ProjectedCompletion.After(plan.PlannedEnd) {
		t.Errorf("projected completion %s should be after planned end", res.ProjectedCompletion)
	}
	if res.DaysVariance <= 7 {
		t.Errorf("days variance = %d, want > 7", res.DaysVariance)
	}
	if res.Health != HealthRed {
		t.Errorf("health = %s, want red", res.Health)
	}
}

func TestCalculateNoEntriesFallsBackToPlannedRates(t *testing.T) {
	plan := testPlan()
	today := date(2024, 1, 3)

	res := Calculate(plan, nil, today)

	want := Rates{Piles: 50, RackingTables: 10, Modules: 100}
	if res.AverageDaily != want {
		t.Errorf("average daily = %+v, want %+v", res.AverageDaily, want)
	}
	if res.Remaining.Piles != 2000 || res.Remaining.RackingTables != 500 || res.Remaining.Modules != 1000 {
		t.Errorf("remaining = %+v, want full targets", res.Remaining)
	}

	// Projection comes from the planned rate: 1000 modules / 100 per day.
	if res.ProjectedCompletion == nil {
		t.Fatal("projection must not be nil when planned rates are nonzero")
	}
	if got := res.ProjectedCompletion.Format("2006-01-02"); got != "2024-01-13" {
		t.Errorf("projected completion = %s, want 2024-01-13", got)
	}
}

func TestCalculateNoRateAndWorkRemaining(t *testing.T) {
	plan := testPlan()
	plan.PlannedModulesPerDay = 0

	res := Calculate(plan, nil, date(2024, 1, 3))

	if res.ProjectedCompletion != nil {
		t.Errorf("projected completion = %v, want nil", res.ProjectedCompletion)
	}
	if res.DaysVariance != 0 {
		t.Errorf("days variance = %d, want 0", res.DaysVariance)
	}
}

func TestCalculateTargetAlreadyMet(t *testing.T) {
	plan := testPlan()
	entries := []Entry{{Date: date(2024, 1, 2), Modules: 1200}}
	today := date(2024, 1, 5)

	res := Calculate(plan, entries, today)

	if res.Remaining.Modules != 0 {
		t.Fatalf("remaining modules = %d, want 0 (clamped)", res.Remaining.Modules)
	}
	if res.ProjectedCompletion == nil || !res.ProjectedCompletion.Equal(date(2024, 1, 5)) {
		t.Errorf("projected completion = %v, want today", res.ProjectedCompletion)
	}
	// Finished six days before the planned end.
	if res.DaysVariance != -6 {
		t.Errorf("days variance = %d, want -6", res.DaysVariance)
	}
	if res.Health != HealthGreen {
		t.Errorf("health = %s, want green", res.Health)
	}
	// Over-production clamps the cumulative curve at 100.
	last := res.ActualProgress[len(res.ActualProgress)-1]
	if last != 100 {
		t.Errorf("actual progress clamps at %v, want 100", last)
	}
}

func TestCalculateZeroModuleTarget(t *testing.T) {
	plan := testPlan()
	plan.TotalModules = 0
	entries := []Entry{{Date: date(2024, 1, 2), Modules: 50}}

	res := Calculate(plan, entries, date(2024, 1, 4))

	for i, p := range res.ActualProgress {
		if p != 0 {
			t.Errorf("actual progress[%d] = %v, want 0 with zero target", i, p)
		}
	}
}

func TestCalculatePlannedCurveEndpoints(t *testing.T) {
	plan := testPlan()
	// Evaluated past the planned end: the curve is capped at totalDays.
	res := Calculate(plan, nil, date(2024, 2, 1))

	if res.PlannedProgress[0] != 0 {
		t.Errorf("planned[0] = %v, want 0", res.PlannedProgress[0])
	}
	last := res.PlannedProgress[len(res.PlannedProgress)-1]
	if last != 100 {
		t.Errorf("planned[totalDays] = %v, want 100", last)
	}
	if len(res.PlannedProgress) != 11 {
		t.Errorf("curve length = %d, want totalDays+1 = 11", len(res.PlannedProgress))
	}
}

func TestCalculateInvertedPlanDates(t *testing.T) {
	plan := testPlan()
	plan.PlannedStart = date(2024, 1, 11)
	plan.PlannedEnd = date(2024, 1, 1)

	// totalDays floors to 1 instead of going negative.
	res := Calculate(plan, nil, date(2024, 1, 20))
	if len(res.PlannedProgress) != 2 {
		t.Fatalf("curve length = %d, want 2", len(res.PlannedProgress))
	}
	if res.PlannedProgress[1] != 100 {
		t.Errorf("planned[1] = %v, want 100", res.PlannedProgress[1])
	}
}

func TestCalculateBeforePlannedStart(t *testing.T) {
	plan := testPlan()
	res := Calculate(plan, nil, date(2023, 12, 20))

	// daysElapsed clamps to 0: a single day-zero point.
	if len(res.Dates) != 1 {
		t.Fatalf("curve length = %d, want 1", len(res.Dates))
	}
	if res.Dates[0] != "2024-01-01" {
		t.Errorf("dates[0] = %s, want 2024-01-01", res.Dates[0])
	}
}

func TestCalculateAggregatesMultipleCrewsPerDay(t *testing.T) {
	plan := testPlan()
	entries := []Entry{
		{Date: date(2024, 1, 2), Modules: 30},
		{Date: date(2024, 1, 2), Modules: 70},
	}

	res := Calculate(plan, entries, date(2024, 1, 2))

	if res.ActualProgress[1] != 10.0 {
		t.Errorf("actual[1] = %v, want 10.0 (both crews summed)", res.ActualProgress[1])
	}
}

func TestCalculateTotalsIncludeOutOfWindowEntries(t *testing.T) {
	plan := testPlan()
	entries := []Entry{
		{Date: date(2024, 1, 2), Piles: 10, Modules: 100},
		// Future-dated correction, already entered: counts toward totals
		// even though the curve never reaches it.
		{Date: date(2024, 1, 20), Piles: 5, Modules: 50},
	}

	res := Calculate(plan, entries, date(2024, 1, 3))

	if res.Remaining.Modules != 850 {
		t.Errorf("remaining modules = %d, want 850", res.Remaining.Modules)
	}
	if res.Remaining.Piles != 1985 {
		t.Errorf("remaining piles = %d, want 1985", res.Remaining.Piles)
	}
	// The curve itself stops at today.
	if res.ActualProgress[len(res.ActualProgress)-1] != 10.0 {
		t.Errorf("curve end = %v, want 10.0", res.ActualProgress[len(res.ActualProgress)-1])
	}
}

func TestCalculateRollingWindowIsLastSevenEntries(t *testing.T) {
	plan := testPlan()

	// Ten entries: the first three (rate 1/day) must fall out of the window.
	var entries []Entry
	for i := 0; i < 3; i++ {
		entries = append(entries, Entry{Date: date(2024, 1, 1+i), Modules: 1})
	}
	for i := 0; i < 7; i++ {
		entries = append(entries, Entry{Date: date(2024, 1, 4+i), Modules: 70})
	}

	res := Calculate(plan, entries, date(2024, 1, 10))

	if res.AverageDaily.Modules != 70 {
		t.Errorf("average modules/day = %v, want 70 (last 7 entries only)", res.AverageDaily.Modules)
	}
}

func TestCalculateIsIdempotent(t *testing.T) {
	plan := testPlan()
	entries := []Entry{
		{Date: date(2024, 1, 3), Piles: 40, RackingTables: 8, Modules: 90},
		{Date: date(2024, 1, 2), Piles: 35, RackingTables: 7, Modules: 80},
	}
	today := date(2024, 1, 5)

	a := Calculate(plan, entries, today)
	b := Calculate(plan, entries, today)

	if !reflect.DeepEqual(a, b) {
		t.Error("identical inputs must yield identical output")
	}
}

func TestCalculateDoesNotMutateInput(t *testing.T) {
	plan := testPlan()
	entries := []Entry{
		{Date: date(2024, 1, 3), Modules: 90},
		{Date: date(2024, 1, 2), Modules: 80},
	}

	Calculate(plan, entries, date(2024, 1, 5))

	if !entries[0].Date.Equal(date(2024, 1, 3)) {
		t.Error("input entry order must not change")
	}
}

func TestPercentComplete(t *testing.T) {
	tests := []struct {
		name    string
		plan    Plan
		entries []Entry
		want    Percent
	}{
		{
			name: "half done across the board",
			plan: Plan{TotalPiles: 100, TotalRackingTables: 100, TotalModules: 100},
			entries: []Entry{
				{Date: date(2024, 1, 2), Piles: 50, RackingTables: 50, Modules: 50},
			},
			want: Percent{Piles: 50, Racking: 50, Modules: 50, Overall: 50},
		},
		{
			name: "one decimal rounding",
			plan: Plan{TotalPiles: 3, TotalRackingTables: 3, TotalModules: 3},
			entries: []Entry{
				{Date: date(2024, 1, 2), Piles: 1, RackingTables: 1, Modules: 1},
			},
			want: Percent{Piles: 33.3, Racking: 33.3, Modules: 33.3, Overall: 33.3},
		},
		{
			name:    "zero targets never divide by zero",
			plan:    Plan{},
			entries: []Entry{{Date: date(2024, 1, 2), Piles: 10, Modules: 10}},
			want:    Percent{},
		},
		{
			name:    "no entries",
			plan:    Plan{TotalPiles: 10, TotalRackingTables: 10, TotalModules: 10},
			entries: nil,
			want:    Percent{},
		},
		{
			name: "weighting favors modules",
			plan: Plan{TotalPiles: 100, TotalRackingTables: 100, TotalModules: 100},
			entries: []Entry{
				{Date: date(2024, 1, 2), Modules: 100},
			},
			// 0*0.15 + 0*0.25 + 100*0.60
			want: Percent{Modules: 100, Overall: 60},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PercentComplete(tt.plan, tt.entries)
			if got != tt.want {
				t.Errorf("PercentComplete() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestProductionStats(t *testing.T) {
	today := date(2024, 3, 15)
	entries := []Entry{
		{Date: date(2024, 3, 15), Piles: 1, Modules: 10},  // today
		{Date: date(2024, 3, 17), Piles: 2, Modules: 20},  // future-dated, still counted
		{Date: date(2024, 3, 12), Piles: 4, Modules: 40},  // 3 days ago
		{Date: date(2024, 2, 25), Piles: 8, Modules: 80},  // ~3 weeks ago
		{Date: date(2024, 1, 10), Piles: 16, Modules: 160}, // far past
	}

	tests := []struct {
		period Period
		want   Totals
	}{
		{PeriodToday, Totals{Piles: 3, Modules: 30}},
		{PeriodWeek, Totals{Piles: 7, Modules: 70}},
		{PeriodMonth, Totals{Piles: 15, Modules: 150}},
	}

	for _, tt := range tests {
		t.Run(string(tt.period), func(t *testing.T) {
			got := ProductionStats(entries, tt.period, today)
			if got != tt.want {
				t.Errorf("ProductionStats(%s) = %+v, want %+v", tt.period, got, tt.want)
			}
		})
	}
}

func TestClassifyVariance(t *testing.T) {
	tests := []struct {
		variance int
		want     Health
	}{
		{-10, HealthGreen},
		{0, HealthGreen},
		{1, HealthYellow},
		{7, HealthYellow},
		{8, HealthRed},
		{30, HealthRed},
	}

	for _, tt := range tests {
		if got := classifyVariance(tt.variance); got != tt.want {
			t.Errorf("classifyVariance(%d) = %s, want %s", tt.variance, got, tt.want)
		}
	}
}

func TestWeightsSumToOne(t *testing.T) {
	if WeightPiles+WeightRacking+WeightModules != 1.0 {
		t.Error("progress weights must sum to 1.0")
	}
}
