package service

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/glenjamindle/solartrack-pro/internal/forecast"
	"github.com/glenjamindle/solartrack-pro/internal/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestWriteProgressCSV(t *testing.T) {
	project := &model.Project{
		ID:                 1,
		Name:               "Sunfield Phase 2",
		TotalPiles:         100,
		TotalRackingTables: 50,
		TotalModules:       1000,
		PlannedStartDate:   date(2024, time.January, 1),
		PlannedEndDate:     date(2024, time.January, 11),
	}

	entries := []model.ProductionEntry{
		{ID: 1, ProjectID: 1, Crew: "crew-a", Date: date(2024, time.January, 2), Piles: 20, RackingTables: 10, Modules: 200, IdempotencyKey: "k1"},
		{ID: 2, ProjectID: 1, Crew: "crew-b", Date: date(2024, time.January, 3), Piles: 30, RackingTables: 15, Modules: 300, IdempotencyKey: "k2"},
	}

	today := date(2024, time.January, 3)
	plan := PlanFromProject(project)
	engineEntries := EntriesFromModels(entries)
	res := forecast.Calculate(plan, engineEntries, today)
	pct := forecast.PercentComplete(plan, engineEntries)

	var buf bytes.Buffer
	if err := WriteProgressCSV(&buf, project, entries, res, pct); err != nil {
		t.Fatalf("WriteProgressCSV returned error: %v", err)
	}

	reader := csv.NewReader(&buf)
	reader.FieldsPerRecord = -1 // 各段字段数不同
	rows, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("failed to parse generated CSV: %v", err)
	}

	// 11 summary rows + curve header + 3 curve rows + entry header + 2 entries
	if len(rows) != 18 {
		t.Fatalf("expected 18 rows, got %d", len(rows))
	}

	if rows[0][0] != "project" || rows[0][1] != "Sunfield Phase 2" {
		t.Errorf("unexpected project row: %v", rows[0])
	}

	assertSummary := func(key, want string) {
		t.Helper()
		for _, row := range rows[:11] {
			if row[0] == key {
				if row[1] != want {
					t.Errorf("summary %s = %s, want %s", key, row[1], want)
				}
				return
			}
		}
		t.Errorf("summary row %s missing", key)
	}

	assertSummary("percent_piles", "50.0")
	assertSummary("percent_racking", "50.0")
	assertSummary("percent_modules", "50.0")
	assertSummary("percent_overall", "50.0")
	assertSummary("remaining_modules", "500")
	assertSummary("schedule_health", "green")

	if rows[11][0] != "date" || rows[11][1] != "planned_pct" {
		t.Errorf("unexpected curve header: %v", rows[11])
	}
	// curve covers Jan 1..Jan 3
	if rows[12][0] != "2024-01-01" || rows[14][0] != "2024-01-03" {
		t.Errorf("unexpected curve date range: first=%v last=%v", rows[12], rows[14])
	}

	if rows[15][0] != "date" || rows[15][2] != "piles" {
		t.Errorf("unexpected entry header: %v", rows[15])
	}
	if rows[16][1] != "crew-a" || rows[16][4] != "200" {
		t.Errorf("unexpected first entry row: %v", rows[16])
	}
}

func TestWriteProgressCSVNoProjection(t *testing.T) {
	project := &model.Project{
		ID:               2,
		Name:             "Empty Site",
		TotalModules:     1000,
		PlannedStartDate: date(2024, time.March, 1),
		PlannedEndDate:   date(2024, time.March, 31),
	}

	plan := PlanFromProject(project)
	res := forecast.Calculate(plan, nil, date(2024, time.March, 5))
	pct := forecast.PercentComplete(plan, nil)

	var buf bytes.Buffer
	if err := WriteProgressCSV(&buf, project, nil, res, pct); err != nil {
		t.Fatalf("WriteProgressCSV returned error: %v", err)
	}

	reader := csv.NewReader(&buf)
	reader.FieldsPerRecord = -1 // 各段字段数不同
	rows, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("failed to parse generated CSV: %v", err)
	}

	for _, row := range rows[:11] {
		if row[0] == "projected_completion" {
			if row[1] != "" {
				t.Errorf("projected_completion = %q, want empty", row[1])
			}
			return
		}
	}
	t.Error("projected_completion row missing")
}
