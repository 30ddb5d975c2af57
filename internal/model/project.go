package model

import "time"

// Project 项目计划：目标量、计划日期与兜底日产能
// 由项目设置时创建，只有管理员显式编辑才会变更
type Project struct {
	ID     int    `json:"id"`
	UserID int    `json:"user_id"`
	Name   string `json:"name"`

	TotalPiles         int `json:"total_piles"`
	TotalRackingTables int `json:"total_racking_tables"`
	TotalModules       int `json:"total_modules"`

	PlannedStartDate time.Time `json:"planned_start_date"`
	PlannedEndDate   time.Time `json:"planned_end_date"`

	PlannedPilesPerDay   float64 `json:"planned_piles_per_day"`
	PlannedRackingPerDay float64 `json:"planned_racking_per_day"`
	PlannedModulesPerDay float64 `json:"planned_modules_per_day"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
