package model

import "time"

const (
	RefusalStatusFlagged         = "flagged"
	RefusalStatusRemediationOpen = "remediation_open"
	RefusalStatusResolved        = "resolved"
)

// PileRefusal 桩基拒锤记录：未达设计深度的桩，需要整改
type PileRefusal struct {
	ID           int       `json:"id"`
	ProjectID    int       `json:"project_id"`
	Location     string    `json:"location"`
	TargetDepth  float64   `json:"target_depth"`
	ReachedDepth float64   `json:"reached_depth"`
	Status       string    `json:"status"` // flagged / remediation_open / resolved
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
