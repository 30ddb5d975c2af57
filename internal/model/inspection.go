package model

import "time"

const (
	InspectionCategoryPile        = "pile"
	InspectionCategoryRacking     = "racking"
	InspectionCategoryModule      = "module"
	InspectionCategoryRemediation = "remediation"

	InspectionResultPass = "pass"
	InspectionResultFail = "fail"
)

// Inspection 质检记录
type Inspection struct {
	ID        int       `json:"id"`
	ProjectID int       `json:"project_id"`
	Category  string    `json:"category"` // pile / racking / module / remediation
	Result    string    `json:"result"`   // pass / fail
	Notes     string    `json:"notes"`
	Date      time.Time `json:"date"`
	CreatedAt time.Time `json:"created_at"`
}
