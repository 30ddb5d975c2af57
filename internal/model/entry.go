package model

import "time"

// ProductionEntry 单个班组单日的生产上报，同步后不可变
// IdempotencyKey 由客户端生成，离线补录重放时用于去重
type ProductionEntry struct {
	ID             int       `json:"id"`
	ProjectID      int       `json:"project_id"`
	Crew           string    `json:"crew"`
	Date           time.Time `json:"date"`
	Piles          int       `json:"piles"`
	RackingTables  int       `json:"racking_tables"`
	Modules        int       `json:"modules"`
	IdempotencyKey string    `json:"idempotency_key"`
	CreatedAt      time.Time `json:"created_at"`
}
