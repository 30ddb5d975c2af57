// Package event defines the MQ event contracts shared by producers and consumers.
package event

// Routing keys on the site.events exchange.
const (
	RoutingKeyEntrySynced    = "entry.synced"
	RoutingKeyRefusalFlagged = "refusal.flagged"
)

// EntrySyncedPayload 生产记录落库后发布的事件
type EntrySyncedPayload struct {
	EntryID        int    `json:"entry_id"`
	ProjectID      int    `json:"project_id"`
	UserID         int    `json:"user_id"`
	IdempotencyKey string `json:"idempotency_key"`
	Source         string `json:"source"` // api / batch_replay
	TraceID        string `json:"trace_id,omitempty"`
}

// RefusalFlaggedPayload 桩基拒锤上报后发布的事件
type RefusalFlaggedPayload struct {
	RefusalID int    `json:"refusal_id"`
	ProjectID int    `json:"project_id"`
	UserID    int    `json:"user_id"`
	Location  string `json:"location"`
	TraceID   string `json:"trace_id,omitempty"`
}
