package models

import "github.com/google/uuid"

const (
	CollectionStatusSuccess = "success"
	CollectionStatusPartial = "partial"
	CollectionStatusFailed  = "failed"
)

// CollectionRun logs one data-collection source execution, shown on the
// admin dashboard.
type CollectionRun struct {
	Model

	RunID  uuid.UUID `json:"run_id" gorm:"type:uuid;index"`
	Source string    `json:"source" gorm:"not null;index"`
	Status string    `json:"status" gorm:"not null"`

	ItemsCollected       int     `json:"items_collected"`
	ErrorMessage         string  `json:"error_message,omitempty"`
	ExecutionTimeSeconds float64 `json:"execution_time_seconds"`
}
