package models

import "time"

// TrainingPair is a question/answer pair derived from a ContentItem during a
// training run. Pairs are created in batches and never mutated afterwards.
type TrainingPair struct {
	Model

	Question string `json:"question" gorm:"not null"`
	// Answer holds a bounded excerpt of the source item's body.
	Answer string `json:"answer" gorm:"not null"`

	SourceContentID uint    `json:"source_content_id" gorm:"index"`
	QualityScore    float64 `json:"quality_score"`

	// UsedForTraining is true for every pair this system creates; pairs are
	// only ever derived as part of a training run.
	UsedForTraining bool `json:"used_for_training" gorm:"not null"`
}

// ModelMetricsSnapshot records the fabricated performance numbers produced at
// the end of a training run. Append-only, one row per run.
type ModelMetricsSnapshot struct {
	Model

	VersionLabel        string    `json:"version_label" gorm:"uniqueIndex;not null"`
	AccuracyScore       float64   `json:"accuracy_score" gorm:"not null"`
	LossValue           float64   `json:"loss_value" gorm:"not null"`
	TrainingSampleCount int       `json:"training_sample_count" gorm:"not null"`
	EvaluationTimestamp time.Time `json:"evaluation_timestamp"`
}
