package models

// QueryRecord logs a single user interaction with the chat endpoint.
// UserRating is the only field mutated after creation, set by the rating
// endpoint. Later ratings overwrite earlier ones.
type QueryRecord struct {
	Model

	Question string `json:"question" gorm:"not null"`
	Answer   string `json:"answer" gorm:"not null"`

	ResponseTimeSeconds float64 `json:"response_time_seconds"`

	// UserRating is 1-5 when set.
	UserRating *int `json:"user_rating,omitempty"`
}
