// Package querylog records chat exchanges and user ratings.
package querylog

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/simsonbaroi/OrionAiTesting/pkg/db"
	"github.com/simsonbaroi/OrionAiTesting/pkg/db/models"
)

var (
	// ErrNotFound is returned when rating a query id that does not exist.
	ErrNotFound = errors.New("query record not found")
	// ErrInvalidRating is returned when a rating is outside 1..5.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
)

type Store struct {
	dbc *db.DB
}

func NewStore(dbc *db.DB) *Store {
	return &Store{dbc: dbc}
}

// Record persists a question/answer exchange. Callers treat failure as
// non-fatal: the answer has already been delivered to the user by the time
// this runs.
func (s *Store) Record(question, answer string, responseTimeSeconds float64) (uint, error) {
	record := models.QueryRecord{
		Question:            question,
		Answer:              answer,
		ResponseTimeSeconds: responseTimeSeconds,
	}
	if err := s.dbc.DB.Create(&record).Error; err != nil {
		return 0, errors.Wrap(err, "could not store query record")
	}
	return record.ID, nil
}

// Rate sets the user rating on an existing query record. Repeated calls
// overwrite the previous rating.
func (s *Store) Rate(id uint, rating int) error {
	if rating < 1 || rating > 5 {
		return ErrInvalidRating
	}

	var record models.QueryRecord
	if err := s.dbc.DB.First(&record, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return errors.Wrap(err, "could not look up query record")
	}

	record.UserRating = &rating
	if err := s.dbc.DB.Save(&record).Error; err != nil {
		return errors.Wrap(err, "could not save rating")
	}
	return nil
}

// Get returns a single query record by id.
func (s *Store) Get(id uint) (*models.QueryRecord, error) {
	var record models.QueryRecord
	if err := s.dbc.DB.First(&record, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}
