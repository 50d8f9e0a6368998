package dataloader

import (
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/simsonbaroi/OrionAiTesting/pkg/db"
	"github.com/simsonbaroi/OrionAiTesting/pkg/db/models"
)

// RecordRun writes the bookkeeping row for one source execution. Status is
// derived from what the loader managed to do: failed when it produced nothing
// but errors, partial when it produced items alongside errors.
func RecordRun(dbc *db.DB, runID uuid.UUID, source string, itemsCollected int, loadErrors []error, elapsed time.Duration) {
	status := models.CollectionStatusSuccess
	if len(loadErrors) > 0 {
		status = models.CollectionStatusPartial
		if itemsCollected == 0 {
			status = models.CollectionStatusFailed
		}
	}

	messages := make([]string, 0, len(loadErrors))
	for _, err := range loadErrors {
		messages = append(messages, err.Error())
	}

	run := models.CollectionRun{
		RunID:                runID,
		Source:               source,
		Status:               status,
		ItemsCollected:       itemsCollected,
		ErrorMessage:         strings.Join(messages, "; "),
		ExecutionTimeSeconds: elapsed.Seconds(),
	}
	if err := dbc.DB.Create(&run).Error; err != nil {
		log.WithError(err).Errorf("could not record collection run for source %q", source)
	}
}
