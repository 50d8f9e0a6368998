package db

import (
	log "github.com/sirupsen/logrus"

	"github.com/simsonbaroi/OrionAiTesting/pkg/db/models"
)

// UpdateSchema migrates all tables to the current model definitions. Tables
// are append-mostly so automatic migration is sufficient; there is no
// hand-written migration list yet.
func (d *DB) UpdateSchema() error {
	start := log.StandardLogger().WithField("task", "migration")
	start.Info("updating schema")

	if err := d.DB.AutoMigrate(
		&models.ContentItem{},
		&models.TrainingPair{},
		&models.QueryRecord{},
		&models.ModelMetricsSnapshot{},
		&models.CollectionRun{},
	); err != nil {
		return err
	}

	start.Info("schema update complete")
	return nil
}
