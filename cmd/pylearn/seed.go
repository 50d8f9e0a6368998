package main

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/simsonbaroi/OrionAiTesting/pkg/dataloader/curatedloader"
	"github.com/simsonbaroi/OrionAiTesting/pkg/flags"
)

// NewSeedCommand migrates the schema and loads only the curated batch; a
// quick way to get a working local setup with no network access.
func NewSeedCommand() *cobra.Command {
	dbFlags := flags.NewDatabaseFlags()

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Initialize the database with the curated content batch",
		RunE: func(cmd *cobra.Command, args []string) error {
			dbc, err := dbFlags.GetDBClient()
			if err != nil {
				return errors.WithMessage(err, "could not get db client")
			}
			if err := dbc.UpdateSchema(); err != nil {
				return errors.WithMessage(err, "could not migrate schema")
			}

			loader := curatedloader.New(dbc, uuid.New())
			loader.Load()
			if loadErrs := loader.Errors(); len(loadErrs) > 0 {
				for _, loadErr := range loadErrs {
					log.WithError(loadErr).Error("error seeding curated content")
				}
				return errors.Errorf("seeding finished with %d errors", len(loadErrs))
			}

			log.Info("seeded curated content")
			return nil
		},
	}

	dbFlags.BindFlags(cmd.Flags())
	return cmd
}
