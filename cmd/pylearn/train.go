package main

import (
	"context"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/simsonbaroi/OrionAiTesting/pkg/flags"
	"github.com/simsonbaroi/OrionAiTesting/pkg/trainer"
)

type TrainFlags struct {
	MinContentItems int

	DBFlags *flags.DatabaseFlags
}

func NewTrainFlags() *TrainFlags {
	return &TrainFlags{
		DBFlags: flags.NewDatabaseFlags(),
	}
}

func (f *TrainFlags) BindFlags(flagSet *pflag.FlagSet) {
	f.DBFlags.BindFlags(flagSet)
	flagSet.IntVar(&f.MinContentItems, "min-content-items", 0,
		"Override the minimum number of content items required to train")
}

func NewTrainCommand() *cobra.Command {
	f := NewTrainFlags()

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Run a simulated training pass over the knowledge base",
		RunE: func(cmd *cobra.Command, args []string) error {
			dbc, err := f.DBFlags.GetDBClient()
			if err != nil {
				return errors.WithMessage(err, "could not get db client")
			}

			t := trainer.New(dbc)
			if f.MinContentItems > 0 {
				t.MinContentItems = f.MinContentItems
			}

			result, err := t.Train(context.Background())
			if err != nil {
				return errors.WithMessage(err, "training run failed")
			}

			log.WithFields(log.Fields{
				"version":  result.Snapshot.VersionLabel,
				"pairs":    result.PairsCreated,
				"accuracy": result.Snapshot.AccuracyScore,
				"loss":     result.Snapshot.LossValue,
			}).Info("training run complete")
			return nil
		},
	}

	f.BindFlags(cmd.Flags())
	return cmd
}
