package main

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/simsonbaroi/OrionAiTesting/pkg/dataloader"
	"github.com/simsonbaroi/OrionAiTesting/pkg/dataloader/curatedloader"
	"github.com/simsonbaroi/OrionAiTesting/pkg/dataloader/docsloader"
	"github.com/simsonbaroi/OrionAiTesting/pkg/dataloader/githubloader"
	"github.com/simsonbaroi/OrionAiTesting/pkg/dataloader/loaderwithmetrics"
	"github.com/simsonbaroi/OrionAiTesting/pkg/dataloader/stackloader"
	"github.com/simsonbaroi/OrionAiTesting/pkg/flags"
	"github.com/simsonbaroi/OrionAiTesting/pkg/flags/configflags"
)

type LoadFlags struct {
	Loaders      []string
	InitDatabase bool

	DBFlags     *flags.DatabaseFlags
	ConfigFlags *configflags.ConfigFlags
}

func NewLoadFlags() *LoadFlags {
	return &LoadFlags{
		Loaders:     []string{"curated", "documentation", "stackoverflow", "github"},
		DBFlags:     flags.NewDatabaseFlags(),
		ConfigFlags: configflags.NewConfigFlags(),
	}
}

func (f *LoadFlags) BindFlags(flagSet *pflag.FlagSet) {
	f.DBFlags.BindFlags(flagSet)
	f.ConfigFlags.BindFlags(flagSet)

	flagSet.StringArrayVar(&f.Loaders, "loader", f.Loaders, "Which data sources to load")
	flagSet.BoolVar(&f.InitDatabase, "init-database", false, "Migrate the schema before loading")
}

func NewLoadCommand() *cobra.Command {
	f := NewLoadFlags()

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Collect content into the knowledge base",
		RunE: func(cmd *cobra.Command, args []string) error {
			dbc, err := f.DBFlags.GetDBClient()
			if err != nil {
				return errors.WithMessage(err, "could not get db client")
			}
			if f.InitDatabase {
				if err := dbc.UpdateSchema(); err != nil {
					return errors.WithMessage(err, "could not migrate schema")
				}
			}

			config, err := f.ConfigFlags.GetConfig()
			if err != nil {
				return errors.WithMessage(err, "could not load config")
			}

			runID := uuid.New()
			var loaders []dataloader.DataLoader
			for _, name := range f.Loaders {
				switch name {
				case "curated":
					loaders = append(loaders, curatedloader.New(dbc, runID))
				case "documentation":
					loaders = append(loaders, docsloader.New(dbc, runID, config.Documentation.Pages))
				case "stackoverflow":
					loaders = append(loaders, stackloader.New(dbc, runID,
						config.StackExchange.Site, config.StackExchange.Tag, config.StackExchange.PageSize))
				case "github":
					loaders = append(loaders, githubloader.New(context.Background(), dbc, runID, config.GitHub.Repos))
				default:
					return errors.Errorf("unknown loader %q", name)
				}
			}

			wrapped := loaderwithmetrics.New(loaders)
			wrapped.Load()

			if loadErrs := wrapped.Errors(); len(loadErrs) > 0 {
				for _, loadErr := range loadErrs {
					log.WithError(loadErr).Error("error during data loading")
				}
				log.Warningf("collection run %s finished with %d errors", runID, len(loadErrs))
			} else {
				log.Infof("collection run %s finished cleanly", runID)
			}
			return nil
		},
	}

	f.BindFlags(cmd.Flags())
	return cmd
}
