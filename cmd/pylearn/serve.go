package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/simsonbaroi/OrionAiTesting/pkg/flags"
	"github.com/simsonbaroi/OrionAiTesting/pkg/flags/configflags"
	"github.com/simsonbaroi/OrionAiTesting/pkg/pylearnserver"
)

type ServerFlags struct {
	CacheFlags  *flags.CacheFlags
	DBFlags     *flags.DatabaseFlags
	ConfigFlags *configflags.ConfigFlags

	ListenAddr  string
	MetricsAddr string
}

func NewServerFlags() *ServerFlags {
	return &ServerFlags{
		CacheFlags:  flags.NewCacheFlags(),
		DBFlags:     flags.NewDatabaseFlags(),
		ConfigFlags: configflags.NewConfigFlags(),
		ListenAddr:  ":8080",
		MetricsAddr: ":2112",
	}
}

func (f *ServerFlags) BindFlags(flagSet *pflag.FlagSet) {
	f.CacheFlags.BindFlags(flagSet)
	f.DBFlags.BindFlags(flagSet)
	f.ConfigFlags.BindFlags(flagSet)

	flagSet.StringVar(&f.ListenAddr, "listen", f.ListenAddr, "The address to serve the API on (default :8080)")
	flagSet.StringVar(&f.MetricsAddr, "listen-metrics", f.MetricsAddr, "The address to serve prometheus metrics on (default :2112)")
}

func NewServeCommand() *cobra.Command {
	f := NewServerFlags()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the pylearn server",
		RunE: func(cmd *cobra.Command, args []string) error {
			dbc, err := f.DBFlags.GetDBClient()
			if err != nil {
				return errors.WithMessage(err, "could not get db client")
			}
			if err := dbc.UpdateSchema(); err != nil {
				return errors.WithMessage(err, "could not migrate schema")
			}

			cacheClient, err := f.CacheFlags.GetCacheClient()
			if err != nil {
				return errors.WithMessage(err, "could not get cache client")
			}

			config, err := f.ConfigFlags.GetConfig()
			if err != nil {
				return errors.WithMessage(err, "could not load config")
			}

			server := pylearnserver.NewServer(f.ListenAddr, f.MetricsAddr, dbc, cacheClient, config)
			server.Serve()
			return nil
		},
	}

	f.BindFlags(cmd.Flags())
	return cmd
}
