package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// gitCommit is set via -ldflags at build time.
var gitCommit = "unknown"

func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Report version information for pylearn",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(os.Stdout, "pylearn built from %s\n", gitCommit)
		},
	}
}
