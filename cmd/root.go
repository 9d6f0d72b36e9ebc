package main

import (
	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	serve := newServeCommand()
	cmd := &cobra.Command{
		Use:   "tutorlog",
		Short: "Tutoring session and evaluation summary API",
		Long: `tutorlog stores learning sessions and graded evaluations for each user
and serves an aggregated summary of recent performance.

Running without a subcommand is the same as "tutorlog serve".`,
		Version:      version,
		SilenceUsage: true,
		RunE:         serve.RunE,
	}

	cmd.AddCommand(serve)
	cmd.AddCommand(newMigrateCommand())
	cmd.AddCommand(newTokenCommand())

	return cmd
}
