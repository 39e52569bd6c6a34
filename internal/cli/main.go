// Package cli is the diary command line: the long-running service plus
// one-shot commands that work on the same data directory.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/anilblsn/sevenappsCase/internal/config"
)

func Main() {
	root := NewRootCommand()
	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// NewRootCommand assembles the command tree. Without a subcommand the
// service is started.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "diary",
		Short:         "Cut fixed-length clips from your videos and keep them in a diary",
		Version:       fmt.Sprintf("%s (commit %s, built %s)", config.Version, config.GitCommit, config.BuildTime),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd)
		},
	}

	root.AddCommand(
		newServeCommand(),
		newCreateCommand(),
		newClipsCommand(),
		newExportCommand(),
	)
	return root
}
