// Package commands implements the quotectl command tree.
package commands

import (
	"github.com/spf13/cobra"
)

// BuildInfo is stamped into the binary at link time.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
}

// New returns the root command with every subcommand attached.
func New(info BuildInfo) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "quotectl",
		Short:         "Fetch and share quotes from the command line.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	AddCommands(cmd, info)
	return cmd
}

// AddCommands attaches the subcommands to topLevel.
func AddCommands(topLevel *cobra.Command, info BuildInfo) {
	addCategories(topLevel)
	addFetch(topLevel, defaultServiceFactory)
	addVersion(topLevel, info)
}
