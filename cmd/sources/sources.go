// Package sources implements the command-line interface for managing
// the source catalog.
package sources

import (
	"github.com/spf13/cobra"

	"github.com/greg-randall/job-finder/cmd/common"
)

// Command returns the sources command with its subcommands.
func Command(buildDeps func() (common.CommandDeps, error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sources",
		Short: "Manage job sources",
		Long:  `The sources command inspects and validates the configured job sources.`,
	}

	cmd.AddCommand(
		newListCommand(buildDeps),
		newValidateCommand(buildDeps),
	)

	return cmd
}
