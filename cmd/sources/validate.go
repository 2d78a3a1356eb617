package sources

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/greg-randall/job-finder/cmd/common"
)

// newValidateCommand creates the validate command. Loading the catalog
// already runs full validation, so reaching the handler means every
// source parsed and validated cleanly.
func newValidateCommand(buildDeps func() (common.CommandDeps, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the source catalog",
		Long: `Validate parses the source catalog and checks every source for a
usable name, URL, backend type, and the selectors its backend requires.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, err := buildDeps()
			if err != nil {
				return fmt.Errorf("catalog validation failed: %w", err)
			}

			all := deps.Catalog.All()
			enabled := deps.Catalog.Enabled()
			cmd.Printf("catalog OK: %d sources (%d enabled)\n",
				len(all), len(enabled))
			return nil
		},
	}
}
