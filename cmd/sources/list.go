package sources

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/greg-randall/job-finder/cmd/common"
	internalsources "github.com/greg-randall/job-finder/internal/sources"
)

// TableRenderer handles the display of source data in a table format
type TableRenderer struct{}

// RenderTable formats and displays the sources in a table format
func (TableRenderer) RenderTable(srcs []internalsources.Source) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)

	t.AppendHeader(table.Row{"Name", "Backend", "URL", "Enabled", "Selectors"})

	for i := range srcs {
		enabled := "no"
		if srcs[i].Enabled {
			enabled = "yes"
		}
		t.AppendRow(table.Row{
			srcs[i].Name,
			string(srcs[i].Backend),
			srcs[i].URL,
			enabled,
			len(srcs[i].Selectors),
		})
	}

	t.Render()
}

// newListCommand creates the list command.
func newListCommand(buildDeps func() (common.CommandDeps, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configured sources",
		RunE: func(_ *cobra.Command, _ []string) error {
			deps, err := buildDeps()
			if err != nil {
				return err
			}

			all := deps.Catalog.All()
			if len(all) == 0 {
				deps.Logger.Info("no sources configured")
				return nil
			}

			TableRenderer{}.RenderTable(all)
			return nil
		},
	}
}
