// Package cmd implements the command-line interface for job-finder.
// It provides the root command and subcommands for crawling job
// sources and managing the source catalog.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/greg-randall/job-finder/cmd/common"
	runcmd "github.com/greg-randall/job-finder/cmd/run"
	schedulecmd "github.com/greg-randall/job-finder/cmd/schedule"
	sourcescmd "github.com/greg-randall/job-finder/cmd/sources"
)

var (
	// cfgFile holds the path to the configuration file.
	cfgFile string

	// sourcesFile overrides the configured source catalog path.
	sourcesFile string

	// debug enables debug logging for all commands.
	debug bool

	// rootCmd represents the root command for the job-finder CLI.
	rootCmd = &cobra.Command{
		Use:   "job-finder",
		Short: "A job posting crawler",
		Long: `job-finder crawls configured job boards, follows their pagination,
and downloads new postings into a local cache as plain text.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
)

// Execute runs the root command
func Execute() error {
	// Load .env file early so environment variables are available
	// when Viper reads configuration.
	_ = godotenv.Load()

	return rootCmd.ExecuteContext(context.Background())
}

// buildDeps loads configuration and the source catalog using the
// global flags. Commands call it lazily so that help and usage output
// never require a valid config.
func buildDeps() (common.CommandDeps, error) {
	return common.BuildDeps(cfgFile, sourcesFile, debug)
}

// init initializes the root command and its subcommands.
func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"",
		"config file (default is ./config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&sourcesFile,
		"sources",
		"",
		"source catalog file (default from config, ./sources.yml)",
	)
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(os.Stdout, "job-finder version %s\n", version)
		},
	})

	rootCmd.AddCommand(runcmd.Command(buildDeps))
	rootCmd.AddCommand(sourcescmd.Command(buildDeps))
	rootCmd.AddCommand(schedulecmd.Command(buildDeps))
}

// version is set at build time via -ldflags.
var version = "dev"
