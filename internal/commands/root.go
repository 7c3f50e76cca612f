// Package commands implements the bookkeeper command tree.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/minesupport/bookkeeper/internal/buildinfo"
)

// globals holds the persistent flags shared by every subcommand.
type globals struct {
	repo      string
	logLevel  string
	logFormat string
	json      bool
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	g := &globals{}

	rootCmd := &cobra.Command{
		Use:     "bookkeeper",
		Short:   "Double-entry bookkeeping for mining support operations",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&g.repo, "repo", ".", "book directory")
	flags.StringVar(&g.logLevel, "log-level", "", "log level: trace, debug, info, warn, error (default from config)")
	flags.StringVar(&g.logFormat, "log-format", "", "log format: console or json (default from config)")
	flags.BoolVar(&g.json, "json", false, "print results as JSON")

	rootCmd.AddCommand(
		newInitCommand(g),
		newAccountCommand(g),
		newTxnCommand(g),
		newReportCommand(g),
		newImportCommand(g),
		newLogCommand(g),
	)

	return rootCmd
}
