// Package cmd provides the CLI commands for awesome-pages.
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// globalFlags holds the persistent logging flags shared by every command.
type globalFlags struct {
	logLevel    string
	logFormat   string
	logProvider string
}

// NewRootCmd creates the root command for the awesome-pages CLI.
func NewRootCmd() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "awesome-pages",
		Short: "Turn awesome lists into structured data, search indexes and feeds",
		Long: `awesome-pages parses curated "awesome" markdown lists into a validated
domain document, builds a weighted search index over it and renders
feeds, sitemaps, bookmarks and CSV exports.

Sources can be local files, globs, HTTP URLs or GitHub repositories.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetVersionTemplate("awesome-pages version {{.Version}}\n")

	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	pf.StringVar(&flags.logFormat, "log-format", "", "Log format for the gologger provider (json, console, pretty)")
	pf.StringVar(&flags.logProvider, "log-provider", "", "Logger provider (console, gologger)")

	cmd.AddCommand(newRunCmd(flags))
	cmd.AddCommand(newParseCmd(flags))
	cmd.AddCommand(newIndexCmd(flags))
	cmd.AddCommand(newWatchCmd(flags))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command until it finishes or the process is
// interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		root.PrintErrln("Error:", err)
		return err
	}
	return nil
}
