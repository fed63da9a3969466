package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	awesomepages "github.com/goliatone/go-awesome-pages"
)

func newRunCmd(flags *globalFlags) *cobra.Command {
	var configPath string
	var strict bool
	var noCache bool
	var concurrency int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process every source listed in a run file",
		Long: `Run reads a YAML, TOML or JSON run file, fetches each source, builds its
domain and writes the configured artifacts.

Example run file:

  sources:
    - from: ["lists/*.md", "github:avelino/awesome-go"]
      outputs:
        - artifact: [domain, index]
          to: "public/{name}.{artifact}.json"`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := awesomepages.LoadRunOptions(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("strict") {
				opts.Strict = strict
			}
			if noCache {
				disabled := false
				opts.Cache = &disabled
			}
			if concurrency > 0 {
				opts.Concurrency = concurrency
			}

			module, err := buildModule(flags)
			if err != nil {
				return err
			}
			report, err := module.Run(cmd.Context(), opts)
			printReport(cmd.OutOrStdout(), report)
			if err != nil {
				return err
			}
			return reportError(report)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "awesome-pages.yaml", "Run file (yaml, toml or json)")
	cmd.Flags().BoolVar(&strict, "strict", false, "Abort on the first failing source")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Skip the HTTP validator cache")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Sources processed in parallel (default from config)")

	return cmd
}

func printReport(w io.Writer, report *awesomepages.RunReport) {
	if report == nil {
		return
	}
	for _, file := range report.Files {
		fmt.Fprintf(w, "wrote %s (%s, %d bytes)\n", file.File, file.Artifact, file.Bytes)
	}
	for _, failure := range report.Failures {
		fmt.Fprintf(w, "failed %s: %v\n", failure.Input, failure.Err)
	}
	warnings := 0
	for _, entries := range report.Diagnostics {
		warnings += len(entries)
	}
	fmt.Fprintf(w, "run %s: %d files, %d failures, %d diagnostics\n",
		report.RunID, len(report.Files), len(report.Failures), warnings)
}

func reportError(report *awesomepages.RunReport) error {
	if !report.Failed() {
		return nil
	}
	return fmt.Errorf("%d source(s) failed", len(report.Failures))
}
