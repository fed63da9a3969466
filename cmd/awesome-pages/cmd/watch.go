package cmd

import (
	"github.com/spf13/cobra"

	awesomepages "github.com/goliatone/go-awesome-pages"
)

func newWatchCmd(flags *globalFlags) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Rerun a run file whenever a local source changes",
		Long: `Watch performs the same work as run, then keeps watching the directories
holding local sources and reruns after each burst of changes. Remote
sources are fetched again on every rerun. Stop with Ctrl-C.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := awesomepages.LoadRunOptions(configPath)
			if err != nil {
				return err
			}
			module, err := buildModule(flags)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			return module.Watch(cmd.Context(), opts, func(report *awesomepages.RunReport, err error) {
				printReport(out, report)
				if err != nil {
					cmd.PrintErrln("Error:", err)
				}
			})
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "awesome-pages.yaml", "Run file (yaml, toml or json)")

	return cmd
}
