package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	awesomepages "github.com/goliatone/go-awesome-pages"
)

func newParseCmd(flags *globalFlags) *cobra.Command {
	var outPath string
	var indexPath string
	var quiet bool

	cmd := &cobra.Command{
		Use:   "parse <source>",
		Short: "Parse one awesome list into a domain document",
		Long: `Parse reads a single source (a local path, an http(s) URL or
github:owner/repo[@ref][:path]) and prints its domain JSON, or writes it to
--out. Use --index to also write the search index.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			module, err := buildModule(flags)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			res, err := module.Load(ctx, args[0])
			if err != nil {
				return err
			}
			if !quiet {
				for _, diag := range res.Diagnostics {
					cmd.PrintErrln("warning:", diag.String())
				}
			}

			if outPath == "" {
				rendered, err := module.Render(ctx, awesomepages.ArtifactDomain, res)
				if err != nil {
					return err
				}
				if _, err := cmd.OutOrStdout().Write(rendered.Content); err != nil {
					return err
				}
			} else if _, err := module.Emit(ctx, awesomepages.ArtifactDomain, res, outPath); err != nil {
				return err
			}

			if indexPath != "" {
				if _, err := module.Emit(ctx, awesomepages.ArtifactIndex, res, indexPath); err != nil {
					return fmt.Errorf("write index: %w", err)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the domain JSON to this file instead of stdout")
	cmd.Flags().StringVar(&indexPath, "index", "", "Also write the search index JSON to this file")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not print diagnostics")

	return cmd
}
