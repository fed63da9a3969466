package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	awesomepages "github.com/goliatone/go-awesome-pages"
	"github.com/goliatone/go-awesome-pages/internal/validation"
)

func newIndexCmd(flags *globalFlags) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "index <domain.json>",
		Short: "Build the search index of an existing domain document",
		Long: `Index validates a domain JSON document against the domain schema and
prints its search index, or writes it to --out.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read domain: %w", err)
			}
			if err := validation.ValidateDomainJSON(payload); err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			var d awesomepages.Domain
			if err := json.Unmarshal(payload, &d); err != nil {
				return fmt.Errorf("decode domain: %w", err)
			}

			module, err := buildModule(flags)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			res := &awesomepages.Result{Domain: &d, Index: module.Index(&d)}

			if outPath != "" {
				_, err := module.Emit(ctx, awesomepages.ArtifactIndex, res, outPath)
				return err
			}
			rendered, err := module.Render(ctx, awesomepages.ArtifactIndex, res)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(rendered.Content)
			return err
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the index JSON to this file instead of stdout")

	return cmd
}
