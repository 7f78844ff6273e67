package cmd

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"invoicer/internal/invoice"
	"invoicer/internal/render"
)

func newShowCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one invoice with its totals",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := a.repository(cmd.Context())
			if err != nil {
				return err
			}
			inv, ok := repo.Get(args[0])
			if !ok {
				return notFound(args[0])
			}

			if asJSON {
				data, err := json.MarshalIndent(inv, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to encode invoice: %w", err)
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return err
			}

			_, err = fmt.Fprint(cmd.OutOrStdout(), render.TextSummary(inv, invoice.Compute(inv.Draft)))
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the stored invoice as JSON")
	return cmd
}
