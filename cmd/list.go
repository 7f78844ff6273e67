package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"invoicer/internal/invoice"
	"invoicer/internal/render"
)

func newListCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List invoices in the order they were created",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := a.repository(cmd.Context())
			if err != nil {
				return err
			}
			invoices := repo.List()
			out := cmd.OutOrStdout()

			if asJSON {
				data, err := json.MarshalIndent(invoices, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to encode invoices: %w", err)
				}
				_, err = fmt.Fprintln(out, string(data))
				return err
			}

			if len(invoices) == 0 {
				fmt.Fprintln(out, "No invoices yet. Create one with \"invoicer create\".")
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNUMBER\tCLIENT\tDATE\tDUE\tTOTAL")
			for _, inv := range invoices {
				totals := invoice.Compute(inv.Draft)
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
					inv.ID,
					inv.InvoiceNumber,
					inv.ClientName,
					inv.Date.Format(render.DateLayout),
					inv.DueDate.Format(render.DateLayout),
					invoice.FormatCurrency(totals.Total),
				)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the stored collection as JSON")
	return cmd
}
