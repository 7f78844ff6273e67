package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"invoicer/pkg/models"
)

func newFieldsCmd(a *app) *cobra.Command {
	var side string

	cmd := &cobra.Command{
		Use:   "fields [id]",
		Short: "List the optional party fields",
		Long: `List the optional identifiers that can be added to the company or client with
--add-company-field, --company-field and their client counterparts. The artist
card number and the business register number share one slot: a party carries
at most one of them, and adding one replaces the other.

With an invoice id, only the fields that can still be added to the party
chosen by --side are listed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keys := models.FieldKeys()

			if len(args) == 1 {
				party := models.Side(side)
				if party != models.SideCompany && party != models.SideClient {
					return fmt.Errorf("--side must be %q or %q, got %q", models.SideCompany, models.SideClient, side)
				}
				repo, err := a.repository(cmd.Context())
				if err != nil {
					return err
				}
				inv, ok := repo.Get(args[0])
				if !ok {
					return notFound(args[0])
				}
				_, _, fields := inv.Party(party)
				keys = fields.Available()
				if len(keys) == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "The %s of invoice %s already carries every optional field.\n", party, args[0])
					return nil
				}
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "KEY\tLABEL\tSHORT LABEL\tNOTE")
			for _, key := range keys {
				note := ""
				if key.Exclusive() {
					note = "one of artistCardNumber / businessRegNumber"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", key, key.Label(), key.ShortLabel(), note)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&side, "side", string(models.SideCompany), "party to list addable fields for: company or client")
	return cmd
}
