package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"invoicer/internal/invoice"
)

func newCreateCmd(a *app) *cobra.Command {
	var flags draftFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new invoice",
		Long: `Create a new invoice and print its id.

The draft starts like a blank form: a generated invoice number, today's date,
a due date 30 days out, one empty line item and a 19% tax rate. Values from
--from and the flags below are applied on top. The invoice is saved only when
every required field is filled in.`,
		Example: `  # Create from flags
  invoicer create --subject "Website" --company "Atelier Nour" \
    --company-address "12 Rue Didouche Mourad, Alger" \
    --client "Sarl Tassili" --client-address "Constantine" \
    --item "Design|1|pcs|45000" --item "Development|3|day|18500.50" \
    --company-field fiscalId=000016001234567

  # Create from a JSON draft
  invoicer create --from draft.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := a.log.With().Str("command", "create").Logger()

			draft := invoice.NewDraft(a.now())
			if err := flags.apply(cmd, &draft); err != nil {
				return handleDraftError(err, log)
			}
			if err := invoice.ValidateDraft(draft); err != nil {
				return handleDraftError(err, log)
			}

			repo, err := a.repository(cmd.Context())
			if err != nil {
				return err
			}
			created, err := repo.Create(cmd.Context(), draft)
			if err != nil {
				return handleRepositoryError(err, log)
			}

			log.Info().
				Str("id", created.ID).
				Str("invoice_number", created.InvoiceNumber).
				Msg("Invoice created")

			fmt.Fprintln(cmd.OutOrStdout(), created.ID)
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}
