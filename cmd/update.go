package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"invoicer/internal/invoice"
)

func newUpdateCmd(a *app) *cobra.Command {
	var flags draftFlags

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit an existing invoice",
		Long: `Edit an existing invoice. Only the flags you pass change anything; the id and
creation time are kept and the update time is refreshed.`,
		Example: `  # Change the due date and the second item's price
  invoicer update 6f1c... --due-date 2024-08-01 --set-item "2:price=20000"

  # Add a bank account to the issuing company
  invoicer update 6f1c... --company-field "bankAccount=DZ58 0020 0000 1234"

  # Switch the company from an artist card to a business register number
  invoicer update 6f1c... --add-company-field businessRegNumber`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			log := a.log.With().Str("command", "update").Str("id", id).Logger()
			out := cmd.OutOrStdout()

			repo, err := a.repository(cmd.Context())
			if err != nil {
				return err
			}
			existing, ok := repo.Get(id)
			if !ok {
				fmt.Fprintf(out, "Invoice %s not found; nothing changed.\n", id)
				return nil
			}

			draft := existing.Draft
			if err := flags.apply(cmd, &draft); err != nil {
				return handleDraftError(err, log)
			}
			if err := invoice.ValidateDraft(draft); err != nil {
				return handleDraftError(err, log)
			}

			updated, err := repo.Update(cmd.Context(), id, draft)
			if err != nil {
				return handleRepositoryError(err, log)
			}
			if !updated {
				fmt.Fprintf(out, "Invoice %s not found; nothing changed.\n", id)
				return nil
			}

			log.Info().Msg("Invoice updated")
			fmt.Fprintf(out, "Updated invoice %s\n", id)
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}
