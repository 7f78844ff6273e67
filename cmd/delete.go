package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete an invoice",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			log := a.log.With().Str("command", "delete").Str("id", id).Logger()
			out := cmd.OutOrStdout()

			repo, err := a.repository(cmd.Context())
			if err != nil {
				return err
			}
			deleted, err := repo.Delete(cmd.Context(), id)
			if err != nil {
				return handleRepositoryError(err, log)
			}
			if !deleted {
				fmt.Fprintf(out, "Invoice %s not found; nothing deleted.\n", id)
				return nil
			}

			log.Info().Msg("Invoice deleted")
			fmt.Fprintf(out, "Deleted invoice %s\n", id)
			return nil
		},
	}
}
