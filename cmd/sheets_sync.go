package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"invoicer/internal/sheets"
)

func newSheetsSyncCmd(a *app) *cobra.Command {
	var (
		sheetURL  string
		worksheet string
	)

	cmd := &cobra.Command{
		Use:   "sheets-sync",
		Short: "Mirror all invoices into a Google Sheet",
		Long: `Replace the rows of a worksheet with one row per invoice.

The worksheet and its header row are created when missing. The sheet is a copy
for sharing; edits made there are not read back.

Required environment variables:
  GOOGLE_SHEET_URL - the spreadsheet URL (or pass --sheet-url)
  GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS - a service account
    key; share the sheet with the service account's email`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := a.log.With().Str("command", "sheets-sync").Logger()
			ctx := cmd.Context()

			if sheetURL == "" {
				sheetURL = a.cfg.GoogleSheetURL
			}
			if sheetURL == "" {
				return errors.New("no spreadsheet given. Set GOOGLE_SHEET_URL or pass --sheet-url")
			}
			if worksheet == "" {
				worksheet = a.cfg.GoogleSheetWorksheet
			}

			creds, err := a.cfg.GoogleCredentials()
			if err != nil {
				return err
			}

			repo, err := a.repository(ctx)
			if err != nil {
				return err
			}
			invoices := repo.List()

			svc, err := sheets.NewService(ctx, sheetURL, creds)
			if err != nil {
				log.Error().Err(err).Msg("Failed to connect to Google Sheets")
				return err
			}
			if err := svc.Sync(ctx, invoices, worksheet); err != nil {
				log.Error().Err(err).Msg("Sheet sync failed")
				return fmt.Errorf("failed to sync invoices to Google Sheets: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Synced %d invoice(s) to Google Sheets\n", len(invoices))
			return nil
		},
	}

	cmd.Flags().StringVar(&sheetURL, "sheet-url", "", "spreadsheet URL (default GOOGLE_SHEET_URL)")
	cmd.Flags().StringVar(&worksheet, "worksheet", "", "worksheet name (default GOOGLE_SHEET_WORKSHEET)")
	return cmd
}
