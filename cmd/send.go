package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"invoicer/internal/export"
	"invoicer/internal/notify"
)

func newSendCmd(a *app) *cobra.Command {
	var (
		templateName string
		channel      string
	)

	cmd := &cobra.Command{
		Use:   "send <id>",
		Short: "Render an invoice and share it in a Slack channel",
		Long: `Render an invoice and upload the PDF to Slack with a short summary.

Required environment variables:
  SLACK_BOT_TOKEN - bot token with the files:write scope
  SLACK_CHANNEL   - default channel id (or pass --channel)`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := a.log.With().Str("command", "send").Str("id", args[0]).Logger()

			slackClient, err := notify.NewSlack(a.cfg.SlackBotToken, a.cfg.SlackChannel, log)
			if err != nil {
				return err
			}

			inv, doc, err := a.renderStored(cmd.Context(), args[0], templateName)
			if err != nil {
				return handleExportError(err, log)
			}
			pdf, err := export.Bytes(doc)
			if err != nil {
				return handleExportError(err, log)
			}

			if err := slackClient.ShareInvoice(cmd.Context(), inv, pdf, channel); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Shared invoice %s on Slack\n", inv.InvoiceNumber)
			return nil
		},
	}

	cmd.Flags().StringVarP(&templateName, "template", "t", "", "template: "+templateNames())
	cmd.Flags().StringVar(&channel, "channel", "", "Slack channel id (default SLACK_CHANNEL)")
	return cmd
}
