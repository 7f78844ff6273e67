// Package notify shares rendered invoices with a Slack channel.
package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/slack-go/slack"

	"invoicer/internal/export"
	"invoicer/internal/invoice"
	"invoicer/internal/render"
	"invoicer/pkg/models"
)

var (
	ErrMissingToken   = errors.New("SLACK_BOT_TOKEN is not set")
	ErrMissingChannel = errors.New("no Slack channel given")
	ErrEmptyDocument  = errors.New("nothing to upload")
)

// Slack uploads invoice PDFs to a channel.
type Slack struct {
	client  *slack.Client
	channel string
	log     zerolog.Logger
}

// NewSlack creates a client for the bot token. channel is the default
// destination; ShareInvoice can override it.
func NewSlack(token, channel string, log zerolog.Logger, opts ...slack.Option) (*Slack, error) {
	if token == "" {
		return nil, ErrMissingToken
	}
	return &Slack{
		client:  slack.New(token, opts...),
		channel: channel,
		log:     log,
	}, nil
}

// ShareInvoice uploads pdf to channel (or the default channel) with a short
// summary as the initial comment.
func (s *Slack) ShareInvoice(ctx context.Context, inv models.InvoiceData, pdf []byte, channel string) error {
	if channel == "" {
		channel = s.channel
	}
	if channel == "" {
		return ErrMissingChannel
	}
	if len(pdf) == 0 {
		return ErrEmptyDocument
	}

	params := slack.FileUploadParameters{
		Reader:         bytes.NewReader(pdf),
		Filename:       export.FileName(inv),
		Title:          fmt.Sprintf("Invoice %s", inv.InvoiceNumber),
		Filetype:       "pdf",
		Channels:       []string{channel},
		InitialComment: Message(inv, invoice.Compute(inv.Draft)),
	}

	file, err := s.client.UploadFileContext(ctx, params)
	if err != nil {
		s.log.Error().Err(err).Str("channel", channel).Msg("Failed to upload invoice to Slack")
		return fmt.Errorf("upload invoice %s to %s: %w (is the bot a member of the channel?)", inv.InvoiceNumber, channel, err)
	}

	s.log.Info().
		Str("channel", channel).
		Str("file_id", file.ID).
		Str("invoice_number", inv.InvoiceNumber).
		Msg("Invoice shared on Slack")
	return nil
}

// Message is the Slack mrkdwn summary posted with an invoice.
func Message(inv models.InvoiceData, totals invoice.Totals) string {
	var b strings.Builder
	fmt.Fprintf(&b, ":page_facing_up: *Invoice %s*", inv.InvoiceNumber)
	if inv.ClientName != "" {
		fmt.Fprintf(&b, " for %s", inv.ClientName)
	}
	if inv.Subject != "" {
		fmt.Fprintf(&b, "\n>%s", inv.Subject)
	}
	fmt.Fprintf(&b, "\n*Total:* %s", invoice.FormatCurrency(totals.Total))
	if !inv.DueDate.IsZero() {
		fmt.Fprintf(&b, "\n*Due:* %s", inv.DueDate.Format(render.DateLayout))
	}
	return b.String()
}
