package render

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"invoicer/internal/invoice"
	"invoicer/pkg/models"
)

// TextSummary renders the invoice as plain text for a terminal.
func TextSummary(inv models.InvoiceData, totals invoice.Totals) string {
	s := newSheet(inv, totals)
	var b strings.Builder

	fmt.Fprintf(&b, "INVOICE #%s\n", s.Number)
	if inv.ID != "" {
		fmt.Fprintf(&b, "ID:       %s\n", inv.ID)
	}
	fmt.Fprintf(&b, "Subject:  %s\n", s.Subject)
	fmt.Fprintf(&b, "Date:     %s\n", s.Date)
	fmt.Fprintf(&b, "Due Date: %s\n\n", s.DueDate)

	writeParty(&b, "From", s.From)
	writeParty(&b, "To", s.To)

	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Description\tQuantity\tUnit\tPrice\tAmount")
	for _, l := range s.Lines {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", oneLine(l.Description), l.Quantity, l.Unit, l.Price, l.Amount)
	}
	fmt.Fprintln(tw, "\t\t\t\t")
	fmt.Fprintf(tw, "\t\t\tSubtotal\t%s\n", s.Subtotal)
	fmt.Fprintf(tw, "\t\t\t%s\t%s\n", s.TaxLabel, s.Tax)
	fmt.Fprintf(tw, "\t\t\tTotal\t%s\n", s.Total)
	tw.Flush()

	if strings.TrimSpace(s.Notes) != "" {
		fmt.Fprintf(&b, "\nNotes:\n%s\n", s.Notes)
	}
	return b.String()
}

func writeParty(b *strings.Builder, heading string, p party) {
	fmt.Fprintf(b, "%s: %s\n", heading, p.Name)
	for _, l := range strings.Split(p.Address, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			fmt.Fprintf(b, "  %s\n", l)
		}
	}
	for _, f := range p.Fields {
		fmt.Fprintf(b, "  %s: %s\n", f.Label, f.Value)
	}
	b.WriteString("\n")
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
