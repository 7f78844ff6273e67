package render

import (
	"strconv"

	"invoicer/internal/invoice"
	"invoicer/pkg/models"
)

// DateLayout is how dates are printed on invoices (day first, as in fr-DZ).
const DateLayout = "02/01/2006"

type labeledValue struct {
	Label string
	Value string
}

type party struct {
	Name    string
	Address string
	Fields  []labeledValue
}

type line struct {
	Description string
	Quantity    string
	Unit        string
	Price       string
	Amount      string
}

// sheet is the invoice reduced to the display strings every template prints.
type sheet struct {
	Number   string
	Subject  string
	Date     string
	DueDate  string
	From     party
	To       party
	Lines    []line
	Subtotal string
	TaxLabel string
	Tax      string
	Total    string
	Notes    string
}

func newSheet(inv models.InvoiceData, totals invoice.Totals) sheet {
	s := sheet{
		Number:   inv.InvoiceNumber,
		Subject:  inv.Subject,
		Date:     inv.Date.Format(DateLayout),
		DueDate:  inv.DueDate.Format(DateLayout),
		From:     newParty(inv.Draft, models.SideCompany),
		To:       newParty(inv.Draft, models.SideClient),
		Subtotal: invoice.FormatCurrency(totals.Subtotal),
		TaxLabel: "Tax (" + FormatRate(inv.TaxRate) + "%)",
		Tax:      invoice.FormatCurrency(totals.Tax),
		Total:    invoice.FormatCurrency(totals.Total),
		Notes:    inv.Notes,
	}
	for _, item := range inv.Items {
		s.Lines = append(s.Lines, line{
			Description: item.Description,
			Quantity:    strconv.Itoa(item.Quantity),
			Unit:        item.Unit,
			Price:       invoice.FormatFloat(item.Price),
			Amount:      invoice.FormatCurrency(invoice.LineAmount(item)),
		})
	}
	return s
}

// newParty keeps only fields with a value, in canonical key order.
func newParty(d models.Draft, side models.Side) party {
	name, address, fields := d.Party(side)
	p := party{Name: name, Address: address}
	for _, key := range fields.Filled() {
		value, _ := fields.Get(key)
		p.Fields = append(p.Fields, labeledValue{Label: key.ShortLabel(), Value: value})
	}
	return p
}

// FormatRate prints a tax rate without trailing zeros: 19, 9.5.
func FormatRate(rate float64) string {
	return strconv.FormatFloat(rate, 'f', -1, 64)
}
