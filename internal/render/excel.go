package render

import (
	"github.com/jung-kurt/gofpdf"

	"invoicer/internal/invoice"
	"invoicer/pkg/models"
)

// excel: spreadsheet look with a full grid, banded rows and the totals in
// the table footer.
type excel struct{}

func (excel) Template() Template { return Excel }

func (excel) Render(inv models.InvoiceData, totals invoice.Totals) (*gofpdf.Fpdf, error) {
	s := newSheet(inv, totals)
	p := newPage(s, "Times")
	pdf := p.pdf

	p.style("B", 24, black)
	pdf.CellFormat(0, 11, p.text("INVOICE"), "", 1, "C", false, 0, "")
	p.style("", 14, black)
	pdf.CellFormat(0, 7, p.text("#"+s.Number), "", 1, "C", false, 0, "")
	pdf.Ln(8)

	ps := partyStyle{HeadingSize: 12, HeadingBold: true, HeadingRule: true, Color: black, Muted: black}
	from, to := ps, ps
	from.Heading, to.Heading = "From:", "To:"
	p.parties(s, from, to)
	pdf.Ln(6)

	y := pdf.GetY()
	half := p.width() / 2
	p.labeled(margin, y, half, "Date:", s.Date)
	p.labeled(margin, y+6, half, "Due Date:", s.DueDate)
	p.labeled(margin+half, y, half, "Subject:", s.Subject)
	pdf.SetXY(margin, y+16)

	p.items(s, tableStyle{
		HeadFill:   &paleGray,
		HeadText:   black,
		HeadBold:   true,
		HeadSize:   11,
		Grid:       true,
		Zebra:      &rgb{249, 250, 251},
		Text:       black,
		Size:       11,
		LineHeight: 6,
	})
	p.footer(s)

	if s.Notes != "" {
		pdf.Ln(8)
		p.ensure(20)
		p.rule(pdf.GetY(), midGray, 0.5)
		pdf.Ln(3)
	}
	p.notes(s, "Notes:", "B", 12, black)

	return p.finish()
}

func (p *page) labeled(x, y, w float64, label, value string) {
	pdf := p.pdf
	pdf.SetXY(x, y)
	p.style("B", 11, black)
	lw := pdf.GetStringWidth(p.text(label)) + 2*cellPadding + 1
	pdf.CellFormat(lw, 6, p.text(label), "", 0, "L", false, 0, "")
	p.style("", 11, black)
	pdf.MultiCell(w-lw, 6, p.text(value), "", "L", false)
}

// footer writes the totals as grid rows spanning the first four columns.
func (p *page) footer(s sheet) {
	pdf := p.pdf
	amountW := itemColumns[len(itemColumns)-1].Width
	labelW := p.width() - amountW
	p.ensure(3 * 8)

	rows := []struct {
		label, value string
		total        bool
	}{
		{"Subtotal:", s.Subtotal, false},
		{s.TaxLabel + ":", s.Tax, false},
		{"Total:", s.Total, true},
	}
	pdf.SetDrawColor(midGray.R, midGray.G, midGray.B)
	pdf.SetLineWidth(0.2)
	pdf.SetFillColor(paleGray.R, paleGray.G, paleGray.B)
	for _, r := range rows {
		pdf.SetX(margin)
		p.style("B", 11, black)
		pdf.CellFormat(labelW, 8, p.text(r.label), "1", 0, "R", r.total, 0, "")
		if !r.total {
			p.style("", 11, black)
		}
		pdf.CellFormat(amountW, 8, p.text(r.value), "1", 1, "R", r.total, 0, "")
	}
}
