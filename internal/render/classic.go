package render

import (
	"github.com/jung-kurt/gofpdf"

	"invoicer/internal/invoice"
	"invoicer/pkg/models"
)

// classic: plain header with the dates on the right, ruled table.
type classic struct{}

func (classic) Template() Template { return Classic }

func (classic) Render(inv models.InvoiceData, totals invoice.Totals) (*gofpdf.Fpdf, error) {
	s := newSheet(inv, totals)
	p := newPage(s, "Helvetica")
	pdf := p.pdf

	top := pdf.GetY()
	p.style("B", 26, darkGray)
	pdf.CellFormat(100, 12, p.text("INVOICE"), "", 2, "L", false, 0, "")
	p.style("", 11, midGray)
	pdf.CellFormat(100, 6, p.text("#"+s.Number), "", 0, "L", false, 0, "")

	pdf.SetXY(p.right()-80, top+2)
	p.style("B", 10, midGray)
	pdf.CellFormat(80, 6, p.text("Date: "+s.Date), "", 2, "R", false, 0, "")
	pdf.CellFormat(80, 6, p.text("Due Date: "+s.DueDate), "", 1, "R", false, 0, "")

	pdf.SetY(top + 28)
	p.style("B", 13, darkGray)
	pdf.CellFormat(0, 7, p.text("Subject"), "", 1, "L", false, 0, "")
	p.style("", 11, darkGray)
	p.para(margin, p.width(), 5.5, s.Subject, "L")
	pdf.Ln(6)

	ps := partyStyle{HeadingSize: 12, HeadingBold: true, Color: darkGray, Muted: midGray}
	from, to := ps, ps
	from.Heading, to.Heading = "From:", "To:"
	p.parties(s, from, to)
	pdf.Ln(8)

	p.items(s, tableStyle{
		HeadText:   darkGray,
		HeadBold:   true,
		HeadSize:   10,
		HeadRule:   0.6,
		RowRule:    &lightGray,
		Text:       darkGray,
		Size:       10,
		LineHeight: 5,
	})

	p.totals(s, totalsStyle{
		LabelSuffix: ":",
		Width:       80,
		Color:       darkGray,
		Muted:       darkGray,
		TotalColor:  black,
		TotalSize:   11,
		Rule:        0.6,
	})

	if s.Notes != "" {
		p.rule(pdf.GetY(), lightGray, 0.2)
		pdf.Ln(3)
	}
	p.notes(s, "Notes:", "B", 12, midGray)

	return p.finish()
}
