package render

import (
	"github.com/jung-kurt/gofpdf"

	"invoicer/internal/invoice"
	"invoicer/pkg/models"
)

var faintGray = rgb{229, 231, 235}

// minimal: light type, uppercase small captions, hairline rules.
type minimal struct{}

func (minimal) Template() Template { return Minimal }

func (minimal) Render(inv models.InvoiceData, totals invoice.Totals) (*gofpdf.Fpdf, error) {
	s := newSheet(inv, totals)
	p := newPage(s, "Helvetica")
	pdf := p.pdf

	top := pdf.GetY()
	p.style("", 22, black)
	pdf.CellFormat(100, 10, p.text("INVOICE"), "", 0, "L", false, 0, "")
	pdf.SetXY(p.right()-80, top+1)
	p.style("", 14, midGray)
	pdf.CellFormat(80, 8, p.text("#"+s.Number), "", 1, "R", false, 0, "")

	pdf.SetY(top + 14)
	p.style("", 9, midGray)
	pdf.CellFormat(0, 5, p.text("Date: "+s.Date), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, p.text("Due Date: "+s.DueDate), "", 1, "L", false, 0, "")
	pdf.Ln(4)
	p.rule(pdf.GetY(), faintGray, 0.2)
	pdf.Ln(8)

	p.style("", 14, black)
	p.para(margin, p.width(), 6.5, s.Subject, "L")
	pdf.Ln(8)

	ps := partyStyle{HeadingSize: 8, Color: black, Muted: midGray}
	from, to := ps, ps
	from.Heading, to.Heading = "FROM", "TO"
	p.parties(s, from, to)
	pdf.Ln(12)

	p.items(s, tableStyle{
		HeadText:   midGray,
		HeadUpper:  true,
		HeadSize:   8,
		HeadRule:   0.2,
		RowRule:    &faintGray,
		Text:       black,
		Size:       10,
		LineHeight: 6,
	})

	p.totals(s, totalsStyle{
		Width:      75,
		Color:      black,
		Muted:      midGray,
		TotalColor: black,
		TotalSize:  11,
		Rule:       0.2,
	})

	p.notes(s, "NOTES", "", 8, midGray)

	return p.finish()
}
