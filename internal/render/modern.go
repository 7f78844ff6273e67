package render

import (
	"github.com/jung-kurt/gofpdf"

	"invoicer/internal/invoice"
	"invoicer/pkg/models"
)

var indigo = rgb{79, 70, 229}

// modern: colored header band, boxed parties, filled table heading.
type modern struct{}

func (modern) Template() Template { return Modern }

func (modern) Render(inv models.InvoiceData, totals invoice.Totals) (*gofpdf.Fpdf, error) {
	s := newSheet(inv, totals)
	p := newPage(s, "Helvetica")
	pdf := p.pdf

	pageW, _ := pdf.GetPageSize()
	pdf.SetFillColor(indigo.R, indigo.G, indigo.B)
	pdf.Rect(0, 0, pageW, 42, "F")

	pdf.SetXY(margin, 13)
	p.style("B", 30, white)
	pdf.CellFormat(100, 14, p.text("INVOICE"), "", 0, "L", false, 0, "")

	pdf.SetXY(p.right()-80, 10)
	p.style("B", 16, white)
	pdf.CellFormat(80, 8, p.text("#"+s.Number), "", 2, "R", false, 0, "")
	p.style("", 10, white)
	pdf.CellFormat(80, 5.5, p.text("Date: "+s.Date), "", 2, "R", false, 0, "")
	pdf.CellFormat(80, 5.5, p.text("Due: "+s.DueDate), "", 1, "R", false, 0, "")

	pdf.SetY(52)
	p.style("B", 15, darkGray)
	pdf.CellFormat(0, 8, p.text("Subject"), "", 1, "L", false, 0, "")
	p.style("", 12, darkGray)
	p.para(margin, p.width(), 6, s.Subject, "L")
	pdf.Ln(6)

	top := pdf.GetY()
	ps := partyStyle{HeadingSize: 13, HeadingBold: true, Color: darkGray, Muted: midGray}
	from, to := ps, ps
	from.Heading, to.Heading = "From", "To"

	colW := (p.width() - 10) / 2
	left := p.party(margin+4, top+4, colW-8, s.From, from)
	right := p.party(margin+colW+14, top+4, colW-8, s.To, to)
	if right > left {
		left = right
	}
	bottom := left + 4
	pdf.SetDrawColor(lightGray.R, lightGray.G, lightGray.B)
	pdf.SetLineWidth(0.3)
	pdf.Rect(margin, top, colW, bottom-top, "D")
	pdf.Rect(margin+colW+10, top, colW, bottom-top, "D")
	pdf.SetXY(margin, bottom+10)

	p.items(s, tableStyle{
		HeadFill:   &paleGray,
		HeadText:   midGray,
		HeadSize:   10,
		RowRule:    &lightGray,
		Text:       darkGray,
		Size:       10,
		LineHeight: 6,
	})

	p.totals(s, totalsStyle{
		Width:      85,
		Color:      darkGray,
		Muted:      midGray,
		TotalColor: indigo,
		TotalSize:  14,
		Rule:       0.3,
	})

	if s.Notes != "" {
		p.ensure(25)
		y := pdf.GetY()
		pdf.SetXY(margin+4, y+3)
		p.style("B", 13, darkGray)
		pdf.CellFormat(p.width()-8, 7, p.text("Notes"), "", 2, "L", false, 0, "")
		p.style("", 10, midGray)
		p.para(margin+4, p.width()-8, 5, s.Notes, "L")
		pdf.SetDrawColor(lightGray.R, lightGray.G, lightGray.B)
		pdf.Rect(margin, y, p.width(), pdf.GetY()+3-y, "D")
	}

	return p.finish()
}
