package render

import (
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

const (
	margin       = 15.0
	bottomMargin = 20.0
	cellPadding  = 1.0
)

type rgb struct{ R, G, B int }

var (
	black     = rgb{0, 0, 0}
	darkGray  = rgb{55, 65, 81}
	midGray   = rgb{107, 114, 128}
	lightGray = rgb{209, 213, 219}
	paleGray  = rgb{243, 244, 246}
	white     = rgb{255, 255, 255}
)

type column struct {
	Title string
	Width float64
	Align string
}

// itemColumns spans the 180mm content width of an A4 page.
var itemColumns = []column{
	{"Description", 78, "L"},
	{"Quantity", 22, "R"},
	{"Unit", 20, "R"},
	{"Price", 30, "R"},
	{"Amount", 30, "R"},
}

// gofpdf core fonts only cover cp1252; the narrow no-break space used for
// digit grouping is not in it.
var plainSpaces = strings.NewReplacer("\u00a0", " ", "\u202f", " ", "\u2009", " ")

// page wraps a document with the helpers shared by all templates.
type page struct {
	pdf  *gofpdf.Fpdf
	font string
	tr   func(string) string
}

func newPage(s sheet, font string) *page {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, bottomMargin)
	pdf.SetTitle("Invoice "+s.Number, true)
	pdf.SetSubject(s.Subject, true)
	pdf.SetAuthor(s.From.Name, true)
	pdf.SetCreator("invoicer", true)
	pdf.AliasNbPages("")

	p := &page{pdf: pdf, font: font, tr: pdf.UnicodeTranslatorFromDescriptor("")}
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		p.style("I", 8, midGray)
		pdf.CellFormat(0, 5, p.text(fmt.Sprintf("%s  |  %d/{nb}", s.Number, pdf.PageNo())), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()
	return p
}

func (p *page) text(s string) string {
	return p.tr(plainSpaces.Replace(s))
}

func (p *page) style(fontStyle string, size float64, c rgb) {
	p.pdf.SetFont(p.font, fontStyle, size)
	p.pdf.SetTextColor(c.R, c.G, c.B)
}

func (p *page) width() float64 {
	w, _ := p.pdf.GetPageSize()
	return w - 2*margin
}

func (p *page) right() float64 {
	return margin + p.width()
}

// ensure starts a new page unless h millimetres still fit on this one.
func (p *page) ensure(h float64) {
	_, pageH := p.pdf.GetPageSize()
	if p.pdf.GetY()+h > pageH-bottomMargin {
		p.pdf.AddPage()
	}
}

func (p *page) rule(y float64, c rgb, lineWidth float64) {
	p.pdf.SetDrawColor(c.R, c.G, c.B)
	p.pdf.SetLineWidth(lineWidth)
	p.pdf.Line(margin, y, p.right(), y)
}

// para writes a wrapped paragraph at x with width w.
func (p *page) para(x, w, h float64, s, align string) {
	if s == "" {
		return
	}
	p.pdf.SetX(x)
	p.pdf.MultiCell(w, h, p.text(s), "", align, false)
}

type partyStyle struct {
	Heading     string
	HeadingSize float64
	HeadingBold bool
	HeadingRule bool
	Color       rgb
	Muted       rgb
}

// party writes one party block and returns the y position below it.
func (p *page) party(x, y, w float64, pt party, ps partyStyle) float64 {
	pdf := p.pdf
	pdf.SetXY(x, y)

	headStyle := ""
	if ps.HeadingBold {
		headStyle = "B"
	}
	p.style(headStyle, ps.HeadingSize, ps.Muted)
	pdf.CellFormat(w, 7, p.text(ps.Heading), "", 2, "L", false, 0, "")
	if ps.HeadingRule {
		pdf.SetDrawColor(midGray.R, midGray.G, midGray.B)
		pdf.SetLineWidth(0.5)
		pdf.Line(x, pdf.GetY(), x+w, pdf.GetY())
		pdf.SetY(pdf.GetY() + 1.5)
	}

	p.style("B", 11, ps.Color)
	p.para(x, w, 5.5, pt.Name, "L")

	p.style("", 10, ps.Muted)
	p.para(x, w, 5, pt.Address, "L")

	for _, f := range pt.Fields {
		pdf.SetX(x)
		p.style("B", 9, ps.Muted)
		label := p.text(f.Label + ": ")
		lw := pdf.GetStringWidth(label) + 2*cellPadding
		pdf.CellFormat(lw, 4.5, label, "", 0, "L", false, 0, "")
		p.style("", 9, ps.Muted)
		pdf.MultiCell(w-lw, 4.5, p.text(f.Value), "", "L", false)
	}
	return pdf.GetY()
}

// parties writes the From and To blocks side by side.
func (p *page) parties(s sheet, from, to partyStyle) {
	y := p.pdf.GetY()
	colW := (p.width() - 10) / 2
	left := p.party(margin, y, colW, s.From, from)
	right := p.party(margin+colW+10, y, colW, s.To, to)
	if right > left {
		left = right
	}
	p.pdf.SetXY(margin, left)
}

type tableStyle struct {
	HeadFill   *rgb
	HeadText   rgb
	HeadBold   bool
	HeadUpper  bool
	HeadSize   float64
	HeadRule   float64 // width of the line under the heading, 0 for none
	Grid       bool
	RowRule    *rgb
	Zebra      *rgb
	Text       rgb
	Size       float64
	LineHeight float64
}

// items writes the line item table, repeating the heading on every page.
func (p *page) items(s sheet, ts tableStyle) {
	p.tableHead(ts)
	for i, ln := range s.Lines {
		values := []string{ln.Description, ln.Quantity, ln.Unit, ln.Price, ln.Amount}
		var fill *rgb
		if ts.Zebra != nil && i%2 == 1 {
			fill = ts.Zebra
		}
		p.style("", ts.Size, ts.Text)
		if !p.row(values, ts, fill, true) {
			p.pdf.AddPage()
			p.tableHead(ts)
			p.style("", ts.Size, ts.Text)
			p.row(values, ts, fill, false)
		}
	}
}

func (p *page) tableHead(ts tableStyle) {
	titles := make([]string, len(itemColumns))
	for i, c := range itemColumns {
		titles[i] = c.Title
		if ts.HeadUpper {
			titles[i] = strings.ToUpper(c.Title)
		}
	}
	fontStyle := ""
	if ts.HeadBold {
		fontStyle = "B"
	}
	p.style(fontStyle, ts.HeadSize, ts.HeadText)
	head := ts
	head.RowRule = nil
	p.row(titles, head, ts.HeadFill, false)
	if ts.HeadRule > 0 {
		p.rule(p.pdf.GetY(), lightGray, ts.HeadRule)
	}
}

// row writes one table row with wrapped cells in the current font. With
// fitOnly it writes nothing and returns false when the row does not fit on
// the current page.
func (p *page) row(values []string, ts tableStyle, fill *rgb, fitOnly bool) bool {
	pdf := p.pdf

	cells := make([][]string, len(itemColumns))
	n := 1
	for i, c := range itemColumns {
		for _, l := range pdf.SplitLines([]byte(p.text(values[i])), c.Width-2*cellPadding) {
			cells[i] = append(cells[i], string(l))
		}
		if len(cells[i]) > n {
			n = len(cells[i])
		}
	}
	h := float64(n)*ts.LineHeight + 2*cellPadding

	_, pageH := pdf.GetPageSize()
	y := pdf.GetY()
	if fitOnly && y+h > pageH-bottomMargin {
		return false
	}

	x := margin
	for i, c := range itemColumns {
		if fill != nil {
			pdf.SetFillColor(fill.R, fill.G, fill.B)
			pdf.Rect(x, y, c.Width, h, "F")
		}
		if ts.Grid {
			pdf.SetDrawColor(midGray.R, midGray.G, midGray.B)
			pdf.SetLineWidth(0.2)
			pdf.Rect(x, y, c.Width, h, "D")
		}
		for j, l := range cells[i] {
			pdf.SetXY(x, y+cellPadding+float64(j)*ts.LineHeight)
			pdf.CellFormat(c.Width, ts.LineHeight, l, "", 0, c.Align, false, 0, "")
		}
		x += c.Width
	}
	if ts.RowRule != nil {
		p.rule(y+h, *ts.RowRule, 0.2)
	}
	pdf.SetXY(margin, y+h)
	return true
}

type totalsStyle struct {
	LabelSuffix string
	Width       float64
	Color       rgb
	Muted       rgb
	TotalColor  rgb
	TotalSize   float64
	Rule        float64
}

// totals writes subtotal, tax and total right-aligned under the table.
func (p *page) totals(s sheet, ts totalsStyle) {
	pdf := p.pdf
	p.ensure(30)
	x := p.right() - ts.Width
	labelW := ts.Width * 0.5

	pdf.SetY(pdf.GetY() + 4)
	for _, r := range [][2]string{{"Subtotal", s.Subtotal}, {s.TaxLabel, s.Tax}} {
		pdf.SetX(x)
		p.style("", 10, ts.Muted)
		pdf.CellFormat(labelW, 6.5, p.text(r[0]+ts.LabelSuffix), "", 0, "L", false, 0, "")
		p.style("", 10, ts.Color)
		pdf.CellFormat(ts.Width-labelW, 6.5, p.text(r[1]), "", 1, "R", false, 0, "")
	}

	y := pdf.GetY() + 1
	if ts.Rule > 0 {
		pdf.SetDrawColor(lightGray.R, lightGray.G, lightGray.B)
		pdf.SetLineWidth(ts.Rule)
		pdf.Line(x, y, p.right(), y)
	}
	pdf.SetXY(x, y+1.5)
	p.style("B", ts.TotalSize, ts.TotalColor)
	pdf.CellFormat(labelW, 8, p.text("Total"+ts.LabelSuffix), "", 0, "L", false, 0, "")
	pdf.CellFormat(ts.Width-labelW, 8, p.text(s.Total), "", 1, "R", false, 0, "")
	pdf.SetY(pdf.GetY() + 6)
}

// notes writes the notes section, if any.
func (p *page) notes(s sheet, heading string, headingStyle string, headingSize float64, c rgb) {
	if strings.TrimSpace(s.Notes) == "" {
		return
	}
	p.ensure(20)
	p.style(headingStyle, headingSize, darkGray)
	p.pdf.CellFormat(0, 7, p.text(heading), "", 1, "L", false, 0, "")
	p.style("", 10, c)
	p.para(margin, p.width(), 5, s.Notes, "L")
}

func (p *page) finish() (*gofpdf.Fpdf, error) {
	if err := p.pdf.Error(); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return p.pdf, nil
}
