package render

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicer/internal/invoice"
	"invoicer/pkg/models"
)

func sampleInvoice() models.InvoiceData {
	date, _ := models.ParseDate("2024-05-01")
	inv := models.InvoiceData{
		ID: "3f1c9a4e-0000-4000-8000-000000000001",
		Draft: models.Draft{
			InvoiceNumber:  "INV-2024-042",
			Subject:        "Identité visuelle et site vitrine",
			Date:           date,
			DueDate:        date.AddDays(30),
			CompanyName:    "Atelier Nour",
			CompanyAddress: "12 Rue Didouche Mourad\n16000 Alger",
			ClientName:     "Sarl Tassili",
			ClientAddress:  "5 Boulevard Zighout Youcef\nConstantine",
			Items: []models.InvoiceItem{
				{ID: "a", Description: "Logo design", Quantity: 1, Unit: "pcs", Price: 45000},
				{ID: "b", Description: "Landing page", Quantity: 3, Unit: "day", Price: 18500.5},
			},
			TaxRate: 19,
			Notes:   "Paiement par virement sous 30 jours.",
		},
		CreatedAt: time.Date(2024, time.May, 1, 9, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2024, time.May, 1, 9, 0, 0, 0, time.UTC),
	}
	_ = inv.CompanyFields.Update(models.FieldFiscalID, "000016001234567")
	_ = inv.CompanyFields.Update(models.FieldBankAccount, "")
	_ = inv.CompanyFields.Update(models.FieldArtistCardNumber, "AC-1234")
	_ = inv.ClientFields.Update(models.FieldBusinessRegNumber, "16/00-1234567B22")
	return inv
}

func output(t *testing.T, tpl Template, inv models.InvoiceData) []byte {
	t.Helper()
	r, err := New(tpl)
	require.NoError(t, err)
	assert.Equal(t, tpl, r.Template())

	doc, err := r.Render(inv, invoice.Compute(inv.Draft))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, doc.Output(&buf))
	return buf.Bytes()
}

func TestRenderAllTemplates(t *testing.T) {
	inv := sampleInvoice()
	for _, tpl := range Templates() {
		t.Run(string(tpl), func(t *testing.T) {
			out := output(t, tpl, inv)
			assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")), "not a PDF document")
			assert.Greater(t, len(out), 1000)
		})
	}
}

func TestRenderManyItemsSpansPages(t *testing.T) {
	inv := sampleInvoice()
	inv.Items = nil
	for i := 0; i < 80; i++ {
		inv.Items = append(inv.Items, models.InvoiceItem{
			ID:          fmt.Sprintf("item-%d", i),
			Description: strings.Repeat("Long description that wraps over several lines ", 2),
			Quantity:    i + 1,
			Unit:        "h",
			Price:       1250,
		})
	}

	for _, tpl := range Templates() {
		t.Run(string(tpl), func(t *testing.T) {
			r, err := New(tpl)
			require.NoError(t, err)
			doc, err := r.Render(inv, invoice.Compute(inv.Draft))
			require.NoError(t, err)
			assert.Greater(t, doc.PageCount(), 1)
		})
	}
}

func TestRenderEmptyInvoice(t *testing.T) {
	for _, tpl := range Templates() {
		t.Run(string(tpl), func(t *testing.T) {
			out := output(t, tpl, models.InvoiceData{})
			assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
		})
	}
}

func TestRenderHelper(t *testing.T) {
	doc, err := Render(Classic, sampleInvoice())
	require.NoError(t, err)
	assert.Equal(t, 1, doc.PageCount())

	_, err = Render(Template("fancy"), sampleInvoice())
	assert.ErrorIs(t, err, ErrUnknownTemplate)
}

func TestParseTemplate(t *testing.T) {
	tests := []struct {
		in      string
		want    Template
		wantErr bool
	}{
		{"classic", Classic, false},
		{" Modern ", Modern, false},
		{"MINIMAL", Minimal, false},
		{"excel", Excel, false},
		{"", Modern, false},
		{"fancy", "", true},
	}
	for _, tt := range tests {
		got, err := ParseTemplate(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrUnknownTemplate, "input %q", tt.in)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestTemplatesOrder(t *testing.T) {
	assert.Equal(t, []Template{Classic, Modern, Minimal, Excel}, Templates())
}

func TestNewSheet(t *testing.T) {
	inv := sampleInvoice()
	s := newSheet(inv, invoice.Compute(inv.Draft))

	assert.Equal(t, "INV-2024-042", s.Number)
	assert.Equal(t, "01/05/2024", s.Date)
	assert.Equal(t, "31/05/2024", s.DueDate)
	assert.Equal(t, "Tax (19%)", s.TaxLabel)

	// empty values are not printed, order is canonical
	assert.Equal(t, []labeledValue{
		{"Fiscal ID", "000016001234567"},
		{"Artist Card", "AC-1234"},
	}, s.From.Fields)
	assert.Equal(t, []labeledValue{{"Business Reg.", "16/00-1234567B22"}}, s.To.Fields)

	require.Len(t, s.Lines, 2)
	assert.Equal(t, "3", s.Lines[1].Quantity)
	assert.Equal(t, "55 501,50 DA", plainSpaces.Replace(s.Lines[1].Amount))
	assert.Equal(t, "100 501,50 DA", plainSpaces.Replace(s.Subtotal))
	assert.Equal(t, "19 095,29 DA", plainSpaces.Replace(s.Tax))
	assert.Equal(t, "119 596,79 DA", plainSpaces.Replace(s.Total))
}

func TestFormatRate(t *testing.T) {
	assert.Equal(t, "19", FormatRate(19))
	assert.Equal(t, "9.5", FormatRate(9.5))
	assert.Equal(t, "0", FormatRate(0))
}

func TestTextSummary(t *testing.T) {
	inv := sampleInvoice()
	out := plainSpaces.Replace(TextSummary(inv, invoice.Compute(inv.Draft)))

	assert.Contains(t, out, "INVOICE #INV-2024-042")
	assert.Contains(t, out, "From: Atelier Nour")
	assert.Contains(t, out, "  16000 Alger")
	assert.Contains(t, out, "  Fiscal ID: 000016001234567")
	assert.NotContains(t, out, "Bank Account")
	assert.Contains(t, out, "To: Sarl Tassili")
	assert.Contains(t, out, "Business Reg.: 16/00-1234567B22")
	assert.Contains(t, out, "Landing page")
	assert.Contains(t, out, "Tax (19%)")
	assert.Contains(t, out, "119 596,79 DA")
	assert.Contains(t, out, "Notes:\nPaiement par virement sous 30 jours.")
}
