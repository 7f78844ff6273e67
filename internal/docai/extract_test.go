package docai

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicer/pkg/models"
)

func entity(typ, text string, conf float32, props ...*documentaipb.Document_Entity) *documentaipb.Document_Entity {
	return &documentaipb.Document_Entity{Type: typ, MentionText: text, Confidence: conf, Properties: props}
}

func testProcessor() *Processor {
	p := NewWithClient(Config{ProjectID: "p", ProcessorID: "x"}, nil)
	p.now = func() time.Time { return time.Date(2024, time.June, 10, 8, 0, 0, 0, time.UTC) }
	return p
}

func TestDraftFromDocument(t *testing.T) {
	doc := &documentaipb.Document{
		Entities: []*documentaipb.Document_Entity{
			entity("invoice_id", "FA-2024-0157", 0.98),
			entity("invoice_date", "15/05/2024", 0.95),
			entity("due_date", "14/06/2024", 0.9),
			entity("supplier_name", "Atelier Nour", 0.97),
			entity("supplier_address", "12 Rue Didouche Mourad, Alger", 0.9),
			entity("supplier_tax_id", "000016001234567", 0.88),
			entity("supplier_iban", "DZ58 0020 0000 1234 5678 9012", 0.8),
			entity("supplier_registration", "16/00-1234567B22", 0.7),
			entity("receiver_name", "Sarl Tassili", 0.96),
			entity("receiver_address", "Constantine", 0.9),
			entity("line_item", "Logo design 1 45 000,00", 0.9,
				entity("line_item/description", "Logo design", 0.9),
				entity("line_item/quantity", "1", 0.9),
				entity("line_item/unit_price", "45 000,00 DA", 0.9),
			),
			entity("line_item", "Landing page 3 jours 55 501,50", 0.9,
				entity("line_item/description", "Landing page", 0.9),
				entity("line_item/quantity", "3", 0.9),
				entity("line_item/unit", "jour", 0.9),
				entity("line_item/amount", "55 501,50", 0.9),
			),
			entity("net_amount", "100 501,50 DA", 0.93),
			entity("total_tax_amount", "19 095,29 DA", 0.93),
			entity("total_amount", "119 596,79 DA", 0.93),
			entity("vat/category_code", "S", 0.5),
		},
	}

	d, confidence, err := testProcessor().DraftFromDocument(doc)
	require.NoError(t, err)

	assert.Equal(t, "FA-2024-0157", d.InvoiceNumber)
	assert.Equal(t, "2024-05-15", d.Date.String())
	assert.Equal(t, "2024-06-14", d.DueDate.String())
	assert.Equal(t, "Atelier Nour", d.CompanyName)
	assert.Equal(t, "Sarl Tassili", d.ClientName)
	assert.Equal(t, "Logo design", d.Subject)

	fiscal, ok := d.CompanyFields.Get(models.FieldFiscalID)
	assert.True(t, ok)
	assert.Equal(t, "000016001234567", fiscal)
	assert.True(t, d.CompanyFields.Has(models.FieldBankAccount))
	assert.True(t, d.CompanyFields.Has(models.FieldBusinessRegNumber))
	assert.Zero(t, d.ClientFields.Len())

	require.Len(t, d.Items, 2)
	assert.Equal(t, "Logo design", d.Items[0].Description)
	assert.Equal(t, 45000.0, d.Items[0].Price)
	assert.Equal(t, "pcs", d.Items[0].Unit)
	assert.Equal(t, 3, d.Items[1].Quantity)
	assert.Equal(t, "jour", d.Items[1].Unit)
	assert.Equal(t, 18500.5, d.Items[1].Price)

	assert.Equal(t, 19.0, d.TaxRate)

	assert.Equal(t, float32(0.98), confidence["invoice_id"])
	assert.NotContains(t, confidence, "vat/category_code")
}

func TestDraftFromDocumentDefaults(t *testing.T) {
	doc := &documentaipb.Document{
		Text: "FACTURE N° 2024-0099\nClient: Sarl Tassili",
		Entities: []*documentaipb.Document_Entity{
			entity("supplier_name", "Atelier Nour", 0.9),
			entity("net_amount", "1.250,00", 0.9),
		},
	}

	d, confidence, err := testProcessor().DraftFromDocument(doc)
	require.NoError(t, err)

	assert.Equal(t, "2024-0099", d.InvoiceNumber)
	assert.Equal(t, float32(0.6), confidence["invoice_number_fallback"])
	assert.Equal(t, "2024-06-10", d.Date.String())
	assert.Equal(t, "2024-07-10", d.DueDate.String())
	assert.Equal(t, 19.0, d.TaxRate)

	require.Len(t, d.Items, 1)
	assert.Equal(t, "Imported amount", d.Items[0].Description)
	assert.Equal(t, 1250.0, d.Items[0].Price)
	assert.Equal(t, "Invoice 2024-0099", d.Subject)
}

func TestDraftFromDocumentTaxRateIsClamped(t *testing.T) {
	doc := &documentaipb.Document{
		Entities: []*documentaipb.Document_Entity{
			entity("net_amount", "100", 0.9),
			entity("total_tax_amount", "250", 0.9),
		},
	}
	d, _, err := testProcessor().DraftFromDocument(doc)
	require.NoError(t, err)
	assert.Equal(t, 100.0, d.TaxRate)
}

func TestDraftFromDocumentDerivesMissingAmount(t *testing.T) {
	doc := &documentaipb.Document{
		Entities: []*documentaipb.Document_Entity{
			entity("total_amount", "1 090,00", 0.9),
			entity("total_tax_amount", "90,00", 0.9),
		},
	}
	d, _, err := testProcessor().DraftFromDocument(doc)
	require.NoError(t, err)
	assert.Equal(t, 9.0, d.TaxRate)
	assert.Equal(t, 1000.0, d.Items[0].Price)
}

func TestDraftFromDocumentNothingExtracted(t *testing.T) {
	doc := &documentaipb.Document{
		Entities: []*documentaipb.Document_Entity{entity("vat/category_code", "S", 0.5)},
	}
	_, _, err := testProcessor().DraftFromDocument(doc)
	assert.ErrorIs(t, err, ErrNothingExtracted)

	var procErr *ProcessingError
	require.True(t, errors.As(err, &procErr))
	assert.Equal(t, "DraftFromDocument", procErr.Op)
}

func TestParseAmount(t *testing.T) {
	tests := map[string]string{
		"1 234,56 DA":   "1234.56",
		"7.303,08":      "7303.08",
		"1,234.56":      "1234.56",
		"45000":         "45000",
		"1,234":         "1234",
		"12,5":          "12.5",
		"DZD 1.000.000": "1000000",
		"-15,00":        "-15",
	}
	for raw, want := range tests {
		got, err := parseAmount(raw)
		require.NoError(t, err, "raw %q", raw)
		assert.Equal(t, want, got.String(), "raw %q", raw)
	}

	_, err := parseAmount("n/a")
	assert.Error(t, err)
}

func TestExtractDate(t *testing.T) {
	for _, raw := range []string{"2024-05-15", "15/05/2024", "15.05.2024", "15 May 2024", "May 15, 2024"} {
		d, err := extractDate(entity("invoice_date", raw, 1))
		require.NoError(t, err, "raw %q", raw)
		assert.Equal(t, "2024-05-15", d.String(), "raw %q", raw)
	}

	_, err := extractDate(entity("invoice_date", "sometime", 1))
	assert.Error(t, err)
}

func TestInvoiceNumberFromText(t *testing.T) {
	tests := map[string]string{
		"FACTURE N° 2024-0157":         "2024-0157",
		"Invoice number: INV-2024-001": "INV-2024-001",
		"Facture\nDate: 12/05/2024":    "",
		"Ref. No. 77881":               "77881",
		"nothing to see here":          "",
	}
	for text, want := range tests {
		assert.Equal(t, want, invoiceNumberFromText(text), "text %q", text)
	}
}

func TestExtractDraftRejectsBadInput(t *testing.T) {
	p := testProcessor()
	ctx := context.Background()

	_, _, err := p.ExtractDraft(ctx, bytes.NewReader([]byte("hello")))
	assert.ErrorIs(t, err, ErrInvalidPDF)

	big := make([]byte, MaxDocumentSizeBytes+10)
	copy(big, "%PDF")
	_, _, err = p.ExtractDraft(ctx, bytes.NewReader(big))
	assert.ErrorIs(t, err, ErrDocumentTooLarge)

	_, _, err = p.ExtractDraft(ctx, bytes.NewReader([]byte("%PDF-1.4")))
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestConfig(t *testing.T) {
	assert.ErrorIs(t, Config{}.Validate(), ErrInvalidConfiguration)
	assert.ErrorIs(t, Config{ProjectID: "p"}.Validate(), ErrInvalidConfiguration)
	assert.NoError(t, Config{ProjectID: "p", ProcessorID: "x"}.Validate())

	assert.Equal(t, "projects/p/locations/us/processors/x", Config{ProjectID: "p", ProcessorID: "x"}.processorName())
	assert.Equal(t, "projects/p/locations/eu/processors/x/processorVersions/v2",
		Config{ProjectID: "p", Location: "eu", ProcessorID: "x", ProcessorVersion: "v2"}.processorName())
}

func TestPartyFieldsMapToKnownKeys(t *testing.T) {
	for entityType, target := range partyFields {
		assert.True(t, target.key.Valid(), "entity %s", entityType)

		var d models.Draft
		require.NoError(t, d.Fields(target.side).Update(target.key, "x"), "entity %s", entityType)
		assert.True(t, d.Fields(target.side).Has(target.key), "entity %s", entityType)
	}
}
