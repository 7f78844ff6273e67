package docai

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"github.com/shopspring/decimal"

	"invoicer/internal/invoice"
	"invoicer/pkg/models"
)

var hundred = decimal.NewFromInt(100)

// partyFields maps Document AI entity types onto optional party fields.
var partyFields = map[string]struct {
	side models.Side
	key  models.FieldKey
}{
	"supplier_tax_id":       {models.SideCompany, models.FieldFiscalID},
	"supplier_iban":         {models.SideCompany, models.FieldBankAccount},
	"supplier_phone":        {models.SideCompany, models.FieldPhoneNumber},
	"supplier_registration": {models.SideCompany, models.FieldBusinessRegNumber},
	"receiver_tax_id":       {models.SideClient, models.FieldFiscalID},
	"receiver_phone":        {models.SideClient, models.FieldPhoneNumber},
}

type amounts struct {
	net, tax, total          decimal.Decimal
	hasNet, hasTax, hasTotal bool
}

// DraftFromDocument maps a processed document onto a draft based on
// invoice.NewDraft. Missing values keep their defaults; the tax rate is
// derived from the net and tax amounts when both are present.
func (p *Processor) DraftFromDocument(doc *documentaipb.Document) (*models.Draft, map[string]float32, error) {
	const op = "DraftFromDocument"

	d := invoice.NewDraft(p.now())
	d.Items = nil
	confidence := make(map[string]float32)

	var (
		sums                amounts
		hasDate, hasDueDate bool
		matched             int
	)

	for _, entity := range doc.GetEntities() {
		entityType := entity.GetType()
		value := strings.TrimSpace(entity.GetMentionText())

		p.log.Debug().
			Str("entity_type", entityType).
			Str("value", value).
			Float32("confidence", entity.GetConfidence()).
			Msg("Processing Document AI entity")

		switch entityType {
		case "invoice_id":
			d.InvoiceNumber = value
		case "invoice_date":
			if date, err := extractDate(entity); err == nil {
				d.Date, hasDate = date, true
			} else {
				p.log.Warn().Err(err).Str("raw_value", value).Msg("Failed to extract invoice date")
			}
		case "due_date":
			if date, err := extractDate(entity); err == nil {
				d.DueDate, hasDueDate = date, true
			} else {
				p.log.Warn().Err(err).Str("raw_value", value).Msg("Failed to extract due date")
			}
		case "supplier_name":
			d.CompanyName = value
		case "supplier_address":
			d.CompanyAddress = value
		case "receiver_name":
			d.ClientName = value
		case "receiver_address":
			d.ClientAddress = value
		case "supplier_tax_id", "supplier_iban", "supplier_phone", "supplier_registration",
			"receiver_tax_id", "receiver_phone":
			target := partyFields[entityType]
			if value != "" {
				if err := d.Fields(target.side).Update(target.key, value); err != nil {
					p.log.Warn().Err(err).Str("entity_type", entityType).Msg("Failed to set party field")
				}
			}
		case "net_amount":
			sums.net, sums.hasNet = p.amount(entity, sums.net, sums.hasNet)
		case "total_tax_amount":
			sums.tax, sums.hasTax = p.amount(entity, sums.tax, sums.hasTax)
		case "total_amount":
			sums.total, sums.hasTotal = p.amount(entity, sums.total, sums.hasTotal)
		case "line_item":
			if item, ok := extractItem(entity); ok {
				d.Items = append(d.Items, item)
			}
		case "purchase_order":
			if value != "" {
				d.Notes = strings.TrimSpace(d.Notes + "\nPurchase order: " + value)
			}
		default:
			continue
		}
		confidence[entityType] = entity.GetConfidence()
		matched++
	}

	if matched == 0 {
		return nil, nil, WrapProcessingError(op, ErrNothingExtracted, fmt.Sprintf("%d entities", len(doc.GetEntities())))
	}

	if d.InvoiceNumber == "" {
		if number := invoiceNumberFromText(doc.GetText()); number != "" {
			d.InvoiceNumber = number
			confidence["invoice_number_fallback"] = 0.6
			p.log.Info().Str("fallback_number", number).Msg("Invoice number extracted using fallback strategy")
		} else {
			d.InvoiceNumber = invoice.GenerateInvoiceNumber(p.now())
		}
	}

	if hasDate && !hasDueDate || d.DueDate.Before(d.Date) {
		d.DueDate = d.Date.AddDays(invoice.DefaultDueDays)
	}

	sums.complete()
	if sums.hasNet && sums.hasTax && sums.net.IsPositive() {
		rate := sums.tax.Div(sums.net).Mul(hundred).Round(2)
		d.TaxRate = invoice.ClampTaxRate(rate.InexactFloat64())
	}

	if len(d.Items) == 0 {
		item := invoice.NewItem()
		if sums.hasNet {
			item.Description = "Imported amount"
			item.Price = invoice.ClampPrice(sums.net.InexactFloat64())
		}
		d.Items = append(d.Items, item)
	}

	if d.Subject == "" {
		d.Subject = subjectFor(d)
	}

	invoice.Normalize(&d)

	p.log.Info().
		Str("invoice_number", d.InvoiceNumber).
		Int("items", len(d.Items)).
		Float64("tax_rate", d.TaxRate).
		Str("net_amount", sums.net.String()).
		Msg("Document AI extraction completed")

	return &d, confidence, nil
}

func (p *Processor) amount(entity *documentaipb.Document_Entity, current decimal.Decimal, has bool) (decimal.Decimal, bool) {
	v, err := moneyValue(entity)
	if err != nil {
		p.log.Warn().Err(err).Str("raw_value", entity.GetMentionText()).Msg("Failed to extract amount")
		return current, has
	}
	return v, true
}

// complete fills in one missing amount from the other two.
func (a *amounts) complete() {
	switch {
	case a.hasNet && a.hasTax && !a.hasTotal:
		a.total, a.hasTotal = a.net.Add(a.tax), true
	case a.hasTotal && a.hasTax && !a.hasNet:
		a.net, a.hasNet = a.total.Sub(a.tax), true
	case a.hasTotal && a.hasNet && !a.hasTax:
		a.tax, a.hasTax = a.total.Sub(a.net), true
	}
}

func subjectFor(d models.Draft) string {
	for _, item := range d.Items {
		if s := strings.TrimSpace(item.Description); s != "" && s != "Imported amount" {
			return s
		}
	}
	return "Invoice " + d.InvoiceNumber
}

// extractItem reads a line_item entity from its properties.
func extractItem(entity *documentaipb.Document_Entity) (models.InvoiceItem, bool) {
	item := invoice.NewItem()
	var (
		lineAmount         decimal.Decimal
		hasPrice, hasTotal bool
	)

	for _, prop := range entity.GetProperties() {
		value := strings.TrimSpace(prop.GetMentionText())
		switch prop.GetType() {
		case "line_item/description":
			item.Description = value
		case "line_item/quantity":
			item.Quantity = invoice.ParseQuantity(value)
		case "line_item/unit":
			if value != "" {
				item.Unit = value
			}
		case "line_item/unit_price":
			if v, err := moneyValue(prop); err == nil {
				item.Price, hasPrice = invoice.ClampPrice(v.InexactFloat64()), true
			}
		case "line_item/amount":
			if v, err := moneyValue(prop); err == nil {
				lineAmount, hasTotal = v, true
			}
		}
	}

	if item.Description == "" {
		if first, _, _ := strings.Cut(strings.TrimSpace(entity.GetMentionText()), "\n"); first != "" {
			item.Description = first
		}
	}
	if !hasPrice && hasTotal {
		unit := lineAmount.Div(decimal.NewFromInt(int64(item.Quantity))).Round(2)
		item.Price = invoice.ClampPrice(unit.InexactFloat64())
		hasPrice = true
	}
	return item, item.Description != "" || hasPrice
}

var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"02.01.2006",
	"02-01-2006",
	"2006/01/02",
	"2 January 2006",
	"2 Jan 2006",
	"January 2, 2006",
	"Jan 2, 2006",
}

// extractDate prefers the normalized value and falls back to parsing the
// mention text, day first.
func extractDate(entity *documentaipb.Document_Entity) (models.Date, error) {
	if dv := entity.GetNormalizedValue().GetDateValue(); dv != nil && dv.GetYear() > 0 {
		t := time.Date(int(dv.GetYear()), time.Month(dv.GetMonth()), int(dv.GetDay()), 0, 0, 0, 0, time.UTC)
		return models.DateOf(t), nil
	}

	raw := strings.TrimSpace(entity.GetMentionText())
	if raw == "" {
		return models.Date{}, fmt.Errorf("empty date value")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return models.DateOf(t), nil
		}
	}
	return models.Date{}, fmt.Errorf("unable to parse date: %s", raw)
}

// moneyValue prefers the normalized value and falls back to parsing the
// mention text.
func moneyValue(entity *documentaipb.Document_Entity) (decimal.Decimal, error) {
	if mv := entity.GetNormalizedValue().GetMoneyValue(); mv != nil {
		return decimal.New(mv.GetUnits(), 0).Add(decimal.New(int64(mv.GetNanos()), -9)), nil
	}
	raw := strings.TrimSpace(entity.GetMentionText())
	if raw == "" {
		return decimal.Zero, fmt.Errorf("empty amount value")
	}
	return parseAmount(raw)
}

// parseAmount reads amounts written with either separator convention:
// "1 234,56 DA", "7.303,08", "1,234.56", "45000".
func parseAmount(raw string) (decimal.Decimal, error) {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) || r == '.' || r == ',' || r == '-' {
			return r
		}
		return -1
	}, raw)
	cleaned = strings.Trim(cleaned, ".,")

	lastComma := strings.LastIndex(cleaned, ",")
	lastDot := strings.LastIndex(cleaned, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(cleaned, ",") == 1 && len(cleaned)-lastComma-1 <= 2 {
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case strings.Count(cleaned, ".") > 1:
		cleaned = strings.ReplaceAll(cleaned, ".", "")
	}

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("unable to parse amount: %s (cleaned: %s)", raw, cleaned)
	}
	return amount, nil
}

var invoiceNumberPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:facture|invoice|inv)\s*(?:n°|no\.?|nr\.?|number|#)?\s*[:\-]?\s*([A-Z0-9][A-Z0-9/\-]{3,19})`),
	regexp.MustCompile(`(?i)(?:^|\s)(?:n°|no\.?|#)\s*([A-Z0-9][A-Z0-9/\-]{3,19})`),
}

// invoiceNumberFromText searches the OCR text for an invoice number when the
// parser did not return one. Candidates must contain a digit.
func invoiceNumberFromText(text string) string {
	for _, re := range invoiceNumberPatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if candidate := strings.TrimSpace(m[1]); strings.ContainsAny(candidate, "0123456789") {
				return candidate
			}
		}
	}
	return ""
}
