// Package invoice holds the invoice model rules and the calculator.
//
// Everything here is a pure function over a models.Draft or its items:
//   - derived totals (subtotal, tax, total) shared by every renderer
//   - the fixed currency formatting rule (Algerian dinar, fr-DZ)
//   - silent normalization of user input (quantity, price, tax rate)
//   - draft defaults and line-item editing
//   - validation of a draft before it is handed to the repository
//
// Derived totals are never persisted; they are recomputed on demand.
package invoice

import (
	"github.com/shopspring/decimal"

	"invoicer/pkg/models"
)

var hundred = decimal.NewFromInt(100)

// Totals are the derived amounts of one invoice.
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// Compute derives the totals of a draft.
func Compute(d models.Draft) Totals {
	subtotal := Subtotal(d.Items)
	tax := taxOn(subtotal, d.TaxRate)
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}
}

// LineAmount is quantity × price of one item.
func LineAmount(item models.InvoiceItem) decimal.Decimal {
	return decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity)))
}

// Subtotal is the sum of all line amounts. It is zero for no items.
func Subtotal(items []models.InvoiceItem) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(LineAmount(item))
	}
	return sum
}

// Tax is subtotal × taxRate / 100.
func Tax(items []models.InvoiceItem, taxRate float64) decimal.Decimal {
	return taxOn(Subtotal(items), taxRate)
}

// Total is subtotal + tax.
func Total(items []models.InvoiceItem, taxRate float64) decimal.Decimal {
	subtotal := Subtotal(items)
	return subtotal.Add(taxOn(subtotal, taxRate))
}

func taxOn(subtotal decimal.Decimal, taxRate float64) decimal.Decimal {
	return subtotal.Mul(decimal.NewFromFloat(taxRate)).Div(hundred)
}
