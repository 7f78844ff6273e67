package invoice

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"invoicer/pkg/models"
)

func items(pairs ...float64) []models.InvoiceItem {
	var out []models.InvoiceItem
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, models.InvoiceItem{Quantity: int(pairs[i]), Price: pairs[i+1], Unit: DefaultUnit})
	}
	return out
}

func TestCompute(t *testing.T) {
	tests := []struct {
		name     string
		items    []models.InvoiceItem
		rate     float64
		subtotal string
		tax      string
		total    string
	}{
		{"two lines at 19%", items(2, 100, 1, 50), 19, "250", "47.5", "297.5"},
		{"zero rate", items(3, 10), 0, "30", "0", "30"},
		{"full rate", items(1, 80), 100, "80", "80", "160"},
		{"no items", nil, 19, "0", "0", "0"},
		{"fractional price", items(3, 0.1), 10, "0.3", "0.03", "0.33"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(models.Draft{Items: tt.items, TaxRate: tt.rate})
			assert.True(t, got.Subtotal.Equal(decimal.RequireFromString(tt.subtotal)), "subtotal %s", got.Subtotal)
			assert.True(t, got.Tax.Equal(decimal.RequireFromString(tt.tax)), "tax %s", got.Tax)
			assert.True(t, got.Total.Equal(decimal.RequireFromString(tt.total)), "total %s", got.Total)
		})
	}
}

func TestTotalIsSubtotalPlusTax(t *testing.T) {
	lines := items(7, 13.37, 2, 99.99, 11, 0.5)
	for _, rate := range []float64{0, 7, 9.5, 19, 100} {
		sum := Subtotal(lines).Add(Tax(lines, rate))
		assert.True(t, Total(lines, rate).Equal(sum), "rate %v", rate)
	}
}

func TestLineAmount(t *testing.T) {
	got := LineAmount(models.InvoiceItem{Quantity: 4, Price: 12.25})
	assert.Equal(t, "49", got.String())
}
