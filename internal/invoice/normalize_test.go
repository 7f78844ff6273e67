package invoice

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"invoicer/pkg/models"
)

func TestParseQuantity(t *testing.T) {
	tests := map[string]int{
		"3":     3,
		"0":     1,
		"-5":    1,
		"abc":   1,
		"":      1,
		"2.9":   2,
		"4 pcs": 4,
		" 12 ":  12,

		"99999999999999999999":  math.MaxInt,
		"-99999999999999999999": 1,
	}
	for raw, want := range tests {
		assert.Equal(t, want, ParseQuantity(raw), "raw %q", raw)
	}
}

func TestParsePrice(t *testing.T) {
	tests := map[string]float64{
		"12.5":  12.5,
		"-1":    0,
		"abc":   0,
		"":      0,
		"7e2":   700,
		"3.25x": 3.25,
		".5":    0.5,
	}
	for raw, want := range tests {
		assert.Equal(t, want, ParsePrice(raw), "raw %q", raw)
	}
}

func TestParseTaxRate(t *testing.T) {
	tests := map[string]float64{
		"19":  19,
		"150": 100,
		"-10": 0,
		"abc": 0,
		"9.5": 9.5,
	}
	for raw, want := range tests {
		assert.Equal(t, want, ParseTaxRate(raw), "raw %q", raw)
	}
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 1, ClampQuantity(-3))
	assert.Equal(t, 5, ClampQuantity(5))
	assert.Equal(t, 0.0, ClampPrice(math.NaN()))
	assert.Equal(t, 0.0, ClampPrice(math.Inf(1)))
	assert.Equal(t, 0.0, ClampTaxRate(math.NaN()))
	assert.Equal(t, 100.0, ClampTaxRate(math.Inf(1)))
}

func TestNormalize(t *testing.T) {
	d := models.Draft{
		Items: []models.InvoiceItem{
			{Quantity: 0, Price: -4},
			{Quantity: 3, Price: 2.5},
		},
		TaxRate: 250,
	}
	Normalize(&d)

	assert.Equal(t, 1, d.Items[0].Quantity)
	assert.Equal(t, 0.0, d.Items[0].Price)
	assert.Equal(t, 3, d.Items[1].Quantity)
	assert.Equal(t, 2.5, d.Items[1].Price)
	assert.Equal(t, 100.0, d.TaxRate)
}
