package invoice

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"

	"invoicer/pkg/models"
)

const (
	MinQuantity = 1
	MinTaxRate  = 0.0
	MaxTaxRate  = 100.0
)

var (
	leadingInt   = regexp.MustCompile(`^[+-]?\d+`)
	leadingFloat = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?`)
)

// ParseQuantity reads the leading integer of raw ("3 pcs" -> 3). Unparsable
// input and values below 1 become 1; values too large for an int saturate.
func ParseQuantity(raw string) int {
	m := leadingInt.FindString(strings.TrimSpace(raw))
	if m == "" {
		return MinQuantity
	}
	n, err := strconv.Atoi(m)
	if errors.Is(err, strconv.ErrRange) {
		if m[0] == '-' {
			return MinQuantity
		}
		return math.MaxInt
	}
	if err != nil {
		return MinQuantity
	}
	return ClampQuantity(n)
}

// ParsePrice reads the leading decimal of raw. Unparsable input and negative
// values become 0.
func ParsePrice(raw string) float64 {
	return ClampPrice(parseLeadingFloat(raw))
}

// ParseTaxRate reads the leading decimal of raw and clamps it to [0, 100].
func ParseTaxRate(raw string) float64 {
	return ClampTaxRate(parseLeadingFloat(raw))
}

// ClampQuantity enforces quantity ≥ 1.
func ClampQuantity(n int) int {
	if n < MinQuantity {
		return MinQuantity
	}
	return n
}

// ClampPrice enforces price ≥ 0.
func ClampPrice(p float64) float64 {
	if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 {
		return 0
	}
	return p
}

// ClampTaxRate enforces 0 ≤ rate ≤ 100.
func ClampTaxRate(rate float64) float64 {
	switch {
	case math.IsNaN(rate):
		return MinTaxRate
	case rate < MinTaxRate:
		return MinTaxRate
	case rate > MaxTaxRate:
		return MaxTaxRate
	}
	return rate
}

// Normalize clamps every numeric field of a draft in place.
func Normalize(d *models.Draft) {
	for i := range d.Items {
		d.Items[i].Quantity = ClampQuantity(d.Items[i].Quantity)
		d.Items[i].Price = ClampPrice(d.Items[i].Price)
	}
	d.TaxRate = ClampTaxRate(d.TaxRate)
}

func parseLeadingFloat(raw string) float64 {
	m := leadingFloat.FindString(strings.TrimSpace(raw))
	if m == "" {
		return 0
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	return f
}
