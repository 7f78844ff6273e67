package invoice

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// plainSpaces folds the no-break spaces used by the locale into ASCII spaces.
func plainSpaces(s string) string {
	return strings.NewReplacer("\u00a0", " ", "\u202f", " ").Replace(s)
}

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		amount string
		want   string
	}{
		{"0", "0,00 DA"},
		{"12.5", "12,50 DA"},
		{"1234.56", "1 234,56 DA"},
		{"297.5", "297,50 DA"},
		{"1000000", "1 000 000,00 DA"},
		{"0.005", "0,01 DA"},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			got := FormatCurrency(decimal.RequireFromString(tt.amount))
			assert.Equal(t, tt.want, plainSpaces(got))
		})
	}
}

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, "49,99 DA", plainSpaces(FormatFloat(49.99)))
}
