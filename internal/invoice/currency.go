package invoice

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const (
	// CurrencyCode is the only currency invoices are issued in.
	CurrencyCode = "DZD"

	currencySuffix = "\u00a0DA"
	fractionDigits = 2
)

var currencyPrinter = message.NewPrinter(language.MustParse("fr-DZ"))

// FormatCurrency renders an amount with the fixed fr-DZ dinar rule, for
// example "1 234,50 DA". Amounts are rounded half away from zero to two
// fraction digits.
func FormatCurrency(amount decimal.Decimal) string {
	rounded := amount.Round(fractionDigits)
	return currencyPrinter.Sprint(number.Decimal(
		rounded.InexactFloat64(),
		number.MinFractionDigits(fractionDigits),
		number.MaxFractionDigits(fractionDigits),
	)) + currencySuffix
}

// FormatFloat is FormatCurrency for a plain float amount such as a unit price.
func FormatFloat(amount float64) string {
	return FormatCurrency(decimal.NewFromFloat(amount))
}
