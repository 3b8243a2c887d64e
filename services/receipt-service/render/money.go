package render

import (
	"strings"

	"github.com/shopspring/decimal"
)

type currencyFormat struct {
	symbol   string
	decimals int32
}

var currencies = map[string]currencyFormat{
	"USD": {"$", 2},
	"EUR": {"€", 2},
	"GBP": {"£", 2},
	"AUD": {"A$", 2},
	"SGD": {"S$", 2},
	"MYR": {"RM", 2},
	"IDR": {"Rp", 0},
	"JPY": {"¥", 0},
	"KRW": {"₩", 0},
	"VND": {"₫", 0},
}

type numberFormat struct {
	thousands string
	decimal   string
}

var numberFormats = map[string]numberFormat{
	"en": {",", "."},
	"id": {".", ","},
}

// FormatMoney renders amount in currency using the separators of locale,
// e.g. "$1,234.50" (en, USD) or "Rp 15.000" (id, IDR). Rounding is half away
// from zero at the currency's minor unit.
func FormatMoney(amount decimal.Decimal, currency, locale string) string {
	return formatMoney(amount, lookupCurrency(currency), locale)
}

// CurrencySymbol returns the symbol amounts in currency are written with. For
// currencies without a known symbol it is the ISO code itself.
func CurrencySymbol(currency string) string {
	return lookupCurrency(currency).symbol
}

func lookupCurrency(currency string) currencyFormat {
	cf, ok := currencies[strings.ToUpper(currency)]
	if !ok {
		cf = currencyFormat{symbol: strings.ToUpper(currency), decimals: 2}
	}
	return cf
}

func formatMoney(amount decimal.Decimal, cf currencyFormat, locale string) string {
	nf, ok := numberFormats[locale]
	if !ok {
		nf = numberFormats["en"]
	}

	neg := amount.IsNegative()
	fixed := amount.Abs().StringFixed(cf.decimals)

	intPart, fracPart := fixed, ""
	if i := strings.IndexByte(fixed, '.'); i >= 0 {
		intPart, fracPart = fixed[:i], fixed[i+1:]
	}

	var b strings.Builder
	if neg && !amount.Round(cf.decimals).IsZero() {
		b.WriteByte('-')
	}
	b.WriteString(cf.symbol)
	if isAlpha(cf.symbol) {
		b.WriteByte(' ')
	}
	b.WriteString(groupThousands(intPart, nf.thousands))
	if fracPart != "" {
		b.WriteString(nf.decimal)
		b.WriteString(fracPart)
	}
	return b.String()
}

func groupThousands(digits, sep string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !(r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z') {
			return false
		}
	}
	return true
}

// FormatPercent renders a tax rate such as 11 or 7.5 as "11%" / "7.5%".
func FormatPercent(rate decimal.Decimal) string {
	return rate.String() + "%"
}
