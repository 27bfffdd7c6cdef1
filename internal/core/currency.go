package core

import "strconv"

// CurrencyFormatter renders monetary values. One value type covers both the
// plain and the symbolic rendering; fractional prices (price per volume
// unit) use one extra digit via Fractional.
type CurrencyFormatter struct {
	Symbol         string
	FractionDigits int
	ShowSymbol     bool
}

// NewCurrencyFormatter returns a formatter with two fraction digits, the
// common case for decimal currencies.
func NewCurrencyFormatter(symbol string, showSymbol bool) CurrencyFormatter {
	return CurrencyFormatter{
		Symbol:         symbol,
		FractionDigits: 2,
		ShowSymbol:     showSymbol,
	}
}

// Fractional returns a copy with one more fraction digit, for per-unit
// prices that need sub-cent resolution.
func (f CurrencyFormatter) Fractional() CurrencyFormatter {
	f.FractionDigits++
	return f
}

// Numeric returns a copy that renders without the currency symbol.
func (f CurrencyFormatter) Numeric() CurrencyFormatter {
	f.ShowSymbol = false
	return f
}

func (f CurrencyFormatter) Format(v float64) string {
	s := strconv.FormatFloat(v, 'f', f.FractionDigits, 64)
	if f.ShowSymbol && f.Symbol != "" {
		return f.Symbol + s
	}
	return s
}
