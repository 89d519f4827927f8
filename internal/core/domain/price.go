package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParsePrice returns the first number found in a display price such as
// "$1,299.00" or "From $5.50 / bag". Thousands separators are dropped.
// A string without digits parses as 0.
func ParsePrice(s string) float64 {
	return PriceDecimal(s).InexactFloat64()
}

// PriceDecimal is [ParsePrice] without the float conversion.
func PriceDecimal(s string) decimal.Decimal {
	n := leadingNumber(s)
	if n == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(n)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func leadingNumber(s string) string {
	start := strings.IndexAny(s, "0123456789")
	if start < 0 {
		return ""
	}

	var b strings.Builder
	seenPoint := false
	if start > 0 && s[start-1] == '.' {
		seenPoint = true
		b.WriteString("0.")
	}
	for i := start; i < len(s); i++ {
		c := s[i]
		nextIsDigit := i+1 < len(s) && isDigit(s[i+1])
		switch {
		case isDigit(c):
			b.WriteByte(c)
		case c == ',' && !seenPoint && nextIsDigit:
		case c == '.' && !seenPoint && nextIsDigit:
			seenPoint = true
			b.WriteByte(c)
		default:
			return b.String()
		}
	}
	return b.String()
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}
