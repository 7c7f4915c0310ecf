package pricing

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var leadingNumber = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)`)

// ParseAmount reads a price stored either as a number or as text. Text is read up to
// the first non-numeric character; anything unreadable is zero.
func ParseAmount(v any) decimal.Decimal {
	switch x := v.(type) {
	case nil:
		return zero
	case decimal.Decimal:
		return x
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return zero
		}
		return decimal.NewFromFloat(x)
	case float32:
		return ParseAmount(float64(x))
	case int:
		return decimal.NewFromInt(int64(x))
	case int32:
		return decimal.NewFromInt(int64(x))
	case int64:
		return decimal.NewFromInt(x)
	case string:
		m := leadingNumber.FindString(strings.TrimSpace(x))
		if m == "" {
			return zero
		}
		m = strings.TrimSuffix(strings.TrimPrefix(m, "+"), ".")
		if strings.HasPrefix(m, ".") || strings.HasPrefix(m, "-.") {
			m = strings.Replace(m, ".", "0.", 1)
		}
		d, err := decimal.NewFromString(m)
		if err != nil {
			return zero
		}
		return d
	default:
		return zero
	}
}

// ParseCash reads tendered cash the same way as ParseAmount but reports whether
// anything numeric was there at all, so "abc" is not mistaken for zero cash.
func ParseCash(v any) (decimal.Decimal, bool) {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return zero, false
		}
	case string:
		if leadingNumber.FindString(strings.TrimSpace(x)) == "" {
			return zero, false
		}
	case int, int32, int64, decimal.Decimal:
	default:
		return zero, false
	}
	return ParseAmount(v), true
}

// ParseQuantity reads a quantity as a whole number, truncating fractions.
// Unreadable or negative values are zero.
func ParseQuantity(v any) int {
	var n int64
	switch x := v.(type) {
	case int:
		n = int64(x)
	case int32:
		n = int64(x)
	case int64:
		n = x
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return 0
		}
		n = int64(x)
	case string:
		m := leadingNumber.FindString(strings.TrimSpace(x))
		if i := strings.IndexByte(m, '.'); i >= 0 {
			m = m[:i]
		}
		p, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			return 0
		}
		n = p
	default:
		return 0
	}
	if n < 0 || n > math.MaxInt32 {
		return 0
	}
	return int(n)
}
