package pricing

import (
	"testing"
	"time"

	"github.com/ariefcatur/go-pethotel-pos/internal/pos"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertAmount(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "want %s, got %s", want, got)
}

func item(price string, qty int) pos.CartItem {
	return pos.CartItem{UnitPrice: dec(price), Quantity: qty}
}

func TestSubtotal_OrderIndependent(t *testing.T) {
	a := []pos.CartItem{item("12.50", 2), item("3.33", 3), item("0.01", 7)}
	b := []pos.CartItem{a[2], a[0], a[1]}

	assertAmount(t, "35.06", Subtotal(a))
	assert.True(t, Subtotal(a).Equal(Subtotal(b)))
}

func TestPrice_StaffDiscountOnHundred(t *testing.T) {
	b := DefaultRates().Price([]pos.CartItem{item("50", 2)}, true, 0)

	assertAmount(t, "100", b.Subtotal)
	assertAmount(t, "10", b.Discount)
	assertAmount(t, "10", b.SalesTax)
	assertAmount(t, "0", b.PointDiscount)
	assertAmount(t, "100", b.TotalPrice)
}

func TestPrice_TaxOnPreDiscountSubtotal(t *testing.T) {
	b := DefaultRates().Price([]pos.CartItem{item("200", 1)}, true, 0)

	assertAmount(t, "20", b.SalesTax)
	assertAmount(t, "200", b.TotalPrice)
}

func TestPrice_NoDiscount(t *testing.T) {
	b := DefaultRates().Price([]pos.CartItem{item("19.99", 1)}, false, 0)

	assertAmount(t, "0", b.Discount)
	assertAmount(t, "1.999", b.SalesTax)
	assertAmount(t, "21.989", b.TotalPrice)
	assertAmount(t, "21.99", b.Display().TotalPrice)
}

func TestPrice_EmptyCart(t *testing.T) {
	b := DefaultRates().Price(nil, true, 0)

	assert.True(t, b.Subtotal.IsZero())
	assert.True(t, b.Discount.IsZero())
	assert.True(t, b.SalesTax.IsZero())
	assert.True(t, b.TotalPrice.IsZero())
}

func TestPrice_PointRedemption(t *testing.T) {
	b := DefaultRates().Price([]pos.CartItem{item("100", 1)}, false, 2500)

	assertAmount(t, "2.5", b.PointDiscount)
	assertAmount(t, "107.5", b.TotalPrice)
}

func TestPrice_TotalFlooredAtZero(t *testing.T) {
	b := DefaultRates().Price([]pos.CartItem{item("1", 1)}, false, 50000)

	assertAmount(t, "50", b.PointDiscount)
	assert.True(t, b.TotalPrice.IsZero())
}

func TestEarnedPoints(t *testing.T) {
	r := DefaultRates()

	assert.Equal(t, int64(107), r.EarnedPoints(dec("107.99")))
	assert.Equal(t, int64(0), r.EarnedPoints(dec("0.99")))
	assert.Equal(t, int64(0), r.EarnedPoints(dec("-5")))
}

func TestChangeDue(t *testing.T) {
	assertAmount(t, "5.01", ChangeDue(dec("115"), dec("109.989")))
	assert.True(t, ChangeDue(dec("10"), dec("10.01")).IsNegative())
}

func TestParseRates(t *testing.T) {
	r, err := ParseRates("0.08", "")
	require.NoError(t, err)
	assertAmount(t, "0.08", r.SalesTax)
	assertAmount(t, "0.10", r.StaffDiscount)

	_, err = ParseRates("abc", "")
	assert.Error(t, err)
	_, err = ParseRates("", "1.5")
	assert.Error(t, err)
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{"12.50", "12.5"},
		{" 7 ", "7"},
		{"12abc", "12"},
		{".5", "0.5"},
		{"+3.", "3"},
		{"abc", "0"},
		{"", "0"},
		{nil, "0"},
		{float64(4.25), "4.25"},
		{int32(9), "9"},
		{int64(11), "11"},
		{true, "0"},
	}
	for _, c := range cases {
		assertAmount(t, c.want, ParseAmount(c.in))
	}
}

func TestParseCash(t *testing.T) {
	d, ok := ParseCash("120.50abc")
	assert.True(t, ok)
	assertAmount(t, "120.5", d)

	d, ok = ParseCash(float64(0))
	assert.True(t, ok)
	assert.True(t, d.IsZero())

	for _, in := range []any{"abc", "", "  ", nil, true, map[string]any{}} {
		_, ok := ParseCash(in)
		assert.False(t, ok, "%#v", in)
	}
}

func TestParseQuantity(t *testing.T) {
	cases := []struct {
		in   any
		want int
	}{
		{"3", 3},
		{"2.9", 2},
		{"4 boxes", 4},
		{"x", 0},
		{"-2", 0},
		{float64(5.7), 5},
		{int32(6), 6},
		{nil, 0},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ParseQuantity(c.in), "input %v", c.in)
	}
}

func TestMalformedItemsPriceAsZero(t *testing.T) {
	items := []pos.CartItem{
		{UnitPrice: ParseAmount("n/a"), Quantity: ParseQuantity("2")},
		{UnitPrice: ParseAmount("10"), Quantity: ParseQuantity("many")},
		item("5", 1),
	}
	assertAmount(t, "5", DefaultRates().Price(items, false, 0).Subtotal)
}

func TestQuoteStay(t *testing.T) {
	in := time.Date(2024, 5, 1, 14, 0, 0, 0, time.UTC)

	s := QuoteStay(in, in.Add(48*time.Hour), dec("100"))
	assert.Equal(t, 2, s.Nights)
	assertAmount(t, "200", s.Base)
	assertAmount(t, "12", s.ServiceTax)
	assertAmount(t, "20", s.SalesTax)
	assertAmount(t, "232", s.Total)

	assert.Equal(t, 2, Nights(in, in.Add(36*time.Hour)))
	assert.Equal(t, 0, Nights(in, in))
	assert.Equal(t, 0, Nights(in, in.Add(-24*time.Hour)))
	assert.True(t, QuoteStay(in, in, dec("100")).Total.IsZero())
}
