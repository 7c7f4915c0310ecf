// Package pricing turns a cart into a price breakdown. Amounts stay at full
// precision; only Display rounds.
package pricing

import (
	"fmt"

	"github.com/ariefcatur/go-pethotel-pos/internal/pos"
	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	zero    = decimal.Zero
)

type Rates struct {
	SalesTax      decimal.Decimal // applied to the pre-discount subtotal
	StaffDiscount decimal.Decimal
	PointsPerUnit decimal.Decimal // points that buy one currency unit
	EarnPerUnit   decimal.Decimal // points earned per currency unit paid
}

func DefaultRates() Rates {
	return Rates{
		SalesTax:      decimal.RequireFromString("0.10"),
		StaffDiscount: decimal.RequireFromString("0.10"),
		PointsPerUnit: decimal.NewFromInt(1000),
		EarnPerUnit:   decimal.NewFromInt(1),
	}
}

// ParseRates overrides the default tax and staff discount rates from config strings.
func ParseRates(salesTax, staffDiscount string) (Rates, error) {
	r := DefaultRates()
	if salesTax != "" {
		v, err := decimal.NewFromString(salesTax)
		if err != nil || v.IsNegative() {
			return r, fmt.Errorf("invalid sales tax rate %q", salesTax)
		}
		r.SalesTax = v
	}
	if staffDiscount != "" {
		v, err := decimal.NewFromString(staffDiscount)
		if err != nil || v.IsNegative() || v.GreaterThan(decimal.NewFromInt(1)) {
			return r, fmt.Errorf("invalid staff discount rate %q", staffDiscount)
		}
		r.StaffDiscount = v
	}
	return r, nil
}

type Breakdown struct {
	Subtotal      decimal.Decimal `json:"subtotal"`
	Discount      decimal.Decimal `json:"discount"`
	SalesTax      decimal.Decimal `json:"sales_tax"`
	PointDiscount decimal.Decimal `json:"point_discount"`
	TotalPrice    decimal.Decimal `json:"total_price"`
}

// Display rounds every amount to two decimal places.
func (b Breakdown) Display() Breakdown {
	return Breakdown{
		Subtotal:      b.Subtotal.Round(2),
		Discount:      b.Discount.Round(2),
		SalesTax:      b.SalesTax.Round(2),
		PointDiscount: b.PointDiscount.Round(2),
		TotalPrice:    b.TotalPrice.Round(2),
	}
}

func Subtotal(items []pos.CartItem) decimal.Decimal {
	sum := zero
	for _, it := range items {
		if it.Quantity <= 0 {
			continue
		}
		sum = sum.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return sum
}

// Price computes the breakdown for a cart. redeemedPoints is the point balance
// consumed by a redemption, zero when none happened.
func (r Rates) Price(items []pos.CartItem, staffDiscount bool, redeemedPoints int64) Breakdown {
	subtotal := Subtotal(items)
	discount := zero
	if staffDiscount {
		discount = subtotal.Mul(r.StaffDiscount)
	}
	tax := subtotal.Mul(r.SalesTax)
	pointDiscount := r.PointDiscount(redeemedPoints)

	total := subtotal.Sub(discount).Add(tax).Sub(pointDiscount)
	if total.IsNegative() {
		total = zero
	}
	return Breakdown{
		Subtotal:      subtotal,
		Discount:      discount,
		SalesTax:      tax,
		PointDiscount: pointDiscount,
		TotalPrice:    total,
	}
}

func (r Rates) PointDiscount(points int64) decimal.Decimal {
	if points <= 0 || r.PointsPerUnit.IsZero() {
		return zero
	}
	return decimal.NewFromInt(points).Div(r.PointsPerUnit)
}

// EarnedPoints is the whole number of points a paid total is worth.
func (r Rates) EarnedPoints(total decimal.Decimal) int64 {
	if !total.IsPositive() {
		return 0
	}
	return total.Mul(r.EarnPerUnit).Floor().IntPart()
}

// ChangeDue returns tendered minus total rounded to cents. A negative result is the shortfall.
func ChangeDue(tendered, total decimal.Decimal) decimal.Decimal {
	return tendered.Round(2).Sub(total.Round(2))
}

func percent(d decimal.Decimal) decimal.Decimal { return d.Div(hundred) }
