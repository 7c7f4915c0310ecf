package pricing

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

var (
	serviceTaxPct = decimal.NewFromInt(6)
	stayTaxPct    = decimal.NewFromInt(10)
)

type Stay struct {
	Nights     int             `json:"nights"`
	Base       decimal.Decimal `json:"base_price"`
	ServiceTax decimal.Decimal `json:"service_tax"`
	SalesTax   decimal.Decimal `json:"sales_tax"`
	Total      decimal.Decimal `json:"total_price"`
}

// Nights counts started 24h periods between check-in and check-out.
// Same-day or reversed dates are zero nights.
func Nights(checkIn, checkOut time.Time) int {
	d := checkOut.Sub(checkIn)
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Hours() / 24))
}

// QuoteStay prices a room stay: base plus 6% service tax plus 10% sales tax, both on the base.
func QuoteStay(checkIn, checkOut time.Time, roomPrice decimal.Decimal) Stay {
	n := Nights(checkIn, checkOut)
	base := roomPrice.Mul(decimal.NewFromInt(int64(n)))
	service := base.Mul(percent(serviceTaxPct))
	sales := base.Mul(percent(stayTaxPct))
	return Stay{
		Nights:     n,
		Base:       base,
		ServiceTax: service,
		SalesTax:   sales,
		Total:      base.Add(service).Add(sales),
	}
}
