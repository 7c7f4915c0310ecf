package pos

import (
	"time"

	"github.com/shopspring/decimal"
)

const MethodCash = "cash"

// CartItem is one line of a user's cart. Checkout never edits it.
type CartItem struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Subtype   string          `json:"type"`
	UnitPrice decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	ImageRef  string          `json:"image,omitempty"`
	Barcode   string          `json:"barcode,omitempty"`
}

type Member struct {
	MembershipID string `json:"membership_id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Points       int64  `json:"points"`
}

// MemberSnapshot is the membership state captured when the payment's points were settled.
type MemberSnapshot struct {
	MembershipID   string `json:"membership_id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Points         int64  `json:"points"`
	AddedPoints    int64  `json:"added_points"`
	RedeemedPoints int64  `json:"redeemed_points"`
}

type Payment struct {
	TransactionID string          `json:"transaction_id"`
	UserID        string          `json:"user_id"`
	LineItems     []CartItem      `json:"line_items"`
	PaymentDate   time.Time       `json:"payment_date"`
	Method        string          `json:"method"`
	Tendered      decimal.Decimal `json:"amount_paid"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Discount      decimal.Decimal `json:"discount"`
	SalesTax      decimal.Decimal `json:"sales_tax"`
	PointDiscount decimal.Decimal `json:"point_discount"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	ChangeGiven   decimal.Decimal `json:"change"`
	Member        *MemberSnapshot `json:"member,omitempty"`
}

type StockItem struct {
	ProductID string
	Category  string
	Subtype   string
	Qty       int
}
