// Package notify hands payment receipts to the external dispatch service.
// The API publishes a ReceiptRequested event; the notifier worker relays it.
package notify

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ariefcatur/go-pethotel-pos/internal/pos"
)

const ReceiptSubject = "Payment Details"

// Notification is a recipient plus the flat named fields the receipt template renders.
type Notification struct {
	TransactionID string            `json:"transaction_id"`
	To            string            `json:"to"`
	Fields        map[string]string `json:"fields"`
}

type Dispatcher interface {
	Dispatch(ctx context.Context, n Notification) error
}

type Sender interface {
	Send(ctx context.Context, n Notification) error
}

// Receipt builds the receipt notification for a member payment. It returns false
// when the payment has no member, since only members are mailed.
func Receipt(p pos.Payment, now time.Time) (Notification, bool) {
	m := p.Member
	if m == nil || m.Email == "" {
		return Notification{}, false
	}
	fields := map[string]string{
		"email":          m.Email,
		"subject":        ReceiptSubject,
		"date":           now.UTC().Format(time.RFC3339),
		"name":           m.Name,
		"id":             m.MembershipID,
		"transaction_id": p.TransactionID,
		"point":          strconv.FormatInt(m.Points, 10),
		"pointRedeemed":  strconv.FormatInt(m.RedeemedPoints, 10),
		"pointsAdded":    strconv.FormatInt(m.AddedPoints, 10),
		"cart_items":     cartLines(p.LineItems),
		"cash_paid":      p.Tendered.StringFixed(2),
		"subtotal":       p.Subtotal.StringFixed(2),
		"sales_tax":      p.SalesTax.StringFixed(2),
		"discount":       p.Discount.StringFixed(2),
		"point_discount": p.PointDiscount.StringFixed(2),
		"total_price":    p.TotalPrice.StringFixed(2),
		"changes":        p.ChangeGiven.StringFixed(2),
		"paymentDate":    p.PaymentDate.UTC().Format(time.RFC3339),
	}
	return Notification{TransactionID: p.TransactionID, To: m.Email, Fields: fields}, true
}

func cartLines(items []pos.CartItem) string {
	lines := make([]string, 0, len(items))
	for _, it := range items {
		lines = append(lines, fmt.Sprintf("%s x%d @ %s", it.Name, it.Quantity, it.UnitPrice.StringFixed(2)))
	}
	return strings.Join(lines, "\n")
}
