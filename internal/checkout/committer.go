package checkout

import (
	"context"
	"time"

	"github.com/ariefcatur/go-pethotel-pos/internal/apperr"
	"github.com/ariefcatur/go-pethotel-pos/internal/counter"
	"github.com/ariefcatur/go-pethotel-pos/internal/inventory"
	"github.com/ariefcatur/go-pethotel-pos/internal/metrics"
	"github.com/ariefcatur/go-pethotel-pos/internal/notify"
	"github.com/ariefcatur/go-pethotel-pos/internal/pos"
	"github.com/ariefcatur/go-pethotel-pos/internal/pricing"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type StockDecrementer interface {
	DecrementAll(ctx context.Context, items []pos.CartItem) ([]inventory.Skipped, error)
}

type CartClearer interface {
	Clear(ctx context.Context, userID string) error
}

type PaymentWriter interface {
	Insert(ctx context.Context, p pos.Payment) error
}

// Committer applies a paid checkout. Steps run in order with no rollback: a failure
// leaves earlier steps applied and is returned as an external I/O error.
type Committer struct {
	Counter  counter.Allocator
	Stock    StockDecrementer
	Cart     CartClearer
	Payments PaymentWriter
	Notifier notify.Dispatcher
	Metrics  *metrics.Metrics
	Log      *zap.Logger
	Now      func() time.Time
}

type CommitInput struct {
	UserID    string
	Items     []pos.CartItem
	Breakdown pricing.Breakdown
	Tendered  decimal.Decimal
	Member    *pos.MemberSnapshot
}

type Receipt struct {
	TransactionID    string              `json:"transaction_id"`
	PaymentDate      time.Time           `json:"payment_date"`
	Breakdown        pricing.Breakdown   `json:"breakdown"`
	Tendered         decimal.Decimal     `json:"amount_paid"`
	Change           decimal.Decimal     `json:"change"`
	Member           *pos.MemberSnapshot `json:"member,omitempty"`
	Skipped          []inventory.Skipped `json:"skipped_stock,omitempty"`
	NotificationSent bool                `json:"notification_sent"`
}

func (c *Committer) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *Committer) fail(op string, in CommitInput, txID string, err error) error {
	c.Log.Error("checkout commit step failed",
		zap.String("step", op),
		zap.String("user_id", in.UserID),
		zap.String("transaction_id", txID),
		zap.Error(err))
	c.Metrics.Checkouts.WithLabelValues("failed").Inc()
	return apperr.IO("checkout."+op, err)
}

func (c *Committer) Commit(ctx context.Context, state *FlowState, in CommitInput) (Receipt, error) {
	txID, err := c.Counter.Next(ctx, counter.Transaction)
	if err != nil {
		return Receipt{}, c.fail("allocate_id", in, "", err)
	}

	skipped, err := c.Stock.DecrementAll(ctx, in.Items)
	if err != nil {
		return Receipt{}, c.fail("decrement_stock", in, txID, err)
	}

	if err := c.Cart.Clear(ctx, in.UserID); err != nil {
		return Receipt{}, c.fail("clear_cart", in, txID, err)
	}

	shown := in.Breakdown.Display()
	p := pos.Payment{
		TransactionID: txID,
		UserID:        in.UserID,
		LineItems:     in.Items,
		PaymentDate:   c.now().UTC(),
		Method:        pos.MethodCash,
		Tendered:      in.Tendered.Round(2),
		Subtotal:      shown.Subtotal,
		Discount:      shown.Discount,
		SalesTax:      shown.SalesTax,
		PointDiscount: shown.PointDiscount,
		TotalPrice:    shown.TotalPrice,
		ChangeGiven:   pricing.ChangeDue(in.Tendered, in.Breakdown.TotalPrice),
		Member:        in.Member,
	}
	if err := c.Payments.Insert(ctx, p); err != nil {
		return Receipt{}, c.fail("save_payment", in, txID, err)
	}

	r := Receipt{
		TransactionID: txID,
		PaymentDate:   p.PaymentDate,
		Breakdown:     shown,
		Tendered:      p.Tendered,
		Change:        p.ChangeGiven,
		Member:        in.Member,
		Skipped:       skipped,
	}
	c.notifyOnce(ctx, state, p)
	r.NotificationSent = state.NotificationSent

	c.Metrics.Checkouts.WithLabelValues("committed").Inc()
	c.Log.Info("checkout committed",
		zap.String("transaction_id", txID),
		zap.String("user_id", in.UserID),
		zap.String("total", p.TotalPrice.StringFixed(2)),
		zap.Int("items", len(in.Items)),
		zap.Int("stock_skipped", len(skipped)))
	return r, nil
}

// notifyOnce sends the member receipt unless this flow already sent one. A failed
// dispatch is logged; the sale stands.
func (c *Committer) notifyOnce(ctx context.Context, state *FlowState, p pos.Payment) {
	if state.NotificationSent {
		return
	}
	n, ok := notify.Receipt(p, c.now())
	if !ok {
		return
	}
	if err := c.Notifier.Dispatch(ctx, n); err != nil {
		c.Metrics.Notifications.WithLabelValues("failed").Inc()
		c.Log.Warn("receipt dispatch failed", zap.String("transaction_id", p.TransactionID), zap.Error(err))
		return
	}
	state.NotificationSent = true
	c.Metrics.Notifications.WithLabelValues("dispatched").Inc()
}
