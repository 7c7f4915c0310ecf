package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/ariefcatur/go-pethotel-pos/internal/apperr"
	"github.com/ariefcatur/go-pethotel-pos/internal/counter"
	"github.com/ariefcatur/go-pethotel-pos/internal/inventory"
	"github.com/ariefcatur/go-pethotel-pos/internal/membership"
	"github.com/ariefcatur/go-pethotel-pos/internal/metrics"
	"github.com/ariefcatur/go-pethotel-pos/internal/notify"
	"github.com/ariefcatur/go-pethotel-pos/internal/pos"
	"github.com/ariefcatur/go-pethotel-pos/internal/pricing"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type fakeCart struct {
	items   map[string][]pos.CartItem
	cleared []string
	failClr error
}

func (f *fakeCart) Load(_ context.Context, userID string) []pos.CartItem {
	return f.items[userID]
}

func (f *fakeCart) Clear(_ context.Context, userID string) error {
	if f.failClr != nil {
		return f.failClr
	}
	f.cleared = append(f.cleared, userID)
	f.items[userID] = []pos.CartItem{}
	return nil
}

type fakeMembers struct {
	m map[string]pos.Member
}

func (f *fakeMembers) FindByMembershipID(_ context.Context, id string) (pos.Member, error) {
	m, ok := f.m[id]
	if !ok {
		return pos.Member{}, apperr.ErrMemberNotFound
	}
	return m, nil
}

func (f *fakeMembers) SetPoints(_ context.Context, id string, points int64) error {
	m := f.m[id]
	m.Points = points
	f.m[id] = m
	return nil
}

type fakeStock struct {
	stock map[string]int
	calls int
}

func (f *fakeStock) Decrement(_ context.Context, it pos.StockItem) (int, error) {
	f.calls++
	cur, ok := f.stock[it.ProductID]
	if !ok {
		return 0, apperr.ErrProductNotFound
	}
	if cur < it.Qty {
		return cur, apperr.ErrInsufficientStock
	}
	f.stock[it.ProductID] = cur - it.Qty
	return cur - it.Qty, nil
}

type fakePayments struct {
	saved []pos.Payment
	fail  error
}

func (f *fakePayments) Insert(_ context.Context, p pos.Payment) error {
	if f.fail != nil {
		return f.fail
	}
	f.saved = append(f.saved, p)
	return nil
}

type fakeNotifier struct {
	sent []notify.Notification
	fail error
}

func (f *fakeNotifier) Dispatch(_ context.Context, n notify.Notification) error {
	if f.fail != nil {
		return f.fail
	}
	f.sent = append(f.sent, n)
	return nil
}

type seqCounter struct {
	n    int64
	fail bool
}

func (c *seqCounter) Next(_ context.Context, kind counter.Kind) (string, error) {
	if c.fail {
		return "", errors.New("redis: connection refused")
	}
	c.n++
	return counter.Format(kind, c.n), nil
}

type fixture struct {
	svc      *Service
	cart     *fakeCart
	members  *fakeMembers
	stock    *fakeStock
	payments *fakePayments
	notifier *fakeNotifier
	counter  *seqCounter
	redis    *miniredis.Miniredis
}

func item(id, price string, qty int) pos.CartItem {
	return pos.CartItem{ID: id, Name: "item " + id, Category: "food", Subtype: "dry", UnitPrice: decimal.RequireFromString(price), Quantity: qty}
}

func newFixture(t *testing.T) *fixture {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	f := &fixture{
		redis: mr,
		cart: &fakeCart{items: map[string][]pos.CartItem{
			"u1": {item("p1", "50", 2)},
		}},
		members: &fakeMembers{m: map[string]pos.Member{
			"M1": {MembershipID: "M1", Name: "Ana", Email: "ana@example.com", Points: 2500},
			"M2": {MembershipID: "M2", Name: "Budi", Email: "budi@example.com", Points: 400},
		}},
		stock:    &fakeStock{stock: map[string]int{"p1": 10}},
		payments: &fakePayments{},
		notifier: &fakeNotifier{},
		counter:  &seqCounter{},
	}
	log := zap.NewNop()
	m := metrics.New(prometheus.NewRegistry(), "test")
	f.svc = &Service{
		Cart:        f.cart,
		Ledger:      membership.NewLedger(f.members, log),
		Redemptions: NewRedisRedemptions(rdb),
		Committer: &Committer{
			Counter:  f.counter,
			Stock:    &inventory.Service{Store: f.stock, Metrics: m, Log: log},
			Cart:     f.cart,
			Payments: f.payments,
			Notifier: f.notifier,
			Metrics:  m,
			Log:      log,
			Now:      func() time.Time { return time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC) },
		},
		Rates:   pricing.DefaultRates(),
		Metrics: m,
		Log:     log,
	}
	return f
}
