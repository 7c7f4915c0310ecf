package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	kafkax "github.com/ariefcatur/go-pethotel-pos/internal/kafka"
	"github.com/ariefcatur/go-pethotel-pos/internal/metrics"
	"github.com/ariefcatur/go-pethotel-pos/internal/pos"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func memberPayment() pos.Payment {
	return pos.Payment{
		TransactionID: "T05",
		PaymentDate:   time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
		LineItems:     []pos.CartItem{{Name: "Kibble", Quantity: 2, UnitPrice: decimal.RequireFromString("50")}},
		Tendered:      decimal.RequireFromString("120"),
		Subtotal:      decimal.RequireFromString("100"),
		Discount:      decimal.RequireFromString("10"),
		SalesTax:      decimal.RequireFromString("10"),
		PointDiscount: decimal.Zero,
		TotalPrice:    decimal.RequireFromString("100"),
		ChangeGiven:   decimal.RequireFromString("20"),
		Member:        &pos.MemberSnapshot{MembershipID: "M1", Name: "Ana", Email: "ana@example.com", Points: 140, AddedPoints: 100},
	}
}

func TestReceipt_Fields(t *testing.T) {
	n, ok := Receipt(memberPayment(), time.Date(2024, 6, 1, 10, 0, 5, 0, time.UTC))
	require.True(t, ok)

	assert.Equal(t, "ana@example.com", n.To)
	assert.Equal(t, "T05", n.Fields["transaction_id"])
	assert.Equal(t, ReceiptSubject, n.Fields["subject"])
	assert.Equal(t, "100.00", n.Fields["total_price"])
	assert.Equal(t, "20.00", n.Fields["changes"])
	assert.Equal(t, "100", n.Fields["pointsAdded"])
	assert.Equal(t, "0", n.Fields["pointRedeemed"])
	assert.Equal(t, "Kibble x2 @ 50.00", n.Fields["cart_items"])
	assert.Equal(t, "2024-06-01T10:00:00Z", n.Fields["paymentDate"])
}

func TestReceipt_NoMember(t *testing.T) {
	p := memberPayment()
	p.Member = nil
	_, ok := Receipt(p, time.Now())
	assert.False(t, ok)
}

type capturePublisher struct {
	keys   [][]byte
	values [][]byte
	fail   error
}

func (c *capturePublisher) Publish(key, value []byte, _ ...kafkago.Header) error {
	if c.fail != nil {
		return c.fail
	}
	c.keys = append(c.keys, key)
	c.values = append(c.values, value)
	return nil
}

func TestKafkaDispatcher_PublishesEnvelope(t *testing.T) {
	pub := &capturePublisher{}
	d := &KafkaDispatcher{Producer: pub, Service: "pos-api"}
	n, _ := Receipt(memberPayment(), time.Now())

	require.NoError(t, d.Dispatch(context.Background(), n))
	require.Len(t, pub.values, 1)
	assert.Equal(t, []byte("T05"), pub.keys[0])

	env, err := kafkax.UnmarshalEnvelope(pub.values[0])
	require.NoError(t, err)
	assert.Equal(t, pos.EventReceiptRequested, env.EventType)
	assert.Equal(t, "T05", env.CorrelationID)
	assert.NotEmpty(t, env.EventID)

	p, err := kafkax.UnwrapPayload[pos.ReceiptRequestedPayload](env.Payload)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", p.To)
	assert.Equal(t, "Ana", p.Fields["name"])
}

func TestKafkaDispatcher_ClosedProducer(t *testing.T) {
	d := &KafkaDispatcher{Producer: &capturePublisher{fail: kafkax.ErrProducerClosed}, Service: "pos-api"}
	n, _ := Receipt(memberPayment(), time.Now())

	assert.ErrorIs(t, d.Dispatch(context.Background(), n), kafkax.ErrProducerClosed)
}

func TestWebhookSender_Posts(t *testing.T) {
	var got webhookBody
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "T05", r.Header.Get("Idempotency-Key"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	s := NewWebhookSender(srv.URL, srv.Client(), zap.NewNop())
	err := s.Send(context.Background(), Notification{TransactionID: "T05", To: "a@b.c", Fields: map[string]string{"name": "Ana"}})
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.Fields["name"])
}

func TestWebhookSender_BreakerOpensAfterFailures(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	s := NewWebhookSender(srv.URL, srv.Client(), zap.NewNop())
	for i := 0; i < 5; i++ {
		assert.Error(t, s.Send(context.Background(), Notification{TransactionID: "T01"}))
	}
	err := s.Send(context.Background(), Notification{TransactionID: "T01"})
	assert.ErrorIs(t, err, ErrProviderUnavailable)
	assert.Equal(t, int32(5), hits.Load())
}

type stubSender struct {
	sent []Notification
	err  error
}

func (s *stubSender) Send(_ context.Context, n Notification) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, n)
	return nil
}

func newRelay(t *testing.T, sender Sender) *Relay {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return &Relay{
		Sender:      sender,
		Redis:       rdb,
		Metrics:     metrics.New(prometheus.NewRegistry(), "test"),
		Log:         zap.NewNop(),
		ServiceName: "notifier",
	}
}

func receiptMessage(t *testing.T, eventID string) kafkago.Message {
	t.Helper()
	env := pos.Envelope{
		EventID:      eventID,
		EventType:    pos.EventReceiptRequested,
		EventVersion: 1,
		Payload:      kafkax.MustMarshal(pos.ReceiptRequestedPayload{TransactionID: "T05", To: "ana@example.com"}),
	}
	return kafkago.Message{Value: kafkax.MustMarshal(env)}
}

func TestRelay_SendsOncePerEvent(t *testing.T) {
	sender := &stubSender{}
	r := newRelay(t, sender)
	m := receiptMessage(t, "ev-1")

	require.NoError(t, r.HandleReceiptRequested(context.Background(), m))
	require.NoError(t, r.HandleReceiptRequested(context.Background(), m))

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "T05", sender.sent[0].TransactionID)
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Metrics.Notifications.WithLabelValues("duplicate")))
}

func TestRelay_FailureReleasesClaim(t *testing.T) {
	sender := &stubSender{err: errors.New("provider down")}
	r := newRelay(t, sender)
	m := receiptMessage(t, "ev-2")

	assert.Error(t, r.HandleReceiptRequested(context.Background(), m))

	sender.err = nil
	require.NoError(t, r.HandleReceiptRequested(context.Background(), m))
	assert.Len(t, sender.sent, 1)
}

func TestRelay_IgnoresGarbageAndOtherEvents(t *testing.T) {
	sender := &stubSender{}
	r := newRelay(t, sender)

	assert.NoError(t, r.HandleReceiptRequested(context.Background(), kafkago.Message{Value: []byte("not json")}))
	other := kafkax.MustMarshal(pos.Envelope{EventID: "x", EventType: "SomethingElse"})
	assert.NoError(t, r.HandleReceiptRequested(context.Background(), kafkago.Message{Value: other}))
	assert.Empty(t, sender.sent)
}
