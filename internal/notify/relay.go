package notify

import (
	"context"
	"fmt"

	kafkax "github.com/ariefcatur/go-pethotel-pos/internal/kafka"
	"github.com/ariefcatur/go-pethotel-pos/internal/metrics"
	"github.com/ariefcatur/go-pethotel-pos/internal/pos"
	"github.com/ariefcatur/go-pethotel-pos/internal/redisx"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Relay consumes ReceiptRequested events and forwards each one to the Sender once.
type Relay struct {
	Sender      Sender
	Redis       *redis.Client
	Metrics     *metrics.Metrics
	Log         *zap.Logger
	ServiceName string
}

func (r *Relay) HandleReceiptRequested(ctx context.Context, m kafkago.Message) error {
	env, err := kafkax.UnmarshalEnvelope(m.Value)
	if err != nil {
		// a poison message would block the partition forever
		r.Log.Error("dropping undecodable message", zap.Int64("offset", m.Offset), zap.Error(err))
		return nil
	}
	if env.EventType != pos.EventReceiptRequested {
		return nil
	}

	dkey := fmt.Sprintf(redisx.KeyDedup, r.ServiceName, env.EventID)
	claimed, err := redisx.Claim(ctx, r.Redis, dkey, "1", redisx.TTLDedup)
	if err != nil {
		return fmt.Errorf("dedup claim: %w", err)
	}
	if !claimed {
		r.Metrics.Notifications.WithLabelValues("duplicate").Inc()
		return nil
	}

	p, err := kafkax.UnwrapPayload[pos.ReceiptRequestedPayload](env.Payload)
	if err != nil {
		r.Log.Error("dropping receipt with bad payload", zap.String("event_id", env.EventID), zap.Error(err))
		return nil
	}

	n := Notification{TransactionID: p.TransactionID, To: p.To, Fields: p.Fields}
	if err := r.Sender.Send(ctx, n); err != nil {
		// release the claim so the redelivered message is tried again
		_ = r.Redis.Del(context.WithoutCancel(ctx), dkey).Err()
		r.Metrics.Notifications.WithLabelValues("failed").Inc()
		return fmt.Errorf("send receipt %s: %w", p.TransactionID, err)
	}

	r.Metrics.Notifications.WithLabelValues("sent").Inc()
	r.Log.Info("receipt sent",
		zap.String("transaction_id", p.TransactionID),
		zap.String("event_id", env.EventID),
		zap.String("trace_id", env.TraceID))
	return nil
}
