package notify

import (
	"context"
	"time"

	kafkax "github.com/ariefcatur/go-pethotel-pos/internal/kafka"
	"github.com/ariefcatur/go-pethotel-pos/internal/pos"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
)

type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header) error
}

// KafkaDispatcher publishes a ReceiptRequested envelope and returns without waiting for delivery.
type KafkaDispatcher struct {
	Producer Publisher
	Service  string
}

func (d *KafkaDispatcher) Dispatch(ctx context.Context, n Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	env := pos.Envelope{
		EventID:       uuid.NewString(),
		EventType:     pos.EventReceiptRequested,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      d.Service,
		TraceID:       middleware.GetReqID(ctx),
		CorrelationID: n.TransactionID,
		Payload: kafkax.MustMarshal(pos.ReceiptRequestedPayload{
			TransactionID: n.TransactionID,
			To:            n.To,
			Fields:        n.Fields,
		}),
	}
	return d.Producer.Publish(pos.PartitionKey(n.TransactionID), kafkax.MustMarshal(env), kafkax.EnvelopeHeaders(env)...)
}
