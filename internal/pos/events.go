package pos

import (
	"encoding/json"
	"time"
)

const EventReceiptRequested = "ReceiptRequested"

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"` // e.g. "pos-api"
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // transaction or booking id
	Payload       json.RawMessage `json:"payload"`
}

// ReceiptRequestedPayload carries the flat template fields the dispatch service renders.
type ReceiptRequestedPayload struct {
	TransactionID string            `json:"transaction_id"`
	To            string            `json:"to"`
	Fields        map[string]string `json:"fields"`
}
