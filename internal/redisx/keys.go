package redisx

import "time"

const (
	// Sequence per id kind: counter:{kind} -> last issued number
	KeyCounter = "counter:%s"

	// Cash confirmation guard: idem:checkout:{idempotency_key} -> transaction id, "pending" while in flight
	KeyIdemCheckout = "idem:checkout:%s"

	// Held point redemption: redeem:{redemption_id} -> redemption JSON, removed by the sale that spends it
	KeyRedemption = "redeem:%s"

	// Payment read cache: payment:{transaction_id} -> payment JSON
	KeyPayment = "payment:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLIdempotency  = 24 * time.Hour
	TTLPaymentCache = 5 * time.Minute
	TTLRedemption   = 12 * time.Hour
	TTLDedup        = 48 * time.Hour
)
