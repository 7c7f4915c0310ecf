// Package counter issues the short human-readable ids printed on receipts and
// booking confirmations: T01, T02, ... for sales and B01, B02, ... for bookings.
package counter

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

type Kind string

const (
	Transaction Kind = "transaction"
	Booking     Kind = "booking"
)

func (k Kind) Prefix() string {
	if k == Booking {
		return "B"
	}
	return "T"
}

// Format pads the sequence to two digits; larger numbers keep all their digits.
func Format(k Kind, n int64) string {
	return fmt.Sprintf("%s%02d", k.Prefix(), n)
}

// Allocator returns a fresh id on every call. Concurrent callers never get the same id
// from one backend.
type Allocator interface {
	Next(ctx context.Context, kind Kind) (string, error)
}

// Backends accepted by New.
const (
	BackendRedis     = "redis"
	BackendMongo     = "mongo"
	BackendSnowflake = "snowflake"
)

// New picks the allocator for backend. Only the dependency that backend needs must be non-nil.
func New(backend string, rdb *redis.Client, db *mongo.Database, node int64) (Allocator, error) {
	switch backend {
	case BackendRedis, "":
		return NewRedisAllocator(rdb), nil
	case BackendMongo:
		return NewMongoAllocator(db), nil
	case BackendSnowflake:
		a, err := NewSnowflakeAllocator(node)
		if err != nil {
			return nil, err
		}
		return a, nil
	default:
		return nil, fmt.Errorf("unknown counter backend %q", backend)
	}
}
