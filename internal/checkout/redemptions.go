package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ariefcatur/go-pethotel-pos/internal/apperr"
	"github.com/ariefcatur/go-pethotel-pos/internal/membership"
	"github.com/ariefcatur/go-pethotel-pos/internal/redisx"
	"github.com/redis/go-redis/v9"
)

// HeldRedemption is a redeem waiting for the sale that spends it.
type HeldRedemption struct {
	UserID       string                `json:"user_id"`
	MembershipID string                `json:"membership_id"`
	Redemption   membership.Redemption `json:"redemption"`
}

func (h HeldRedemption) belongsTo(state *FlowState) bool {
	return state.MembershipID != "" && h.UserID == state.UserID && h.MembershipID == state.MembershipID
}

type RedemptionStore interface {
	Put(ctx context.Context, id string, h HeldRedemption) error
	// Get returns apperr.ErrInvalidRedemption for an unknown or spent id.
	Get(ctx context.Context, id string) (HeldRedemption, error)
	// Take removes and returns the redemption in one step; only one caller wins.
	Take(ctx context.Context, id string) (HeldRedemption, error)
}

type RedisRedemptions struct {
	rdb *redis.Client
}

func NewRedisRedemptions(rdb *redis.Client) *RedisRedemptions {
	return &RedisRedemptions{rdb: rdb}
}

func (s *RedisRedemptions) Put(ctx context.Context, id string, h HeldRedemption) error {
	b, err := json.Marshal(h)
	if err != nil {
		return fmt.Errorf("encode redemption: %w", err)
	}
	return s.rdb.Set(ctx, fmt.Sprintf(redisx.KeyRedemption, id), b, redisx.TTLRedemption).Err()
}

func (s *RedisRedemptions) Get(ctx context.Context, id string) (HeldRedemption, error) {
	v, err := redisx.GetString(ctx, s.rdb, fmt.Sprintf(redisx.KeyRedemption, id))
	if err != nil {
		return HeldRedemption{}, err
	}
	if v == "" {
		return HeldRedemption{}, apperr.ErrInvalidRedemption
	}
	return decodeHeld(v)
}

func (s *RedisRedemptions) Take(ctx context.Context, id string) (HeldRedemption, error) {
	v, err := s.rdb.GetDel(ctx, fmt.Sprintf(redisx.KeyRedemption, id)).Result()
	if errors.Is(err, redis.Nil) {
		return HeldRedemption{}, apperr.ErrInvalidRedemption
	}
	if err != nil {
		return HeldRedemption{}, err
	}
	return decodeHeld(v)
}

func decodeHeld(v string) (HeldRedemption, error) {
	var h HeldRedemption
	if err := json.Unmarshal([]byte(v), &h); err != nil {
		return HeldRedemption{}, fmt.Errorf("decode redemption: %w", err)
	}
	return h, nil
}
