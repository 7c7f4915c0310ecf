// Package membership keeps loyalty point balances.
//
// Every mutation reads the balance, computes the new value and writes it back
// with no version check, so two concurrent checkouts for the same member can
// lose an update.
package membership

import (
	"context"

	"github.com/ariefcatur/go-pethotel-pos/internal/apperr"
	"github.com/ariefcatur/go-pethotel-pos/internal/pos"
	"github.com/ariefcatur/go-pethotel-pos/internal/pricing"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Store interface {
	// FindByMembershipID returns apperr.ErrMemberNotFound when no user carries the id.
	FindByMembershipID(ctx context.Context, membershipID string) (pos.Member, error)
	SetPoints(ctx context.Context, membershipID string, points int64) error
}

// Redemption records what a redeem consumed. Forfeited is the whole previous
// balance, which is also what the point discount is computed from.
type Redemption struct {
	Requested     int64           `json:"requested"`
	Forfeited     int64           `json:"forfeited"`
	PointDiscount decimal.Decimal `json:"point_discount"`
}

type Ledger struct {
	store Store
	rates pricing.Rates
	log   *zap.Logger
}

func NewLedger(store Store, log *zap.Logger) *Ledger {
	return &Ledger{store: store, rates: pricing.DefaultRates(), log: log}
}

func (l *Ledger) LookupByExternalID(ctx context.Context, membershipID string) (pos.Member, error) {
	if membershipID == "" {
		return pos.Member{}, apperr.ErrMemberNotFound
	}
	m, err := l.store.FindByMembershipID(ctx, membershipID)
	if err != nil {
		return pos.Member{}, apperr.IO("membership.lookup", err)
	}
	return m, nil
}

// AccruePoints adds amount to the member's balance and returns the updated record.
func (l *Ledger) AccruePoints(ctx context.Context, membershipID string, amount int64) (pos.Member, error) {
	if amount <= 0 {
		return pos.Member{}, apperr.ErrInvalidAmount
	}
	m, err := l.LookupByExternalID(ctx, membershipID)
	if err != nil {
		return pos.Member{}, err
	}
	m.Points += amount
	if err := l.store.SetPoints(ctx, membershipID, m.Points); err != nil {
		return pos.Member{}, apperr.IO("membership.accrue", err)
	}
	l.log.Info("points accrued",
		zap.String("membership_id", membershipID),
		zap.Int64("added", amount),
		zap.Int64("balance", m.Points))
	return m, nil
}

// RedeemPoints consumes points for a discount. Any successful redeem resets the
// balance to zero, however many points were requested.
func (l *Ledger) RedeemPoints(ctx context.Context, membershipID string, amount int64) (Redemption, error) {
	if amount <= 0 {
		return Redemption{}, apperr.ErrNoPointsToRedeem
	}
	m, err := l.LookupByExternalID(ctx, membershipID)
	if err != nil {
		return Redemption{}, err
	}
	if amount > m.Points {
		return Redemption{}, apperr.ErrInsufficientPoints
	}
	if err := l.store.SetPoints(ctx, membershipID, 0); err != nil {
		return Redemption{}, apperr.IO("membership.redeem", err)
	}
	r := Redemption{
		Requested:     amount,
		Forfeited:     m.Points,
		PointDiscount: l.rates.PointDiscount(m.Points),
	}
	l.log.Info("points redeemed",
		zap.String("membership_id", membershipID),
		zap.Int64("requested", amount),
		zap.Int64("forfeited", m.Points))
	return r, nil
}
