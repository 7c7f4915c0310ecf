// Package checkout runs the staff cash checkout: load the cart, price it, settle
// membership points, then commit and send the receipt.
package checkout

import (
	"context"

	"github.com/ariefcatur/go-pethotel-pos/internal/apperr"
	"github.com/ariefcatur/go-pethotel-pos/internal/membership"
	"github.com/ariefcatur/go-pethotel-pos/internal/metrics"
	"github.com/ariefcatur/go-pethotel-pos/internal/pos"
	"github.com/ariefcatur/go-pethotel-pos/internal/pricing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type CartLoader interface {
	Load(ctx context.Context, userID string) []pos.CartItem
}

type Ledger interface {
	LookupByExternalID(ctx context.Context, membershipID string) (pos.Member, error)
	AccruePoints(ctx context.Context, membershipID string, amount int64) (pos.Member, error)
	RedeemPoints(ctx context.Context, membershipID string, amount int64) (membership.Redemption, error)
}

type Service struct {
	Cart      CartLoader
	Ledger      Ledger
	Redemptions RedemptionStore
	Committer   *Committer
	Rates     pricing.Rates
	Metrics   *metrics.Metrics
	Log       *zap.Logger
}

type Quote struct {
	Items     []pos.CartItem    `json:"items"`
	Breakdown pricing.Breakdown `json:"breakdown"`
	Member    *pos.Member       `json:"member,omitempty"`
}

type ChangePreview struct {
	Total     decimal.Decimal `json:"total_price"`
	Tendered  decimal.Decimal `json:"amount_paid"`
	Change    decimal.Decimal `json:"change"`
	Shortfall decimal.Decimal `json:"shortfall"`
}

// price loads the cart and prices it. A referenced redemption must still be held
// for this user and member, otherwise the checkout is rejected.
func (s *Service) price(ctx context.Context, state *FlowState) ([]pos.CartItem, pricing.Breakdown, *HeldRedemption, error) {
	held, err := s.heldRedemption(ctx, state)
	if err != nil {
		return nil, pricing.Breakdown{}, nil, err
	}
	var redeemed int64
	if held != nil {
		redeemed = held.Redemption.Forfeited
	}
	items := s.Cart.Load(ctx, state.UserID)
	return items, s.Rates.Price(items, state.StaffDiscount, redeemed), held, nil
}

func (s *Service) heldRedemption(ctx context.Context, state *FlowState) (*HeldRedemption, error) {
	if state.RedemptionID == "" {
		return nil, nil
	}
	h, err := s.Redemptions.Get(ctx, state.RedemptionID)
	if err != nil {
		return nil, apperr.IO("checkout.redemption", err)
	}
	if !h.belongsTo(state) {
		s.Log.Warn("redemption does not match checkout",
			zap.String("redemption_id", state.RedemptionID),
			zap.String("user_id", state.UserID),
			zap.String("membership_id", state.MembershipID))
		return nil, apperr.ErrInvalidRedemption
	}
	return &h, nil
}

// Quote prices the current cart under the flow's discount and redemption.
func (s *Service) Quote(ctx context.Context, state *FlowState) (Quote, error) {
	if state.UserID == "" {
		return Quote{}, apperr.ErrMissingUser
	}
	items, b, _, err := s.price(ctx, state)
	if err != nil {
		return Quote{}, err
	}
	q := Quote{Items: items, Breakdown: b.Display()}
	if state.MembershipID != "" {
		m, err := s.Ledger.LookupByExternalID(ctx, state.MembershipID)
		if err != nil {
			return Quote{}, err
		}
		q.Member = &m
	}
	return q, nil
}

func (s *Service) ApplyStaffDiscount(state *FlowState) {
	state.StaffDiscount = true
}

// AttachMember links a membership to the flow after checking it exists. Switching to
// another member drops any redemption made for the previous one.
func (s *Service) AttachMember(ctx context.Context, state *FlowState, membershipID string) (pos.Member, error) {
	m, err := s.Ledger.LookupByExternalID(ctx, membershipID)
	if err != nil {
		return pos.Member{}, err
	}
	if state.MembershipID != membershipID {
		state.RedemptionID = ""
	}
	state.MembershipID = membershipID
	return m, nil
}

// Redeem spends the member's whole displayed balance on this checkout. The
// redemption is held server side and the flow only keeps its id.
func (s *Service) Redeem(ctx context.Context, state *FlowState) (membership.Redemption, error) {
	if state.MembershipID == "" {
		return membership.Redemption{}, apperr.ErrNotMember
	}
	m, err := s.Ledger.LookupByExternalID(ctx, state.MembershipID)
	if err != nil {
		return membership.Redemption{}, err
	}
	r, err := s.Ledger.RedeemPoints(ctx, state.MembershipID, m.Points)
	if err != nil {
		return membership.Redemption{}, err
	}
	id := uuid.NewString()
	held := HeldRedemption{UserID: state.UserID, MembershipID: state.MembershipID, Redemption: r}
	if err := s.Redemptions.Put(ctx, id, held); err != nil {
		s.Log.Error("hold redemption failed",
			zap.String("membership_id", state.MembershipID),
			zap.Int64("forfeited", r.Forfeited),
			zap.Error(err))
		return membership.Redemption{}, apperr.IO("checkout.redeem", err)
	}
	state.RedemptionID = id
	return r, nil
}

// Change previews the change for tendered cash without touching anything.
func (s *Service) Change(ctx context.Context, state *FlowState, tendered decimal.Decimal) (ChangePreview, error) {
	if state.UserID == "" {
		return ChangePreview{}, apperr.ErrMissingUser
	}
	if tendered.IsNegative() {
		return ChangePreview{}, apperr.ErrInvalidCash
	}
	_, b, _, err := s.price(ctx, state)
	if err != nil {
		return ChangePreview{}, err
	}
	diff := pricing.ChangeDue(tendered, b.TotalPrice)
	p := ChangePreview{Total: b.TotalPrice.Round(2), Tendered: tendered.Round(2), Change: diff, Shortfall: decimal.Zero}
	if diff.IsNegative() {
		p.Change = decimal.Zero
		p.Shortfall = diff.Neg()
	}
	return p, nil
}

// ConfirmCashPayment takes the cash and commits the sale. Short cash fails before
// anything is written. Members earn one point per whole currency unit paid. A held
// redemption is spent by exactly one sale, and a committed sale resets the flow.
func (s *Service) ConfirmCashPayment(ctx context.Context, state *FlowState, tendered decimal.Decimal) (Receipt, error) {
	if state.UserID == "" {
		return Receipt{}, apperr.ErrMissingUser
	}
	if tendered.IsNegative() {
		return Receipt{}, apperr.ErrInvalidCash
	}
	items, b, held, err := s.price(ctx, state)
	if err != nil {
		return Receipt{}, err
	}
	if len(items) == 0 {
		return Receipt{}, apperr.ErrEmptyCart
	}

	total := b.TotalPrice.Round(2)
	if tendered.Round(2).LessThan(total) {
		s.Metrics.Checkouts.WithLabelValues("insufficient_cash").Inc()
		short := total.Sub(tendered.Round(2))
		return Receipt{}, &apperr.Error{
			Kind: apperr.KindInsufficientResource,
			Op:   "checkout.confirm",
			Msg:  "you need " + short.StringFixed(2) + " more",
			Err:  apperr.ErrInsufficientCash,
		}
	}

	if held != nil {
		if _, err := s.Redemptions.Take(ctx, state.RedemptionID); err != nil {
			return Receipt{}, apperr.IO("checkout.confirm", err)
		}
	}

	var snap *pos.MemberSnapshot
	if state.MembershipID != "" {
		if snap, err = s.settlePoints(ctx, state, total, held); err != nil {
			s.releaseRedemption(ctx, state.RedemptionID, held)
			return Receipt{}, err
		}
	}

	rc, err := s.Committer.Commit(ctx, state, CommitInput{
		UserID:    state.UserID,
		Items:     items,
		Breakdown: b,
		Tendered:  tendered,
		Member:    snap,
	})
	if err != nil {
		s.releaseRedemption(ctx, state.RedemptionID, held)
		return Receipt{}, err
	}
	state.end()
	return rc, nil
}

// releaseRedemption puts a taken redemption back so a retried sale can still spend it.
func (s *Service) releaseRedemption(ctx context.Context, id string, held *HeldRedemption) {
	if held == nil {
		return
	}
	if err := s.Redemptions.Put(context.WithoutCancel(ctx), id, *held); err != nil {
		s.Log.Error("release redemption failed",
			zap.String("redemption_id", id),
			zap.String("membership_id", held.MembershipID),
			zap.Error(err))
	}
}

func (s *Service) settlePoints(ctx context.Context, state *FlowState, total decimal.Decimal, held *HeldRedemption) (*pos.MemberSnapshot, error) {
	earned := s.Rates.EarnedPoints(total)
	var (
		m   pos.Member
		err error
	)
	if earned > 0 {
		m, err = s.Ledger.AccruePoints(ctx, state.MembershipID, earned)
	} else {
		m, err = s.Ledger.LookupByExternalID(ctx, state.MembershipID)
	}
	if err != nil {
		s.Log.Error("settle member points failed",
			zap.String("membership_id", state.MembershipID),
			zap.Int64("earned", earned),
			zap.Error(err))
		return nil, err
	}

	snap := &pos.MemberSnapshot{
		MembershipID: m.MembershipID,
		Name:         m.Name,
		Email:        m.Email,
		Points:       m.Points,
		AddedPoints:  earned,
	}
	if held != nil {
		snap.RedeemedPoints = held.Redemption.Requested
	}
	return snap, nil
}
