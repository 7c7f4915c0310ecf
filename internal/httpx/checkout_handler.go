package httpx

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ariefcatur/go-pethotel-pos/internal/apperr"
	"github.com/ariefcatur/go-pethotel-pos/internal/checkout"
	"github.com/ariefcatur/go-pethotel-pos/internal/membership"
	"github.com/ariefcatur/go-pethotel-pos/internal/pos"
	"github.com/ariefcatur/go-pethotel-pos/internal/pricing"
	"github.com/ariefcatur/go-pethotel-pos/internal/redisx"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	idemPending    = "pending"
	confirmTimeout = 10 * time.Second
)

type CheckoutFlow interface {
	Quote(ctx context.Context, state *checkout.FlowState) (checkout.Quote, error)
	ApplyStaffDiscount(state *checkout.FlowState)
	AttachMember(ctx context.Context, state *checkout.FlowState, membershipID string) (pos.Member, error)
	Redeem(ctx context.Context, state *checkout.FlowState) (membership.Redemption, error)
	Change(ctx context.Context, state *checkout.FlowState, tendered decimal.Decimal) (checkout.ChangePreview, error)
	ConfirmCashPayment(ctx context.Context, state *checkout.FlowState, tendered decimal.Decimal) (checkout.Receipt, error)
}

// CheckoutHandler serves the staff checkout. The client keeps the FlowState and
// sends it back with every step; the user id always comes from the identity header.
type CheckoutHandler struct {
	Flow  CheckoutFlow
	Redis *redis.Client
	Log   *zap.Logger
	// ConfirmTimeout bounds a cash confirmation; zero means 10s.
	ConfirmTimeout time.Duration
}

type checkoutReq struct {
	State        checkout.FlowState `json:"state"`
	MembershipID string             `json:"membership_id,omitempty"`
	Cash         any                `json:"cash,omitempty"`
}

type checkoutResp struct {
	State  checkout.FlowState `json:"state"`
	Result any                `json:"result,omitempty"`
}

type replayedReceipt struct {
	TransactionID string `json:"transaction_id"`
	Idempotent    bool   `json:"idempotent"`
}

func (h *CheckoutHandler) Register(r chi.Router) {
	r.Route("/checkout", func(r chi.Router) {
		r.Post("/quote", h.quote)
		r.Post("/discount", h.discount)
		r.Post("/member", h.member)
		r.Post("/redeem", h.redeem)
		r.Post("/change", h.change)
		r.Post("/cash", h.cash)
	})
}

func (h *CheckoutHandler) request(w http.ResponseWriter, r *http.Request) (checkoutReq, bool) {
	var req checkoutReq
	if !decode(w, r, &req) {
		return req, false
	}
	req.State.UserID = userID(r)
	return req, true
}

// tendered reads the cash field; anything without a leading number is rejected
// instead of being taken as zero.
func tendered(w http.ResponseWriter, log *zap.Logger, v any) (decimal.Decimal, bool) {
	cash, ok := pricing.ParseCash(v)
	if !ok {
		writeError(w, log, apperr.ErrInvalidCash)
	}
	return cash, ok
}

func (h *CheckoutHandler) quote(w http.ResponseWriter, r *http.Request) {
	req, ok := h.request(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	q, err := h.Flow.Quote(ctx, &req.State)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, checkoutResp{State: req.State, Result: q})
}

func (h *CheckoutHandler) discount(w http.ResponseWriter, r *http.Request) {
	req, ok := h.request(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	h.Flow.ApplyStaffDiscount(&req.State)
	q, err := h.Flow.Quote(ctx, &req.State)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, checkoutResp{State: req.State, Result: q})
}

func (h *CheckoutHandler) member(w http.ResponseWriter, r *http.Request) {
	req, ok := h.request(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	m, err := h.Flow.AttachMember(ctx, &req.State, req.MembershipID)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, checkoutResp{State: req.State, Result: m})
}

func (h *CheckoutHandler) redeem(w http.ResponseWriter, r *http.Request) {
	req, ok := h.request(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	red, err := h.Flow.Redeem(ctx, &req.State)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, checkoutResp{State: req.State, Result: red})
}

func (h *CheckoutHandler) change(w http.ResponseWriter, r *http.Request) {
	req, ok := h.request(w, r)
	if !ok {
		return
	}
	cash, ok := tendered(w, h.Log, req.Cash)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p, err := h.Flow.Change(ctx, &req.State, cash)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, checkoutResp{State: req.State, Result: p})
}

// cash confirms the payment. With an Idempotency-Key header a repeated submit gets
// the first transaction id back instead of a second sale.
func (h *CheckoutHandler) cash(w http.ResponseWriter, r *http.Request) {
	req, ok := h.request(w, r)
	if !ok {
		return
	}
	cash, ok := tendered(w, h.Log, req.Cash)
	if !ok {
		return
	}
	timeout := h.ConfirmTimeout
	if timeout <= 0 {
		timeout = confirmTimeout
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()

	var idemKey string
	if k := r.Header.Get("Idempotency-Key"); k != "" && h.Redis != nil {
		idemKey = fmt.Sprintf(redisx.KeyIdemCheckout, k)
		claimed, err := redisx.Claim(ctx, h.Redis, idemKey, idemPending, redisx.TTLIdempotency)
		switch {
		case err != nil:
			// redis is only a guard; carry on without it
			h.Log.Warn("idempotency claim failed", zap.String("key", k), zap.Error(err))
			idemKey = ""
		case !claimed:
			h.replay(ctx, w, idemKey)
			return
		}
	}

	rc, err := h.Flow.ConfirmCashPayment(ctx, &req.State, cash)
	// the key must be settled even when the confirmation ran out of time
	settle := context.WithoutCancel(ctx)
	if err != nil {
		if idemKey != "" {
			if derr := h.Redis.Del(settle, idemKey).Err(); derr != nil {
				h.Log.Warn("idempotency release failed", zap.String("key", idemKey), zap.Error(derr))
			}
		}
		writeError(w, h.Log, err)
		return
	}
	if idemKey != "" {
		if serr := h.Redis.Set(settle, idemKey, rc.TransactionID, redisx.TTLIdempotency).Err(); serr != nil {
			h.Log.Warn("idempotency record failed", zap.String("key", idemKey), zap.Error(serr))
		}
	}
	writeJSON(w, http.StatusCreated, checkoutResp{State: req.State, Result: rc})
}

func (h *CheckoutHandler) replay(ctx context.Context, w http.ResponseWriter, key string) {
	txID, err := redisx.GetString(ctx, h.Redis, key)
	if err != nil {
		h.Log.Warn("idempotency lookup failed", zap.String("key", key), zap.Error(err))
	}
	if txID == "" || txID == idemPending {
		writeJSON(w, http.StatusConflict, errorBody{Error: "payment is already being processed"})
		return
	}
	writeJSON(w, http.StatusOK, replayedReceipt{TransactionID: txID, Idempotent: true})
}
