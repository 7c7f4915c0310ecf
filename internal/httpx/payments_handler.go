package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ariefcatur/go-pethotel-pos/internal/apperr"
	"github.com/ariefcatur/go-pethotel-pos/internal/pos"
	"github.com/ariefcatur/go-pethotel-pos/internal/redisx"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type PaymentReader interface {
	Get(ctx context.Context, transactionID string) (pos.Payment, error)
	List(ctx context.Context, userID string, limit int) ([]pos.Payment, error)
}

type MemberLookup interface {
	LookupByExternalID(ctx context.Context, membershipID string) (pos.Member, error)
}

type PaymentsHandler struct {
	Payments PaymentReader
	Members  MemberLookup
	Redis    *redis.Client
	Log      *zap.Logger
}

func (h *PaymentsHandler) Register(r chi.Router) {
	r.Get("/members/{id}", h.getMember)
	r.Get("/payments/{id}", h.getPayment)
	r.Get("/payments", h.listPayments)
}

func (h *PaymentsHandler) getMember(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	m, err := h.Members.LookupByExternalID(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *PaymentsHandler) getPayment(w http.ResponseWriter, r *http.Request) {
	txID := chi.URLParam(r, "id")
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	// 1) cache
	key := fmt.Sprintf(redisx.KeyPayment, txID)
	if h.Redis != nil {
		if s, err := redisx.GetString(ctx, h.Redis, key); err == nil && s != "" {
			writeJSON(w, http.StatusOK, json.RawMessage(s))
			return
		}
	}

	// 2) ledger
	p, err := h.Payments.Get(ctx, txID)
	if err != nil {
		writeError(w, h.Log, apperr.IO("payments.get", err))
		return
	}
	b, err := json.Marshal(p)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	if h.Redis != nil {
		_ = h.Redis.Set(ctx, key, b, redisx.TTLPaymentCache).Err()
	}
	writeJSON(w, http.StatusOK, json.RawMessage(b))
}

func (h *PaymentsHandler) listPayments(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		writeError(w, h.Log, apperr.ErrMissingUser)
		return
	}
	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			writeError(w, h.Log, apperr.Validation("payments.list", map[string]string{"limit": "limit must be a positive number"}))
			return
		}
		limit = n
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ps, err := h.Payments.List(ctx, uid, limit)
	if err != nil {
		writeError(w, h.Log, apperr.IO("payments.list", err))
		return
	}
	writeJSON(w, http.StatusOK, ps)
}
