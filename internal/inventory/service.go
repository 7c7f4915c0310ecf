package inventory

import (
	"context"
	"errors"

	"github.com/ariefcatur/go-pethotel-pos/internal/apperr"
	"github.com/ariefcatur/go-pethotel-pos/internal/metrics"
	"github.com/ariefcatur/go-pethotel-pos/internal/pos"
	"go.uber.org/zap"
)

const (
	ReasonInsufficientStock = "INSUFFICIENT_STOCK"
	ReasonNotFound          = "PRODUCT_NOT_FOUND"
	ReasonInvalidProduct    = "INVALID_PRODUCT"
)

type Store interface {
	// Decrement lowers stock by qty only when enough is on hand. It returns
	// apperr.ErrInsufficientStock with the available amount, or apperr.ErrProductNotFound.
	Decrement(ctx context.Context, it pos.StockItem) (available int, err error)
}

// Skipped describes a decrement that was not applied. The sale still goes through.
type Skipped struct {
	ProductID string `json:"product_id"`
	Reason    string `json:"reason"`
	Required  int    `json:"required"`
	Available int    `json:"available"`
}

type Service struct {
	Store   Store
	Metrics *metrics.Metrics
	Log     *zap.Logger
}

// DecrementAll applies every cart line to stock. Lines that would underflow, point at
// an unknown product or lack product details are skipped and logged. A store failure
// stops the loop; decrements already applied stay applied.
func (s *Service) DecrementAll(ctx context.Context, items []pos.CartItem) ([]Skipped, error) {
	var skipped []Skipped
	for _, it := range items {
		si := pos.StockItem{ProductID: it.ID, Category: it.Category, Subtype: it.Subtype, Qty: it.Quantity}
		if si.ProductID == "" || si.Category == "" || si.Subtype == "" {
			skipped = append(skipped, s.skip(si, ReasonInvalidProduct, 0))
			continue
		}
		if si.Qty <= 0 {
			continue
		}

		available, err := s.Store.Decrement(ctx, si)
		switch {
		case err == nil:
		case errors.Is(err, apperr.ErrInsufficientStock):
			skipped = append(skipped, s.skip(si, ReasonInsufficientStock, available))
		case errors.Is(err, apperr.ErrProductNotFound):
			skipped = append(skipped, s.skip(si, ReasonNotFound, 0))
		default:
			return skipped, apperr.IO("inventory.decrement", err)
		}
	}
	return skipped, nil
}

func (s *Service) skip(si pos.StockItem, reason string, available int) Skipped {
	s.Log.Warn("stock decrement skipped",
		zap.String("product_id", si.ProductID),
		zap.String("category", si.Category),
		zap.String("type", si.Subtype),
		zap.String("reason", reason),
		zap.Int("required", si.Qty),
		zap.Int("available", available))
	s.Metrics.StockSkips.WithLabelValues(reason).Inc()
	return Skipped{ProductID: si.ProductID, Reason: reason, Required: si.Qty, Available: available}
}
