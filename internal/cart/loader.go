package cart

import (
	"context"

	"github.com/ariefcatur/go-pethotel-pos/internal/pos"
	"go.uber.org/zap"
)

type Store interface {
	// Items returns apperr.ErrCartNotFound when the user has no cart document.
	Items(ctx context.Context, userID string) ([]pos.CartItem, error)
	Clear(ctx context.Context, userID string) error
}

type Loader struct {
	store Store
	log   *zap.Logger
}

func NewLoader(store Store, log *zap.Logger) *Loader {
	return &Loader{store: store, log: log}
}

// Load returns the user's cart. A missing cart or a failed read yields an empty cart.
func (l *Loader) Load(ctx context.Context, userID string) []pos.CartItem {
	if userID == "" {
		return []pos.CartItem{}
	}
	items, err := l.store.Items(ctx, userID)
	if err != nil {
		l.log.Warn("cart load failed, using empty cart", zap.String("user_id", userID), zap.Error(err))
		return []pos.CartItem{}
	}
	if items == nil {
		return []pos.CartItem{}
	}
	return items
}

func (l *Loader) Clear(ctx context.Context, userID string) error {
	return l.store.Clear(ctx, userID)
}
