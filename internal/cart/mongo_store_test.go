package cart

import (
	"context"
	"testing"

	"github.com/ariefcatur/go-pethotel-pos/internal/apperr"
	"github.com/ariefcatur/go-pethotel-pos/internal/mongox/mongotest"
	"github.com/ariefcatur/go-pethotel-pos/internal/pos"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestMongoStore_NotFound(t *testing.T) {
	s := NewMongoStore(mongotest.New(t))

	_, err := s.Items(context.Background(), "nobody")
	assert.ErrorIs(t, err, apperr.ErrCartNotFound)
}

func TestMongoStore_PutItemsClear(t *testing.T) {
	s := NewMongoStore(mongotest.New(t))
	ctx := context.Background()

	err := s.Put(ctx, "u1", []pos.CartItem{
		{ID: "p1", Name: "Kibble", Category: "food", Subtype: "dry", UnitPrice: decimal.RequireFromString("12.5"), Quantity: 2},
	})
	require.NoError(t, err)

	items, err := s.Items(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "dry", items[0].Subtype)
	assert.Equal(t, 2, items[0].Quantity)
	assert.True(t, decimal.RequireFromString("12.5").Equal(items[0].UnitPrice))

	require.NoError(t, s.Clear(ctx, "u1"))
	items, err = s.Items(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestMongoStore_MixedRawValues(t *testing.T) {
	db := mongotest.New(t)
	s := NewMongoStore(db)
	ctx := context.Background()

	_, err := db.Collection(Collection).InsertOne(ctx, bson.M{
		"_id": "u2",
		"cart": bson.A{
			bson.M{"id": "a", "price": 9.5, "quantity": "3"},
			bson.M{"id": "b", "price": "oops", "quantity": 1},
		},
	})
	require.NoError(t, err)

	items, err := s.Items(ctx, "u2")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.True(t, decimal.RequireFromString("9.5").Equal(items[0].UnitPrice))
	assert.Equal(t, 3, items[0].Quantity)
	assert.True(t, items[1].UnitPrice.IsZero())
}
