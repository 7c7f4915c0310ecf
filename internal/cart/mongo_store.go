package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariefcatur/go-pethotel-pos/internal/apperr"
	"github.com/ariefcatur/go-pethotel-pos/internal/pos"
	"github.com/ariefcatur/go-pethotel-pos/internal/pricing"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const Collection = "carts"

// cartDoc mirrors carts/{userID}. Price and quantity are kept raw because
// the storefront writes them as numbers or as text.
type cartDoc struct {
	ID    string    `bson:"_id"`
	Items []itemDoc `bson:"cart"`
}

type itemDoc struct {
	ID       string `bson:"id"`
	Name     string `bson:"name"`
	Category string `bson:"category"`
	Type     string `bson:"type"`
	Price    any    `bson:"price"`
	Quantity any    `bson:"quantity"`
	Image    string `bson:"image,omitempty"`
	Barcode  string `bson:"barcode,omitempty"`
}

type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{coll: db.Collection(Collection)}
}

func (s *MongoStore) Items(ctx context.Context, userID string) ([]pos.CartItem, error) {
	var doc cartDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": userID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	out := make([]pos.CartItem, 0, len(doc.Items))
	for _, it := range doc.Items {
		out = append(out, pos.CartItem{
			ID:        it.ID,
			Name:      it.Name,
			Category:  it.Category,
			Subtype:   it.Type,
			UnitPrice: pricing.ParseAmount(it.Price),
			Quantity:  pricing.ParseQuantity(it.Quantity),
			ImageRef:  it.Image,
			Barcode:   it.Barcode,
		})
	}
	return out, nil
}

// Clear replaces the cart with an empty list, creating the document if needed.
func (s *MongoStore) Clear(ctx context.Context, userID string) error {
	_, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"cart": bson.A{}}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// Put overwrites the user's cart. The storefront owns cart edits; this serves seeding and tests.
func (s *MongoStore) Put(ctx context.Context, userID string, items []pos.CartItem) error {
	docs := make([]itemDoc, 0, len(items))
	for _, it := range items {
		docs = append(docs, itemDoc{
			ID: it.ID, Name: it.Name, Category: it.Category, Type: it.Subtype,
			Price: it.UnitPrice.String(), Quantity: it.Quantity,
			Image: it.ImageRef, Barcode: it.Barcode,
		})
	}
	_, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"cart": docs}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to put cart: %w", err)
	}
	return nil
}
