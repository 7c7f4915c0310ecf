package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariefcatur/go-pethotel-pos/internal/apperr"
	"github.com/ariefcatur/go-pethotel-pos/internal/pos"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const Collection = "products"

type productDoc struct {
	ID       string `bson:"_id"`
	Category string `bson:"category"`
	Subtype  string `bson:"subtype"`
	Stock    int    `bson:"product_stock"`
}

type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{coll: db.Collection(Collection)}
}

func filterFor(it pos.StockItem) bson.M {
	return bson.M{"_id": it.ProductID, "category": it.Category, "subtype": it.Subtype}
}

// Decrement is a single conditional update, so stock cannot go below zero even
// when two checkouts race on the same product.
func (s *MongoStore) Decrement(ctx context.Context, it pos.StockItem) (int, error) {
	filter := filterFor(it)
	filter["product_stock"] = bson.M{"$gte": it.Qty}

	var after productDoc
	err := s.coll.FindOneAndUpdate(ctx, filter,
		bson.M{"$inc": bson.M{"product_stock": -it.Qty}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&after)
	if err == nil {
		return after.Stock, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return 0, fmt.Errorf("failed to decrement stock: %w", err)
	}

	var cur productDoc
	err = s.coll.FindOne(ctx, filterFor(it)).Decode(&cur)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, apperr.ErrProductNotFound
		}
		return 0, fmt.Errorf("failed to read stock: %w", err)
	}
	return cur.Stock, apperr.ErrInsufficientStock
}

func (s *MongoStore) Stock(ctx context.Context, it pos.StockItem) (int, error) {
	var cur productDoc
	err := s.coll.FindOne(ctx, filterFor(it)).Decode(&cur)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, apperr.ErrProductNotFound
		}
		return 0, fmt.Errorf("failed to read stock: %w", err)
	}
	return cur.Stock, nil
}

func (s *MongoStore) Upsert(ctx context.Context, it pos.StockItem) error {
	_, err := s.coll.UpdateOne(ctx, filterFor(it),
		bson.M{"$set": bson.M{"product_stock": it.Qty}},
		options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert product: %w", err)
	}
	return nil
}
