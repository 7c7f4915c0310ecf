package counter

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const Collection = "metadata"

// MongoAllocator keeps the sequence in metadata/{kind}Counter, the document the
// storefront already uses, and bumps it with one atomic $inc.
type MongoAllocator struct {
	coll *mongo.Collection
}

func NewMongoAllocator(db *mongo.Database) *MongoAllocator {
	return &MongoAllocator{coll: db.Collection(Collection)}
}

func field(kind Kind) string {
	if kind == Booking {
		return "lastBookingID"
	}
	return "lastTransactionID"
}

func (a *MongoAllocator) Next(ctx context.Context, kind Kind) (string, error) {
	f := field(kind)
	var doc bson.M
	err := a.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": string(kind) + "Counter"},
		bson.M{"$inc": bson.M{f: int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return "", fmt.Errorf("allocate %s id: %w", kind, err)
	}

	var n int64
	switch v := doc[f].(type) {
	case int32:
		n = int64(v)
	case int64:
		n = v
	case float64:
		n = int64(v)
	default:
		return "", fmt.Errorf("allocate %s id: unexpected counter type %T", kind, v)
	}
	return Format(kind, n), nil
}
