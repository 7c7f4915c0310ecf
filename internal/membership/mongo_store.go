package membership

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariefcatur/go-pethotel-pos/internal/apperr"
	"github.com/ariefcatur/go-pethotel-pos/internal/pos"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const Collection = "users"

type userDoc struct {
	ID           any    `bson:"_id"`
	MembershipID string `bson:"membershipId"`
	Name         string `bson:"name"`
	Email        string `bson:"email"`
	Points       any    `bson:"points"`
}

type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{coll: db.Collection(Collection)}
}

func (s *MongoStore) find(ctx context.Context, membershipID string) (userDoc, error) {
	var doc userDoc
	err := s.coll.FindOne(ctx, bson.M{"membershipId": membershipID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return doc, apperr.ErrMemberNotFound
		}
		return doc, fmt.Errorf("failed to find member: %w", err)
	}
	return doc, nil
}

func (s *MongoStore) FindByMembershipID(ctx context.Context, membershipID string) (pos.Member, error) {
	doc, err := s.find(ctx, membershipID)
	if err != nil {
		return pos.Member{}, err
	}
	return pos.Member{
		MembershipID: doc.MembershipID,
		Name:         doc.Name,
		Email:        doc.Email,
		Points:       toPoints(doc.Points),
	}, nil
}

// SetPoints writes the balance on the document the membership query resolves to.
func (s *MongoStore) SetPoints(ctx context.Context, membershipID string, points int64) error {
	doc, err := s.find(ctx, membershipID)
	if err != nil {
		return err
	}
	_, err = s.coll.UpdateOne(ctx, bson.M{"_id": doc.ID}, bson.M{"$set": bson.M{"points": points}})
	if err != nil {
		return fmt.Errorf("failed to update points: %w", err)
	}
	return nil
}

// toPoints tolerates balances stored as int, double or missing.
func toPoints(v any) int64 {
	var n int64
	switch x := v.(type) {
	case int32:
		n = int64(x)
	case int64:
		n = x
	case float64:
		n = int64(x)
	}
	if n < 0 {
		return 0
	}
	return n
}
