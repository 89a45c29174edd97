package mongostore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/NomadCrew/nomad-split-backend/internal/store"
	"github.com/NomadCrew/nomad-split-backend/types"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Ensure UserStore implements store.UserStore interface.
var _ store.UserStore = (*UserStore)(nil)

type UserStore struct {
	coll *mongo.Collection
}

func (s *UserStore) findOne(ctx context.Context, filter bson.M) (*types.User, error) {
	var doc userDoc
	if err := s.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, mapError(err)
	}
	return doc.toUser(), nil
}

func (s *UserStore) GetByID(ctx context.Context, id string) (*types.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*types.User, error) {
	return s.findOne(ctx, bson.M{"emailLower": strings.ToLower(email)})
}

func (s *UserStore) GetByIDs(ctx context.Context, ids []string) ([]*types.User, error) {
	if len(ids) == 0 {
		return []*types.User{}, nil
	}
	cur, err := s.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}

	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	users := make([]*types.User, 0, len(docs))
	for _, d := range docs {
		users = append(users, d.toUser())
	}
	return users, nil
}

func (s *UserStore) Upsert(ctx context.Context, user *types.User) (*types.User, error) {
	doc := newUserDoc(user)
	now := time.Now().UTC()

	update := bson.M{
		"$set": bson.M{"lastActive": doc.LastActive},
		"$setOnInsert": bson.M{
			"name":           doc.Name,
			"email":          doc.Email,
			"emailLower":     doc.EmailLower,
			"avatar":         doc.Avatar,
			"phoneNumber":    doc.PhoneNumber,
			"preferences":    doc.Preferences,
			"paymentMethods": doc.PaymentMethods,
			"createdAt":      now,
			"updatedAt":      now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var out userDoc
	if err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": user.ID}, update, opts).Decode(&out); err != nil {
		return nil, mapError(err)
	}
	return out.toUser(), nil
}

func (s *UserStore) Update(ctx context.Context, user *types.User) error {
	doc := newUserDoc(user)
	res, err := s.coll.UpdateByID(ctx, user.ID, bson.M{"$set": bson.M{
		"name":           doc.Name,
		"avatar":         doc.Avatar,
		"phoneNumber":    doc.PhoneNumber,
		"preferences":    doc.Preferences,
		"paymentMethods": doc.PaymentMethods,
		"updatedAt":      time.Now().UTC(),
	}})
	if err != nil {
		return mapError(err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
