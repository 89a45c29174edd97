package mongostore

import (
	"context"
	"fmt"
	"time"

	"github.com/NomadCrew/nomad-split-backend/internal/store"
	"github.com/NomadCrew/nomad-split-backend/types"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Ensure GroupStore implements store.GroupStore interface.
var _ store.GroupStore = (*GroupStore)(nil)

type GroupStore struct {
	coll *mongo.Collection
}

func (s *GroupStore) Create(ctx context.Context, group *types.Group) error {
	_, err := s.coll.InsertOne(ctx, newGroupDoc(group))
	return mapError(err)
}

func (s *GroupStore) GetByID(ctx context.Context, id string) (*types.Group, error) {
	var doc groupDoc
	if err := s.coll.FindOne(ctx, bson.M{"_id": id, "isActive": true}).Decode(&doc); err != nil {
		return nil, mapError(err)
	}
	return doc.toGroup(), nil
}

func (s *GroupStore) Update(ctx context.Context, group *types.Group) error {
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": group.ID, "isActive": true}, bson.M{"$set": bson.M{
		"name":        group.Name,
		"description": group.Description,
		"currency":    group.Currency,
		"category":    string(group.Category),
		"settings":    group.Settings,
		"updatedAt":   group.UpdatedAt,
	}})
	if err != nil {
		return mapError(err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *GroupStore) SoftDelete(ctx context.Context, id string) error {
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": id, "isActive": true}, bson.M{"$set": bson.M{
		"isActive":  false,
		"updatedAt": time.Now().UTC(),
	}})
	if err != nil {
		return mapError(err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *GroupStore) ListByMember(ctx context.Context, userID string, offset, limit int) ([]*types.Group, int, error) {
	filter := bson.M{"members.userId": userID, "isActive": true}

	total, err := s.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count groups: %w", err)
	}

	opts := options.Find().SetSort(bson.D{{Key: "lastActivity", Value: -1}})
	if limit > 0 {
		opts.SetSkip(int64(offset)).SetLimit(int64(limit))
	}
	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query groups: %w", err)
	}

	var docs []groupDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("failed to decode groups: %w", err)
	}
	groups := make([]*types.Group, 0, len(docs))
	for _, d := range docs {
		groups = append(groups, d.toGroup())
	}
	return groups, int(total), nil
}

func (s *GroupStore) AddMember(ctx context.Context, groupID string, member types.GroupMember) error {
	// Already-present members do not match the filter, so re-adding is a no-op.
	_, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": groupID, "members.userId": bson.M{"$ne": member.UserID}},
		bson.M{"$push": bson.M{"members": newMemberDoc(member)}})
	return mapError(err)
}

func (s *GroupStore) RemoveMember(ctx context.Context, groupID, userID string) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": groupID, "members.userId": userID},
		bson.M{"$pull": bson.M{"members": bson.M{"userId": userID}}})
	if err != nil {
		return mapError(err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *GroupStore) UpdateTotals(ctx context.Context, groupID string, totals store.GroupTotals, lastActivity time.Time) error {
	_, err := s.coll.UpdateByID(ctx, groupID, bson.M{"$set": bson.M{
		"totalExpenses":   toDecimal128(totals.Total),
		"settledExpenses": toDecimal128(totals.Settled),
		"lastActivity":    lastActivity,
		"updatedAt":       time.Now().UTC(),
	}})
	return mapError(err)
}
