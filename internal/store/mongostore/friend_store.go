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

// Ensure FriendStore implements store.FriendStore interface.
var _ store.FriendStore = (*FriendStore)(nil)

// FriendStore keeps one friendship document per direction, keyed by "user:friend".
type FriendStore struct {
	friendships *mongo.Collection
	requests    *mongo.Collection
	users       *UserStore
}

func (s *FriendStore) AreFriends(ctx context.Context, userID, otherID string) (bool, error) {
	n, err := s.friendships.CountDocuments(ctx, bson.M{"_id": friendshipID(userID, otherID)})
	if err != nil {
		return false, fmt.Errorf("failed to check friendship: %w", err)
	}
	return n > 0, nil
}

func (s *FriendStore) AddFriendship(ctx context.Context, userID, otherID string) error {
	now := time.Now().UTC()
	models := []mongo.WriteModel{
		mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": friendshipID(userID, otherID)}).
			SetUpdate(bson.M{"$setOnInsert": friendshipDoc{
				ID: friendshipID(userID, otherID), UserID: userID, FriendID: otherID, CreatedAt: now,
			}}).
			SetUpsert(true),
		mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": friendshipID(otherID, userID)}).
			SetUpdate(bson.M{"$setOnInsert": friendshipDoc{
				ID: friendshipID(otherID, userID), UserID: otherID, FriendID: userID, CreatedAt: now,
			}}).
			SetUpsert(true),
	}
	_, err := s.friendships.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	return mapError(err)
}

func (s *FriendStore) RemoveFriendship(ctx context.Context, userID, otherID string) error {
	res, err := s.friendships.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": []string{
		friendshipID(userID, otherID),
		friendshipID(otherID, userID),
	}}})
	if err != nil {
		return mapError(err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *FriendStore) ListFriends(ctx context.Context, userID string) ([]*types.User, error) {
	cur, err := s.friendships.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to query friendships: %w", err)
	}
	var docs []friendshipDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode friendships: %w", err)
	}

	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.FriendID)
	}
	return s.users.GetByIDs(ctx, ids)
}

func (s *FriendStore) CreateRequest(ctx context.Context, req *types.FriendRequest) error {
	_, err := s.requests.InsertOne(ctx, friendRequestDoc{
		ID:         req.ID,
		FromUserID: req.FromUserID,
		ToUserID:   req.ToUserID,
		Message:    req.Message,
		Status:     string(req.Status),
		CreatedAt:  req.CreatedAt,
		UpdatedAt:  req.UpdatedAt,
	})
	return mapError(err)
}

func (s *FriendStore) GetRequest(ctx context.Context, id string) (*types.FriendRequest, error) {
	var doc friendRequestDoc
	if err := s.requests.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, mapError(err)
	}
	return doc.toFriendRequest(), nil
}

func (s *FriendStore) UpdateRequestStatus(ctx context.Context, id string, status types.FriendRequestStatus) error {
	res, err := s.requests.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"status":    string(status),
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

func (s *FriendStore) ListIncomingRequests(ctx context.Context, userID string) ([]*types.FriendRequest, error) {
	cur, err := s.requests.Find(ctx,
		bson.M{"toUserId": userID, "status": string(types.FriendRequestPending)},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query friend requests: %w", err)
	}
	var docs []friendRequestDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode friend requests: %w", err)
	}

	reqs := make([]*types.FriendRequest, 0, len(docs))
	for _, d := range docs {
		reqs = append(reqs, d.toFriendRequest())
	}
	return reqs, nil
}
