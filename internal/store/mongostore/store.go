// Package mongostore implements the store interfaces on MongoDB. Money is kept
// as Decimal128 so aggregation sums stay exact.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/NomadCrew/nomad-split-backend/config"
	"github.com/NomadCrew/nomad-split-backend/internal/store"
	"github.com/NomadCrew/nomad-split-backend/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	usersCollection          = "users"
	groupsCollection         = "groups"
	friendshipsCollection    = "friendships"
	friendRequestsCollection = "friend_requests"
	transactionsCollection   = "transactions"
)

// Connect opens a client from cfg and verifies the primary is reachable.
func Connect(ctx context.Context, cfg *config.MongoConfig) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, config.ConfigureMongoClientOptions(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.TimeoutSeconds)*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}
	return client, nil
}

// Ensure Store implements store.Store interface.
var _ store.Store = (*Store)(nil)

type Store struct {
	db           *mongo.Database
	users        *UserStore
	groups       *GroupStore
	friends      *FriendStore
	transactions *TransactionStore
}

func NewStore(db *mongo.Database) *Store {
	users := &UserStore{coll: db.Collection(usersCollection)}
	return &Store{
		db:     db,
		users:  users,
		groups: &GroupStore{coll: db.Collection(groupsCollection)},
		friends: &FriendStore{
			friendships: db.Collection(friendshipsCollection),
			requests:    db.Collection(friendRequestsCollection),
			users:       users,
		},
		transactions: &TransactionStore{coll: db.Collection(transactionsCollection)},
	}
}

func (s *Store) Users() store.UserStore               { return s.users }
func (s *Store) Groups() store.GroupStore             { return s.groups }
func (s *Store) Friends() store.FriendStore           { return s.friends }
func (s *Store) Transactions() store.TransactionStore { return s.transactions }

func (s *Store) Ping(ctx context.Context) error {
	return s.db.Client().Ping(ctx, readpref.Primary())
}

// EnsureIndexes creates the indexes the queries rely on. Existing indexes are left alone.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	log := logger.GetLogger()

	indexes := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "emailLower", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		groupsCollection: {
			{Keys: bson.D{{Key: "members.userId", Value: 1}, {Key: "lastActivity", Value: -1}}},
		},
		friendshipsCollection: {
			{Keys: bson.D{{Key: "userId", Value: 1}}},
		},
		friendRequestsCollection: {
			{
				Keys: bson.D{{Key: "fromUserId", Value: 1}, {Key: "toUserId", Value: 1}},
				Options: options.Index().
					SetUnique(true).
					SetPartialFilterExpression(bson.M{"status": "pending"}),
			},
			{Keys: bson.D{{Key: "toUserId", Value: 1}, {Key: "status", Value: 1}}},
		},
		transactionsCollection: {
			{Keys: bson.D{{Key: "groupId", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "participants.userId", Value: 1}}},
			{Keys: bson.D{{Key: "payerId", Value: 1}}},
		},
	}

	for coll, models := range indexes {
		names, err := s.db.Collection(coll).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", coll, err)
		}
		log.Debugw("Ensured mongo indexes", "collection", coll, "indexes", names)
	}
	return nil
}

func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return store.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", store.ErrConflict, err)
	default:
		return err
	}
}
