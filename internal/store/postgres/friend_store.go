package postgres

import (
	"context"
	"fmt"

	"github.com/NomadCrew/nomad-split-backend/internal/store"
	"github.com/NomadCrew/nomad-split-backend/types"
	"github.com/jackc/pgx/v5"
)

// Ensure FriendStore implements store.FriendStore interface.
var _ store.FriendStore = (*FriendStore)(nil)

const friendRequestColumns = `
	id::text, from_user_id::text, to_user_id::text, message, status, created_at, updated_at`

type FriendStore struct {
	db DBTX
}

func NewFriendStore(db DBTX) *FriendStore {
	return &FriendStore{db: db}
}

func (s *FriendStore) AreFriends(ctx context.Context, userID, otherID string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM friendships WHERE user_id = $1 AND friend_id = $2)`,
		userID, otherID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check friendship: %w", err)
	}
	return exists, nil
}

func (s *FriendStore) AddFriendship(ctx context.Context, userID, otherID string) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO friendships (user_id, friend_id)
		VALUES ($1, $2), ($2, $1)
		ON CONFLICT (user_id, friend_id) DO NOTHING`,
		userID, otherID)
	return mapError(err)
}

func (s *FriendStore) RemoveFriendship(ctx context.Context, userID, otherID string) error {
	tag, err := s.db.Exec(ctx, `
		DELETE FROM friendships
		WHERE (user_id = $1 AND friend_id = $2) OR (user_id = $2 AND friend_id = $1)`,
		userID, otherID)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *FriendStore) ListFriends(ctx context.Context, userID string) ([]*types.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE id IN (SELECT friend_id FROM friendships WHERE user_id = $1)
		ORDER BY name`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query friends: %w", err)
	}
	defer rows.Close()

	friends := []*types.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan friend: %w", err)
		}
		friends = append(friends, u)
	}
	return friends, rows.Err()
}

func scanFriendRequest(row pgx.Row) (*types.FriendRequest, error) {
	var r types.FriendRequest
	err := row.Scan(
		&r.ID,
		&r.FromUserID,
		&r.ToUserID,
		&r.Message,
		&r.Status,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *FriendStore) CreateRequest(ctx context.Context, req *types.FriendRequest) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO friend_requests (id, from_user_id, to_user_id, message, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		req.ID, req.FromUserID, req.ToUserID, req.Message, req.Status, req.CreatedAt, req.UpdatedAt)
	return mapError(err)
}

func (s *FriendStore) GetRequest(ctx context.Context, id string) (*types.FriendRequest, error) {
	query := `SELECT ` + friendRequestColumns + ` FROM friend_requests WHERE id = $1`
	r, err := scanFriendRequest(s.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapError(err)
	}
	return r, nil
}

func (s *FriendStore) UpdateRequestStatus(ctx context.Context, id string, status types.FriendRequestStatus) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE friend_requests SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *FriendStore) ListIncomingRequests(ctx context.Context, userID string) ([]*types.FriendRequest, error) {
	query := `
		SELECT ` + friendRequestColumns + `
		FROM friend_requests
		WHERE to_user_id = $1 AND status = 'pending'
		ORDER BY created_at DESC`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query friend requests: %w", err)
	}
	defer rows.Close()

	requests := []*types.FriendRequest{}
	for rows.Next() {
		r, err := scanFriendRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan friend request: %w", err)
		}
		requests = append(requests, r)
	}
	return requests, rows.Err()
}
