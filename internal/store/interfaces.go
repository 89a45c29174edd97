// Package store defines the persistence contracts shared by the Postgres and
// MongoDB backends.
package store

import (
	"context"
	"time"

	"github.com/NomadCrew/nomad-split-backend/types"
	"github.com/shopspring/decimal"
)

// Store groups the per-entity stores of one backend.
type Store interface {
	Users() UserStore
	Groups() GroupStore
	Friends() FriendStore
	Transactions() TransactionStore
	// Ping checks connectivity to the backend.
	Ping(ctx context.Context) error
}

type UserStore interface {
	GetByID(ctx context.Context, id string) (*types.User, error)
	// GetByEmail matches case-insensitively.
	GetByEmail(ctx context.Context, email string) (*types.User, error)
	GetByIDs(ctx context.Context, ids []string) ([]*types.User, error)
	// Upsert inserts the user or refreshes lastActive of an existing one.
	// Profile fields of an existing user are left untouched.
	Upsert(ctx context.Context, user *types.User) (*types.User, error)
	Update(ctx context.Context, user *types.User) error
}

type GroupStore interface {
	// Create inserts the group together with its members.
	Create(ctx context.Context, group *types.Group) error
	// GetByID returns active groups only.
	GetByID(ctx context.Context, id string) (*types.Group, error)
	// Update writes the group's own fields. Members are changed through AddMember/RemoveMember.
	Update(ctx context.Context, group *types.Group) error
	SoftDelete(ctx context.Context, id string) error
	// ListByMember returns active groups of userID by most recent activity.
	// A non-positive limit returns every group.
	ListByMember(ctx context.Context, userID string, offset, limit int) ([]*types.Group, int, error)
	AddMember(ctx context.Context, groupID string, member types.GroupMember) error
	RemoveMember(ctx context.Context, groupID, userID string) error
	UpdateTotals(ctx context.Context, groupID string, totals GroupTotals, lastActivity time.Time) error
}

type FriendStore interface {
	AreFriends(ctx context.Context, userID, otherID string) (bool, error)
	// AddFriendship links both users to each other. Existing links are kept.
	AddFriendship(ctx context.Context, userID, otherID string) error
	RemoveFriendship(ctx context.Context, userID, otherID string) error
	ListFriends(ctx context.Context, userID string) ([]*types.User, error)

	// CreateRequest fails with ErrConflict when a pending request from the same
	// sender to the same recipient exists.
	CreateRequest(ctx context.Context, req *types.FriendRequest) error
	GetRequest(ctx context.Context, id string) (*types.FriendRequest, error)
	UpdateRequestStatus(ctx context.Context, id string, status types.FriendRequestStatus) error
	ListIncomingRequests(ctx context.Context, userID string) ([]*types.FriendRequest, error)
}

// GroupTotals are the derived money totals of a group.
type GroupTotals struct {
	Total   decimal.Decimal
	Settled decimal.Decimal
	Count   int
}

type TransactionStore interface {
	Create(ctx context.Context, tx *types.Transaction) error
	GetByID(ctx context.Context, id string) (*types.Transaction, error)
	Update(ctx context.Context, tx *types.Transaction) error
	Delete(ctx context.Context, id string) error
	// List returns one page matching filter, newest first, and the total match count.
	List(ctx context.Context, filter types.TransactionFilter) ([]*types.Transaction, int, error)
	// ListForBalance returns non-cancelled transactions where userID is payer or
	// participant. A nil groupID selects transactions without a group.
	ListForBalance(ctx context.Context, userID string, groupID *string) ([]*types.Transaction, error)
	ListRecentByGroup(ctx context.Context, groupID string, limit int) ([]*types.Transaction, error)
	// GroupTotals sums non-cancelled amounts and settled amounts of a group.
	GroupTotals(ctx context.Context, groupID string) (GroupTotals, error)
	// CountUnsettled counts pending or approved transactions of a group. When
	// userID is set only transactions involving that user are counted.
	CountUnsettled(ctx context.Context, groupID, userID string) (int, error)
}
