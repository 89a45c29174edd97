package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	apperrors "github.com/NomadCrew/nomad-split-backend/errors"
	"github.com/NomadCrew/nomad-split-backend/internal/store"
	"github.com/NomadCrew/nomad-split-backend/logger"
	"github.com/NomadCrew/nomad-split-backend/models/shared"
	"github.com/NomadCrew/nomad-split-backend/types"
	"github.com/google/uuid"
)

const maxMessageLength = 200

// FriendService manages friend requests and friendships. Friendships are
// always mutual.
type FriendService struct {
	store  store.Store
	events *shared.EventEmitter
	now    func() time.Time
}

func NewFriendService(st store.Store, publisher types.EventPublisher) *FriendService {
	return &FriendService{
		store:  st,
		events: shared.NewEventEmitter(publisher, "friend-service"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *FriendService) requireNotFriends(ctx context.Context, userID, otherID string) error {
	friends, err := s.store.Friends().AreFriends(ctx, userID, otherID)
	if err != nil {
		return shared.FromStore(err, "Friendship", otherID)
	}
	if friends {
		return apperrors.ValidationFailed("You are already friends with this user", otherID)
	}
	return nil
}

// SendRequest asks toID to become friends with userID.
func (s *FriendService) SendRequest(ctx context.Context, userID, toID, message string) (*types.FriendRequest, error) {
	if toID == "" {
		return nil, apperrors.ValidationFailed("Recipient is required", "")
	}
	if toID == userID {
		return nil, apperrors.ValidationFailed("You cannot send a friend request to yourself", "")
	}
	message = strings.TrimSpace(message)
	if utf8.RuneCountInString(message) > maxMessageLength {
		return nil, apperrors.ValidationFailed("Message is too long", "maximum 200 characters")
	}

	if _, err := s.store.Users().GetByID(ctx, toID); err != nil {
		return nil, shared.FromStore(err, "User", toID)
	}
	if err := s.requireNotFriends(ctx, userID, toID); err != nil {
		return nil, err
	}

	now := s.now()
	req := &types.FriendRequest{
		ID:         uuid.NewString(),
		FromUserID: userID,
		ToUserID:   toID,
		Message:    message,
		Status:     types.FriendRequestPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	// A unique index on pending (from, to) pairs turns duplicates into conflicts.
	if err := s.store.Friends().CreateRequest(ctx, req); err != nil {
		return nil, shared.FromStore(err, "Friend request", "")
	}

	s.events.Emit(ctx, types.EventTypeFriendRequestSent, "", toID,
		types.FriendRequestEventPayload{RequestID: req.ID, FromUserID: userID})
	return req, nil
}

// ListRequests returns the pending requests sent to userID with their senders.
func (s *FriendService) ListRequests(ctx context.Context, userID string) ([]types.FriendRequestView, error) {
	requests, err := s.store.Friends().ListIncomingRequests(ctx, userID)
	if err != nil {
		return nil, shared.FromStore(err, "Friend request", "")
	}
	views := make([]types.FriendRequestView, 0, len(requests))
	if len(requests) == 0 {
		return views, nil
	}

	ids := make([]string, 0, len(requests))
	for _, r := range requests {
		ids = append(ids, r.FromUserID)
	}
	senders, err := s.store.Users().GetByIDs(ctx, ids)
	if err != nil {
		return nil, shared.FromStore(err, "User", "")
	}
	byID := make(map[string]*types.User, len(senders))
	for _, u := range senders {
		byID[u.ID] = u
	}

	for _, r := range requests {
		view := types.FriendRequestView{FriendRequest: *r}
		if u, ok := byID[r.FromUserID]; ok {
			view.From = u.Summary()
		} else {
			view.From = types.UserSummary{ID: r.FromUserID}
		}
		views = append(views, view)
	}
	return views, nil
}

// loadIncoming returns a pending request addressed to userID.
func (s *FriendService) loadIncoming(ctx context.Context, userID, requestID string) (*types.FriendRequest, error) {
	req, err := s.store.Friends().GetRequest(ctx, requestID)
	if err != nil {
		return nil, shared.FromStore(err, "Friend request", requestID)
	}
	if req.ToUserID != userID {
		return nil, apperrors.Forbidden("Only the recipient can respond to a friend request", requestID)
	}
	if req.Status != types.FriendRequestPending {
		return nil, apperrors.ValidationFailed("Friend request is no longer pending", string(req.Status))
	}
	return req, nil
}

// AcceptRequest accepts a pending request and creates the friendship.
func (s *FriendService) AcceptRequest(ctx context.Context, userID, requestID string) error {
	req, err := s.loadIncoming(ctx, userID, requestID)
	if err != nil {
		return err
	}
	if err := s.store.Friends().AddFriendship(ctx, req.FromUserID, req.ToUserID); err != nil {
		return shared.FromStore(err, "Friendship", req.FromUserID)
	}
	if err := s.store.Friends().UpdateRequestStatus(ctx, requestID, types.FriendRequestAccepted); err != nil {
		return shared.FromStore(err, "Friend request", requestID)
	}
	logger.GetLogger().Infow("Friend request accepted", "requestID", requestID, "userID", userID)
	return nil
}

// DeclineRequest declines a pending request.
func (s *FriendService) DeclineRequest(ctx context.Context, userID, requestID string) error {
	if _, err := s.loadIncoming(ctx, userID, requestID); err != nil {
		return err
	}
	if err := s.store.Friends().UpdateRequestStatus(ctx, requestID, types.FriendRequestDeclined); err != nil {
		return shared.FromStore(err, "Friend request", requestID)
	}
	return nil
}

// AddFriendByEmail befriends the user registered under email without a request.
func (s *FriendService) AddFriendByEmail(ctx context.Context, userID, email string) (*types.UserSummary, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, apperrors.ValidationFailed("Email is required", "")
	}
	friend, err := s.store.Users().GetByEmail(ctx, email)
	if err != nil {
		return nil, shared.FromStore(err, "User", email)
	}
	if friend.ID == userID {
		return nil, apperrors.ValidationFailed("You cannot add yourself as a friend", "")
	}
	if err := s.requireNotFriends(ctx, userID, friend.ID); err != nil {
		return nil, err
	}

	if err := s.store.Friends().AddFriendship(ctx, userID, friend.ID); err != nil {
		return nil, shared.FromStore(err, "Friendship", friend.ID)
	}
	logger.GetLogger().Infow("Friend added", "userID", userID, "friendID", friend.ID, "email", logger.MaskEmail(email))

	summary := friend.Summary()
	return &summary, nil
}

func (s *FriendService) ListFriends(ctx context.Context, userID string) ([]types.UserSummary, error) {
	friends, err := s.store.Friends().ListFriends(ctx, userID)
	if err != nil {
		return nil, shared.FromStore(err, "Friendship", "")
	}
	out := make([]types.UserSummary, 0, len(friends))
	for _, f := range friends {
		out = append(out, f.Summary())
	}
	return out, nil
}

// RemoveFriend ends the friendship for both sides.
func (s *FriendService) RemoveFriend(ctx context.Context, userID, friendID string) error {
	if err := s.store.Friends().RemoveFriendship(ctx, userID, friendID); err != nil {
		return shared.FromStore(err, "Friend", friendID)
	}
	return nil
}

// GetFriendPaymentMethods shows a friend's payment handles. Friends only.
func (s *FriendService) GetFriendPaymentMethods(ctx context.Context, userID, friendID string) (*types.FriendPaymentMethods, error) {
	friends, err := s.store.Friends().AreFriends(ctx, userID, friendID)
	if err != nil {
		return nil, shared.FromStore(err, "Friendship", friendID)
	}
	if !friends {
		return nil, apperrors.Forbidden("You can only view payment methods of your friends", friendID)
	}

	friend, err := s.store.Users().GetByID(ctx, friendID)
	if err != nil {
		return nil, shared.FromStore(err, "User", friendID)
	}
	methods := friend.PaymentMethods
	if methods == nil {
		methods = []types.PaymentMethod{}
	}
	return &types.FriendPaymentMethods{Friend: friend.Summary(), PaymentMethods: methods}, nil
}
