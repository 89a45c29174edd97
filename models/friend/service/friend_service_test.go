package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	apperrors "github.com/NomadCrew/nomad-split-backend/errors"
	"github.com/NomadCrew/nomad-split-backend/internal/events"
	"github.com/NomadCrew/nomad-split-backend/internal/store"
	"github.com/NomadCrew/nomad-split-backend/internal/store/mocks"
	"github.com/NomadCrew/nomad-split-backend/logger"
	"github.com/NomadCrew/nomad-split-backend/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.IsTest = true
}

var fixedNow = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*FriendService, *mocks.Store, *events.MockPublisher) {
	t.Helper()
	st := mocks.NewStore()
	pub := events.NewMockPublisher()
	svc := NewFriendService(st, pub)
	svc.now = func() time.Time { return fixedNow }
	t.Cleanup(func() { st.AssertAll(t) })
	return svc, st, pub
}

func assertStatus(t *testing.T, want int, err error) {
	t.Helper()
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	assert.Equal(t, want, appErr.GetHTTPStatus())
}

func TestSendRequest(t *testing.T) {
	svc, st, pub := newTestService(t)
	st.UserStore.On("GetByID", mock.Anything, "bob").Return(&types.User{ID: "bob"}, nil).Once()
	st.FriendStore.On("AreFriends", mock.Anything, "alice", "bob").Return(false, nil).Once()
	st.FriendStore.On("CreateRequest", mock.Anything, mock.AnythingOfType("*types.FriendRequest")).Return(nil).Once()

	req, err := svc.SendRequest(context.Background(), "alice", "bob", "  hi  ")
	require.NoError(t, err)
	assert.Equal(t, "hi", req.Message)
	assert.Equal(t, types.FriendRequestPending, req.Status)
	assert.Equal(t, fixedNow, req.CreatedAt)

	evts := pub.GetEvents("user:bob")
	require.Len(t, evts, 1)
	assert.Equal(t, types.EventTypeFriendRequestSent, evts[0].Type)
	assert.JSONEq(t, fmt.Sprintf(`{"requestId":%q,"fromUserId":"alice"}`, req.ID), string(evts[0].Payload))
}

func TestSendRequest_Rules(t *testing.T) {
	t.Run("self", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		_, err := svc.SendRequest(context.Background(), "alice", "alice", "")
		assertStatus(t, http.StatusBadRequest, err)
	})

	t.Run("message too long", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		_, err := svc.SendRequest(context.Background(), "alice", "bob", strings.Repeat("x", 201))
		assertStatus(t, http.StatusBadRequest, err)
	})

	t.Run("unknown target", func(t *testing.T) {
		svc, st, _ := newTestService(t)
		st.UserStore.On("GetByID", mock.Anything, "ghost").Return(nil, store.ErrNotFound).Once()
		_, err := svc.SendRequest(context.Background(), "alice", "ghost", "")
		assertStatus(t, http.StatusNotFound, err)
	})

	t.Run("already friends", func(t *testing.T) {
		svc, st, _ := newTestService(t)
		st.UserStore.On("GetByID", mock.Anything, "bob").Return(&types.User{ID: "bob"}, nil).Once()
		st.FriendStore.On("AreFriends", mock.Anything, "alice", "bob").Return(true, nil).Once()
		_, err := svc.SendRequest(context.Background(), "alice", "bob", "")
		assertStatus(t, http.StatusBadRequest, err)
	})

	t.Run("duplicate pending", func(t *testing.T) {
		svc, st, pub := newTestService(t)
		st.UserStore.On("GetByID", mock.Anything, "bob").Return(&types.User{ID: "bob"}, nil).Once()
		st.FriendStore.On("AreFriends", mock.Anything, "alice", "bob").Return(false, nil).Once()
		st.FriendStore.On("CreateRequest", mock.Anything, mock.Anything).
			Return(fmt.Errorf("%w: friend_requests_pending_idx", store.ErrConflict)).Once()

		_, err := svc.SendRequest(context.Background(), "alice", "bob", "")
		assertStatus(t, http.StatusConflict, err)
		assert.Empty(t, pub.GetEvents("user:bob"))
	})
}

func TestListRequests_ResolvesSenders(t *testing.T) {
	svc, st, _ := newTestService(t)
	requests := []*types.FriendRequest{
		{ID: "r1", FromUserID: "alice", ToUserID: "bob", Status: types.FriendRequestPending},
		{ID: "r2", FromUserID: "gone", ToUserID: "bob", Status: types.FriendRequestPending},
	}
	st.FriendStore.On("ListIncomingRequests", mock.Anything, "bob").Return(requests, nil).Once()
	st.UserStore.On("GetByIDs", mock.Anything, []string{"alice", "gone"}).
		Return([]*types.User{{ID: "alice", Name: "Alice", Email: "alice@example.com"}}, nil).Once()

	views, err := svc.ListRequests(context.Background(), "bob")
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "Alice", views[0].From.Name)
	assert.Equal(t, "r1", views[0].ID)
	assert.Equal(t, types.UserSummary{ID: "gone"}, views[1].From)
}

func TestListRequests_Empty(t *testing.T) {
	svc, st, _ := newTestService(t)
	st.FriendStore.On("ListIncomingRequests", mock.Anything, "bob").Return([]*types.FriendRequest{}, nil).Once()

	views, err := svc.ListRequests(context.Background(), "bob")
	require.NoError(t, err)
	assert.NotNil(t, views)
	assert.Empty(t, views)
}

func pendingRequest() *types.FriendRequest {
	return &types.FriendRequest{ID: "r1", FromUserID: "alice", ToUserID: "bob", Status: types.FriendRequestPending}
}

func TestAcceptRequest(t *testing.T) {
	svc, st, _ := newTestService(t)
	st.FriendStore.On("GetRequest", mock.Anything, "r1").Return(pendingRequest(), nil).Once()
	st.FriendStore.On("AddFriendship", mock.Anything, "alice", "bob").Return(nil).Once()
	st.FriendStore.On("UpdateRequestStatus", mock.Anything, "r1", types.FriendRequestAccepted).Return(nil).Once()

	require.NoError(t, svc.AcceptRequest(context.Background(), "bob", "r1"))
}

func TestRespond_Rules(t *testing.T) {
	t.Run("only the recipient", func(t *testing.T) {
		svc, st, _ := newTestService(t)
		st.FriendStore.On("GetRequest", mock.Anything, "r1").Return(pendingRequest(), nil).Once()
		assertStatus(t, http.StatusForbidden, svc.AcceptRequest(context.Background(), "alice", "r1"))
	})

	t.Run("not pending", func(t *testing.T) {
		svc, st, _ := newTestService(t)
		req := pendingRequest()
		req.Status = types.FriendRequestDeclined
		st.FriendStore.On("GetRequest", mock.Anything, "r1").Return(req, nil).Once()
		assertStatus(t, http.StatusBadRequest, svc.AcceptRequest(context.Background(), "bob", "r1"))
	})

	t.Run("missing", func(t *testing.T) {
		svc, st, _ := newTestService(t)
		st.FriendStore.On("GetRequest", mock.Anything, "r9").Return(nil, store.ErrNotFound).Once()
		assertStatus(t, http.StatusNotFound, svc.DeclineRequest(context.Background(), "bob", "r9"))
	})
}

func TestDeclineRequest(t *testing.T) {
	svc, st, _ := newTestService(t)
	st.FriendStore.On("GetRequest", mock.Anything, "r1").Return(pendingRequest(), nil).Once()
	st.FriendStore.On("UpdateRequestStatus", mock.Anything, "r1", types.FriendRequestDeclined).Return(nil).Once()

	require.NoError(t, svc.DeclineRequest(context.Background(), "bob", "r1"))
}

func TestAddFriendByEmail(t *testing.T) {
	t.Run("adds mutual friendship", func(t *testing.T) {
		svc, st, _ := newTestService(t)
		st.UserStore.On("GetByEmail", mock.Anything, "bob@example.com").
			Return(&types.User{ID: "bob", Name: "Bob", Email: "bob@example.com"}, nil).Once()
		st.FriendStore.On("AreFriends", mock.Anything, "alice", "bob").Return(false, nil).Once()
		st.FriendStore.On("AddFriendship", mock.Anything, "alice", "bob").Return(nil).Once()

		friend, err := svc.AddFriendByEmail(context.Background(), "alice", "Bob@Example.com")
		require.NoError(t, err)
		assert.Equal(t, "Bob", friend.Name)
	})

	t.Run("unknown email", func(t *testing.T) {
		svc, st, _ := newTestService(t)
		st.UserStore.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, store.ErrNotFound).Once()
		_, err := svc.AddFriendByEmail(context.Background(), "alice", "ghost@example.com")
		assertStatus(t, http.StatusNotFound, err)
	})

	t.Run("self", func(t *testing.T) {
		svc, st, _ := newTestService(t)
		st.UserStore.On("GetByEmail", mock.Anything, "alice@example.com").Return(&types.User{ID: "alice"}, nil).Once()
		_, err := svc.AddFriendByEmail(context.Background(), "alice", "alice@example.com")
		assertStatus(t, http.StatusBadRequest, err)
	})

	t.Run("already friends", func(t *testing.T) {
		svc, st, _ := newTestService(t)
		st.UserStore.On("GetByEmail", mock.Anything, "bob@example.com").Return(&types.User{ID: "bob"}, nil).Once()
		st.FriendStore.On("AreFriends", mock.Anything, "alice", "bob").Return(true, nil).Once()
		_, err := svc.AddFriendByEmail(context.Background(), "alice", "bob@example.com")
		assertStatus(t, http.StatusBadRequest, err)
	})
}

func TestListAndRemoveFriends(t *testing.T) {
	svc, st, _ := newTestService(t)
	st.FriendStore.On("ListFriends", mock.Anything, "alice").
		Return([]*types.User{{ID: "bob", Name: "Bob", PhoneNumber: "555"}}, nil).Once()
	st.FriendStore.On("RemoveFriendship", mock.Anything, "alice", "bob").Return(nil).Once()
	st.FriendStore.On("RemoveFriendship", mock.Anything, "alice", "carol").Return(store.ErrNotFound).Once()

	friends, err := svc.ListFriends(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, []types.UserSummary{{ID: "bob", Name: "Bob"}}, friends)

	require.NoError(t, svc.RemoveFriend(context.Background(), "alice", "bob"))
	assertStatus(t, http.StatusNotFound, svc.RemoveFriend(context.Background(), "alice", "carol"))
}

func TestGetFriendPaymentMethods(t *testing.T) {
	t.Run("friends see handles", func(t *testing.T) {
		svc, st, _ := newTestService(t)
		methods := []types.PaymentMethod{{Type: types.PaymentMethodVenmo, Handle: "@bob", IsDefault: true}}
		st.FriendStore.On("AreFriends", mock.Anything, "alice", "bob").Return(true, nil).Once()
		st.UserStore.On("GetByID", mock.Anything, "bob").
			Return(&types.User{ID: "bob", Name: "Bob", PaymentMethods: methods}, nil).Once()

		out, err := svc.GetFriendPaymentMethods(context.Background(), "alice", "bob")
		require.NoError(t, err)
		assert.Equal(t, "bob", out.Friend.ID)
		assert.Equal(t, methods, out.PaymentMethods)
	})

	t.Run("strangers are refused", func(t *testing.T) {
		svc, st, _ := newTestService(t)
		st.FriendStore.On("AreFriends", mock.Anything, "alice", "mallory").Return(false, nil).Once()
		_, err := svc.GetFriendPaymentMethods(context.Background(), "alice", "mallory")
		assertStatus(t, http.StatusForbidden, err)
	})
}
