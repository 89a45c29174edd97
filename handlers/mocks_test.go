package handlers

import (
	"context"
	"io"

	"github.com/NomadCrew/nomad-split-backend/logger"
	"github.com/NomadCrew/nomad-split-backend/middleware"
	"github.com/NomadCrew/nomad-split-backend/types"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
)

func init() {
	logger.IsTest = true
	gin.SetMode(gin.TestMode)
}

const (
	testUserID  = "11111111-1111-1111-1111-111111111111"
	testOtherID = "22222222-2222-2222-2222-222222222222"
	testTxID    = "33333333-3333-3333-3333-333333333333"
	testGroupID = "44444444-4444-4444-4444-444444444444"
)

// buildRouter wraps a handler in a Gin router with the error handler middleware,
// matching the production setup so c.Error() calls produce the correct HTTP status.
func buildRouter(method, path string, handler gin.HandlerFunc, userID string) *gin.Engine {
	r := gin.New()
	r.Use(middleware.ErrorHandler())
	r.Use(func(c *gin.Context) {
		if userID != "" {
			c.Set(string(middleware.UserIDKey), userID)
		}
		c.Next()
	})
	r.Handle(method, path, handler)
	return r
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) GetMe(ctx context.Context, userID string) (*types.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

func (m *MockUserService) UpdateMe(ctx context.Context, userID string, req *types.UpdateUserRequest) (*types.User, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

func (m *MockUserService) SetPaymentMethods(ctx context.Context, userID string, methods []types.PaymentMethod) (*types.User, error) {
	args := m.Called(ctx, userID, methods)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

var _ UserServiceInterface = (*MockUserService)(nil)

type MockTransactionService struct {
	mock.Mock
}

func (m *MockTransactionService) txResult(args mock.Arguments) (*types.Transaction, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Transaction), args.Error(1)
}

func (m *MockTransactionService) CreateTransaction(ctx context.Context, userID string, req *types.CreateTransactionRequest) (*types.Transaction, error) {
	return m.txResult(m.Called(ctx, userID, req))
}

func (m *MockTransactionService) ListTransactions(ctx context.Context, userID string, filter types.TransactionFilter) (*types.TransactionPage, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.TransactionPage), args.Error(1)
}

func (m *MockTransactionService) GetTransaction(ctx context.Context, userID, id string) (*types.Transaction, error) {
	return m.txResult(m.Called(ctx, userID, id))
}

func (m *MockTransactionService) UpdateTransaction(ctx context.Context, userID, id string, req *types.UpdateTransactionRequest) (*types.Transaction, error) {
	return m.txResult(m.Called(ctx, userID, id, req))
}

func (m *MockTransactionService) DeleteTransaction(ctx context.Context, userID, id string) error {
	return m.Called(ctx, userID, id).Error(0)
}

func (m *MockTransactionService) MarkParticipantPaid(ctx context.Context, userID, id, targetUserID string, paid bool) (*types.Transaction, error) {
	return m.txResult(m.Called(ctx, userID, id, targetUserID, paid))
}

func (m *MockTransactionService) AddApproval(ctx context.Context, userID, id string, approved bool, comment string) (*types.Transaction, error) {
	return m.txResult(m.Called(ctx, userID, id, approved, comment))
}

func (m *MockTransactionService) AttachReceipt(ctx context.Context, userID, id string, file io.Reader, fileName string) (*types.Transaction, error) {
	return m.txResult(m.Called(ctx, userID, id, file, fileName))
}

func (m *MockTransactionService) GetUserGroupBalance(ctx context.Context, userID, groupID string) (types.GroupBalance, error) {
	args := m.Called(ctx, userID, groupID)
	return args.Get(0).(types.GroupBalance), args.Error(1)
}

func (m *MockTransactionService) GetUserBalances(ctx context.Context, userID string) (*types.UserBalances, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.UserBalances), args.Error(1)
}

var _ TransactionServiceInterface = (*MockTransactionService)(nil)

type MockGroupService struct {
	mock.Mock
}

func (m *MockGroupService) groupResult(args mock.Arguments) (*types.Group, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Group), args.Error(1)
}

func (m *MockGroupService) ListGroups(ctx context.Context, userID string, page, limit int) (*types.GroupPage, error) {
	args := m.Called(ctx, userID, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.GroupPage), args.Error(1)
}

func (m *MockGroupService) GetGroup(ctx context.Context, userID, groupID string) (*types.GroupDetail, error) {
	args := m.Called(ctx, userID, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.GroupDetail), args.Error(1)
}

func (m *MockGroupService) CreateGroup(ctx context.Context, userID string, req *types.CreateGroupRequest) (*types.CreateGroupResult, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.CreateGroupResult), args.Error(1)
}

func (m *MockGroupService) UpdateGroup(ctx context.Context, userID, groupID string, req *types.UpdateGroupRequest) (*types.Group, error) {
	return m.groupResult(m.Called(ctx, userID, groupID, req))
}

func (m *MockGroupService) DeleteGroup(ctx context.Context, userID, groupID string) error {
	return m.Called(ctx, userID, groupID).Error(0)
}

func (m *MockGroupService) AddMemberByEmail(ctx context.Context, userID, groupID, email string) (*types.Group, error) {
	return m.groupResult(m.Called(ctx, userID, groupID, email))
}

func (m *MockGroupService) RemoveMember(ctx context.Context, userID, groupID, memberID string) error {
	return m.Called(ctx, userID, groupID, memberID).Error(0)
}

func (m *MockGroupService) LeaveGroup(ctx context.Context, userID, groupID string) error {
	return m.Called(ctx, userID, groupID).Error(0)
}

func (m *MockGroupService) GetGroupBalances(ctx context.Context, userID, groupID string) ([]types.GroupBalance, error) {
	args := m.Called(ctx, userID, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.GroupBalance), args.Error(1)
}

func (m *MockGroupService) GetMemberBalance(ctx context.Context, userID, groupID, memberID string) (types.GroupBalance, error) {
	args := m.Called(ctx, userID, groupID, memberID)
	return args.Get(0).(types.GroupBalance), args.Error(1)
}

func (m *MockGroupService) CreateInviteToken(ctx context.Context, userID, groupID string) (*types.GroupInvite, error) {
	args := m.Called(ctx, userID, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.GroupInvite), args.Error(1)
}

func (m *MockGroupService) JoinWithInvite(ctx context.Context, userID, token string) (*types.Group, error) {
	return m.groupResult(m.Called(ctx, userID, token))
}

var _ GroupServiceInterface = (*MockGroupService)(nil)

type MockFriendService struct {
	mock.Mock
}

func (m *MockFriendService) SendRequest(ctx context.Context, userID, toID, message string) (*types.FriendRequest, error) {
	args := m.Called(ctx, userID, toID, message)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.FriendRequest), args.Error(1)
}

func (m *MockFriendService) ListRequests(ctx context.Context, userID string) ([]types.FriendRequestView, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.FriendRequestView), args.Error(1)
}

func (m *MockFriendService) AcceptRequest(ctx context.Context, userID, requestID string) error {
	return m.Called(ctx, userID, requestID).Error(0)
}

func (m *MockFriendService) DeclineRequest(ctx context.Context, userID, requestID string) error {
	return m.Called(ctx, userID, requestID).Error(0)
}

func (m *MockFriendService) AddFriendByEmail(ctx context.Context, userID, email string) (*types.UserSummary, error) {
	args := m.Called(ctx, userID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.UserSummary), args.Error(1)
}

func (m *MockFriendService) ListFriends(ctx context.Context, userID string) ([]types.UserSummary, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.UserSummary), args.Error(1)
}

func (m *MockFriendService) RemoveFriend(ctx context.Context, userID, friendID string) error {
	return m.Called(ctx, userID, friendID).Error(0)
}

func (m *MockFriendService) GetFriendPaymentMethods(ctx context.Context, userID, friendID string) (*types.FriendPaymentMethods, error) {
	args := m.Called(ctx, userID, friendID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.FriendPaymentMethods), args.Error(1)
}

var _ FriendServiceInterface = (*MockFriendService)(nil)

type MockHealthChecker struct {
	mock.Mock
}

func (m *MockHealthChecker) CheckHealth(ctx context.Context) types.HealthCheck {
	return m.Called(ctx).Get(0).(types.HealthCheck)
}

func (m *MockHealthChecker) Ready(ctx context.Context) bool {
	return m.Called(ctx).Bool(0)
}

var _ HealthChecker = (*MockHealthChecker)(nil)

