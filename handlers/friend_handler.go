package handlers

import (
	"context"
	"net/http"

	friendSvc "github.com/NomadCrew/nomad-split-backend/models/friend/service"
	"github.com/NomadCrew/nomad-split-backend/types"
	"github.com/gin-gonic/gin"
)

// FriendServiceInterface defines the methods used by FriendHandler.
type FriendServiceInterface interface {
	SendRequest(ctx context.Context, userID, toID, message string) (*types.FriendRequest, error)
	ListRequests(ctx context.Context, userID string) ([]types.FriendRequestView, error)
	AcceptRequest(ctx context.Context, userID, requestID string) error
	DeclineRequest(ctx context.Context, userID, requestID string) error
	AddFriendByEmail(ctx context.Context, userID, email string) (*types.UserSummary, error)
	ListFriends(ctx context.Context, userID string) ([]types.UserSummary, error)
	RemoveFriend(ctx context.Context, userID, friendID string) error
	GetFriendPaymentMethods(ctx context.Context, userID, friendID string) (*types.FriendPaymentMethods, error)
}

var _ FriendServiceInterface = (*friendSvc.FriendService)(nil)

type FriendHandler struct {
	friendService FriendServiceInterface
}

func NewFriendHandler(friendService FriendServiceInterface) *FriendHandler {
	return &FriendHandler{friendService: friendService}
}

// SendRequestHandler godoc
// @Summary Send a friend request
// @Tags friends
// @Accept json
// @Produce json
// @Param request body types.SendFriendRequest true "Request"
// @Success 201 {object} types.FriendRequest
// @Failure 400 {object} types.ErrorResponse
// @Failure 409 {object} types.ErrorResponse
// @Router /friends/requests [post]
// @Security BearerAuth
func (h *FriendHandler) SendRequestHandler(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req types.SendFriendRequest
	if !bindJSONOrError(c, &req) {
		return
	}

	fr, err := h.friendService.SendRequest(c.Request.Context(), userID, req.ToUserID, req.Message)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, fr)
}

// ListRequestsHandler godoc
// @Summary List incoming friend requests
// @Tags friends
// @Produce json
// @Success 200 {array} types.FriendRequestView
// @Router /friends/requests [get]
// @Security BearerAuth
func (h *FriendHandler) ListRequestsHandler(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	requests, err := h.friendService.ListRequests(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, requests)
}

// AcceptRequestHandler godoc
// @Summary Accept a friend request
// @Tags friends
// @Param requestId path string true "Request ID"
// @Success 204
// @Failure 403 {object} types.ErrorResponse
// @Router /friends/requests/{requestId}/accept [post]
// @Security BearerAuth
func (h *FriendHandler) AcceptRequestHandler(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	requestID, ok := uuidParam(c, "requestId")
	if !ok {
		return
	}

	if err := h.friendService.AcceptRequest(c.Request.Context(), userID, requestID); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeclineRequestHandler godoc
// @Summary Decline a friend request
// @Tags friends
// @Param requestId path string true "Request ID"
// @Success 204
// @Failure 403 {object} types.ErrorResponse
// @Router /friends/requests/{requestId} [delete]
// @Security BearerAuth
func (h *FriendHandler) DeclineRequestHandler(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	requestID, ok := uuidParam(c, "requestId")
	if !ok {
		return
	}

	if err := h.friendService.DeclineRequest(c.Request.Context(), userID, requestID); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddFriendHandler godoc
// @Summary Add a friend by email
// @Tags friends
// @Accept json
// @Produce json
// @Param request body types.AddFriendRequest true "Friend email"
// @Success 201 {object} types.UserSummary
// @Failure 400 {object} types.ErrorResponse
// @Failure 404 {object} types.ErrorResponse
// @Router /friends [post]
// @Security BearerAuth
func (h *FriendHandler) AddFriendHandler(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req types.AddFriendRequest
	if !bindJSONOrError(c, &req) {
		return
	}

	friend, err := h.friendService.AddFriendByEmail(c.Request.Context(), userID, req.Email)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, friend)
}

// ListFriendsHandler godoc
// @Summary List friends
// @Tags friends
// @Produce json
// @Success 200 {array} types.UserSummary
// @Router /friends [get]
// @Security BearerAuth
func (h *FriendHandler) ListFriendsHandler(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	friends, err := h.friendService.ListFriends(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, friends)
}

// RemoveFriendHandler godoc
// @Summary Remove a friend
// @Tags friends
// @Param friendId path string true "Friend user ID"
// @Success 204
// @Failure 404 {object} types.ErrorResponse
// @Router /friends/{friendId} [delete]
// @Security BearerAuth
func (h *FriendHandler) RemoveFriendHandler(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	friendID, ok := uuidParam(c, "friendId")
	if !ok {
		return
	}

	if err := h.friendService.RemoveFriend(c.Request.Context(), userID, friendID); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetPaymentMethodsHandler godoc
// @Summary A friend's payment methods
// @Tags friends
// @Produce json
// @Param friendId path string true "Friend user ID"
// @Success 200 {object} types.FriendPaymentMethods
// @Failure 403 {object} types.ErrorResponse
// @Router /friends/{friendId}/payment-methods [get]
// @Security BearerAuth
func (h *FriendHandler) GetPaymentMethodsHandler(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	friendID, ok := uuidParam(c, "friendId")
	if !ok {
		return
	}

	methods, err := h.friendService.GetFriendPaymentMethods(c.Request.Context(), userID, friendID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, methods)
}
