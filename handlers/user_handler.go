package handlers

import (
	"context"
	"net/http"

	userSvc "github.com/NomadCrew/nomad-split-backend/models/user/service"
	"github.com/NomadCrew/nomad-split-backend/types"
	"github.com/gin-gonic/gin"
)

// UserServiceInterface defines the methods used by UserHandler.
type UserServiceInterface interface {
	GetMe(ctx context.Context, userID string) (*types.User, error)
	UpdateMe(ctx context.Context, userID string, req *types.UpdateUserRequest) (*types.User, error)
	SetPaymentMethods(ctx context.Context, userID string, methods []types.PaymentMethod) (*types.User, error)
}

var _ UserServiceInterface = (*userSvc.UserService)(nil)

type UserHandler struct {
	userService UserServiceInterface
}

func NewUserHandler(userService UserServiceInterface) *UserHandler {
	return &UserHandler{userService: userService}
}

// GetMeHandler godoc
// @Summary Get the current user's profile
// @Tags users
// @Produce json
// @Success 200 {object} types.User
// @Failure 401 {object} types.ErrorResponse
// @Router /users/me [get]
// @Security BearerAuth
func (h *UserHandler) GetMeHandler(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	user, err := h.userService.GetMe(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateMeHandler godoc
// @Summary Update the current user's profile
// @Description Updates name, avatar, phone number and preferences. Omitted fields are unchanged.
// @Tags users
// @Accept json
// @Produce json
// @Param request body types.UpdateUserRequest true "Profile fields"
// @Success 200 {object} types.User
// @Failure 400 {object} types.ErrorResponse
// @Failure 401 {object} types.ErrorResponse
// @Router /users/me [put]
// @Security BearerAuth
func (h *UserHandler) UpdateMeHandler(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req types.UpdateUserRequest
	if !bindJSONOrError(c, &req) {
		return
	}

	user, err := h.userService.UpdateMe(c.Request.Context(), userID, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// SetPaymentMethodsHandler godoc
// @Summary Replace the current user's payment methods
// @Tags users
// @Accept json
// @Produce json
// @Param request body types.SetPaymentMethodsRequest true "Payment methods"
// @Success 200 {object} types.User
// @Failure 400 {object} types.ErrorResponse
// @Router /users/me/payment-methods [put]
// @Security BearerAuth
func (h *UserHandler) SetPaymentMethodsHandler(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req types.SetPaymentMethodsRequest
	if !bindJSONOrError(c, &req) {
		return
	}

	user, err := h.userService.SetPaymentMethods(c.Request.Context(), userID, req.PaymentMethods)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, user)
}
