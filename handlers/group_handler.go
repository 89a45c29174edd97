package handlers

import (
	"context"
	"net/http"

	groupSvc "github.com/NomadCrew/nomad-split-backend/models/group/service"
	"github.com/NomadCrew/nomad-split-backend/types"
	"github.com/gin-gonic/gin"
)

// GroupServiceInterface defines the methods used by GroupHandler.
type GroupServiceInterface interface {
	ListGroups(ctx context.Context, userID string, page, limit int) (*types.GroupPage, error)
	GetGroup(ctx context.Context, userID, groupID string) (*types.GroupDetail, error)
	CreateGroup(ctx context.Context, userID string, req *types.CreateGroupRequest) (*types.CreateGroupResult, error)
	UpdateGroup(ctx context.Context, userID, groupID string, req *types.UpdateGroupRequest) (*types.Group, error)
	DeleteGroup(ctx context.Context, userID, groupID string) error
	AddMemberByEmail(ctx context.Context, userID, groupID, email string) (*types.Group, error)
	RemoveMember(ctx context.Context, userID, groupID, memberID string) error
	LeaveGroup(ctx context.Context, userID, groupID string) error
	GetGroupBalances(ctx context.Context, userID, groupID string) ([]types.GroupBalance, error)
	GetMemberBalance(ctx context.Context, userID, groupID, memberID string) (types.GroupBalance, error)
	CreateInviteToken(ctx context.Context, userID, groupID string) (*types.GroupInvite, error)
	JoinWithInvite(ctx context.Context, userID, token string) (*types.Group, error)
}

var _ GroupServiceInterface = (*groupSvc.GroupService)(nil)

type GroupHandler struct {
	groupService GroupServiceInterface
}

func NewGroupHandler(groupService GroupServiceInterface) *GroupHandler {
	return &GroupHandler{groupService: groupService}
}

// ListGroupsHandler godoc
// @Summary List the current user's groups
// @Tags groups
// @Produce json
// @Param page query int false "Page (from 1)"
// @Param limit query int false "Page size (default 10, max 50)"
// @Success 200 {object} types.GroupPage
// @Router /groups [get]
// @Security BearerAuth
func (h *GroupHandler) ListGroupsHandler(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	page, err := h.groupService.ListGroups(c.Request.Context(), userID, intQuery(c, "page"), intQuery(c, "limit"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// CreateGroupHandler godoc
// @Summary Create a group
// @Description The caller becomes admin. Unknown member emails are reported back in notFoundEmails.
// @Tags groups
// @Accept json
// @Produce json
// @Param request body types.CreateGroupRequest true "Group"
// @Success 201 {object} types.CreateGroupResult
// @Failure 400 {object} types.ErrorResponse
// @Router /groups [post]
// @Security BearerAuth
func (h *GroupHandler) CreateGroupHandler(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req types.CreateGroupRequest
	if !bindJSONOrError(c, &req) {
		return
	}

	result, err := h.groupService.CreateGroup(c.Request.Context(), userID, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// GetGroupHandler godoc
// @Summary Get a group with recent transactions and stats
// @Tags groups
// @Produce json
// @Param id path string true "Group ID"
// @Success 200 {object} types.GroupDetail
// @Failure 403 {object} types.ErrorResponse
// @Failure 404 {object} types.ErrorResponse
// @Router /groups/{id} [get]
// @Security BearerAuth
func (h *GroupHandler) GetGroupHandler(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	groupID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	detail, err := h.groupService.GetGroup(c.Request.Context(), userID, groupID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// UpdateGroupHandler godoc
// @Summary Update a group
// @Tags groups
// @Accept json
// @Produce json
// @Param id path string true "Group ID"
// @Param request body types.UpdateGroupRequest true "Fields to change"
// @Success 200 {object} types.Group
// @Failure 403 {object} types.ErrorResponse
// @Router /groups/{id} [put]
// @Security BearerAuth
func (h *GroupHandler) UpdateGroupHandler(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	groupID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req types.UpdateGroupRequest
	if !bindJSONOrError(c, &req) {
		return
	}

	group, err := h.groupService.UpdateGroup(c.Request.Context(), userID, groupID, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, group)
}

// DeleteGroupHandler godoc
// @Summary Archive a group
// @Description Blocked while any transaction in the group is pending or approved.
// @Tags groups
// @Param id path string true "Group ID"
// @Success 204
// @Failure 400 {object} types.ErrorResponse
// @Failure 403 {object} types.ErrorResponse
// @Router /groups/{id} [delete]
// @Security BearerAuth
func (h *GroupHandler) DeleteGroupHandler(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	groupID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.groupService.DeleteGroup(c.Request.Context(), userID, groupID); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddMemberHandler godoc
// @Summary Add a member by email
// @Tags groups
// @Accept json
// @Produce json
// @Param id path string true "Group ID"
// @Param request body types.AddMemberRequest true "Member email"
// @Success 200 {object} types.Group
// @Failure 400 {object} types.ErrorResponse
// @Failure 404 {object} types.ErrorResponse
// @Router /groups/{id}/members [post]
// @Security BearerAuth
func (h *GroupHandler) AddMemberHandler(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	groupID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req types.AddMemberRequest
	if !bindJSONOrError(c, &req) {
		return
	}

	group, err := h.groupService.AddMemberByEmail(c.Request.Context(), userID, groupID, req.Email)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, group)
}

// RemoveMemberHandler godoc
// @Summary Remove a member
// @Tags groups
// @Param id path string true "Group ID"
// @Param memberId path string true "Member user ID"
// @Success 204
// @Failure 400 {object} types.ErrorResponse
// @Failure 403 {object} types.ErrorResponse
// @Router /groups/{id}/members/{memberId} [delete]
// @Security BearerAuth
func (h *GroupHandler) RemoveMemberHandler(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	groupID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	memberID, ok := uuidParam(c, "memberId")
	if !ok {
		return
	}

	if err := h.groupService.RemoveMember(c.Request.Context(), userID, groupID, memberID); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// LeaveGroupHandler godoc
// @Summary Leave a group
// @Tags groups
// @Param id path string true "Group ID"
// @Success 204
// @Failure 400 {object} types.ErrorResponse
// @Router /groups/{id}/leave [post]
// @Security BearerAuth
func (h *GroupHandler) LeaveGroupHandler(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	groupID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.groupService.LeaveGroup(c.Request.Context(), userID, groupID); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetGroupBalancesHandler godoc
// @Summary Balances of every group member
// @Tags groups
// @Produce json
// @Param id path string true "Group ID"
// @Success 200 {array} types.GroupBalance
// @Router /groups/{id}/balances [get]
// @Security BearerAuth
func (h *GroupHandler) GetGroupBalancesHandler(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	groupID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	balances, err := h.groupService.GetGroupBalances(c.Request.Context(), userID, groupID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, balances)
}

// GetMemberBalanceHandler godoc
// @Summary Balance of one group member
// @Tags groups
// @Produce json
// @Param id path string true "Group ID"
// @Param userId path string true "Member user ID"
// @Success 200 {object} types.GroupBalance
// @Failure 404 {object} types.ErrorResponse
// @Router /groups/{id}/balances/{userId} [get]
// @Security BearerAuth
func (h *GroupHandler) GetMemberBalanceHandler(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	groupID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	memberID, ok := uuidParam(c, "userId")
	if !ok {
		return
	}

	balance, err := h.groupService.GetMemberBalance(c.Request.Context(), userID, groupID, memberID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, balance)
}

// CreateInviteHandler godoc
// @Summary Create an invite link
// @Tags groups
// @Produce json
// @Param id path string true "Group ID"
// @Success 201 {object} types.GroupInvite
// @Failure 403 {object} types.ErrorResponse
// @Router /groups/{id}/invite [post]
// @Security BearerAuth
func (h *GroupHandler) CreateInviteHandler(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	groupID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	invite, err := h.groupService.CreateInviteToken(c.Request.Context(), userID, groupID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, invite)
}

// JoinGroupHandler godoc
// @Summary Join a group with an invite token
// @Tags groups
// @Accept json
// @Produce json
// @Param request body types.JoinGroupRequest true "Invite token"
// @Success 200 {object} types.Group
// @Failure 400 {object} types.ErrorResponse
// @Failure 401 {object} types.ErrorResponse
// @Router /groups/join [post]
// @Security BearerAuth
func (h *GroupHandler) JoinGroupHandler(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req types.JoinGroupRequest
	if !bindJSONOrError(c, &req) {
		return
	}

	group, err := h.groupService.JoinWithInvite(c.Request.Context(), userID, req.Token)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, group)
}
