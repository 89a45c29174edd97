package service

import (
	"context"
	"strings"

	apperrors "github.com/NomadCrew/nomad-split-backend/errors"
	"github.com/NomadCrew/nomad-split-backend/logger"
	"github.com/NomadCrew/nomad-split-backend/models/shared"
	"github.com/NomadCrew/nomad-split-backend/types"
)

// AddMemberByEmail adds the user registered under email to the group.
func (s *GroupService) AddMemberByEmail(ctx context.Context, userID, groupID, email string) (*types.Group, error) {
	group, err := s.load(ctx, userID, groupID)
	if err != nil {
		return nil, err
	}
	if err := shared.RequireInviter(group, userID); err != nil {
		return nil, err
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, apperrors.ValidationFailed("Email is required", "")
	}
	user, err := s.store.Users().GetByEmail(ctx, email)
	if err != nil {
		return nil, shared.FromStore(err, "User", email)
	}

	return s.addMember(ctx, group, user.ID, userID)
}

func (s *GroupService) addMember(ctx context.Context, group *types.Group, memberID, actorID string) (*types.Group, error) {
	if group.IsMember(memberID) {
		return nil, apperrors.ValidationFailed("User is already a member of this group", memberID)
	}

	member := types.GroupMember{
		UserID:   memberID,
		Role:     types.GroupRoleMember,
		JoinedAt: s.now(),
	}
	if err := s.store.Groups().AddMember(ctx, group.ID, member); err != nil {
		return nil, shared.FromStore(err, "Group member", memberID)
	}
	group.Members = append(group.Members, member)

	s.events.Emit(ctx, types.EventTypeMemberAdded, group.ID, memberID,
		types.MemberEventPayload{MemberID: memberID, ActorID: actorID})
	logger.GetLogger().Infow("Member added", "groupID", group.ID, "memberID", memberID, "actorID", actorID)
	return group, nil
}

// RemoveMember removes memberID from the group. Admins only. The creator stays,
// and members with open expenses in the group cannot be removed.
func (s *GroupService) RemoveMember(ctx context.Context, userID, groupID, memberID string) error {
	group, err := s.load(ctx, userID, groupID)
	if err != nil {
		return err
	}
	if err := shared.RequireAdmin(group, userID); err != nil {
		return err
	}
	if memberID == group.CreatedBy {
		return apperrors.ValidationFailed("The group creator cannot be removed", memberID)
	}
	return s.removeMember(ctx, group, memberID, userID)
}

// LeaveGroup removes the caller from the group. The creator cannot leave.
func (s *GroupService) LeaveGroup(ctx context.Context, userID, groupID string) error {
	group, err := s.load(ctx, userID, groupID)
	if err != nil {
		return err
	}
	if userID == group.CreatedBy {
		return apperrors.ValidationFailed("The group creator cannot leave the group", "delete the group instead")
	}
	return s.removeMember(ctx, group, userID, userID)
}

func (s *GroupService) removeMember(ctx context.Context, group *types.Group, memberID, actorID string) error {
	if !group.IsMember(memberID) {
		return apperrors.NotFound("Group member", memberID)
	}

	n, err := s.store.Transactions().CountUnsettled(ctx, group.ID, memberID)
	if err != nil {
		return shared.FromStore(err, "Transaction", "")
	}
	if n > 0 {
		return apperrors.SettlementBlocked("Member has unsettled transactions in this group", n)
	}

	if err := s.store.Groups().RemoveMember(ctx, group.ID, memberID); err != nil {
		return shared.FromStore(err, "Group member", memberID)
	}

	s.events.Emit(ctx, types.EventTypeMemberRemoved, group.ID, memberID,
		types.MemberEventPayload{MemberID: memberID, ActorID: actorID})
	logger.GetLogger().Infow("Member removed", "groupID", group.ID, "memberID", memberID, "actorID", actorID)
	return nil
}
