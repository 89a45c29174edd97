package service

import (
	"context"
	"net/url"
	"strings"

	apperrors "github.com/NomadCrew/nomad-split-backend/errors"
	"github.com/NomadCrew/nomad-split-backend/internal/auth"
	"github.com/NomadCrew/nomad-split-backend/models/shared"
	"github.com/NomadCrew/nomad-split-backend/types"
)

// CreateInviteToken signs an invite link to the group. Whoever may add members
// may also hand out invites.
func (s *GroupService) CreateInviteToken(ctx context.Context, userID, groupID string) (*types.GroupInvite, error) {
	group, err := s.load(ctx, userID, groupID)
	if err != nil {
		return nil, err
	}
	if err := shared.RequireInviter(group, userID); err != nil {
		return nil, err
	}

	expiresAt := s.now().Add(s.invites.TTL)
	token, err := auth.GenerateInviteToken(group.ID, userID, s.invites.Secret, expiresAt)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ServerError, "Failed to create invite")
	}

	invite := &types.GroupInvite{
		Token:     token,
		GroupID:   group.ID,
		ExpiresAt: expiresAt,
	}
	if s.invites.FrontendURL != "" {
		invite.URL = strings.TrimRight(s.invites.FrontendURL, "/") + "/join?token=" + url.QueryEscape(token)
	}
	return invite, nil
}

// JoinWithInvite adds userID to the group named by a valid invite token.
func (s *GroupService) JoinWithInvite(ctx context.Context, userID, token string) (*types.Group, error) {
	claims, err := auth.ValidateInviteToken(token, s.invites.Secret)
	if err != nil {
		return nil, err
	}

	group, err := s.store.Groups().GetByID(ctx, claims.GroupID)
	if err != nil {
		return nil, shared.FromStore(err, "Group", claims.GroupID)
	}
	return s.addMember(ctx, group, userID, claims.InviterID)
}
