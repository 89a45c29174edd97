package shared

import (
	apperrors "github.com/NomadCrew/nomad-split-backend/errors"
	"github.com/NomadCrew/nomad-split-backend/types"
)

// RequireMember fails unless userID belongs to g.
func RequireMember(g *types.Group, userID string) error {
	if !g.IsMember(userID) {
		return apperrors.NotGroupMember(userID, g.ID)
	}
	return nil
}

// RequireAdmin fails unless userID is an admin of g.
func RequireAdmin(g *types.Group, userID string) error {
	if err := RequireMember(g, userID); err != nil {
		return err
	}
	if !g.IsAdmin(userID) {
		return apperrors.Forbidden("Only group admins can perform this action", "admin role required")
	}
	return nil
}

// RequireInviter fails unless userID may add people to g: admins always can,
// members only while the group allows member invites.
func RequireInviter(g *types.Group, userID string) error {
	if err := RequireMember(g, userID); err != nil {
		return err
	}
	if !g.IsAdmin(userID) && !g.Settings.AllowMemberInvites {
		return apperrors.Forbidden("Only group admins can add members", "member invites are disabled for this group")
	}
	return nil
}
