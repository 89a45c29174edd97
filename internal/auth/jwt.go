// Package auth issues and validates the signed group invite tokens.
package auth

import (
	stderrors "errors"
	"fmt"
	"time"

	"github.com/NomadCrew/nomad-split-backend/errors"
	"github.com/NomadCrew/nomad-split-backend/types"
	"github.com/golang-jwt/jwt/v5"
)

const (
	inviteIssuer   = "nomad-split"
	inviteAudience = "group-invite"
)

// GenerateInviteToken signs an invite to groupID on behalf of inviterID.
func GenerateInviteToken(groupID, inviterID, secret string, expiresAt time.Time) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("missing invite secret")
	}

	now := time.Now()
	claims := &types.GroupInviteClaims{
		GroupID:   groupID,
		InviterID: inviterID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    inviteIssuer,
			Audience:  jwt.ClaimStrings{inviteAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateInviteToken verifies signature, audience and expiry of an invite token.
func ValidateInviteToken(tokenString, secret string) (*types.GroupInviteClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &types.GroupInviteClaims{},
		func(token *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(inviteAudience),
		jwt.WithIssuer(inviteIssuer),
	)
	if err != nil {
		if stderrors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.Unauthorized("invite_expired", "Invitation has expired")
		}
		return nil, errors.Unauthorized("invalid_token", "Invalid invitation")
	}

	claims, ok := token.Claims.(*types.GroupInviteClaims)
	if !ok || !token.Valid || claims.GroupID == "" {
		return nil, errors.Unauthorized("invalid_claims", "Invalid token structure")
	}
	return claims, nil
}
