package middleware

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/NomadCrew/nomad-split-backend/types"
	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

var (
	// ErrTokenExpired is returned when JWT validation fails due to expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid is returned for general token validation failures (signature, format).
	ErrTokenInvalid = errors.New("token invalid")
	// ErrTokenMissingClaim is returned if a required claim (like 'sub') is missing or malformed.
	ErrTokenMissingClaim = errors.New("token missing required claim")
)

const clockSkew = 30 * time.Second

// Validator validates access tokens and returns the identity they carry.
type Validator interface {
	Validate(tokenString string) (*types.AuthenticatedUser, error)
}

// JWTValidator checks HS256 access tokens signed with a shared secret.
type JWTValidator struct {
	secret []byte
}

var _ Validator = (*JWTValidator)(nil)

func NewJWTValidator(secret string) (*JWTValidator, error) {
	if secret == "" {
		return nil, fmt.Errorf("JWT validator configuration error: secret is empty")
	}
	return &JWTValidator{secret: []byte(secret)}, nil
}

// Validate parses and verifies the token. The subject must be a UUID; email and
// display name are read from the "email", "name" and "user_metadata" claims when present.
func (v *JWTValidator) Validate(tokenString string) (*types.AuthenticatedUser, error) {
	token, err := jwt.Parse([]byte(tokenString),
		jwt.WithKey(jwa.HS256, v.secret),
		jwt.WithValidate(true),
		jwt.WithAcceptableSkew(clockSkew),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired()) {
			return nil, fmt.Errorf("%w: %w", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	sub := token.Subject()
	if sub == "" {
		return nil, fmt.Errorf("%w: sub", ErrTokenMissingClaim)
	}
	if _, err := uuid.Parse(sub); err != nil {
		return nil, fmt.Errorf("%w: sub is not a UUID", ErrTokenMissingClaim)
	}

	return &types.AuthenticatedUser{
		ID:    sub,
		Email: stringClaim(token, "email"),
		Name:  displayName(token),
	}, nil
}

func stringClaim(token jwt.Token, name string) string {
	v, ok := token.Get(name)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func displayName(token jwt.Token) string {
	if name := stringClaim(token, "name"); name != "" {
		return name
	}
	raw, ok := token.Get("user_metadata")
	if !ok {
		return ""
	}
	meta, ok := raw.(map[string]interface{})
	if !ok {
		return ""
	}
	for _, key := range []string{"name", "full_name", "username"} {
		if s, ok := meta[key].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}
