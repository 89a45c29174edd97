package middleware

// contextKey defines a type for context keys to avoid collisions.
type contextKey string

const (
	// UserIDKey holds the authenticated user's ID (string).
	UserIDKey contextKey = "userID"
	// AuthUserKey holds the types.AuthenticatedUser built from the access token.
	AuthUserKey contextKey = "authUser"
)
