package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	apperrors "github.com/NomadCrew/nomad-split-backend/errors"
	"github.com/NomadCrew/nomad-split-backend/internal/store"
	"github.com/NomadCrew/nomad-split-backend/logger"
	"github.com/NomadCrew/nomad-split-backend/models/shared"
	"github.com/NomadCrew/nomad-split-backend/types"
)

const (
	maxNameLength   = 50
	maxAvatarLength = 2048
	maxPhoneLength  = 20
	maxHandleLength = 100
)

type UserService struct {
	userStore store.UserStore
	now       func() time.Time
}

func NewUserService(userStore store.UserStore) *UserService {
	return &UserService{
		userStore: userStore,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// nameFromEmail derives a display name from the local part of an email address.
func nameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	local = strings.NewReplacer(".", " ", "_", " ", "-", " ", "+", " ").Replace(local)
	return strings.TrimSpace(local)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// EnsureUser creates the profile of an authenticated subject on their first
// request and refreshes lastActive on every later one.
func (s *UserService) EnsureUser(ctx context.Context, au types.AuthenticatedUser) (*types.User, error) {
	if au.ID == "" {
		return nil, apperrors.AuthenticationFailed("missing user id in token")
	}
	email := strings.ToLower(strings.TrimSpace(au.Email))

	name := strings.TrimSpace(au.Name)
	if name == "" {
		name = nameFromEmail(email)
	}
	if name == "" {
		name = "User"
	}

	now := s.now()
	user, err := s.userStore.Upsert(ctx, &types.User{
		ID:             au.ID,
		Name:           truncate(name, maxNameLength),
		Email:          email,
		Preferences:    types.DefaultUserPreferences(),
		PaymentMethods: []types.PaymentMethod{},
		LastActive:     now,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		logger.GetLogger().Errorw("Failed to ensure user", "userID", au.ID, "email", logger.MaskEmail(email), "error", err)
		return nil, shared.FromStore(err, "User", au.ID)
	}
	return user, nil
}

// GetMe returns the caller's full profile.
func (s *UserService) GetMe(ctx context.Context, userID string) (*types.User, error) {
	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		return nil, shared.FromStore(err, "User", userID)
	}
	return user, nil
}

// UpdateMe applies a partial profile update.
func (s *UserService) UpdateMe(ctx context.Context, userID string, req *types.UpdateUserRequest) (*types.User, error) {
	user, err := s.GetMe(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperrors.ValidationFailed("Name cannot be empty", "")
		}
		if utf8.RuneCountInString(name) > maxNameLength {
			return nil, apperrors.ValidationFailed("Name is too long", "maximum 50 characters")
		}
		user.Name = name
	}
	if req.Avatar != nil {
		avatar := strings.TrimSpace(*req.Avatar)
		if len(avatar) > maxAvatarLength {
			return nil, apperrors.ValidationFailed("Avatar URL is too long", "")
		}
		user.Avatar = avatar
	}
	if req.PhoneNumber != nil {
		phone, err := validatePhone(*req.PhoneNumber)
		if err != nil {
			return nil, err
		}
		user.PhoneNumber = phone
	}
	if req.Preferences != nil {
		prefs, err := validatePreferences(*req.Preferences)
		if err != nil {
			return nil, err
		}
		user.Preferences = prefs
	}

	user.UpdatedAt = s.now()
	if err := s.userStore.Update(ctx, user); err != nil {
		return nil, shared.FromStore(err, "User", userID)
	}
	logger.GetLogger().Infow("User profile updated", "userID", userID)
	return user, nil
}

// SetPaymentMethods replaces the caller's payment methods. At most one may be the default.
func (s *UserService) SetPaymentMethods(ctx context.Context, userID string, methods []types.PaymentMethod) (*types.User, error) {
	cleaned := make([]types.PaymentMethod, 0, len(methods))
	defaults := 0
	seen := map[string]bool{}
	for _, m := range methods {
		m.Type = types.PaymentMethodType(strings.ToLower(strings.TrimSpace(string(m.Type))))
		m.Handle = strings.TrimSpace(m.Handle)
		if !m.Type.IsValid() {
			return nil, apperrors.ValidationFailed("Invalid payment method type", string(m.Type))
		}
		if m.Handle == "" || len(m.Handle) > maxHandleLength {
			return nil, apperrors.ValidationFailed("Payment handle must be 1 to 100 characters", string(m.Type))
		}
		key := string(m.Type) + ":" + strings.ToLower(m.Handle)
		if seen[key] {
			return nil, apperrors.ValidationFailed("Duplicate payment method", key)
		}
		seen[key] = true
		if m.IsDefault {
			defaults++
		}
		cleaned = append(cleaned, m)
	}
	if defaults > 1 {
		return nil, apperrors.ValidationFailed("Only one payment method can be the default", "")
	}

	user, err := s.GetMe(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.PaymentMethods = cleaned
	user.UpdatedAt = s.now()
	if err := s.userStore.Update(ctx, user); err != nil {
		return nil, shared.FromStore(err, "User", userID)
	}
	return user, nil
}

func validatePhone(phone string) (string, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return "", nil
	}
	if len(phone) > maxPhoneLength {
		return "", apperrors.ValidationFailed("Phone number is too long", "")
	}
	for i, r := range phone {
		switch {
		case r >= '0' && r <= '9', r == ' ', r == '-', r == '(', r == ')':
		case r == '+' && i == 0:
		default:
			return "", apperrors.ValidationFailed("Invalid phone number", phone)
		}
	}
	return phone, nil
}

func validatePreferences(p types.UserPreferences) (types.UserPreferences, error) {
	currency, ok := shared.NormalizeCurrency(p.Currency)
	if !ok {
		return p, apperrors.ValidationFailed("Unsupported currency", p.Currency)
	}
	p.Currency = currency

	switch p.Theme {
	case "":
		p.Theme = types.ThemeAuto
	case types.ThemeLight, types.ThemeDark, types.ThemeAuto:
	default:
		return p, apperrors.ValidationFailed("Invalid theme", string(p.Theme))
	}
	return p, nil
}
