package types

import "time"

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
	ThemeAuto  Theme = "auto"
)

type PaymentMethodType string

const (
	PaymentMethodVenmo   PaymentMethodType = "venmo"
	PaymentMethodPayPal  PaymentMethodType = "paypal"
	PaymentMethodCashApp PaymentMethodType = "cashapp"
	PaymentMethodZelle   PaymentMethodType = "zelle"
)

// IsValid reports whether t is one of the supported payment apps.
func (t PaymentMethodType) IsValid() bool {
	switch t {
	case PaymentMethodVenmo, PaymentMethodPayPal, PaymentMethodCashApp, PaymentMethodZelle:
		return true
	}
	return false
}

type PaymentMethod struct {
	Type      PaymentMethodType `json:"type"`
	Handle    string            `json:"handle"`
	IsDefault bool              `json:"isDefault"`
}

type NotificationPreferences struct {
	Email           bool `json:"email"`
	Push            bool `json:"push"`
	ExpenseAdded    bool `json:"expenseAdded"`
	PaymentReminder bool `json:"paymentReminder"`
}

type UserPreferences struct {
	Currency      string                  `json:"currency"`
	Theme         Theme                   `json:"theme"`
	Notifications NotificationPreferences `json:"notifications"`
}

// DefaultUserPreferences are applied to users created on their first request.
func DefaultUserPreferences() UserPreferences {
	return UserPreferences{
		Currency: "USD",
		Theme:    ThemeAuto,
		Notifications: NotificationPreferences{
			Email:           true,
			Push:            true,
			ExpenseAdded:    true,
			PaymentReminder: true,
		},
	}
}

// User is a registered person. The ID is the subject of their access token.
type User struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Email          string          `json:"email"`
	Avatar         string          `json:"avatar,omitempty"`
	PhoneNumber    string          `json:"phoneNumber,omitempty"`
	Preferences    UserPreferences `json:"preferences"`
	PaymentMethods []PaymentMethod `json:"paymentMethods"`
	LastActive     time.Time       `json:"lastActive"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// UserSummary is the public view of another user embedded in responses.
type UserSummary struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar,omitempty"`
}

// Summary returns the public view of u.
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, Avatar: u.Avatar}
}

// UpdateUserRequest carries a partial profile update. Nil fields are left unchanged.
type UpdateUserRequest struct {
	Name        *string          `json:"name,omitempty"`
	Avatar      *string          `json:"avatar,omitempty"`
	PhoneNumber *string          `json:"phoneNumber,omitempty"`
	Preferences *UserPreferences `json:"preferences,omitempty"`
}

type SetPaymentMethodsRequest struct {
	PaymentMethods []PaymentMethod `json:"paymentMethods"`
}

// AuthenticatedUser holds the identity claims of a validated access token.
type AuthenticatedUser struct {
	ID    string
	Email string
	Name  string
}
