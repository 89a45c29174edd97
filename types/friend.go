package types

import "time"

type FriendRequestStatus string

const (
	FriendRequestPending  FriendRequestStatus = "pending"
	FriendRequestAccepted FriendRequestStatus = "accepted"
	FriendRequestDeclined FriendRequestStatus = "declined"
)

type FriendRequest struct {
	ID         string              `json:"id"`
	FromUserID string              `json:"fromUserId"`
	ToUserID   string              `json:"toUserId"`
	Message    string              `json:"message,omitempty"`
	Status     FriendRequestStatus `json:"status"`
	CreatedAt  time.Time           `json:"createdAt"`
	UpdatedAt  time.Time           `json:"updatedAt"`
}

// FriendRequestView is an incoming request with the sender resolved.
type FriendRequestView struct {
	FriendRequest
	From UserSummary `json:"from"`
}

type SendFriendRequest struct {
	ToUserID string `json:"toUserId" binding:"required"`
	Message  string `json:"message"`
}

type AddFriendRequest struct {
	Email string `json:"email" binding:"required"`
}

// FriendPaymentMethods lists how a friend can be paid back.
type FriendPaymentMethods struct {
	Friend         UserSummary     `json:"friend"`
	PaymentMethods []PaymentMethod `json:"paymentMethods"`
}
