package types

import (
	"context"
	"encoding/json"
	"time"

	"github.com/NomadCrew/nomad-split-backend/errors"
)

type EventType string

const (
	CategoryTransaction = "TRANSACTION"
	CategoryMember      = "MEMBER"
	CategoryFriend      = "FRIEND"
)

const (
	EventTypeTransactionCreated  EventType = CategoryTransaction + "_CREATED"
	EventTypeTransactionUpdated  EventType = CategoryTransaction + "_UPDATED"
	EventTypeTransactionDeleted  EventType = CategoryTransaction + "_DELETED"
	EventTypeTransactionPaid     EventType = CategoryTransaction + "_PAID"
	EventTypeTransactionSettled  EventType = CategoryTransaction + "_SETTLED"
	EventTypeTransactionApproved EventType = CategoryTransaction + "_APPROVED"

	EventTypeMemberAdded   EventType = CategoryMember + "_ADDED"
	EventTypeMemberRemoved EventType = CategoryMember + "_REMOVED"

	EventTypeFriendRequestSent EventType = CategoryFriend + "_REQUEST_SENT"
)

// Channel prefixes. Group events go to group:<id>, everything else to user:<id>.
const (
	ChannelGroupPrefix = "group:"
	ChannelUserPrefix  = "user:"
)

type BaseEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	GroupID   string    `json:"groupId,omitempty"`
	UserID    string    `json:"userId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Version   int       `json:"version"`
}

type EventMetadata struct {
	CorrelationID string            `json:"correlationId,omitempty"`
	Source        string            `json:"source"`
	Tags          map[string]string `json:"tags,omitempty"`
}

type Event struct {
	BaseEvent
	Metadata EventMetadata   `json:"metadata"`
	Payload  json.RawMessage `json:"payload"`
}

// Channel returns the pub/sub channel the event belongs on.
func (e Event) Channel() string {
	if e.GroupID != "" {
		return ChannelGroupPrefix + e.GroupID
	}
	return ChannelUserPrefix + e.UserID
}

func (e Event) Validate() error {
	if e.ID == "" {
		return errors.ValidationFailed("invalid event", "event ID is required")
	}
	if e.Type == "" {
		return errors.ValidationFailed("invalid event", "event type is required")
	}
	if e.GroupID == "" && e.UserID == "" {
		return errors.ValidationFailed("invalid event", "group ID or user ID is required")
	}
	if e.Timestamp.IsZero() {
		return errors.ValidationFailed("invalid event", "timestamp is required")
	}
	return nil
}

// EventPublisher delivers domain events to realtime subscribers.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

type TransactionEventPayload struct {
	TransactionID string            `json:"transactionId"`
	Description   string            `json:"description,omitempty"`
	Amount        string            `json:"amount,omitempty"`
	Currency      string            `json:"currency,omitempty"`
	Status        TransactionStatus `json:"status,omitempty"`
	ActorID       string            `json:"actorId"`
	ParticipantID string            `json:"participantId,omitempty"`
}

type MemberEventPayload struct {
	MemberID string `json:"memberId"`
	ActorID  string `json:"actorId"`
}

type FriendRequestEventPayload struct {
	RequestID  string `json:"requestId"`
	FromUserID string `json:"fromUserId"`
}
