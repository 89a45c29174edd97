// Package shared holds helpers used by every domain service: event emission,
// store error translation, membership checks and paging.
package shared

import (
	"context"

	"github.com/NomadCrew/nomad-split-backend/internal/events"
	"github.com/NomadCrew/nomad-split-backend/logger"
	"github.com/NomadCrew/nomad-split-backend/types"
)

type EventEmitter struct {
	eventBus types.EventPublisher
	source   string
}

func NewEventEmitter(eventBus types.EventPublisher, source string) *EventEmitter {
	return &EventEmitter{eventBus: eventBus, source: source}
}

// Emit publishes an event for groupID, or for userID when groupID is empty.
// Failures are logged and swallowed; a lost event never fails the request.
func (e *EventEmitter) Emit(ctx context.Context, eventType types.EventType, groupID, userID string, payload interface{}) {
	if e == nil || e.eventBus == nil {
		return
	}
	if err := events.PublishEventWithContext(e.eventBus, ctx, eventType, groupID, userID, payload, e.source); err != nil {
		logger.GetLogger().Warnw("Failed to publish event",
			"eventType", eventType,
			"groupID", groupID,
			"userID", userID,
			"source", e.source,
			"error", err)
	}
}
