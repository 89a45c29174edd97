package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/NomadCrew/nomad-split-backend/types"
	"github.com/google/uuid"
)

// PublishEventWithContext builds a standard types.Event around payload and
// publishes it. The event goes to the group channel when groupID is set and to
// the user channel otherwise.
func PublishEventWithContext(publisher types.EventPublisher, ctx context.Context, eventType types.EventType, groupID, userID string, payload interface{}, source string) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	event := types.Event{
		BaseEvent: types.BaseEvent{
			ID:        uuid.NewString(),
			Type:      eventType,
			GroupID:   groupID,
			UserID:    userID,
			Timestamp: time.Now().UTC(),
			Version:   1,
		},
		Metadata: types.EventMetadata{
			Source: source,
		},
		Payload: data,
	}

	if err := publisher.Publish(ctx, event); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", eventType, err)
	}
	return nil
}
