package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/NomadCrew/nomad-split-backend/logger"
	"github.com/NomadCrew/nomad-split-backend/types"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.IsTest = true
}

func testEvent(id string, eventType types.EventType, groupID, userID string) types.Event {
	return types.Event{
		BaseEvent: types.BaseEvent{
			ID:        id,
			Type:      eventType,
			GroupID:   groupID,
			UserID:    userID,
			Timestamp: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
			Version:   1,
		},
		Metadata: types.EventMetadata{Source: "test"},
		Payload:  json.RawMessage(`{"transactionId":"tx-1"}`),
	}
}

func mustJSON(t *testing.T, v interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func TestRedisPublisher_PublishToGroupChannel(t *testing.T) {
	resetMetricsForTesting()
	rdb, mock := redismock.NewClientMock()
	publisher := NewRedisPublisher(rdb)

	event := testEvent("evt-1", types.EventTypeTransactionCreated, "group-1", "user-1")
	mock.ExpectPublish("group:group-1", mustJSON(t, event)).SetVal(2)

	require.NoError(t, publisher.Publish(context.Background(), event))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisPublisher_PublishToUserChannel(t *testing.T) {
	resetMetricsForTesting()
	rdb, mock := redismock.NewClientMock()
	publisher := NewRedisPublisher(rdb)

	event := testEvent("evt-2", types.EventTypeFriendRequestSent, "", "user-2")
	mock.ExpectPublish("user:user-2", mustJSON(t, event)).SetVal(0)

	require.NoError(t, publisher.Publish(context.Background(), event))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisPublisher_PublishRejectsInvalidEvent(t *testing.T) {
	resetMetricsForTesting()
	rdb, mock := redismock.NewClientMock()
	publisher := NewRedisPublisher(rdb)

	event := testEvent("", types.EventTypeTransactionCreated, "group-1", "")
	err := publisher.Publish(context.Background(), event)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid event")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisPublisher_PublishRedisError(t *testing.T) {
	resetMetricsForTesting()
	rdb, mock := redismock.NewClientMock()
	publisher := NewRedisPublisher(rdb, Config{PublishTimeout: time.Second})

	event := testEvent("evt-3", types.EventTypeTransactionPaid, "group-1", "user-1")
	mock.ExpectPublish("group:group-1", mustJSON(t, event)).SetErr(errors.New("connection reset"))

	err := publisher.Publish(context.Background(), event)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis publish")
}

func TestPublishEventWithContext(t *testing.T) {
	pub := NewMockPublisher()
	payload := types.TransactionEventPayload{TransactionID: "tx-9", ActorID: "user-1"}

	err := PublishEventWithContext(pub, context.Background(), types.EventTypeTransactionCreated, "group-9", "user-1", payload, "transaction-service")
	require.NoError(t, err)

	events := pub.GetEvents("group:group-9")
	require.Len(t, events, 1)
	assert.Equal(t, types.EventTypeTransactionCreated, events[0].Type)
	assert.Equal(t, "transaction-service", events[0].Metadata.Source)
	assert.NotEmpty(t, events[0].ID)
	assert.Equal(t, 1, events[0].Version)

	var decoded types.TransactionEventPayload
	require.NoError(t, json.Unmarshal(events[0].Payload, &decoded))
	assert.Equal(t, payload, decoded)
}

func TestPublishEventWithContext_PublisherError(t *testing.T) {
	pub := NewMockPublisher()
	pub.FailWith(errors.New("down"))

	err := PublishEventWithContext(pub, context.Background(), types.EventTypeMemberAdded, "group-1", "user-1", nil, "group-service")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MEMBER_ADDED")
}
