package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/NomadCrew/nomad-split-backend/types"
)

// MockPublisher implements types.EventPublisher for testing. It records every
// published event keyed by channel.
type MockPublisher struct {
	mu     sync.RWMutex
	events map[string][]types.Event
	err    error
}

// NewMockPublisher creates a new mock publisher for testing
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{
		events: make(map[string][]types.Event),
	}
}

// FailWith makes subsequent publishes return err.
func (m *MockPublisher) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Publish records an event for testing
func (m *MockPublisher) Publish(ctx context.Context, event types.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	if err := event.Validate(); err != nil {
		return fmt.Errorf("invalid event: %w", err)
	}
	m.events[event.Channel()] = append(m.events[event.Channel()], event)
	return nil
}

// GetEvents returns the events recorded on channel.
func (m *MockPublisher) GetEvents(channel string) []types.Event {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]types.Event, len(m.events[channel]))
	copy(out, m.events[channel])
	return out
}

// Types returns the types of all recorded events on channel, in order.
func (m *MockPublisher) Types(channel string) []types.EventType {
	var out []types.EventType
	for _, e := range m.GetEvents(channel) {
		out = append(out, e.Type)
	}
	return out
}

// Reset drops every recorded event.
func (m *MockPublisher) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = make(map[string][]types.Event)
}
