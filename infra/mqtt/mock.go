package mqtt

import (
	"encoding/json"
	"fmt"
	"sync"
)

// MockPublisher records published payloads for tests.
type MockPublisher struct {
	mu         sync.Mutex
	Messages   map[string][]json.RawMessage
	FailTopics map[string]bool
}

// NewMockPublisher creates a new MockPublisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{
		Messages:   make(map[string][]json.RawMessage),
		FailTopics: make(map[string]bool),
	}
}

// Publish records the payload or fails if the topic is marked as failing.
func (m *MockPublisher) Publish(topic string, payload any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailTopics[topic] {
		return fmt.Errorf("publish failed")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	m.Messages[topic] = append(m.Messages[topic], data)
	return nil
}

// Disconnect is a no-op.
func (m *MockPublisher) Disconnect() {}

// Count returns the number of payloads recorded for the topic.
func (m *MockPublisher) Count(topic string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Messages[topic])
}

// Last decodes the most recent payload on the topic into v.
func (m *MockPublisher) Last(topic string, v any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	msgs := m.Messages[topic]
	if len(msgs) == 0 {
		return fmt.Errorf("no messages on %s", topic)
	}
	return json.Unmarshal(msgs[len(msgs)-1], v)
}
