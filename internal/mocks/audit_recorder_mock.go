package mocks

import (
	"context"
	"sync"
)

// RecordedEvent is one captured audit call.
type RecordedEvent struct {
	JobID   uint
	Action  string
	Actor   string
	Details string
}

// AuditRecorderMock captures audit events in order for assertions.
type AuditRecorderMock struct {
	mu     sync.Mutex
	Events []RecordedEvent
}

func (m *AuditRecorderMock) Record(ctx context.Context, jobID uint, action, actor, details string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, RecordedEvent{JobID: jobID, Action: action, Actor: actor, Details: details})
}

// Actions returns the recorded action names in order.
func (m *AuditRecorderMock) Actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	actions := make([]string, len(m.Events))
	for i, e := range m.Events {
		actions[i] = e.Action
	}
	return actions
}
