// Package notify publishes invocation outcomes to a NATS subject.
package notify

import (
	"encoding/json"
	"time"
)

// InvocationEvent is published once per finished invocation.
type InvocationEvent struct {
	InvocationID string    `json:"invocation_id"`
	Builder      string    `json:"builder"`
	Source       string    `json:"source"`
	ArtifactRoot string    `json:"artifact_root"`
	State        string    `json:"state"`
	ExitCode     int       `json:"exit_code"`
	DurationMs   int64     `json:"duration_ms"`
	Revision     string    `json:"revision,omitempty"`
	Error        string    `json:"error,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// Encode returns the wire form of the event.
func (e *InvocationEvent) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// DecodeInvocationEvent parses an event received from the bus.
func DecodeInvocationEvent(data []byte) (*InvocationEvent, error) {
	var e InvocationEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
