// Package audit records developer lifecycle and cache invalidation
// events as structured JSON lines, for operators reconstructing what
// happened to an entity across systems.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/gatewaykit/portalsync/pkg/observability"
)

// Logger is the interface for audit logging
type Logger interface {
	// Log records a single audit event
	Log(ctx context.Context, event *Event) error

	// Close flushes and closes the logger
	Close() error
}

// NewEvent builds an event with generated ID and timestamp, picking up
// the request ID from context when present
func NewEvent(ctx context.Context, eventType EventType, status EventStatus) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		Status:    status,
		RequestID: observability.GetRequestID(ctx),
	}
}

// NopLogger discards all events
type NopLogger struct{}

// Log implements Logger
func (NopLogger) Log(context.Context, *Event) error { return nil }

// Close implements Logger
func (NopLogger) Close() error { return nil }

// MultiLogger fans events out to several loggers, returning the first
// error after attempting all of them
type MultiLogger struct {
	loggers []Logger
}

// NewMultiLogger creates a MultiLogger
func NewMultiLogger(loggers ...Logger) *MultiLogger {
	return &MultiLogger{loggers: loggers}
}

// Log implements Logger
func (m *MultiLogger) Log(ctx context.Context, event *Event) error {
	var firstErr error
	for _, l := range m.loggers {
		if err := l.Log(ctx, event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Close implements Logger
func (m *MultiLogger) Close() error {
	var firstErr error
	for _, l := range m.loggers {
		if err := l.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
