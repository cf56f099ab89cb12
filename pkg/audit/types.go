package audit

import (
	"encoding/json"
	"time"
)

// EventType represents the category of audit event
type EventType string

const (
	// Developer lifecycle events
	EventTypeDeveloperCreate      EventType = "developer.create"
	EventTypeDeveloperUpdate      EventType = "developer.update"
	EventTypeDeveloperDelete      EventType = "developer.delete"
	EventTypeDeveloperOwnerAssign EventType = "developer.owner_assign"

	// Developer app events
	EventTypeAppCreate EventType = "app.create"
	EventTypeAppDelete EventType = "app.delete"

	// Cache events
	EventTypeCacheInvalidate EventType = "cache.invalidate"

	// Background sync events
	EventTypeReconcileRun EventType = "reconcile.run"
)

// EventStatus represents the outcome of an event
type EventStatus string

const (
	EventStatusSuccess EventStatus = "success"
	EventStatusFailure EventStatus = "failure"
)

// ResourceType represents the type of resource an event concerns
type ResourceType string

const (
	ResourceTypeDeveloper ResourceType = "developer"
	ResourceTypeApp       ResourceType = "app"
	ResourceTypeAccount   ResourceType = "account"
	ResourceTypeCache     ResourceType = "cache"
)

// Event represents a single audit log entry
type Event struct {
	ID        string      `json:"id"`
	Timestamp time.Time   `json:"timestamp"`
	EventType EventType   `json:"event_type"`
	Status    EventStatus `json:"status"`

	// Actor information
	AccountID *int64 `json:"account_id,omitempty"`
	RequestID string `json:"request_id,omitempty"`

	// Resource information
	ResourceType ResourceType `json:"resource_type,omitempty"`
	ResourceID   string       `json:"resource_id,omitempty"`

	// Additional details
	Message      string                 `json:"message,omitempty"`
	ErrorMessage string                 `json:"error_message,omitempty"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
}

// ToJSON converts the event to JSON
func (e *Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// FromJSON parses an event from JSON
func FromJSON(data []byte) (*Event, error) {
	var event Event
	err := json.Unmarshal(data, &event)
	return &event, err
}
