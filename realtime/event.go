// Package realtime delivers live conversation updates for support
// tickets. Events are published per ticket over a Broker (Redis in
// production, in-process memory otherwise) and fanned out to
// subscribed viewers through the Bridge.
package realtime

import (
	"encoding/json"
	"time"

	"github.com/kasraden/bazaar-support/models"
)

// EventKind discriminates the payload carried by an Event.
type EventKind string

const (
	EventMessage           EventKind = "message"
	EventPermissionChanged EventKind = "permission_changed"
	EventStatusChanged     EventKind = "status_changed"
)

// Event is the wire envelope for a single ticket update.
type Event struct {
	Kind       EventKind        `json:"kind"`
	TicketUUID string           `json:"ticket_uuid"`
	OccurredAt time.Time        `json:"occurred_at"`
	Message    *MessageEvent    `json:"message,omitempty"`
	Permission *PermissionEvent `json:"permission,omitempty"`
	Status     *StatusEvent     `json:"status,omitempty"`
}

// MessageEvent carries a newly persisted conversation message. The
// message UUID lets receivers drop duplicate deliveries.
type MessageEvent struct {
	UUID            string      `json:"uuid"`
	SenderRole      models.Role `json:"sender_role"`
	SenderName      string      `json:"sender_name"`
	SenderAvatarURL string      `json:"sender_avatar_url,omitempty"`
	Body            string      `json:"body,omitempty"`
	MediaURL        string      `json:"media_url,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
}

// PermissionEvent signals that staff toggled who may write to the
// ticket. Open composers re-evaluate their enabled state on receipt.
type PermissionEvent struct {
	Field   models.PermissionField `json:"field"`
	Allowed bool                   `json:"allowed"`
}

// StatusEvent signals a ticket status transition.
type StatusEvent struct {
	Status models.TicketStatus `json:"status"`
}

// Encode serializes the event for transport.
func (e *Event) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// DecodeEvent parses an event off the wire.
func DecodeEvent(data []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
