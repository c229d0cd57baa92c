package models

import (
	"strings"
	"time"

	"github.com/kasraden/bazaar-support/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TicketMessage is one append-only chat entry inside a ticket.
// Table: ticket_messages
// Rows are never edited or deleted. CreatedAt is assigned server-side and
// defines the total order subscribers render; clients must not reorder.
// Body may be empty only when MediaURL is present.
type TicketMessage struct {
	ID              uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID            uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"uuid"`
	TicketID        uint      `gorm:"not null;index:idx_ticket_messages_ticket_created" json:"ticket_id"`
	SenderRole      Role      `gorm:"type:varchar(10);not null" json:"sender_role"`
	SenderName      string    `gorm:"size:255;not null" json:"sender_name"`
	SenderAvatarURL *string   `gorm:"size:512" json:"sender_avatar_url,omitempty"`
	Body            string    `gorm:"type:text;not null;default:''" json:"body"`
	MediaURL        *string   `gorm:"size:512" json:"media_url,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;index:idx_ticket_messages_ticket_created" json:"created_at"`

	// Relations
	Ticket *Ticket `gorm:"foreignKey:TicketID;references:ID;constraint:OnDelete:CASCADE" json:"ticket,omitempty"`
}

func (TicketMessage) TableName() string { return "ticket_messages" }

// BeforeCreate ensures UUID and timestamp are set
func (m *TicketMessage) BeforeCreate(tx *gorm.DB) error {
	if m.UUID == uuid.Nil {
		m.UUID = uuid.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = utils.UTCNow()
	}
	return nil
}

// HasContent reports whether the message carries text or media; a message with
// neither is invalid
func (m *TicketMessage) HasContent() bool {
	if strings.TrimSpace(m.Body) != "" {
		return true
	}
	return m.MediaURL != nil && *m.MediaURL != ""
}

// TicketMessageFilter represents filter criteria for message queries
type TicketMessageFilter struct {
	ID           *uint      `json:"id,omitempty"`
	UUID         *uuid.UUID `json:"uuid,omitempty"`
	TicketID     *uint      `json:"ticket_id,omitempty"`
	SenderRole   *Role      `json:"sender_role,omitempty"`
	CreatedAfter *time.Time `json:"created_after,omitempty"`
}
