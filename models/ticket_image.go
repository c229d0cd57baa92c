package models

import (
	"time"

	"github.com/kasraden/bazaar-support/utils"
	"gorm.io/gorm"
)

// TicketImage is one image attached to a ticket at creation time.
// Table: ticket_images
// The set is fixed when the ticket is created; images are never added or
// removed afterwards. Position preserves the order the buyer staged them in.
type TicketImage struct {
	ID       uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	TicketID uint   `gorm:"not null;index" json:"ticket_id"`
	URL      string `gorm:"size:512;not null" json:"url"`
	Position int    `gorm:"not null;default:0" json:"position"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`

	// Relations
	Ticket *Ticket `gorm:"foreignKey:TicketID;references:ID;constraint:OnDelete:CASCADE" json:"ticket,omitempty"`
}

func (TicketImage) TableName() string { return "ticket_images" }

// BeforeCreate normalizes the timestamp
func (i *TicketImage) BeforeCreate(tx *gorm.DB) error {
	if i.CreatedAt.IsZero() {
		i.CreatedAt = utils.UTCNow()
	}
	return nil
}

// TicketImageFilter represents filter criteria for ticket image queries
type TicketImageFilter struct {
	ID       *uint `json:"id,omitempty"`
	TicketID *uint `json:"ticket_id,omitempty"`
}
