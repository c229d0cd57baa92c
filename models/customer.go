package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Customer is a marketplace buyer account. Authentication and profile
// management live in the accounts service; the support service reads these
// rows to resolve identity, display name, and avatar for chat messages.
type Customer struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UUID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"uuid"`
	FirstName string    `gorm:"size:255;not null" json:"first_name"`
	LastName  string    `gorm:"size:255;not null" json:"last_name"`
	Email     string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Mobile    string    `gorm:"size:15;not null" json:"mobile"`
	AvatarURL *string   `gorm:"size:512" json:"avatar_url,omitempty"`
	IsActive  *bool     `gorm:"default:true;index" json:"is_active"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Customer) TableName() string { return "customers" }

// DisplayName is the name rendered on chat bubbles for this buyer
func (c *Customer) DisplayName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// CustomerFilter represents filter criteria for customer queries
type CustomerFilter struct {
	ID       *uint      `json:"id,omitempty"`
	UUID     *uuid.UUID `json:"uuid,omitempty"`
	Email    *string    `json:"email,omitempty"`
	IsActive *bool      `json:"is_active,omitempty"`
}
