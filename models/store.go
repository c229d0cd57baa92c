package models

import (
	"time"

	"github.com/google/uuid"
)

// Store is a marketplace seller account, read-only in this service. It
// resolves the seller-side identity and avatar for chat messages and scopes
// the seller view of tickets.
type Store struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UUID            uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"uuid"`
	Name            string    `gorm:"size:255;not null" json:"name"`
	LogoURL         *string   `gorm:"size:512" json:"logo_url,omitempty"`
	OwnerCustomerID uint      `gorm:"not null;index" json:"owner_customer_id"`
	IsActive        *bool     `gorm:"default:true;index" json:"is_active"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Store) TableName() string { return "stores" }

// StoreFilter represents filter criteria for store queries
type StoreFilter struct {
	ID              *uint      `json:"id,omitempty"`
	UUID            *uuid.UUID `json:"uuid,omitempty"`
	OwnerCustomerID *uint      `json:"owner_customer_id,omitempty"`
	IsActive        *bool      `json:"is_active,omitempty"`
}
