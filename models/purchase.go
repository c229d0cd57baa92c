package models

import (
	"time"

	"github.com/google/uuid"
)

// Purchase is a completed order, read-only in this service. The purchase
// detail screen supplies it when launching the support subsystem; tickets
// hang off one purchase+product pair.
type Purchase struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UUID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"uuid"`
	CustomerID uint      `gorm:"not null;index" json:"customer_id"`
	StoreID    uint      `gorm:"not null;index" json:"store_id"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`

	// Relations
	Customer *Customer `gorm:"foreignKey:CustomerID;references:ID" json:"customer,omitempty"`
	Store    *Store    `gorm:"foreignKey:StoreID;references:ID" json:"store,omitempty"`
}

func (Purchase) TableName() string { return "purchases" }

// PurchaseFilter represents filter criteria for purchase queries
type PurchaseFilter struct {
	ID         *uint      `json:"id,omitempty"`
	UUID       *uuid.UUID `json:"uuid,omitempty"`
	CustomerID *uint      `json:"customer_id,omitempty"`
	StoreID    *uint      `json:"store_id,omitempty"`
}
