package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is a catalog item, read-only in this service. Only the fields the
// ticket screens render (name, image, description) are mapped.
type Product struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UUID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"uuid"`
	StoreID     uint      `gorm:"not null;index" json:"store_id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	ImageURL    *string   `gorm:"size:512" json:"image_url,omitempty"`
	Description *string   `gorm:"type:text" json:"description,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`

	// Relations
	Store *Store `gorm:"foreignKey:StoreID;references:ID" json:"store,omitempty"`
}

func (Product) TableName() string { return "products" }

// ProductFilter represents filter criteria for product queries
type ProductFilter struct {
	ID      *uint      `json:"id,omitempty"`
	UUID    *uuid.UUID `json:"uuid,omitempty"`
	StoreID *uint      `json:"store_id,omitempty"`
}
