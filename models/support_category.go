package models

import (
	"time"
)

// SupportCategory is a predefined reason a buyer can open a ticket under.
// Table: support_categories
// The "Other" choice shown by clients is a UI sentinel, not a row here:
// selecting it makes the client send a custom category string instead of a
// category reference.
type SupportCategory struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"size:120;not null;uniqueIndex" json:"name"`
	DisplayName string `gorm:"size:120;not null" json:"display_name"`
	SortOrder   int    `gorm:"not null;default:0" json:"sort_order"`
	IsActive    *bool  `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (SupportCategory) TableName() string { return "support_categories" }

// SupportCategoryFilter represents filter criteria for category queries
type SupportCategoryFilter struct {
	ID       *uint   `json:"id,omitempty"`
	Name     *string `json:"name,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}
