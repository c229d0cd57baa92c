package models

import (
	"time"

	"github.com/kasraden/bazaar-support/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TicketStatus is the fixed lifecycle taxonomy shared by the buyer and seller
// surfaces. Transitions are driven by staff; buyer and seller clients only
// ever read it.
type TicketStatus string

const (
	TicketStatusPending    TicketStatus = "pending"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
)

// OpenTicketStatuses are the states that count against the
// one-open-ticket-per-(purchase, product) invariant
var OpenTicketStatuses = []TicketStatus{TicketStatusPending, TicketStatusInProgress}

// ParseTicketStatus validates a status tag from a wire payload
func ParseTicketStatus(s string) (TicketStatus, bool) {
	switch TicketStatus(s) {
	case TicketStatusPending, TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed:
		return TicketStatus(s), true
	}
	return "", false
}

// IsOpen reports whether the status blocks creation of another ticket for the
// same purchase and product
func (s TicketStatus) IsOpen() bool {
	return s == TicketStatusPending || s == TicketStatusInProgress
}

// Label returns the display label for the status. Both role views render this
// same value; there is deliberately no per-view vocabulary.
func (s TicketStatus) Label() string {
	switch s {
	case TicketStatusPending:
		return "Pending"
	case TicketStatusInProgress:
		return "In Progress"
	case TicketStatusResolved:
		return "Resolved"
	case TicketStatusClosed:
		return "Closed"
	}
	return "Unknown"
}

// Color returns the display color (hex) for the status, identical across role views
func (s TicketStatus) Color() string {
	switch s {
	case TicketStatusPending:
		return "#F59E0B"
	case TicketStatusInProgress:
		return "#3B82F6"
	case TicketStatusResolved:
		return "#10B981"
	case TicketStatusClosed:
		return "#6B7280"
	}
	return "#9CA3AF"
}

// Ticket is a support case tied to one purchase+product pair.
// Table: tickets
// Exactly one of CategoryID / CustomCategory is set; the "Other" category is
// never persisted, it resolves to a CustomCategory string at creation time.
// Images are attached at creation only and immutable afterwards; chat media
// rides on individual messages instead.
type Ticket struct {
	ID             uint         `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID           uuid.UUID    `gorm:"type:uuid;uniqueIndex;not null" json:"uuid"`
	PurchaseID     uint         `gorm:"not null;index:idx_tickets_purchase_product" json:"purchase_id"`
	ProductID      uint         `gorm:"not null;index:idx_tickets_purchase_product" json:"product_id"`
	CustomerID     uint         `gorm:"not null;index" json:"customer_id"`
	StoreID        uint         `gorm:"not null;index" json:"store_id"`
	CategoryID     *uint        `gorm:"index" json:"category_id,omitempty"`
	CustomCategory *string      `gorm:"size:120" json:"custom_category,omitempty"`
	Description    string       `gorm:"type:text;not null" json:"description"`
	Status         TicketStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`

	// Send-permission flags, mutated by staff only and observed by the
	// buyer/seller views over the realtime channel
	AllowUserMessages  *bool `gorm:"default:true" json:"allow_user_messages"`
	AllowStoreMessages *bool `gorm:"default:true" json:"allow_store_messages"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	// Relations
	Customer *Customer        `gorm:"foreignKey:CustomerID;references:ID;constraint:OnDelete:CASCADE" json:"customer,omitempty"`
	Store    *Store           `gorm:"foreignKey:StoreID;references:ID" json:"store,omitempty"`
	Purchase *Purchase        `gorm:"foreignKey:PurchaseID;references:ID" json:"purchase,omitempty"`
	Product  *Product         `gorm:"foreignKey:ProductID;references:ID" json:"product,omitempty"`
	Category *SupportCategory `gorm:"foreignKey:CategoryID;references:ID" json:"category,omitempty"`
	Images   []TicketImage    `gorm:"foreignKey:TicketID" json:"images,omitempty"`
	Messages []TicketMessage  `gorm:"foreignKey:TicketID" json:"messages,omitempty"`
}

func (Ticket) TableName() string { return "tickets" }

// BeforeCreate ensures UUID and timestamps are set
func (t *Ticket) BeforeCreate(tx *gorm.DB) error {
	if t.UUID == uuid.Nil {
		t.UUID = uuid.New()
	}
	if t.Status == "" {
		t.Status = TicketStatusPending
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = utils.UTCNow()
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = utils.UTCNow()
	}
	return nil
}

// CanCompose is the permission gate: it decides whether the given role may
// append messages to this ticket right now. Staff is never gated.
func (t *Ticket) CanCompose(role Role) bool {
	switch role {
	case RoleUser:
		return utils.IsTrue(t.AllowUserMessages)
	case RoleStore:
		return utils.IsTrue(t.AllowStoreMessages)
	case RoleAdmin:
		return true
	}
	return false
}

// PermissionField names one of the two independent send-permission flags
type PermissionField string

const (
	PermissionFieldUser  PermissionField = "allow_user_messages"
	PermissionFieldStore PermissionField = "allow_store_messages"
)

// ParsePermissionField validates a permission field tag
func ParsePermissionField(s string) (PermissionField, bool) {
	switch PermissionField(s) {
	case PermissionFieldUser, PermissionFieldStore:
		return PermissionField(s), true
	}
	return "", false
}

// TicketFilter represents filter criteria for ticket queries
type TicketFilter struct {
	ID            *uint        `json:"id,omitempty"`
	UUID          *uuid.UUID   `json:"uuid,omitempty"`
	PurchaseID    *uint        `json:"purchase_id,omitempty"`
	ProductID     *uint        `json:"product_id,omitempty"`
	CustomerID    *uint        `json:"customer_id,omitempty"`
	StoreID       *uint        `json:"store_id,omitempty"`
	CategoryID    *uint        `json:"category_id,omitempty"`
	Status        *TicketStatus `json:"status,omitempty"`
	OpenOnly      bool         `json:"open_only,omitempty"`
	CreatedAfter  *time.Time   `json:"created_after,omitempty"`
	CreatedBefore *time.Time   `json:"created_before,omitempty"`
}
