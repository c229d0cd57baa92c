package dto

import "time"

// CategoryItem is a selectable support category.
// The "Other" choice is a client-side sentinel resolved into a custom
// category string; it never appears in this list.
type CategoryItem struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
}

// ListCategoriesResponse returns the active support categories in display order
type ListCategoriesResponse struct {
	Message    string         `json:"message"`
	Categories []CategoryItem `json:"categories"`
}

// StatusDTO is the display form of a ticket status. Label and color are
// identical for the buyer and the seller view.
type StatusDTO struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Color string `json:"color"`
}

// CreateTicketRequest carries data to open a new ticket on a purchased product.
// Exactly one of CategoryID / CustomCategory must be provided.
// Images are optional, at most 5, attached at creation only.
type CreateTicketRequest struct {
	CustomerID     uint    `json:"-"` // From auth context
	PurchaseUUID   string  `json:"purchase_uuid" validate:"required,uuid4"`
	ProductUUID    string  `json:"product_uuid" validate:"required,uuid4"`
	CategoryID     *uint   `json:"category_id,omitempty" validate:"omitempty"`
	CustomCategory *string `json:"custom_category,omitempty" validate:"omitempty"`
	Description    string  `json:"description" validate:"required"`
	// Internal: populated by handler after storing the uploaded images
	SavedImageURLs []string `json:"-"`
}

// CreateTicketResponse returns the created ticket
type CreateTicketResponse struct {
	Message string     `json:"message"`
	Ticket  TicketItem `json:"ticket"`
}

// TicketItem represents a ticket row in listings and detail views
type TicketItem struct {
	ID                 uint          `json:"id"`
	UUID               string        `json:"uuid"`
	PurchaseUUID       string        `json:"purchase_uuid"`
	ProductUUID        string        `json:"product_uuid"`
	ProductName        string        `json:"product_name,omitempty"`
	ProductImageURL    string        `json:"product_image_url,omitempty"`
	StoreName          string        `json:"store_name,omitempty"`
	CustomerName       string        `json:"customer_name,omitempty"`
	Category           *CategoryItem `json:"category,omitempty"`
	CustomCategory     *string       `json:"custom_category,omitempty"`
	Description        string        `json:"description"`
	Status             StatusDTO     `json:"status"`
	AllowUserMessages  bool          `json:"allow_user_messages"`
	AllowStoreMessages bool          `json:"allow_store_messages"`
	Images             []string      `json:"images"`
	CreatedAt          string        `json:"created_at"`
}

// ListPurchaseTicketsRequest lists a buyer's tickets, optionally narrowed
// to one purchase
type ListPurchaseTicketsRequest struct {
	CustomerID   uint    `json:"-"` // From auth context
	PurchaseUUID *string `json:"purchase_uuid,omitempty"`
	Page         uint    `json:"page,omitempty"`
	PageSize     uint    `json:"page_size,omitempty"`
}

// ListSaleTicketsRequest lists the tickets opened against a store's sales,
// optionally narrowed to one purchase and one product
type ListSaleTicketsRequest struct {
	StoreID      uint    `json:"-"` // From auth context
	PurchaseUUID *string `json:"purchase_uuid,omitempty"`
	ProductUUID  *string `json:"product_uuid,omitempty"`
	Status       *string `json:"status,omitempty"`
	Page         uint    `json:"page,omitempty"`
	PageSize     uint    `json:"page_size,omitempty"`
}

// ListTicketsResponse returns ticket rows, newest first
type ListTicketsResponse struct {
	Message string       `json:"message"`
	Tickets []TicketItem `json:"tickets"`
}

// GetTicketResponse returns one ticket with its full conversation
type GetTicketResponse struct {
	Message  string        `json:"message"`
	Ticket   TicketItem    `json:"ticket"`
	Messages []MessageItem `json:"messages"`
}

// AdminListTicketsRequest filters tickets for the staff console
type AdminListTicketsRequest struct {
	Status     *string    `json:"status,omitempty"`
	CustomerID *uint      `json:"customer_id,omitempty"`
	StoreID    *uint      `json:"store_id,omitempty"`
	StartDate  *time.Time `json:"start_date,omitempty"`
	EndDate    *time.Time `json:"end_date,omitempty"`
	Page       uint       `json:"page,omitempty"`
	PageSize   uint       `json:"page_size,omitempty"`
}

// SetPermissionRequest toggles one of the two send-permission flags on a ticket
type SetPermissionRequest struct {
	Field   string `json:"field" validate:"required,oneof=allow_user_messages allow_store_messages"`
	Allowed *bool  `json:"allowed" validate:"required"`
}

// SetPermissionResponse confirms the applied flag state
type SetPermissionResponse struct {
	Message    string `json:"message"`
	TicketUUID string `json:"ticket_uuid"`
	Field      string `json:"field"`
	Allowed    bool   `json:"allowed"`
}

// SetStatusRequest transitions a ticket's lifecycle status
type SetStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending in_progress resolved closed"`
}

// SetStatusResponse confirms the applied status
type SetStatusResponse struct {
	Message    string    `json:"message"`
	TicketUUID string    `json:"ticket_uuid"`
	Status     StatusDTO `json:"status"`
}
