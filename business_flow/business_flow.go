// Package businessflow contains the business logic for the application.
package businessflow

import (
	"context"
	"time"

	"github.com/kasraden/bazaar-support/app/dto"
	"github.com/kasraden/bazaar-support/media"
	"github.com/kasraden/bazaar-support/models"
	"github.com/kasraden/bazaar-support/repository"
	"github.com/kasraden/bazaar-support/utils"
)

const RequestIDKey = "X-Request-ID"

// ClientMetadata holds all client-related information for audit logging and session tracking
type ClientMetadata struct {
	IPAddress  string            `json:"ip_address"`
	UserAgent  string            `json:"user_agent"`
	DeviceInfo map[string]string `json:"device_info,omitempty"`
	RequestID  string            `json:"request_id,omitempty"`
	SessionID  string            `json:"session_id,omitempty"`
	Additional map[string]string `json:"additional,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		DeviceInfo: make(map[string]string),
		Additional: make(map[string]string),
	}
}

// AddDeviceInfo adds device information to the metadata
func (cm *ClientMetadata) AddDeviceInfo(key, value string) {
	if cm.DeviceInfo == nil {
		cm.DeviceInfo = make(map[string]string)
	}
	cm.DeviceInfo[key] = value
}

// AddAdditional adds additional custom information to the metadata
func (cm *ClientMetadata) AddAdditional(key, value string) {
	if cm.Additional == nil {
		cm.Additional = make(map[string]string)
	}
	cm.Additional[key] = value
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// SetSessionID sets the session ID
func (cm *ClientMetadata) SetSessionID(sessionID string) {
	cm.SessionID = sessionID
}

// getCustomer loads an active buyer account or fails with a business error
func getCustomer(ctx context.Context, repo repository.CustomerRepository, customerID uint) (*models.Customer, error) {
	customer, err := repo.ByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, ErrCustomerNotFound
	}
	if !utils.IsTrue(customer.IsActive) {
		return nil, ErrAccountInactive
	}
	return customer, nil
}

// getStore loads an active store or fails with a business error
func getStore(ctx context.Context, repo repository.StoreRepository, storeID uint) (*models.Store, error) {
	store, err := repo.ByID(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, ErrStoreNotFound
	}
	if !utils.IsTrue(store.IsActive) {
		return nil, ErrStoreInactive
	}
	return store, nil
}

// getTicketByUUID loads a ticket or fails with a business error
func getTicketByUUID(ctx context.Context, repo repository.TicketRepository, ticketUUID string) (*models.Ticket, error) {
	ticket, err := repo.ByUUID(ctx, ticketUUID)
	if err != nil {
		return nil, err
	}
	if ticket == nil {
		return nil, ErrTicketNotFound
	}
	return ticket, nil
}

// normalizePage clamps pagination inputs to sane bounds
func normalizePage(page, pageSize uint) (uint, uint) {
	if page == 0 {
		page = 1
	}
	if pageSize == 0 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}

// ToStatusDTO converts a ticket status to its display form
func ToStatusDTO(s models.TicketStatus) dto.StatusDTO {
	return dto.StatusDTO{
		Value: string(s),
		Label: s.Label(),
		Color: s.Color(),
	}
}

// ToCategoryItem converts a support category model to its DTO
func ToCategoryItem(c models.SupportCategory) dto.CategoryItem {
	return dto.CategoryItem{
		ID:          c.ID,
		Name:        c.Name,
		DisplayName: c.DisplayName,
	}
}

// ToTicketItem converts a ticket model to its DTO. Relations that were
// preloaded flesh out the product/store/customer display fields.
func ToTicketItem(t *models.Ticket) dto.TicketItem {
	item := dto.TicketItem{
		ID:                 t.ID,
		UUID:               t.UUID.String(),
		CustomCategory:     t.CustomCategory,
		Description:        t.Description,
		Status:             ToStatusDTO(t.Status),
		AllowUserMessages:  utils.IsTrue(t.AllowUserMessages),
		AllowStoreMessages: utils.IsTrue(t.AllowStoreMessages),
		Images:             make([]string, 0, len(t.Images)),
		CreatedAt:          t.CreatedAt.Format(time.RFC3339),
	}
	if t.Purchase != nil {
		item.PurchaseUUID = t.Purchase.UUID.String()
	}
	if t.Product != nil {
		item.ProductUUID = t.Product.UUID.String()
		item.ProductName = t.Product.Name
		if t.Product.ImageURL != nil {
			item.ProductImageURL = *t.Product.ImageURL
		}
	}
	if t.Store != nil {
		item.StoreName = t.Store.Name
	}
	if t.Customer != nil {
		item.CustomerName = t.Customer.DisplayName()
	}
	if t.Category != nil {
		cat := ToCategoryItem(*t.Category)
		item.Category = &cat
	}
	for _, img := range t.Images {
		item.Images = append(item.Images, img.URL)
	}
	return item
}

// ToMessageItem converts a chat message model to its DTO, attaching the
// media thumbnail descriptor when the message carries an attachment.
func ToMessageItem(m *models.TicketMessage) dto.MessageItem {
	item := dto.MessageItem{
		ID:         m.ID,
		UUID:       m.UUID.String(),
		SenderRole: string(m.SenderRole),
		SenderName: m.SenderName,
		Body:       m.Body,
		CreatedAt:  m.CreatedAt.Format(time.RFC3339),
	}
	if m.SenderAvatarURL != nil {
		item.SenderAvatarURL = *m.SenderAvatarURL
	}
	if m.MediaURL != nil && *m.MediaURL != "" {
		thumb := media.ThumbnailFor(*m.MediaURL)
		item.Media = &dto.MediaDTO{
			URL:         thumb.URL,
			Kind:        string(thumb.Kind),
			PlayOverlay: thumb.PlayOverlay,
		}
	}
	return item
}

func truncate(s string, max int) string {
	if len([]rune(s)) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max]) + "…"
}
