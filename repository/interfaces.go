// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"

	"github.com/kasraden/bazaar-support/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// TicketRepository defines operations for support tickets
type TicketRepository interface {
	Repository[models.Ticket, models.TicketFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Ticket, error)
	// OpenTicketExists reports whether a ticket in pending/in_progress state
	// already exists for the purchase+product pair
	OpenTicketExists(ctx context.Context, purchaseID, productID uint) (bool, error)
	ListByPurchase(ctx context.Context, purchaseID uint) ([]*models.Ticket, error)
	ListBySaleContext(ctx context.Context, storeID uint, filter models.TicketFilter, limit, offset int) ([]*models.Ticket, error)
	UpdatePermission(ctx context.Context, ticketID uint, field models.PermissionField, value bool) error
	UpdateStatus(ctx context.Context, ticketID uint, status models.TicketStatus) error
}

// TicketMessageRepository defines operations for ticket chat messages
type TicketMessageRepository interface {
	Repository[models.TicketMessage, models.TicketMessageFilter]
	// ListByTicket returns messages in server timestamp order (the order
	// every subscriber must render)
	ListByTicket(ctx context.Context, ticketID uint) ([]*models.TicketMessage, error)
}

// TicketImageRepository defines operations for creation-time ticket images
type TicketImageRepository interface {
	Repository[models.TicketImage, models.TicketImageFilter]
	ListByTicket(ctx context.Context, ticketID uint) ([]*models.TicketImage, error)
}

// SupportCategoryRepository defines operations for support categories
type SupportCategoryRepository interface {
	Repository[models.SupportCategory, models.SupportCategoryFilter]
	ListActive(ctx context.Context) ([]*models.SupportCategory, error)
}

// CustomerRepository defines read operations for buyer accounts
type CustomerRepository interface {
	Repository[models.Customer, models.CustomerFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Customer, error)
}

// StoreRepository defines read operations for seller accounts
type StoreRepository interface {
	Repository[models.Store, models.StoreFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Store, error)
}

// PurchaseRepository defines read operations for purchases
type PurchaseRepository interface {
	Repository[models.Purchase, models.PurchaseFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Purchase, error)
}

// ProductRepository defines read operations for products
type ProductRepository interface {
	Repository[models.Product, models.ProductFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Product, error)
}

// AuditLogRepository defines operations for audit logs
type AuditLogRepository interface {
	Repository[models.AuditLog, models.AuditLogFilter]
	ListByTicket(ctx context.Context, ticketID uint, limit, offset int) ([]*models.AuditLog, error)
}
