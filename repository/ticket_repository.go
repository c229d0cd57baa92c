package repository

import (
	"context"
	"fmt"

	"github.com/kasraden/bazaar-support/models"
	"github.com/kasraden/bazaar-support/utils"
	"gorm.io/gorm"
)

// TicketRepositoryImpl implements TicketRepository interface
type TicketRepositoryImpl struct {
	*BaseRepository[models.Ticket, models.TicketFilter]
}

// NewTicketRepository creates a new ticket repository
func NewTicketRepository(db *gorm.DB) TicketRepository {
	return &TicketRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Ticket, models.TicketFilter](db),
	}
}

// ByUUID retrieves a ticket by UUID
func (r *TicketRepositoryImpl) ByUUID(ctx context.Context, uuidStr string) (*models.Ticket, error) {
	parsed, err := utils.ParseUUID(uuidStr)
	if err != nil {
		return nil, err
	}
	rows, err := r.ByFilter(ctx, models.TicketFilter{UUID: &parsed}, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// OpenTicketExists checks the one-open-ticket-per-(purchase, product)
// invariant. Callers that are about to insert must run this inside a
// transaction so the check and the insert see the same state.
func (r *TicketRepositoryImpl) OpenTicketExists(ctx context.Context, purchaseID, productID uint) (bool, error) {
	db := r.getDB(ctx)
	var count int64
	err := db.Model(&models.Ticket{}).
		Where("purchase_id = ? AND product_id = ? AND status IN ?", purchaseID, productID, models.OpenTicketStatuses).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check open ticket: %w", err)
	}
	return count > 0, nil
}

// ListByPurchase lists all tickets attached to a purchase, newest first (buyer view)
func (r *TicketRepositoryImpl) ListByPurchase(ctx context.Context, purchaseID uint) ([]*models.Ticket, error) {
	return r.ByFilter(ctx, models.TicketFilter{PurchaseID: &purchaseID}, "created_at DESC, id DESC", 0, 0)
}

// ListBySaleContext lists a store's sale tickets, newest first. The filter
// may narrow by purchase, product and status; the store scope always applies.
func (r *TicketRepositoryImpl) ListBySaleContext(ctx context.Context, storeID uint, filter models.TicketFilter, limit, offset int) ([]*models.Ticket, error) {
	filter.StoreID = &storeID
	return r.ByFilter(ctx, filter, "created_at DESC, id DESC", limit, offset)
}

// UpdatePermission flips one of the two send-permission flags
func (r *TicketRepositoryImpl) UpdatePermission(ctx context.Context, ticketID uint, field models.PermissionField, value bool) error {
	db := r.getDB(ctx)
	res := db.Model(&models.Ticket{}).Where("id = ?", ticketID).
		Updates(map[string]any{string(field): value, "updated_at": utils.UTCNow()})
	if res.Error != nil {
		return fmt.Errorf("failed to update permission %s: %w", field, res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateStatus moves a ticket to a new lifecycle state
func (r *TicketRepositoryImpl) UpdateStatus(ctx context.Context, ticketID uint, status models.TicketStatus) error {
	db := r.getDB(ctx)
	res := db.Model(&models.Ticket{}).Where("id = ?", ticketID).
		Updates(map[string]any{"status": status, "updated_at": utils.UTCNow()})
	if res.Error != nil {
		return fmt.Errorf("failed to update status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// applyFilter applies filter criteria to a GORM query
func (r *TicketRepositoryImpl) applyFilter(query *gorm.DB, filter models.TicketFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.PurchaseID != nil {
		query = query.Where("purchase_id = ?", *filter.PurchaseID)
	}
	if filter.ProductID != nil {
		query = query.Where("product_id = ?", *filter.ProductID)
	}
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.StoreID != nil {
		query = query.Where("store_id = ?", *filter.StoreID)
	}
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.OpenOnly {
		query = query.Where("status IN ?", models.OpenTicketStatuses)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	return query
}

// ByFilter retrieves tickets based on filter criteria. Display
// relations are preloaded so list rows can render without extra queries.
func (r *TicketRepositoryImpl) ByFilter(ctx context.Context, filter models.TicketFilter, orderBy string, limit, offset int) ([]*models.Ticket, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Ticket{}).
		Preload("Purchase").
		Preload("Product").
		Preload("Store").
		Preload("Customer").
		Preload("Category").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, id ASC")
		})

	query = r.applyFilter(query, filter)

	if orderBy == "" {
		orderBy = "id DESC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.Ticket
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns number of tickets matching filter
func (r *TicketRepositoryImpl) Count(ctx context.Context, filter models.TicketFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Ticket{})
	query = r.applyFilter(query, filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any ticket matches the filter
func (r *TicketRepositoryImpl) Exists(ctx context.Context, filter models.TicketFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
