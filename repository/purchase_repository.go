package repository

import (
	"context"

	"github.com/kasraden/bazaar-support/models"
	"github.com/kasraden/bazaar-support/utils"
	"gorm.io/gorm"
)

// PurchaseRepositoryImpl implements PurchaseRepository interface
type PurchaseRepositoryImpl struct {
	*BaseRepository[models.Purchase, models.PurchaseFilter]
}

// NewPurchaseRepository creates a new purchase repository
func NewPurchaseRepository(db *gorm.DB) PurchaseRepository {
	return &PurchaseRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Purchase, models.PurchaseFilter](db),
	}
}

// ByUUID retrieves a purchase by UUID
func (r *PurchaseRepositoryImpl) ByUUID(ctx context.Context, uuidStr string) (*models.Purchase, error) {
	parsed, err := utils.ParseUUID(uuidStr)
	if err != nil {
		return nil, err
	}
	rows, err := r.ByFilter(ctx, models.PurchaseFilter{UUID: &parsed}, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *PurchaseRepositoryImpl) applyFilter(query *gorm.DB, filter models.PurchaseFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.StoreID != nil {
		query = query.Where("store_id = ?", *filter.StoreID)
	}
	return query
}

// ByFilter retrieves purchases based on filter criteria
func (r *PurchaseRepositoryImpl) ByFilter(ctx context.Context, filter models.PurchaseFilter, orderBy string, limit, offset int) ([]*models.Purchase, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Purchase{})

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

	var rows []*models.Purchase
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns number of purchases matching filter
func (r *PurchaseRepositoryImpl) Count(ctx context.Context, filter models.PurchaseFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Purchase{})
	query = r.applyFilter(query, filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any purchase matches the filter
func (r *PurchaseRepositoryImpl) Exists(ctx context.Context, filter models.PurchaseFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
