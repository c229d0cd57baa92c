package repository

import (
	"context"

	"github.com/kasraden/bazaar-support/models"
	"github.com/kasraden/bazaar-support/utils"
	"gorm.io/gorm"
)

// StoreRepositoryImpl implements StoreRepository interface
type StoreRepositoryImpl struct {
	*BaseRepository[models.Store, models.StoreFilter]
}

// NewStoreRepository creates a new store repository
func NewStoreRepository(db *gorm.DB) StoreRepository {
	return &StoreRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Store, models.StoreFilter](db),
	}
}

// ByUUID retrieves a store by UUID
func (r *StoreRepositoryImpl) ByUUID(ctx context.Context, uuidStr string) (*models.Store, error) {
	parsed, err := utils.ParseUUID(uuidStr)
	if err != nil {
		return nil, err
	}
	rows, err := r.ByFilter(ctx, models.StoreFilter{UUID: &parsed}, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *StoreRepositoryImpl) applyFilter(query *gorm.DB, filter models.StoreFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.OwnerCustomerID != nil {
		query = query.Where("owner_customer_id = ?", *filter.OwnerCustomerID)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	return query
}

// ByFilter retrieves stores based on filter criteria
func (r *StoreRepositoryImpl) ByFilter(ctx context.Context, filter models.StoreFilter, orderBy string, limit, offset int) ([]*models.Store, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Store{})

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

	var rows []*models.Store
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns number of stores matching filter
func (r *StoreRepositoryImpl) Count(ctx context.Context, filter models.StoreFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Store{})
	query = r.applyFilter(query, filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any store matches the filter
func (r *StoreRepositoryImpl) Exists(ctx context.Context, filter models.StoreFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
