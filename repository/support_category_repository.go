package repository

import (
	"context"

	"github.com/kasraden/bazaar-support/models"
	"github.com/kasraden/bazaar-support/utils"
	"gorm.io/gorm"
)

// SupportCategoryRepositoryImpl implements SupportCategoryRepository interface
type SupportCategoryRepositoryImpl struct {
	*BaseRepository[models.SupportCategory, models.SupportCategoryFilter]
}

// NewSupportCategoryRepository creates a new support category repository
func NewSupportCategoryRepository(db *gorm.DB) SupportCategoryRepository {
	return &SupportCategoryRepositoryImpl{
		BaseRepository: NewBaseRepository[models.SupportCategory, models.SupportCategoryFilter](db),
	}
}

// ListActive returns the selectable categories in display order
func (r *SupportCategoryRepositoryImpl) ListActive(ctx context.Context) ([]*models.SupportCategory, error) {
	return r.ByFilter(ctx, models.SupportCategoryFilter{IsActive: utils.ToPtr(true)}, "sort_order ASC, id ASC", 0, 0)
}

func (r *SupportCategoryRepositoryImpl) applyFilter(query *gorm.DB, filter models.SupportCategoryFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.Name != nil {
		query = query.Where("name = ?", *filter.Name)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	return query
}

// ByFilter retrieves categories based on filter criteria
func (r *SupportCategoryRepositoryImpl) ByFilter(ctx context.Context, filter models.SupportCategoryFilter, orderBy string, limit, offset int) ([]*models.SupportCategory, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.SupportCategory{})

	query = r.applyFilter(query, filter)

	if orderBy == "" {
		orderBy = "sort_order ASC, id ASC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.SupportCategory
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns number of categories matching filter
func (r *SupportCategoryRepositoryImpl) Count(ctx context.Context, filter models.SupportCategoryFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.SupportCategory{})
	query = r.applyFilter(query, filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any category matches the filter
func (r *SupportCategoryRepositoryImpl) Exists(ctx context.Context, filter models.SupportCategoryFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
