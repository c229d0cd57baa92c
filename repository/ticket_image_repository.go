package repository

import (
	"context"

	"github.com/kasraden/bazaar-support/models"
	"gorm.io/gorm"
)

// TicketImageRepositoryImpl implements TicketImageRepository interface
type TicketImageRepositoryImpl struct {
	*BaseRepository[models.TicketImage, models.TicketImageFilter]
}

// NewTicketImageRepository creates a new ticket image repository
func NewTicketImageRepository(db *gorm.DB) TicketImageRepository {
	return &TicketImageRepositoryImpl{
		BaseRepository: NewBaseRepository[models.TicketImage, models.TicketImageFilter](db),
	}
}

// ListByTicket returns the ticket's images in staged order
func (r *TicketImageRepositoryImpl) ListByTicket(ctx context.Context, ticketID uint) ([]*models.TicketImage, error) {
	return r.ByFilter(ctx, models.TicketImageFilter{TicketID: &ticketID}, "position ASC, id ASC", 0, 0)
}

func (r *TicketImageRepositoryImpl) applyFilter(query *gorm.DB, filter models.TicketImageFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.TicketID != nil {
		query = query.Where("ticket_id = ?", *filter.TicketID)
	}
	return query
}

// ByFilter retrieves ticket images based on filter criteria
func (r *TicketImageRepositoryImpl) ByFilter(ctx context.Context, filter models.TicketImageFilter, orderBy string, limit, offset int) ([]*models.TicketImage, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.TicketImage{})

	query = r.applyFilter(query, filter)

	if orderBy == "" {
		orderBy = "position ASC, id ASC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.TicketImage
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns number of ticket images matching filter
func (r *TicketImageRepositoryImpl) Count(ctx context.Context, filter models.TicketImageFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.TicketImage{})
	query = r.applyFilter(query, filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any ticket image matches the filter
func (r *TicketImageRepositoryImpl) Exists(ctx context.Context, filter models.TicketImageFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
