package repository

import (
	"context"

	"github.com/kasraden/bazaar-support/models"
	"gorm.io/gorm"
)

// TicketMessageRepositoryImpl implements TicketMessageRepository interface
type TicketMessageRepositoryImpl struct {
	*BaseRepository[models.TicketMessage, models.TicketMessageFilter]
}

// NewTicketMessageRepository creates a new ticket message repository
func NewTicketMessageRepository(db *gorm.DB) TicketMessageRepository {
	return &TicketMessageRepositoryImpl{
		BaseRepository: NewBaseRepository[models.TicketMessage, models.TicketMessageFilter](db),
	}
}

// ListByTicket returns the ticket's messages in creation order. The id
// tiebreak keeps the order total when two rows share a timestamp.
func (r *TicketMessageRepositoryImpl) ListByTicket(ctx context.Context, ticketID uint) ([]*models.TicketMessage, error) {
	return r.ByFilter(ctx, models.TicketMessageFilter{TicketID: &ticketID}, "created_at ASC, id ASC", 0, 0)
}

// applyFilter applies filter criteria to a GORM query
func (r *TicketMessageRepositoryImpl) applyFilter(query *gorm.DB, filter models.TicketMessageFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.TicketID != nil {
		query = query.Where("ticket_id = ?", *filter.TicketID)
	}
	if filter.SenderRole != nil {
		query = query.Where("sender_role = ?", *filter.SenderRole)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}
	return query
}

// ByFilter retrieves messages based on filter criteria
func (r *TicketMessageRepositoryImpl) ByFilter(ctx context.Context, filter models.TicketMessageFilter, orderBy string, limit, offset int) ([]*models.TicketMessage, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.TicketMessage{})

	query = r.applyFilter(query, filter)

	if orderBy == "" {
		orderBy = "created_at ASC, id ASC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.TicketMessage
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns number of messages matching filter
func (r *TicketMessageRepositoryImpl) Count(ctx context.Context, filter models.TicketMessageFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.TicketMessage{})
	query = r.applyFilter(query, filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any message matches the filter
func (r *TicketMessageRepositoryImpl) Exists(ctx context.Context, filter models.TicketMessageFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
