package businessflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/kasraden/bazaar-support/app/dto"
	"github.com/kasraden/bazaar-support/config"
	"github.com/kasraden/bazaar-support/models"
	"github.com/kasraden/bazaar-support/realtime"
	"github.com/kasraden/bazaar-support/repository"
	"github.com/kasraden/bazaar-support/utils"
	"gorm.io/gorm"
)

// AdminTicketFlow defines the staff console operations
type AdminTicketFlow interface {
	ListTickets(ctx context.Context, req *dto.AdminListTicketsRequest, metadata *ClientMetadata) (*dto.ListTicketsResponse, error)
	SetMessagePermission(ctx context.Context, ticketUUID string, req *dto.SetPermissionRequest, metadata *ClientMetadata) (*dto.SetPermissionResponse, error)
	SetStatus(ctx context.Context, ticketUUID string, req *dto.SetStatusRequest, metadata *ClientMetadata) (*dto.SetStatusResponse, error)
}

// AdminTicketFlowImpl implements AdminTicketFlow
type AdminTicketFlowImpl struct {
	ticketRepo repository.TicketRepository
	auditRepo  repository.AuditLogRepository
	bridge     *realtime.Bridge
	supportCfg config.SupportConfig
}

func NewAdminTicketFlow(
	ticketRepo repository.TicketRepository,
	auditRepo repository.AuditLogRepository,
	bridge *realtime.Bridge,
	supportCfg config.SupportConfig,
) AdminTicketFlow {
	return &AdminTicketFlowImpl{
		ticketRepo: ticketRepo,
		auditRepo:  auditRepo,
		bridge:     bridge,
		supportCfg: supportCfg,
	}
}

// ListTickets returns tickets across all customers and stores for the
// staff console, newest first
func (f *AdminTicketFlowImpl) ListTickets(ctx context.Context, req *dto.AdminListTicketsRequest, metadata *ClientMetadata) (*dto.ListTicketsResponse, error) {
	filter := models.TicketFilter{
		CustomerID:    req.CustomerID,
		StoreID:       req.StoreID,
		CreatedAfter:  req.StartDate,
		CreatedBefore: req.EndDate,
	}
	if req.Status != nil {
		status, ok := models.ParseTicketStatus(*req.Status)
		if !ok {
			return nil, ErrInvalidTicketStatus
		}
		filter.Status = &status
	}

	page, pageSize := normalizePage(req.Page, req.PageSize)
	offset := int((page - 1) * pageSize)

	tickets, err := f.ticketRepo.ByFilter(ctx, filter, "created_at DESC, id DESC", int(pageSize), offset)
	if err != nil {
		return nil, err
	}

	items := make([]dto.TicketItem, 0, len(tickets))
	for _, t := range tickets {
		items = append(items, ToTicketItem(t))
	}

	return &dto.ListTicketsResponse{
		Message: "Tickets retrieved successfully",
		Tickets: items,
	}, nil
}

// SetMessagePermission flips one of the two send-permission flags and
// broadcasts the change so open composers react without a refresh
func (f *AdminTicketFlowImpl) SetMessagePermission(ctx context.Context, ticketUUID string, req *dto.SetPermissionRequest, metadata *ClientMetadata) (*dto.SetPermissionResponse, error) {
	field, ok := models.ParsePermissionField(req.Field)
	if !ok || req.Allowed == nil {
		return nil, NewBusinessError("INVALID_PERMISSION_FIELD", "Unknown permission field", nil)
	}

	ticket, err := getTicketByUUID(ctx, f.ticketRepo, ticketUUID)
	if err != nil {
		return nil, err
	}

	allowed := *req.Allowed
	if err := f.ticketRepo.UpdatePermission(ctx, ticket.ID, field, allowed); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}

	_ = f.createAuditLog(ctx, ticket, models.AuditActionPermissionChanged,
		fmt.Sprintf("%s set to %t on ticket %s", field, allowed, ticket.UUID), true, nil, metadata)

	if err := f.bridge.PublishPermissionChange(ctx, ticket.UUID.String(), realtime.PermissionEvent{
		Field:   field,
		Allowed: allowed,
	}, utils.UTCNow()); err != nil {
		// The flag is persisted and re-checked on every send, so a
		// missed broadcast only delays the composer update.
		errMsg := err.Error()
		_ = f.createAuditLog(ctx, ticket, models.AuditActionPermissionChanged,
			fmt.Sprintf("realtime publish failed for %s on ticket %s", field, ticket.UUID), false, &errMsg, metadata)
	}

	return &dto.SetPermissionResponse{
		Message:    "Permission updated successfully",
		TicketUUID: ticket.UUID.String(),
		Field:      string(field),
		Allowed:    allowed,
	}, nil
}

// SetStatus transitions a ticket's lifecycle status. Any status may be
// set from any other; closing and reopening are both staff decisions.
func (f *AdminTicketFlowImpl) SetStatus(ctx context.Context, ticketUUID string, req *dto.SetStatusRequest, metadata *ClientMetadata) (*dto.SetStatusResponse, error) {
	status, ok := models.ParseTicketStatus(req.Status)
	if !ok {
		return nil, ErrInvalidTicketStatus
	}

	ticket, err := getTicketByUUID(ctx, f.ticketRepo, ticketUUID)
	if err != nil {
		return nil, err
	}

	if err := f.ticketRepo.UpdateStatus(ctx, ticket.ID, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}

	_ = f.createAuditLog(ctx, ticket, models.AuditActionStatusChanged,
		fmt.Sprintf("status set to %s on ticket %s", status, ticket.UUID), true, nil, metadata)

	if err := f.bridge.PublishStatusChange(ctx, ticket.UUID.String(), realtime.StatusEvent{
		Status: status,
	}, utils.UTCNow()); err != nil {
		errMsg := err.Error()
		_ = f.createAuditLog(ctx, ticket, models.AuditActionStatusChanged,
			fmt.Sprintf("realtime publish failed for status change on ticket %s", ticket.UUID), false, &errMsg, metadata)
	}

	return &dto.SetStatusResponse{
		Message:    "Status updated successfully",
		TicketUUID: ticket.UUID.String(),
		Status:     ToStatusDTO(status),
	}, nil
}

func (f *AdminTicketFlowImpl) createAuditLog(ctx context.Context, ticket *models.Ticket, action, description string, success bool, errorMsg *string, metadata *ClientMetadata) error {
	ipAddress := "127.0.0.1"
	userAgent := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
	}

	audit := &models.AuditLog{
		CustomerID:   &ticket.CustomerID,
		TicketID:     &ticket.ID,
		Action:       action,
		Description:  &description,
		Success:      utils.ToPtr(success),
		IPAddress:    &ipAddress,
		UserAgent:    &userAgent,
		ErrorMessage: errorMsg,
	}

	if metadata != nil && metadata.RequestID != "" {
		audit.RequestID = &metadata.RequestID
	}

	return f.auditRepo.Save(ctx, audit)
}
