package businessflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/kasraden/bazaar-support/app/dto"
	"github.com/kasraden/bazaar-support/config"
	"github.com/kasraden/bazaar-support/models"
	"github.com/kasraden/bazaar-support/realtime"
	"github.com/kasraden/bazaar-support/repository"
	"github.com/kasraden/bazaar-support/utils"
)

// MessageFlow defines operations for the ticket conversation
type MessageFlow interface {
	SendMessage(ctx context.Context, req *dto.SendMessageRequest, metadata *ClientMetadata) (*dto.SendMessageResponse, error)
	ListMessages(ctx context.Context, req *dto.ListMessagesRequest, subjectID uint, role models.Role, metadata *ClientMetadata) (*dto.ListMessagesResponse, error)
	// CheckAccess verifies the subject may view the ticket. Stream
	// endpoints call it before attaching a realtime subscription.
	CheckAccess(ctx context.Context, ticketUUID string, subjectID uint, role models.Role) error
}

// MessageFlowImpl implements MessageFlow
type MessageFlowImpl struct {
	customerRepo repository.CustomerRepository
	storeRepo    repository.StoreRepository
	ticketRepo   repository.TicketRepository
	messageRepo  repository.TicketMessageRepository
	auditRepo    repository.AuditLogRepository
	bridge       *realtime.Bridge
	supportCfg   config.SupportConfig
}

func NewMessageFlow(
	customerRepo repository.CustomerRepository,
	storeRepo repository.StoreRepository,
	ticketRepo repository.TicketRepository,
	messageRepo repository.TicketMessageRepository,
	auditRepo repository.AuditLogRepository,
	bridge *realtime.Bridge,
	supportCfg config.SupportConfig,
) MessageFlow {
	return &MessageFlowImpl{
		customerRepo: customerRepo,
		storeRepo:    storeRepo,
		ticketRepo:   ticketRepo,
		messageRepo:  messageRepo,
		auditRepo:    auditRepo,
		bridge:       bridge,
		supportCfg:   supportCfg,
	}
}

// SendMessage appends a message to a ticket conversation and broadcasts
// it over the realtime channel. The send-permission gate is enforced
// here regardless of what the client's composer showed; a staff toggle
// may have landed after the client last synced.
func (f *MessageFlowImpl) SendMessage(ctx context.Context, req *dto.SendMessageRequest, metadata *ClientMetadata) (*dto.SendMessageResponse, error) {
	role, err := models.ParseRole(req.SenderRole)
	if err != nil {
		return nil, ErrTicketAccessDenied
	}

	ticket, err := getTicketByUUID(ctx, f.ticketRepo, req.TicketUUID)
	if err != nil {
		return nil, err
	}

	if err := authorizeTicketAccess(ticket, req.SenderID, role); err != nil {
		return nil, err
	}

	if !ticket.CanCompose(role) {
		errMsg := ErrMessagingDisabled.Error()
		_ = f.createAuditLog(ctx, ticket, models.AuditActionMessageRejected,
			fmt.Sprintf("message from %s rejected by permission gate", role), false, &errMsg, metadata)
		return nil, ErrMessagingDisabled
	}

	body := strings.TrimSpace(req.Body)
	if body == "" && req.SavedMediaURL == nil {
		return nil, ErrEmptyMessage
	}
	if len([]rune(body)) > utils.MaxMessageLen {
		return nil, ErrMessageTooLong
	}

	senderName, senderAvatar, err := f.resolveSender(ctx, ticket, req.SenderID, role)
	if err != nil {
		return nil, err
	}

	message := models.TicketMessage{
		UUID:            uuid.New(),
		TicketID:        ticket.ID,
		SenderRole:      role,
		SenderName:      senderName,
		SenderAvatarURL: senderAvatar,
		Body:            body,
		MediaURL:        req.SavedMediaURL,
	}

	if err := f.messageRepo.Save(ctx, &message); err != nil {
		return nil, err
	}

	_ = f.createAuditLog(ctx, ticket, models.AuditActionMessageSent,
		fmt.Sprintf("message %s sent by %s", message.UUID, role), true, nil, metadata)

	// Broadcast to every open view of this ticket, the sender's
	// included; the sender's client appends from this echo, not from
	// the API response.
	event := realtime.MessageEvent{
		UUID:       message.UUID.String(),
		SenderRole: message.SenderRole,
		SenderName: message.SenderName,
		Body:       message.Body,
		CreatedAt:  message.CreatedAt,
	}
	if message.SenderAvatarURL != nil {
		event.SenderAvatarURL = *message.SenderAvatarURL
	}
	if message.MediaURL != nil {
		event.MediaURL = *message.MediaURL
	}
	if err := f.bridge.PublishMessage(ctx, ticket.UUID.String(), event); err != nil {
		// The message is persisted; subscribers that missed the echo
		// recover it on the next full fetch.
		errMsg := err.Error()
		_ = f.createAuditLog(ctx, ticket, models.AuditActionMessageSent,
			fmt.Sprintf("realtime publish failed for message %s", message.UUID), false, &errMsg, metadata)
	}

	return &dto.SendMessageResponse{
		Message: "Message sent successfully",
		Item:    ToMessageItem(&message),
	}, nil
}

// ListMessages returns a ticket's conversation in the server's
// timestamp order. Without paging parameters the full history is
// returned, which is what conversation views load on open.
func (f *MessageFlowImpl) ListMessages(ctx context.Context, req *dto.ListMessagesRequest, subjectID uint, role models.Role, metadata *ClientMetadata) (*dto.ListMessagesResponse, error) {
	ticket, err := getTicketByUUID(ctx, f.ticketRepo, req.TicketUUID)
	if err != nil {
		return nil, err
	}

	if err := authorizeTicketAccess(ticket, subjectID, role); err != nil {
		return nil, err
	}

	var rows []*models.TicketMessage
	if req.PageSize == 0 {
		rows, err = f.messageRepo.ListByTicket(ctx, ticket.ID)
	} else {
		page, pageSize := normalizePage(req.Page, req.PageSize)
		offset := int((page - 1) * pageSize)
		rows, err = f.messageRepo.ByFilter(ctx, models.TicketMessageFilter{TicketID: &ticket.ID}, "created_at ASC, id ASC", int(pageSize), offset)
	}
	if err != nil {
		return nil, err
	}

	items := make([]dto.MessageItem, 0, len(rows))
	for _, m := range rows {
		items = append(items, ToMessageItem(m))
	}

	return &dto.ListMessagesResponse{
		Message: "Messages retrieved successfully",
		Items:   items,
	}, nil
}

// CheckAccess verifies the subject may view the ticket
func (f *MessageFlowImpl) CheckAccess(ctx context.Context, ticketUUID string, subjectID uint, role models.Role) error {
	ticket, err := getTicketByUUID(ctx, f.ticketRepo, ticketUUID)
	if err != nil {
		return err
	}
	return authorizeTicketAccess(ticket, subjectID, role)
}

// resolveSender derives the display identity stamped on the message
// from the sender's role
func (f *MessageFlowImpl) resolveSender(ctx context.Context, ticket *models.Ticket, subjectID uint, role models.Role) (string, *string, error) {
	switch role {
	case models.RoleUser:
		customer, err := getCustomer(ctx, f.customerRepo, subjectID)
		if err != nil {
			return "", nil, err
		}
		return customer.DisplayName(), customer.AvatarURL, nil
	case models.RoleStore:
		store, err := getStore(ctx, f.storeRepo, subjectID)
		if err != nil {
			return "", nil, err
		}
		return store.Name, store.LogoURL, nil
	case models.RoleAdmin:
		return f.supportCfg.StaffDisplayName, nil, nil
	}
	return "", nil, ErrTicketAccessDenied
}

func (f *MessageFlowImpl) createAuditLog(ctx context.Context, ticket *models.Ticket, action, description string, success bool, errorMsg *string, metadata *ClientMetadata) error {
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
