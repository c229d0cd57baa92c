package businessflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/kasraden/bazaar-support/app/dto"
	"github.com/kasraden/bazaar-support/app/services"
	"github.com/kasraden/bazaar-support/config"
	"github.com/kasraden/bazaar-support/models"
	"github.com/kasraden/bazaar-support/repository"
	"github.com/kasraden/bazaar-support/utils"
	"gorm.io/gorm"
)

// TicketFlow defines operations for creating and listing support tickets
type TicketFlow interface {
	ListCategories(ctx context.Context) (*dto.ListCategoriesResponse, error)
	CreateTicket(ctx context.Context, req *dto.CreateTicketRequest, metadata *ClientMetadata) (*dto.CreateTicketResponse, error)
	ListPurchaseTickets(ctx context.Context, req *dto.ListPurchaseTicketsRequest, metadata *ClientMetadata) (*dto.ListTicketsResponse, error)
	ListSaleTickets(ctx context.Context, req *dto.ListSaleTicketsRequest, metadata *ClientMetadata) (*dto.ListTicketsResponse, error)
	GetTicket(ctx context.Context, ticketUUID string, subjectID uint, role models.Role, metadata *ClientMetadata) (*dto.GetTicketResponse, error)
}

// TicketFlowImpl implements TicketFlow
type TicketFlowImpl struct {
	db           *gorm.DB
	customerRepo repository.CustomerRepository
	storeRepo    repository.StoreRepository
	purchaseRepo repository.PurchaseRepository
	productRepo  repository.ProductRepository
	categoryRepo repository.SupportCategoryRepository
	ticketRepo   repository.TicketRepository
	imageRepo    repository.TicketImageRepository
	messageRepo  repository.TicketMessageRepository
	auditRepo    repository.AuditLogRepository
	notifier     services.NotificationService
	supportCfg   config.SupportConfig
}

func NewTicketFlow(
	db *gorm.DB,
	customerRepo repository.CustomerRepository,
	storeRepo repository.StoreRepository,
	purchaseRepo repository.PurchaseRepository,
	productRepo repository.ProductRepository,
	categoryRepo repository.SupportCategoryRepository,
	ticketRepo repository.TicketRepository,
	imageRepo repository.TicketImageRepository,
	messageRepo repository.TicketMessageRepository,
	auditRepo repository.AuditLogRepository,
	notifier services.NotificationService,
	supportCfg config.SupportConfig,
) TicketFlow {
	return &TicketFlowImpl{
		db:           db,
		customerRepo: customerRepo,
		storeRepo:    storeRepo,
		purchaseRepo: purchaseRepo,
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		ticketRepo:   ticketRepo,
		imageRepo:    imageRepo,
		messageRepo:  messageRepo,
		auditRepo:    auditRepo,
		notifier:     notifier,
		supportCfg:   supportCfg,
	}
}

// ListCategories returns the active categories in display order.
// The "Other" choice is rendered by the client and resolves to a custom
// category string on submit, so it is not part of this list.
func (f *TicketFlowImpl) ListCategories(ctx context.Context) (*dto.ListCategoriesResponse, error) {
	rows, err := f.categoryRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	categories := make([]dto.CategoryItem, 0, len(rows))
	for _, c := range rows {
		categories = append(categories, ToCategoryItem(*c))
	}

	return &dto.ListCategoriesResponse{
		Message:    "Categories retrieved successfully",
		Categories: categories,
	}, nil
}

// CreateTicket opens a new ticket against a purchased product. At most
// one ticket in an open state may exist per (purchase, product) pair;
// the existence check and the insert share a transaction.
func (f *TicketFlowImpl) CreateTicket(ctx context.Context, req *dto.CreateTicketRequest, metadata *ClientMetadata) (*dto.CreateTicketResponse, error) {
	customer, err := getCustomer(ctx, f.customerRepo, req.CustomerID)
	if err != nil {
		return nil, err
	}

	purchase, err := f.purchaseRepo.ByUUID(ctx, req.PurchaseUUID)
	if err != nil {
		return nil, err
	}
	if purchase == nil {
		return nil, ErrPurchaseNotFound
	}
	if purchase.CustomerID != customer.ID {
		return nil, ErrPurchaseAccessDenied
	}

	product, err := f.productRepo.ByUUID(ctx, req.ProductUUID)
	if err != nil {
		return nil, err
	}
	if product == nil || product.StoreID != purchase.StoreID {
		return nil, ErrProductNotFound
	}

	// Exactly one of category / custom category
	var category *models.SupportCategory
	var customCategory *string
	switch {
	case req.CategoryID != nil && req.CustomCategory != nil:
		return nil, ErrCategoryConflict
	case req.CategoryID != nil:
		category, err = f.categoryRepo.ByID(ctx, *req.CategoryID)
		if err != nil {
			return nil, err
		}
		if category == nil || !utils.IsTrue(category.IsActive) {
			return nil, ErrCategoryNotFound
		}
	case req.CustomCategory != nil:
		trimmed := strings.TrimSpace(*req.CustomCategory)
		if trimmed == "" {
			return nil, ErrCategoryRequired
		}
		if len([]rune(trimmed)) > utils.MaxCustomCategoryLen {
			return nil, ErrCustomCategoryTooLong
		}
		customCategory = &trimmed
	default:
		return nil, ErrCategoryRequired
	}

	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, ErrDescriptionRequired
	}
	if len([]rune(description)) > utils.MaxTicketDescriptionLen {
		return nil, ErrDescriptionTooLong
	}

	if len(req.SavedImageURLs) > utils.MaxTicketImages {
		return nil, ErrTooManyImages
	}

	ticket := models.Ticket{
		UUID:               uuid.New(),
		PurchaseID:         purchase.ID,
		ProductID:          product.ID,
		CustomerID:         customer.ID,
		StoreID:            purchase.StoreID,
		Description:        description,
		CustomCategory:     customCategory,
		Status:             models.TicketStatusPending,
		AllowUserMessages:  utils.ToPtr(f.supportCfg.DefaultAllowUserMessages),
		AllowStoreMessages: utils.ToPtr(f.supportCfg.DefaultAllowStoreMessages),
	}
	if category != nil {
		ticket.CategoryID = &category.ID
	}

	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		exists, err := f.ticketRepo.OpenTicketExists(txCtx, purchase.ID, product.ID)
		if err != nil {
			return err
		}
		if exists {
			return ErrDuplicateOpenTicket
		}

		if err := f.ticketRepo.Save(txCtx, &ticket); err != nil {
			return err
		}

		for i, url := range req.SavedImageURLs {
			img := models.TicketImage{
				TicketID: ticket.ID,
				URL:      url,
				Position: i,
			}
			if err := f.imageRepo.Save(txCtx, &img); err != nil {
				return err
			}
			ticket.Images = append(ticket.Images, img)
		}
		return nil
	})
	if err != nil {
		// A concurrent creation can slip past the existence check; the
		// partial unique index turns it into a duplicate-key failure here.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			err = ErrDuplicateOpenTicket
		}
		errMsg := err.Error()
		_ = f.createAuditLog(ctx, &customer.ID, nil, models.AuditActionTicketCreateFailed,
			fmt.Sprintf("ticket creation failed for purchase %s", req.PurchaseUUID), false, &errMsg, metadata)
		return nil, err
	}

	_ = f.createAuditLog(ctx, &customer.ID, &ticket.ID, models.AuditActionTicketCreated,
		fmt.Sprintf("ticket %s created", ticket.UUID), true, nil, metadata)

	// Notify staff via SMS (best-effort)
	if f.notifier != nil && f.supportCfg.StaffMobile != "" {
		msg := fmt.Sprintf("New support ticket for %s: %s", product.Name, truncate(description, 50))
		go func() {
			_ = f.notifier.SendSMS(f.supportCfg.StaffMobile, msg)
		}()
	}

	// Attach the already loaded relations for the response
	ticket.Customer = customer
	ticket.Purchase = purchase
	ticket.Product = product
	ticket.Category = category
	if store, err := f.storeRepo.ByID(ctx, purchase.StoreID); err == nil {
		ticket.Store = store
	}

	return &dto.CreateTicketResponse{
		Message: "Ticket created successfully",
		Ticket:  ToTicketItem(&ticket),
	}, nil
}

// ListPurchaseTickets lists a buyer's tickets, newest first, optionally
// narrowed to one purchase
func (f *TicketFlowImpl) ListPurchaseTickets(ctx context.Context, req *dto.ListPurchaseTicketsRequest, metadata *ClientMetadata) (*dto.ListTicketsResponse, error) {
	customer, err := getCustomer(ctx, f.customerRepo, req.CustomerID)
	if err != nil {
		return nil, err
	}

	filter := models.TicketFilter{CustomerID: &customer.ID}
	if req.PurchaseUUID != nil {
		purchase, err := f.purchaseRepo.ByUUID(ctx, *req.PurchaseUUID)
		if err != nil {
			return nil, err
		}
		if purchase == nil {
			return nil, ErrPurchaseNotFound
		}
		if purchase.CustomerID != customer.ID {
			return nil, ErrPurchaseAccessDenied
		}
		filter.PurchaseID = &purchase.ID
	}

	page, pageSize := normalizePage(req.Page, req.PageSize)
	offset := int((page - 1) * pageSize)

	rows, err := f.ticketRepo.ByFilter(ctx, filter, "created_at DESC, id DESC", int(pageSize), offset)
	if err != nil {
		return nil, err
	}

	return &dto.ListTicketsResponse{
		Message: "Tickets retrieved successfully",
		Tickets: toTicketItems(rows),
	}, nil
}

// ListSaleTickets lists the tickets buyers opened against a store's sales,
// optionally narrowed to one purchase and one product of that store
func (f *TicketFlowImpl) ListSaleTickets(ctx context.Context, req *dto.ListSaleTicketsRequest, metadata *ClientMetadata) (*dto.ListTicketsResponse, error) {
	store, err := getStore(ctx, f.storeRepo, req.StoreID)
	if err != nil {
		return nil, err
	}

	var filter models.TicketFilter
	if req.PurchaseUUID != nil {
		purchase, err := f.purchaseRepo.ByUUID(ctx, *req.PurchaseUUID)
		if err != nil {
			return nil, err
		}
		if purchase == nil || purchase.StoreID != store.ID {
			return nil, ErrPurchaseNotFound
		}
		filter.PurchaseID = &purchase.ID
	}
	if req.ProductUUID != nil {
		product, err := f.productRepo.ByUUID(ctx, *req.ProductUUID)
		if err != nil {
			return nil, err
		}
		if product == nil || product.StoreID != store.ID {
			return nil, ErrProductNotFound
		}
		filter.ProductID = &product.ID
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

	rows, err := f.ticketRepo.ListBySaleContext(ctx, store.ID, filter, int(pageSize), offset)
	if err != nil {
		return nil, err
	}

	return &dto.ListTicketsResponse{
		Message: "Tickets retrieved successfully",
		Tickets: toTicketItems(rows),
	}, nil
}

// GetTicket returns one ticket and its full conversation, oldest message
// first. Buyers see only their own tickets, sellers only their store's;
// staff sees everything.
func (f *TicketFlowImpl) GetTicket(ctx context.Context, ticketUUID string, subjectID uint, role models.Role, metadata *ClientMetadata) (*dto.GetTicketResponse, error) {
	ticket, err := getTicketByUUID(ctx, f.ticketRepo, ticketUUID)
	if err != nil {
		return nil, err
	}

	if err := authorizeTicketAccess(ticket, subjectID, role); err != nil {
		return nil, err
	}

	messages, err := f.messageRepo.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, err
	}

	items := make([]dto.MessageItem, 0, len(messages))
	for _, m := range messages {
		items = append(items, ToMessageItem(m))
	}

	return &dto.GetTicketResponse{
		Message:  "Ticket retrieved successfully",
		Ticket:   ToTicketItem(ticket),
		Messages: items,
	}, nil
}

// authorizeTicketAccess gates reads on a ticket by the caller's role
func authorizeTicketAccess(ticket *models.Ticket, subjectID uint, role models.Role) error {
	switch role {
	case models.RoleUser:
		if ticket.CustomerID != subjectID {
			return ErrTicketAccessDenied
		}
	case models.RoleStore:
		if ticket.StoreID != subjectID {
			return ErrTicketAccessDenied
		}
	case models.RoleAdmin:
		// Staff sees everything
	default:
		return ErrTicketAccessDenied
	}
	return nil
}

func toTicketItems(rows []*models.Ticket) []dto.TicketItem {
	items := make([]dto.TicketItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, ToTicketItem(r))
	}
	return items
}

func (f *TicketFlowImpl) createAuditLog(ctx context.Context, customerID, ticketID *uint, action, description string, success bool, errorMsg *string, metadata *ClientMetadata) error {
	ipAddress := "127.0.0.1"
	userAgent := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
	}

	audit := &models.AuditLog{
		CustomerID:   customerID,
		TicketID:     ticketID,
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
