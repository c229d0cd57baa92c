// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"errors"
	"mime/multipart"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/kasraden/bazaar-support/app/dto"
	"github.com/kasraden/bazaar-support/app/services"
	businessflow "github.com/kasraden/bazaar-support/business_flow"
	"github.com/kasraden/bazaar-support/models"
	"github.com/kasraden/bazaar-support/utils"
)

// TicketHandlerInterface defines the contract for ticket handlers
type TicketHandlerInterface interface {
	ListCategories(c fiber.Ctx) error
	Create(c fiber.Ctx) error
	ListPurchaseTickets(c fiber.Ctx) error
	ListSaleTickets(c fiber.Ctx) error
	Get(c fiber.Ctx) error
}

// TicketHandler handles ticket-related HTTP requests
type TicketHandler struct {
	flow      businessflow.TicketFlow
	storage   services.MediaStorage
	maxImages int
	validator *validator.Validate
}

// NewTicketHandler creates a new ticket handler
func NewTicketHandler(flow businessflow.TicketFlow, storage services.MediaStorage, maxImages int) *TicketHandler {
	return &TicketHandler{
		flow:      flow,
		storage:   storage,
		maxImages: maxImages,
		validator: validator.New(),
	}
}

func (h *TicketHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *TicketHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// authSubject extracts the authenticated subject set by the auth middleware
func authSubject(c fiber.Ctx) (uint, models.Role, bool) {
	subjectID, ok := c.Locals("subject_id").(uint)
	if !ok {
		return 0, "", false
	}
	role, ok := c.Locals("role").(models.Role)
	if !ok {
		return 0, "", false
	}
	return subjectID, role, true
}

// ListCategories Support Categories
// @Description List active support categories in display order. The "Other" option is client-side and resolves to a custom category string.
// @Tags Tickets
// @Accept json
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.ListCategoriesResponse} "Categories retrieved successfully"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/support/categories [get]
func (h *TicketHandler) ListCategories(c fiber.Ctx) error {
	result, err := h.flow.ListCategories(h.createRequestContext(c, "/api/v1/support/categories"))
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list categories", "LIST_CATEGORIES_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Categories retrieved successfully", result)
}

// Create Ticket
// @Description Open a support ticket on a purchased product. Supports multipart form upload (with images) or JSON. Exactly one of category_id / custom_category must be provided.
// @Tags Tickets
// @Accept mpfd
// @Accept json
// @Produce json
// @Param purchase_uuid formData string false "Purchase UUID"
// @Param product_uuid formData string false "Product UUID"
// @Param category_id formData integer false "Selected category ID"
// @Param custom_category formData string false "Custom category text (when no category selected)"
// @Param description formData string false "Problem description"
// @Param images formData file false "Up to 5 images"
// @Param request body dto.CreateTicketRequest false "JSON alternative for creating ticket"
// @Success 201 {object} dto.APIResponse{data=dto.CreateTicketResponse} "Ticket created successfully"
// @Failure 400 {object} dto.APIResponse "Validation error or invalid request"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 409 {object} dto.APIResponse "An open ticket already exists for this purchase and product"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/tickets [post]
func (h *TicketHandler) Create(c fiber.Ctx) error {
	subjectID, role, ok := authSubject(c)
	if !ok || role != models.RoleUser {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	var req dto.CreateTicketRequest
	var savedPaths []string

	contentType := c.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		form, err := c.MultipartForm()
		if err != nil || form == nil {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid multipart form", "INVALID_REQUEST", nil)
		}
		req.PurchaseUUID = c.FormValue("purchase_uuid")
		req.ProductUUID = c.FormValue("product_uuid")
		req.Description = c.FormValue("description")
		if v := c.FormValue("category_id"); v != "" {
			id, err := strconv.ParseUint(v, 10, 32)
			if err != nil {
				return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid category ID", "INVALID_CATEGORY_ID", nil)
			}
			req.CategoryID = utils.ToPtr(uint(id))
		}
		if v := c.FormValue("custom_category"); v != "" {
			req.CustomCategory = &v
		}

		files := form.File["images"]
		if len(files) > h.maxImages {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Too many images", "TOO_MANY_IMAGES", nil)
		}
		for _, fileHeader := range files {
			stored, err := h.saveImage(fileHeader)
			if err != nil {
				h.discardSaved(savedPaths)
				if errors.Is(err, services.ErrUnsupportedMediaType) {
					return h.ErrorResponse(c, fiber.StatusBadRequest, "Unsupported image type", "INVALID_FILE_TYPE", nil)
				}
				if errors.Is(err, services.ErrMediaTooLarge) {
					return h.ErrorResponse(c, fiber.StatusBadRequest, "Image too large", "FILE_TOO_LARGE", nil)
				}
				return h.ErrorResponse(c, fiber.StatusBadRequest, "Image upload failed", "FILE_UPLOAD_FAILED", nil)
			}
			savedPaths = append(savedPaths, stored.StoredPath)
			req.SavedImageURLs = append(req.SavedImageURLs, stored.URL)
		}
	} else {
		if err := c.Bind().JSON(&req); err != nil {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
		}
	}

	req.CustomerID = subjectID

	if err := h.validator.Struct(&req); err != nil {
		h.discardSaved(savedPaths)
		var details []string
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, verr := range verrs {
				details = append(details, getValidationErrorMessage(verr))
			}
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", details)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.RequestID = c.Get("X-Request-ID")
	result, err := h.flow.CreateTicket(h.createRequestContext(c, "/api/v1/tickets"), &req, metadata)
	if err != nil {
		h.discardSaved(savedPaths)
		return h.ticketErrorResponse(c, err, "Failed to create ticket", "CREATE_TICKET_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Ticket created successfully", result)
}

// ListPurchaseTickets Buyer Tickets
// @Description List the authenticated buyer's tickets, optionally narrowed to one purchase, newest first
// @Tags Tickets
// @Accept json
// @Produce json
// @Param purchase_uuid query string false "Narrow to one purchase"
// @Param page query integer false "Page number (default: 1)"
// @Param page_size query integer false "Items per page (default: 20, max: 100)"
// @Success 200 {object} dto.APIResponse{data=dto.ListTicketsResponse} "Tickets retrieved successfully"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/tickets [get]
func (h *TicketHandler) ListPurchaseTickets(c fiber.Ctx) error {
	subjectID, role, ok := authSubject(c)
	if !ok || role != models.RoleUser {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	req := &dto.ListPurchaseTicketsRequest{CustomerID: subjectID}
	if v := c.Query("purchase_uuid"); v != "" {
		req.PurchaseUUID = &v
	}
	req.Page, req.PageSize = parsePaging(c)

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	result, err := h.flow.ListPurchaseTickets(h.createRequestContext(c, "/api/v1/tickets"), req, metadata)
	if err != nil {
		return h.ticketErrorResponse(c, err, "Failed to list tickets", "LIST_TICKETS_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Tickets retrieved successfully", result)
}

// ListSaleTickets Seller Tickets
// @Description List tickets opened against the authenticated store's sales, newest first, optionally narrowed to one purchase and one product
// @Tags Tickets
// @Accept json
// @Produce json
// @Param purchase_uuid query string false "Narrow to one purchase"
// @Param product_uuid query string false "Narrow to one product"
// @Param status query string false "Filter by status (pending/in_progress/resolved/closed)"
// @Param page query integer false "Page number (default: 1)"
// @Param page_size query integer false "Items per page (default: 20, max: 100)"
// @Success 200 {object} dto.APIResponse{data=dto.ListTicketsResponse} "Tickets retrieved successfully"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/store/tickets [get]
func (h *TicketHandler) ListSaleTickets(c fiber.Ctx) error {
	subjectID, role, ok := authSubject(c)
	if !ok || role != models.RoleStore {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	req := &dto.ListSaleTicketsRequest{StoreID: subjectID}
	if v := c.Query("purchase_uuid"); v != "" {
		req.PurchaseUUID = &v
	}
	if v := c.Query("product_uuid"); v != "" {
		req.ProductUUID = &v
	}
	if v := c.Query("status"); v != "" {
		req.Status = &v
	}
	req.Page, req.PageSize = parsePaging(c)

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	result, err := h.flow.ListSaleTickets(h.createRequestContext(c, "/api/v1/store/tickets"), req, metadata)
	if err != nil {
		return h.ticketErrorResponse(c, err, "Failed to list tickets", "LIST_TICKETS_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Tickets retrieved successfully", result)
}

// Get Ticket
// @Description Get one ticket with its full conversation. Buyers see their own tickets, stores the tickets on their sales, staff all tickets.
// @Tags Tickets
// @Accept json
// @Produce json
// @Param uuid path string true "Ticket UUID"
// @Success 200 {object} dto.APIResponse{data=dto.GetTicketResponse} "Ticket retrieved successfully"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 403 {object} dto.APIResponse "Forbidden"
// @Failure 404 {object} dto.APIResponse "Ticket not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/tickets/{uuid} [get]
func (h *TicketHandler) Get(c fiber.Ctx) error {
	subjectID, role, ok := authSubject(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	ticketUUID := c.Params("uuid")
	if ticketUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Ticket UUID is required", "MISSING_TICKET_UUID", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	result, err := h.flow.GetTicket(h.createRequestContext(c, "/api/v1/tickets/:uuid"), ticketUUID, subjectID, role, metadata)
	if err != nil {
		return h.ticketErrorResponse(c, err, "Failed to get ticket", "GET_TICKET_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Ticket retrieved successfully", result)
}

// ticketErrorResponse maps flow errors onto HTTP statuses
func (h *TicketHandler) ticketErrorResponse(c fiber.Ctx, err error, fallbackMessage, fallbackCode string) error {
	switch {
	case businessflow.IsCustomerNotFound(err):
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Customer not found", "CUSTOMER_NOT_FOUND", nil)
	case businessflow.IsAccountInactive(err):
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Account is inactive", "ACCOUNT_INACTIVE", nil)
	case businessflow.IsStoreNotFound(err):
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Store not found", "STORE_NOT_FOUND", nil)
	case businessflow.IsStoreInactive(err):
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Store is inactive", "STORE_INACTIVE", nil)
	case businessflow.IsPurchaseNotFound(err):
		return h.ErrorResponse(c, fiber.StatusNotFound, "Purchase not found", "PURCHASE_NOT_FOUND", nil)
	case businessflow.IsPurchaseAccessDenied(err):
		return h.ErrorResponse(c, fiber.StatusForbidden, "Purchase does not belong to you", "PURCHASE_ACCESS_DENIED", nil)
	case businessflow.IsProductNotFound(err):
		return h.ErrorResponse(c, fiber.StatusNotFound, "Product not found", "PRODUCT_NOT_FOUND", nil)
	case businessflow.IsTicketNotFound(err):
		return h.ErrorResponse(c, fiber.StatusNotFound, "Ticket not found", "TICKET_NOT_FOUND", nil)
	case businessflow.IsTicketAccessDenied(err):
		return h.ErrorResponse(c, fiber.StatusForbidden, "You do not have access to this ticket", "TICKET_ACCESS_DENIED", nil)
	case businessflow.IsDuplicateOpenTicket(err):
		return h.ErrorResponse(c, fiber.StatusConflict, "An open ticket already exists for this purchase and product", "DUPLICATE_OPEN_TICKET", nil)
	case businessflow.IsCategoryNotFound(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Category not found", "CATEGORY_NOT_FOUND", nil)
	case businessflow.IsCategoryRequired(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, "A category or custom category is required", "CATEGORY_REQUIRED", nil)
	case businessflow.IsCategoryConflict(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Provide either a category or a custom category, not both", "CATEGORY_CONFLICT", nil)
	case businessflow.IsDescriptionRequired(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Description is required", "DESCRIPTION_REQUIRED", nil)
	case businessflow.IsDescriptionTooLong(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Description is too long", "DESCRIPTION_TOO_LONG", nil)
	case businessflow.IsCustomCategoryTooLong(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Custom category is too long", "CUSTOM_CATEGORY_TOO_LONG", nil)
	case businessflow.IsTooManyImages(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Too many images", "TOO_MANY_IMAGES", nil)
	case businessflow.IsInvalidTicketStatus(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid ticket status", "INVALID_TICKET_STATUS", nil)
	}
	if be, ok := err.(*businessflow.BusinessError); ok {
		return h.ErrorResponse(c, fiber.StatusBadRequest, be.Message, be.Code, nil)
	}
	return h.ErrorResponse(c, fiber.StatusInternalServerError, fallbackMessage, fallbackCode, nil)
}

func parsePaging(c fiber.Ctx) (uint, uint) {
	var page, pageSize uint
	if v := c.Query("page"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil {
			page = uint(n)
		}
	}
	if v := c.Query("page_size"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil {
			pageSize = uint(n)
		}
	}
	return page, pageSize
}

func (h *TicketHandler) saveImage(fileHeader *multipart.FileHeader) (*services.StoredMedia, error) {
	src, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return h.storage.Save(src, fileHeader.Filename)
}

func (h *TicketHandler) discardSaved(paths []string) {
	for _, p := range paths {
		_ = h.storage.Remove(p)
	}
}

func (h *TicketHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *TicketHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
