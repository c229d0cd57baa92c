// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/kasraden/bazaar-support/app/dto"
	businessflow "github.com/kasraden/bazaar-support/business_flow"
	"github.com/kasraden/bazaar-support/models"
	"github.com/kasraden/bazaar-support/utils"
)

// AdminTicketHandlerInterface defines the contract for staff console handlers
type AdminTicketHandlerInterface interface {
	List(c fiber.Ctx) error
	SetPermission(c fiber.Ctx) error
	SetStatus(c fiber.Ctx) error
}

// AdminTicketHandler handles staff console HTTP requests
type AdminTicketHandler struct {
	flow      businessflow.AdminTicketFlow
	validator *validator.Validate
}

// NewAdminTicketHandler creates a new admin ticket handler
func NewAdminTicketHandler(flow businessflow.AdminTicketFlow) *AdminTicketHandler {
	return &AdminTicketHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

func (h *AdminTicketHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *AdminTicketHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// List Tickets
// @Description Staff lists tickets across all customers and stores with optional filters
// @Tags Admin
// @Accept json
// @Produce json
// @Param status query string false "Filter by status (pending/in_progress/resolved/closed)"
// @Param customer_id query integer false "Filter by customer id"
// @Param store_id query integer false "Filter by store id"
// @Param start_date query string false "Start date (RFC3339)"
// @Param end_date query string false "End date (RFC3339)"
// @Param page query integer false "Page number (default: 1)"
// @Param page_size query integer false "Items per page (default: 20, max: 100)"
// @Success 200 {object} dto.APIResponse{data=dto.ListTicketsResponse} "Tickets retrieved successfully"
// @Failure 400 {object} dto.APIResponse "Validation error or invalid request"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/tickets [get]
func (h *AdminTicketHandler) List(c fiber.Ctx) error {
	if _, role, ok := authSubject(c); !ok || role != models.RoleAdmin {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	req := &dto.AdminListTicketsRequest{}
	if v := c.Query("status"); v != "" {
		req.Status = &v
	}
	if v := c.Query("customer_id"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil {
			req.CustomerID = utils.ToPtr(uint(n))
		}
	}
	if v := c.Query("store_id"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil {
			req.StoreID = utils.ToPtr(uint(n))
		}
	}
	if v := c.Query("start_date"); v != "" {
		if parsed, err := time.Parse(time.RFC3339, v); err == nil {
			req.StartDate = &parsed
		}
	}
	if v := c.Query("end_date"); v != "" {
		if parsed, err := time.Parse(time.RFC3339, v); err == nil {
			req.EndDate = &parsed
		}
	}
	req.Page, req.PageSize = parsePaging(c)

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	result, err := h.flow.ListTickets(h.createRequestContext(c, "/api/v1/admin/tickets"), req, metadata)
	if err != nil {
		if businessflow.IsInvalidTicketStatus(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid ticket status", "INVALID_TICKET_STATUS", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list tickets", "ADMIN_LIST_TICKETS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Tickets retrieved successfully", result)
}

// SetPermission Toggle Send Permission
// @Description Staff toggles a ticket's buyer or seller send-permission flag. Open composers pick the change up over the realtime stream.
// @Tags Admin
// @Accept json
// @Produce json
// @Param uuid path string true "Ticket UUID"
// @Param request body dto.SetPermissionRequest true "Permission field and value"
// @Success 200 {object} dto.APIResponse{data=dto.SetPermissionResponse} "Permission updated successfully"
// @Failure 400 {object} dto.APIResponse "Validation error or invalid request"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 404 {object} dto.APIResponse "Ticket not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/tickets/{uuid}/permissions [patch]
func (h *AdminTicketHandler) SetPermission(c fiber.Ctx) error {
	if _, role, ok := authSubject(c); !ok || role != models.RoleAdmin {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	ticketUUID := c.Params("uuid")
	if ticketUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Ticket UUID is required", "MISSING_TICKET_UUID", nil)
	}

	var req dto.SetPermissionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
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
	result, err := h.flow.SetMessagePermission(h.createRequestContext(c, "/api/v1/admin/tickets/:uuid/permissions"), ticketUUID, &req, metadata)
	if err != nil {
		return h.adminErrorResponse(c, err, "Failed to update permission", "SET_PERMISSION_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Permission updated successfully", result)
}

// SetStatus Transition Ticket Status
// @Description Staff sets a ticket's lifecycle status. Any status may be set from any other.
// @Tags Admin
// @Accept json
// @Produce json
// @Param uuid path string true "Ticket UUID"
// @Param request body dto.SetStatusRequest true "Target status"
// @Success 200 {object} dto.APIResponse{data=dto.SetStatusResponse} "Status updated successfully"
// @Failure 400 {object} dto.APIResponse "Validation error or invalid request"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 404 {object} dto.APIResponse "Ticket not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/tickets/{uuid}/status [patch]
func (h *AdminTicketHandler) SetStatus(c fiber.Ctx) error {
	if _, role, ok := authSubject(c); !ok || role != models.RoleAdmin {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	ticketUUID := c.Params("uuid")
	if ticketUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Ticket UUID is required", "MISSING_TICKET_UUID", nil)
	}

	var req dto.SetStatusRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
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
	result, err := h.flow.SetStatus(h.createRequestContext(c, "/api/v1/admin/tickets/:uuid/status"), ticketUUID, &req, metadata)
	if err != nil {
		return h.adminErrorResponse(c, err, "Failed to update status", "SET_STATUS_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Status updated successfully", result)
}

func (h *AdminTicketHandler) adminErrorResponse(c fiber.Ctx, err error, fallbackMessage, fallbackCode string) error {
	switch {
	case businessflow.IsTicketNotFound(err):
		return h.ErrorResponse(c, fiber.StatusNotFound, "Ticket not found", "TICKET_NOT_FOUND", nil)
	case businessflow.IsInvalidTicketStatus(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid ticket status", "INVALID_TICKET_STATUS", nil)
	}
	if be, ok := err.(*businessflow.BusinessError); ok {
		return h.ErrorResponse(c, fiber.StatusBadRequest, be.Message, be.Code, nil)
	}
	return h.ErrorResponse(c, fiber.StatusInternalServerError, fallbackMessage, fallbackCode, nil)
}

func (h *AdminTicketHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, 30*time.Second)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
