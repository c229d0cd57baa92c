// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/kasraden/bazaar-support/app/dto"
	"github.com/kasraden/bazaar-support/app/services"
	businessflow "github.com/kasraden/bazaar-support/business_flow"
	"github.com/kasraden/bazaar-support/realtime"
	"github.com/kasraden/bazaar-support/utils"
)

// MessageHandlerInterface defines the contract for conversation handlers
type MessageHandlerInterface interface {
	Send(c fiber.Ctx) error
	List(c fiber.Ctx) error
	Stream(c fiber.Ctx) error
}

// MessageHandler handles ticket conversation HTTP requests
type MessageHandler struct {
	flow    businessflow.MessageFlow
	bridge  *realtime.Bridge
	storage services.MediaStorage
}

// NewMessageHandler creates a new message handler
func NewMessageHandler(flow businessflow.MessageFlow, bridge *realtime.Bridge, storage services.MediaStorage) *MessageHandler {
	return &MessageHandler{
		flow:    flow,
		bridge:  bridge,
		storage: storage,
	}
}

func (h *MessageHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *MessageHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Send Message
// @Description Append a message to a ticket conversation. Supports multipart form upload (text plus one media file) or JSON (text only). The persisted message reaches all open views, the sender's included, over the realtime stream.
// @Tags Messages
// @Accept mpfd
// @Accept json
// @Produce json
// @Param uuid path string true "Ticket UUID"
// @Param body formData string false "Message text"
// @Param media formData file false "Image or video attachment"
// @Param request body dto.SendMessageRequest false "JSON alternative for sending a message"
// @Success 201 {object} dto.APIResponse{data=dto.SendMessageResponse} "Message sent successfully"
// @Failure 400 {object} dto.APIResponse "Validation error or invalid request"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 403 {object} dto.APIResponse "Forbidden or messaging disabled"
// @Failure 404 {object} dto.APIResponse "Ticket not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/tickets/{uuid}/messages [post]
func (h *MessageHandler) Send(c fiber.Ctx) error {
	subjectID, role, ok := authSubject(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	ticketUUID := c.Params("uuid")
	if ticketUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Ticket UUID is required", "MISSING_TICKET_UUID", nil)
	}

	req := dto.SendMessageRequest{
		TicketUUID: ticketUUID,
		SenderID:   subjectID,
		SenderRole: string(role),
	}
	var savedPath string

	contentType := c.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		form, err := c.MultipartForm()
		if err != nil || form == nil {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid multipart form", "INVALID_REQUEST", nil)
		}
		req.Body = c.FormValue("body")
		if files := form.File["media"]; len(files) > 0 {
			src, err := files[0].Open()
			if err != nil {
				return h.ErrorResponse(c, fiber.StatusBadRequest, "Media upload failed", "FILE_UPLOAD_FAILED", nil)
			}
			stored, err := h.storage.Save(src, files[0].Filename)
			src.Close()
			if err != nil {
				if errors.Is(err, services.ErrUnsupportedMediaType) {
					return h.ErrorResponse(c, fiber.StatusBadRequest, "Unsupported media type", "INVALID_FILE_TYPE", nil)
				}
				if errors.Is(err, services.ErrMediaTooLarge) {
					return h.ErrorResponse(c, fiber.StatusBadRequest, "Media too large", "FILE_TOO_LARGE", nil)
				}
				return h.ErrorResponse(c, fiber.StatusBadRequest, "Media upload failed", "FILE_UPLOAD_FAILED", nil)
			}
			savedPath = stored.StoredPath
			req.SavedMediaURL = &stored.URL
		}
	} else {
		if err := c.Bind().JSON(&req); err != nil {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
		}
		// Path and auth fields win over anything in the body
		req.TicketUUID = ticketUUID
		req.SenderID = subjectID
		req.SenderRole = string(role)
		req.SavedMediaURL = nil
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.RequestID = c.Get("X-Request-ID")
	result, err := h.flow.SendMessage(h.createRequestContext(c, "/api/v1/tickets/:uuid/messages"), &req, metadata)
	if err != nil {
		if savedPath != "" {
			_ = h.storage.Remove(savedPath)
		}
		return h.messageErrorResponse(c, err, "Failed to send message", "SEND_MESSAGE_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Message sent successfully", result)
}

// List Messages
// @Description List a ticket's messages oldest first. Without paging the full conversation is returned.
// @Tags Messages
// @Accept json
// @Produce json
// @Param uuid path string true "Ticket UUID"
// @Param page query integer false "Page number"
// @Param page_size query integer false "Items per page (max: 100)"
// @Success 200 {object} dto.APIResponse{data=dto.ListMessagesResponse} "Messages retrieved successfully"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 403 {object} dto.APIResponse "Forbidden"
// @Failure 404 {object} dto.APIResponse "Ticket not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/tickets/{uuid}/messages [get]
func (h *MessageHandler) List(c fiber.Ctx) error {
	subjectID, role, ok := authSubject(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	ticketUUID := c.Params("uuid")
	if ticketUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Ticket UUID is required", "MISSING_TICKET_UUID", nil)
	}

	req := &dto.ListMessagesRequest{TicketUUID: ticketUUID}
	req.Page, req.PageSize = parsePaging(c)

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	result, err := h.flow.ListMessages(h.createRequestContext(c, "/api/v1/tickets/:uuid/messages"), req, subjectID, role, metadata)
	if err != nil {
		return h.messageErrorResponse(c, err, "Failed to list messages", "LIST_MESSAGES_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Messages retrieved successfully", result)
}

// Stream Ticket Events
// @Description Server-sent event stream of a ticket's live events: new messages, send-permission toggles, and status changes. Events arrive in publish order.
// @Tags Messages
// @Produce text/event-stream
// @Param uuid path string true "Ticket UUID"
// @Success 200 {string} string "SSE stream"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 403 {object} dto.APIResponse "Forbidden"
// @Failure 404 {object} dto.APIResponse "Ticket not found"
// @Router /api/v1/tickets/{uuid}/stream [get]
func (h *MessageHandler) Stream(c fiber.Ctx) error {
	subjectID, role, ok := authSubject(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	ticketUUID := c.Params("uuid")
	if ticketUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Ticket UUID is required", "MISSING_TICKET_UUID", nil)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := h.flow.CheckAccess(ctx, ticketUUID, subjectID, role); err != nil {
		return h.messageErrorResponse(c, err, "Failed to open stream", "OPEN_STREAM_FAILED")
	}

	sub, err := h.bridge.Subscribe(context.Background(), ticketUUID, realtime.Handlers{})
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to open stream", "OPEN_STREAM_FAILED", nil)
	}

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	return c.SendStreamWriter(func(w *bufio.Writer) {
		defer sub.Close()

		keepalive := time.NewTicker(25 * time.Second)
		defer keepalive.Stop()

		for {
			select {
			case event, open := <-sub.Events():
				if !open {
					return
				}
				if err := writeSSE(w, event); err != nil {
					return
				}
			case <-keepalive.C:
				// Comment line keeps intermediaries from timing out
				// the idle connection.
				if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	})
}

func writeSSE(w *bufio.Writer, event *realtime.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Kind, payload); err != nil {
		return err
	}
	return w.Flush()
}

func (h *MessageHandler) messageErrorResponse(c fiber.Ctx, err error, fallbackMessage, fallbackCode string) error {
	switch {
	case businessflow.IsCustomerNotFound(err):
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Customer not found", "CUSTOMER_NOT_FOUND", nil)
	case businessflow.IsAccountInactive(err):
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Account is inactive", "ACCOUNT_INACTIVE", nil)
	case businessflow.IsStoreNotFound(err):
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Store not found", "STORE_NOT_FOUND", nil)
	case businessflow.IsStoreInactive(err):
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Store is inactive", "STORE_INACTIVE", nil)
	case businessflow.IsTicketNotFound(err):
		return h.ErrorResponse(c, fiber.StatusNotFound, "Ticket not found", "TICKET_NOT_FOUND", nil)
	case businessflow.IsTicketAccessDenied(err):
		return h.ErrorResponse(c, fiber.StatusForbidden, "You do not have access to this ticket", "TICKET_ACCESS_DENIED", nil)
	case businessflow.IsMessagingDisabled(err):
		return h.ErrorResponse(c, fiber.StatusForbidden, "Messaging is disabled on this ticket", "MESSAGING_DISABLED", nil)
	case businessflow.IsEmptyMessage(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Message needs text or media", "EMPTY_MESSAGE", nil)
	case businessflow.IsMessageTooLong(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Message is too long", "MESSAGE_TOO_LONG", nil)
	}
	if be, ok := err.(*businessflow.BusinessError); ok {
		return h.ErrorResponse(c, fiber.StatusBadRequest, be.Message, be.Code, nil)
	}
	return h.ErrorResponse(c, fiber.StatusInternalServerError, fallbackMessage, fallbackCode, nil)
}

func (h *MessageHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, 30*time.Second)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
