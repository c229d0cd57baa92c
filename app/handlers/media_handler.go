// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/kasraden/bazaar-support/app/dto"
	"github.com/kasraden/bazaar-support/app/services"
)

// MediaHandler serves stored ticket attachments
type MediaHandler struct {
	storage services.MediaStorage
}

// NewMediaHandler creates a new media handler
func NewMediaHandler(storage services.MediaStorage) *MediaHandler {
	return &MediaHandler{storage: storage}
}

// Get Stored Media
// @Description Serve a stored ticket attachment by its upload path
// @Tags Media
// @Produce octet-stream
// @Param path path string true "Stored media path"
// @Success 200 {file} binary "Media content"
// @Failure 404 {object} dto.APIResponse "Media not found"
// @Router /uploads/{path} [get]
func (h *MediaHandler) Get(c fiber.Ctx) error {
	storedPath := c.Params("*")
	_, contentType, data, err := h.storage.Read(storedPath)
	if err != nil {
		status := fiber.StatusNotFound
		if errors.Is(err, services.ErrInvalidMediaPath) {
			status = fiber.StatusBadRequest
		}
		return c.Status(status).JSON(dto.APIResponse{
			Success: false,
			Message: "Media not found",
			Error:   dto.ErrorDetail{Code: "MEDIA_NOT_FOUND"},
		})
	}

	c.Set("Content-Type", contentType)
	c.Set("Cache-Control", "public, max-age=86400")
	return c.Send(data)
}
