package handlers

import (
	"bytes"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/kasraden/bazaar-support/app/services"
	"github.com/kasraden/bazaar-support/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Minimal JPEG header so content sniffing sees image/jpeg
var jpegHeader = append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, bytes.Repeat([]byte{0x00}, 64)...)

func newMediaTestApp(t *testing.T) (*fiber.App, services.MediaStorage) {
	t.Helper()
	t.Chdir(t.TempDir())
	storage := services.NewLocalMediaStorage(&config.StorageConfig{
		UploadDir:     "uploads",
		PublicBaseURL: "/uploads",
		MaxUploadSize: 1 << 20,
	})
	handler := NewMediaHandler(storage)
	app := fiber.New()
	app.Get("/uploads/*", handler.Get)
	return app, storage
}

func TestMediaHandlerServesStoredUploads(t *testing.T) {
	app, storage := newMediaTestApp(t)

	stored, err := storage.Save(bytes.NewReader(jpegHeader), "photo.jpg")
	require.NoError(t, err)

	// Fetch through the public URL the storage handed out
	resp, err := app.Test(httptest.NewRequest("GET", stored.URL, nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/jpeg", resp.Header.Get("Content-Type"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, jpegHeader, body)
}

func TestMediaHandlerRejectsBadPaths(t *testing.T) {
	app, _ := newMediaTestApp(t)

	t.Run("Missing", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/uploads/2026-01-05/missing.jpg", nil))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})

	t.Run("EmptyPath", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/uploads/", nil))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}
