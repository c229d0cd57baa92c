package services

import (
	"bytes"
	"strings"
	"testing"

	"github.com/kasraden/bazaar-support/config"
	"github.com/kasraden/bazaar-support/media"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Minimal JPEG header so content sniffing sees image/jpeg
var jpegBytes = append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, bytes.Repeat([]byte{0x00}, 64)...)

func newTestStorage(t *testing.T, maxSize int64) MediaStorage {
	t.Helper()
	t.Chdir(t.TempDir())
	return NewLocalMediaStorage(&config.StorageConfig{
		UploadDir:     "uploads",
		PublicBaseURL: "/uploads",
		MaxUploadSize: maxSize,
	})
}

func TestLocalMediaStorageSave(t *testing.T) {
	storage := newTestStorage(t, 1<<20)

	t.Run("ImageRoundTrip", func(t *testing.T) {
		stored, err := storage.Save(bytes.NewReader(jpegBytes), "photo.jpg")
		require.NoError(t, err)

		assert.Equal(t, media.KindImage, stored.Kind)
		assert.Equal(t, "image/jpeg", stored.MimeType)
		assert.Equal(t, int64(len(jpegBytes)), stored.SizeBytes)
		assert.True(t, strings.HasPrefix(stored.URL, "/uploads/"))
		assert.True(t, strings.HasSuffix(stored.StoredPath, ".jpg"))

		filename, contentType, data, err := storage.Read(stored.StoredPath)
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(filename, ".jpg"))
		assert.Equal(t, "image/jpeg", contentType)
		assert.Equal(t, jpegBytes, data)
	})

	t.Run("ReadByURLPath", func(t *testing.T) {
		// The wildcard segment of the public URL is the stored path
		stored, err := storage.Save(bytes.NewReader(jpegBytes), "photo.jpg")
		require.NoError(t, err)

		wildcard := strings.TrimPrefix(stored.URL, "/uploads/")
		assert.Equal(t, stored.StoredPath, wildcard)

		_, contentType, data, err := storage.Read(wildcard)
		require.NoError(t, err)
		assert.Equal(t, "image/jpeg", contentType)
		assert.Equal(t, jpegBytes, data)
	})

	t.Run("VideoKind", func(t *testing.T) {
		// Opaque binary sniffs as octet-stream; the extension decides
		payload := bytes.Repeat([]byte{0x00, 0x01, 0x02, 0x03}, 16)
		stored, err := storage.Save(bytes.NewReader(payload), "clip.mp4")
		require.NoError(t, err)
		assert.Equal(t, media.KindVideo, stored.Kind)
	})

	t.Run("UnsupportedExtension", func(t *testing.T) {
		_, err := storage.Save(bytes.NewReader(jpegBytes), "report.pdf")
		assert.ErrorIs(t, err, ErrUnsupportedMediaType)
	})

	t.Run("ContentMismatch", func(t *testing.T) {
		_, err := storage.Save(strings.NewReader("<html><body>hi</body></html>"), "photo.jpg")
		assert.ErrorIs(t, err, ErrUnsupportedMediaType)
	})

	t.Run("Remove", func(t *testing.T) {
		stored, err := storage.Save(bytes.NewReader(jpegBytes), "photo.jpg")
		require.NoError(t, err)

		require.NoError(t, storage.Remove(stored.StoredPath))
		_, _, _, err = storage.Read(stored.StoredPath)
		assert.Error(t, err)
	})
}

func TestLocalMediaStorageSizeLimit(t *testing.T) {
	storage := newTestStorage(t, 16)

	_, err := storage.Save(bytes.NewReader(jpegBytes), "photo.jpg")
	assert.ErrorIs(t, err, ErrMediaTooLarge)
}

func TestLocalMediaStoragePathSanitization(t *testing.T) {
	storage := newTestStorage(t, 1<<20)

	for _, path := range []string{
		"",
		"/etc/passwd",
		"..",
		"../secrets.txt",
		"2026-01-05/../../secrets.txt",
		"a/../../../etc/passwd",
	} {
		_, _, _, err := storage.Read(path)
		assert.ErrorIs(t, err, ErrInvalidMediaPath, "path %q", path)
	}

	// A well-formed path that simply does not exist is not a path error
	_, _, _, err := storage.Read("2026-01-05/missing.jpg")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidMediaPath)
}
