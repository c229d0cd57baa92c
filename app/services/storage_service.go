// Package services provides external service integrations and technical concerns like notifications and tokens
package services

import (
	"bytes"
	"errors"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/kasraden/bazaar-support/config"
	"github.com/kasraden/bazaar-support/media"
	"github.com/kasraden/bazaar-support/utils"
)

// Media storage error constants
var (
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrMediaTooLarge        = errors.New("media file too large")
	ErrInvalidMediaPath     = errors.New("invalid media path")
)

// StoredMedia describes a persisted upload.
type StoredMedia struct {
	StoredPath string
	URL        string
	MimeType   string
	SizeBytes  int64
	Kind       media.Kind
}

// MediaStorage persists ticket attachments and serves them back.
type MediaStorage interface {
	Save(reader io.Reader, originalFilename string) (*StoredMedia, error)
	Read(storedPath string) (filename, contentType string, data []byte, err error)
	Remove(storedPath string) error
}

// LocalMediaStorage writes uploads under a date-partitioned directory
// on local disk and serves them via a public base URL.
type LocalMediaStorage struct {
	uploadDir     string
	publicBaseURL string
	maxSize       int64
}

// NewLocalMediaStorage creates a local disk media storage
func NewLocalMediaStorage(cfg *config.StorageConfig) MediaStorage {
	return &LocalMediaStorage{
		uploadDir:     cfg.UploadDir,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		maxSize:       cfg.MaxUploadSize,
	}
}

// Save writes the upload to disk. The file extension decides the media
// kind; the sniffed content type must agree with it.
func (s *LocalMediaStorage) Save(reader io.Reader, originalFilename string) (*StoredMedia, error) {
	ext := strings.ToLower(filepath.Ext(originalFilename))
	if !media.IsKnownExt(originalFilename) {
		return nil, ErrUnsupportedMediaType
	}
	kind := media.Classify(originalFilename)

	head := make([]byte, 512)
	n, err := io.ReadFull(reader, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, err
	}
	head = head[:n]

	detected := http.DetectContentType(head)
	if detected != "application/octet-stream" && !strings.HasPrefix(detected, string(kind)+"/") {
		return nil, ErrUnsupportedMediaType
	}
	if detected == "application/octet-stream" {
		if fromExt := mime.TypeByExtension(ext); fromExt != "" {
			detected = fromExt
		}
	}

	dateDir := utils.UTCNow().Format("2006-01-02")
	baseDir := filepath.Join(s.uploadDir, dateDir)
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, err
	}

	filename := uuid.New().String() + ext
	fullPath := filepath.Join(baseDir, filename)
	dst, err := os.Create(fullPath)
	if err != nil {
		return nil, err
	}
	defer dst.Close()

	fullReader := io.MultiReader(bytes.NewReader(head), reader)
	limited := io.LimitReader(fullReader, s.maxSize+1)
	written, err := io.Copy(dst, limited)
	if err != nil {
		_ = os.Remove(fullPath)
		return nil, err
	}
	if written > s.maxSize {
		_ = os.Remove(fullPath)
		return nil, ErrMediaTooLarge
	}

	// Stored paths are relative to the upload dir, matching the wildcard
	// segment of the public URL, so serving reads by the same key.
	storedPath := dateDir + "/" + filename
	return &StoredMedia{
		StoredPath: storedPath,
		URL:        s.publicBaseURL + "/" + storedPath,
		MimeType:   detected,
		SizeBytes:  written,
		Kind:       kind,
	}, nil
}

// Read loads a stored file back from disk after path sanitization.
func (s *LocalMediaStorage) Read(storedPath string) (string, string, []byte, error) {
	cleanPath, err := s.sanitizePath(storedPath)
	if err != nil {
		return "", "", nil, err
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return "", "", nil, err
	}

	filename := filepath.Base(cleanPath)
	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename)))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return filename, contentType, data, nil
}

// Remove deletes a stored file.
func (s *LocalMediaStorage) Remove(storedPath string) error {
	cleanPath, err := s.sanitizePath(storedPath)
	if err != nil {
		return err
	}
	return os.Remove(cleanPath)
}

// sanitizePath resolves an upload-dir-relative path to a disk path,
// rejecting anything that escapes the upload dir.
func (s *LocalMediaStorage) sanitizePath(path string) (string, error) {
	if path == "" || filepath.IsAbs(filepath.FromSlash(path)) {
		return "", ErrInvalidMediaPath
	}
	cleaned := filepath.Clean(filepath.FromSlash(path))
	base := filepath.Clean(s.uploadDir)
	full := filepath.Join(base, cleaned)
	if !strings.HasPrefix(full, base+string(filepath.Separator)) {
		return "", ErrInvalidMediaPath
	}
	return full, nil
}

// MockMediaStorage implements MediaStorage for testing
type MockMediaStorage struct {
	Saved []StoredMedia
}

// NewMockMediaStorage creates a new mock media storage
func NewMockMediaStorage() *MockMediaStorage {
	return &MockMediaStorage{}
}

func (m *MockMediaStorage) Save(reader io.Reader, originalFilename string) (*StoredMedia, error) {
	if !media.IsKnownExt(originalFilename) {
		return nil, ErrUnsupportedMediaType
	}
	n, err := io.Copy(io.Discard, reader)
	if err != nil {
		return nil, err
	}
	stored := StoredMedia{
		StoredPath: "mock/" + originalFilename,
		URL:        "/uploads/mock/" + originalFilename,
		MimeType:   mime.TypeByExtension(strings.ToLower(filepath.Ext(originalFilename))),
		SizeBytes:  n,
		Kind:       media.Classify(originalFilename),
	}
	m.Saved = append(m.Saved, stored)
	return &stored, nil
}

func (m *MockMediaStorage) Read(storedPath string) (string, string, []byte, error) {
	return filepath.Base(storedPath), "application/octet-stream", nil, nil
}

func (m *MockMediaStorage) Remove(storedPath string) error {
	return nil
}
