package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/juicebox-at/limited-builder/config"
)

// StorageService stores rendered creation images and returns their public URL.
type StorageService interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// NewStorageService builds the configured storage backend
func NewStorageService(cfg *config.StorageConfig) (StorageService, error) {
	switch cfg.Provider {
	case "bucket":
		return NewBucketStorageService(cfg), nil
	case "disk":
		return NewDiskStorageService(cfg), nil
	default:
		return nil, fmt.Errorf("unknown storage provider: %s", cfg.Provider)
	}
}

// BucketStorageService uploads to an HTTP object-storage bucket API
type BucketStorageService struct {
	config *config.StorageConfig
	client *http.Client
}

// NewBucketStorageService creates a bucket-backed storage service
func NewBucketStorageService(cfg *config.StorageConfig) *BucketStorageService {
	return &BucketStorageService{
		config: cfg,
		client: &http.Client{},
	}
}

// Upload writes the object and returns its public URL
func (s *BucketStorageService) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	endpoint := fmt.Sprintf("%s/object/%s/%s",
		strings.TrimSuffix(s.config.BaseURL, "/"),
		s.config.Bucket,
		url.PathEscape(key),
	)

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+s.config.ServiceKey)
	req.Header.Set("x-upsert", "true")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("upload returned %d: %s", resp.StatusCode, string(detail))
	}

	return s.publicURL(key), nil
}

func (s *BucketStorageService) publicURL(key string) string {
	if s.config.PublicPrefix != "" {
		return strings.TrimSuffix(s.config.PublicPrefix, "/") + "/" + key
	}
	return fmt.Sprintf("%s/object/public/%s/%s",
		strings.TrimSuffix(s.config.BaseURL, "/"),
		s.config.Bucket,
		key,
	)
}

// DiskStorageService writes images to the local filesystem, for single-node
// deployments where a reverse proxy serves the directory.
type DiskStorageService struct {
	config *config.StorageConfig
}

// NewDiskStorageService creates a disk-backed storage service
func NewDiskStorageService(cfg *config.StorageConfig) *DiskStorageService {
	return &DiskStorageService{config: cfg}
}

// Upload writes the file under the configured directory
func (s *DiskStorageService) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	cleanKey := filepath.Base(filepath.Clean(key))
	if cleanKey == "." || cleanKey == string(filepath.Separator) {
		return "", fmt.Errorf("invalid storage key: %s", key)
	}

	if err := os.MkdirAll(s.config.DiskPath, 0o755); err != nil {
		return "", fmt.Errorf("failed to create image directory: %w", err)
	}

	fullPath := filepath.Join(s.config.DiskPath, cleanKey)
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image file: %w", err)
	}

	return strings.TrimSuffix(s.config.DiskBaseURL, "/") + "/" + cleanKey, nil
}

// MockStorageService implements StorageService for testing
type MockStorageService struct {
	Err      error
	URL      string
	Uploads  map[string][]byte
	LastType string
}

// Upload records the object and returns the configured URL
func (m *MockStorageService) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	if m.Uploads == nil {
		m.Uploads = make(map[string][]byte)
	}
	m.Uploads[key] = data
	m.LastType = contentType
	if m.URL != "" {
		return m.URL, nil
	}
	return "https://storage.example.com/" + key, nil
}
