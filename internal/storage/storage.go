package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/krkdev/contacts-api/internal/config"
)

// Storage defines the interface for file storage operations
type Storage interface {
	// Save stores a file at the given path
	Save(ctx context.Context, path string, file io.Reader) error

	// Delete removes a file at the given path
	Delete(ctx context.Context, path string) error

	// URL returns the public URL for accessing the file
	URL(path string) string
}

// New returns the Storage selected by cfg.StorageDriver.
func New(cfg *config.Config) (Storage, error) {
	switch cfg.StorageDriver {
	case config.StorageDriverLocal:
		return NewLocalStorage(cfg.PublicDir)
	case config.StorageDriverS3:
		return NewS3Storage(S3Config{
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Endpoint:  cfg.S3Endpoint,
			PublicURL: cfg.S3PublicURL,
		})
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
