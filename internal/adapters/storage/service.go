// Package storage provides a small interface over S3-compatible object
// storage. The async lead import keeps uploaded CSV files here until the
// worker has processed them.
package storage

import (
	"context"
	"io"

	"leadflow_backend/platform/config"
)

// StorageService defines the object storage operations the application uses.
type StorageService interface {
	// UploadFile stores reader under folder with a unique suffix and returns the file key.
	UploadFile(ctx context.Context, bucket, folder, fileName, contentType string, reader io.Reader, size int64) (string, error)

	// DownloadFile downloads a file directly from storage.
	// The caller is responsible for closing the returned io.ReadCloser.
	DownloadFile(ctx context.Context, bucket, fileKey string) (io.ReadCloser, error)

	// DeleteObject removes an object from storage.
	DeleteObject(ctx context.Context, bucket, fileKey string) error

	// EnsureBucketExists creates the bucket if it doesn't exist.
	EnsureBucketExists(ctx context.Context, bucket string) error

	// ValidateContentType checks if the content type is allowed.
	ValidateContentType(contentType string) error

	// ValidateFileSize checks if the file size is within limits.
	ValidateFileSize(sizeBytes int64) error
}

// Config defines the configuration interface for storage.
type Config = config.MinIOConfig
