package storage

import (
	"context"
	"errors"
	"io"
)

var (
	ErrFileNotFound = errors.New("file not found")
	ErrInvalidPath  = errors.New("invalid file path")
)

// FileStorage stores generated documents such as invoice PDFs.
type FileStorage interface {
	// Upload writes the file and returns its storage key.
	Upload(ctx context.Context, file io.Reader, path string, contentType string) (string, error)

	Download(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete is a no-op when the file does not exist.
	Delete(ctx context.Context, path string) error

	GetURL(ctx context.Context, path string) (string, error)

	Exists(ctx context.Context, path string) (bool, error)
}
