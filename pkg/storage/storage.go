// Package storage provides file storage for uploaded transcripts and
// generated reports.
package storage

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
)

// FileInfo contains metadata about a stored file
type FileInfo struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	Path        string    `json:"path"` // Internal storage path
	CreatedAt   time.Time `json:"created_at"`
}

// Storage defines the interface for file storage operations. Files are
// grouped per transcript upload so a new upload never clobbers reports
// generated for an earlier one.
type Storage interface {
	// Upload stores a file under the given transcript and returns its metadata
	Upload(ctx context.Context, transcriptID uuid.UUID, filename string, contentType string, r io.Reader) (*FileInfo, error)

	// Download retrieves a file by its ID
	Download(ctx context.Context, transcriptID uuid.UUID, fileID uuid.UUID) (io.ReadCloser, *FileInfo, error)

	// Delete removes a file by its ID
	Delete(ctx context.Context, transcriptID uuid.UUID, fileID uuid.UUID) error

	// List returns all files stored for a transcript
	List(ctx context.Context, transcriptID uuid.UUID) ([]*FileInfo, error)

	// GetInfo returns metadata for a file without downloading
	GetInfo(ctx context.Context, transcriptID uuid.UUID, fileID uuid.UUID) (*FileInfo, error)

	// GetReader returns a reader for a file (for streaming processing)
	GetReader(ctx context.Context, transcriptID uuid.UUID, fileID uuid.UUID) (io.ReadCloser, error)

	// Prune removes transcript groups whose newest file is older than the
	// retention window and returns how many groups were removed
	Prune(ctx context.Context, olderThan time.Duration) (int, error)
}
