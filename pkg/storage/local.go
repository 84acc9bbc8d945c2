package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LocalStorage implements Storage using the local filesystem
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a new local filesystem storage
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &LocalStorage{basePath: basePath}, nil
}

// Upload stores a file and returns its metadata
func (s *LocalStorage) Upload(ctx context.Context, transcriptID uuid.UUID, filename string, contentType string, r io.Reader) (*FileInfo, error) {
	fileID := uuid.New()

	dir := filepath.Join(s.basePath, transcriptID.String())
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create transcript directory: %w", err)
	}

	// Sanitize filename and add UUID prefix for uniqueness
	safeFilename := sanitizeFilename(filename)
	storedFilename := fmt.Sprintf("%s_%s", fileID.String()[:8], safeFilename)
	filePath := filepath.Join(dir, storedFilename)

	f, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	size, err := io.Copy(f, r)
	if err != nil {
		os.Remove(filePath) // Cleanup on error
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	info := &FileInfo{
		ID:          fileID,
		Name:        filename,
		Size:        size,
		ContentType: contentType,
		Path:        storedFilename,
		CreatedAt:   time.Now(),
	}

	if err := s.saveMetadata(transcriptID, fileID, info); err != nil {
		os.Remove(filePath) // Cleanup on error
		return nil, err
	}

	return info, nil
}

// Download retrieves a file by its ID
func (s *LocalStorage) Download(ctx context.Context, transcriptID uuid.UUID, fileID uuid.UUID) (io.ReadCloser, *FileInfo, error) {
	info, err := s.GetInfo(ctx, transcriptID, fileID)
	if err != nil {
		return nil, nil, err
	}

	filePath := filepath.Join(s.basePath, transcriptID.String(), info.Path)
	f, err := os.Open(filePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}

	return f, info, nil
}

// Delete removes a file by its ID
func (s *LocalStorage) Delete(ctx context.Context, transcriptID uuid.UUID, fileID uuid.UUID) error {
	info, err := s.GetInfo(ctx, transcriptID, fileID)
	if err != nil {
		return err
	}

	filePath := filepath.Join(s.basePath, transcriptID.String(), info.Path)
	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	metaPath := filepath.Join(s.basePath, transcriptID.String(), ".meta", fileID.String()+".json")
	os.Remove(metaPath)

	return nil
}

// List returns all files stored for a transcript
func (s *LocalStorage) List(ctx context.Context, transcriptID uuid.UUID) ([]*FileInfo, error) {
	metaDir := filepath.Join(s.basePath, transcriptID.String(), ".meta")
	if _, err := os.Stat(metaDir); os.IsNotExist(err) {
		return []*FileInfo{}, nil
	}

	entries, err := os.ReadDir(metaDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list metadata: %w", err)
	}

	files := make([]*FileInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		fileID := strings.TrimSuffix(entry.Name(), ".json")
		id, err := uuid.Parse(fileID)
		if err != nil {
			continue
		}

		info, err := s.GetInfo(ctx, transcriptID, id)
		if err != nil {
			continue
		}
		files = append(files, info)
	}

	return files, nil
}

// GetInfo returns metadata for a file without downloading
func (s *LocalStorage) GetInfo(ctx context.Context, transcriptID uuid.UUID, fileID uuid.UUID) (*FileInfo, error) {
	metaPath := filepath.Join(s.basePath, transcriptID.String(), ".meta", fileID.String()+".json")

	data, err := os.ReadFile(metaPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s", fileID)
		}
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}

	var info FileInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("failed to parse metadata: %w", err)
	}

	return &info, nil
}

// GetReader returns a reader for a file (for streaming processing)
func (s *LocalStorage) GetReader(ctx context.Context, transcriptID uuid.UUID, fileID uuid.UUID) (io.ReadCloser, error) {
	info, err := s.GetInfo(ctx, transcriptID, fileID)
	if err != nil {
		return nil, err
	}

	filePath := filepath.Join(s.basePath, transcriptID.String(), info.Path)
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return f, nil
}

// Prune removes transcript directories whose contents have not changed
// within the retention window
func (s *LocalStorage) Prune(ctx context.Context, olderThan time.Duration) (int, error) {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return 0, fmt.Errorf("failed to list storage directory: %w", err)
	}

	cutoff := time.Now().Add(-olderThan)
	removed := 0
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if !entry.IsDir() {
			continue
		}
		if _, err := uuid.Parse(entry.Name()); err != nil {
			continue
		}

		dir := filepath.Join(s.basePath, entry.Name())
		newest, err := newestModTime(dir)
		if err != nil || !newest.Before(cutoff) {
			continue
		}
		if err := os.RemoveAll(dir); err != nil {
			return removed, fmt.Errorf("failed to remove transcript directory: %w", err)
		}
		removed++
	}
	return removed, nil
}

// newestModTime walks one transcript directory and returns the most recent
// modification time found. Generated reports land after the upload, so the
// newest file decides whether the whole group is stale.
func newestModTime(dir string) (time.Time, error) {
	var newest time.Time
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.ModTime().After(newest) {
			newest = info.ModTime()
		}
		return nil
	})
	return newest, err
}

// saveMetadata saves file metadata to a JSON file
func (s *LocalStorage) saveMetadata(transcriptID, fileID uuid.UUID, info *FileInfo) error {
	metaDir := filepath.Join(s.basePath, transcriptID.String(), ".meta")
	if err := os.MkdirAll(metaDir, 0755); err != nil {
		return fmt.Errorf("failed to create metadata directory: %w", err)
	}

	metaPath := filepath.Join(metaDir, fileID.String()+".json")
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	if err := os.WriteFile(metaPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}

	return nil
}

// sanitizeFilename removes unsafe characters from filenames
func sanitizeFilename(name string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		"..", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
	)
	return replacer.Replace(name)
}
