package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage(t *testing.T) {
	ctx := context.Background()

	t.Run("upload then download round-trips", func(t *testing.T) {
		store, err := NewLocalStorage(t.TempDir())
		require.NoError(t, err)

		transcriptID := uuid.New()
		info, err := store.Upload(ctx, transcriptID, "transcript.pdf", "application/pdf", strings.NewReader("%PDF-1.4"))
		require.NoError(t, err)
		assert.Equal(t, "transcript.pdf", info.Name)
		assert.Equal(t, int64(8), info.Size)

		rc, got, err := store.Download(ctx, transcriptID, info.ID)
		require.NoError(t, err)
		defer rc.Close()

		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, "%PDF-1.4", string(data))
		assert.Equal(t, info.ID, got.ID)
	})

	t.Run("list groups files per transcript", func(t *testing.T) {
		store, err := NewLocalStorage(t.TempDir())
		require.NoError(t, err)

		transcriptID := uuid.New()
		_, err = store.Upload(ctx, transcriptID, "transcript.pdf", "application/pdf", strings.NewReader("pdf"))
		require.NoError(t, err)
		_, err = store.Upload(ctx, transcriptID, "report.xlsx", "application/octet-stream", strings.NewReader("xlsx"))
		require.NoError(t, err)
		_, err = store.Upload(ctx, uuid.New(), "other.pdf", "application/pdf", strings.NewReader("pdf"))
		require.NoError(t, err)

		files, err := store.List(ctx, transcriptID)
		require.NoError(t, err)
		assert.Len(t, files, 2)
	})

	t.Run("filenames are sanitized", func(t *testing.T) {
		base := t.TempDir()
		store, err := NewLocalStorage(base)
		require.NoError(t, err)

		transcriptID := uuid.New()
		info, err := store.Upload(ctx, transcriptID, "../../etc/passwd", "text/plain", strings.NewReader("x"))
		require.NoError(t, err)

		assert.NotContains(t, info.Path, "..")
		_, err = os.Stat(filepath.Join(base, transcriptID.String(), info.Path))
		assert.NoError(t, err)
	})

	t.Run("prune removes only stale transcripts", func(t *testing.T) {
		base := t.TempDir()
		store, err := NewLocalStorage(base)
		require.NoError(t, err)

		staleID := uuid.New()
		_, err = store.Upload(ctx, staleID, "old.pdf", "application/pdf", strings.NewReader("pdf"))
		require.NoError(t, err)
		freshID := uuid.New()
		_, err = store.Upload(ctx, freshID, "new.pdf", "application/pdf", strings.NewReader("pdf"))
		require.NoError(t, err)

		backdate(t, filepath.Join(base, staleID.String()), time.Now().Add(-48*time.Hour))

		removed, err := store.Prune(ctx, 24*time.Hour)
		require.NoError(t, err)
		assert.Equal(t, 1, removed)

		_, err = os.Stat(filepath.Join(base, staleID.String()))
		assert.True(t, os.IsNotExist(err))
		_, err = os.Stat(filepath.Join(base, freshID.String()))
		assert.NoError(t, err)
	})

	t.Run("prune skips foreign directories", func(t *testing.T) {
		base := t.TempDir()
		store, err := NewLocalStorage(base)
		require.NoError(t, err)

		foreign := filepath.Join(base, "not-a-transcript")
		require.NoError(t, os.Mkdir(foreign, 0755))
		backdate(t, foreign, time.Now().Add(-48*time.Hour))

		removed, err := store.Prune(ctx, 24*time.Hour)
		require.NoError(t, err)
		assert.Zero(t, removed)

		_, err = os.Stat(foreign)
		assert.NoError(t, err)
	})
}

// backdate rewinds the mod time of a directory tree so retention tests do
// not have to sleep.
func backdate(t *testing.T, dir string, to time.Time) {
	t.Helper()
	err := filepath.WalkDir(dir, func(path string, _ os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		return os.Chtimes(path, to, to)
	})
	require.NoError(t, err)
}
