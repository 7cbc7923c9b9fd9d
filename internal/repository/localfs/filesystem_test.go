package localfs

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workspacemanager/internal/domain"
	"workspacemanager/internal/domain/models"
)

func TestReadDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "src"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("hi"), 0644))
	require.NoError(t, os.Symlink(filepath.Join(dir, "src"), filepath.Join(dir, "link")))

	entries, err := New().ReadDirectory(context.Background(), dir)
	require.NoError(t, err)

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	assert.Equal(t, []models.DirEntry{
		{Name: "README.md", Type: models.EntryFile},
		{Name: "link", Type: models.EntrySymlink},
		{Name: "src", Type: models.EntryDirectory},
	}, entries)
}

func TestReadDirectory_Missing(t *testing.T) {
	_, err := New().ReadDirectory(context.Background(), filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReadDirectory_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New().ReadDirectory(ctx, t.TempDir())
	assert.ErrorIs(t, err, context.Canceled)
}
