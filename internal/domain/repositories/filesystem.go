package repositories

import (
	"context"

	"workspacemanager/internal/domain/models"
)

// FileSystem lists directories for the lazily loaded file tree
type FileSystem interface {
	// ReadDirectory returns the entries of dir in the order the filesystem reports them
	ReadDirectory(ctx context.Context, dir string) ([]models.DirEntry, error)
}
