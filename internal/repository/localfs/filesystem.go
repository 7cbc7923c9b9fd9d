package localfs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"workspacemanager/internal/domain"
	"workspacemanager/internal/domain/models"
	"workspacemanager/internal/domain/repositories"
)

// FileSystem lists directories on the local disk
type FileSystem struct{}

// New creates a local filesystem lister
func New() *FileSystem {
	return &FileSystem{}
}

// ReadDirectory returns the entries of dir in the order the OS reports them.
func (f *FileSystem) ReadDirectory(ctx context.Context, dir string) ([]models.DirEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.NewNotFound("directory", dir)
		}
		return nil, fmt.Errorf("read directory: %w", err)
	}

	result := make([]models.DirEntry, 0, len(entries))
	for _, entry := range entries {
		result = append(result, models.DirEntry{
			Name: entry.Name(),
			Type: entryType(entry.Type()),
		})
	}
	return result, nil
}

func entryType(mode fs.FileMode) models.EntryType {
	switch {
	case mode&fs.ModeSymlink != 0:
		return models.EntrySymlink
	case mode.IsDir():
		return models.EntryDirectory
	default:
		return models.EntryFile
	}
}

var _ repositories.FileSystem = (*FileSystem)(nil)
