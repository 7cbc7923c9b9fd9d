package visibility

import (
	"context"
	"fmt"
	"log/slog"

	"workspacemanager/internal/domain/models"
	"workspacemanager/internal/domain/repositories"
)

// ExcludeStore is the files.exclude view of the configuration repository.
// The map is shared with other consumers, so writes always start from the
// stored map and keep unrelated keys, globs included.
type ExcludeStore struct {
	repo   repositories.ConfigurationRepository
	logger *slog.Logger
}

// NewExcludeStore creates an exclude store backed by repo
func NewExcludeStore(repo repositories.ConfigurationRepository, logger *slog.Logger) *ExcludeStore {
	return &ExcludeStore{
		repo:   repo,
		logger: logger,
	}
}

// Get returns the current exclude map (never nil)
func (s *ExcludeStore) Get(ctx context.Context) (models.ExcludeMap, error) {
	excludes := models.ExcludeMap{}
	if _, err := s.repo.Get(ctx, models.FilesSection, models.ExcludeKey, &excludes); err != nil {
		return nil, fmt.Errorf("get excludes: %w", err)
	}
	if excludes == nil {
		excludes = models.ExcludeMap{}
	}
	return excludes, nil
}

// Replace overwrites the whole exclude map
func (s *ExcludeStore) Replace(ctx context.Context, excludes models.ExcludeMap) error {
	if excludes == nil {
		excludes = models.ExcludeMap{}
	}
	if err := s.repo.Update(ctx, models.FilesSection, models.ExcludeKey, excludes, models.ScopeWorkspace); err != nil {
		return fmt.Errorf("update excludes: %w", err)
	}
	return nil
}

// Merge re-reads the stored map, applies edits and writes the result back.
// Keys not named in edits are untouched.
func (s *ExcludeStore) Merge(ctx context.Context, edits models.Edits) (models.ExcludeMap, error) {
	current, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	merged := edits.Apply(current)
	if err := s.Replace(ctx, merged); err != nil {
		return nil, err
	}

	s.logger.Debug("excludes merged",
		"edits", len(edits),
		"entries", len(merged),
	)
	return merged, nil
}
