// Package seed loads exclude maps and profiles into a settings store.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"workspacemanager/internal/domain"
	"workspacemanager/internal/domain/models"
	"workspacemanager/internal/domain/repositories"
	"workspacemanager/internal/service/profile"
	"workspacemanager/internal/service/visibility"
)

// Fixture is the seed file layout
type Fixture struct {
	Excludes models.ExcludeMap `yaml:"excludes"`
	Profiles models.Profiles   `yaml:"profiles"`
	Selected string            `yaml:"selected"`
}

// DefaultFixture returns the sample data used when no seed file is given
func DefaultFixture() *Fixture {
	focus := models.ExcludeMap{
		"docs":              true,
		"scripts":           true,
		"**/node_modules":   true,
		"**/*.generated.go": true,
	}
	return &Fixture{
		Excludes: focus.Clone(),
		Profiles: models.Profiles{
			"everything": {"**/node_modules": true},
			"focus":      focus,
		},
		Selected: "focus",
	}
}

// LoadFixture reads a seed file
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: parse seed file: %v", domain.ErrValidation, err)
	}
	return &f, nil
}

// Validate checks every exclude key and the selected profile
func (f *Fixture) Validate() error {
	for _, key := range f.Excludes.Keys() {
		if err := visibility.ValidateKey(key); err != nil {
			return err
		}
	}
	for id, snapshot := range f.Profiles {
		if id == "" {
			return domain.NewValidation("profile id must not be empty")
		}
		for _, key := range snapshot.Keys() {
			if err := visibility.ValidateKey(key); err != nil {
				return fmt.Errorf("profile %s: %w", id, err)
			}
		}
	}
	if f.Selected != "" {
		if _, ok := f.Profiles[f.Selected]; !ok {
			return domain.NewNotFound("profile", f.Selected)
		}
	}
	return nil
}

// Seeder writes fixtures through the settings repository
type Seeder struct {
	repo      repositories.ConfigurationRepository
	txManager repositories.TransactionManager
	excludes  *visibility.ExcludeStore
	profiles  *profile.Store
	logger    *slog.Logger
}

// NewSeeder creates a new seeder
func NewSeeder(repo repositories.ConfigurationRepository, txManager repositories.TransactionManager, logger *slog.Logger) *Seeder {
	excludes := visibility.NewExcludeStore(repo, logger)
	return &Seeder{
		repo:      repo,
		txManager: txManager,
		excludes:  excludes,
		profiles:  profile.NewStore(repo, excludes, txManager, logger),
		logger:    logger,
	}
}

// Seed replaces the exclude map, saves every profile and sets the selection
// in a single transaction
func (s *Seeder) Seed(ctx context.Context, f *Fixture) error {
	if err := f.Validate(); err != nil {
		return err
	}

	return s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.excludes.Replace(txCtx, f.Excludes); err != nil {
			return err
		}
		for _, id := range f.Profiles.IDs() {
			if err := s.profiles.Save(txCtx, id, f.Profiles[id]); err != nil {
				return err
			}
			s.logger.Info("profile seeded", "id", id, "entries", len(f.Profiles[id]))
		}

		var selected interface{}
		if f.Selected != "" {
			selected = f.Selected
		}
		if err := s.repo.Update(txCtx, models.ManagerSection, models.SelectedKey, selected, models.ScopeWorkspace); err != nil {
			return fmt.Errorf("update selected profile: %w", err)
		}
		return nil
	})
}

// Clear removes the exclude map, every profile and the selection
func (s *Seeder) Clear(ctx context.Context) error {
	return s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		for _, key := range [][2]string{
			{models.FilesSection, models.ExcludeKey},
			{models.ManagerSection, models.ProfilesKey},
			{models.ManagerSection, models.SelectedKey},
		} {
			if err := s.repo.Update(txCtx, key[0], key[1], nil, models.ScopeWorkspace); err != nil {
				return fmt.Errorf("clear %s.%s: %w", key[0], key[1], err)
			}
		}
		return nil
	})
}
