package seed

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workspacemanager/internal/domain"
	"workspacemanager/internal/domain/models"
	"workspacemanager/internal/repository/memory"
)

func newSeeder() (*Seeder, *memory.Store) {
	store := memory.NewStore()
	return NewSeeder(store, store, slog.New(slog.NewTextHandler(io.Discard, nil))), store
}

func TestSeedDefaultFixture(t *testing.T) {
	ctx := context.Background()
	seeder, store := newSeeder()

	require.NoError(t, seeder.Seed(ctx, DefaultFixture()))

	var excludes models.ExcludeMap
	found, err := store.Get(ctx, models.FilesSection, models.ExcludeKey, &excludes)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, DefaultFixture().Profiles["focus"], excludes)

	var profiles models.Profiles
	_, err = store.Get(ctx, models.ManagerSection, models.ProfilesKey, &profiles)
	require.NoError(t, err)
	assert.Equal(t, []string{"everything", "focus"}, profiles.IDs())

	var selected string
	_, err = store.Get(ctx, models.ManagerSection, models.SelectedKey, &selected)
	require.NoError(t, err)
	assert.Equal(t, "focus", selected)
}

func TestSeedRejectsInvalidFixture(t *testing.T) {
	seeder, store := newSeeder()

	tests := []struct {
		name    string
		fixture *Fixture
		target  error
	}{
		{"leading slash", &Fixture{Excludes: models.ExcludeMap{"/abs": true}}, domain.ErrValidation},
		{"bad profile key", &Fixture{Profiles: models.Profiles{"p": {"dir/": true}}}, domain.ErrValidation},
		{"unknown selection", &Fixture{Selected: "missing"}, domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := seeder.Seed(context.Background(), tt.fixture)
			assert.True(t, errors.Is(err, tt.target), "got %v", err)
		})
	}

	// Nothing was written
	assert.Empty(t, store.Snapshot(models.ScopeWorkspace))
}

func TestLoadFixtureAndClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
excludes:
  build: true
  "**/*.log": true
profiles:
  release:
    build: true
selected: release
`), 0o644))

	fixture, err := LoadFixture(path)
	require.NoError(t, err)
	assert.Equal(t, models.ExcludeMap{"build": true, "**/*.log": true}, fixture.Excludes)

	ctx := context.Background()
	seeder, store := newSeeder()
	require.NoError(t, seeder.Seed(ctx, fixture))
	require.NoError(t, seeder.Clear(ctx))
	assert.Empty(t, store.Snapshot(models.ScopeWorkspace))

	_, err = LoadFixture(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
