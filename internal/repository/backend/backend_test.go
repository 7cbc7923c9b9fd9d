package backend

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workspacemanager/internal/config"
	"workspacemanager/internal/domain/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOpenMemory(t *testing.T) {
	settings, err := Open(context.Background(), &config.Config{SettingsBackend: config.BackendMemory}, testLogger())
	require.NoError(t, err)
	defer settings.Close()

	assert.Nil(t, settings.Watch)
	require.NoError(t, settings.Repo.Update(context.Background(), models.FilesSection, models.ExcludeKey,
		models.ExcludeMap{"a": true}, models.ScopeWorkspace))
}

func TestOpenYAML(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{
		SettingsBackend:  config.BackendYAML,
		SettingsFile:     filepath.Join(dir, "workspace.yaml"),
		UserSettingsFile: filepath.Join(dir, "user.yaml"),
		SettingsWatch:    true,
	}

	settings, err := Open(context.Background(), cfg, testLogger())
	require.NoError(t, err)
	defer settings.Close()
	assert.NotNil(t, settings.Watch)

	ctx := context.Background()
	err = settings.TxManager.ExecTx(ctx, func(txCtx context.Context) error {
		return settings.Repo.Update(txCtx, models.FilesSection, models.ExcludeKey,
			models.ExcludeMap{"b": true}, models.ScopeUser)
	})
	require.NoError(t, err)

	_, err = os.Stat(cfg.UserSettingsFile)
	assert.NoError(t, err)
	_, err = os.Stat(cfg.SettingsFile)
	assert.True(t, os.IsNotExist(err))
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), &config.Config{SettingsBackend: "redis"}, testLogger())
	assert.Error(t, err)
}
