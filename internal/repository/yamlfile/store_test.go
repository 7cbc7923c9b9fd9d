package yamlfile

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"workspacemanager/internal/domain/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOpen_MissingFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".workspace", "settings.yaml")
	s, err := Open(map[models.Scope]string{models.ScopeWorkspace: path}, testLogger())
	require.NoError(t, err)

	var excludes models.ExcludeMap
	found, err := s.Get(context.Background(), models.FilesSection, models.ExcludeKey, &excludes)
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoFileExists(t, path)
}

func TestUpdate_WritesYAML(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), ".workspace", "settings.yaml")
	s, err := Open(map[models.Scope]string{models.ScopeWorkspace: path}, testLogger())
	require.NoError(t, err)

	err = s.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.Update(txCtx, models.FilesSection, models.ExcludeKey,
			models.ExcludeMap{"node_modules": true, "**/*.log": true}, models.ScopeWorkspace); err != nil {
			return err
		}
		return s.Update(txCtx, models.ManagerSection, models.SelectedKey, "default", models.ScopeWorkspace)
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc map[string]map[string]interface{}
	require.NoError(t, yaml.Unmarshal(data, &doc))
	assert.Equal(t, map[string]interface{}{"node_modules": true, "**/*.log": true}, doc["files"]["exclude"])
	assert.Equal(t, "default", doc["workspace-manager"]["selected-profile"])

	reopened, err := Open(map[models.Scope]string{models.ScopeWorkspace: path}, testLogger())
	require.NoError(t, err)
	var excludes models.ExcludeMap
	found, err := reopened.Get(ctx, models.FilesSection, models.ExcludeKey, &excludes)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, models.ExcludeMap{"node_modules": true, "**/*.log": true}, excludes)
}

func TestUserScopeFallback(t *testing.T) {
	dir := t.TempDir()
	userPath := filepath.Join(dir, "user.yaml")
	require.NoError(t, os.WriteFile(userPath, []byte("files:\n  exclude:\n    \"**/.git\": true\n"), 0644))

	s, err := Open(map[models.Scope]string{
		models.ScopeWorkspace: filepath.Join(dir, "ws.yaml"),
		models.ScopeUser:      userPath,
	}, testLogger())
	require.NoError(t, err)

	var excludes models.ExcludeMap
	found, err := s.Get(context.Background(), models.FilesSection, models.ExcludeKey, &excludes)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, models.ExcludeMap{"**/.git": true}, excludes)
}

func TestUpdate_ScopeWithoutFile(t *testing.T) {
	s, err := Open(map[models.Scope]string{
		models.ScopeWorkspace: filepath.Join(t.TempDir(), "ws.yaml"),
	}, testLogger())
	require.NoError(t, err)

	err = s.Update(context.Background(), "files", "exclude", map[string]bool{}, models.ScopeUser)
	assert.Error(t, err)
}

func TestOpen_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("files: [unclosed"), 0644))

	_, err := Open(map[models.Scope]string{models.ScopeWorkspace: path}, testLogger())
	assert.Error(t, err)
}

func TestReload_ExternalEdit(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "settings.yaml")
	s, err := Open(map[models.Scope]string{models.ScopeWorkspace: path}, testLogger())
	require.NoError(t, err)
	require.NoError(t, s.Update(ctx, models.FilesSection, models.ExcludeKey, models.ExcludeMap{"a": true}, models.ScopeWorkspace))

	var changed []string
	s.Subscribe(func(section, key string) { changed = append(changed, section+"."+key) })

	// Our own write is recognized and skipped.
	require.NoError(t, s.Reload(models.ScopeWorkspace))
	assert.Empty(t, changed)

	require.NoError(t, os.WriteFile(path, []byte("files:\n  exclude:\n    b: true\n"), 0644))
	require.NoError(t, s.Reload(models.ScopeWorkspace))
	assert.Equal(t, []string{"files.exclude"}, changed)

	var excludes models.ExcludeMap
	_, err = s.Get(ctx, models.FilesSection, models.ExcludeKey, &excludes)
	require.NoError(t, err)
	assert.Equal(t, models.ExcludeMap{"b": true}, excludes)
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("files:\n  exclude: {}\n"), 0644))
	s, err := Open(map[models.Scope]string{models.ScopeWorkspace: path}, testLogger())
	require.NoError(t, err)

	changed := make(chan string, 8)
	s.Subscribe(func(section, key string) { changed <- section + "." + key })
	require.NoError(t, s.Watch(ctx))

	require.NoError(t, os.WriteFile(path, []byte("files:\n  exclude:\n    docs: true\n"), 0644))

	select {
	case got := <-changed:
		assert.Equal(t, "files.exclude", got)
	case <-time.After(5 * time.Second):
		t.Fatal("settings change not observed")
	}
}

func TestOpen_UnquotedNonStringKeys(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("files:\n  exclude:\n    build: true\n    2024: true\n    null: true\n"), 0644))

	s, err := Open(map[models.Scope]string{models.ScopeWorkspace: path}, testLogger())
	require.NoError(t, err)

	var excludes models.ExcludeMap
	found, err := s.Get(ctx, models.FilesSection, models.ExcludeKey, &excludes)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, models.ExcludeMap{"build": true, "2024": true, "null": true}, excludes)

	// Writing back keeps the keys as strings.
	require.NoError(t, s.Update(ctx, models.FilesSection, models.ExcludeKey, excludes, models.ScopeWorkspace))
	reopened, err := Open(map[models.Scope]string{models.ScopeWorkspace: path}, testLogger())
	require.NoError(t, err)
	var again models.ExcludeMap
	_, err = reopened.Get(ctx, models.FilesSection, models.ExcludeKey, &again)
	require.NoError(t, err)
	assert.Equal(t, excludes, again)
}

func TestWatch_CreatesMissingDirectory(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	path := filepath.Join(t.TempDir(), ".workspace", "settings.yaml")
	s, err := Open(map[models.Scope]string{models.ScopeWorkspace: path}, testLogger())
	require.NoError(t, err)

	changed := make(chan string, 8)
	s.Subscribe(func(section, key string) { changed <- section + "." + key })
	require.NoError(t, s.Watch(ctx))

	require.NoError(t, os.WriteFile(path, []byte("files:\n  exclude:\n    docs: true\n"), 0644))

	select {
	case got := <-changed:
		assert.Equal(t, "files.exclude", got)
	case <-time.After(5 * time.Second):
		t.Fatal("settings change not observed")
	}
}
