package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workspacemanager/internal/domain/models"
)

// setupWorkspace creates a workspace root and points the environment at it
func setupWorkspace(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	for _, dir := range []string{"a/x", "a/y", "b"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, dir), 0o755))
	}
	require.NoError(t, os.WriteFile(filepath.Join(root, "a", "y", "file.txt"), []byte("y"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "top.txt"), []byte("top"), 0o644))

	settingsFile := filepath.Join(t.TempDir(), "settings.yaml")
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("WORKSPACE_ROOTS", root)
	t.Setenv("SETTINGS_BACKEND", "yaml")
	t.Setenv("SETTINGS_FILE", settingsFile)
	t.Setenv("USER_SETTINGS_FILE", "")
	t.Setenv("SETTINGS_WATCH", "false")
	return settingsFile
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func excludes(t *testing.T) models.ExcludeMap {
	t.Helper()

	out, err := execute(t, "excludes", "--json")
	require.NoError(t, err)
	var m models.ExcludeMap
	require.NoError(t, json.Unmarshal([]byte(out), &m))
	return m
}

func TestHideShowPersist(t *testing.T) {
	settingsFile := setupWorkspace(t)

	out, err := execute(t, "hide", "a")
	require.NoError(t, err)
	assert.Equal(t, "+ a\n", out)
	assert.Equal(t, models.ExcludeMap{"a": true}, excludes(t))

	_, err = execute(t, "show", "a/y/file.txt")
	require.NoError(t, err)
	assert.Equal(t, models.ExcludeMap{"a/x": true}, excludes(t))

	data, err := os.ReadFile(settingsFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "a/x: true")
}

func TestListSkipsHidden(t *testing.T) {
	setupWorkspace(t)

	_, err := execute(t, "hide", "b")
	require.NoError(t, err)

	out, err := execute(t, "ls")
	require.NoError(t, err)
	assert.Equal(t, "  a/\n  top.txt\n", out)

	out, err = execute(t, "ls", "--all")
	require.NoError(t, err)
	assert.Equal(t, "  a/\nh b/\n  top.txt\n", out)
}

func TestHideSiblingsAndReset(t *testing.T) {
	setupWorkspace(t)

	_, err := execute(t, "hide-siblings", "a")
	require.NoError(t, err)
	assert.Equal(t, models.ExcludeMap{"b": true, "top.txt": true}, excludes(t))

	out, err := execute(t, "reset")
	require.NoError(t, err)
	assert.Equal(t, "- b\n- top.txt\n", out)
	assert.Empty(t, excludes(t))
}

func TestShowNothingHidden(t *testing.T) {
	setupWorkspace(t)

	out, err := execute(t, "show", "a")
	require.NoError(t, err)
	assert.Equal(t, "no changes\n", out)
}

func TestRootCannotBeHidden(t *testing.T) {
	setupWorkspace(t)

	_, err := execute(t, "hide", "")
	assert.Error(t, err)
}

func TestProfiles(t *testing.T) {
	setupWorkspace(t)

	_, err := execute(t, "profiles", "create", "focus")
	require.NoError(t, err)
	_, err = execute(t, "hide", "b")
	require.NoError(t, err)

	_, err = execute(t, "profiles", "copy", "focus", "backup")
	require.NoError(t, err)

	out, err := execute(t, "profiles", "list")
	require.NoError(t, err)
	assert.Equal(t, "  backup\n* focus\n", out)

	_, err = execute(t, "profiles", "switch", "empty")
	require.NoError(t, err)
	assert.Empty(t, excludes(t))

	out, err = execute(t, "profiles", "switch", "backup")
	require.NoError(t, err)
	assert.Equal(t, "selected backup (1 entries)\n", out)
	assert.Equal(t, models.ExcludeMap{"b": true}, excludes(t))

	_, err = execute(t, "profiles", "delete", "empty")
	require.NoError(t, err)

	out, err = execute(t, "profiles", "list", "--json")
	require.NoError(t, err)
	var list models.ProfileList
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	require.NotNil(t, list.Selected)
	assert.Equal(t, "backup", *list.Selected)
	assert.Len(t, list.Profiles, 2)
}
