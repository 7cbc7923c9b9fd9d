package handler

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workspacemanager/internal/domain/models"
	"workspacemanager/internal/events"
	"workspacemanager/internal/repository/localfs"
	"workspacemanager/internal/repository/memory"
	"workspacemanager/internal/service/workspace"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "a", "x"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "a", "y"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), nil, 0644))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := memory.NewStore()
	broadcaster := events.NewBroadcaster()
	manager := workspace.NewManager(repo, repo, localfs.New(), []models.WorkspaceRoot{{Name: "ws", Dir: dir}}, broadcaster, logger)
	require.NoError(t, manager.Load(context.Background()))
	t.Cleanup(manager.Close)

	mux := http.NewServeMux()
	RegisterRoutes(mux, &Handlers{
		Tree:     NewTreeHandler(manager, logger),
		Profiles: NewProfileHandler(manager, logger),
		Events:   NewEventsHandler(broadcaster, nil, logger),
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func do(t *testing.T, server *httptest.Server, method, path string, body interface{}, dest interface{}) int {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, server.URL+path, reader)
	require.NoError(t, err)
	resp, err := server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if dest != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
	}
	return resp.StatusCode
}

func TestTreeRoutes(t *testing.T) {
	server := newTestServer(t)

	var children []models.TreeNode
	require.Equal(t, http.StatusOK, do(t, server, http.MethodGet, "/api/tree/children", nil, &children))
	require.Len(t, children, 2)
	assert.Equal(t, "a", children[0].Path)
	assert.Equal(t, models.CollapsibleCollapsed, children[0].Collapsible)
	assert.Equal(t, "b.txt", children[1].Path)

	require.Equal(t, http.StatusOK, do(t, server, http.MethodGet, "/api/tree/children?path=a", nil, &children))
	require.Len(t, children, 2)

	var hidden models.VisibilityResult
	require.Equal(t, http.StatusOK, do(t, server, http.MethodPost, "/api/tree/hide", map[string]string{"path": "a"}, &hidden))
	assert.Equal(t, models.ExcludeMap{"a": true}, hidden.Excludes)

	var shown models.VisibilityResult
	require.Equal(t, http.StatusOK, do(t, server, http.MethodPost, "/api/tree/show", map[string]string{"path": "a/x"}, &shown))
	assert.Equal(t, models.Edits{"a": false, "a/y": true}, shown.Edits)
	assert.Equal(t, models.ExcludeMap{"a/y": true}, shown.Excludes)

	var node models.TreeNode
	require.Equal(t, http.StatusOK, do(t, server, http.MethodGet, "/api/tree/node?path=a/y", nil, &node))
	assert.True(t, node.Hidden)
	assert.Equal(t, models.ActionShow, node.Action)

	var reset models.VisibilityResult
	require.Equal(t, http.StatusOK, do(t, server, http.MethodPost, "/api/tree/reset", nil, &reset))
	assert.Empty(t, reset.Excludes)

	var excludes models.ExcludeMap
	require.Equal(t, http.StatusOK, do(t, server, http.MethodGet, "/api/excludes", nil, &excludes))
	assert.Empty(t, excludes)
}

func TestTreeRoutes_Errors(t *testing.T) {
	server := newTestServer(t)

	assert.Equal(t, http.StatusNotFound, do(t, server, http.MethodPost, "/api/tree/hide", map[string]string{"path": "never/listed"}, nil))
	assert.Equal(t, http.StatusBadRequest, do(t, server, http.MethodPost, "/api/tree/hide", map[string]string{"path": ""}, nil))
	assert.Equal(t, http.StatusBadRequest, do(t, server, http.MethodPost, "/api/tree/hide", map[string]string{"nope": "a"}, nil))
	assert.Equal(t, http.StatusBadRequest, do(t, server, http.MethodPut, "/api/tree/filter", map[string]string{}, nil))
}

func TestProblemExtensions(t *testing.T) {
	server := newTestServer(t)

	var notFound map[string]interface{}
	require.Equal(t, http.StatusNotFound, do(t, server, http.MethodGet, "/api/tree/node?path=never/listed", nil, &notFound))
	assert.Equal(t, "node", notFound["resource"])
	assert.Equal(t, "never/listed", notFound["path"])
	assert.Equal(t, float64(http.StatusNotFound), notFound["status"])

	require.Equal(t, http.StatusCreated, do(t, server, http.MethodPost, "/api/profiles", map[string]string{"id": "focus"}, nil))
	var conflict map[string]interface{}
	require.Equal(t, http.StatusConflict, do(t, server, http.MethodPost, "/api/profiles", map[string]string{"id": "focus"}, &conflict))
	assert.Equal(t, "profile", conflict["resource"])
	assert.Equal(t, "focus", conflict["profile_id"])

	var invalid map[string]interface{}
	require.Equal(t, http.StatusBadRequest, do(t, server, http.MethodPost, "/api/tree/hide", map[string]string{"path": ""}, &invalid))
	assert.NotContains(t, invalid, "resource")
}

func TestFilterAndDeletedRoutes(t *testing.T) {
	server := newTestServer(t)

	var children []models.TreeNode
	require.Equal(t, http.StatusOK, do(t, server, http.MethodGet, "/api/tree/children", nil, &children))
	require.Equal(t, http.StatusOK, do(t, server, http.MethodGet, "/api/tree/children?path=a", nil, &children))
	require.Equal(t, http.StatusOK, do(t, server, http.MethodPost, "/api/tree/hide", map[string]string{"path": "b.txt"}, nil))
	require.Equal(t, http.StatusOK, do(t, server, http.MethodPut, "/api/tree/filter", map[string]bool{"show_hidden": false}, nil))

	require.Equal(t, http.StatusOK, do(t, server, http.MethodGet, "/api/tree/children", nil, &children))
	require.Len(t, children, 1)
	assert.Equal(t, "a", children[0].Path)

	var parent models.TreeNode
	require.Equal(t, http.StatusOK, do(t, server, http.MethodPost, "/api/tree/deleted", map[string]string{"path": "a/x"}, &parent))
	assert.Equal(t, "a", parent.Path)

	require.Equal(t, http.StatusOK, do(t, server, http.MethodGet, "/api/tree/children?path=a", nil, &children))
	require.Len(t, children, 1)
	assert.Equal(t, "a/y", children[0].Path)

	assert.Equal(t, http.StatusNoContent, do(t, server, http.MethodPost, "/api/tree/refresh", nil, nil))
}

func TestProfileRoutes(t *testing.T) {
	server := newTestServer(t)

	var profile models.Profile
	require.Equal(t, http.StatusCreated, do(t, server, http.MethodPost, "/api/profiles", map[string]string{"id": "work"}, &profile))
	assert.True(t, profile.Selected)

	require.Equal(t, http.StatusOK, do(t, server, http.MethodGet, "/api/tree/children", nil, nil))
	require.Equal(t, http.StatusOK, do(t, server, http.MethodPost, "/api/tree/hide", map[string]string{"path": "a"}, nil))

	var work models.Profile
	require.Equal(t, http.StatusOK, do(t, server, http.MethodGet, "/api/profiles/work", nil, &work))
	assert.Equal(t, models.ExcludeMap{"a": true}, work.Excludes)

	assert.Equal(t, http.StatusConflict, do(t, server, http.MethodPost, "/api/profiles", map[string]string{"id": "work"}, nil))

	var backup models.Profile
	require.Equal(t, http.StatusCreated, do(t, server, http.MethodPost, "/api/profiles/work/copy", map[string]string{"new_id": "backup"}, &backup))
	assert.Equal(t, "backup", backup.ID)
	assert.Equal(t, models.ExcludeMap{"a": true}, backup.Excludes)

	var fresh models.Profile
	require.Equal(t, http.StatusOK, do(t, server, http.MethodPost, "/api/profiles/fresh/switch", nil, &fresh))
	assert.Empty(t, fresh.Excludes)

	var list models.ProfileList
	require.Equal(t, http.StatusOK, do(t, server, http.MethodGet, "/api/profiles", nil, &list))
	assert.Len(t, list.Profiles, 3)
	require.NotNil(t, list.Selected)
	assert.Equal(t, "fresh", *list.Selected)

	assert.Equal(t, http.StatusNoContent, do(t, server, http.MethodDelete, "/api/profiles/backup", nil, nil))
	assert.Equal(t, http.StatusNotFound, do(t, server, http.MethodDelete, "/api/profiles/backup", nil, nil))
	assert.Equal(t, http.StatusNotFound, do(t, server, http.MethodGet, "/api/profiles/missing", nil, nil))
}

func TestHealth(t *testing.T) {
	server := newTestServer(t)

	var body map[string]string
	require.Equal(t, http.StatusOK, do(t, server, http.MethodGet, "/health", nil, &body))
	assert.Equal(t, "ok", body["status"])
}

func TestEventsStream(t *testing.T) {
	server := newTestServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/api/events", nil)
	require.NoError(t, err)
	resp, err := server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, ": connected\n", line)

	require.Equal(t, http.StatusOK, do(t, server, http.MethodPut, "/api/tree/filter", map[string]bool{"show_hidden": false}, nil))

	for {
		line, err = reader.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, "event: ") {
			break
		}
	}
	assert.Equal(t, "event: tree.filter\n", line)
}
