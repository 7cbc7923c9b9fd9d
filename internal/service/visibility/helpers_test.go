package visibility

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"workspacemanager/internal/domain"
	"workspacemanager/internal/domain/models"
)

// fakeFS serves a fixed directory layout and counts listings per directory
type fakeFS struct {
	mu     sync.Mutex
	dirs   map[string][]models.DirEntry
	listed map[string]int
}

// newFakeFS builds a layout from slash-separated paths under base.
// A trailing "/" marks a directory.
func newFakeFS(base string, paths ...string) *fakeFS {
	f := &fakeFS{
		dirs:   map[string][]models.DirEntry{base: {}},
		listed: map[string]int{},
	}
	for _, p := range paths {
		isDir := strings.HasSuffix(p, "/")
		parts := strings.Split(strings.TrimSuffix(p, "/"), "/")
		dir := base
		for i, name := range parts {
			last := i == len(parts)-1
			typ := models.EntryDirectory
			if last && !isDir {
				typ = models.EntryFile
			}
			f.add(dir, models.DirEntry{Name: name, Type: typ})
			dir = filepath.Join(dir, name)
			if typ == models.EntryDirectory {
				if _, ok := f.dirs[dir]; !ok {
					f.dirs[dir] = []models.DirEntry{}
				}
			}
		}
	}
	return f
}

func (f *fakeFS) add(dir string, entry models.DirEntry) {
	for _, e := range f.dirs[dir] {
		if e.Name == entry.Name {
			return
		}
	}
	f.dirs[dir] = append(f.dirs[dir], entry)
}

func (f *fakeFS) ReadDirectory(ctx context.Context, dir string) ([]models.DirEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entries, ok := f.dirs[dir]
	if !ok {
		return nil, domain.NewNotFound("directory", dir)
	}
	f.listed[dir]++
	return append([]models.DirEntry(nil), entries...), nil
}

func (f *fakeFS) count(dir string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listed[dir]
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestTree builds a single-root tree over /ws and returns it with its fs
func newTestTree(paths ...string) (*FileTree, *fakeFS) {
	fs := newFakeFS("/ws", paths...)
	tree := NewFileTree(fs, []models.WorkspaceRoot{{Name: "ws", Dir: "/ws"}}, testLogger())
	return tree, fs
}

func mustResolve(t interface {
	Helper()
	Fatalf(string, ...interface{})
}, tree *FileTree, path string) *Node {
	t.Helper()
	node, err := tree.Resolve(context.Background(), path)
	if err != nil {
		t.Fatalf("resolve %q: %v", path, err)
	}
	return node
}

func names(nodes []*Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Name())
	}
	return out
}
