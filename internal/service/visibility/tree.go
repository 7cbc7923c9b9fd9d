package visibility

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"workspacemanager/internal/domain"
	"workspacemanager/internal/domain/models"
	"workspacemanager/internal/domain/repositories"
	"workspacemanager/internal/metrics"
)

// listState tracks whether a folder's children have been fetched.
// An unlisted folder and an empty listed folder are different states.
type listState int

const (
	unlisted listState = iota
	listed
)

// Node is one materialized filesystem entry.
// Children are owned by their parent; the parent pointer is only followed
// for sibling lookup and ancestor walks.
type Node struct {
	path     string
	name     string
	dir      string
	isFolder bool
	isRoot   bool
	parent   *Node
	children []*Node
	state    listState
	hidden   bool
}

// Path returns the workspace-relative path ("" for the logical root)
func (n *Node) Path() string { return n.path }

// Name returns the last path element
func (n *Node) Name() string { return n.name }

// IsFolder reports whether the node can have children
func (n *Node) IsFolder() bool { return n.isFolder }

// Parent returns the owning node, nil for workspace roots
func (n *Node) Parent() *Node { return n.parent }

// IsWorkspaceRoot reports whether the node is a top-level workspace folder
func (n *Node) IsWorkspaceRoot() bool { return n.isRoot }

// FileTree is the lazily listed view of the workspace folders.
// Each directory is listed at most once per tree lifetime; only deletion
// invalidates cached children.
type FileTree struct {
	mu         sync.Mutex
	fs         repositories.FileSystem
	logger     *slog.Logger
	root       *Node
	nodes      map[string]*Node
	hidden     *HiddenSet
	showHidden bool
}

// NewFileTree creates a tree over the given workspace roots.
// A single root becomes the logical root itself; several roots hang off an
// invisible synthetic root and are addressed by their folder name.
func NewFileTree(fs repositories.FileSystem, roots []models.WorkspaceRoot, logger *slog.Logger) *FileTree {
	t := &FileTree{
		fs:         fs,
		logger:     logger,
		nodes:      make(map[string]*Node),
		hidden:     NewHiddenSet(nil),
		showHidden: true,
	}

	if len(roots) == 1 {
		t.root = &Node{
			name:     roots[0].Name,
			dir:      roots[0].Dir,
			isFolder: true,
			isRoot:   true,
		}
		t.nodes[""] = t.root
		return t
	}

	t.root = &Node{isFolder: true, state: listed}
	t.nodes[""] = t.root
	for _, r := range roots {
		node := &Node{
			path:     r.Name,
			name:     r.Name,
			dir:      r.Dir,
			isFolder: true,
			isRoot:   true,
		}
		t.root.children = append(t.root.children, node)
		t.nodes[r.Name] = node
	}
	return t
}

// Root returns the logical root node
func (t *FileTree) Root() *Node {
	return t.root
}

// IsLogicalRoot reports whether n is the node shown as the tree itself
func (t *FileTree) IsLogicalRoot(n *Node) bool {
	return n == t.root
}

// Refresh swaps in a new HiddenSet and recomputes effective hidden state
// for every materialized node. It never lists directories.
func (t *FileTree) Refresh(hidden *HiddenSet) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.hidden = hidden
	for _, node := range t.nodes {
		node.hidden = t.effectiveHidden(node)
	}
	metrics.SetTreeNodes(len(t.nodes))
}

// SetShowHidden toggles the visibility filter applied by GetChildren
func (t *FileTree) SetShowHidden(show bool) {
	t.mu.Lock()
	t.showHidden = show
	t.mu.Unlock()
}

// ShowHidden reports whether hidden nodes are returned by GetChildren
func (t *FileTree) ShowHidden() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.showHidden
}

// GetChildren returns the ordered children of n (nil means the logical root),
// listing the directory on first visit. Folders and symlinks come first.
func (t *FileTree) GetChildren(ctx context.Context, n *Node) ([]*Node, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if n == nil {
		n = t.root
	}
	if current, ok := t.nodes[n.path]; !ok || current != n {
		return nil, domain.NewNotFound("node", n.path)
	}
	if !n.isFolder {
		return []*Node{}, nil
	}

	if n.state == listed {
		parentHidden := t.effectiveHidden(n)
		for _, child := range n.children {
			child.hidden = parentHidden || t.hidden.Contains(child.path)
		}
	} else if err := t.list(ctx, n); err != nil {
		return nil, err
	}

	return t.filter(n.children), nil
}

// GetNode looks up a materialized node by path
func (t *FileTree) GetNode(path string) (*Node, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	node, ok := t.nodes[path]
	if !ok {
		return nil, domain.NewNotFound("node", path)
	}
	return node, nil
}

// Resolve returns the node for path, listing every ancestor that has not
// been visited yet. Used when no tree expansion history exists.
func (t *FileTree) Resolve(ctx context.Context, path string) (*Node, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if node, ok := t.nodes[path]; ok {
		return node, nil
	}

	cur := t.root
	for _, segment := range strings.Split(path, "/") {
		if !cur.isFolder {
			return nil, domain.NewNotFound("node", path)
		}
		if cur.state == unlisted {
			if err := t.list(ctx, cur); err != nil {
				return nil, err
			}
		}
		var next *Node
		for _, child := range cur.children {
			if child.name == segment {
				next = child
				break
			}
		}
		if next == nil {
			return nil, domain.NewNotFound("node", path)
		}
		cur = next
	}
	return cur, nil
}

// OnDeleted drops the node at path and its cached subtree, detaching it from
// its parent. It returns the parent whose children must be re-rendered.
func (t *FileTree) OnDeleted(path string) (*Node, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	node, ok := t.nodes[path]
	if !ok {
		return nil, domain.NewNotFound("node", path)
	}
	if node == t.root || node.isRoot {
		return nil, domain.NewValidation("cannot delete a workspace root: " + path)
	}

	parent := node.parent
	if parent != nil {
		kept := parent.children[:0:0]
		for _, child := range parent.children {
			if child != node {
				kept = append(kept, child)
			}
		}
		parent.children = kept
	}

	// Collect in pre-order, then release in reverse so children go first.
	var order []*Node
	stack := []*Node{node}
	for len(stack) > 0 {
		next := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		order = append(order, next)
		stack = append(stack, next.children...)
	}
	for i := len(order) - 1; i >= 0; i-- {
		gone := order[i]
		if t.nodes[gone.path] == gone {
			delete(t.nodes, gone.path)
		}
		gone.children = nil
		gone.parent = nil
	}

	t.logger.Debug("node removed from tree", "path", path, "removed", len(order))
	metrics.SetTreeNodes(len(t.nodes))
	return parent, nil
}

// Siblings returns the other children of n's parent, in tree order
func (t *FileTree) Siblings(n *Node) []*Node {
	t.mu.Lock()
	defer t.mu.Unlock()

	if n.parent == nil {
		return nil
	}
	siblings := make([]*Node, 0, len(n.parent.children))
	for _, child := range n.parent.children {
		if child != n {
			siblings = append(siblings, child)
		}
	}
	return siblings
}

// EffectiveHidden reports whether n is hidden directly or through an ancestor
func (t *FileTree) EffectiveHidden(n *Node) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.effectiveHidden(n)
}

// View renders a node for transport
func (t *FileTree) View(n *Node) models.TreeNode {
	t.mu.Lock()
	defer t.mu.Unlock()

	hidden := t.effectiveHidden(n)
	view := models.TreeNode{
		Path:        n.path,
		Name:        n.name,
		IsFolder:    n.isFolder,
		Hidden:      hidden,
		Listed:      n.state == listed,
		Collapsible: models.CollapsibleNone,
		Action:      models.ActionHide,
	}
	if hidden {
		view.Action = models.ActionShow
	}
	switch {
	case n.isRoot || n == t.root:
		view.Collapsible = models.CollapsibleExpanded
	case n.isFolder:
		view.Collapsible = models.CollapsibleCollapsed
	}
	return view
}

// Len returns the number of materialized nodes, including the logical root
func (t *FileTree) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.nodes)
}

// list fetches n's directory once; caller holds t.mu.
func (t *FileTree) list(ctx context.Context, n *Node) error {
	entries, err := t.fs.ReadDirectory(ctx, n.dir)
	if err != nil {
		return fmt.Errorf("list %s: %w", n.dir, err)
	}
	metrics.RecordDirectoryListing()

	parentHidden := t.effectiveHidden(n)
	var dirs, files []*Node
	for _, entry := range entries {
		path := childPath(n.path, entry.Name)
		child := &Node{
			path:     path,
			name:     entry.Name,
			dir:      filepath.Join(n.dir, entry.Name),
			isFolder: entry.IsFolderLike(),
			parent:   n,
			hidden:   parentHidden || t.hidden.Contains(path),
		}
		if child.isFolder {
			dirs = append(dirs, child)
		} else {
			files = append(files, child)
		}
		t.nodes[path] = child
	}

	n.children = append(dirs, files...)
	n.state = listed

	t.logger.Debug("directory listed",
		"path", n.path,
		"folders", len(dirs),
		"files", len(files),
	)
	metrics.SetTreeNodes(len(t.nodes))
	return nil
}

// effectiveHidden walks the ancestor chain; caller holds t.mu.
func (t *FileTree) effectiveHidden(n *Node) bool {
	for cur := n; cur != nil; cur = cur.parent {
		if t.hidden.Contains(cur.path) {
			return true
		}
	}
	return false
}

func (t *FileTree) filter(children []*Node) []*Node {
	out := make([]*Node, 0, len(children))
	for _, child := range children {
		if !t.showHidden && child.hidden {
			continue
		}
		out = append(out, child)
	}
	return out
}

func childPath(parentPath, name string) string {
	if parentPath == "" {
		return name
	}
	return parentPath + "/" + name
}
