package workspace

import (
	"context"

	"workspacemanager/internal/domain"
	"workspacemanager/internal/domain/models"
	"workspacemanager/internal/domain/services"
	"workspacemanager/internal/events"
	"workspacemanager/internal/metrics"
	"workspacemanager/internal/service/visibility"
)

var _ services.VisibilityService = (*Manager)(nil)

// Children returns the filtered children of the node at req.Path
func (m *Manager) Children(ctx context.Context, req *services.NodeRequest) ([]models.TreeNode, error) {
	if err := validatePath(req.Path, true); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.syncIfDirty(ctx); err != nil {
		return nil, err
	}

	var parent *visibility.Node
	if req.Path != "" {
		node, err := m.lookup(ctx, req)
		if err != nil {
			return nil, err
		}
		parent = node
	}

	children, err := m.tree.GetChildren(ctx, parent)
	if err != nil {
		return nil, err
	}
	views := make([]models.TreeNode, 0, len(children))
	for _, child := range children {
		views = append(views, m.tree.View(child))
	}
	return views, nil
}

// Node returns a single node view
func (m *Manager) Node(ctx context.Context, req *services.NodeRequest) (*models.TreeNode, error) {
	if err := validatePath(req.Path, true); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.syncIfDirty(ctx); err != nil {
		return nil, err
	}

	node, err := m.lookup(ctx, req)
	if err != nil {
		return nil, err
	}
	view := m.tree.View(node)
	return &view, nil
}

// ShowFile makes the node visible
func (m *Manager) ShowFile(ctx context.Context, req *services.NodeRequest) (*models.VisibilityResult, error) {
	return m.nodeOperation(ctx, "show", req, m.resolver.Show)
}

// HideFile hides the node and its subtree
func (m *Manager) HideFile(ctx context.Context, req *services.NodeRequest) (*models.VisibilityResult, error) {
	return m.nodeOperation(ctx, "hide", req, m.resolver.Hide)
}

// HideSiblings hides every sibling of the node
func (m *Manager) HideSiblings(ctx context.Context, req *services.NodeRequest) (*models.VisibilityResult, error) {
	return m.nodeOperation(ctx, "hide_siblings", req, m.resolver.HideSiblings)
}

// Reset clears literal path entries and keeps globs
func (m *Manager) Reset(ctx context.Context) (*models.VisibilityResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	result, err := m.reset(ctx)
	metrics.RecordVisibilityOperation("reset", resultEdits(result), err)
	if err != nil {
		return nil, err
	}
	m.logger.Info("excludes reset", "cleared", len(result.Edits), "remaining", len(result.Excludes))
	return result, nil
}

func (m *Manager) reset(ctx context.Context) (*models.VisibilityResult, error) {
	current, err := m.excludes.Get(ctx)
	if err != nil {
		return nil, err
	}
	return m.commit(ctx, visibility.Reset(current))
}

// Refresh reloads the exclude map without listing any directory
func (m *Manager) Refresh(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.reload(ctx); err != nil {
		return err
	}
	m.publish(events.Event{Type: events.EventRefresh})
	return nil
}

// SetShowHidden toggles the hidden-node filter
func (m *Manager) SetShowHidden(ctx context.Context, show bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tree.SetShowHidden(show)
	m.logger.Debug("hidden filter changed", "show_hidden", show)
	m.publish(events.Event{Type: events.EventFilter})
	return nil
}

// Deleted drops a removed entry and returns the parent to re-render
func (m *Manager) Deleted(ctx context.Context, req *services.NodeRequest) (*models.TreeNode, error) {
	if err := validatePath(req.Path, false); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	parent, err := m.tree.OnDeleted(req.Path)
	if err != nil {
		return nil, err
	}
	if parent == nil {
		return nil, nil
	}
	view := m.tree.View(parent)
	m.publish(events.Event{Type: events.EventDeleted, Path: parent.Path()})
	return &view, nil
}

// Excludes returns the live exclude map
func (m *Manager) Excludes(ctx context.Context) (models.ExcludeMap, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.excludes.Get(ctx)
}

type resolveFunc func(*visibility.Node, models.ExcludeMap) models.Edits

func (m *Manager) nodeOperation(ctx context.Context, op string, req *services.NodeRequest, resolve resolveFunc) (*models.VisibilityResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	result, err := m.resolveAndCommit(ctx, req, resolve)
	metrics.RecordVisibilityOperation(op, resultEdits(result), err)
	if err != nil {
		m.logger.Warn("visibility operation failed", "op", op, "path", req.Path, "error", err)
		return nil, err
	}

	m.logger.Info("visibility changed",
		"op", op,
		"path", req.Path,
		"edits", len(result.Edits),
	)
	return result, nil
}

func (m *Manager) resolveAndCommit(ctx context.Context, req *services.NodeRequest, resolve resolveFunc) (*models.VisibilityResult, error) {
	if err := validatePath(req.Path, false); err != nil {
		return nil, err
	}
	if err := m.syncIfDirty(ctx); err != nil {
		return nil, err
	}

	node, err := m.lookup(ctx, req)
	if err != nil {
		return nil, err
	}
	if m.tree.IsLogicalRoot(node) {
		return nil, domain.NewValidation("the workspace root cannot be shown or hidden")
	}

	current, err := m.excludes.Get(ctx)
	if err != nil {
		return nil, err
	}
	return m.commit(ctx, resolve(node, current))
}

// lookup finds a node, listing ancestors first when asked to materialize it
func (m *Manager) lookup(ctx context.Context, req *services.NodeRequest) (*visibility.Node, error) {
	if req.Materialize {
		return m.tree.Resolve(ctx, req.Path)
	}
	return m.tree.GetNode(req.Path)
}

func resultEdits(result *models.VisibilityResult) int {
	if result == nil {
		return 0
	}
	return len(result.Edits)
}
