package services

import (
	"context"

	"workspacemanager/internal/domain/models"
)

// NodeRequest identifies a tree node by its workspace-relative path
type NodeRequest struct {
	Path string `json:"path"`
	// Materialize lists missing ancestors instead of failing on unvisited paths
	Materialize bool `json:"-"`
}

// VisibilityService defines the tree and hide/show operations
type VisibilityService interface {
	// Children returns the filtered children of path ("" is the logical root)
	Children(ctx context.Context, req *NodeRequest) ([]models.TreeNode, error)

	// Node returns a single materialized node
	Node(ctx context.Context, req *NodeRequest) (*models.TreeNode, error)

	// ShowFile makes the node visible, re-hiding branches off its path when
	// the node was hidden through an ancestor
	ShowFile(ctx context.Context, req *NodeRequest) (*models.VisibilityResult, error)

	// HideFile hides the node and everything below it
	HideFile(ctx context.Context, req *NodeRequest) (*models.VisibilityResult, error)

	// HideSiblings hides every sibling of the node
	HideSiblings(ctx context.Context, req *NodeRequest) (*models.VisibilityResult, error)

	// Reset clears every literal path entry, keeping glob entries
	Reset(ctx context.Context) (*models.VisibilityResult, error)

	// Refresh reloads the exclude map and recomputes hidden state without listing
	Refresh(ctx context.Context) error

	// SetShowHidden toggles whether hidden nodes are returned by Children
	SetShowHidden(ctx context.Context, show bool) error

	// Deleted drops a removed filesystem entry from the tree and returns its parent
	Deleted(ctx context.Context, req *NodeRequest) (*models.TreeNode, error)

	// Excludes returns the live exclude map
	Excludes(ctx context.Context) (models.ExcludeMap, error)
}
