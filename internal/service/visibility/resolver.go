package visibility

import (
	"workspacemanager/internal/domain/models"
)

// Resolver computes the exclude-map edits that realize a visibility request
// while leaving every other node's effective visibility unchanged.
// It reads the tree but never writes to the store.
type Resolver struct {
	tree *FileTree
}

// NewResolver creates a resolver over tree
func NewResolver(tree *FileTree) *Resolver {
	return &Resolver{tree: tree}
}

// Show makes node visible.
// An explicit entry on the node is simply cleared. Otherwise the walk climbs
// toward the hiding ancestor, re-hiding the siblings at every level so that
// only the path down to node becomes visible.
func (r *Resolver) Show(node *Node, excludes models.ExcludeMap) models.Edits {
	edits := models.Edits{}
	if excludes.Has(node.Path()) {
		edits[node.Path()] = false
		return edits
	}

	for cursor := node; cursor != nil; cursor = cursor.Parent() {
		if excludes.Has(cursor.Path()) {
			edits[cursor.Path()] = false
			return edits
		}
		if cursor.Parent() == nil {
			break
		}
		for _, sibling := range r.tree.Siblings(cursor) {
			edits[sibling.Path()] = true
		}
	}

	// No explicit ancestor: node was not hidden by a path entry.
	return models.Edits{}
}

// Hide hides node and drops explicit entries below it that the new entry subsumes
func (r *Resolver) Hide(node *Node, excludes models.ExcludeMap) models.Edits {
	edits := models.Edits{node.Path(): true}
	if node.IsFolder() {
		subsume(edits, node.Path(), excludes)
	}
	return edits
}

// HideSiblings hides every sibling of node, but not node itself
func (r *Resolver) HideSiblings(node *Node, excludes models.ExcludeMap) models.Edits {
	edits := models.Edits{}
	for _, sibling := range r.tree.Siblings(node) {
		edits[sibling.Path()] = true
		if sibling.IsFolder() {
			subsume(edits, sibling.Path(), excludes)
		}
	}
	return edits
}

// Reset clears every literal path entry. Glob entries are kept.
func Reset(excludes models.ExcludeMap) models.Edits {
	edits := models.Edits{}
	_, paths := excludes.Split()
	for _, path := range paths {
		edits[path] = false
	}
	return edits
}

// subsume clears explicit literal entries below dir
func subsume(edits models.Edits, dir string, excludes models.ExcludeMap) {
	for key := range excludes {
		if IsPath(key) && IsUnder(key, dir) {
			edits[key] = false
		}
	}
}
