package visibility

import "workspacemanager/internal/domain/models"

// HiddenSet indexes the literal paths currently hidden by the exclude map.
// Glob entries are not tracked; they cannot be attributed to a single node.
type HiddenSet struct {
	paths map[string]struct{}
}

// NewHiddenSet builds the index from scratch
func NewHiddenSet(excludes models.ExcludeMap) *HiddenSet {
	_, paths := excludes.Split()
	set := &HiddenSet{paths: make(map[string]struct{}, len(paths))}
	for _, p := range paths {
		set.paths[p] = struct{}{}
	}
	return set
}

// Contains reports whether path is explicitly hidden
func (h *HiddenSet) Contains(path string) bool {
	if h == nil {
		return false
	}
	_, ok := h.paths[path]
	return ok
}

// Len returns the number of hidden literal paths
func (h *HiddenSet) Len() int {
	if h == nil {
		return 0
	}
	return len(h.paths)
}
