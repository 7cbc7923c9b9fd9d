package models

// EntryType distinguishes directory listing entries
type EntryType int

const (
	EntryFile EntryType = iota
	EntryDirectory
	EntrySymlink
)

// DirEntry is one (name, type) pair returned by a directory listing
type DirEntry struct {
	Name string
	Type EntryType
}

// IsFolderLike reports whether the entry is listed with the folders.
// Symlinks are grouped with directories.
func (e DirEntry) IsFolderLike() bool {
	return e.Type == EntryDirectory || e.Type == EntrySymlink
}

// WorkspaceRoot is a named top-level folder of the workspace
type WorkspaceRoot struct {
	Name string `json:"name"`
	Dir  string `json:"dir"` // Absolute directory on disk
}

// Collapsible mirrors the host tree item collapsible state
type Collapsible string

const (
	CollapsibleNone      Collapsible = "none"
	CollapsibleCollapsed Collapsible = "collapsed"
	CollapsibleExpanded  Collapsible = "expanded"
)

// NodeAction is the toggle the host binds to a click on the node
type NodeAction string

const (
	ActionShow NodeAction = "show"
	ActionHide NodeAction = "hide"
)

// TreeNode is the transport view of a file tree node
type TreeNode struct {
	Path        string      `json:"path"`
	Name        string      `json:"name"`
	IsFolder    bool        `json:"is_folder"`
	Hidden      bool        `json:"hidden"`
	Listed      bool        `json:"listed"`
	Collapsible Collapsible `json:"collapsible"`
	Action      NodeAction  `json:"action"`
}

// VisibilityResult reports the merged edit set and the resulting exclude map
type VisibilityResult struct {
	Edits    Edits      `json:"edits"`
	Excludes ExcludeMap `json:"excludes"`
}
