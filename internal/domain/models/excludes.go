package models

import (
	"sort"
	"strings"
)

// Configuration sections and keys shared with the host settings store
const (
	FilesSection   = "files"
	ExcludeKey     = "exclude"
	ManagerSection = "workspace-manager"
	ProfilesKey    = "profiles"
	SelectedKey    = "selected-profile"
)

// Scope selects which settings layer an update targets
type Scope string

const (
	ScopeWorkspace Scope = "workspace"
	ScopeUser      Scope = "user"
)

// KeyKind classifies an exclude key
type KeyKind int

const (
	Literal KeyKind = iota
	Glob
)

func (k KeyKind) String() string {
	if k == Glob {
		return "glob"
	}
	return "literal"
}

// ClassifyKey reports whether key is a literal path or a glob pattern.
// Any key containing '*' is a glob.
func ClassifyKey(key string) KeyKind {
	if strings.Contains(key, "*") {
		return Glob
	}
	return Literal
}

// ExcludeMap is the flat files.exclude mapping (path or glob -> hidden).
// A missing key and a false value both mean visible.
type ExcludeMap map[string]bool

// Clone returns an independent copy; a nil map clones to an empty one
func (m ExcludeMap) Clone() ExcludeMap {
	out := make(ExcludeMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Has reports whether key is an explicit entry, regardless of its value
func (m ExcludeMap) Has(key string) bool {
	_, ok := m[key]
	return ok
}

// Split partitions the hidden (true) entries into glob keys and literal paths.
// Both slices are sorted.
func (m ExcludeMap) Split() (globs, paths []string) {
	for key, hide := range m {
		if !hide {
			continue
		}
		if ClassifyKey(key) == Literal {
			paths = append(paths, key)
		} else {
			globs = append(globs, key)
		}
	}
	sort.Strings(globs)
	sort.Strings(paths)
	return globs, paths
}

// Keys returns every explicit key in sorted order
func (m ExcludeMap) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Edits is a resolver result: path -> requested hidden state.
// false means "remove the explicit entry", true means "set it".
type Edits map[string]bool

// Apply merges edits into m and returns the merged copy; m is not modified.
// A false edit removes a present key; a true edit sets the key.
func (e Edits) Apply(m ExcludeMap) ExcludeMap {
	out := m.Clone()
	for path, hide := range e {
		if hide {
			out[path] = true
			continue
		}
		delete(out, path)
	}
	return out
}

// Empty reports whether there is nothing to merge
func (e Edits) Empty() bool {
	return len(e) == 0
}
