// Package visibility implements the hidden-file model: key classification,
// the literal HiddenSet, the lazily listed FileTree and the resolver that
// turns show/hide requests into exclude-map edits.
package visibility

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"workspacemanager/internal/config"
	"workspacemanager/internal/domain"
	"workspacemanager/internal/domain/models"
)

// IsPath reports whether key names a single path rather than a glob
func IsPath(key string) bool {
	return models.ClassifyKey(key) == models.Literal
}

// ValidateKey rejects exclude keys that can never be stored meaningfully.
// Glob keys must at least parse; their matching semantics are left to the host.
func ValidateKey(key string) error {
	if key == "" {
		return domain.NewValidation("exclude key must not be empty")
	}
	if len(key) > config.MaxPathLength {
		return domain.NewValidation(fmt.Sprintf("exclude key longer than %d bytes", config.MaxPathLength))
	}
	if IsPath(key) {
		if strings.HasPrefix(key, "/") || strings.HasSuffix(key, "/") {
			return domain.NewValidation("path keys are workspace-relative without leading or trailing '/': " + key)
		}
		return nil
	}
	if !doublestar.ValidatePattern(key) {
		return domain.NewValidation("malformed glob pattern: " + key)
	}
	return nil
}

// IsUnder reports whether key lies strictly below dir in the path hierarchy.
// The test is on path components, so "ab" is not under "a".
func IsUnder(key, dir string) bool {
	if dir == "" {
		return key != ""
	}
	return strings.HasPrefix(key, dir+"/")
}
