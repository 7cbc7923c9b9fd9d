package repositories

import (
	"context"

	"workspacemanager/internal/domain/models"
)

// ChangeFunc is invoked after a setting changed
type ChangeFunc func(section, key string)

// ConfigurationRepository is the host key-value settings store.
// Values are JSON-shaped; workspace scope overrides user scope on reads.
type ConfigurationRepository interface {
	// Get decodes the value stored under section.key into dest.
	// Returns found=false (and leaves dest untouched) if the key is absent in every scope.
	Get(ctx context.Context, section, key string, dest interface{}) (bool, error)

	// Update writes value under section.key in the given scope.
	// A nil value removes the key.
	Update(ctx context.Context, section, key string, value interface{}, scope models.Scope) error

	// Subscribe registers fn to run after each committed change.
	// The returned func removes the subscription.
	Subscribe(fn ChangeFunc) (cancel func())
}
