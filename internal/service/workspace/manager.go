// Package workspace coordinates the file tree, the exclude map and the
// profile store behind the visibility and profile services.
package workspace

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"strings"
	"sync"
	"sync/atomic"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"workspacemanager/internal/config"
	"workspacemanager/internal/domain"
	"workspacemanager/internal/domain/models"
	"workspacemanager/internal/domain/repositories"
	"workspacemanager/internal/events"
	"workspacemanager/internal/service/profile"
	"workspacemanager/internal/service/visibility"
)

// Manager runs one operation at a time against the shared settings store.
// Every operation re-reads the exclude map before computing edits, and every
// write is committed before the tree is refreshed or listeners are told.
type Manager struct {
	mu        sync.Mutex
	tree      *visibility.FileTree
	resolver  *visibility.Resolver
	excludes  *visibility.ExcludeStore
	profiles  *profile.Store
	txManager repositories.TransactionManager
	events    *events.Broadcaster
	logger    *slog.Logger

	// live is the exclude map the tree was last refreshed from
	live models.ExcludeMap

	dirty       atomic.Bool
	kick        chan struct{}
	unsubscribe func()
}

// NewManager wires the visibility model to the settings store.
// broadcaster may be nil when nobody listens for change events.
func NewManager(
	repo repositories.ConfigurationRepository,
	txManager repositories.TransactionManager,
	fs repositories.FileSystem,
	roots []models.WorkspaceRoot,
	broadcaster *events.Broadcaster,
	logger *slog.Logger,
) *Manager {
	tree := visibility.NewFileTree(fs, roots, logger)
	excludes := visibility.NewExcludeStore(repo, logger)

	m := &Manager{
		tree:      tree,
		resolver:  visibility.NewResolver(tree),
		excludes:  excludes,
		profiles:  profile.NewStore(repo, excludes, txManager, logger),
		txManager: txManager,
		events:    broadcaster,
		logger:    logger,
		live:      models.ExcludeMap{},
		kick:      make(chan struct{}, 1),
	}
	m.unsubscribe = repo.Subscribe(m.onSettingsChanged)
	return m
}

// Load reads the exclude map and computes the initial hidden state
func (m *Manager) Load(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reload(ctx)
}

// Run applies settings changed by other writers until ctx is done
func (m *Manager) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-m.kick:
			m.mu.Lock()
			if err := m.syncIfDirty(ctx); err != nil {
				m.logger.Error("failed to apply external settings change", "error", err)
			}
			m.mu.Unlock()
		}
	}
}

// Close stops listening for settings changes
func (m *Manager) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

// Tree exposes the underlying file tree
func (m *Manager) Tree() *visibility.FileTree {
	return m.tree
}

// onSettingsChanged runs inside the store's commit; it must not touch the store
func (m *Manager) onSettingsChanged(section, key string) {
	if section != models.ManagerSection && !(section == models.FilesSection && key == models.ExcludeKey) {
		return
	}
	m.dirty.Store(true)
	select {
	case m.kick <- struct{}{}:
	default:
	}
}

// syncIfDirty picks up edits made outside the manager; caller holds m.mu.
// Changes the manager committed itself compare equal to live and are skipped.
func (m *Manager) syncIfDirty(ctx context.Context) error {
	if !m.dirty.CompareAndSwap(true, false) {
		return nil
	}

	current, err := m.excludes.Get(ctx)
	if err != nil {
		m.dirty.Store(true)
		return err
	}
	if maps.Equal(current, m.live) {
		return nil
	}

	for key := range current {
		if err := visibility.ValidateKey(key); err != nil {
			m.logger.Warn("ignoring malformed exclude key", "key", key, "error", err)
		}
	}

	snapshot, selected, err := m.profiles.Get(ctx, "")
	if err != nil {
		return err
	}
	if selected && !maps.Equal(snapshot, current) {
		if err := m.profiles.SyncSelected(ctx, current); err != nil {
			return err
		}
	}

	m.apply(current)
	m.logger.Info("external exclude change applied", "entries", len(current))
	m.publish(events.Event{Type: events.EventRefresh})
	m.publish(events.Event{Type: events.EventProfiles})
	return nil
}

// reload re-reads the exclude map unconditionally; caller holds m.mu
func (m *Manager) reload(ctx context.Context) error {
	m.dirty.Store(false)
	current, err := m.excludes.Get(ctx)
	if err != nil {
		return err
	}
	m.apply(current)
	return nil
}

// apply makes excludes the tree's source of truth; caller holds m.mu
func (m *Manager) apply(excludes models.ExcludeMap) {
	m.live = excludes.Clone()
	m.tree.Refresh(visibility.NewHiddenSet(excludes))
}

func (m *Manager) publish(event events.Event) {
	if m.events != nil {
		m.events.Publish(event)
	}
}

// commit merges edits and mirrors the result into the selected profile in one
// transaction, then refreshes the tree from what was written.
func (m *Manager) commit(ctx context.Context, edits models.Edits) (*models.VisibilityResult, error) {
	if edits.Empty() {
		current, err := m.excludes.Get(ctx)
		if err != nil {
			return nil, err
		}
		return &models.VisibilityResult{Edits: edits, Excludes: current}, nil
	}

	var merged models.ExcludeMap
	err := m.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		var err error
		merged, err = m.excludes.Merge(txCtx, edits)
		if err != nil {
			return err
		}
		return m.profiles.SyncSelected(txCtx, merged)
	})
	if err != nil {
		return nil, fmt.Errorf("commit exclude edits: %w", err)
	}

	m.apply(merged)
	m.publish(events.Event{Type: events.EventRefresh})
	return &models.VisibilityResult{Edits: edits, Excludes: merged}, nil
}

func validatePath(path string, allowRoot bool) error {
	rules := []validation.Rule{validation.Length(0, config.MaxPathLength)}
	if !allowRoot {
		rules = append(rules, validation.Required.Error("path is required; the workspace root cannot be shown or hidden"))
	}
	rules = append(rules, validation.By(func(value interface{}) error {
		p, _ := value.(string)
		if p == "" {
			return nil
		}
		if strings.Contains(p, "*") {
			return fmt.Errorf("path must not contain wildcards")
		}
		if strings.HasPrefix(p, "/") || strings.HasSuffix(p, "/") || strings.Contains(p, "//") {
			return fmt.Errorf("path must be workspace-relative without empty segments")
		}
		return nil
	}))

	if err := validation.Validate(path, rules...); err != nil {
		return fmt.Errorf("%w: path: %v", domain.ErrValidation, err)
	}
	return nil
}

func validateProfileID(id string) error {
	err := validation.Validate(id,
		validation.Required,
		validation.Length(1, config.MaxProfileIDLength),
	)
	if err != nil {
		return fmt.Errorf("%w: profile id: %v", domain.ErrValidation, err)
	}
	return nil
}
