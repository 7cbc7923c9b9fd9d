package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"

	"workspacemanager/internal/domain/models"
	"workspacemanager/internal/domain/repositories"
)

// SettingsRepository stores workspace and user settings as JSONB rows keyed
// by (workspace_id, scope, section, key).
type SettingsRepository struct {
	pool        *pgxpool.Pool
	tables      *TableNames
	workspaceID string
	logger      *slog.Logger

	subsMu  sync.Mutex
	subs    map[int]repositories.ChangeFunc
	nextSub int
}

// NewSettingsRepository creates a new SettingsRepository
func NewSettingsRepository(config *RepositoryConfig) *SettingsRepository {
	return &SettingsRepository{
		pool:        config.Pool,
		tables:      config.Tables,
		workspaceID: config.WorkspaceID,
		logger:      config.Logger,
		subs:        make(map[int]repositories.ChangeFunc),
	}
}

// EnsureSchema creates the settings table if it does not exist
func (r *SettingsRepository) EnsureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			workspace_id UUID NOT NULL,
			scope TEXT NOT NULL,
			section TEXT NOT NULL,
			key TEXT NOT NULL,
			value JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (workspace_id, scope, section, key)
		)
	`, r.tables.Settings)

	if _, err := r.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("create settings table: %w", err)
	}
	return nil
}

// Get reads section.key, preferring the workspace scope over the user scope
func (r *SettingsRepository) Get(ctx context.Context, section, key string, dest interface{}) (bool, error) {
	query := fmt.Sprintf(`
		SELECT value
		FROM %s
		WHERE workspace_id = $1 AND section = $2 AND key = $3
		ORDER BY CASE scope WHEN 'workspace' THEN 0 ELSE 1 END
		LIMIT 1
	`, r.tables.Settings)

	var raw []byte
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, r.workspaceID, section, key).Scan(&raw)
	if err != nil {
		if IsPgNoRowsError(err) {
			return false, nil
		}
		return false, fmt.Errorf("get setting %s.%s: %w", section, key, err)
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("decode setting %s.%s: %w", section, key, err)
	}
	return true, nil
}

// Update upserts section.key in scope; a nil value deletes the row
func (r *SettingsRepository) Update(ctx context.Context, section, key string, value interface{}, scope models.Scope) error {
	executor := GetExecutor(ctx, r.pool)

	if value == nil {
		query := fmt.Sprintf(`
			DELETE FROM %s
			WHERE workspace_id = $1 AND scope = $2 AND section = $3 AND key = $4
		`, r.tables.Settings)
		if _, err := executor.Exec(ctx, query, r.workspaceID, string(scope), section, key); err != nil {
			return fmt.Errorf("delete setting %s.%s: %w", section, key, err)
		}
	} else {
		raw, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("encode setting %s.%s: %w", section, key, err)
		}
		query := fmt.Sprintf(`
			INSERT INTO %s (workspace_id, scope, section, key, value, updated_at)
			VALUES ($1, $2, $3, $4, $5, NOW())
			ON CONFLICT (workspace_id, scope, section, key) DO UPDATE SET
				value = EXCLUDED.value,
				updated_at = EXCLUDED.updated_at
		`, r.tables.Settings)
		if _, err := executor.Exec(ctx, query, r.workspaceID, string(scope), section, key, raw); err != nil {
			return fmt.Errorf("upsert setting %s.%s: %w", section, key, err)
		}
	}

	if pending := getPending(ctx); pending != nil {
		pending.add(section, key)
		return nil
	}
	r.notify([][2]string{{section, key}})
	return nil
}

// Subscribe registers fn for changes made through this repository
func (r *SettingsRepository) Subscribe(fn repositories.ChangeFunc) func() {
	r.subsMu.Lock()
	defer r.subsMu.Unlock()

	id := r.nextSub
	r.nextSub++
	r.subs[id] = fn

	return func() {
		r.subsMu.Lock()
		delete(r.subs, id)
		r.subsMu.Unlock()
	}
}

// DropSchema removes the settings table
func (r *SettingsRepository) DropSchema(ctx context.Context) error {
	query := fmt.Sprintf(`DROP TABLE IF EXISTS %s`, r.tables.Settings)
	if _, err := r.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("drop settings table: %w", err)
	}
	return nil
}

func (r *SettingsRepository) notify(changed [][2]string) {
	if len(changed) == 0 {
		return
	}
	r.subsMu.Lock()
	fns := make([]repositories.ChangeFunc, 0, len(r.subs))
	for _, fn := range r.subs {
		fns = append(fns, fn)
	}
	r.subsMu.Unlock()

	for _, change := range changed {
		for _, fn := range fns {
			fn(change[0], change[1])
		}
	}
}

// pendingChanges collects the keys written inside one transaction
type pendingChanges struct {
	mu   sync.Mutex
	seen map[[2]string]bool
	keys [][2]string
}

func (p *pendingChanges) add(section, key string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.seen == nil {
		p.seen = make(map[[2]string]bool)
	}
	k := [2]string{section, key}
	if !p.seen[k] {
		p.seen[k] = true
		p.keys = append(p.keys, k)
	}
}

func (p *pendingChanges) list() [][2]string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.keys
}

type pendingKey struct{}

func withPending(ctx context.Context, p *pendingChanges) context.Context {
	return context.WithValue(ctx, pendingKey{}, p)
}

func getPending(ctx context.Context) *pendingChanges {
	p, _ := ctx.Value(pendingKey{}).(*pendingChanges)
	return p
}

var _ repositories.ConfigurationRepository = (*SettingsRepository)(nil)
