// Package backend opens the settings store selected by configuration.
package backend

import (
	"context"
	"fmt"
	"log/slog"

	"workspacemanager/internal/config"
	"workspacemanager/internal/domain/models"
	"workspacemanager/internal/domain/repositories"
	"workspacemanager/internal/repository/memory"
	"workspacemanager/internal/repository/postgres"
	"workspacemanager/internal/repository/yamlfile"
)

// Settings is an opened settings store
type Settings struct {
	Repo      repositories.ConfigurationRepository
	TxManager repositories.TransactionManager

	// Watch follows external edits until ctx is done. Nil when the backend
	// has nothing to watch.
	Watch func(ctx context.Context) error

	closers []func()
}

// Close releases connections held by the store
func (s *Settings) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// Open builds the settings store for cfg.SettingsBackend
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Settings, error) {
	switch cfg.SettingsBackend {
	case config.BackendYAML:
		return openYAML(cfg, logger)
	case config.BackendPostgres:
		return openPostgres(ctx, cfg, logger)
	case config.BackendMemory:
		store := memory.NewStore()
		logger.Warn("using in-memory settings store, changes are lost on exit")
		return &Settings{Repo: store, TxManager: store}, nil
	default:
		return nil, fmt.Errorf("unknown settings backend %q", cfg.SettingsBackend)
	}
}

func openYAML(cfg *config.Config, logger *slog.Logger) (*Settings, error) {
	paths := map[models.Scope]string{models.ScopeWorkspace: cfg.SettingsFile}
	if cfg.UserSettingsFile != "" {
		paths[models.ScopeUser] = cfg.UserSettingsFile
	}

	store, err := yamlfile.Open(paths, logger)
	if err != nil {
		return nil, fmt.Errorf("open settings file: %w", err)
	}
	logger.Info("settings file opened",
		"workspace", cfg.SettingsFile,
		"user", cfg.UserSettingsFile,
	)

	settings := &Settings{Repo: store, TxManager: store}
	if cfg.SettingsWatch {
		settings.Watch = store.Watch
	}
	return settings, nil
}

func openPostgres(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Settings, error) {
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	repo := postgres.NewSettingsRepository(&postgres.RepositoryConfig{
		Pool:        pool,
		Tables:      postgres.NewTableNames(cfg.TablePrefix),
		WorkspaceID: cfg.WorkspaceID.String(),
		Logger:      logger,
	})
	if err := repo.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure settings schema: %w", err)
	}

	logger.Info("database connected",
		"workspace_id", cfg.WorkspaceID.String(),
		"table_prefix", cfg.TablePrefix,
	)

	return &Settings{
		Repo:      repo,
		TxManager: postgres.NewTransactionManager(pool, repo, logger),
		closers:   []func(){pool.Close},
	}, nil
}
