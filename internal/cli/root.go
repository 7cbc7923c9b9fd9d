// Package cli provides the wsctl command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"workspacemanager/internal/config"
	"workspacemanager/internal/repository/backend"
	"workspacemanager/internal/repository/localfs"
	"workspacemanager/internal/service/workspace"
)

// Version is set by the build
var Version = "dev"

type options struct {
	jsonOutput bool
	verbose    bool
	logOutput  io.Writer
}

// session is one opened workspace: settings store plus manager
type session struct {
	manager  *workspace.Manager
	settings *backend.Settings
}

func (s *session) Close() {
	s.manager.Close()
	s.settings.Close()
}

// NewRootCmd creates the wsctl root command.
func NewRootCmd() *cobra.Command {
	opts := &options{logOutput: os.Stderr}

	rootCmd := &cobra.Command{
		Use:   "wsctl",
		Short: "Hide and show workspace files",
		Long: `wsctl edits the workspace exclude map the same way the file tree panel does.

Paths are workspace-relative. With several workspace roots, prefix the path
with the root name, e.g. "backend/cmd/server".

Configuration is read from the environment (and .env), see WORKSPACE_ROOTS,
SETTINGS_BACKEND and SETTINGS_FILE.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "Print results as JSON")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output (shows debug messages)")

	rootCmd.AddCommand(newListCmd(opts))
	rootCmd.AddCommand(newShowCmd(opts))
	rootCmd.AddCommand(newHideCmd(opts))
	rootCmd.AddCommand(newHideSiblingsCmd(opts))
	rootCmd.AddCommand(newResetCmd(opts))
	rootCmd.AddCommand(newExcludesCmd(opts))
	rootCmd.AddCommand(newProfilesCmd(opts))

	return rootCmd
}

// open loads configuration and the exclude map for one command
func (o *options) open(ctx context.Context) (*session, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(o.logOutput, &slog.HandlerOptions{Level: level}))

	settings, err := backend.Open(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	manager := workspace.NewManager(settings.Repo, settings.TxManager, localfs.New(), cfg.Roots, nil, logger)
	if err := manager.Load(ctx); err != nil {
		manager.Close()
		settings.Close()
		return nil, fmt.Errorf("load excludes: %w", err)
	}

	return &session{manager: manager, settings: settings}, nil
}

// run opens a session, calls fn and closes the session again
func (o *options) run(cmd *cobra.Command, fn func(ctx context.Context, s *session) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	s, err := o.open(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	return fn(ctx, s)
}
