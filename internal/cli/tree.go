package cli

import (
	"context"

	"github.com/spf13/cobra"

	"workspacemanager/internal/domain/models"
	"workspacemanager/internal/domain/services"
)

// newListCmd creates the 'ls' command.
func newListCmd(opts *options) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "ls [path]",
		Short: "List the children of a folder",
		Long: `List the children of a folder, folders first. Hidden entries are skipped
unless --all is given, in which case they are marked with "h".

Example:
  wsctl ls
  wsctl ls src/components --all`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := &services.NodeRequest{Materialize: true}
			if len(args) == 1 {
				req.Path = args[0]
			}

			return opts.run(cmd, func(ctx context.Context, s *session) error {
				if err := s.manager.SetShowHidden(ctx, all); err != nil {
					return err
				}
				nodes, err := s.manager.Children(ctx, req)
				if err != nil {
					return err
				}
				if opts.jsonOutput {
					return printJSON(cmd.OutOrStdout(), nodes)
				}
				printNodes(cmd.OutOrStdout(), nodes)
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include hidden entries")
	return cmd
}

type visibilityFunc func(ctx context.Context, req *services.NodeRequest) (*models.VisibilityResult, error)

// newVisibilityCmd builds a single-path command around one manager operation
func newVisibilityCmd(opts *options, use, short, long string, op func(s *session) visibilityFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <path>",
		Short: short,
		Long:  long,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := &services.NodeRequest{Path: args[0], Materialize: true}

			return opts.run(cmd, func(ctx context.Context, s *session) error {
				result, err := op(s)(ctx, req)
				if err != nil {
					return err
				}
				if opts.jsonOutput {
					return printJSON(cmd.OutOrStdout(), result)
				}
				printResult(cmd.OutOrStdout(), result)
				return nil
			})
		},
	}
}

// newShowCmd creates the 'show' command.
func newShowCmd(opts *options) *cobra.Command {
	return newVisibilityCmd(opts, "show", "Make a file or folder visible",
		`Make a file or folder visible. When it was hidden through a hidden ancestor,
the ancestor entry is removed and the other branches are hidden again.`,
		func(s *session) visibilityFunc { return s.manager.ShowFile })
}

// newHideCmd creates the 'hide' command.
func newHideCmd(opts *options) *cobra.Command {
	return newVisibilityCmd(opts, "hide", "Hide a file or folder",
		`Hide a file or folder and everything below it. Explicit entries under a
hidden folder are folded into the folder entry.`,
		func(s *session) visibilityFunc { return s.manager.HideFile })
}

// newHideSiblingsCmd creates the 'hide-siblings' command.
func newHideSiblingsCmd(opts *options) *cobra.Command {
	return newVisibilityCmd(opts, "hide-siblings", "Hide every sibling of a file or folder",
		`Hide every sibling of a file or folder, leaving the path itself visible.`,
		func(s *session) visibilityFunc { return s.manager.HideSiblings })
}

// newResetCmd creates the 'reset' command.
func newResetCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Remove every path entry from the exclude map",
		Long:  `Remove every literal path entry from the exclude map. Glob entries are kept.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, s *session) error {
				result, err := s.manager.Reset(ctx)
				if err != nil {
					return err
				}
				if opts.jsonOutput {
					return printJSON(cmd.OutOrStdout(), result)
				}
				printResult(cmd.OutOrStdout(), result)
				return nil
			})
		},
	}
}

// newExcludesCmd creates the 'excludes' command.
func newExcludesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "excludes",
		Short: "Print the exclude map",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, s *session) error {
				excludes, err := s.manager.Excludes(ctx)
				if err != nil {
					return err
				}
				if opts.jsonOutput {
					return printJSON(cmd.OutOrStdout(), excludes)
				}
				printExcludes(cmd.OutOrStdout(), excludes)
				return nil
			})
		},
	}
}
