package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"workspacemanager/internal/domain/models"
	"workspacemanager/internal/domain/services"
)

// newProfilesCmd creates the 'profiles' command group.
func newProfilesCmd(opts *options) *cobra.Command {
	profilesCmd := &cobra.Command{
		Use:   "profiles",
		Short: "Profile operations (list, switch, create, copy, delete)",
		Long:  `Commands for saving and restoring exclude map snapshots.`,
	}

	profilesCmd.AddCommand(newProfilesListCmd(opts))
	profilesCmd.AddCommand(newProfilesSwitchCmd(opts))
	profilesCmd.AddCommand(newProfilesCreateCmd(opts))
	profilesCmd.AddCommand(newProfilesCopyCmd(opts))
	profilesCmd.AddCommand(newProfilesDeleteCmd(opts))

	return profilesCmd
}

// newProfilesListCmd creates the 'profiles list' command.
func newProfilesListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, s *session) error {
				list, err := s.manager.ListProfiles(ctx)
				if err != nil {
					return err
				}
				if opts.jsonOutput {
					return printJSON(cmd.OutOrStdout(), list)
				}
				for _, p := range list.Profiles {
					marker := " "
					if p.Selected {
						marker = "*"
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, p.ID)
				}
				return nil
			})
		},
	}
}

type profileFunc func(ctx context.Context, profileID string) (*models.Profile, error)

func newProfileCmd(opts *options, use, short string, op func(s *session) profileFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, s *session) error {
				profile, err := op(s)(ctx, args[0])
				if err != nil {
					return err
				}
				if opts.jsonOutput {
					return printJSON(cmd.OutOrStdout(), profile)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "selected %s (%d entries)\n", profile.ID, len(profile.Excludes))
				return nil
			})
		},
	}
}

// newProfilesSwitchCmd creates the 'profiles switch' command.
func newProfilesSwitchCmd(opts *options) *cobra.Command {
	return newProfileCmd(opts, "switch", "Select a profile and load its snapshot",
		func(s *session) profileFunc { return s.manager.SwitchProfile })
}

// newProfilesCreateCmd creates the 'profiles create' command.
func newProfilesCreateCmd(opts *options) *cobra.Command {
	return newProfileCmd(opts, "create", "Create an empty profile and select it",
		func(s *session) profileFunc { return s.manager.CreateProfile })
}

// newProfilesCopyCmd creates the 'profiles copy' command.
func newProfilesCopyCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "copy <source> <new-id>",
		Short: "Save a copy of a profile under a new id",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := &services.CopyProfileRequest{SourceID: args[0], NewID: args[1]}

			return opts.run(cmd, func(ctx context.Context, s *session) error {
				profile, err := s.manager.CopyProfile(ctx, req)
				if err != nil {
					return err
				}
				if opts.jsonOutput {
					return printJSON(cmd.OutOrStdout(), profile)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "copied %s to %s\n", req.SourceID, profile.ID)
				return nil
			})
		},
	}
}

// newProfilesDeleteCmd creates the 'profiles delete' command.
func newProfilesDeleteCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, s *session) error {
				if err := s.manager.DeleteProfile(ctx, args[0]); err != nil {
					return err
				}
				if !opts.jsonOutput {
					fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
				}
				return nil
			})
		},
	}
}
