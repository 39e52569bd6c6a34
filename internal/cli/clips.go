package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/anilblsn/sevenappsCase/internal/clips"
	"github.com/anilblsn/sevenappsCase/internal/diary"
)

func newClipsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clips",
		Short: "List, inspect, edit and remove clips",
	}
	cmd.AddCommand(
		newClipsListCommand(),
		newClipsShowCommand(),
		newClipsEditCommand(),
		newClipsRemoveCommand(),
	)
	return cmd
}

func newClipsListCommand() *cobra.Command {
	var cached bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List clips, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			var items []clips.Clip
			if cached {
				items = a.lib.ListCachedClips()
			} else {
				all, err := a.lib.ListClips(cmd.Context())
				if err != nil {
					return err
				}
				items = make([]clips.Clip, len(all))
				for i, c := range all {
					items[i] = *c
				}
			}

			printClipTable(cmd.OutOrStdout(), items, time.Now())
			return nil
		},
	}
	cmd.Flags().BoolVar(&cached, "cached", false, "Read the cache snapshot instead of the database")
	return cmd
}

func newClipsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show one clip",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			clip, err := a.lib.GetClip(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if clip == nil {
				return fmt.Errorf("%w: %s", clips.ErrNotFound, args[0])
			}
			printClip(cmd.OutOrStdout(), clip, time.Now())
			return nil
		},
	}
}

func newClipsEditCommand() *cobra.Command {
	var name, description string

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change a clip's name or description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := diary.EditRequest{}
			if cmd.Flags().Changed("name") {
				req.Name = &name
			}
			if cmd.Flags().Changed("description") {
				req.Description = &description
			}
			if err := req.Normalize(); err != nil {
				return err
			}

			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			clip, err := a.lib.EditClip(cmd.Context(), args[0], req)
			if err != nil {
				return err
			}
			printClip(cmd.OutOrStdout(), clip, time.Now())
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "New name (1-100 characters)")
	cmd.Flags().StringVar(&description, "description", "", "New description (1-500 characters)")
	return cmd
}

func newClipsRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"remove"},
		Short:   "Remove a clip and its file",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.lib.RemoveClip(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
			return nil
		},
	}
}
