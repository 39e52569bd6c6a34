package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anilblsn/sevenappsCase/internal/clips"
	"github.com/anilblsn/sevenappsCase/internal/export"
)

func newExportCommand() *cobra.Command {
	var (
		title string
		fps   float64
		out   string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the diary as an EDL, oldest clip first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if fps < 0 || fps > 240 {
				return fmt.Errorf("invalid --fps %v", fps)
			}

			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			all, err := a.lib.ListClips(cmd.Context())
			if err != nil {
				return err
			}
			items := make([]clips.Clip, len(all))
			for i, c := range all {
				items[i] = *c
			}

			opts := export.Options{Title: title, FrameRate: fps}
			if out == "" {
				fmt.Fprint(cmd.OutOrStdout(), export.GenerateEDL(items, opts))
				return nil
			}
			if err := export.WriteEDL(out, items, opts); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d clips to %s\n", len(items), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", export.DefaultTitle, "EDL title")
	cmd.Flags().Float64Var(&fps, "fps", export.DefaultFrameRate, "Timecode frame rate")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write to a file instead of stdout")
	return cmd
}
