package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anilblsn/sevenappsCase/internal/clips"
	"github.com/anilblsn/sevenappsCase/internal/diary"
	"github.com/anilblsn/sevenappsCase/internal/media"
	"github.com/anilblsn/sevenappsCase/internal/selector"
	"github.com/anilblsn/sevenappsCase/internal/session"
)

// errCancelled marks a pick the user backed out of.
var errCancelled = errors.New("no video selected")

type clipCreator interface {
	CreateClip(ctx context.Context, req diary.CreateRequest) (*clips.Clip, error)
}

type createOptions struct {
	start       float64
	name        string
	description string
}

func newCreateCommand() *cobra.Command {
	var opts createOptions

	cmd := &cobra.Command{
		Use:   "create [source]",
		Short: "Trim a 5-second clip out of a video",
		Long: `Trim a fixed 5-second window out of a video and add it to the diary.
Without a source argument the path is asked for interactively; an empty
answer cancels. The start is clamped so the window stays inside the video.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var picker media.Picker = media.PromptPicker{In: cmd.InOrStdin(), Out: cmd.OutOrStdout()}
			if len(args) == 1 {
				picker = media.StaticPicker{Path: args[0]}
			}

			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			clip, err := pickAndCreate(ctx, picker, a.tool, a.lib.Service, opts)
			if errors.Is(err, errCancelled) {
				fmt.Fprintln(cmd.OutOrStdout(), "No video selected.")
				return nil
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created %s %q (%s)\n", clip.ID, clip.Name, windowText(clip))
			return nil
		},
	}

	cmd.Flags().Float64Var(&opts.start, "start", 0, "Window start in seconds")
	cmd.Flags().StringVar(&opts.name, "name", "", "Clip name (1-100 characters)")
	cmd.Flags().StringVar(&opts.description, "description", "", "Clip description (1-500 characters)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("description")

	return cmd
}

// pickAndCreate runs the same steps as a selection session without the
// interactive player: pick, probe, clamp, trim and persist.
func pickAndCreate(ctx context.Context, picker media.Picker, prober session.Prober, svc clipCreator, opts createOptions) (*clips.Clip, error) {
	sel, err := picker.Pick(ctx)
	if err != nil {
		return nil, err
	}
	if sel.Cancelled {
		return nil, errCancelled
	}

	duration, err := prober.Duration(ctx, sel.Locator)
	if err != nil {
		return nil, fmt.Errorf("cannot read source duration: %w", err)
	}

	window := selector.ClampWindow(duration, opts.start)
	if window.Length() <= 0 {
		return nil, fmt.Errorf("%w: source has no playable duration", media.ErrUnsupported)
	}

	req := diary.CreateRequest{
		SourceLocator: sel.Locator,
		StartTime:     window.Start,
		EndTime:       window.End,
		Name:          opts.name,
		Description:   opts.description,
	}
	if err := req.Normalize(); err != nil {
		return nil, err
	}
	return svc.CreateClip(ctx, req)
}

func windowText(c *clips.Clip) string {
	return fmt.Sprintf("%s-%s", selector.FormatClock(c.StartTime), selector.FormatClock(c.EndTime))
}
