package cli

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/anilblsn/sevenappsCase/internal/clips"
)

func printClipTable(w io.Writer, items []clips.Clip, now time.Time) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No clips yet.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tWINDOW\tCREATED\tSIZE")
	for i := range items {
		c := &items[i]
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			c.ID, c.Name, windowText(c), clips.RelativeDate(c.CreatedAt, now), artifactSize(c.ArtifactLocator))
	}
	tw.Flush()
}

func printClip(w io.Writer, c *clips.Clip, now time.Time) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", c.ID)
	fmt.Fprintf(tw, "Name:\t%s\n", c.Name)
	fmt.Fprintf(tw, "Description:\t%s\n", c.Description)
	fmt.Fprintf(tw, "Window:\t%s (%.1fs)\n", windowText(c), c.Duration)
	fmt.Fprintf(tw, "Source:\t%s\n", c.SourceLocator)
	fmt.Fprintf(tw, "Clip file:\t%s (%s)\n", c.ArtifactLocator, artifactSize(c.ArtifactLocator))
	fmt.Fprintf(tw, "Created:\t%s (%s)\n", c.CreatedAt.Local().Format(time.DateTime), clips.RelativeDate(c.CreatedAt, now))
	fmt.Fprintf(tw, "Updated:\t%s\n", humanize.RelTime(c.UpdatedAt, now, "ago", "from now"))
	tw.Flush()
}

func artifactSize(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return "missing"
	}
	return humanize.Bytes(uint64(info.Size()))
}
