// Package export renders the clip collection as an edit decision list that
// editing tools can import to rebuild the diary on a timeline.
package export

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/anilblsn/sevenappsCase/internal/clips"
)

// GenerateEDL renders a CMX3600-style edit list. Clips are laid out oldest
// first and back to back on the record side; each event points at the
// clip's source file and selected window.
func GenerateEDL(items []clips.Clip, opts Options) string {
	opts = opts.withDefaults()

	fps := int(math.Round(opts.FrameRate))
	if fps <= 0 {
		fps = int(DefaultFrameRate)
	}
	dropFrame := math.Abs(opts.FrameRate-29.97) < 0.01 || math.Abs(opts.FrameRate-59.94) < 0.01

	ordered := make([]clips.Clip, len(items))
	copy(ordered, items)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
		}
		return ordered[i].ID < ordered[j].ID
	})

	var b strings.Builder
	fmt.Fprintf(&b, "TITLE: %s\n", SanitizeName(opts.Title, maxReelName))
	if dropFrame {
		b.WriteString("FCM: DROP FRAME\n")
	} else {
		b.WriteString("FCM: NON-DROP FRAME\n")
	}
	b.WriteString("\n")

	record := 0.0
	for i, c := range ordered {
		length := c.EndTime - c.StartTime
		fmt.Fprintf(&b, "%03d  %-8s %-5s C        %s %s %s %s\n",
			i+1, "AX", "V",
			timecode(c.StartTime, fps), timecode(c.EndTime, fps),
			timecode(record, fps), timecode(record+length, fps),
		)
		fmt.Fprintf(&b, "* FROM CLIP NAME:  %s\n", SanitizeName(c.Name, maxReelName))
		fmt.Fprintf(&b, "* SOURCE FILE:  %s\n", c.SourceLocator)
		if c.ArtifactLocator != "" {
			fmt.Fprintf(&b, "* CLIP FILE:  %s\n", c.ArtifactLocator)
		}
		record += length
	}

	return b.String()
}

// WriteEDL renders the list into path. The parent directory must exist.
func WriteEDL(path string, items []clips.Clip, opts Options) error {
	if err := ValidateOutputDir(filepath.Dir(path)); err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(GenerateEDL(items, opts)), 0o644); err != nil {
		return fmt.Errorf("failed to write edl: %w", err)
	}
	return nil
}

// timecode formats seconds as HH:MM:SS:FF.
func timecode(seconds float64, fps int) string {
	frames := int(math.Round(seconds * float64(fps)))
	if frames < 0 {
		frames = 0
	}
	ff := frames % fps
	total := frames / fps
	return fmt.Sprintf("%02d:%02d:%02d:%02d", total/3600, total/60%60, total%60, ff)
}
