// Package media validates source videos and implements the picker that
// chooses one. A cancelled pick is an ordinary outcome, not an error.
package media

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var ErrUnsupported = errors.New("unsupported source")

var VideoExtensions = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".mkv":  true,
	".m4v":  true,
	".avi":  true,
	".webm": true,
	".3gp":  true,
}

func IsVideoFile(filename string) bool {
	return VideoExtensions[strings.ToLower(filepath.Ext(filename))]
}

// Resolve checks that path names a readable video file and returns its
// absolute form.
func Resolve(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("%w: empty path", ErrUnsupported)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s does not exist", ErrUnsupported, filepath.Base(abs))
		}
		return "", fmt.Errorf("cannot access source: %w", err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w: %s is not a regular file", ErrUnsupported, filepath.Base(abs))
	}
	if !IsVideoFile(abs) {
		return "", fmt.Errorf("%w: %s is not a video file", ErrUnsupported, filepath.Base(abs))
	}
	return abs, nil
}

// Selection is the outcome of a pick.
type Selection struct {
	Locator   string
	Cancelled bool
}

type Picker interface {
	Pick(ctx context.Context) (Selection, error)
}

// StaticPicker returns a fixed path; an empty path is a cancellation.
type StaticPicker struct {
	Path string
}

func (p StaticPicker) Pick(ctx context.Context) (Selection, error) {
	if strings.TrimSpace(p.Path) == "" {
		return Selection{Cancelled: true}, nil
	}
	locator, err := Resolve(p.Path)
	if err != nil {
		return Selection{}, err
	}
	return Selection{Locator: locator}, nil
}

// PromptPicker asks for a path on Out and reads one line from In. An empty
// answer, EOF or a cancelled context cancels the pick.
type PromptPicker struct {
	In     io.Reader
	Out    io.Writer
	Prompt string
}

func (p PromptPicker) Pick(ctx context.Context) (Selection, error) {
	prompt := p.Prompt
	if prompt == "" {
		prompt = "Video file: "
	}
	fmt.Fprint(p.Out, prompt)

	lines := make(chan string, 1)
	go func() {
		line, _ := bufio.NewReader(p.In).ReadString('\n')
		lines <- line
	}()

	select {
	case <-ctx.Done():
		return Selection{Cancelled: true}, nil
	case line := <-lines:
		return StaticPicker{Path: strings.TrimSpace(line)}.Pick(ctx)
	}
}
