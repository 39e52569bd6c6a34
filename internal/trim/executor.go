// Package trim turns a selected window of a source video into a complete
// clip record. It invokes the external trim operation exactly once per call
// and never persists anything itself.
package trim

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/anilblsn/sevenappsCase/internal/clips"
)

var (
	// ErrTrimFailed matches every error produced by a failed trim operation.
	ErrTrimFailed = errors.New("trim failed")

	// ErrInvalidWindow is returned before trimming when the window is not
	// 0 <= start < end.
	ErrInvalidWindow = errors.New("invalid trim window")
)

// Trimmer extracts [start, end] seconds from source and returns the
// locator of the new artifact.
type Trimmer interface {
	Trim(ctx context.Context, source string, start, end float64) (string, error)
}

// Error carries the failed request and the underlying cause.
type Error struct {
	Source string
	Start  float64
	End    float64
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("trim %s [%.3f, %.3f]: %v", filepath.Base(e.Source), e.Start, e.End, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return target == ErrTrimFailed
}

// Request is the input of one clip creation.
type Request struct {
	SourceLocator string
	StartTime     float64
	EndTime       float64
	Name          string
	Description   string
}

type Executor struct {
	trimmer      Trimmer
	artifactsDir string
	logger       *slog.Logger

	now   func() time.Time
	newID func() string
}

// NewExecutor builds an executor. artifactsDir scopes Discard: only
// artifacts below it are ever removed.
func NewExecutor(trimmer Trimmer, artifactsDir string, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Executor{
		trimmer:      trimmer,
		artifactsDir: artifactsDir,
		logger:       logger,
		now:          time.Now,
		newID:        clips.NewID,
	}
}

// Execute trims the window and assembles the clip. On failure no clip is
// returned and the error matches ErrTrimFailed or ErrInvalidWindow.
func (e *Executor) Execute(ctx context.Context, req Request) (*clips.Clip, error) {
	if err := validateWindow(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	artifact, err := e.trimmer.Trim(ctx, req.SourceLocator, req.StartTime, req.EndTime)
	if err != nil {
		return nil, &Error{Source: req.SourceLocator, Start: req.StartTime, End: req.EndTime, Err: err}
	}
	if artifact == "" {
		return nil, &Error{Source: req.SourceLocator, Start: req.StartTime, End: req.EndTime,
			Err: errors.New("trim returned no artifact")}
	}

	// Stored timestamps carry millisecond precision.
	now := e.now().UTC().Truncate(time.Millisecond)
	clip := &clips.Clip{
		ID:              e.newID(),
		Name:            req.Name,
		Description:     req.Description,
		SourceLocator:   req.SourceLocator,
		ArtifactLocator: artifact,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		Duration:        req.EndTime - req.StartTime,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	e.logger.Info("clip assembled", "clip_id", clip.ID, "duration", clip.Duration)
	return clip, nil
}

// Discard removes an artifact produced by this executor. Locators outside
// the artifacts directory are left untouched.
func (e *Executor) Discard(artifact string) {
	if e.artifactsDir == "" || artifact == "" {
		return
	}
	rel, err := filepath.Rel(e.artifactsDir, artifact)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") || filepath.IsAbs(rel) {
		return
	}
	if err := os.Remove(artifact); err != nil && !os.IsNotExist(err) {
		e.logger.Warn("failed to remove artifact", "error", err, "artifact", filepath.Base(artifact))
	}
}

func validateWindow(start, end float64) error {
	switch {
	case math.IsNaN(start) || math.IsNaN(end) || math.IsInf(start, 0) || math.IsInf(end, 0):
		return fmt.Errorf("%w: non-finite bounds", ErrInvalidWindow)
	case start < 0:
		return fmt.Errorf("%w: start %.3f is negative", ErrInvalidWindow, start)
	case end <= start:
		return fmt.Errorf("%w: end %.3f is not after start %.3f", ErrInvalidWindow, end, start)
	}
	return nil
}
