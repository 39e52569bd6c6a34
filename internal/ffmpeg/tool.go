// Package ffmpeg wraps the ffmpeg and ffprobe executables: trimming a time
// window out of a source video, reading a source's duration and reporting
// whether the binaries are usable.
package ffmpeg

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Config holds the tool's configuration.
type Config struct {
	FFmpegPath   string        // default "ffmpeg"
	FFprobePath  string        // default "ffprobe"
	OutputDir    string        // trimmed artifacts land here
	TrimTimeout  time.Duration // 0 = no timeout
	ProbeTimeout time.Duration
	Logger       *slog.Logger
	DebugPaths   bool // if true, log full file paths; otherwise sanitise
}

// DefaultConfig returns production-ready defaults.
func DefaultConfig(outputDir string, logger *slog.Logger) Config {
	return Config{
		FFmpegPath:   "ffmpeg",
		FFprobePath:  "ffprobe",
		OutputDir:    outputDir,
		ProbeTimeout: 30 * time.Second,
		Logger:       logger,
	}
}

// Tool runs ffmpeg/ffprobe as subprocesses.
type Tool struct {
	cfg Config
}

func New(cfg Config) (*Tool, error) {
	if cfg.FFmpegPath == "" {
		cfg.FFmpegPath = "ffmpeg"
	}
	if cfg.FFprobePath == "" {
		cfg.FFprobePath = "ffprobe"
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = 30 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("cannot create output dir: %w", err)
	}

	return &Tool{cfg: cfg}, nil
}

func (t *Tool) OutputDir() string {
	return t.cfg.OutputDir
}

// Trim cuts [start, end] seconds out of source into a new mp4 under the
// output directory and returns its path. The call is not retried.
func (t *Tool) Trim(ctx context.Context, source string, start, end float64) (string, error) {
	if t.cfg.TrimTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.cfg.TrimTimeout)
		defer cancel()
	}

	outPath := filepath.Join(t.cfg.OutputDir, uuid.NewString()+".mp4")

	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-ss", fmtSeconds(start),
		"-to", fmtSeconds(end),
		"-i", source,
		"-c:v", "libx264",
		"-preset", "veryfast",
		"-crf", "18",
		"-c:a", "aac",
		"-b:a", "192k",
		"-movflags", "+faststart",
		outPath,
	}

	t.cfg.Logger.Info("executing trim",
		"source", t.safePath(source),
		"start", start,
		"end", end,
	)

	result := run(ctx, t.cfg.FFmpegPath, args...)
	if !result.IsSuccess() {
		os.Remove(outPath)
		t.cfg.Logger.Warn("trim failed",
			"exit_code", result.ExitCode,
			"duration_ms", result.Duration.Milliseconds(),
			"stderr_tail", truncate(result.StderrTail, 512),
		)
		return "", fmt.Errorf("ffmpeg exited %d: %s", result.ExitCode, strings.TrimSpace(truncate(result.StderrTail, 512)))
	}

	info, err := os.Stat(outPath)
	if err != nil {
		return "", fmt.Errorf("trim produced no output: %w", err)
	}
	if info.Size() == 0 {
		os.Remove(outPath)
		return "", fmt.Errorf("trim produced an empty file")
	}

	t.cfg.Logger.Info("trim succeeded",
		"duration_ms", result.Duration.Milliseconds(),
		"output", t.safePath(outPath),
	)
	return outPath, nil
}

// Duration reads the container duration of path in seconds.
func (t *Tool) Duration(ctx context.Context, path string) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, t.cfg.ProbeTimeout)
	defer cancel()

	result := run(ctx, t.cfg.FFprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	if !result.IsSuccess() {
		return 0, fmt.Errorf("ffprobe exited %d: %s", result.ExitCode, strings.TrimSpace(truncate(result.StderrTail, 512)))
	}

	s := strings.TrimSpace(result.Stdout)
	sec, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", s, err)
	}
	if sec < 0 {
		return 0, fmt.Errorf("negative duration %v", sec)
	}
	return sec, nil
}

// Capabilities reports which binaries answer `-version`.
func (t *Tool) Capabilities(ctx context.Context) (*Capabilities, error) {
	ctx, cancel := context.WithTimeout(ctx, t.cfg.ProbeTimeout)
	defer cancel()

	caps := &Capabilities{ProbedAt: time.Now()}
	caps.FFmpegVersion, caps.HasFFmpeg = t.version(ctx, t.cfg.FFmpegPath)
	caps.FFprobeVersion, caps.HasFFprobe = t.version(ctx, t.cfg.FFprobePath)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t.cfg.Logger.Info("ffmpeg probe complete",
		"ffmpeg", caps.HasFFmpeg,
		"ffprobe", caps.HasFFprobe,
	)
	return caps, nil
}

func (t *Tool) version(ctx context.Context, bin string) (string, bool) {
	result := run(ctx, bin, "-version")
	if !result.IsSuccess() {
		return "", false
	}
	line, _, _ := strings.Cut(result.Stdout, "\n")
	return strings.TrimSpace(line), true
}

func (t *Tool) safePath(path string) string {
	if t.cfg.DebugPaths {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Base(path)
	}
	if strings.HasPrefix(path, home) {
		return "~" + path[len(home):]
	}
	return filepath.Base(path)
}

func fmtSeconds(sec float64) string {
	return strconv.FormatFloat(sec, 'f', 3, 64)
}
