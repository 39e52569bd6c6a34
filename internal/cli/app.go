package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/anilblsn/sevenappsCase/internal/config"
	"github.com/anilblsn/sevenappsCase/internal/diary"
	"github.com/anilblsn/sevenappsCase/internal/ffmpeg"
	"github.com/anilblsn/sevenappsCase/internal/logging"
)

// app is everything a command needs, opened against the configured data
// directory.
type app struct {
	cfg    *config.EnvConfig
	logger *slog.Logger
	tool   *ffmpeg.Tool
	lib    *diary.Library
}

func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := os.MkdirAll(cfg.DataDir(), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	logger := logging.NewLogger(cfg.LogLevel())

	tool, err := ffmpeg.New(ffmpeg.Config{
		FFmpegPath:  cfg.FFmpegPath(),
		FFprobePath: cfg.FFprobePath(),
		OutputDir:   cfg.ArtifactsDir(),
		TrimTimeout: cfg.TrimTimeout(),
		Logger:      logging.WithComponent(logger, "ffmpeg"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to prepare ffmpeg: %w", err)
	}

	lib, err := diary.Open(diary.Options{
		DBPath:       cfg.DBPath(),
		CachePath:    cfg.CachePath(),
		ArtifactsDir: cfg.ArtifactsDir(),
		Trimmer:      tool,
		Logger:       logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open diary: %w", err)
	}

	if err := lib.Reconcile(ctx); err != nil {
		// The cache keeps serving its snapshot; durable operations report
		// the storage error themselves.
		logger.Warn("startup reconcile failed", "error", err)
	}

	return &app{cfg: cfg, logger: logger, tool: tool, lib: lib}, nil
}

func (a *app) Close() {
	if err := a.lib.Close(); err != nil {
		a.logger.Error("failed to close diary", "error", err)
	}
}
