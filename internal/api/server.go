// Package api exposes the clip service and selection sessions over a
// loopback-only HTTP API.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/anilblsn/sevenappsCase/internal/clips"
	"github.com/anilblsn/sevenappsCase/internal/diary"
	"github.com/anilblsn/sevenappsCase/internal/ffmpeg"
	"github.com/anilblsn/sevenappsCase/internal/playback"
	"github.com/anilblsn/sevenappsCase/internal/session"
	"github.com/anilblsn/sevenappsCase/internal/settings"
)

// ClipService is the part of diary.Service the API drives.
type ClipService interface {
	CreateClip(ctx context.Context, req diary.CreateRequest) (*clips.Clip, error)
	ListClips(ctx context.Context) ([]*clips.Clip, error)
	ListCachedClips() []clips.Clip
	CachedCount() int
	GetClip(ctx context.Context, id string) (*clips.Clip, error)
	EditClip(ctx context.Context, id string, req diary.EditRequest) (*clips.Clip, error)
	RemoveClip(ctx context.Context, id string) error
}

type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

type ServerConfig struct {
	Port           int
	Clips          ClipService
	Sessions       *session.Manager
	Prober         session.Prober
	PlaybackServer *playback.Server
	Settings       settings.Repository
	Doctor         *ffmpeg.Doctor
	SchemaVersion  func(ctx context.Context) (int64, error)
	Logger         *slog.Logger
	StartTime      time.Time
	DeviceID       string
	Version        string
}

func NewServer(cfg ServerConfig) *Server {
	router := NewRouter(cfg)

	return &Server{
		httpServer: &http.Server{
			Addr:    fmt.Sprintf("127.0.0.1:%d", cfg.Port),
			Handler: LoopbackOnly()(router),
			// Trims can run long; the write side is left unbounded.
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 0,
			IdleTimeout:  60 * time.Second,
		},
		logger: cfg.Logger,
	}
}

func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Addr() string {
	return s.httpServer.Addr
}
