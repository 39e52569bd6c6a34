package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/anilblsn/sevenappsCase/internal/api"
	"github.com/anilblsn/sevenappsCase/internal/config"
	"github.com/anilblsn/sevenappsCase/internal/ffmpeg"
	"github.com/anilblsn/sevenappsCase/internal/logging"
	"github.com/anilblsn/sevenappsCase/internal/playback"
	"github.com/anilblsn/sevenappsCase/internal/session"
	"github.com/anilblsn/sevenappsCase/internal/settings"
	"github.com/anilblsn/sevenappsCase/internal/ui"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the local API and tray",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd)
		},
	}
}

func runServe(cmd *cobra.Command) error {
	startTime := time.Now()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	logger := a.logger
	logger.Info("starting video diary", "version", config.Version, "data_dir", a.cfg.DataDir())

	deviceID, err := settings.EnsureDeviceID(ctx, a.lib.Settings)
	if err != nil {
		return fmt.Errorf("failed to ensure device ID: %w", err)
	}
	authToken, err := settings.EnsureAuthToken(ctx, a.lib.Settings)
	if err != nil {
		return fmt.Errorf("failed to ensure auth token: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  Video Diary %s\n", config.Version)
	fmt.Fprintf(out, "  API URL:    http://127.0.0.1:%d\n", a.cfg.Port())
	fmt.Fprintf(out, "  Auth Token: %s\n", authToken)
	fmt.Fprintf(out, "  Clips:      %d (cached)\n", a.lib.CachedCount())
	fmt.Fprintln(out)

	doctor := ffmpeg.NewDoctor(a.tool, logging.WithComponent(logger, "doctor"))
	go func() {
		probeCtx, probeCancel := context.WithTimeout(ctx, 30*time.Second)
		defer probeCancel()
		caps, err := doctor.Refresh(probeCtx)
		if err != nil {
			logger.Warn("initial ffmpeg probe failed", "error", err)
			return
		}
		if !caps.CanTrim() {
			logger.Warn("ffmpeg or ffprobe missing, clip creation will fail",
				"ffmpeg", caps.HasFFmpeg, "ffprobe", caps.HasFFprobe)
			return
		}
		logger.Info("ffmpeg detected", "ffmpeg", caps.FFmpegVersion, "ffprobe", caps.FFprobeVersion)
	}()

	sessions := session.NewManager(a.tool, logger)
	go sessions.Start(ctx)

	apiServer := api.NewServer(api.ServerConfig{
		Port:           a.cfg.Port(),
		Clips:          a.lib.Service,
		Sessions:       sessions,
		Prober:         a.tool,
		PlaybackServer: playback.NewServer(a.cfg.ArtifactsDir(), logging.WithComponent(logger, "playback")),
		Settings:       a.lib.Settings,
		Doctor:         doctor,
		SchemaVersion:  a.lib.SchemaVersion,
		Logger:         logger,
		StartTime:      startTime,
		DeviceID:       deviceID,
	})

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- apiServer.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	quitCh := make(chan struct{})
	var tray *ui.Tray

	if a.cfg.Headless() {
		logger.Info("running in headless mode (no system tray)")
	} else {
		tray = ui.NewTray(ui.TrayConfig{
			Clips:    a.lib.Service,
			Sessions: sessions,
			APIURL:   fmt.Sprintf("http://127.0.0.1:%d", a.cfg.Port()),
			Logger:   logger,
			OnOpenClips: func() error {
				return ui.OpenFolder(a.cfg.ArtifactsDir())
			},
			OnQuit: func() {
				close(quitCh)
			},
		})
		go tray.Run()
	}

	var runErr error
	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig)
	case <-quitCh:
	case err := <-serverErr:
		if err != nil {
			logger.Error("HTTP server error", "error", err)
			runErr = fmt.Errorf("http server: %w", err)
		}
	}

	logger.Info("initiating graceful shutdown")
	cancel()
	sessions.CloseAll()
	if tray != nil {
		tray.Quit()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown HTTP server", "error", err)
	}

	logger.Info("shutdown complete")
	return runErr
}
