// Package ui runs the desktop tray: a live clip count, a shortcut to the
// clips folder and Quit.
package ui

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/getlantern/systray"

	"github.com/anilblsn/sevenappsCase/internal/logging"
)

//go:embed icon.png
var iconBytes []byte

const defaultRefreshInterval = 5 * time.Second

// ClipCounter reports the number of clips the cache currently mirrors.
type ClipCounter interface {
	CachedCount() int
}

// SessionCounter reports the number of open selection sessions.
type SessionCounter interface {
	Len() int
}

type Tray struct {
	clips    ClipCounter
	sessions SessionCounter
	apiURL   string
	logger   *slog.Logger
	refresh  time.Duration

	clipsItem    *systray.MenuItem
	sessionsItem *systray.MenuItem

	mu   sync.Mutex
	stop chan struct{}

	onOpenClips func() error
	onQuit      func()
}

type TrayConfig struct {
	Clips       ClipCounter
	Sessions    SessionCounter
	APIURL      string
	Logger      *slog.Logger
	OnOpenClips func() error
	OnQuit      func()
}

func NewTray(cfg TrayConfig) *Tray {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Tray{
		clips:       cfg.Clips,
		sessions:    cfg.Sessions,
		apiURL:      cfg.APIURL,
		logger:      logging.WithComponent(logger, "tray"),
		refresh:     defaultRefreshInterval,
		stop:        make(chan struct{}),
		onOpenClips: cfg.OnOpenClips,
		onQuit:      cfg.OnQuit,
	}
}

// Run blocks on the platform event loop.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

func (t *Tray) onReady() {
	systray.SetIcon(iconBytes)
	systray.SetTitle("Diary")
	systray.SetTooltip("Video Diary")

	t.clipsItem = systray.AddMenuItem(clipsLabel(0), "Clips in the diary")
	t.clipsItem.Disable()

	t.sessionsItem = systray.AddMenuItem(sessionsLabel(0), "Open clip selections")
	t.sessionsItem.Disable()

	if t.apiURL != "" {
		apiItem := systray.AddMenuItem("API: "+t.apiURL, "Local API address")
		apiItem.Disable()
	}

	systray.AddSeparator()

	openItem := systray.AddMenuItem("Open Clips Folder", "Show trimmed clips")

	systray.AddSeparator()

	quitItem := systray.AddMenuItem("Quit", "Quit Video Diary")

	t.updateCounts()
	go t.refreshLoop()

	go func() {
		for {
			select {
			case <-openItem.ClickedCh:
				t.handleOpenClips()
			case <-quitItem.ClickedCh:
				t.logger.Info("quit requested from tray")
				if t.onQuit != nil {
					t.onQuit()
				}
				t.Quit()
				return
			}
		}
	}()

	t.logger.Info("system tray ready")
}

func (t *Tray) onExit() {
	t.logger.Info("system tray exiting")
}

func (t *Tray) refreshLoop() {
	ticker := time.NewTicker(t.refresh)
	defer ticker.Stop()

	for {
		select {
		case <-t.stop:
			return
		case <-ticker.C:
			t.updateCounts()
		}
	}
}

func (t *Tray) updateCounts() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.clips != nil && t.clipsItem != nil {
		t.clipsItem.SetTitle(clipsLabel(t.clips.CachedCount()))
	}
	if t.sessions != nil && t.sessionsItem != nil {
		t.sessionsItem.SetTitle(sessionsLabel(t.sessions.Len()))
	}
}

func (t *Tray) handleOpenClips() {
	if t.onOpenClips == nil {
		return
	}
	if err := t.onOpenClips(); err != nil {
		t.logger.Error("failed to open clips folder", "error", err)
	}
}

// Quit stops the refresh loop and the event loop. It is safe to call more
// than once.
func (t *Tray) Quit() {
	t.mu.Lock()
	select {
	case <-t.stop:
	default:
		close(t.stop)
	}
	t.mu.Unlock()
	systray.Quit()
}

func clipsLabel(n int) string {
	if n == 1 {
		return "Clips: 1 clip"
	}
	return fmt.Sprintf("Clips: %s clips", humanize.Comma(int64(n)))
}

func sessionsLabel(n int) string {
	if n == 0 {
		return "No open selections"
	}
	return fmt.Sprintf("Open selections: %d", n)
}

// OpenFolder reveals dir in the platform file manager.
func OpenFolder(dir string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", dir)
	case "windows":
		cmd = exec.Command("explorer", dir)
	default:
		cmd = exec.Command("xdg-open", dir)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open %s: %w", dir, err)
	}
	go cmd.Wait()
	return nil
}
