package ffmpeg

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"
)

const defaultCacheTTL = 5 * time.Minute

// Capabilities is the result of probing the ffmpeg binaries.
type Capabilities struct {
	HasFFmpeg      bool      `json:"has_ffmpeg"`
	HasFFprobe     bool      `json:"has_ffprobe"`
	FFmpegVersion  string    `json:"ffmpeg_version,omitempty"`
	FFprobeVersion string    `json:"ffprobe_version,omitempty"`
	ProbedAt       time.Time `json:"probed_at"`
}

// CanTrim reports whether both trimming and duration probing are possible.
func (c *Capabilities) CanTrim() bool {
	return c != nil && c.HasFFmpeg && c.HasFFprobe
}

// CapabilityProber is implemented by Tool.
type CapabilityProber interface {
	Capabilities(ctx context.Context) (*Capabilities, error)
}

// Doctor caches probe results with a TTL so status requests do not spawn
// subprocesses every time.
type Doctor struct {
	prober CapabilityProber
	ttl    time.Duration
	logger *slog.Logger

	mu     sync.RWMutex
	cached *Capabilities
}

func NewDoctor(prober CapabilityProber, logger *slog.Logger) *Doctor {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Doctor{
		prober: prober,
		ttl:    defaultCacheTTL,
		logger: logger,
	}
}

// Get returns cached capabilities if fresh, otherwise re-probes.
func (d *Doctor) Get(ctx context.Context) (*Capabilities, error) {
	d.mu.RLock()
	if d.cached != nil && time.Since(d.cached.ProbedAt) < d.ttl {
		caps := d.cached
		d.mu.RUnlock()
		return caps, nil
	}
	d.mu.RUnlock()

	return d.Refresh(ctx)
}

func (d *Doctor) Peek() *Capabilities {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.cached
}

// Refresh probes regardless of freshness. On failure a stale result is
// returned when one exists.
func (d *Doctor) Refresh(ctx context.Context) (*Capabilities, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	caps, err := d.prober.Capabilities(ctx)
	if err != nil {
		d.logger.Warn("ffmpeg probe failed", "error", err)
		if d.cached != nil {
			d.logger.Info("returning stale ffmpeg capabilities")
			return d.cached, nil
		}
		return nil, err
	}

	d.cached = caps
	return caps, nil
}

func (d *Doctor) Invalidate() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cached = nil
}
