// Package selector turns a source duration and scrub gestures into a
// fixed-length trim window and drives preview playback of that window.
//
// The selector never fails: out-of-range input is clamped. Player state is
// refreshed by polling a snapshot on a fixed cadence.
package selector

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"
)

const (
	// SegmentLength is the fixed clip length in seconds.
	SegmentLength = 5.0

	// PreviewTolerance absorbs polling granularity when stopping a preview
	// at the window end.
	PreviewTolerance = 0.1

	DefaultPollInterval = 100 * time.Millisecond
)

// Snapshot is the pull-based view of the external player.
type Snapshot struct {
	CurrentTime float64
	Duration    float64
	Playing     bool
}

// Player is the external video player the selector observes and drives.
type Player interface {
	Snapshot() Snapshot
	Seek(t float64)
	Play()
	Pause()
}

// Window is a [Start, End] interval in seconds.
type Window struct {
	Start float64 `json:"start_time"`
	End   float64 `json:"end_time"`
}

func (w Window) Length() float64 {
	return w.End - w.Start
}

// ClampWindow places a SegmentLength window at start inside [0, duration].
// Sources shorter than SegmentLength yield [0, duration]. An unknown
// duration (<= 0) yields the empty window.
func ClampWindow(duration, start float64) Window {
	if !(duration > 0) || math.IsInf(duration, 0) {
		return Window{}
	}
	if math.IsNaN(start) {
		start = 0
	}
	maxStart := math.Max(0, duration-SegmentLength)
	start = math.Max(0, math.Min(start, maxStart))
	return Window{Start: start, End: math.Min(start+SegmentLength, duration)}
}

// State is the observable selection session state.
type State struct {
	SourceDuration float64 `json:"source_duration"`
	StartTime      float64 `json:"start_time"`
	EndTime        float64 `json:"end_time"`
	Playhead       float64 `json:"playhead"`
	Playing        bool    `json:"playing"`
	Previewing     bool    `json:"previewing"`
}

func (s State) Window() Window {
	return Window{Start: s.StartTime, End: s.EndTime}
}

type Option func(*Selector)

func WithPollInterval(d time.Duration) Option {
	return func(s *Selector) {
		if d > 0 {
			s.pollInterval = d
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Selector) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// OnWindow registers a callback receiving every new window. It runs outside
// the selector's lock.
func OnWindow(fn func(Window)) Option {
	return func(s *Selector) {
		s.onWindow = fn
	}
}

type Selector struct {
	player       Player
	logger       *slog.Logger
	pollInterval time.Duration
	onWindow     func(Window)

	mu    sync.Mutex
	state State

	running atomic.Bool
}

func New(player Player, opts ...Option) *Selector {
	s := &Selector{
		player:       player,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		pollInterval: DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnDurationKnown records the source duration and re-clamps the window.
// Non-positive durations are ignored.
func (s *Selector) OnDurationKnown(d float64) {
	if !(d > 0) || math.IsInf(d, 0) {
		return
	}

	s.mu.Lock()
	w := s.setDurationLocked(d)
	s.mu.Unlock()

	s.emit(w)
}

func (s *Selector) setDurationLocked(d float64) Window {
	s.state.SourceDuration = d
	w := ClampWindow(d, s.state.StartTime)
	s.state.StartTime, s.state.EndTime = w.Start, w.End
	return w
}

// SetStartTime moves the window to start at t, clamped so the window stays
// inside the source. The playhead follows the new start. It is a no-op
// until the duration is known.
func (s *Selector) SetStartTime(t float64) {
	s.mu.Lock()
	if s.state.SourceDuration <= 0 {
		s.mu.Unlock()
		return
	}
	w := ClampWindow(s.state.SourceDuration, t)
	s.state.StartTime, s.state.EndTime = w.Start, w.End
	s.state.Playhead = w.Start
	s.player.Seek(w.Start)
	s.mu.Unlock()

	s.emit(w)
}

// Seek moves the playhead without touching the window.
func (s *Selector) Seek(t float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if math.IsNaN(t) || t < 0 {
		t = 0
	}
	if d := s.state.SourceDuration; d > 0 && t > d {
		t = d
	}
	s.player.Seek(t)
	s.state.Playhead = t
}

// Play plays from the playhead to the end of the source, leaving preview
// mode.
func (s *Selector) Play() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Previewing = false
	s.player.Play()
	s.state.Playing = true
}

func (s *Selector) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.player.Pause()
	s.state.Playing = false
	s.state.Previewing = false
}

// Toggle pauses when playing and plays otherwise.
func (s *Selector) Toggle() {
	s.mu.Lock()
	playing := s.state.Playing
	s.mu.Unlock()

	if playing {
		s.Pause()
	} else {
		s.Play()
	}
}

// Preview plays the selected window from its start; Poll pauses playback
// once the playhead reaches the window end.
func (s *Selector) Preview() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.SourceDuration <= 0 {
		return
	}
	s.state.Previewing = true
	s.player.Seek(s.state.StartTime)
	s.state.Playhead = s.state.StartTime
	s.player.Play()
	s.state.Playing = true
}

// Poll samples the player once.
func (s *Selector) Poll() {
	s.mu.Lock()
	snap := s.player.Snapshot()
	s.state.Playhead = snap.CurrentTime
	s.state.Playing = snap.Playing

	var w *Window
	if s.state.SourceDuration <= 0 && snap.Duration > 0 && !math.IsInf(snap.Duration, 0) {
		nw := s.setDurationLocked(snap.Duration)
		w = &nw
	}

	if s.state.Previewing && s.state.Playhead >= s.state.EndTime-PreviewTolerance {
		if s.state.Playing {
			s.player.Pause()
			s.state.Playing = false
		}
		s.state.Previewing = false
		s.logger.Debug("preview finished", "playhead", s.state.Playhead)
	}
	s.mu.Unlock()

	if w != nil {
		s.emit(*w)
	}
}

// Start polls the player until ctx is done. Calling Start on a running
// selector returns immediately.
func (s *Selector) Start(ctx context.Context) {
	if s.running.Swap(true) {
		return
	}
	defer s.running.Store(false)

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Poll()
		}
	}
}

func (s *Selector) IsRunning() bool {
	return s.running.Load()
}

func (s *Selector) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Selector) Window() Window {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Window()
}

func (s *Selector) emit(w Window) {
	if s.onWindow != nil {
		s.onWindow(w)
	}
}

// FormatClock renders seconds as m:ss.
func FormatClock(seconds float64) string {
	if math.IsNaN(seconds) || seconds < 0 {
		seconds = 0
	}
	total := int(math.Floor(seconds))
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
