package selector

import (
	"math"
	"sync"
	"time"
)

// ClockPlayer is a Player whose playhead advances with the wall clock. It
// stands in for a real video surface when the window is chosen remotely.
type ClockPlayer struct {
	duration float64
	now      func() time.Time

	mu        sync.Mutex
	position  float64 // position at startedAt
	startedAt time.Time
	playing   bool
}

func NewClockPlayer(duration float64) *ClockPlayer {
	if !(duration > 0) || math.IsInf(duration, 0) {
		duration = 0
	}
	return &ClockPlayer{duration: duration, now: time.Now}
}

func (p *ClockPlayer) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	pos := p.positionLocked()
	if p.playing && pos >= p.duration {
		p.position = p.duration
		p.playing = false
	}
	return Snapshot{CurrentTime: pos, Duration: p.duration, Playing: p.playing}
}

func (p *ClockPlayer) Seek(t float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.position = math.Max(0, math.Min(t, p.duration))
	p.startedAt = p.now()
}

// Play resumes from the playhead; at the end of the source it restarts
// from zero.
func (p *ClockPlayer) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.playing {
		return
	}
	if p.position >= p.duration {
		p.position = 0
	}
	p.startedAt = p.now()
	p.playing = true
}

func (p *ClockPlayer) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.position = p.positionLocked()
	p.playing = false
}

func (p *ClockPlayer) positionLocked() float64 {
	if !p.playing {
		return p.position
	}
	pos := p.position + p.now().Sub(p.startedAt).Seconds()
	return math.Min(pos, p.duration)
}
