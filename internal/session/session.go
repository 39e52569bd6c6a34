// Package session keeps clip-creation sessions: one source video, a player
// and a Segment Selector polling it. A session lives until its clip is
// committed, it is closed, or it sits idle past the TTL.
package session

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/anilblsn/sevenappsCase/internal/logging"
	"github.com/anilblsn/sevenappsCase/internal/media"
	"github.com/anilblsn/sevenappsCase/internal/selector"
	"github.com/google/uuid"
)

const (
	DefaultIdleTTL = 30 * time.Minute
	reapInterval   = time.Minute
)

// Prober reads a source's duration in seconds.
type Prober interface {
	Duration(ctx context.Context, path string) (float64, error)
}

type Session struct {
	ID        string
	Source    string
	CreatedAt time.Time
	Selector  *selector.Selector

	cancel   context.CancelFunc
	mu       sync.Mutex
	lastUsed time.Time
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastUsed = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

type Manager struct {
	prober       Prober
	logger       *slog.Logger
	pollInterval time.Duration
	idleTTL      time.Duration
	newPlayer    func(duration float64) selector.Player
	now          func() time.Time

	baseCtx context.Context
	stop    context.CancelFunc

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(prober Prober, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	ctx, stop := context.WithCancel(context.Background())
	return &Manager{
		prober:       prober,
		logger:       logging.WithComponent(logger, "session"),
		pollInterval: selector.DefaultPollInterval,
		idleTTL:      DefaultIdleTTL,
		newPlayer: func(d float64) selector.Player {
			return selector.NewClockPlayer(d)
		},
		now:      time.Now,
		baseCtx:  ctx,
		stop:     stop,
		sessions: make(map[string]*Session),
	}
}

// Open validates the source, reads its duration and starts a selector on it.
// If ctx is cancelled first, nothing is registered.
func (m *Manager) Open(ctx context.Context, source string) (*Session, error) {
	locator, err := media.Resolve(source)
	if err != nil {
		return nil, err
	}

	duration, err := m.prober.Duration(ctx, locator)
	if err != nil {
		return nil, fmt.Errorf("cannot read source duration: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	logger := logging.WithSessionID(m.logger, id)

	sel := selector.New(m.newPlayer(duration),
		selector.WithPollInterval(m.pollInterval),
		selector.WithLogger(logger),
	)
	sel.OnDurationKnown(duration)

	pollCtx, cancel := context.WithCancel(m.baseCtx)
	now := m.now()
	sess := &Session{
		ID:        id,
		Source:    locator,
		CreatedAt: now,
		Selector:  sel,
		cancel:    cancel,
		lastUsed:  now,
	}

	m.mu.Lock()
	m.sessions[id] = sess
	m.mu.Unlock()

	go sel.Start(pollCtx)

	logger.Info("session opened", "source", logging.SanitizePath(locator), "duration", duration)
	return sess, nil
}

func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	sess, ok := m.sessions[id]
	m.mu.Unlock()

	if ok {
		sess.touch(m.now())
	}
	return sess, ok
}

// Close stops the session's poller and forgets it. Closing an unknown id
// reports false.
func (m *Manager) Close(id string) bool {
	m.mu.Lock()
	sess, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if ok {
		sess.cancel()
		m.logger.Info("session closed", "session_id", id)
	}
	return ok
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Start reaps idle sessions until ctx is done, then closes the rest.
func (m *Manager) Start(ctx context.Context) {
	ticker := time.NewTicker(reapInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.CloseAll()
			return
		case <-ticker.C:
			m.reap()
		}
	}
}

func (m *Manager) CloseAll() {
	m.mu.Lock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	for _, id := range ids {
		m.Close(id)
	}
	m.stop()
}

func (m *Manager) reap() int {
	cutoff := m.now().Add(-m.idleTTL)

	m.mu.Lock()
	var idle []string
	for id, sess := range m.sessions {
		if sess.idleSince().Before(cutoff) {
			idle = append(idle, id)
		}
	}
	m.mu.Unlock()

	for _, id := range idle {
		m.Close(id)
	}
	if len(idle) > 0 {
		m.logger.Info("reaped idle sessions", "count", len(idle))
	}
	return len(idle)
}
