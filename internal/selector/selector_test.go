package selector

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePlayer is a Player whose snapshot is set directly by tests.
type fakePlayer struct {
	mu     sync.Mutex
	snap   Snapshot
	seeks  []float64
	pauses int
}

func (f *fakePlayer) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap
}

func (f *fakePlayer) Seek(t float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seeks = append(f.seeks, t)
	f.snap.CurrentTime = t
}

func (f *fakePlayer) Play() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snap.Playing = true
}

func (f *fakePlayer) Pause() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pauses++
	f.snap.Playing = false
}

func (f *fakePlayer) setTime(t float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snap.CurrentTime = t
}

func TestClampWindow_FixedLengthInsideSource(t *testing.T) {
	for _, d := range []float64{5, 5.5, 12, 60.25, 3600} {
		for _, start := range []float64{-10, 0, 1.3, d / 2, d - 5, d - 1, d, d + 100} {
			w := ClampWindow(d, start)
			assert.InDelta(t, SegmentLength, w.Length(), 1e-9, "d=%v start=%v", d, start)
			assert.GreaterOrEqual(t, w.Start, 0.0)
			assert.LessOrEqual(t, w.Start, d-SegmentLength+1e-9)
			assert.LessOrEqual(t, w.End, d)
		}
	}
}

func TestClampWindow_ShortSource(t *testing.T) {
	for _, start := range []float64{-1, 0, 2, 10} {
		w := ClampWindow(3, start)
		assert.Equal(t, Window{Start: 0, End: 3}, w)
	}
}

func TestClampWindow_UnknownDurationAndNaN(t *testing.T) {
	assert.Equal(t, Window{}, ClampWindow(0, 3))
	assert.Equal(t, Window{}, ClampWindow(math.NaN(), 3))
	assert.Equal(t, Window{Start: 0, End: 5}, ClampWindow(12, math.NaN()))
}

func TestSelector_ScenarioTwelveSecondSource(t *testing.T) {
	player := &fakePlayer{}
	var emitted []Window
	s := New(player, OnWindow(func(w Window) { emitted = append(emitted, w) }))

	s.OnDurationKnown(12)
	assert.Equal(t, Window{Start: 0, End: 5}, s.Window())

	s.SetStartTime(9)
	assert.Equal(t, Window{Start: 7, End: 12}, s.Window())
	assert.Equal(t, 7.0, s.State().Playhead)
	assert.Equal(t, []float64{7}, player.seeks)

	require.Len(t, emitted, 2)
	assert.Equal(t, Window{Start: 7, End: 12}, emitted[1])
}

func TestSelector_ShortSourceSelectionIsNoop(t *testing.T) {
	s := New(&fakePlayer{})
	s.OnDurationKnown(3)
	before := s.Window()

	s.SetStartTime(1.5)
	s.SetStartTime(-4)

	assert.Equal(t, Window{Start: 0, End: 3}, before)
	assert.Equal(t, before, s.Window())
}

func TestSelector_SetStartBeforeDurationIsIgnored(t *testing.T) {
	player := &fakePlayer{}
	s := New(player)

	s.SetStartTime(4)

	assert.Equal(t, Window{}, s.Window())
	assert.Empty(t, player.seeks)
}

func TestSelector_SeekKeepsWindow(t *testing.T) {
	player := &fakePlayer{}
	s := New(player)
	s.OnDurationKnown(30)
	s.SetStartTime(10)

	s.Seek(25)
	assert.Equal(t, Window{Start: 10, End: 15}, s.Window())
	assert.Equal(t, 25.0, s.State().Playhead)

	s.Seek(99)
	assert.Equal(t, 30.0, s.State().Playhead)
	s.Seek(-3)
	assert.Equal(t, 0.0, s.State().Playhead)
}

func TestSelector_PreviewAutoPausesAtWindowEnd(t *testing.T) {
	player := &fakePlayer{}
	s := New(player)
	s.OnDurationKnown(20)
	s.SetStartTime(4)

	s.Preview()
	st := s.State()
	assert.True(t, st.Previewing)
	assert.True(t, st.Playing)
	assert.Equal(t, 4.0, player.Snapshot().CurrentTime)

	player.setTime(6)
	s.Poll()
	assert.True(t, s.State().Previewing)
	assert.Equal(t, 0, player.pauses)

	player.setTime(8.95)
	s.Poll()
	st = s.State()
	assert.False(t, st.Previewing)
	assert.False(t, st.Playing)
	assert.Equal(t, 1, player.pauses)
}

func TestSelector_PlayLeavesPreviewMode(t *testing.T) {
	player := &fakePlayer{}
	s := New(player)
	s.OnDurationKnown(20)

	s.Preview()
	s.Play()
	assert.False(t, s.State().Previewing)

	player.setTime(5.5)
	s.Poll()
	assert.True(t, s.State().Playing, "plain playback must not stop at the window end")
}

func TestSelector_Toggle(t *testing.T) {
	player := &fakePlayer{}
	s := New(player)
	s.OnDurationKnown(20)

	s.Toggle()
	assert.True(t, s.State().Playing)
	s.Toggle()
	assert.False(t, s.State().Playing)
	assert.Equal(t, 1, player.pauses)
}

func TestSelector_PollLearnsDuration(t *testing.T) {
	player := &fakePlayer{snap: Snapshot{Duration: 42}}
	var emitted []Window
	s := New(player, OnWindow(func(w Window) { emitted = append(emitted, w) }))

	s.Poll()
	s.Poll()

	assert.Equal(t, 42.0, s.State().SourceDuration)
	assert.Equal(t, Window{Start: 0, End: 5}, s.Window())
	assert.Len(t, emitted, 1)
}

func TestSelector_StartPollsUntilCancelled(t *testing.T) {
	player := &fakePlayer{snap: Snapshot{Duration: 10, CurrentTime: 3, Playing: true}}
	s := New(player, WithPollInterval(5*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return s.State().Playhead == 3 && s.State().SourceDuration == 10
	}, time.Second, 5*time.Millisecond)
	assert.True(t, s.IsRunning())

	s.Start(ctx)

	cancel()
	<-done
	assert.False(t, s.IsRunning())
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "0:00", FormatClock(0))
	assert.Equal(t, "0:07", FormatClock(7.9))
	assert.Equal(t, "1:05", FormatClock(65))
	assert.Equal(t, "0:00", FormatClock(-2))
}
