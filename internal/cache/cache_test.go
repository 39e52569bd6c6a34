package cache

import (
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/anilblsn/sevenappsCase/internal/clips"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSnapshot struct {
	items   []clips.Clip
	loadErr error
	saveErr error
	saves   atomic.Int32
}

func (f *fakeSnapshot) Load() ([]clips.Clip, error) { return f.items, f.loadErr }

func (f *fakeSnapshot) Save(items []clips.Clip) error {
	f.saves.Add(1)
	if f.saveErr != nil {
		return f.saveErr
	}
	f.items = append([]clips.Clip(nil), items...)
	return nil
}

func (f *fakeSnapshot) Close() error { return nil }

func clipAt(id string, minute int) clips.Clip {
	ts := time.Date(2025, 5, 1, 12, minute, 0, 0, time.UTC)
	return clips.Clip{ID: id, Name: id, Description: "d", StartTime: 0, EndTime: 5, Duration: 5, CreatedAt: ts, UpdatedAt: ts}
}

func TestCache_AddKeepsNewestFirst(t *testing.T) {
	snap := &fakeSnapshot{}
	c := New(snap, nil)

	c.Add(clipAt("a", 1))
	c.Add(clipAt("c", 3))
	c.Add(clipAt("b", 2))

	ids := []string{}
	for _, item := range c.List() {
		ids = append(ids, item.ID)
	}
	assert.Equal(t, []string{"c", "b", "a"}, ids)
	assert.Equal(t, int32(3), snap.saves.Load())
	assert.Len(t, snap.items, 3)
}

func TestCache_AddSameIDReplaces(t *testing.T) {
	c := New(&fakeSnapshot{}, nil)

	c.Add(clipAt("a", 1))
	updated := clipAt("a", 1)
	updated.Name = "renamed"
	c.Add(updated)

	require.Equal(t, 1, c.Len())
	got, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, "renamed", got.Name)
}

func TestCache_UpdateAppliesPatch(t *testing.T) {
	c := New(&fakeSnapshot{}, nil)
	c.Add(clipAt("a", 1))

	name := "Trip"
	at := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	c.Update("a", clips.Patch{Name: &name, UpdatedAt: &at})

	got, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, "Trip", got.Name)
	assert.Equal(t, "d", got.Description)
	assert.True(t, got.UpdatedAt.Equal(at))

	c.Update("missing", clips.Patch{Name: &name})
	assert.Equal(t, 1, c.Len())
}

func TestCache_RemoveIsIdempotent(t *testing.T) {
	snap := &fakeSnapshot{}
	c := New(snap, nil)
	c.Add(clipAt("a", 1))
	c.Add(clipAt("b", 2))

	c.Remove("a")
	c.Remove("a")

	assert.Equal(t, 1, c.Len())
	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, int32(3), snap.saves.Load(), "removing an absent id should not rewrite the snapshot")
}

func TestCache_ListReturnsCopy(t *testing.T) {
	c := New(&fakeSnapshot{}, nil)
	c.Add(clipAt("a", 1))

	list := c.List()
	list[0].Name = "mutated"

	got, _ := c.Get("a")
	assert.Equal(t, "a", got.Name)
}

func TestCache_LoadsSnapshotOnStart(t *testing.T) {
	snap := &fakeSnapshot{items: []clips.Clip{clipAt("old", 1), clipAt("new", 9)}}
	c := New(snap, nil)

	list := c.List()
	require.Len(t, list, 2)
	assert.Equal(t, "new", list[0].ID)
}

func TestCache_UnreadableSnapshotStartsEmpty(t *testing.T) {
	c := New(&fakeSnapshot{loadErr: errors.New("corrupt")}, nil)
	assert.Equal(t, 0, c.Len())
}

func TestCache_SaveFailureKeepsMemoryState(t *testing.T) {
	c := New(&fakeSnapshot{saveErr: errors.New("read-only")}, nil)
	c.Add(clipAt("a", 1))
	assert.Equal(t, 1, c.Len())
}

func TestBoltSnapshot_RoundTripAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.bolt")

	snap, err := OpenBolt(path)
	require.NoError(t, err)

	empty, err := snap.Load()
	require.NoError(t, err)
	assert.Nil(t, empty)

	c := New(snap, nil)
	c.Add(clipAt("a", 1))
	c.Add(clipAt("b", 2))
	require.NoError(t, c.Close())

	reopened, err := OpenBolt(path)
	require.NoError(t, err)
	defer reopened.Close()

	c2 := New(reopened, nil)
	list := c2.List()
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].ID)
	assert.Equal(t, "a", list[1].ID)
	assert.True(t, list[1].CreatedAt.Equal(clipAt("a", 1).CreatedAt))
}
