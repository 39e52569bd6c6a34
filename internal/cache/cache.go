// Package cache mirrors the clip collection in memory and persists it as a
// whole-collection snapshot, independent of the durable store. It is never
// the source of truth.
package cache

import (
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/anilblsn/sevenappsCase/internal/clips"
)

type Cache struct {
	snapshot Snapshot
	logger   *slog.Logger

	mu    sync.RWMutex
	items []clips.Clip // created_at descending
}

// New loads the persisted snapshot. An unreadable snapshot starts the cache
// empty rather than failing; the durable store rebuilds it.
func New(snapshot Snapshot, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	c := &Cache{snapshot: snapshot, logger: logger}

	items, err := snapshot.Load()
	if err != nil {
		logger.Warn("discarding unreadable cache snapshot", "error", err)
		items = nil
	}
	c.items = sortItems(items)
	logger.Debug("cache snapshot loaded", "clips", len(c.items))
	return c
}

func (c *Cache) List() []clips.Clip {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]clips.Clip, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Cache) Get(id string) (clips.Clip, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, item := range c.items {
		if item.ID == id {
			return item, true
		}
	}
	return clips.Clip{}, false
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Add inserts the clip, replacing any entry with the same id.
func (c *Cache) Add(clip clips.Clip) {
	c.mu.Lock()
	defer c.mu.Unlock()

	items := make([]clips.Clip, 0, len(c.items)+1)
	for _, item := range c.items {
		if item.ID != clip.ID {
			items = append(items, item)
		}
	}
	c.items = sortItems(append(items, clip))
	c.persistLocked()
}

// Update applies the patch to the entry with id, if cached.
func (c *Cache) Update(id string, patch clips.Patch) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, item := range c.items {
		if item.ID == id {
			c.items[i] = patch.Apply(item)
			c.persistLocked()
			return
		}
	}
}

func (c *Cache) Remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, item := range c.items {
		if item.ID == id {
			c.items = append(c.items[:i:i], c.items[i+1:]...)
			c.persistLocked()
			return
		}
	}
}

// Replace overwrites the whole collection.
func (c *Cache) Replace(all []clips.Clip) {
	c.mu.Lock()
	defer c.mu.Unlock()

	items := make([]clips.Clip, len(all))
	copy(items, all)
	c.items = sortItems(items)
	c.persistLocked()
}

func (c *Cache) Close() error {
	return c.snapshot.Close()
}

// persistLocked saves the snapshot. A failed save keeps the in-memory state.
func (c *Cache) persistLocked() {
	if err := c.snapshot.Save(c.items); err != nil {
		c.logger.Warn("failed to persist cache snapshot", "error", err, "clips", len(c.items))
	}
}

func sortItems(items []clips.Clip) []clips.Clip {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID > items[j].ID
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items
}
