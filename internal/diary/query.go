package diary

import (
	"context"
	"sync"

	"github.com/anilblsn/sevenappsCase/internal/clips"
)

// listQuery caches the durable collection read until a mutation marks it
// stale. A read finishing after Invalidate never marks the data fresh,
// because Invalidate waits for the in-flight fetch.
type listQuery struct {
	fetch func(ctx context.Context) ([]*clips.Clip, error)

	mu    sync.RWMutex
	data  []*clips.Clip
	fresh bool
}

func newListQuery(fetch func(ctx context.Context) ([]*clips.Clip, error)) *listQuery {
	return &listQuery{fetch: fetch}
}

func (q *listQuery) Get(ctx context.Context) ([]*clips.Clip, error) {
	q.mu.RLock()
	if q.fresh {
		out := cloneClips(q.data)
		q.mu.RUnlock()
		return out, nil
	}
	q.mu.RUnlock()

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.fresh {
		return cloneClips(q.data), nil
	}

	data, err := q.fetch(ctx)
	if err != nil {
		return nil, err
	}
	q.data = data
	q.fresh = true
	return cloneClips(data), nil
}

func (q *listQuery) Invalidate() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.fresh = false
	q.data = nil
}

func (q *listQuery) IsFresh() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.fresh
}

func cloneClips(in []*clips.Clip) []*clips.Clip {
	out := make([]*clips.Clip, len(in))
	for i, c := range in {
		cp := *c
		out[i] = &cp
	}
	return out
}
