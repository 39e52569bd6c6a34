// Package diary is the core of the clip service. It coordinates the durable
// clip store and the cache: every mutation is written to the store first,
// then mirrored into the cache, then the collection read is invalidated so
// the next listing reflects it.
package diary

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/anilblsn/sevenappsCase/internal/cache"
	"github.com/anilblsn/sevenappsCase/internal/clips"
	"github.com/anilblsn/sevenappsCase/internal/logging"
	"github.com/anilblsn/sevenappsCase/internal/trim"
)

// ClipMaker produces complete clips from a selected window.
type ClipMaker interface {
	Execute(ctx context.Context, req trim.Request) (*clips.Clip, error)
	Discard(artifact string)
}

type CreateRequest struct {
	SourceLocator string
	StartTime     float64
	EndTime       float64
	Name          string
	Description   string
}

// EditRequest changes the clip metadata. Nil fields are left alone.
type EditRequest struct {
	Name        *string
	Description *string
}

type Service struct {
	store   clips.Repository
	cache   *cache.Cache
	maker   ClipMaker
	query   *listQuery
	logger  *slog.Logger
	now     func() time.Time
	closers []io.Closer
}

func NewService(store clips.Repository, c *cache.Cache, maker ClipMaker, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.Discard()
	}
	s := &Service{
		store:  store,
		cache:  c,
		maker:  maker,
		logger: logging.WithComponent(logger, "diary"),
		now:    time.Now,
	}
	s.query = newListQuery(store.List)
	return s
}

// Reconcile aligns the cache with the durable store at startup. A non-empty
// store overwrites the cache; an empty store leaves the cached snapshot in
// place.
func (s *Service) Reconcile(ctx context.Context) error {
	all, err := s.store.List(ctx)
	if err != nil {
		return fmt.Errorf("reconcile cache: %w", err)
	}

	if len(all) > 0 {
		items := make([]clips.Clip, len(all))
		for i, c := range all {
			items[i] = *c
		}
		s.cache.Replace(items)
	}
	s.query.Invalidate()

	s.logger.Info("cache reconciled", "durable", len(all), "cached", s.cache.Len())
	return nil
}

// CreateClip trims the window and persists the resulting clip. A trim
// failure matches trim.ErrTrimFailed and leaves store and cache unchanged.
func (s *Service) CreateClip(ctx context.Context, req CreateRequest) (*clips.Clip, error) {
	clip, err := s.maker.Execute(ctx, trim.Request{
		SourceLocator: req.SourceLocator,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		Name:          req.Name,
		Description:   req.Description,
	})
	if err != nil {
		s.logger.Warn("clip creation failed", "error", err)
		return nil, err
	}

	if err := s.store.Insert(ctx, clip); err != nil {
		s.maker.Discard(clip.ArtifactLocator)
		if errors.Is(err, clips.ErrDuplicateID) {
			s.logger.Error("generated clip id collided", "clip_id", clip.ID)
		}
		return nil, err
	}

	s.cache.Add(*clip)
	s.query.Invalidate()

	logging.WithClipID(s.logger, clip.ID).Info("clip created",
		"start", clip.StartTime,
		"end", clip.EndTime,
	)
	return clip, nil
}

// ListClips returns the durable collection, newest first.
func (s *Service) ListClips(ctx context.Context) ([]*clips.Clip, error) {
	return s.query.Get(ctx)
}

// ListCachedClips returns the cache mirror without touching the store.
func (s *Service) ListCachedClips() []clips.Clip {
	return s.cache.List()
}

func (s *Service) CachedCount() int {
	return s.cache.Len()
}

// GetClip returns (nil, nil) when the clip does not exist.
func (s *Service) GetClip(ctx context.Context, id string) (*clips.Clip, error) {
	return s.store.Get(ctx, id)
}

// EditClip updates name and/or description, refreshes UpdatedAt and returns
// the stored result. A request without fields writes nothing and returns
// the current clip. A missing id yields clips.ErrNotFound.
func (s *Service) EditClip(ctx context.Context, id string, req EditRequest) (*clips.Clip, error) {
	if req.Name == nil && req.Description == nil {
		clip, err := s.store.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if clip == nil {
			return nil, fmt.Errorf("%w: %s", clips.ErrNotFound, id)
		}
		return clip, nil
	}

	now := s.now().UTC().Truncate(time.Millisecond)
	patch := clips.Patch{Name: req.Name, Description: req.Description, UpdatedAt: &now}

	matched, err := s.store.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	if !matched {
		return nil, fmt.Errorf("%w: %s", clips.ErrNotFound, id)
	}

	s.cache.Update(id, patch)
	s.query.Invalidate()

	clip, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if clip == nil {
		return nil, fmt.Errorf("%w: %s", clips.ErrNotFound, id)
	}

	logging.WithClipID(s.logger, id).Info("clip edited")
	return clip, nil
}

// RemoveClip deletes the clip and its artifact. Removing an absent clip
// succeeds.
func (s *Service) RemoveClip(ctx context.Context, id string) error {
	clip, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}

	if _, err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	s.cache.Remove(id)
	s.query.Invalidate()

	if clip != nil {
		s.maker.Discard(clip.ArtifactLocator)
		logging.WithClipID(s.logger, id).Info("clip removed")
	}
	return nil
}

// Close releases the resources acquired by Open.
func (s *Service) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}
