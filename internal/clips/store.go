package clips

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Repository is the durable clip table.
type Repository interface {
	Init(ctx context.Context) error
	Insert(ctx context.Context, clip *Clip) error
	List(ctx context.Context) ([]*Clip, error)
	Get(ctx context.Context, id string) (*Clip, error)
	Update(ctx context.Context, id string, patch Patch) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// Migrator creates or upgrades the schema.
type Migrator interface {
	Migrate(ctx context.Context) error
}

// Store is the SQLite-backed Repository. The schema is created lazily by the
// first operation (or an explicit Init); concurrent first callers share one
// attempt and a failed attempt is retried by the next caller.
type Store struct {
	db       *sql.DB
	migrator Migrator
	logger   *slog.Logger

	initGroup singleflight.Group
	ready     atomic.Bool
}

func NewStore(db *sql.DB, migrator Migrator, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{db: db, migrator: migrator, logger: logger}
}

// Init creates the schema once per Store.
func (s *Store) Init(ctx context.Context) error {
	if s.ready.Load() {
		return nil
	}

	_, err, shared := s.initGroup.Do("schema", func() (interface{}, error) {
		if s.ready.Load() {
			return nil, nil
		}
		// One caller's cancellation must not fail the attempt the others wait on.
		if err := s.migrator.Migrate(context.WithoutCancel(ctx)); err != nil {
			return nil, err
		}
		s.ready.Store(true)
		s.logger.Info("clip store initialized")
		return nil, nil
	})
	if err != nil {
		if !shared {
			s.logger.Error("clip store initialization failed", "error", err)
		}
		return fmt.Errorf("%w: %w", ErrInitializationFailed, err)
	}
	return nil
}

func (s *Store) Ready() bool {
	return s.ready.Load()
}

func (s *Store) ensureInit(ctx context.Context) error {
	if err := s.Init(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	return nil
}

func (s *Store) Insert(ctx context.Context, c *Clip) error {
	if err := s.ensureInit(ctx); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO clips (id, name, description, source_locator, artifact_locator,
			start_time, end_time, duration, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.Name, c.Description, c.SourceLocator, c.ArtifactLocator,
		c.StartTime, c.EndTime, c.EndTime-c.StartTime,
		formatTime(c.CreatedAt), formatTime(c.UpdatedAt))
	if err != nil {
		if isDuplicateKey(err) {
			return fmt.Errorf("%w: %s", ErrDuplicateID, c.ID)
		}
		return fmt.Errorf("failed to insert clip: %w", err)
	}
	return nil
}

// List returns every clip, most recently created first.
func (s *Store) List(ctx context.Context) ([]*Clip, error) {
	if err := s.ensureInit(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, source_locator, artifact_locator,
			start_time, end_time, duration, created_at, updated_at
		FROM clips ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list clips: %w", err)
	}
	defer rows.Close()

	result := []*Clip{}
	for rows.Next() {
		c, err := scanClip(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan clip: %w", err)
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

// Get returns (nil, nil) when no clip has the id.
func (s *Store) Get(ctx context.Context, id string) (*Clip, error) {
	if err := s.ensureInit(ctx); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, source_locator, artifact_locator,
			start_time, end_time, duration, created_at, updated_at
		FROM clips WHERE id = ?
	`, id)
	c, err := scanClip(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get clip: %w", err)
	}
	return c, nil
}

// Update writes the non-nil patch fields. An empty patch issues no write.
// It reports whether a row matched.
func (s *Store) Update(ctx context.Context, id string, patch Patch) (bool, error) {
	if err := s.ensureInit(ctx); err != nil {
		return false, err
	}
	if patch.IsEmpty() {
		return false, nil
	}

	var fields []string
	var args []interface{}
	if patch.Name != nil {
		fields = append(fields, "name = ?")
		args = append(args, *patch.Name)
	}
	if patch.Description != nil {
		fields = append(fields, "description = ?")
		args = append(args, *patch.Description)
	}
	if patch.UpdatedAt != nil {
		fields = append(fields, "updated_at = ?")
		args = append(args, formatTime(*patch.UpdatedAt))
	}
	args = append(args, id)

	res, err := s.db.ExecContext(ctx,
		"UPDATE clips SET "+strings.Join(fields, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return false, fmt.Errorf("failed to update clip: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to update clip: %w", err)
	}
	return n > 0, nil
}

// Delete removes the clip if present and reports whether a row matched.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	if err := s.ensureInit(ctx); err != nil {
		return false, err
	}

	res, err := s.db.ExecContext(ctx, "DELETE FROM clips WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("failed to delete clip: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete clip: %w", err)
	}
	return n > 0, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanClip(row scanner) (*Clip, error) {
	var c Clip
	var createdAt, updatedAt string
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.SourceLocator, &c.ArtifactLocator,
		&c.StartTime, &c.EndTime, &c.Duration, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	c.CreatedAt = parseTime(createdAt)
	c.UpdatedAt = parseTime(updatedAt)
	return &c, nil
}

func isDuplicateKey(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
		return true
	}
	return sqliteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT &&
		strings.Contains(sqliteErr.Error(), "UNIQUE")
}
