// Package settings stores small key/value entries (device id, API token)
// next to the clip table.
package settings

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	KeyDeviceID  = "device_id"
	KeyAuthToken = "auth_token"
)

type Repository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Get returns "" for a missing key.
func (r *SQLiteRepository) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read setting %s: %w", key, err)
	}
	return value, nil
}

func (r *SQLiteRepository) Set(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to write setting %s: %w", key, err)
	}
	return nil
}

// EnsureDeviceID returns the stored device id, generating one on first use.
func EnsureDeviceID(ctx context.Context, repo Repository) (string, error) {
	return ensure(ctx, repo, KeyDeviceID, func() (string, error) {
		return uuid.NewString(), nil
	})
}

// EnsureAuthToken returns the stored API token, generating one on first use.
func EnsureAuthToken(ctx context.Context, repo Repository) (string, error) {
	return ensure(ctx, repo, KeyAuthToken, func() (string, error) {
		b := make([]byte, 32)
		if _, err := rand.Read(b); err != nil {
			return "", err
		}
		return hex.EncodeToString(b), nil
	})
}

func ensure(ctx context.Context, repo Repository, key string, generate func() (string, error)) (string, error) {
	existing, err := repo.Get(ctx, key)
	if err != nil {
		return "", err
	}
	if existing != "" {
		return existing, nil
	}

	value, err := generate()
	if err != nil {
		return "", fmt.Errorf("failed to generate %s: %w", key, err)
	}
	if err := repo.Set(ctx, key, value); err != nil {
		return "", err
	}
	return value, nil
}
