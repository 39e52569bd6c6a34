package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/anilblsn/sevenappsCase/internal/clips"
	"go.etcd.io/bbolt"
)

const (
	snapshotBucket  = "snapshot" // key: snapshotKey -> snapshotDoc JSON
	snapshotKey     = "clips"
	snapshotVersion = 1
)

// Snapshot persists the whole clip collection as a single value.
type Snapshot interface {
	Load() ([]clips.Clip, error)
	Save(items []clips.Clip) error
	Close() error
}

type snapshotDoc struct {
	Version int          `json:"version"`
	SavedAt time.Time    `json:"saved_at"`
	Clips   []clips.Clip `json:"clips"`
}

// BoltSnapshot keeps the snapshot in a bbolt file.
type BoltSnapshot struct {
	db *bbolt.DB
}

func OpenBolt(path string) (*BoltSnapshot, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open cache snapshot: %w", err)
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(snapshotBucket))
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to prepare cache snapshot: %w", err)
	}

	return &BoltSnapshot{db: db}, nil
}

// Load returns nil when nothing was saved yet.
func (b *BoltSnapshot) Load() ([]clips.Clip, error) {
	var doc snapshotDoc
	var found bool

	err := b.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(snapshotBucket)).Get([]byte(snapshotKey))
		if data == nil {
			return nil
		}
		found = true
		return json.Unmarshal(data, &doc)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read cache snapshot: %w", err)
	}
	if !found {
		return nil, nil
	}
	if doc.Version != snapshotVersion {
		return nil, fmt.Errorf("unsupported cache snapshot version %d", doc.Version)
	}
	return doc.Clips, nil
}

func (b *BoltSnapshot) Save(items []clips.Clip) error {
	data, err := json.Marshal(snapshotDoc{
		Version: snapshotVersion,
		SavedAt: time.Now().UTC(),
		Clips:   items,
	})
	if err != nil {
		return fmt.Errorf("failed to encode cache snapshot: %w", err)
	}

	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(snapshotBucket)).Put([]byte(snapshotKey), data)
	})
}

func (b *BoltSnapshot) Close() error {
	return b.db.Close()
}
