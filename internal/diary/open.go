package diary

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/anilblsn/sevenappsCase/internal/cache"
	"github.com/anilblsn/sevenappsCase/internal/clips"
	"github.com/anilblsn/sevenappsCase/internal/db"
	"github.com/anilblsn/sevenappsCase/internal/logging"
	"github.com/anilblsn/sevenappsCase/internal/settings"
	"github.com/anilblsn/sevenappsCase/internal/trim"
)

type Options struct {
	DBPath       string
	CachePath    string
	ArtifactsDir string
	Trimmer      trim.Trimmer
	Logger       *slog.Logger
}

// Library is an opened Service together with the handles the rest of the
// process shares with it.
type Library struct {
	*Service

	DB       *db.DB
	Store    *clips.Store
	Settings settings.Repository
}

// Open wires the durable store, the cache and the trim executor. The schema
// is not created here; the first store operation (or Reconcile) does it.
func Open(opts Options) (*Library, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	database, err := db.Open(opts.DBPath, logger)
	if err != nil {
		return nil, err
	}

	snapshot, err := cache.OpenBolt(opts.CachePath)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to open cache snapshot: %w", err)
	}

	store := clips.NewStore(database.Conn(), database, logging.WithComponent(logger, "clips"))
	c := cache.New(snapshot, logging.WithComponent(logger, "cache"))
	executor := trim.NewExecutor(opts.Trimmer, opts.ArtifactsDir, logging.WithComponent(logger, "trim"))

	svc := NewService(store, c, executor, logger)
	svc.closers = append(svc.closers, database, c)

	return &Library{
		Service:  svc,
		DB:       database,
		Store:    store,
		Settings: settings.NewRepository(database.Conn()),
	}, nil
}

// SchemaVersion reports the applied migration version.
func (l *Library) SchemaVersion(ctx context.Context) (int64, error) {
	return l.DB.SchemaVersion(ctx)
}
