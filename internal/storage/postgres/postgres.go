package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const DefaultSchema = "postcraft"

// Store implements both the user repository and the event log on top of
// two tables in one schema.
type Store struct {
	db      *sqlx.DB
	schema  string
	tracer  trace.Tracer
	nowFunc func() time.Time
}

// Open connects to dsn and migrates schema before returning the store.
func Open(ctx context.Context, dsn, schema string, logger *slog.Logger, nowFunc func() time.Time) (*Store, error) {
	if schema == "" {
		schema = DefaultSchema
	}
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to db: %w", err)
	}
	if err := NewMigrator(db, logger.With("component", "migrator")).Migrate(ctx, schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return New(db, schema, nowFunc), nil
}

func New(db *sqlx.DB, schema string, nowFunc func() time.Time) *Store {
	if nowFunc == nil {
		nowFunc = time.Now
	}
	return &Store{
		db:      db,
		schema:  schema,
		tracer:  otel.Tracer("postcraft/storage/postgres"),
		nowFunc: nowFunc,
	}
}

func (s *Store) Close() error {
	return s.db.Close()
}
