package postgres

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"postcraft/internal/events"
	"postcraft/internal/storage/storagetest"
	"postcraft/internal/users"
)

const testURLEnv = "POSTCRAFT_TEST_POSTGRES_URL"

var schemaCounter atomic.Int64

func connect(t *testing.T) *sqlx.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping db tests in short mode.")
	}
	dsn := os.Getenv(testURLEnv)
	if dsn == "" {
		t.Skipf("%s not set", testURLEnv)
	}
	db, err := sqlx.Connect("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newStore(t *testing.T, db *sqlx.DB, clock *storagetest.Clock) *Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(strings.ToLower(t.Name()))
	schema := fmt.Sprintf("postcraft_test_%d_%s", schemaCounter.Add(1), name)
	if len(schema) > 60 {
		schema = schema[:60]
	}

	db.MustExec(fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", pq.QuoteIdentifier(schema)))
	t.Cleanup(func() {
		db.Exec(fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", pq.QuoteIdentifier(schema)))
	})

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	require.NoError(t, NewMigrator(db, logger).Migrate(t.Context(), schema))

	return New(db, schema, clock.Now)
}

func TestPostgresUserRepository(t *testing.T) {
	db := connect(t)
	storagetest.RunUserRepositoryTests(t, func(t *testing.T, clock *storagetest.Clock) users.Repository {
		return newStore(t, db, clock)
	})
}

func TestPostgresEventLog(t *testing.T) {
	db := connect(t)
	storagetest.RunEventLogTests(t, func(t *testing.T, clock *storagetest.Clock) events.Log {
		return newStore(t, db, clock)
	})
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := connect(t)
	store := newStore(t, db, storagetest.NewClock(testingNow()))

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	require.NoError(t, NewMigrator(db, logger).Migrate(t.Context(), store.schema))
}

func testingNow() time.Time {
	return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
}
