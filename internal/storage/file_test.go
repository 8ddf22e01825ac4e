package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"postcraft/internal/events"
	"postcraft/internal/storage/storagetest"
	"postcraft/internal/users"
)

func TestFileUserRepository(t *testing.T) {
	storagetest.RunUserRepositoryTests(t, func(t *testing.T, clock *storagetest.Clock) users.Repository {
		repo, err := NewFileUserRepository(filepath.Join(t.TempDir(), "users.json"), clock.Now)
		require.NoError(t, err)
		return repo
	})
}

func TestFileEventLog(t *testing.T) {
	storagetest.RunEventLogTests(t, func(t *testing.T, clock *storagetest.Clock) events.Log {
		log, err := NewFileEventLog(filepath.Join(t.TempDir(), "events.jsonl"), clock.Now)
		require.NoError(t, err)
		return log
	})
}

func TestFileEventLogSkipsMalformedLines(t *testing.T) {
	p := filepath.Join(t.TempDir(), "events.jsonl")
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	log, err := NewFileEventLog(p, func() time.Time { return now })
	require.NoError(t, err)

	_, err = log.Append(context.Background(), 1, "first")
	require.NoError(t, err)

	f, err := os.OpenFile(p, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("{not json\n\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	_, err = log.Append(context.Background(), 1, "second")
	require.NoError(t, err)

	start, end := events.Window(now, time.UTC)
	evs, err := log.Between(context.Background(), 1, start, end)
	require.NoError(t, err)
	require.Len(t, evs, 2)
	require.Equal(t, "first", evs[0].Text)
	require.Equal(t, "second", evs[1].Text)
}

func TestFileUserRepositoryPersists(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nested", "users.json")
	repo, err := NewFileUserRepository(p, time.Now)
	require.NoError(t, err)

	_, err = repo.RegisterIfAbsent(context.Background(), users.User{ID: 5, FirstName: "Linus"})
	require.NoError(t, err)

	reopened, err := NewFileUserRepository(p, time.Now)
	require.NoError(t, err)
	u, err := reopened.RegisterIfAbsent(context.Background(), users.User{ID: 5, FirstName: "Other"})
	require.NoError(t, err)
	require.Equal(t, "Linus", u.FirstName)
}

func TestFileUserRepositoryRejectsCorruptFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "users.json")
	require.NoError(t, os.WriteFile(p, []byte("{broken"), 0o644))

	repo, err := NewFileUserRepository(p, time.Now)
	require.NoError(t, err)
	_, err = repo.RegisterIfAbsent(context.Background(), users.User{ID: 1, FirstName: "A"})
	require.Error(t, err)

	data, err := os.ReadFile(p)
	require.NoError(t, err)
	require.Equal(t, "{broken", string(data))
}
