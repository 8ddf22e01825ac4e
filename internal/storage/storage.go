package storage

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"postcraft/internal/events"
	"postcraft/internal/storage/mongostore"
	"postcraft/internal/storage/postgres"
	"postcraft/internal/users"
)

// Backend is an opened persistence layer for both collections.
type Backend struct {
	Kind   string
	Users  users.Repository
	Events events.Log

	close func(ctx context.Context) error
}

func (b *Backend) Close(ctx context.Context) error {
	if b.close == nil {
		return nil
	}
	return b.close(ctx)
}

type Options struct {
	// Schema is the Postgres schema holding the tables.
	Schema  string
	Logger  *slog.Logger
	NowFunc func() time.Time
}

// Open selects a backend from the connection string scheme:
// mongodb:// and mongodb+srv:// for MongoDB, postgres:// and postgresql://
// for Postgres, file://<dir> for local JSON files.
func Open(ctx context.Context, rawURL string, opts Options) (*Backend, error) {
	if opts.NowFunc == nil {
		opts.NowFunc = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	scheme, rest, ok := strings.Cut(rawURL, "://")
	if !ok {
		return nil, fmt.Errorf("storage: missing scheme in connection string")
	}

	switch strings.ToLower(scheme) {
	case "file":
		return openFile(rest, opts.NowFunc)
	case "mongodb", "mongodb+srv":
		store, err := mongostore.Open(ctx, rawURL, opts.NowFunc)
		if err != nil {
			return nil, err
		}
		return &Backend{Kind: "mongodb", Users: store, Events: store, close: store.Close}, nil
	case "postgres", "postgresql":
		store, err := postgres.Open(ctx, rawURL, opts.Schema, opts.Logger, opts.NowFunc)
		if err != nil {
			return nil, err
		}
		return &Backend{
			Kind:   "postgres",
			Users:  store,
			Events: store,
			close:  func(context.Context) error { return store.Close() },
		}, nil
	default:
		return nil, fmt.Errorf("storage: unsupported scheme %q", scheme)
	}
}

func openFile(dir string, nowFunc func() time.Time) (*Backend, error) {
	if dir == "" {
		return nil, fmt.Errorf("storage: empty directory in file connection string")
	}
	userRepo, err := NewFileUserRepository(filepath.Join(dir, "users.json"), nowFunc)
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}
	eventLog, err := NewFileEventLog(filepath.Join(dir, "events.jsonl"), nowFunc)
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}
	return &Backend{Kind: "file", Users: userRepo, Events: eventLog}, nil
}
