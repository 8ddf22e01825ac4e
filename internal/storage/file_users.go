package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"postcraft/internal/users"
)

// FileUserRepository keeps all users as one JSON array.
type FileUserRepository struct {
	path    string
	mu      sync.Mutex
	nowFunc func() time.Time
}

func NewFileUserRepository(path string, nowFunc func() time.Time) (*FileUserRepository, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure dir: %w", err)
	}
	// Touch file if not exists
	f, err := os.OpenFile(path, os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("touch file: %w", err)
	}
	_ = f.Close()
	return &FileUserRepository{path: path, nowFunc: nowFunc}, nil
}

func (r *FileUserRepository) RegisterIfAbsent(_ context.Context, u users.User) (users.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all, err := r.loadUnlocked()
	if err != nil {
		return users.User{}, err
	}
	for _, existing := range all {
		if existing.ID == u.ID {
			return existing, nil
		}
	}
	u.CreatedAt = r.nowFunc()
	if err := r.saveUnlocked(append(all, u)); err != nil {
		return users.User{}, err
	}
	return u, nil
}

func (r *FileUserRepository) loadUnlocked() ([]users.User, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()
	var all []users.User
	if err := json.NewDecoder(f).Decode(&all); err != nil {
		if errors.Is(err, io.EOF) {
			return []users.User{}, nil
		}
		// A corrupt registry must not be silently replaced.
		return nil, fmt.Errorf("decode: %w", err)
	}
	return all, nil
}

func (r *FileUserRepository) saveUnlocked(all []users.User) error {
	tmp := r.path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open write: %w", err)
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(all); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
