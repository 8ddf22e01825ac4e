package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"postcraft/internal/events"
)

// FileEventLog keeps events as JSON lines in a single file.
type FileEventLog struct {
	path    string
	mu      sync.Mutex
	nowFunc func() time.Time
}

func NewFileEventLog(path string, nowFunc func() time.Time) (*FileEventLog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to ensure events dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to init events file: %w", err)
	}
	_ = f.Close()
	return &FileEventLog{path: path, nowFunc: nowFunc}, nil
}

func (r *FileEventLog) Append(_ context.Context, ownerID int64, text string) (events.Event, error) {
	ev := events.Event{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Text:      text,
		CreatedAt: r.nowFunc().Truncate(time.Millisecond),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	f, err := os.OpenFile(r.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return events.Event{}, fmt.Errorf("open append: %w", err)
	}
	defer f.Close()
	if err := json.NewEncoder(f).Encode(ev); err != nil {
		return events.Event{}, fmt.Errorf("encode append: %w", err)
	}
	return ev, nil
}

func (r *FileEventLog) Between(_ context.Context, ownerID int64, start, end time.Time) ([]events.Event, error) {
	var out []events.Event
	err := r.scan(func(ev events.Event) {
		if ev.OwnerID == ownerID && inRange(ev.CreatedAt, start, end) {
			out = append(out, ev)
		}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *FileEventLog) CountByOwner(_ context.Context, start, end time.Time) (map[int64]int, error) {
	out := make(map[int64]int)
	err := r.scan(func(ev events.Event) {
		if inRange(ev.CreatedAt, start, end) {
			out[ev.OwnerID]++
		}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// scan calls fn for every decodable line in file order, which is insertion
// order. Malformed lines are skipped.
func (r *FileEventLog) scan(fn func(events.Event)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, err := os.Open(r.path)
	if err != nil {
		return fmt.Errorf("open read: %w", err)
	}
	defer f.Close()
	s := bufio.NewScanner(f)
	buf := make([]byte, 0, 1024*1024)
	s.Buffer(buf, 10*1024*1024)
	for s.Scan() {
		line := s.Bytes()
		if len(line) == 0 {
			continue
		}
		var ev events.Event
		if err := json.Unmarshal(line, &ev); err != nil {
			continue
		}
		fn(ev)
	}
	if err := s.Err(); err != nil {
		return fmt.Errorf("scan: %w", err)
	}
	return nil
}

func inRange(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}
