package events

import (
	"context"
	"errors"
	"time"
)

var (
	ErrAppendFailed = errors.New("failed to append event")
	ErrQueryFailed  = errors.New("failed to query events")
)

// Event is one free-text note sent by a user. Events are immutable once
// stored.
type Event struct {
	ID        string    `json:"id"`
	OwnerID   int64     `json:"owner_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Log is an append-only store of events. Implementations stamp CreatedAt
// at insertion and must be safe for concurrent use.
//
// Between returns the owner's events with start <= CreatedAt <= end in
// ascending CreatedAt order. CountByOwner counts events per owner in the
// same inclusive range. Owners are not validated against the user registry.
type Log interface {
	Append(ctx context.Context, ownerID int64, text string) (Event, error)
	Between(ctx context.Context, ownerID int64, start, end time.Time) ([]Event, error)
	CountByOwner(ctx context.Context, start, end time.Time) (map[int64]int, error)
}
