package events

import (
	"context"
	"fmt"
	"time"
)

// Journal binds a Log to the clock and zone that define "today".
type Journal struct {
	log     Log
	loc     *time.Location
	nowFunc func() time.Time
}

func NewJournal(log Log, loc *time.Location, nowFunc func() time.Time) *Journal {
	if loc == nil {
		loc = time.Local
	}
	if nowFunc == nil {
		nowFunc = time.Now
	}
	return &Journal{log: log, loc: loc, nowFunc: nowFunc}
}

func (j *Journal) Append(ctx context.Context, ownerID int64, text string) (Event, error) {
	ev, err := j.log.Append(ctx, ownerID, text)
	if err != nil {
		return Event{}, fmt.Errorf("%w: owner %d: %w", ErrAppendFailed, ownerID, err)
	}
	return ev, nil
}

// QueryByDay returns every event of ownerID created on ref's calendar day.
// An empty result is not an error.
func (j *Journal) QueryByDay(ctx context.Context, ownerID int64, ref time.Time) ([]Event, error) {
	start, end := Window(ref, j.loc)
	evs, err := j.log.Between(ctx, ownerID, start, end)
	if err != nil {
		return nil, fmt.Errorf("%w: owner %d: %w", ErrQueryFailed, ownerID, err)
	}
	return evs, nil
}

func (j *Journal) Today(ctx context.Context, ownerID int64) ([]Event, error) {
	return j.QueryByDay(ctx, ownerID, j.nowFunc())
}

// ActiveToday returns how many events each owner noted today.
func (j *Journal) ActiveToday(ctx context.Context) (map[int64]int, error) {
	start, end := Window(j.nowFunc(), j.loc)
	counts, err := j.log.CountByOwner(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("%w: count by owner: %w", ErrQueryFailed, err)
	}
	return counts, nil
}
