package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"postcraft/internal/events"
)

type dbEvent struct {
	ID        string    `db:"id"`
	OwnerID   int64     `db:"tg_id"`
	Text      string    `db:"text"`
	CreatedAt time.Time `db:"created_at"`
}

func (s *Store) Append(ctx context.Context, ownerID int64, text string) (events.Event, error) {
	ctx, span := s.tracer.Start(ctx, "Postgres.Append")
	defer span.End()

	ev := events.Event{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Text:      text,
		CreatedAt: s.nowFunc().Truncate(time.Millisecond),
	}
	_, err := s.db.ExecContext(
		ctx,
		fmt.Sprintf(`INSERT INTO %s.events (id, tg_id, text, created_at) VALUES ($1, $2, $3, $4)`,
			pq.QuoteIdentifier(s.schema)),
		ev.ID,
		ev.OwnerID,
		ev.Text,
		ev.CreatedAt,
	)
	if err != nil {
		span.RecordError(err)
		return events.Event{}, fmt.Errorf("failed to insert event: %w", err)
	}
	return ev, nil
}

func (s *Store) Between(ctx context.Context, ownerID int64, start, end time.Time) ([]events.Event, error) {
	ctx, span := s.tracer.Start(ctx, "Postgres.Between")
	defer span.End()

	var rows []dbEvent
	err := s.db.SelectContext(
		ctx,
		&rows,
		fmt.Sprintf(`SELECT id, tg_id, text, created_at FROM %s.events
		WHERE tg_id = $1 AND created_at >= $2 AND created_at <= $3
		ORDER BY created_at ASC, seq ASC`,
			pq.QuoteIdentifier(s.schema)),
		ownerID,
		start,
		end,
	)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to select events: %w", err)
	}

	out := make([]events.Event, 0, len(rows))
	for _, r := range rows {
		out = append(out, events.Event{ID: r.ID, OwnerID: r.OwnerID, Text: r.Text, CreatedAt: r.CreatedAt})
	}
	return out, nil
}

func (s *Store) CountByOwner(ctx context.Context, start, end time.Time) (map[int64]int, error) {
	ctx, span := s.tracer.Start(ctx, "Postgres.CountByOwner")
	defer span.End()

	var rows []struct {
		OwnerID int64 `db:"tg_id"`
		Count   int   `db:"count"`
	}
	err := s.db.SelectContext(
		ctx,
		&rows,
		fmt.Sprintf(`SELECT tg_id, COUNT(*) AS count FROM %s.events
		WHERE created_at >= $1 AND created_at <= $2
		GROUP BY tg_id`,
			pq.QuoteIdentifier(s.schema)),
		start,
		end,
	)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count events: %w", err)
	}

	out := make(map[int64]int, len(rows))
	for _, r := range rows {
		out[r.OwnerID] = r.Count
	}
	return out, nil
}
