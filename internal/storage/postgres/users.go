package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"postcraft/internal/users"
)

type dbUser struct {
	ID        int64          `db:"tg_id"`
	FirstName string         `db:"first_name"`
	LastName  sql.NullString `db:"last_name"`
	IsBot     bool           `db:"is_bot"`
	Username  sql.NullString `db:"username"`
	CreatedAt time.Time      `db:"created_at"`
}

func (u dbUser) toDomain() users.User {
	return users.User{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName.String,
		IsBot:     u.IsBot,
		Username:  u.Username.String,
		CreatedAt: u.CreatedAt,
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// RegisterIfAbsent inserts u unless a row with the same id exists, in which
// case the stored row is returned untouched.
func (s *Store) RegisterIfAbsent(ctx context.Context, u users.User) (users.User, error) {
	ctx, span := s.tracer.Start(ctx, "Postgres.RegisterIfAbsent")
	defer span.End()

	var row dbUser
	err := s.db.QueryRowxContext(
		ctx,
		fmt.Sprintf(`INSERT INTO %s.users
		(tg_id, first_name, last_name, is_bot, username, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (tg_id) DO NOTHING
		RETURNING tg_id, first_name, last_name, is_bot, username, created_at`,
			pq.QuoteIdentifier(s.schema)),
		u.ID,
		u.FirstName,
		nullString(u.LastName),
		u.IsBot,
		nullString(u.Username),
		s.nowFunc(),
	).StructScan(&row)
	if err == nil {
		return row.toDomain(), nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		span.RecordError(err)
		return users.User{}, fmt.Errorf("failed to insert user: %w", err)
	}

	err = s.db.GetContext(
		ctx,
		&row,
		fmt.Sprintf(`SELECT tg_id, first_name, last_name, is_bot, username, created_at
		FROM %s.users WHERE tg_id = $1`, pq.QuoteIdentifier(s.schema)),
		u.ID,
	)
	if err != nil {
		span.RecordError(err)
		return users.User{}, fmt.Errorf("failed to get existing user: %w", err)
	}
	return row.toDomain(), nil
}
