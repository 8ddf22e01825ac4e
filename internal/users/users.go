package users

import (
	"context"
	"errors"
	"time"
)

// ErrRegistryUnavailable is returned when the registry could not read or
// write a user record.
var ErrRegistryUnavailable = errors.New("user registry unavailable")

// User is a chat-platform identity known to the bot. Records are created
// once and never modified afterwards.
type User struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name,omitempty"`
	IsBot     bool      `json:"is_bot"`
	Username  string    `json:"username,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Repository persists users.
//
// RegisterIfAbsent must be atomic per ID: when no record exists one is
// created from u, otherwise the stored record is returned unchanged.
type Repository interface {
	RegisterIfAbsent(ctx context.Context, u User) (User, error)
}
