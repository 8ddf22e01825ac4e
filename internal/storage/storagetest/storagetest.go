// Package storagetest holds behaviour tests shared by every storage backend.
package storagetest

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"postcraft/internal/events"
	"postcraft/internal/users"
)

// Clock is a settable time source. It keeps full precision so backends
// are exercised with the instants a real clock produces.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(now time.Time) *Clock {
	return &Clock{now: now}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

type NewUserRepository func(t *testing.T, clock *Clock) users.Repository

type NewEventLog func(t *testing.T, clock *Clock) events.Log

func RunUserRepositoryTests(t *testing.T, newRepo NewUserRepository) {
	t.Run("creates on first contact", func(t *testing.T) {
		clock := NewClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
		repo := newRepo(t, clock)

		u, err := repo.RegisterIfAbsent(t.Context(), users.User{ID: 100, FirstName: "Ada", LastName: "Lovelace", Username: "ada"})
		require.NoError(t, err)
		require.Equal(t, int64(100), u.ID)
		require.Equal(t, "Ada", u.FirstName)
		require.Equal(t, "Lovelace", u.LastName)
		require.Equal(t, "ada", u.Username)
		require.False(t, u.IsBot)
		require.WithinDuration(t, clock.Now(), u.CreatedAt, time.Millisecond)
	})

	t.Run("optional fields stay empty", func(t *testing.T) {
		repo := newRepo(t, NewClock(time.Now()))

		u, err := repo.RegisterIfAbsent(t.Context(), users.User{ID: 101, FirstName: "Bot", IsBot: true})
		require.NoError(t, err)
		require.Empty(t, u.LastName)
		require.Empty(t, u.Username)
		require.True(t, u.IsBot)
	})

	t.Run("second contact never overwrites", func(t *testing.T) {
		clock := NewClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
		repo := newRepo(t, clock)

		first, err := repo.RegisterIfAbsent(t.Context(), users.User{ID: 102, FirstName: "Grace", Username: "grace"})
		require.NoError(t, err)

		clock.Set(clock.Now().Add(time.Hour))
		second, err := repo.RegisterIfAbsent(t.Context(), users.User{ID: 102, FirstName: "Changed", LastName: "New", Username: "other", IsBot: true})
		require.NoError(t, err)

		require.Equal(t, first.FirstName, second.FirstName)
		require.Equal(t, first.Username, second.Username)
		require.Empty(t, second.LastName)
		require.False(t, second.IsBot)
		require.WithinDuration(t, first.CreatedAt, second.CreatedAt, time.Millisecond)
	})

	t.Run("concurrent first contact creates one record", func(t *testing.T) {
		repo := newRepo(t, NewClock(time.Now()))

		const n = 8
		results := make([]users.User, n)
		errs := make([]error, n)
		var wg sync.WaitGroup
		for i := range n {
			wg.Add(1)
			go func() {
				defer wg.Done()
				results[i], errs[i] = repo.RegisterIfAbsent(t.Context(), users.User{ID: 103, FirstName: string(rune('A' + i))})
			}()
		}
		wg.Wait()

		for i := range n {
			require.NoError(t, errs[i])
			require.Equal(t, results[0].FirstName, results[i].FirstName)
		}
	})
}

func RunEventLogTests(t *testing.T, newLog NewEventLog) {
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	t.Run("append stamps creation time", func(t *testing.T) {
		clock := NewClock(day.Add(9 * time.Hour))
		log := newLog(t, clock)

		ev, err := log.Append(t.Context(), 1, "Shipped the new feature")
		require.NoError(t, err)
		require.NotEmpty(t, ev.ID)
		require.Equal(t, int64(1), ev.OwnerID)
		require.Equal(t, "Shipped the new feature", ev.Text)
		require.WithinDuration(t, clock.Now(), ev.CreatedAt, time.Millisecond)
	})

	t.Run("between returns exactly the window", func(t *testing.T) {
		clock := NewClock(day)
		log := newLog(t, clock)
		ctx := t.Context()

		appendAt := func(at time.Time, owner int64, text string) {
			clock.Set(at)
			_, err := log.Append(ctx, owner, text)
			require.NoError(t, err)
		}

		appendAt(day.Add(-time.Millisecond), 1, "yesterday")
		appendAt(day, 1, "Launched v2")
		appendAt(day.Add(10*time.Hour), 1, "Fixed a bug")
		appendAt(day.Add(11*time.Hour), 2, "someone else")
		appendAt(day.Add(24*time.Hour-time.Millisecond), 1, "late night")
		appendAt(day.Add(24*time.Hour), 1, "tomorrow")

		start, end := events.Window(day.Add(12*time.Hour), time.UTC)
		evs, err := log.Between(ctx, 1, start, end)
		require.NoError(t, err)

		texts := make([]string, 0, len(evs))
		for _, ev := range evs {
			texts = append(texts, ev.Text)
		}
		require.Equal(t, []string{"Launched v2", "Fixed a bug", "late night"}, texts)

		none, err := log.Between(ctx, 3, start, end)
		require.NoError(t, err)
		require.Empty(t, none)
	})

	t.Run("last millisecond belongs to its day", func(t *testing.T) {
		at := day.Add(24*time.Hour - 500*time.Microsecond)
		clock := NewClock(at)
		log := newLog(t, clock)
		ctx := t.Context()

		ev, err := log.Append(ctx, 1, "noted just before midnight")
		require.NoError(t, err)
		require.False(t, ev.CreatedAt.Before(day))

		start, end := events.Window(at, time.UTC)
		evs, err := log.Between(ctx, 1, start, end)
		require.NoError(t, err)
		require.Len(t, evs, 1)
		require.Equal(t, "noted just before midnight", evs[0].Text)

		start, end = events.Window(at.Add(time.Millisecond), time.UTC)
		evs, err = log.Between(ctx, 1, start, end)
		require.NoError(t, err)
		require.Empty(t, evs)
	})

	t.Run("count by owner", func(t *testing.T) {
		clock := NewClock(day.Add(8 * time.Hour))
		log := newLog(t, clock)
		ctx := t.Context()

		for _, owner := range []int64{10, 10, 11} {
			_, err := log.Append(ctx, owner, "note")
			require.NoError(t, err)
		}
		clock.Set(day.Add(-time.Hour))
		_, err := log.Append(ctx, 12, "yesterday")
		require.NoError(t, err)

		start, end := events.Window(day, time.UTC)
		counts, err := log.CountByOwner(ctx, start, end)
		require.NoError(t, err)
		require.Equal(t, map[int64]int{10: 2, 11: 1}, counts)
	})

	t.Run("unknown owners are accepted", func(t *testing.T) {
		log := newLog(t, NewClock(day))

		_, err := log.Append(t.Context(), 999_999, "never said /start")
		require.NoError(t, err)
	})
}
