package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWindow(t *testing.T) {
	t.Parallel()

	kolkata, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	cases := []struct {
		name      string
		ref       time.Time
		loc       *time.Location
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			name:      "midday utc",
			ref:       time.Date(2024, 3, 10, 12, 30, 0, 0, time.UTC),
			loc:       time.UTC,
			wantStart: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, 3, 10, 23, 59, 59, 999_000_000, time.UTC),
		},
		{
			name:      "exact midnight",
			ref:       time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
			loc:       time.UTC,
			wantStart: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, 3, 10, 23, 59, 59, 999_000_000, time.UTC),
		},
		{
			name:      "utc evening is next day in kolkata",
			ref:       time.Date(2024, 3, 10, 20, 0, 0, 0, time.UTC),
			loc:       kolkata,
			wantStart: time.Date(2024, 3, 11, 0, 0, 0, 0, kolkata),
			wantEnd:   time.Date(2024, 3, 11, 23, 59, 59, 999_000_000, kolkata),
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			start, end := Window(tc.ref, tc.loc)
			require.True(t, tc.wantStart.Equal(start), "start %s", start)
			require.True(t, tc.wantEnd.Equal(end), "end %s", end)
		})
	}
}

func TestWindowNilLocation(t *testing.T) {
	t.Parallel()

	ref := time.Date(2024, 3, 10, 12, 0, 0, 0, time.Local)
	start, end := Window(ref, nil)
	require.Equal(t, time.Local, start.Location())
	require.Equal(t, 23, end.Hour())
}
