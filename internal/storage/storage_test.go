package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenFileBackend(t *testing.T) {
	dir := t.TempDir()

	b, err := Open(context.Background(), "file://"+dir, Options{})
	require.NoError(t, err)
	defer b.Close(context.Background())

	require.Equal(t, "file", b.Kind)
	require.NotNil(t, b.Users)
	require.NotNil(t, b.Events)

	_, err = os.Stat(filepath.Join(dir, "users.json"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "events.jsonl"))
	require.NoError(t, err)
}

func TestOpenRejectsUnknownScheme(t *testing.T) {
	for _, raw := range []string{"redis://localhost", "no-scheme", "file://"} {
		_, err := Open(context.Background(), raw, Options{})
		require.Error(t, err, raw)
	}
}
