package mongostore

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"postcraft/internal/events"
	"postcraft/internal/storage/storagetest"
	"postcraft/internal/users"
)

const testURLEnv = "POSTCRAFT_TEST_MONGO_URL"

var dbCounter atomic.Int64

func connect(t *testing.T) *mongo.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping db tests in short mode.")
	}
	uri := os.Getenv(testURLEnv)
	if uri == "" {
		t.Skipf("%s not set", testURLEnv)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	require.NoError(t, client.Ping(ctx, nil))
	t.Cleanup(func() { client.Disconnect(context.Background()) })
	return client
}

func newStore(t *testing.T, client *mongo.Client, clock *storagetest.Clock) *Store {
	t.Helper()
	db := client.Database(fmt.Sprintf("postcraft_test_%d_%d", os.Getpid(), dbCounter.Add(1)))
	t.Cleanup(func() { db.Drop(context.Background()) })

	s := New(db, clock.Now)
	require.NoError(t, s.EnsureIndexes(t.Context()))
	return s
}

func TestMongoUserRepository(t *testing.T) {
	client := connect(t)
	storagetest.RunUserRepositoryTests(t, func(t *testing.T, clock *storagetest.Clock) users.Repository {
		return newStore(t, client, clock)
	})
}

func TestMongoEventLog(t *testing.T) {
	client := connect(t)
	storagetest.RunEventLogTests(t, func(t *testing.T, clock *storagetest.Clock) events.Log {
		return newStore(t, client, clock)
	})
}

func TestOpenUsesDatabaseFromURI(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping db tests in short mode.")
	}
	if os.Getenv(testURLEnv) == "" {
		t.Skipf("%s not set", testURLEnv)
	}

	s, err := Open(t.Context(), os.Getenv(testURLEnv), nil)
	require.NoError(t, err)
	require.NoError(t, s.Close(context.Background()))
}

func TestOpenRejectsBadURI(t *testing.T) {
	_, err := Open(t.Context(), "mongodb://", nil)
	require.Error(t, err)
}
