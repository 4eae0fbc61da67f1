package snapshot

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"groupstay/internal/ledger"
)

func exerciseStore(t *testing.T, s ledger.SnapshotStore) {
	t.Helper()
	ctx := context.Background()

	_, found, err := s.Load(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Save(ctx, "b-event", []byte(`{"v":1}`)))
	require.NoError(t, s.Save(ctx, "a-event", []byte(`{"v":2}`)))
	require.NoError(t, s.Save(ctx, "b-event", []byte(`{"v":3}`)))

	data, found, err := s.Load(ctx, "b-event")
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `{"v":3}`, string(data))

	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a-event", "b-event"}, keys)

	require.NoError(t, s.Delete(ctx, "a-event"))
	_, found, err = s.Load(ctx, "a-event")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Ping(ctx))
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	exerciseStore(t, s)
	require.NoError(t, s.Close())
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "ledger.db")
	s, err := NewSQLiteStore(context.Background(), path)
	require.NoError(t, err)
	defer s.Close()

	exerciseStore(t, s)
}

func TestSQLiteStore_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ledger.db")

	s, err := NewSQLiteStore(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, "expo", []byte("payload")))
	require.NoError(t, s.Close())

	reopened, err := NewSQLiteStore(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()

	data, found, err := reopened.Load(ctx, "expo")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "payload", string(data))
}

func TestNewPostgresStore_RequiresURL(t *testing.T) {
	_, err := NewPostgresStore(context.Background(), "")
	assert.Error(t, err)
}

func TestNewS3Store_RequiresBucket(t *testing.T) {
	_, err := NewS3Store(context.Background(), S3Config{})
	assert.Error(t, err)
}
