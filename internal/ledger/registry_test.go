package ledger_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"groupstay/internal/ledger"
	"groupstay/internal/ledger/snapshot"
	"groupstay/pkg/logger"
	"groupstay/pkg/model"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "info", Format: logger.JSON, Service: "test"})
}

type failingStore struct {
	*snapshot.MemoryStore
	failSave bool
}

func (s *failingStore) Save(ctx context.Context, id string, data []byte) error {
	if s.failSave {
		return errors.New("disk full")
	}
	return s.MemoryStore.Save(ctx, id, data)
}

func TestRegistry_CreateAndView(t *testing.T) {
	ctx := context.Background()
	r := ledger.NewRegistry(snapshot.NewMemoryStore(), testLogger())

	scope, err := r.Create(ctx, model.Scope{ID: "expo", Name: "Expo"})
	require.NoError(t, err)
	assert.False(t, scope.CreatedAt.IsZero())

	_, err = r.Create(ctx, model.Scope{ID: "expo", Name: "Again"})
	assert.ErrorIs(t, err, ledger.ErrScopeExists)

	err = r.View(ctx, "expo", func(l *ledger.Ledger) error {
		assert.Equal(t, "Expo", l.Scope().Name)
		return nil
	})
	require.NoError(t, err)

	err = r.View(ctx, "nope", func(*ledger.Ledger) error { return nil })
	assert.ErrorIs(t, err, ledger.ErrScopeNotFound)
}

func TestRegistry_EnsureIsIdempotent(t *testing.T) {
	ctx := context.Background()
	r := ledger.NewRegistry(snapshot.NewMemoryStore(), testLogger())
	require.NoError(t, r.Ensure(ctx, model.Scope{ID: "default", Name: "Default"}))
	require.NoError(t, r.Ensure(ctx, model.Scope{ID: "default", Name: "Default"}))

	scopes, err := r.Scopes(ctx)
	require.NoError(t, err)
	assert.Len(t, scopes, 1)
}

func TestRegistry_FailedUpdateLeavesScopeUnchanged(t *testing.T) {
	ctx := context.Background()
	r := ledger.NewRegistry(snapshot.NewMemoryStore(), testLogger())
	_, err := r.Create(ctx, model.Scope{ID: "expo", Name: "Expo"})
	require.NoError(t, err)

	var poolID string
	require.NoError(t, r.Update(ctx, "expo", func(l *ledger.Ledger) error {
		p, err := l.CreatePool(model.KindRoom, 3, "Std", nil)
		poolID = p.ID
		return err
	}))

	err = r.Update(ctx, "expo", func(l *ledger.Ledger) error {
		if _, _, err := l.ApplyDelta(poolID, -2); err != nil {
			return err
		}
		_, _, err := l.ApplyDelta(poolID, -2)
		return err
	})
	require.ErrorIs(t, err, ledger.ErrOverAllocation)

	require.NoError(t, r.View(ctx, "expo", func(l *ledger.Ledger) error {
		p, err := l.GetPool(poolID)
		require.NoError(t, err)
		assert.Equal(t, 3, p.Available)
		return nil
	}))
}

func TestRegistry_FailedSaveLeavesScopeUnchanged(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{MemoryStore: snapshot.NewMemoryStore()}
	r := ledger.NewRegistry(store, testLogger())
	_, err := r.Create(ctx, model.Scope{ID: "expo", Name: "Expo"})
	require.NoError(t, err)

	store.failSave = true
	err = r.Update(ctx, "expo", func(l *ledger.Ledger) error {
		_, err := l.CreatePool(model.KindDining, 10, "Lunch", nil)
		return err
	})
	require.Error(t, err)

	require.NoError(t, r.View(ctx, "expo", func(l *ledger.Ledger) error {
		assert.Empty(t, l.ListPools(""))
		return nil
	}))
}

func TestRegistry_LazyLoadFromStore(t *testing.T) {
	ctx := context.Background()
	store := snapshot.NewMemoryStore()

	first := ledger.NewRegistry(store, testLogger())
	_, err := first.Create(ctx, model.Scope{ID: "expo", Name: "Expo"})
	require.NoError(t, err)
	require.NoError(t, first.Update(ctx, "expo", func(l *ledger.Ledger) error {
		_, err := l.CreatePool(model.KindTransport, 40, "Coach", nil)
		return err
	}))

	second := ledger.NewRegistry(store, testLogger())
	require.NoError(t, second.View(ctx, "expo", func(l *ledger.Ledger) error {
		pools := l.ListPools(model.KindTransport)
		require.Len(t, pools, 1)
		assert.Equal(t, "Coach", pools[0].Label)
		return nil
	}))
}

func TestRegistry_Delete(t *testing.T) {
	ctx := context.Background()
	r := ledger.NewRegistry(snapshot.NewMemoryStore(), testLogger())
	_, err := r.Create(ctx, model.Scope{ID: "expo", Name: "Expo"})
	require.NoError(t, err)

	require.NoError(t, r.Delete(ctx, "expo"))
	assert.ErrorIs(t, r.Delete(ctx, "expo"), ledger.ErrScopeNotFound)

	scopes, err := r.Scopes(ctx)
	require.NoError(t, err)
	assert.Empty(t, scopes)
}

func TestRegistry_ConcurrentBookingsNeverOversell(t *testing.T) {
	ctx := context.Background()
	r := ledger.NewRegistry(snapshot.NewMemoryStore(), testLogger())
	_, err := r.Create(ctx, model.Scope{ID: "expo", Name: "Expo"})
	require.NoError(t, err)

	var poolID string
	require.NoError(t, r.Update(ctx, "expo", func(l *ledger.Ledger) error {
		p, err := l.CreatePool(model.KindActivity, 25, "Tour", nil)
		poolID = p.ID
		return err
	}))

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := r.Update(ctx, "expo", func(l *ledger.Ledger) error {
				_, _, err := l.ApplyDelta(poolID, -1)
				return err
			})
			if err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 25, accepted)
	require.NoError(t, r.View(ctx, "expo", func(l *ledger.Ledger) error {
		p, _ := l.GetPool(poolID)
		assert.Equal(t, 0, p.Available)
		assert.Equal(t, 25, p.Used)
		return nil
	}))
}
