package ledger

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"groupstay/pkg/logger"
	"groupstay/pkg/model"
)

// Registry owns every scope's ledger. Mutations of one scope are serialized
// by that scope's lock and persisted before they become visible; reads share
// the lock and see the last committed state.
type Registry struct {
	mu     sync.Mutex
	scopes map[string]*scopeEntry
	store  SnapshotStore
	opts   []Option
	log    *logger.Logger
}

type scopeEntry struct {
	mu      sync.RWMutex
	ledger  *Ledger
	deleted bool
}

func NewRegistry(store SnapshotStore, log *logger.Logger, opts ...Option) *Registry {
	return &Registry{
		scopes: make(map[string]*scopeEntry),
		store:  store,
		opts:   opts,
		log:    log,
	}
}

// Create registers a new scope and persists its empty snapshot.
func (r *Registry) Create(ctx context.Context, scope model.Scope) (model.Scope, error) {
	if scope.ID == "" {
		return model.Scope{}, validationf("scope id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.scopes[scope.ID]; ok {
		return model.Scope{}, ErrScopeExists
	}
	if _, found, err := r.store.Load(ctx, scope.ID); err != nil {
		return model.Scope{}, fmt.Errorf("load snapshot %s: %w", scope.ID, err)
	} else if found {
		return model.Scope{}, ErrScopeExists
	}

	l := New(scope, r.opts...)
	now := l.now()
	l.scope.CreatedAt = now
	l.scope.UpdatedAt = now

	data, err := l.MarshalSnapshot()
	if err != nil {
		return model.Scope{}, fmt.Errorf("encode snapshot %s: %w", scope.ID, err)
	}
	if err := r.store.Save(ctx, scope.ID, data); err != nil {
		return model.Scope{}, fmt.Errorf("save snapshot %s: %w", scope.ID, err)
	}

	r.scopes[scope.ID] = &scopeEntry{ledger: l}
	r.log.Debug("Scope created", "scope_id", scope.ID)
	return l.scope, nil
}

// Ensure creates the scope unless it already exists.
func (r *Registry) Ensure(ctx context.Context, scope model.Scope) error {
	_, err := r.Create(ctx, scope)
	if errors.Is(err, ErrScopeExists) {
		return nil
	}
	return err
}

// View runs fn against the committed ledger under the scope's read lock.
// fn must not modify the ledger.
func (r *Registry) View(ctx context.Context, scopeID string, fn func(*Ledger) error) error {
	e, err := r.entry(ctx, scopeID)
	if err != nil {
		return err
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.deleted {
		return ErrScopeNotFound
	}
	return fn(e.ledger)
}

// Update runs fn against a copy of the scope's ledger under the scope's write
// lock. The copy is persisted and swapped in only when fn succeeds and the
// snapshot is saved, so a failed update leaves the scope unchanged.
func (r *Registry) Update(ctx context.Context, scopeID string, fn func(*Ledger) error) error {
	e, err := r.entry(ctx, scopeID)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.deleted {
		return ErrScopeNotFound
	}

	next := e.ledger.Clone()
	if err := fn(next); err != nil {
		return err
	}
	next.touch()

	data, err := next.MarshalSnapshot()
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", scopeID, err)
	}
	if err := r.store.Save(ctx, scopeID, data); err != nil {
		return fmt.Errorf("save snapshot %s: %w", scopeID, err)
	}
	e.ledger = next
	return nil
}

func (r *Registry) Delete(ctx context.Context, scopeID string) error {
	e, err := r.entry(ctx, scopeID)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.deleted {
		return ErrScopeNotFound
	}
	if err := r.store.Delete(ctx, scopeID); err != nil {
		return fmt.Errorf("delete snapshot %s: %w", scopeID, err)
	}
	e.deleted = true

	r.mu.Lock()
	delete(r.scopes, scopeID)
	r.mu.Unlock()

	r.log.Debug("Scope deleted", "scope_id", scopeID)
	return nil
}

// Scopes lists every persisted scope, sorted by id.
func (r *Registry) Scopes(ctx context.Context) ([]model.Scope, error) {
	keys, err := r.store.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	slices.Sort(keys)

	out := make([]model.Scope, 0, len(keys))
	for _, id := range keys {
		err := r.View(ctx, id, func(l *Ledger) error {
			out = append(out, l.Scope())
			return nil
		})
		if errors.Is(err, ErrScopeNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *Registry) Ping(ctx context.Context) error {
	return r.store.Ping(ctx)
}

func (r *Registry) Close() error {
	return r.store.Close()
}

func (r *Registry) entry(ctx context.Context, scopeID string) (*scopeEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.scopes[scopeID]; ok {
		return e, nil
	}

	data, found, err := r.store.Load(ctx, scopeID)
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", scopeID, err)
	}
	if !found {
		return nil, ErrScopeNotFound
	}
	l, err := UnmarshalSnapshot(data, r.opts...)
	if err != nil {
		return nil, err
	}

	e := &scopeEntry{ledger: l}
	r.scopes[scopeID] = e
	r.log.Debug("Scope loaded from snapshot", "scope_id", scopeID)
	return e, nil
}
