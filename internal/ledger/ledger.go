// Package ledger implements the capacity ledger shared by every inventory
// kind: pool storage, delta allocation, capacity alerts and the summary and
// export projections.
//
// A Ledger is not safe for concurrent use. Registry owns the per-scope
// locking and persistence around it.
package ledger

import (
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"

	"groupstay/pkg/model"
)

const DefaultAlertCap = 100

// MaxCapacity bounds a single pool. It keeps threshold arithmetic and
// summary totals well inside int range.
const MaxCapacity = 1_000_000

type Option func(*Ledger)

// WithClock replaces time.Now for timestamps.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		if now != nil {
			l.now = now
		}
	}
}

// WithAlertCap bounds the alert log. Values below 1 keep the default.
func WithAlertCap(n int) Option {
	return func(l *Ledger) {
		if n > 0 {
			l.alertCap = n
		}
	}
}

func WithIDGenerator(gen func() string) Option {
	return func(l *Ledger) {
		if gen != nil {
			l.newID = gen
		}
	}
}

type Ledger struct {
	scope  model.Scope
	pools  []model.Pool
	alerts []model.Alert // newest first
	guests []model.Guest

	alertCap int
	now      func() time.Time
	newID    func() string
}

func New(scope model.Scope, opts ...Option) *Ledger {
	l := &Ledger{
		scope:    scope,
		alertCap: DefaultAlertCap,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Ledger) Scope() model.Scope {
	return l.scope
}

// Clone returns a deep enough copy for copy-on-write updates: slices are
// duplicated, pool attribute maps are copied one level deep.
func (l *Ledger) Clone() *Ledger {
	c := *l
	c.pools = make([]model.Pool, len(l.pools))
	for i, p := range l.pools {
		p.Attributes = maps.Clone(p.Attributes)
		c.pools[i] = p
	}
	c.alerts = slices.Clone(l.alerts)
	c.guests = slices.Clone(l.guests)
	return &c
}

func (l *Ledger) touch() {
	l.scope.UpdatedAt = l.now()
}

func (l *Ledger) CreatePool(kind model.Kind, capacity int, label string, attributes map[string]any) (model.Pool, error) {
	return l.CreatePoolWithUsage(kind, capacity, 0, label, attributes)
}

// CreatePoolWithUsage creates a pool that already has used units, as when
// seeding a scope from an exported report.
func (l *Ledger) CreatePoolWithUsage(kind model.Kind, capacity, used int, label string, attributes map[string]any) (model.Pool, error) {
	if !kind.Valid() {
		return model.Pool{}, validationf("unknown pool kind %q", kind)
	}
	if capacity < 0 || capacity > MaxCapacity {
		return model.Pool{}, validationf("capacity must be within [0, %d], got %d", MaxCapacity, capacity)
	}
	if used < 0 || used > capacity {
		return model.Pool{}, validationf("used must be within [0, %d], got %d", capacity, used)
	}

	now := l.now()
	p := model.Pool{
		ID:         l.newID(),
		Kind:       kind,
		Label:      label,
		Capacity:   capacity,
		Used:       used,
		Available:  capacity - used,
		Attributes: maps.Clone(attributes),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	l.pools = append(l.pools, p)
	return p, nil
}

func (l *Ledger) GetPool(id string) (model.Pool, error) {
	i := l.poolIndex(id)
	if i < 0 {
		return model.Pool{}, ErrPoolNotFound
	}
	return l.pools[i], nil
}

func (l *Ledger) DeletePool(id string) error {
	i := l.poolIndex(id)
	if i < 0 {
		return ErrPoolNotFound
	}
	l.pools = slices.Delete(l.pools, i, i+1)
	return nil
}

// ListPools returns the pools of one kind in insertion order. An empty kind
// returns every pool.
func (l *Ledger) ListPools(kind model.Kind) []model.Pool {
	out := make([]model.Pool, 0, len(l.pools))
	for _, p := range l.pools {
		if kind == "" || p.Kind == kind {
			out = append(out, p)
		}
	}
	return out
}

// ListAvailable is ListPools restricted to pools with free units.
func (l *Ledger) ListAvailable(kind model.Kind) []model.Pool {
	out := make([]model.Pool, 0, len(l.pools))
	for _, p := range l.ListPools(kind) {
		if p.Available > 0 {
			out = append(out, p)
		}
	}
	return out
}

func (l *Ledger) poolIndex(id string) int {
	return slices.IndexFunc(l.pools, func(p model.Pool) bool { return p.ID == id })
}
