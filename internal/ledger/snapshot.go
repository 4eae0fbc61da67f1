package ledger

import (
	"context"
	"encoding/json"
	"fmt"

	"groupstay/pkg/model"
)

const snapshotVersion = 1

// SnapshotStore persists whole-scope snapshots as opaque bytes.
type SnapshotStore interface {
	Load(ctx context.Context, scopeID string) ([]byte, bool, error)
	Save(ctx context.Context, scopeID string, data []byte) error
	Delete(ctx context.Context, scopeID string) error
	Keys(ctx context.Context) ([]string, error)
	Ping(ctx context.Context) error
	Close() error
}

type snapshotDoc struct {
	Version int           `json:"version"`
	Scope   model.Scope   `json:"scope"`
	Pools   []model.Pool  `json:"pools"`
	Alerts  []model.Alert `json:"alerts"`
	Guests  []model.Guest `json:"guests"`
}

func (l *Ledger) MarshalSnapshot() ([]byte, error) {
	doc := snapshotDoc{
		Version: snapshotVersion,
		Scope:   l.scope,
		Pools:   l.pools,
		Alerts:  l.alerts,
		Guests:  l.guests,
	}
	return json.Marshal(doc)
}

// UnmarshalSnapshot rebuilds a ledger and rejects snapshots whose pools break
// the capacity invariants.
func UnmarshalSnapshot(data []byte, opts ...Option) (*Ledger, error) {
	var doc snapshotDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	if doc.Version != snapshotVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorruptSnapshot, doc.Version)
	}
	for _, p := range doc.Pools {
		if !p.Kind.Valid() || p.Used < 0 || p.Used > p.Capacity || p.Used+p.Available != p.Capacity {
			return nil, fmt.Errorf("%w: pool %s violates capacity invariants", ErrCorruptSnapshot, p.ID)
		}
	}

	l := New(doc.Scope, opts...)
	l.pools = doc.Pools
	l.alerts = doc.Alerts
	l.guests = doc.Guests
	if len(l.alerts) > l.alertCap {
		l.alerts = l.alerts[:l.alertCap]
	}
	return l, nil
}
