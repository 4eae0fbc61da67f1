package ledger

import "groupstay/pkg/model"

// ApplyDelta books (delta < 0) or releases (delta > 0) units of a pool.
//
// The request is rejected when available+delta leaves [0, capacity]; the
// pool is untouched in that case. Accepted results are clamped to
// [0, capacity] before being stored.
func (l *Ledger) ApplyDelta(poolID string, delta int) (model.AllocationEvent, model.Pool, error) {
	i := l.poolIndex(poolID)
	if i < 0 {
		return model.AllocationEvent{}, model.Pool{}, ErrPoolNotFound
	}

	p := l.pools[i]
	unclamped := p.Available + delta
	if unclamped < 0 || unclamped > p.Capacity {
		return model.AllocationEvent{}, p, &OverAllocationError{
			PoolID:    p.ID,
			Delta:     delta,
			Available: p.Available,
			Capacity:  p.Capacity,
		}
	}

	now := l.now()
	p.Available = clamp(unclamped, 0, p.Capacity)
	p.Used = p.Capacity - p.Available
	p.UpdatedAt = now
	l.pools[i] = p

	return model.AllocationEvent{
		PoolID:             p.ID,
		Delta:              delta,
		ResultingAvailable: p.Available,
		Timestamp:          now,
	}, p, nil
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
