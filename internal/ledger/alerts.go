package ledger

import (
	"slices"

	"groupstay/pkg/model"
)

// Evaluate derives capacity alerts from pool state. It has no side effects:
// the same pools always yield the same alerts, at most one per pool.
//
// Any kind at or above 90% used is critical. Rooms at or above 70% (and below
// 90%) raise a warning. Pools with zero capacity never alert.
func Evaluate(pools []model.Pool) []model.Alert {
	var out []model.Alert
	for _, p := range pools {
		spec, ok := specFor(p.Kind)
		if !ok || p.Capacity <= 0 {
			continue
		}
		switch {
		case p.Used*10 >= p.Capacity*9:
			out = append(out, spec.critical(p))
		case spec.warningTitle != "" && p.Used*10 >= p.Capacity*7:
			out = append(out, spec.warning(p))
		}
	}
	return out
}

// RecordAlerts stamps alerts with a fresh id and timestamp and pushes them to
// the front of the log, dropping the oldest entries beyond the cap. The
// stored copies are returned.
func (l *Ledger) RecordAlerts(alerts ...model.Alert) []model.Alert {
	if len(alerts) == 0 {
		return nil
	}
	now := l.now()
	recorded := make([]model.Alert, len(alerts))
	for i, a := range alerts {
		a.ID = l.newID()
		a.CreatedAt = now
		recorded[i] = a
	}

	// the last alert of a batch is the newest
	front := slices.Clone(recorded)
	slices.Reverse(front)
	l.alerts = append(front, l.alerts...)
	if len(l.alerts) > l.alertCap {
		l.alerts = l.alerts[:l.alertCap]
	}
	return recorded
}

// Alerts returns up to limit alerts, newest first. limit <= 0 returns all.
func (l *Ledger) Alerts(limit int) []model.Alert {
	n := len(l.alerts)
	if limit > 0 && limit < n {
		n = limit
	}
	return slices.Clone(l.alerts[:n])
}

func (l *Ledger) DeleteAlert(id string) error {
	i := slices.IndexFunc(l.alerts, func(a model.Alert) bool { return a.ID == id })
	if i < 0 {
		return ErrAlertNotFound
	}
	l.alerts = slices.Delete(l.alerts, i, i+1)
	return nil
}

// ClearAlerts empties the log and reports how many alerts were removed.
func (l *Ledger) ClearAlerts() int {
	n := len(l.alerts)
	l.alerts = nil
	return n
}
