package ledger

import (
	"errors"
	"fmt"
)

var (
	ErrValidation = errors.New("invalid ledger input")

	ErrPoolNotFound  = errors.New("pool not found")
	ErrGuestNotFound = errors.New("guest not found")
	ErrAlertNotFound = errors.New("alert not found")

	ErrScopeNotFound = errors.New("scope not found")
	ErrScopeExists   = errors.New("scope already exists")

	ErrOverAllocation = errors.New("over-allocation")

	ErrCorruptSnapshot = errors.New("corrupt ledger snapshot")
)

// OverAllocationError reports a delta that would push a pool outside
// [0, capacity]. It matches ErrOverAllocation with errors.Is.
type OverAllocationError struct {
	PoolID    string
	Delta     int
	Available int
	Capacity  int
}

func (e *OverAllocationError) Error() string {
	if e.Delta < 0 {
		return fmt.Sprintf("over-allocation: pool %s has %d available, cannot book %d", e.PoolID, e.Available, -e.Delta)
	}
	return fmt.Sprintf("over-allocation: pool %s has %d in use, cannot release %d", e.PoolID, e.Capacity-e.Available, e.Delta)
}

func (e *OverAllocationError) Is(target error) bool {
	return target == ErrOverAllocation
}

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
