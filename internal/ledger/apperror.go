package ledger

import (
	"context"
	"errors"
	"strings"

	apperrors "groupstay/pkg/errors"
)

// AppError translates ledger errors into API errors. Errors it does not
// recognise become internal errors carrying fallback as their message.
func AppError(err error, fallback string) error {
	if err == nil {
		return nil
	}
	if apperrors.IsAppError(err) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var over *OverAllocationError
	switch {
	case errors.As(err, &over):
		return apperrors.OverAllocation(over.Error(), map[string]any{
			"poolId":    over.PoolID,
			"delta":     over.Delta,
			"available": over.Available,
			"capacity":  over.Capacity,
		})
	case errors.Is(err, ErrValidation):
		msg := strings.TrimPrefix(err.Error(), ErrValidation.Error()+": ")
		return apperrors.Validation(msg, nil)
	case errors.Is(err, ErrPoolNotFound):
		return apperrors.NotFound("Pool")
	case errors.Is(err, ErrGuestNotFound):
		return apperrors.NotFound("Guest")
	case errors.Is(err, ErrAlertNotFound):
		return apperrors.NotFound("Alert")
	case errors.Is(err, ErrScopeNotFound):
		return apperrors.NotFound("Event")
	case errors.Is(err, ErrScopeExists):
		return apperrors.Conflict("Event already exists")
	}
	return apperrors.Internal(fallback, err)
}
