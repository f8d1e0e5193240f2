package usecase

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")

	// ErrInsufficientBalance rejects a submission the user cannot
	// afford. No mutation has happened when it is returned.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrConflict signals a concurrent double-submit hit the
	// (user, season, week) uniqueness constraint. Retryable after a
	// fresh read.
	ErrConflict = errors.New("conflicting concurrent update")
	// ErrInconsistentState signals a paid-but-unsaved submission: the
	// debit succeeded, persistence failed and the compensating credit
	// has been attempted. Must be logged for manual reconciliation.
	ErrInconsistentState = errors.New("inconsistent state")
)

// InsufficientBalanceError carries the amounts so callers can tell
// the user exactly how short they are. Matches ErrInsufficientBalance
// under errors.Is.
type InsufficientBalanceError struct {
	Required  int64
	Available int64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: required %d musi coins, available %d", e.Required, e.Available)
}

func (e *InsufficientBalanceError) Is(target error) bool {
	return target == ErrInsufficientBalance
}
