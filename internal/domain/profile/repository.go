package profile

import (
	"context"
	"errors"
)

// ErrInsufficientFunds is returned by Debit when the conditional
// deduction would push the balance below zero. The balance is left
// untouched in that case.
var ErrInsufficientFunds = errors.New("insufficient coin balance")

type Repository interface {
	GetOrCreate(ctx context.Context, userID string, startingCoins int64) (Profile, error)
	// Debit atomically deducts amount when the current balance covers
	// it, otherwise returns ErrInsufficientFunds without mutating.
	Debit(ctx context.Context, userID string, amount int64) (Profile, error)
	Credit(ctx context.Context, userID string, amount int64) error
	AddScore(ctx context.Context, userID string, delta float64) error
}
