// Package quota enforces the per-account storage quota. All mutations
// of an account's used-storage counter flow through a Ledger; reserve
// is an atomic check-then-charge so two concurrent uploads can never
// jointly exceed the account's maximum.
package quota

import (
	"context"
	"errors"
)

var (
	// ErrQuotaExceeded is returned when a reserve would push used
	// storage past the account maximum. The account is not mutated.
	ErrQuotaExceeded = errors.New("storage limit exceeded")

	// ErrAccountNotFound is returned when the account does not exist.
	ErrAccountNotFound = errors.New("account not found")
)

// Ledger tracks used and maximum storage per account.
//
// Reserve succeeds and increments used storage iff used+delta <= max,
// as a single atomic read-modify-write. Release decrements used
// storage floored at zero, so a double release from retried cleanup
// can never drive the counter negative.
type Ledger interface {
	Reserve(ctx context.Context, accountID uint, delta int64) error
	Release(ctx context.Context, accountID uint, delta int64) error
	Balance(ctx context.Context, accountID uint) (used, max int64, err error)
}
