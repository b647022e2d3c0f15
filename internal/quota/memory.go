package quota

import (
	"context"
	"sync"
)

type memoryAccount struct {
	mu   sync.Mutex
	used int64
	max  int64
}

// MemoryLedger keeps the counters in process memory with a per-account
// mutex, the embedded-store equivalent of the conditional UPDATE.
// Accounts are independent, so there is no cross-account locking.
type MemoryLedger struct {
	mu       sync.RWMutex
	accounts map[uint]*memoryAccount
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{accounts: make(map[uint]*memoryAccount)}
}

// CreateAccount registers an account with the given maximum. Calling it
// again resets the account.
func (l *MemoryLedger) CreateAccount(accountID uint, max int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.accounts[accountID] = &memoryAccount{max: max}
}

func (l *MemoryLedger) get(accountID uint) *memoryAccount {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.accounts[accountID]
}

func (l *MemoryLedger) Reserve(ctx context.Context, accountID uint, delta int64) error {
	acc := l.get(accountID)
	if acc == nil {
		return ErrAccountNotFound
	}
	if delta < 0 {
		delta = 0
	}

	acc.mu.Lock()
	defer acc.mu.Unlock()
	if acc.used+delta > acc.max {
		return ErrQuotaExceeded
	}
	acc.used += delta
	return nil
}

func (l *MemoryLedger) Release(ctx context.Context, accountID uint, delta int64) error {
	acc := l.get(accountID)
	if acc == nil {
		return ErrAccountNotFound
	}
	if delta < 0 {
		delta = 0
	}

	acc.mu.Lock()
	defer acc.mu.Unlock()
	acc.used -= delta
	if acc.used < 0 {
		acc.used = 0
	}
	return nil
}

func (l *MemoryLedger) Balance(ctx context.Context, accountID uint) (int64, int64, error) {
	acc := l.get(accountID)
	if acc == nil {
		return 0, 0, ErrAccountNotFound
	}

	acc.mu.Lock()
	defer acc.mu.Unlock()
	return acc.used, acc.max, nil
}
