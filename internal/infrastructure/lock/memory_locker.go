package lock

import (
	"context"
	"sync"

	"github.com/google/uuid"

	apppayment "github.com/tiffin/backend/internal/application/payment"
)

// MemoryCustomerLocker serializes ledger mutations per customer with
// in-process mutexes. Suitable for single-instance deployments; use the
// redis locker when running more than one server.
type MemoryCustomerLocker struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

// NewMemoryCustomerLocker creates a new MemoryCustomerLocker
func NewMemoryCustomerLocker() *MemoryCustomerLocker {
	return &MemoryCustomerLocker{locks: make(map[uuid.UUID]*sync.Mutex)}
}

// Lock acquires the customer's mutex and returns the release function.
// Customer mutexes are retained for the process lifetime; the set of
// customers is small enough that this never matters.
func (l *MemoryCustomerLocker) Lock(_ context.Context, customerID uuid.UUID) (func(), error) {
	l.mu.Lock()
	m, ok := l.locks[customerID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[customerID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock, nil
}

// Ensure MemoryCustomerLocker implements CustomerLocker
var _ apppayment.CustomerLocker = (*MemoryCustomerLocker)(nil)
