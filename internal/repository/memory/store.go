// Package memory holds in-process repositories with the same semantics as the
// PostgreSQL ones. Writes must go through Store.WithinTx.
package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/arrangement"
	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/audit"
	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/delegation"
	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/employee"
)

type Store struct {
	// txMu serializes transactions; mu guards the maps for single calls.
	txMu sync.Mutex
	mu   sync.RWMutex

	employees    map[string]employee.Employee
	arrangements map[string]arrangement.Arrangement
	delegations  map[string]delegation.Delegation
	audits       []audit.Entry
}

func NewStore() *Store {
	return &Store{
		employees:    make(map[string]employee.Employee),
		arrangements: make(map[string]arrangement.Arrangement),
		delegations:  make(map[string]delegation.Delegation),
	}
}

type txKey struct{}

type snapshot struct {
	employees    map[string]employee.Employee
	arrangements map[string]arrangement.Arrangement
	delegations  map[string]delegation.Delegation
	audits       int
}

// WithinTx runs fn with exclusive access to the store and rolls every change
// back if fn fails. Nested calls join the outer transaction.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	snap := s.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshot{
		employees:    maps.Clone(s.employees),
		arrangements: maps.Clone(s.arrangements),
		delegations:  maps.Clone(s.delegations),
		audits:       len(s.audits),
	}
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees = snap.employees
	s.arrangements = snap.arrangements
	s.delegations = snap.delegations
	s.audits = s.audits[:snap.audits]
}
