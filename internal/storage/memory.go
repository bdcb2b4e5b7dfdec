package storage

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"poolLedger/internal/model"
)

// MemoryStore keeps state in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	pool     *model.PoolRecord
	balances map[common.Address]*big.Int
	events   []model.LogRecord
	failNext error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{balances: make(map[common.Address]*big.Int)}
}

func (s *MemoryStore) Load(ctx context.Context) (Snapshot, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.pool == nil {
		return Snapshot{}, false, nil
	}
	return Snapshot{Pool: s.pool.Copy(), Balances: copyBalances(s.balances)}, true, nil
}

func (s *MemoryStore) Commit(ctx context.Context, changes model.Changeset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failNext; err != nil {
		s.failNext = nil
		return err
	}
	pool := changes.Pool.Copy()
	s.pool = &pool
	applyBalances(s.balances, changes.Balances)
	if changes.Revoke != "" {
		kept := s.events[:0]
		for _, ev := range s.events {
			if ev.CallID != changes.Revoke {
				kept = append(kept, ev)
			}
		}
		s.events = kept
	}
	s.events = append(s.events, changes.Events...)
	return nil
}

// FailNextCommit makes the next Commit return err without applying anything.
func (s *MemoryStore) FailNextCommit(err error) {
	s.mu.Lock()
	s.failNext = err
	s.mu.Unlock()
}

// Events returns every event committed so far.
func (s *MemoryStore) Events() []model.LogRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.LogRecord(nil), s.events...)
}
