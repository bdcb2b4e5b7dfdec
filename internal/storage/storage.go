// Package storage persists the pool record, account balances and the event
// journal.
package storage

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"poolLedger/internal/model"
)

// Snapshot is the full persisted state of a pool.
type Snapshot struct {
	Pool     model.PoolRecord
	Balances map[common.Address]*big.Int
}

// Store is the durable substrate behind the engine. Commit must apply the
// whole changeset or nothing.
type Store interface {
	Load(ctx context.Context) (Snapshot, bool, error)
	Commit(ctx context.Context, changes model.Changeset) error
}

// Journal is a sink for emitted events.
type Journal interface {
	Append(ctx context.Context, records []model.LogRecord) error
}

func copyBalances(in map[common.Address]*big.Int) map[common.Address]*big.Int {
	out := make(map[common.Address]*big.Int, len(in))
	for account, bal := range in {
		if bal == nil {
			continue
		}
		out[account] = new(big.Int).Set(bal)
	}
	return out
}

func applyBalances(target map[common.Address]*big.Int, changes map[common.Address]*big.Int) {
	for account, bal := range changes {
		if bal == nil || bal.Sign() == 0 {
			delete(target, account)
			continue
		}
		target[account] = new(big.Int).Set(bal)
	}
}
