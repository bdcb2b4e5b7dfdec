package model

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Changeset is everything a single committed call wrote: the full pool record,
// the balances it touched, and the events it emitted.
//
// Revoke names a previously committed call whose events must be withdrawn.
// It is set when a call is undone after its effects were persisted.
type Changeset struct {
	Pool     PoolRecord
	Balances map[common.Address]*big.Int
	Events   []LogRecord
	Revoke   string
}
