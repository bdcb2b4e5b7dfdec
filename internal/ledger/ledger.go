// Package ledger keeps the account to unit-balance mapping of the pool.
//
// A Ledger is not safe for concurrent use; the pool engine serializes access.
package ledger

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrInsufficientBalance = errors.New("not enough tokens")
	ErrNegativeAmount      = errors.New("negative amount")
)

type journalEntry struct {
	account common.Address
	prev    *big.Int
}

// Ledger maps accounts to unit balances and journals every mutation so a
// failed call can be reverted.
type Ledger struct {
	balances map[common.Address]*big.Int
	journal  []journalEntry
}

func New() *Ledger {
	return &Ledger{balances: make(map[common.Address]*big.Int)}
}

// Load builds a ledger from persisted balances.
func Load(balances map[common.Address]*big.Int) *Ledger {
	l := New()
	for account, balance := range balances {
		if balance == nil || balance.Sign() == 0 {
			continue
		}
		l.balances[account] = new(big.Int).Set(balance)
	}
	return l
}

// BalanceOf returns a copy of the account balance. Unknown accounts hold zero.
func (l *Ledger) BalanceOf(account common.Address) *big.Int {
	if bal, ok := l.balances[account]; ok {
		return new(big.Int).Set(bal)
	}
	return big.NewInt(0)
}

// Credit adds delta to the account, creating it on first use.
func (l *Ledger) Credit(account common.Address, delta *big.Int) error {
	if delta == nil || delta.Sign() < 0 {
		return fmt.Errorf("credit %s: %w", account.Hex(), ErrNegativeAmount)
	}
	if delta.Sign() == 0 {
		return nil
	}
	current := l.BalanceOf(account)
	l.record(account)
	l.balances[account] = current.Add(current, delta)
	return nil
}

// Debit subtracts delta from the account. It fails without mutating anything
// when delta exceeds the balance.
func (l *Ledger) Debit(account common.Address, delta *big.Int) error {
	if delta == nil || delta.Sign() < 0 {
		return fmt.Errorf("debit %s: %w", account.Hex(), ErrNegativeAmount)
	}
	if delta.Sign() == 0 {
		return nil
	}
	current := l.BalanceOf(account)
	if current.Cmp(delta) < 0 {
		return ErrInsufficientBalance
	}
	l.record(account)
	l.balances[account] = current.Sub(current, delta)
	return nil
}

// Move debits from and credits to by the same amount.
func (l *Ledger) Move(from, to common.Address, amount *big.Int) error {
	if err := l.Debit(from, amount); err != nil {
		return err
	}
	return l.Credit(to, amount)
}

// Total returns the sum of all balances.
func (l *Ledger) Total() *big.Int {
	total := big.NewInt(0)
	for _, bal := range l.balances {
		total.Add(total, bal)
	}
	return total
}

// Balances returns a copy of every non-zero balance.
func (l *Ledger) Balances() map[common.Address]*big.Int {
	out := make(map[common.Address]*big.Int, len(l.balances))
	for account, bal := range l.balances {
		if bal.Sign() == 0 {
			continue
		}
		out[account] = new(big.Int).Set(bal)
	}
	return out
}

// Mark returns a journal position to revert to.
func (l *Ledger) Mark() int {
	return len(l.journal)
}

// RevertTo undoes every mutation recorded after mark.
func (l *Ledger) RevertTo(mark int) {
	if mark < 0 {
		mark = 0
	}
	for i := len(l.journal) - 1; i >= mark; i-- {
		entry := l.journal[i]
		if entry.prev == nil {
			delete(l.balances, entry.account)
		} else {
			l.balances[entry.account] = entry.prev
		}
	}
	if mark < len(l.journal) {
		l.journal = l.journal[:mark]
	}
}

// Touched returns the current balances of every account mutated since mark.
func (l *Ledger) Touched(mark int) map[common.Address]*big.Int {
	out := make(map[common.Address]*big.Int)
	if mark < 0 {
		mark = 0
	}
	for i := mark; i < len(l.journal); i++ {
		account := l.journal[i].account
		out[account] = l.BalanceOf(account)
	}
	return out
}

// Discard forgets the journal once its mutations are committed.
func (l *Ledger) Discard() {
	l.journal = l.journal[:0]
}

func (l *Ledger) record(account common.Address) {
	var prev *big.Int
	if bal, ok := l.balances[account]; ok {
		prev = new(big.Int).Set(bal)
	}
	l.journal = append(l.journal, journalEntry{account: account, prev: prev})
}
