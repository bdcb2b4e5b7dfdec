package settlement

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// MemoryBank keeps settlement wallets in memory. It backs tests and the
// scenario runner.
type MemoryBank struct {
	mu        sync.Mutex
	pool      common.Address
	wallets   map[common.Address]*big.Int
	receivers map[common.Address]Receiver
	logger    *zap.Logger
}

func NewMemoryBank(pool common.Address, logger *zap.Logger) *MemoryBank {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MemoryBank{
		pool:      pool,
		wallets:   make(map[common.Address]*big.Int),
		receivers: make(map[common.Address]Receiver),
		logger:    logger,
	}
}

// SetPool binds the bank to the pool identity used as the counterparty.
func (b *MemoryBank) SetPool(pool common.Address) {
	b.mu.Lock()
	b.pool = pool
	b.mu.Unlock()
}

// Fund credits a wallet out of thin air.
func (b *MemoryBank) Fund(account common.Address, amount *big.Int) {
	if amount == nil || amount.Sign() <= 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.wallets[account] = new(big.Int).Add(b.balanceLocked(account), amount)
}

// BalanceOf returns the wallet balance of account.
func (b *MemoryBank) BalanceOf(account common.Address) *big.Int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.balanceLocked(account)
}

// SetReceiver attaches code to a wallet that runs on every payment to it.
func (b *MemoryBank) SetReceiver(account common.Address, r Receiver) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if r == nil {
		delete(b.receivers, account)
		return
	}
	b.receivers[account] = r
}

func (b *MemoryBank) Collect(ctx context.Context, from common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return fmt.Errorf("collect: invalid amount")
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	bal := b.balanceLocked(from)
	if bal.Cmp(amount) < 0 {
		return fmt.Errorf("collect %s from %s: %w", amount, from.Hex(), ErrInsufficientFunds)
	}
	b.wallets[from] = bal.Sub(bal, amount)
	b.logger.Debug("settlement collected", zap.String("from", from.Hex()), zap.String("amount", amount.String()))
	return nil
}

func (b *MemoryBank) Pay(ctx context.Context, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return fmt.Errorf("pay: invalid amount")
	}

	b.mu.Lock()
	prev := b.balanceLocked(to)
	b.wallets[to] = new(big.Int).Add(prev, amount)
	receiver := b.receivers[to]
	pool := b.pool
	b.mu.Unlock()

	if receiver == nil {
		b.logger.Debug("settlement paid", zap.String("to", to.Hex()), zap.String("amount", amount.String()))
		return nil
	}

	// The receiver runs without the bank lock so it may call back into the pool.
	if err := receiver.Receive(ctx, pool, amount); err != nil {
		b.mu.Lock()
		current := b.balanceLocked(to)
		b.wallets[to] = current.Sub(current, amount)
		b.mu.Unlock()
		return fmt.Errorf("pay %s to %s: receiver rejected: %w", amount, to.Hex(), err)
	}
	return nil
}

func (b *MemoryBank) balanceLocked(account common.Address) *big.Int {
	if bal, ok := b.wallets[account]; ok {
		return new(big.Int).Set(bal)
	}
	return big.NewInt(0)
}
