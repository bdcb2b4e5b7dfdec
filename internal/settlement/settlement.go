// Package settlement is the port through which the pool moves the settlement
// asset in and out of its holdings.
package settlement

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

var ErrInsufficientFunds = errors.New("insufficient settlement funds")

// Transferer moves the settlement asset between external wallets and the pool.
// Both calls are atomic: they either fully succeed or fail without effect.
type Transferer interface {
	// Collect pulls amount from the payer into the pool's holdings.
	Collect(ctx context.Context, from common.Address, amount *big.Int) error
	// Pay sends amount out of the pool's holdings to the recipient. The
	// recipient may run code of its own before Pay returns.
	Pay(ctx context.Context, to common.Address, amount *big.Int) error
}

// Receiver is code attached to a wallet that runs whenever it is paid. A
// non-nil error rejects the payment.
type Receiver interface {
	Receive(ctx context.Context, from common.Address, amount *big.Int) error
}

// ReceiverFunc adapts a function to Receiver.
type ReceiverFunc func(ctx context.Context, from common.Address, amount *big.Int) error

func (f ReceiverFunc) Receive(ctx context.Context, from common.Address, amount *big.Int) error {
	return f(ctx, from, amount)
}
