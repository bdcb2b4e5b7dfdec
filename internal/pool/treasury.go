package pool

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// WithdrawFee pays the whole collected fee to the owner and resets it to zero.
// It returns the amount paid.
func (e *Engine) WithdrawFee(ctx context.Context, caller common.Address) (*big.Int, error) {
	var amount *big.Int
	err := e.run(ctx, "withdraw_fee", caller, func(ctx context.Context, f *frame) error {
		if err := e.onlyOwner(caller); err != nil {
			return err
		}
		if e.rec.CollectedFee.Sign() == 0 {
			return ErrNoFeeToCollect
		}

		amount = new(big.Int).Set(e.rec.CollectedFee)
		e.rec.CollectedFee = big.NewInt(0)
		e.rec.Holdings = new(big.Int).Sub(e.rec.Holdings, amount)
		if err := f.emit(e.encoder.FeeWithdrawn(caller, amount)); err != nil {
			return err
		}
		f.then(func(ctx context.Context) error {
			return e.bank.Pay(ctx, caller, amount)
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return amount, nil
}
