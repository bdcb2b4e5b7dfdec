package pool

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"poolLedger/internal/model"
)

// DepositToken moves amount units from the owner into the pool's reserve.
func (e *Engine) DepositToken(ctx context.Context, caller common.Address, amount *big.Int) error {
	return e.run(ctx, "deposit_token", caller, func(ctx context.Context, f *frame) error {
		if err := e.onlyOwner(caller); err != nil {
			return err
		}
		if amount == nil || amount.Sign() <= 0 {
			return ErrInvalidAmount
		}
		if err := e.ledger.Move(caller, e.rec.Address, amount); err != nil {
			return err
		}
		return f.emit(e.encoder.TokenDeposited(caller, amount))
	})
}

// DepositSettlement adds amount of the settlement asset to the pool's holdings.
// The amount is collected from the owner's wallet.
func (e *Engine) DepositSettlement(ctx context.Context, caller common.Address, amount *big.Int) error {
	return e.run(ctx, "deposit_settlement", caller, func(ctx context.Context, f *frame) error {
		if err := e.onlyOwner(caller); err != nil {
			return err
		}
		if amount == nil || amount.Sign() <= 0 {
			return ErrInvalidAmount
		}
		e.rec.Holdings = new(big.Int).Add(e.rec.Holdings, amount)
		if err := f.emit(e.encoder.SettlementDeposited(caller, amount)); err != nil {
			return err
		}
		f.then(func(ctx context.Context) error {
			return e.bank.Collect(ctx, caller, amount)
		})
		return nil
	})
}

// UpdateState moves the pool to next. Any transition is allowed; setting the
// current state again succeeds without emitting anything.
func (e *Engine) UpdateState(ctx context.Context, caller common.Address, next model.State) error {
	return e.run(ctx, "update_state", caller, func(ctx context.Context, f *frame) error {
		if err := e.onlyOwner(caller); err != nil {
			return err
		}
		if !next.Valid() {
			return fmt.Errorf("%w: %d", ErrUnknownState, uint8(next))
		}
		prev := e.rec.State
		if prev == next {
			return nil
		}
		e.rec.State = next
		return f.emit(e.encoder.StateUpdated(prev, next))
	})
}

// TransferOwnership hands every admin right to next. The caller loses them in
// the same call.
func (e *Engine) TransferOwnership(ctx context.Context, caller, next common.Address) error {
	return e.run(ctx, "transfer_ownership", caller, func(ctx context.Context, f *frame) error {
		if err := e.onlyOwner(caller); err != nil {
			return err
		}
		if next == (common.Address{}) {
			return ErrZeroAddress
		}
		prev := e.rec.Owner
		e.rec.Owner = next
		return f.emit(e.encoder.OwnershipTransferred(prev, next))
	})
}
