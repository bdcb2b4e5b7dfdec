package pool

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"poolLedger/internal/fee"
)

// BuyReceipt describes a settled buy. Settlement amounts and units are in base
// denomination.
type BuyReceipt struct {
	Payment  *big.Int
	Fee      *big.Int
	Net      *big.Int
	UnitsOut *big.Int
}

// SellReceipt describes a settled sell.
type SellReceipt struct {
	UnitsIn *big.Int
	Gross   *big.Int
	Fee     *big.Int
	Net     *big.Int
}

// QuoteBuy prices a buy of payment against the committed state without
// checking reserves or lifecycle state.
func (e *Engine) QuoteBuy(payment *big.Int) BuyReceipt {
	rec := e.view()
	return quoteBuy(rec.Price, rec.Scale(), rec.FeeRateBps, payment)
}

// QuoteSell prices a sell of unitsIn against the committed state.
func (e *Engine) QuoteSell(unitsIn *big.Int) SellReceipt {
	rec := e.view()
	return quoteSell(rec.Price, rec.Scale(), rec.FeeRateBps, unitsIn)
}

func quoteBuy(price, scale *big.Int, rateBps uint16, payment *big.Int) BuyReceipt {
	if payment == nil {
		payment = big.NewInt(0)
	}
	feeAmt, net := fee.Compute(payment, rateBps)
	units := new(big.Int).Mul(net, scale)
	units.Quo(units, price)
	return BuyReceipt{Payment: new(big.Int).Set(payment), Fee: feeAmt, Net: net, UnitsOut: units}
}

func quoteSell(price, scale *big.Int, rateBps uint16, unitsIn *big.Int) SellReceipt {
	if unitsIn == nil {
		unitsIn = big.NewInt(0)
	}
	gross := new(big.Int).Mul(unitsIn, price)
	gross.Quo(gross, scale)
	feeAmt, net := fee.Compute(gross, rateBps)
	return SellReceipt{UnitsIn: new(big.Int).Set(unitsIn), Gross: gross, Fee: feeAmt, Net: net}
}

// Buy pays payment of the settlement asset into the pool and credits the
// caller with the units it buys at the fixed price, net of the fee.
func (e *Engine) Buy(ctx context.Context, caller common.Address, minUnitsOut, payment *big.Int) (BuyReceipt, error) {
	var receipt BuyReceipt
	err := e.run(ctx, "buy", caller, func(ctx context.Context, f *frame) error {
		if err := requireActive(e.rec.State); err != nil {
			return err
		}
		if payment == nil {
			payment = new(big.Int)
		}
		if payment.Cmp(e.rec.MinBuy) < 0 {
			return ErrBelowMinimumBuy
		}
		if payment.Sign() == 0 {
			return ErrInvalidAmount
		}

		receipt = quoteBuy(e.rec.Price, e.rec.Scale(), e.rec.FeeRateBps, payment)
		if e.ledger.BalanceOf(e.rec.Address).Cmp(receipt.UnitsOut) < 0 {
			return ErrInsufficientLiquidity
		}
		if minUnitsOut != nil && receipt.UnitsOut.Cmp(minUnitsOut) < 0 {
			return ErrSlippageExceeded
		}

		if err := e.ledger.Move(e.rec.Address, caller, receipt.UnitsOut); err != nil {
			return err
		}
		e.rec.CollectedFee = new(big.Int).Add(e.rec.CollectedFee, receipt.Fee)
		e.rec.Holdings = new(big.Int).Add(e.rec.Holdings, payment)
		if err := f.emit(e.encoder.Bought(caller, payment, receipt.UnitsOut, receipt.Fee)); err != nil {
			return err
		}
		f.then(func(ctx context.Context) error {
			return e.bank.Collect(ctx, caller, payment)
		})
		return nil
	})
	if err != nil {
		return BuyReceipt{}, err
	}
	if e.observer != nil {
		e.observer.ObserveTrade("buy", receipt.Payment, receipt.UnitsOut, receipt.Fee)
	}
	return receipt, nil
}

// Sell returns unitsIn units to the pool's reserve and pays the caller their
// settlement value net of the fee.
func (e *Engine) Sell(ctx context.Context, caller common.Address, unitsIn, minSettlementOut *big.Int) (SellReceipt, error) {
	var receipt SellReceipt
	err := e.run(ctx, "sell", caller, func(ctx context.Context, f *frame) error {
		if err := requireActive(e.rec.State); err != nil {
			return err
		}
		if unitsIn == nil || unitsIn.Sign() <= 0 {
			return ErrInvalidAmount
		}
		if e.ledger.BalanceOf(caller).Cmp(unitsIn) < 0 {
			return ErrInsufficientBalance
		}

		receipt = quoteSell(e.rec.Price, e.rec.Scale(), e.rec.FeeRateBps, unitsIn)
		if minSettlementOut != nil && receipt.Net.Cmp(minSettlementOut) < 0 {
			return ErrSlippageExceeded
		}
		// The fee stays in holdings, so the whole gross amount must be
		// covered by liquidity for collectedFee to remain backed.
		liquidity := e.rec.Liquidity()
		if liquidity.Cmp(receipt.Net) < 0 || liquidity.Cmp(receipt.Gross) < 0 {
			return ErrInsufficientLiquidity
		}

		if err := e.ledger.Move(caller, e.rec.Address, unitsIn); err != nil {
			return err
		}
		e.rec.CollectedFee = new(big.Int).Add(e.rec.CollectedFee, receipt.Fee)
		e.rec.Holdings = new(big.Int).Sub(e.rec.Holdings, receipt.Net)
		if err := f.emit(e.encoder.Sold(caller, unitsIn, receipt.Gross, receipt.Net, receipt.Fee)); err != nil {
			return err
		}
		f.then(func(ctx context.Context) error {
			return e.bank.Pay(ctx, caller, receipt.Net)
		})
		return nil
	})
	if err != nil {
		return SellReceipt{}, err
	}
	if e.observer != nil {
		e.observer.ObserveTrade("sell", receipt.Net, receipt.UnitsIn, receipt.Fee)
	}
	return receipt, nil
}
