package pool

import (
	"errors"

	"poolLedger/internal/ledger"
)

var (
	ErrUnauthorized          = errors.New("unauthorized")
	ErrInvalidState          = errors.New("is not active")
	ErrBelowMinimumBuy       = errors.New("below minimum buy")
	ErrSlippageExceeded      = errors.New("slippage exceeded")
	ErrInsufficientBalance   = ledger.ErrInsufficientBalance
	ErrInsufficientLiquidity = errors.New("insufficient liquidity")
	ErrNoFeeToCollect        = errors.New("no fee to collect")
	ErrZeroAddress           = errors.New("zero address")

	ErrReentrant      = errors.New("reentrant call")
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrInvalidPrice   = errors.New("price must be positive")
	ErrInvalidFeeRate = errors.New("fee rate exceeds 10000 bps")
	ErrUnknownState   = errors.New("unknown state")
	ErrAlreadyCreated = errors.New("pool already created")
	ErrNotCreated     = errors.New("pool not created")
	ErrCorruptState   = errors.New("persisted state violates invariants")
)

// ErrorKind maps an engine error to a short stable label.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, ErrBelowMinimumBuy):
		return "below_minimum_buy"
	case errors.Is(err, ErrSlippageExceeded):
		return "slippage_exceeded"
	case errors.Is(err, ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, ErrInsufficientLiquidity):
		return "insufficient_liquidity"
	case errors.Is(err, ErrNoFeeToCollect):
		return "no_fee_to_collect"
	case errors.Is(err, ErrZeroAddress):
		return "zero_address"
	case errors.Is(err, ErrReentrant):
		return "reentrant"
	case errors.Is(err, ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, ErrUnknownState):
		return "unknown_state"
	default:
		return "other"
	}
}
