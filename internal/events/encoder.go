package events

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"poolLedger/internal/model"
)

// Encoder turns pool operations into log records addressed from the pool.
type Encoder struct {
	poolABI abi.ABI
	pool    common.Address
}

func NewEncoder(pool common.Address) (*Encoder, error) {
	poolABI, err := PoolABI()
	if err != nil {
		return nil, err
	}
	return &Encoder{poolABI: poolABI, pool: pool}, nil
}

func (e *Encoder) Created(owner common.Address, price *big.Int, feeRateBps uint16, minBuy, totalSupply *big.Int) (model.LogRecord, error) {
	return e.encode(model.EventCreated, []common.Address{owner}, price, feeRateBps, minBuy, totalSupply)
}

func (e *Encoder) StateUpdated(previous, current model.State) (model.LogRecord, error) {
	return e.encode(model.EventStateUpdated, nil, uint8(previous), uint8(current))
}

func (e *Encoder) TokenDeposited(owner common.Address, amount *big.Int) (model.LogRecord, error) {
	return e.encode(model.EventTokenDeposited, []common.Address{owner}, amount)
}

func (e *Encoder) SettlementDeposited(owner common.Address, amount *big.Int) (model.LogRecord, error) {
	return e.encode(model.EventSettlementDeposited, []common.Address{owner}, amount)
}

func (e *Encoder) Bought(buyer common.Address, payment, unitsOut, fee *big.Int) (model.LogRecord, error) {
	return e.encode(model.EventBought, []common.Address{buyer}, payment, unitsOut, fee)
}

func (e *Encoder) Sold(seller common.Address, unitsIn, gross, net, fee *big.Int) (model.LogRecord, error) {
	return e.encode(model.EventSold, []common.Address{seller}, unitsIn, gross, net, fee)
}

func (e *Encoder) FeeWithdrawn(owner common.Address, amount *big.Int) (model.LogRecord, error) {
	return e.encode(model.EventFeeWithdrawn, []common.Address{owner}, amount)
}

func (e *Encoder) OwnershipTransferred(previous, next common.Address) (model.LogRecord, error) {
	return e.encode(model.EventOwnershipTransferred, []common.Address{previous, next})
}

func (e *Encoder) encode(name string, indexed []common.Address, args ...interface{}) (model.LogRecord, error) {
	event, ok := e.poolABI.Events[name]
	if !ok {
		return model.LogRecord{}, fmt.Errorf("unknown event: %s", name)
	}
	data, err := event.Inputs.NonIndexed().Pack(args...)
	if err != nil {
		return model.LogRecord{}, fmt.Errorf("pack %s: %w", name, err)
	}

	topics := make([]string, 0, len(indexed)+1)
	topics = append(topics, event.ID.Hex())
	for _, addr := range indexed {
		topics = append(topics, common.BytesToHash(addr.Bytes()).Hex())
	}

	return model.LogRecord{
		Address: e.pool.Hex(),
		Topics:  topics,
		Data:    hexutil.Encode(data),
	}, nil
}
