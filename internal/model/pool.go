package model

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// PoolRecord is the persisted singleton describing the pool.
type PoolRecord struct {
	Address      common.Address `json:"address"`
	Owner        common.Address `json:"owner"`
	State        State          `json:"state"`
	Price        *big.Int       `json:"price"`
	FeeRateBps   uint16         `json:"fee_rate_bps"`
	MinBuy       *big.Int       `json:"min_buy"`
	CollectedFee *big.Int       `json:"collected_fee"`
	Holdings     *big.Int       `json:"holdings"`
	TotalSupply  *big.Int       `json:"total_supply"`
	Decimals     uint8          `json:"decimals"`
	Sequence     uint64         `json:"sequence"`
}

// Copy returns a deep copy so callers cannot mutate shared amounts.
func (p PoolRecord) Copy() PoolRecord {
	clone := p
	clone.Price = copyInt(p.Price)
	clone.MinBuy = copyInt(p.MinBuy)
	clone.CollectedFee = copyInt(p.CollectedFee)
	clone.Holdings = copyInt(p.Holdings)
	clone.TotalSupply = copyInt(p.TotalSupply)
	return clone
}

// Scale is the number of base units in one whole unit.
func (p PoolRecord) Scale() *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(p.Decimals)), nil)
}

// Liquidity is the settlement amount available for sell payouts. Collected
// fees are earmarked and never counted.
func (p PoolRecord) Liquidity() *big.Int {
	if p.Holdings == nil {
		return big.NewInt(0)
	}
	out := new(big.Int).Set(p.Holdings)
	if p.CollectedFee != nil {
		out.Sub(out, p.CollectedFee)
	}
	if out.Sign() < 0 {
		return big.NewInt(0)
	}
	return out
}

func copyInt(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}
