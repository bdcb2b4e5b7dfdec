package fee

import "math/big"

// MaxRateBps is 100% expressed in basis points.
const MaxRateBps = 10_000

var bpsDenominator = big.NewInt(MaxRateBps)

// Compute splits amount into the fee owed at rateBps and the remaining net
// amount. The fee is rounded down and fee+net always equals amount.
func Compute(amount *big.Int, rateBps uint16) (*big.Int, *big.Int) {
	if amount == nil || amount.Sign() <= 0 {
		return big.NewInt(0), big.NewInt(0)
	}
	fee := new(big.Int).Mul(amount, big.NewInt(int64(rateBps)))
	fee.Quo(fee, bpsDenominator)
	net := new(big.Int).Sub(amount, fee)
	return fee, net
}

// ValidRate reports whether rateBps is within [0, MaxRateBps].
func ValidRate(rateBps uint16) bool {
	return rateBps <= MaxRateBps
}
