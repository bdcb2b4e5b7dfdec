package fee

import (
	"math/big"
	"testing"
)

func TestCompute(t *testing.T) {
	cases := []struct {
		amount  int64
		rate    uint16
		wantFee int64
		wantNet int64
	}{
		{amount: 1_000_000_000_000_000_000, rate: 30, wantFee: 3_000_000_000_000_000, wantNet: 997_000_000_000_000_000},
		{amount: 10_000, rate: 30, wantFee: 30, wantNet: 9_970},
		{amount: 333, rate: 30, wantFee: 0, wantNet: 333},
		{amount: 334, rate: 300, wantFee: 10, wantNet: 324},
		{amount: 999, rate: 0, wantFee: 0, wantNet: 999},
		{amount: 999, rate: MaxRateBps, wantFee: 999, wantNet: 0},
		{amount: 0, rate: 30, wantFee: 0, wantNet: 0},
	}

	for _, tc := range cases {
		fee, net := Compute(big.NewInt(tc.amount), tc.rate)
		if fee.Int64() != tc.wantFee || net.Int64() != tc.wantNet {
			t.Fatalf("Compute(%d, %d) = (%s, %s), want (%d, %d)", tc.amount, tc.rate, fee, net, tc.wantFee, tc.wantNet)
		}
	}
}

func TestComputeConservesAmount(t *testing.T) {
	for _, rate := range []uint16{0, 1, 7, 30, 250, 9_999, MaxRateBps} {
		for amount := int64(1); amount < 5_000; amount += 37 {
			fee, net := Compute(big.NewInt(amount), rate)
			sum := new(big.Int).Add(fee, net)
			if sum.Int64() != amount {
				t.Fatalf("fee+net != amount for amount=%d rate=%d: %s + %s", amount, rate, fee, net)
			}
			if fee.Sign() < 0 || net.Sign() < 0 {
				t.Fatalf("negative split for amount=%d rate=%d", amount, rate)
			}
			nominal := new(big.Int).Mul(big.NewInt(amount), big.NewInt(int64(rate)))
			if new(big.Int).Mul(fee, big.NewInt(MaxRateBps)).Cmp(nominal) > 0 {
				t.Fatalf("fee exceeds nominal rate for amount=%d rate=%d", amount, rate)
			}
		}
	}
}

func TestComputeDoesNotMutateInput(t *testing.T) {
	amount := big.NewInt(12345)
	Compute(amount, 30)
	if amount.Int64() != 12345 {
		t.Fatalf("input mutated: %s", amount)
	}
}

func TestValidRate(t *testing.T) {
	if !ValidRate(0) || !ValidRate(MaxRateBps) {
		t.Fatalf("boundary rates should be valid")
	}
	if ValidRate(MaxRateBps + 1) {
		t.Fatalf("rate above 100%% should be invalid")
	}
}
