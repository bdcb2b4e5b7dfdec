package ledger

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

var (
	alice = common.HexToAddress("0x1111111111111111111111111111111111111111")
	bob   = common.HexToAddress("0x2222222222222222222222222222222222222222")
)

func TestCreditDebit(t *testing.T) {
	l := New()
	if err := l.Credit(alice, big.NewInt(100)); err != nil {
		t.Fatalf("credit: %v", err)
	}
	if err := l.Debit(alice, big.NewInt(40)); err != nil {
		t.Fatalf("debit: %v", err)
	}
	if got := l.BalanceOf(alice); got.Int64() != 60 {
		t.Fatalf("balance mismatch: %s", got)
	}
	if got := l.BalanceOf(bob); got.Sign() != 0 {
		t.Fatalf("unknown account should be zero: %s", got)
	}
}

func TestDebitInsufficientBalance(t *testing.T) {
	l := New()
	_ = l.Credit(alice, big.NewInt(10))

	err := l.Debit(alice, big.NewInt(11))
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	if got := l.BalanceOf(alice); got.Int64() != 10 {
		t.Fatalf("failed debit mutated balance: %s", got)
	}
}

func TestNegativeAmountsRejected(t *testing.T) {
	l := New()
	if err := l.Credit(alice, big.NewInt(-1)); !errors.Is(err, ErrNegativeAmount) {
		t.Fatalf("expected ErrNegativeAmount on credit, got %v", err)
	}
	if err := l.Debit(alice, big.NewInt(-1)); !errors.Is(err, ErrNegativeAmount) {
		t.Fatalf("expected ErrNegativeAmount on debit, got %v", err)
	}
}

func TestMoveConservesTotal(t *testing.T) {
	l := Load(map[common.Address]*big.Int{alice: big.NewInt(1000)})

	if err := l.Move(alice, bob, big.NewInt(250)); err != nil {
		t.Fatalf("move: %v", err)
	}
	if err := l.Move(bob, alice, big.NewInt(251)); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	if l.Total().Int64() != 1000 {
		t.Fatalf("total changed: %s", l.Total())
	}
	if l.BalanceOf(bob).Int64() != 250 {
		t.Fatalf("bob balance mismatch: %s", l.BalanceOf(bob))
	}
}

func TestRevertTo(t *testing.T) {
	l := Load(map[common.Address]*big.Int{alice: big.NewInt(500)})
	mark := l.Mark()

	_ = l.Move(alice, bob, big.NewInt(200))
	_ = l.Credit(alice, big.NewInt(1))

	touched := l.Touched(mark)
	if len(touched) != 2 || touched[bob].Int64() != 200 || touched[alice].Int64() != 301 {
		t.Fatalf("unexpected touched set: %v", touched)
	}

	l.RevertTo(mark)
	if l.BalanceOf(alice).Int64() != 500 {
		t.Fatalf("alice not reverted: %s", l.BalanceOf(alice))
	}
	if _, ok := l.Balances()[bob]; ok {
		t.Fatalf("bob should not exist after revert")
	}
	if l.Mark() != mark {
		t.Fatalf("journal not truncated")
	}
}

func TestDiscardKeepsBalances(t *testing.T) {
	l := New()
	_ = l.Credit(alice, big.NewInt(7))
	l.Discard()
	l.RevertTo(0)
	if l.BalanceOf(alice).Int64() != 7 {
		t.Fatalf("discarded journal should not revert: %s", l.BalanceOf(alice))
	}
}
