package main

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"poolLedger/internal/config"
	"poolLedger/internal/pool"
	"poolLedger/internal/settlement"
	"poolLedger/internal/storage"
	"poolLedger/internal/units"
)

const scenarioYAML = `
accounts:
  - name: operator
    address: "0x1111111111111111111111111111111111111111"
    settlement: "10"
  - name: alice
    address: "0x2222222222222222222222222222222222222222"
    settlement: "1"
steps:
  - op: deposit_token
    caller: owner
    amount: "500000"
  - op: deposit_settlement
    caller: owner
    amount: "10"
  - op: buy
    caller: alice
    amount: "1"
    expect_error: invalid_state
  - op: update_state
    caller: alice
    state: active
    expect_error: unauthorized
  - op: update_state
    caller: owner
    state: active
  - op: buy
    caller: alice
    amount: "1"
    min_out: "0"
  - op: sell
    caller: alice
    amount: "998"
    expect_error: insufficient_balance
  - op: transfer_ownership
    caller: operator
    to: alice
  - op: withdraw_fee
    caller: alice
`

func TestScenarioRunner(t *testing.T) {
	ctx := context.Background()
	sc, err := config.ParseScenario([]byte(scenarioYAML))
	require.NoError(t, err)

	cfg := config.Config{
		Deployer:    "0x1111111111111111111111111111111111111111",
		Price:       "0.001",
		FeeRateBps:  30,
		MinBuy:      "0.001",
		Decimals:    18,
		TotalSupply: "1000000",
	}
	bank := settlement.NewMemoryBank(common.Address{}, nil)
	engine, err := openOrCreate(ctx, cfg, pool.Deps{Settlement: bank, Store: storage.NewMemoryStore()})
	require.NoError(t, err)
	bank.SetPool(engine.Address())

	runner, err := newScenarioRunner(engine, bank, sc.Accounts)
	require.NoError(t, err)
	for i, step := range sc.Steps {
		require.NoError(t, runner.exec(ctx, step), "step %d", i+1)
	}
	require.Equal(t, 3, runner.expectedFailures)

	alice := common.HexToAddress("0x2222222222222222222222222222222222222222")
	view := newPoolView(engine.Snapshot(), []common.Address{alice})
	require.Equal(t, "active", view.State)
	require.Equal(t, alice.Hex(), view.Owner)
	require.Equal(t, "0", view.CollectedFee)
	require.Equal(t, "10.997", view.Holdings)
	require.Equal(t, "499003", view.Reserve)
	require.Equal(t, []balanceView{{Account: alice.Hex(), Balance: "997"}}, view.Balances)
	require.Equal(t, "0.003", units.FormatAmount(bank.BalanceOf(alice), 18))
}

func TestScenarioRunnerReportsMismatch(t *testing.T) {
	ctx := context.Background()
	bank := settlement.NewMemoryBank(common.Address{}, nil)
	engine, err := openOrCreate(ctx, config.Config{
		Deployer: "0x1111111111111111111111111111111111111111",
		Price:    "0.001",
		MinBuy:   "0.001",
		Decimals: 18,
	}, pool.Deps{Settlement: bank})
	require.NoError(t, err)

	runner, err := newScenarioRunner(engine, bank, nil)
	require.NoError(t, err)

	err = runner.exec(ctx, config.Step{Op: config.OpWithdrawFee, Caller: "owner", ExpectError: "unauthorized"})
	require.ErrorContains(t, err, "expected unauthorized, got no_fee_to_collect")

	err = runner.exec(ctx, config.Step{Op: config.OpWithdrawFee, Caller: "nobody"})
	require.ErrorContains(t, err, "unknown account")
}

func TestPoolParamsRequiresDeployer(t *testing.T) {
	_, err := poolParams(config.Config{Price: "0.001", Decimals: 18})
	require.Error(t, err)
}
