package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"poolLedger/internal/config"
	"poolLedger/internal/metrics"
	"poolLedger/internal/model"
	"poolLedger/internal/pool"
	"poolLedger/internal/settlement"
	"poolLedger/internal/storage"
	"poolLedger/internal/units"
)

func runScenario(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	scenarioPath, _ := cmd.Flags().GetString("scenario")
	if scenarioPath == "" {
		return fmt.Errorf("scenario path is required")
	}
	sc, err := config.LoadScenario(scenarioPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	reg := prometheus.NewRegistry()
	bank := settlement.NewMemoryBank(common.Address{}, logger)
	deps := pool.Deps{
		Settlement: bank,
		Store:      store,
		Journal:    storage.NewJsonlJournal(cfg.Journal),
		Observer:   metrics.New(reg),
		Logger:     logger,
	}

	engine, err := openOrCreate(ctx, cfg, deps)
	if err != nil {
		return err
	}
	bank.SetPool(engine.Address())

	logger.Info("scenario start",
		zap.String("scenario", scenarioPath),
		zap.String("store", cfg.Store),
		zap.String("pool", engine.Address().Hex()),
		zap.String("state", engine.State().String()),
		zap.Int("steps", len(sc.Steps)),
	)

	runner, err := newScenarioRunner(engine, bank, sc.Accounts)
	if err != nil {
		return err
	}
	for i, step := range sc.Steps {
		if err := runner.exec(ctx, step); err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, step.Op, err)
		}
	}

	if cfg.MetricsOut != "" {
		if err := prometheus.WriteToTextfile(cfg.MetricsOut, reg); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}

	logger.Info("scenario complete",
		zap.Int("steps", len(sc.Steps)),
		zap.Int("expected_failures", runner.expectedFailures),
	)
	return printJSON(cmd, newPoolView(engine.Snapshot(), nil))
}

func openOrCreate(ctx context.Context, cfg config.Config, deps pool.Deps) (*pool.Engine, error) {
	engine, err := pool.Open(ctx, deps)
	if err == nil {
		return engine, nil
	}
	if !errors.Is(err, pool.ErrNotCreated) {
		return nil, err
	}

	params, err := poolParams(cfg)
	if err != nil {
		return nil, err
	}
	return pool.Create(ctx, params, deps)
}

func poolParams(cfg config.Config) (pool.Params, error) {
	deployer, err := config.ParseAddress(cfg.Deployer)
	if err != nil {
		return pool.Params{}, err
	}
	if deployer == (common.Address{}) {
		return pool.Params{}, fmt.Errorf("deployer is required to create the pool")
	}
	address, err := config.ParseAddress(cfg.PoolAddress)
	if err != nil {
		return pool.Params{}, err
	}

	price, err := units.ParseAmount(cfg.Price, cfg.Decimals)
	if err != nil {
		return pool.Params{}, fmt.Errorf("price: %w", err)
	}
	minBuy, err := units.ParseAmount(cfg.MinBuy, cfg.Decimals)
	if err != nil {
		return pool.Params{}, fmt.Errorf("min-buy: %w", err)
	}
	supply, err := units.ParseAmount(cfg.TotalSupply, 0)
	if err != nil {
		return pool.Params{}, fmt.Errorf("total-supply: %w", err)
	}

	return pool.Params{
		Deployer:    deployer,
		Price:       price,
		FeeRateBps:  cfg.FeeRateBps,
		MinBuy:      minBuy,
		Decimals:    cfg.Decimals,
		TotalSupply: supply,
		Address:     address,
	}, nil
}

// scenarioRunner executes scenario steps against an engine.
type scenarioRunner struct {
	engine           *pool.Engine
	bank             *settlement.MemoryBank
	accounts         map[string]common.Address
	decimals         uint8
	expectedFailures int
}

func newScenarioRunner(engine *pool.Engine, bank *settlement.MemoryBank, accounts []config.Account) (*scenarioRunner, error) {
	r := &scenarioRunner{
		engine:   engine,
		bank:     bank,
		accounts: make(map[string]common.Address, len(accounts)),
		decimals: engine.Decimals(),
	}
	for _, acc := range accounts {
		addr, err := config.ParseAddress(acc.Address)
		if err != nil {
			return nil, fmt.Errorf("account %s: %w", acc.Name, err)
		}
		r.accounts[acc.Name] = addr
		if acc.Settlement == "" {
			continue
		}
		funds, err := units.ParseAmount(acc.Settlement, r.decimals)
		if err != nil {
			return nil, fmt.Errorf("account %s settlement: %w", acc.Name, err)
		}
		bank.Fund(addr, funds)
	}
	return r, nil
}

// resolve maps a scenario identity to an address. "owner" is the current owner.
func (r *scenarioRunner) resolve(name string) (common.Address, error) {
	if addr, ok := r.accounts[name]; ok {
		return addr, nil
	}
	if strings.EqualFold(name, "owner") {
		return r.engine.Owner(), nil
	}
	if common.IsHexAddress(name) {
		return common.HexToAddress(name), nil
	}
	return common.Address{}, fmt.Errorf("unknown account %q", name)
}

func (r *scenarioRunner) amount(value string) (*big.Int, error) {
	return units.ParseAmount(value, r.decimals)
}

func (r *scenarioRunner) exec(ctx context.Context, step config.Step) error {
	caller, err := r.resolve(step.Caller)
	if err != nil {
		return err
	}
	err = r.call(ctx, caller, step)
	if step.ExpectError == "" {
		return err
	}
	if got := pool.ErrorKind(err); got != step.ExpectError {
		return fmt.Errorf("expected %s, got %s (%v)", step.ExpectError, got, err)
	}
	r.expectedFailures++
	return nil
}

func (r *scenarioRunner) call(ctx context.Context, caller common.Address, step config.Step) error {
	switch step.Op {
	case config.OpDepositToken:
		amount, err := r.amount(step.Amount)
		if err != nil {
			return err
		}
		return r.engine.DepositToken(ctx, caller, amount)
	case config.OpDepositSettlement:
		amount, err := r.amount(step.Amount)
		if err != nil {
			return err
		}
		return r.engine.DepositSettlement(ctx, caller, amount)
	case config.OpUpdateState:
		state, err := model.ParseState(step.State)
		if err != nil {
			return err
		}
		return r.engine.UpdateState(ctx, caller, state)
	case config.OpBuy:
		payment, err := r.amount(step.Amount)
		if err != nil {
			return err
		}
		minOut, err := r.amount(step.MinOut)
		if err != nil {
			return err
		}
		_, err = r.engine.Buy(ctx, caller, minOut, payment)
		return err
	case config.OpSell:
		unitsIn, err := r.amount(step.Amount)
		if err != nil {
			return err
		}
		minOut, err := r.amount(step.MinOut)
		if err != nil {
			return err
		}
		_, err = r.engine.Sell(ctx, caller, unitsIn, minOut)
		return err
	case config.OpWithdrawFee:
		_, err := r.engine.WithdrawFee(ctx, caller)
		return err
	case config.OpTransferOwnership:
		next, err := r.resolve(step.To)
		if err != nil {
			return err
		}
		return r.engine.TransferOwnership(ctx, caller, next)
	default:
		return fmt.Errorf("unsupported op %q", step.Op)
	}
}

func printJSON(cmd *cobra.Command, value interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}
