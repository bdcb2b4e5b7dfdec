package main

import (
	"context"
	"math/big"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"poolLedger/internal/config"
	"poolLedger/internal/pool"
	"poolLedger/internal/settlement"
	"poolLedger/internal/storage"
	"poolLedger/internal/units"
)

type poolView struct {
	Address      string        `json:"address"`
	Owner        string        `json:"owner"`
	State        string        `json:"state"`
	Price        string        `json:"price"`
	FeeRateBps   uint16        `json:"fee_rate_bps"`
	MinBuy       string        `json:"min_buy"`
	CollectedFee string        `json:"collected_fee"`
	Holdings     string        `json:"holdings"`
	Liquidity    string        `json:"liquidity"`
	Reserve      string        `json:"reserve"`
	TotalSupply  string        `json:"total_supply"`
	Decimals     uint8         `json:"decimals"`
	Sequence     uint64        `json:"sequence"`
	Balances     []balanceView `json:"balances"`
}

type balanceView struct {
	Account string `json:"account"`
	Balance string `json:"balance"`
}

// newPoolView renders a snapshot with amounts in decimal notation. A non-empty
// filter limits the balances to those accounts.
func newPoolView(snap storage.Snapshot, filter []common.Address) poolView {
	rec := snap.Pool
	dec := rec.Decimals
	reserve := snap.Balances[rec.Address]

	view := poolView{
		Address:      rec.Address.Hex(),
		Owner:        rec.Owner.Hex(),
		State:        rec.State.String(),
		Price:        units.FormatAmount(rec.Price, dec),
		FeeRateBps:   rec.FeeRateBps,
		MinBuy:       units.FormatAmount(rec.MinBuy, dec),
		CollectedFee: units.FormatAmount(rec.CollectedFee, dec),
		Holdings:     units.FormatAmount(rec.Holdings, dec),
		Liquidity:    units.FormatAmount(rec.Liquidity(), dec),
		Reserve:      units.FormatAmount(reserve, dec),
		TotalSupply:  units.FormatAmount(rec.TotalSupply, dec),
		Decimals:     dec,
		Sequence:     rec.Sequence,
	}

	accounts := filter
	if len(accounts) == 0 {
		for account := range snap.Balances {
			accounts = append(accounts, account)
		}
		sort.Slice(accounts, func(i, j int) bool {
			return accounts[i].Hex() < accounts[j].Hex()
		})
	}
	for _, account := range accounts {
		bal := snap.Balances[account]
		if bal == nil {
			bal = big.NewInt(0)
		}
		view.Balances = append(view.Balances, balanceView{
			Account: account.Hex(),
			Balance: units.FormatAmount(bal, dec),
		})
	}
	return view
}

func runInspect(cmd *cobra.Command, _ []string) error {
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

	rawAccounts, _ := cmd.Flags().GetStringSlice("account")
	filter, err := config.ParseAddresses(rawAccounts)
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

	engine, err := pool.Open(ctx, pool.Deps{
		Settlement: settlement.NewMemoryBank(common.Address{}, logger),
		Store:      store,
		Logger:     logger,
	})
	if err != nil {
		return err
	}
	return printJSON(cmd, newPoolView(engine.Snapshot(), filter))
}
