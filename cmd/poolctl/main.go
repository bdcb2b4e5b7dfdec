package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"poolLedger/internal/config"
	"poolLedger/internal/storage"
	"poolLedger/internal/storage/postgres"
)

func main() {
	root := &cobra.Command{
		Use:          "poolctl",
		Short:        "Operate a fixed-price fee pool",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Execute a YAML scenario against the pool",
		RunE:  runScenario,
	}

	runCmd.Flags().String("scenario", "", "scenario YAML path")
	addStoreFlags(runCmd)
	runCmd.Flags().String("journal", "./data/events.jsonl", "event journal JSONL path")
	runCmd.Flags().String("metrics-out", "", "write Prometheus metrics in text format to this path")
	runCmd.Flags().String("deployer", "", "deployer address, used when the pool does not exist yet")
	runCmd.Flags().String("pool-address", "", "pool address override for a new pool")
	runCmd.Flags().String("price", "0.001", "settlement amount per whole unit")
	runCmd.Flags().Uint16("fee-rate-bps", 30, "fee rate in basis points")
	runCmd.Flags().String("min-buy", "0.001", "minimum settlement amount per buy")
	runCmd.Flags().Uint8("decimals", 18, "unit decimal precision")
	runCmd.Flags().String("total-supply", "1000000", "total supply in whole units")

	root.AddCommand(runCmd)

	inspectCmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print the pool record and balances",
		RunE:  runInspect,
	}

	addStoreFlags(inspectCmd)
	inspectCmd.Flags().StringSlice("account", nil, "only print these accounts (comma-separated)")

	root.AddCommand(inspectCmd)

	eventsCmd := &cobra.Command{
		Use:   "events",
		Short: "Decode the event journal into typed events",
		RunE:  runEvents,
	}

	addStoreFlags(eventsCmd)
	eventsCmd.Flags().String("journal", "./data/events.jsonl", "event journal JSONL path")
	eventsCmd.Flags().String("out", "", "output typed events JSONL (stdout when empty)")

	root.AddCommand(eventsCmd)

	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Aggregate trades in the journal into windows",
		RunE:  runReport,
	}

	reportCmd.Flags().String("journal", "./data/events.jsonl", "event journal JSONL path")
	reportCmd.Flags().String("window", "1h", "aggregation window (e.g. 1m, 5m, 1h)")
	reportCmd.Flags().String("from", "", "skip events before this timestamp (unix seconds or RFC3339)")
	reportCmd.Flags().String("out", "", "output window metrics JSONL (stdout when empty)")
	reportCmd.Flags().Uint8("decimals", 18, "decimal precision of reported amounts")
	reportCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(reportCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addStoreFlags(cmd *cobra.Command) {
	cmd.Flags().String("store", config.StoreFile, "state store (file, memory, postgres)")
	cmd.Flags().String("state", "./data/pool_state.json", "state file path for the file store")
	cmd.Flags().String("pg-dsn", "", "Postgres DSN for the postgres store")
	cmd.Flags().Int("max-retries", 5, "maximum connection retry attempts")
	cmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
}

// openStore builds the configured store. The returned func releases it.
func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (storage.Store, func(), error) {
	switch cfg.Store {
	case config.StoreMemory:
		return storage.NewMemoryStore(), func() {}, nil
	case config.StorePostgres:
		store, err := postgres.NewStore(ctx, cfg.PGDSN, postgres.Options{
			MaxRetries:   cfg.MaxRetries,
			RetryBackoff: cfg.RetryBackoff,
			Logger:       logger,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		return store, store.Close, nil
	default:
		return storage.NewFileStore(cfg.StatePath), func() {}, nil
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
