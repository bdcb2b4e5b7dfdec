package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"poolLedger/internal/config"
	"poolLedger/internal/report"
)

func runReport(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadReport(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	window, err := config.ParseWindow(cfg.Window)
	if err != nil {
		return err
	}
	from, err := config.ParseTimestamp(cfg.From)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	agg, err := report.NewAggregator(report.Config{
		WindowSeconds: window,
		Decimals:      cfg.Decimals,
		From:          from,
	}, logger)
	if err != nil {
		return err
	}

	logger.Info("report start",
		zap.String("journal", cfg.Journal),
		zap.Uint64("window_secs", window),
		zap.Uint64("from", from),
	)

	windows, err := agg.Run(ctx, cfg.Journal)
	if err != nil {
		return err
	}

	out, err := newJSONLWriter(cmd.OutOrStdout(), cfg.Out)
	if err != nil {
		return err
	}
	defer out.Close()

	for _, w := range windows {
		if err := out.Write(w); err != nil {
			return err
		}
	}
	return nil
}
