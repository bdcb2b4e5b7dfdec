package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"poolLedger/internal/config"
	"poolLedger/internal/events"
	"poolLedger/internal/model"
	"poolLedger/internal/storage"
	"poolLedger/internal/storage/postgres"
)

func runEvents(cmd *cobra.Command, _ []string) error {
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	records, err := loadEventRecords(ctx, cfg, logger)
	if err != nil {
		return err
	}

	decoder, err := events.NewDecoder()
	if err != nil {
		return err
	}

	outPath, _ := cmd.Flags().GetString("out")
	out, err := newJSONLWriter(cmd.OutOrStdout(), outPath)
	if err != nil {
		return err
	}
	defer out.Close()

	var decoded, skipped, failed int
	for _, record := range records {
		if len(record.Topics) == 0 || !decoder.CanDecode(record.Topics[0]) {
			skipped++
			continue
		}
		event, err := decoder.Decode(record)
		if err != nil {
			failed++
			logger.Warn("decode event", zap.String("call_id", record.CallID), zap.Error(err))
			continue
		}
		if err := out.Write(event); err != nil {
			return err
		}
		decoded++
	}

	logger.Info("events complete",
		zap.Int("total", len(records)),
		zap.Int("decoded", decoded),
		zap.Int("skipped", skipped),
		zap.Int("failed", failed),
	)
	return nil
}

// loadEventRecords reads events from Postgres when it is the configured store
// and from the JSONL journal otherwise.
func loadEventRecords(ctx context.Context, cfg config.Config, logger *zap.Logger) ([]model.LogRecord, error) {
	if cfg.Store != config.StorePostgres {
		if cfg.Journal == "" {
			return nil, fmt.Errorf("journal path is required")
		}
		return storage.ReadJournal(cfg.Journal)
	}

	store, err := postgres.NewStore(ctx, cfg.PGDSN, postgres.Options{
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
		Logger:       logger,
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	defer store.Close()
	return store.Events(ctx)
}

type jsonlWriter struct {
	file   *os.File
	writer *bufio.Writer
}

// newJSONLWriter writes to path, or to fallback when path is empty.
func newJSONLWriter(fallback io.Writer, path string) (*jsonlWriter, error) {
	if path == "" {
		return &jsonlWriter{writer: bufio.NewWriter(fallback)}, nil
	}

	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create dir: %w", err)
		}
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}

	return &jsonlWriter{
		file:   file,
		writer: bufio.NewWriter(file),
	}, nil
}

func (w *jsonlWriter) Write(value interface{}) error {
	line, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if _, err := w.writer.Write(line); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	if err := w.writer.WriteByte('\n'); err != nil {
		return fmt.Errorf("write newline: %w", err)
	}
	return nil
}

func (w *jsonlWriter) Close() error {
	if w == nil {
		return nil
	}
	if err := w.writer.Flush(); err != nil {
		return err
	}
	if w.file == nil {
		return nil
	}
	return w.file.Close()
}
