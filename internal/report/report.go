// Package report aggregates the event journal into fixed trade windows.
package report

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"go.uber.org/zap"

	"poolLedger/internal/events"
	"poolLedger/internal/model"
	"poolLedger/internal/units"
)

const feeRatePlaces = 6

// Config controls aggregation behavior.
type Config struct {
	WindowSeconds uint64
	// Decimals of the settlement asset and the unit; both share the pool scale.
	Decimals uint8
	// From skips events with an earlier timestamp.
	From uint64
}

// WindowMetrics is one aggregated window.
type WindowMetrics struct {
	PoolAddress      string    `json:"pool_address"`
	WindowSizeSecs   int64     `json:"window_size_secs"`
	WindowStart      time.Time `json:"window_start"`
	WindowEnd        time.Time `json:"window_end"`
	BuyCount         uint64    `json:"buy_count"`
	SellCount        uint64    `json:"sell_count"`
	SettlementIn     string    `json:"settlement_in"`
	SettlementOut    string    `json:"settlement_out"`
	UnitsBought      string    `json:"units_bought"`
	UnitsSold        string    `json:"units_sold"`
	Fees             string    `json:"fees"`
	EffectiveFeeRate *string   `json:"effective_fee_rate,omitempty"`
	FirstSequence    uint64    `json:"first_sequence"`
	LastSequence     uint64    `json:"last_sequence"`
}

// Aggregator folds journal records into WindowMetrics.
type Aggregator struct {
	cfg          Config
	decoder      *events.Decoder
	logger       *zap.Logger
	accumulators map[uint64]*Accumulator
}

func NewAggregator(cfg Config, logger *zap.Logger) (*Aggregator, error) {
	if cfg.WindowSeconds == 0 {
		return nil, fmt.Errorf("window seconds must be > 0")
	}
	if cfg.Decimals == 0 {
		cfg.Decimals = 18
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	decoder, err := events.NewDecoder()
	if err != nil {
		return nil, err
	}
	return &Aggregator{
		cfg:          cfg,
		decoder:      decoder,
		logger:       logger,
		accumulators: make(map[uint64]*Accumulator),
	}, nil
}

// Add decodes a journal record and folds it into its window.
func (a *Aggregator) Add(record model.LogRecord) error {
	if record.Timestamp < a.cfg.From {
		return nil
	}
	event, err := a.decoder.Decode(record)
	if err != nil {
		return err
	}

	start := windowStart(event.Timestamp, a.cfg.WindowSeconds)
	acc := a.accumulators[start]
	if acc == nil {
		acc = NewAccumulator(*event, start, start+a.cfg.WindowSeconds)
		a.accumulators[start] = acc
	}
	return acc.AddEvent(*event)
}

// Run aggregates a JSONL journal file. Malformed lines are logged and skipped.
func (a *Aggregator) Run(ctx context.Context, inputPath string) ([]WindowMetrics, error) {
	file, err := os.Open(inputPath)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer file.Close()
	return a.RunReader(ctx, file)
}

func (a *Aggregator) RunReader(ctx context.Context, r io.Reader) ([]WindowMetrics, error) {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	var total, failed int
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		total++

		var record model.LogRecord
		if err := json.Unmarshal(line, &record); err != nil {
			failed++
			a.logger.Warn("decode journal record", zap.Error(err))
			continue
		}
		if err := a.Add(record); err != nil {
			failed++
			a.logger.Warn("aggregate event", zap.Error(err), zap.String("call_id", record.CallID))
			continue
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan input: %w", err)
	}

	out := a.Flush()
	a.logger.Info("report complete",
		zap.Int("total", total),
		zap.Int("failed", failed),
		zap.Int("windows", len(out)),
	)
	return out, nil
}

// Flush returns every window in chronological order and resets the aggregator.
func (a *Aggregator) Flush() []WindowMetrics {
	out := make([]WindowMetrics, 0, len(a.accumulators))
	for _, acc := range a.accumulators {
		out = append(out, a.metrics(acc))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].WindowStart.Before(out[j].WindowStart)
	})
	a.accumulators = make(map[uint64]*Accumulator)
	return out
}

func (a *Aggregator) metrics(acc *Accumulator) WindowMetrics {
	dec := a.cfg.Decimals
	m := WindowMetrics{
		PoolAddress:    acc.PoolAddress,
		WindowSizeSecs: int64(a.cfg.WindowSeconds),
		WindowStart:    time.Unix(int64(acc.WindowStart), 0).UTC(),
		WindowEnd:      time.Unix(int64(acc.WindowEnd), 0).UTC(),
		BuyCount:       acc.BuyCount,
		SellCount:      acc.SellCount,
		SettlementIn:   units.FormatAmount(acc.SettlementIn, dec),
		SettlementOut:  units.FormatAmount(acc.SettlementOut, dec),
		UnitsBought:    units.FormatAmount(acc.UnitsBought, dec),
		UnitsSold:      units.FormatAmount(acc.UnitsSold, dec),
		Fees:           units.FormatAmount(acc.Fees, dec),
		FirstSequence:  acc.FirstSequence,
		LastSequence:   acc.LastSequence,
	}
	if rate := units.Ratio(acc.Fees, acc.Volume(), feeRatePlaces); rate != "" {
		m.EffectiveFeeRate = &rate
	}
	return m
}

func windowStart(ts uint64, windowSec uint64) uint64 {
	return ts - (ts % windowSec)
}
