package report

import (
	"bytes"
	"context"
	"encoding/json"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"poolLedger/internal/events"
	"poolLedger/internal/model"
)

var (
	pool  = common.HexToAddress("0x9999999999999999999999999999999999999999")
	buyer = common.HexToAddress("0x2222222222222222222222222222222222222222")
)

func amount(t *testing.T, s string) *big.Int {
	t.Helper()
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		t.Fatalf("bad amount %s", s)
	}
	return v
}

func TestAggregatorWindows(t *testing.T) {
	enc, err := events.NewEncoder(pool)
	if err != nil {
		t.Fatalf("encoder: %v", err)
	}
	var records []model.LogRecord
	push := func(rec model.LogRecord, err error, seq, ts uint64) {
		t.Helper()
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		rec.Sequence = seq
		rec.Timestamp = ts
		records = append(records, rec)
	}

	bought, err := enc.Bought(buyer, amount(t, "1000000000000000000"), amount(t, "997000000000000000000"), amount(t, "3000000000000000"))
	push(bought, err, 2, 3_700)
	state, err := enc.StateUpdated(model.StateCreated, model.StateActive)
	push(state, err, 1, 3_650)
	sold, err := enc.Sold(buyer, amount(t, "100000000000000000000"), amount(t, "100000000000000000"), amount(t, "99700000000000000"), amount(t, "300000000000000"))
	push(sold, err, 3, 3_800)
	later, err := enc.Bought(buyer, amount(t, "2000000000000000000"), amount(t, "1994000000000000000000"), amount(t, "6000000000000000"))
	push(later, err, 4, 7_300)

	var buf bytes.Buffer
	for _, rec := range records {
		line, err := json.Marshal(rec)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}
	buf.WriteString("not json\n\n")

	agg, err := NewAggregator(Config{WindowSeconds: 3_600}, nil)
	if err != nil {
		t.Fatalf("aggregator: %v", err)
	}
	windows, err := agg.RunReader(context.Background(), &buf)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(windows) != 2 {
		t.Fatalf("expected 2 windows, got %d", len(windows))
	}

	first := windows[0]
	if first.WindowStart.Unix() != 3_600 || first.WindowEnd.Unix() != 7_200 {
		t.Fatalf("unexpected bounds: %v - %v", first.WindowStart, first.WindowEnd)
	}
	if first.BuyCount != 1 || first.SellCount != 1 {
		t.Fatalf("unexpected counts: %+v", first)
	}
	if first.SettlementIn != "1" || first.SettlementOut != "0.0997" {
		t.Fatalf("unexpected settlement: in=%s out=%s", first.SettlementIn, first.SettlementOut)
	}
	if first.UnitsBought != "997" || first.UnitsSold != "100" || first.Fees != "0.0033" {
		t.Fatalf("unexpected totals: %+v", first)
	}
	if first.FirstSequence != 1 || first.LastSequence != 3 {
		t.Fatalf("unexpected sequence range: %d-%d", first.FirstSequence, first.LastSequence)
	}
	if first.EffectiveFeeRate == nil || *first.EffectiveFeeRate != "0.003001" {
		t.Fatalf("unexpected fee rate: %v", first.EffectiveFeeRate)
	}

	second := windows[1]
	if second.BuyCount != 1 || second.Fees != "0.006" || second.SellCount != 0 {
		t.Fatalf("unexpected second window: %+v", second)
	}
}

func TestAggregatorFrom(t *testing.T) {
	enc, err := events.NewEncoder(pool)
	if err != nil {
		t.Fatalf("encoder: %v", err)
	}
	rec, err := enc.Bought(buyer, big.NewInt(1_000), big.NewInt(997), big.NewInt(3))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	rec.Timestamp = 100

	agg, err := NewAggregator(Config{WindowSeconds: 60, From: 200}, nil)
	if err != nil {
		t.Fatalf("aggregator: %v", err)
	}
	if err := agg.Add(rec); err != nil {
		t.Fatalf("add: %v", err)
	}
	if got := agg.Flush(); len(got) != 0 {
		t.Fatalf("expected events before From to be skipped, got %d windows", len(got))
	}
}

func TestNewAggregatorRequiresWindow(t *testing.T) {
	if _, err := NewAggregator(Config{}, nil); err == nil {
		t.Fatalf("expected error for zero window")
	}
}
