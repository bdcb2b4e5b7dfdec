package report

import (
	"fmt"
	"math/big"

	"poolLedger/internal/model"
)

// Accumulator holds trade totals for one window.
type Accumulator struct {
	PoolAddress   string
	WindowStart   uint64
	WindowEnd     uint64
	BuyCount      uint64
	SellCount     uint64
	SettlementIn  *big.Int
	SettlementOut *big.Int
	UnitsBought   *big.Int
	UnitsSold     *big.Int
	Fees          *big.Int
	FirstSequence uint64
	LastSequence  uint64
	LastTS        uint64
}

func NewAccumulator(event model.TypedEvent, windowStart, windowEnd uint64) *Accumulator {
	return &Accumulator{
		PoolAddress:   event.Address,
		WindowStart:   windowStart,
		WindowEnd:     windowEnd,
		SettlementIn:  big.NewInt(0),
		SettlementOut: big.NewInt(0),
		UnitsBought:   big.NewInt(0),
		UnitsSold:     big.NewInt(0),
		Fees:          big.NewInt(0),
		FirstSequence: event.Sequence,
		LastSequence:  event.Sequence,
		LastTS:        event.Timestamp,
	}
}

// AddEvent folds a decoded event into the window. Events other than trades
// only advance the sequence range.
func (a *Accumulator) AddEvent(event model.TypedEvent) error {
	if event.Timestamp >= a.LastTS {
		a.LastTS = event.Timestamp
	}
	if event.Sequence > a.LastSequence {
		a.LastSequence = event.Sequence
	}
	if a.FirstSequence == 0 || event.Sequence < a.FirstSequence {
		a.FirstSequence = event.Sequence
	}

	switch data := event.Decoded.(type) {
	case model.BoughtEventData:
		return a.applyBuy(data)
	case model.SoldEventData:
		return a.applySell(data)
	default:
		return nil
	}
}

func (a *Accumulator) applyBuy(buy model.BoughtEventData) error {
	payment, err := parseBigInt(buy.Payment)
	if err != nil {
		return fmt.Errorf("bought payment: %w", err)
	}
	units, err := parseBigInt(buy.UnitsOut)
	if err != nil {
		return fmt.Errorf("bought units: %w", err)
	}
	fee, err := parseBigInt(buy.Fee)
	if err != nil {
		return fmt.Errorf("bought fee: %w", err)
	}

	a.SettlementIn.Add(a.SettlementIn, payment)
	a.UnitsBought.Add(a.UnitsBought, units)
	a.Fees.Add(a.Fees, fee)
	a.BuyCount++
	return nil
}

func (a *Accumulator) applySell(sell model.SoldEventData) error {
	units, err := parseBigInt(sell.UnitsIn)
	if err != nil {
		return fmt.Errorf("sold units: %w", err)
	}
	net, err := parseBigInt(sell.Net)
	if err != nil {
		return fmt.Errorf("sold net: %w", err)
	}
	fee, err := parseBigInt(sell.Fee)
	if err != nil {
		return fmt.Errorf("sold fee: %w", err)
	}

	a.SettlementOut.Add(a.SettlementOut, net)
	a.UnitsSold.Add(a.UnitsSold, units)
	a.Fees.Add(a.Fees, fee)
	a.SellCount++
	return nil
}

// Volume is the settlement paid in by buys plus the settlement paid out by sells.
func (a *Accumulator) Volume() *big.Int {
	return new(big.Int).Add(a.SettlementIn, a.SettlementOut)
}

func parseBigInt(value string) (*big.Int, error) {
	if value == "" {
		return big.NewInt(0), nil
	}
	parsed, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return nil, fmt.Errorf("invalid int: %s", value)
	}
	return parsed, nil
}
