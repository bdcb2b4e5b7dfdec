// Package pool implements the administered fee pool: lifecycle gating, owner
// access control, the fee treasury and the buy/sell trade engine.
//
// Every exported mutating method runs as one indivisible call: the engine
// serializes calls, applies ledger and treasury effects first, persists them,
// and only then performs the single outbound settlement transfer. A failure at
// any step restores the state observed before the call.
package pool

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"

	"poolLedger/internal/events"
	"poolLedger/internal/fee"
	"poolLedger/internal/ledger"
	"poolLedger/internal/model"
	"poolLedger/internal/settlement"
	"poolLedger/internal/storage"
)

const (
	DefaultDecimals         = 18
	DefaultTotalSupplyUnits = 1_000_000
)

// Params configures a new pool.
type Params struct {
	Deployer   common.Address
	Price      *big.Int
	FeeRateBps uint16
	MinBuy     *big.Int
	Decimals   uint8
	// TotalSupply is expressed in whole units.
	TotalSupply *big.Int
	// Address overrides the pool identity. Defaults to the address a contract
	// deployed by Deployer at nonce 0 would get.
	Address common.Address
}

// Observer receives call outcomes, typically for metrics.
type Observer interface {
	ObserveCall(op string, result string)
	ObserveTrade(side string, settlementAmount, units, feeAmount *big.Int)
	ObservePool(rec model.PoolRecord)
}

// Deps are the collaborators of an engine.
type Deps struct {
	Settlement settlement.Transferer
	Store      storage.Store
	Journal    storage.Journal
	Observer   Observer
	Logger     *zap.Logger
	Clock      func() time.Time
}

// Engine is the single pool instance.
type Engine struct {
	mu      sync.Mutex
	entered atomic.Bool
	rec     model.PoolRecord
	ledger  *ledger.Ledger
	encoder *events.Encoder

	viewMu       sync.RWMutex
	viewRec      model.PoolRecord
	viewBalances map[common.Address]*big.Int

	bank     settlement.Transferer
	store    storage.Store
	journal  storage.Journal
	observer Observer
	logger   *zap.Logger
	clock    func() time.Time
}

// Create deploys a new pool: the full supply is minted to the deployer and
// the pool starts in the Created state.
func Create(ctx context.Context, params Params, deps Deps) (*Engine, error) {
	if params.Price == nil || params.Price.Sign() <= 0 {
		return nil, ErrInvalidPrice
	}
	if !fee.ValidRate(params.FeeRateBps) {
		return nil, ErrInvalidFeeRate
	}
	if params.Deployer == (common.Address{}) {
		return nil, fmt.Errorf("deployer: %w", ErrZeroAddress)
	}
	if params.MinBuy != nil && params.MinBuy.Sign() < 0 {
		return nil, fmt.Errorf("min buy: %w", ErrInvalidAmount)
	}

	e, err := newEngine(deps)
	if err != nil {
		return nil, err
	}
	if _, ok, err := e.store.Load(ctx); err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	} else if ok {
		return nil, ErrAlreadyCreated
	}

	decimals := params.Decimals
	if decimals == 0 {
		decimals = DefaultDecimals
	}
	wholeSupply := params.TotalSupply
	if wholeSupply == nil || wholeSupply.Sign() <= 0 {
		wholeSupply = big.NewInt(DefaultTotalSupplyUnits)
	}
	address := params.Address
	if address == (common.Address{}) {
		address = crypto.CreateAddress(params.Deployer, 0)
	}

	e.rec = model.PoolRecord{
		Address:      address,
		Owner:        params.Deployer,
		State:        model.StateCreated,
		Price:        new(big.Int).Set(params.Price),
		FeeRateBps:   params.FeeRateBps,
		MinBuy:       big.NewInt(0),
		CollectedFee: big.NewInt(0),
		Holdings:     big.NewInt(0),
		Decimals:     decimals,
	}
	if params.MinBuy != nil {
		e.rec.MinBuy.Set(params.MinBuy)
	}
	e.rec.TotalSupply = new(big.Int).Mul(wholeSupply, e.rec.Scale())

	if e.encoder, err = events.NewEncoder(address); err != nil {
		return nil, err
	}

	err = e.run(ctx, "create", params.Deployer, func(ctx context.Context, f *frame) error {
		if err := e.ledger.Credit(params.Deployer, e.rec.TotalSupply); err != nil {
			return err
		}
		return f.emit(e.encoder.Created(params.Deployer, e.rec.Price, e.rec.FeeRateBps, e.rec.MinBuy, e.rec.TotalSupply))
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Open restores a previously created pool from its store.
func Open(ctx context.Context, deps Deps) (*Engine, error) {
	e, err := newEngine(deps)
	if err != nil {
		return nil, err
	}
	snap, ok, err := e.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	if !ok {
		return nil, ErrNotCreated
	}

	e.rec = snap.Pool.Copy()
	e.ledger = ledger.Load(snap.Balances)
	if err := checkInvariants(e.rec, e.ledger); err != nil {
		return nil, err
	}
	if e.encoder, err = events.NewEncoder(e.rec.Address); err != nil {
		return nil, err
	}
	e.publish(e.ledger.Balances())
	return e, nil
}

func newEngine(deps Deps) (*Engine, error) {
	if deps.Settlement == nil {
		return nil, fmt.Errorf("settlement transferer is nil")
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	store := deps.Store
	if store == nil {
		store = storage.NewMemoryStore()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Engine{
		ledger:       ledger.New(),
		viewBalances: make(map[common.Address]*big.Int),
		bank:         deps.Settlement,
		store:        store,
		journal:      deps.Journal,
		observer:     deps.Observer,
		logger:       logger,
		clock:        clock,
	}, nil
}

func checkInvariants(rec model.PoolRecord, l *ledger.Ledger) error {
	switch {
	case rec.Price == nil || rec.Price.Sign() <= 0:
		return fmt.Errorf("%w: price %v", ErrCorruptState, rec.Price)
	case !fee.ValidRate(rec.FeeRateBps):
		return fmt.Errorf("%w: fee rate %d", ErrCorruptState, rec.FeeRateBps)
	case !rec.State.Valid():
		return fmt.Errorf("%w: state %d", ErrCorruptState, uint8(rec.State))
	case rec.CollectedFee.Cmp(rec.Holdings) > 0:
		return fmt.Errorf("%w: collected fee %s exceeds holdings %s", ErrCorruptState, rec.CollectedFee, rec.Holdings)
	case l.Total().Cmp(rec.TotalSupply) != 0:
		return fmt.Errorf("%w: balances sum to %s, supply is %s", ErrCorruptState, l.Total(), rec.TotalSupply)
	}
	return nil
}

// publish makes the state of the last committed call visible to readers.
func (e *Engine) publish(touched map[common.Address]*big.Int) {
	e.viewMu.Lock()
	e.viewRec = e.rec.Copy()
	for account, bal := range touched {
		if bal == nil || bal.Sign() == 0 {
			delete(e.viewBalances, account)
			continue
		}
		e.viewBalances[account] = new(big.Int).Set(bal)
	}
	rec := e.viewRec.Copy()
	e.viewMu.Unlock()

	if e.observer != nil {
		e.observer.ObservePool(rec)
	}
}

// onlyOwner gates every administrative operation.
func (e *Engine) onlyOwner(caller common.Address) error {
	if caller != e.rec.Owner {
		return ErrUnauthorized
	}
	return nil
}

// requireActive gates trading on the lifecycle state.
func requireActive(s model.State) error {
	switch s {
	case model.StateActive:
		return nil
	case model.StateCreated, model.StatePaused:
		return ErrInvalidState
	default:
		return fmt.Errorf("%w: %d", ErrUnknownState, uint8(s))
	}
}
