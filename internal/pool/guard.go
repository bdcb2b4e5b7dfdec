package pool

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"poolLedger/internal/model"
)

type callKey struct{}

// frame is the scope of one external call. Everything it changed is undone
// when the call fails at any point.
type frame struct {
	id       string
	op       string
	caller   common.Address
	prev     model.PoolRecord
	mark     int
	logs     []model.LogRecord
	interact func(ctx context.Context) error
}

// emit queues an event; it is only published if the call commits.
func (f *frame) emit(record model.LogRecord, err error) error {
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	f.logs = append(f.logs, record)
	return nil
}

// then registers the single outbound interaction of the call. It runs after
// every ledger and treasury effect has been applied and persisted.
func (f *frame) then(fn func(ctx context.Context) error) {
	f.interact = fn
}

// inCall reports whether a call on e is already executing, either because
// ctx was derived from it or because e is inside an outbound transfer.
func (e *Engine) inCall(ctx context.Context) bool {
	if e.entered.Load() {
		return true
	}
	active, ok := ctx.Value(callKey{}).(*Engine)
	return ok && active == e
}

// run executes op as one indivisible call: checks and effects, persistence,
// then the outbound interaction. Any failure restores the pre-call state.
func (e *Engine) run(ctx context.Context, op string, caller common.Address, fn func(ctx context.Context, f *frame) error) error {
	if e.inCall(ctx) {
		e.observe(op, ErrReentrant)
		return fmt.Errorf("%s: %w", op, ErrReentrant)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	f := &frame{
		id:     uuid.NewString(),
		op:     op,
		caller: caller,
		prev:   e.rec.Copy(),
		mark:   e.ledger.Mark(),
	}
	callCtx := context.WithValue(ctx, callKey{}, e)

	if err := fn(callCtx, f); err != nil {
		e.rollback(f)
		return e.reject(f, err)
	}

	e.rec.Sequence++
	now := uint64(e.clock().Unix())
	for i := range f.logs {
		f.logs[i].CallID = f.id
		f.logs[i].Sequence = e.rec.Sequence
		f.logs[i].LogIndex = uint64(i)
		f.logs[i].Timestamp = now
	}
	touched := e.ledger.Touched(f.mark)
	changes := model.Changeset{Pool: e.rec.Copy(), Balances: touched, Events: f.logs}
	if err := e.store.Commit(ctx, changes); err != nil {
		e.rollback(f)
		return e.reject(f, fmt.Errorf("persist: %w", err))
	}

	if f.interact != nil {
		e.entered.Store(true)
		err := f.interact(callCtx)
		e.entered.Store(false)
		if err != nil {
			e.rollback(f)
			e.compensate(ctx, f, touched)
			return e.reject(f, err)
		}
	}

	e.ledger.Discard()
	e.publish(touched)
	if e.journal != nil && len(f.logs) > 0 {
		if err := e.journal.Append(ctx, f.logs); err != nil {
			e.logger.Warn("journal append failed", zap.String("call_id", f.id), zap.Error(err))
		}
	}
	e.observe(op, nil)
	e.logger.Info("call committed",
		zap.String("op", op),
		zap.String("call_id", f.id),
		zap.String("caller", caller.Hex()),
		zap.Uint64("sequence", e.rec.Sequence),
		zap.Int("events", len(f.logs)),
	)
	return nil
}

func (e *Engine) rollback(f *frame) {
	e.rec = f.prev.Copy()
	e.ledger.RevertTo(f.mark)
}

// compensate rewrites the persisted state touched by a call whose interaction
// failed after its effects were already committed.
func (e *Engine) compensate(ctx context.Context, f *frame, touched map[common.Address]*big.Int) {
	restored := make(map[common.Address]*big.Int, len(touched))
	for account := range touched {
		restored[account] = e.ledger.BalanceOf(account)
	}
	if err := e.store.Commit(ctx, model.Changeset{Pool: e.rec.Copy(), Balances: restored, Revoke: f.id}); err != nil {
		e.logger.Error("compensating commit failed",
			zap.String("op", f.op),
			zap.String("call_id", f.id),
			zap.Error(err),
		)
	}
}

func (e *Engine) reject(f *frame, err error) error {
	e.observe(f.op, err)
	e.logger.Debug("call rejected",
		zap.String("op", f.op),
		zap.String("call_id", f.id),
		zap.String("caller", f.caller.Hex()),
		zap.Error(err),
	)
	return fmt.Errorf("%s: %w", f.op, err)
}

func (e *Engine) observe(op string, err error) {
	if e.observer != nil {
		e.observer.ObserveCall(op, ErrorKind(err))
	}
}
