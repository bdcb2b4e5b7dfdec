package pool

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"poolLedger/internal/model"
	"poolLedger/internal/storage"
)

// Views read the state of the last committed call. They never block on a call
// in progress, so settlement receivers may use them.

func (e *Engine) view() model.PoolRecord {
	e.viewMu.RLock()
	defer e.viewMu.RUnlock()
	return e.viewRec.Copy()
}

func (e *Engine) BalanceOf(account common.Address) *big.Int {
	e.viewMu.RLock()
	defer e.viewMu.RUnlock()
	if bal, ok := e.viewBalances[account]; ok {
		return new(big.Int).Set(bal)
	}
	return big.NewInt(0)
}

func (e *Engine) Address() common.Address { return e.view().Address }
func (e *Engine) Owner() common.Address { return e.view().Owner }
func (e *Engine) State() model.State { return e.view().State }
func (e *Engine) Price() *big.Int { return e.view().Price }
func (e *Engine) FeeRateBps() uint16 { return e.view().FeeRateBps }
func (e *Engine) MinBuy() *big.Int { return e.view().MinBuy }
func (e *Engine) CollectedFee() *big.Int { return e.view().CollectedFee }
func (e *Engine) Holdings() *big.Int { return e.view().Holdings }
func (e *Engine) TotalSupply() *big.Int { return e.view().TotalSupply }
func (e *Engine) Decimals() uint8 { return e.view().Decimals }

// Reserve returns the units held by the pool itself.
func (e *Engine) Reserve() *big.Int {
	return e.BalanceOf(e.Address())
}

// Liquidity returns the settlement holdings available to pay out sells.
func (e *Engine) Liquidity() *big.Int {
	rec := e.view()
	return rec.Liquidity()
}

// Snapshot returns the full committed state.
func (e *Engine) Snapshot() storage.Snapshot {
	e.viewMu.RLock()
	defer e.viewMu.RUnlock()
	balances := make(map[common.Address]*big.Int, len(e.viewBalances))
	for account, bal := range e.viewBalances {
		balances[account] = new(big.Int).Set(bal)
	}
	return storage.Snapshot{Pool: e.viewRec.Copy(), Balances: balances}
}
