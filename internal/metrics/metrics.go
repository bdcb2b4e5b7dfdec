// Package metrics exposes pool activity as Prometheus collectors.
package metrics

import (
	"math/big"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"poolLedger/internal/model"
)

const namespace = "pool"

// PoolMetrics implements the engine observer.
type PoolMetrics struct {
	calls        *prometheus.CounterVec
	trades       *prometheus.CounterVec
	tradeVolume  *prometheus.CounterVec
	tradeUnits   *prometheus.CounterVec
	feesAccrued  prometheus.Counter
	state        prometheus.Gauge
	collectedFee prometheus.Gauge
	holdings     prometheus.Gauge
	sequence     prometheus.Gauge

	mu       sync.RWMutex
	decimals uint8
}

// New builds the collectors and registers them with reg. A nil reg leaves them
// unregistered.
func New(reg prometheus.Registerer) *PoolMetrics {
	m := &PoolMetrics{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calls_total",
			Help:      "Engine calls by operation and result.",
		}, []string{"op", "result"}),
		trades: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trades_total",
			Help:      "Settled trades by side.",
		}, []string{"side"}),
		tradeVolume: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trade_settlement_volume",
			Help:      "Settlement amount paid in by buys and out by sells, in whole units.",
		}, []string{"side"}),
		tradeUnits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trade_units",
			Help:      "Units moved by trades, in whole units.",
		}, []string{"side"}),
		feesAccrued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fees_accrued",
			Help:      "Fees added to the treasury, in whole settlement units.",
		}),
		state: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "state",
			Help:      "Lifecycle state (0 created, 1 active, 2 paused).",
		}),
		collectedFee: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "collected_fee",
			Help:      "Fee balance awaiting withdrawal.",
		}),
		holdings: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "settlement_holdings",
			Help:      "Settlement asset held by the pool, fee included.",
		}),
		sequence: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sequence",
			Help:      "Sequence number of the last committed call.",
		}),
		decimals: 18,
	}
	if reg != nil {
		reg.MustRegister(
			m.calls,
			m.trades,
			m.tradeVolume,
			m.tradeUnits,
			m.feesAccrued,
			m.state,
			m.collectedFee,
			m.holdings,
			m.sequence,
		)
	}
	return m
}

func (m *PoolMetrics) ObserveCall(op, result string) {
	if m == nil {
		return
	}
	if result == "" {
		result = "unknown"
	}
	m.calls.WithLabelValues(op, result).Inc()
}

func (m *PoolMetrics) ObserveTrade(side string, settlementAmount, units, feeAmount *big.Int) {
	if m == nil {
		return
	}
	dec := m.scale()
	m.trades.WithLabelValues(side).Inc()
	m.tradeVolume.WithLabelValues(side).Add(toFloat(settlementAmount, dec))
	m.tradeUnits.WithLabelValues(side).Add(toFloat(units, dec))
	m.feesAccrued.Add(toFloat(feeAmount, dec))
}

func (m *PoolMetrics) ObservePool(rec model.PoolRecord) {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.decimals = rec.Decimals
	m.mu.Unlock()

	m.state.Set(float64(rec.State))
	m.collectedFee.Set(toFloat(rec.CollectedFee, rec.Decimals))
	m.holdings.Set(toFloat(rec.Holdings, rec.Decimals))
	m.sequence.Set(float64(rec.Sequence))
}

func (m *PoolMetrics) scale() uint8 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.decimals
}

func toFloat(v *big.Int, decimals uint8) float64 {
	if v == nil || v.Sign() <= 0 {
		return 0
	}
	return decimal.NewFromBigInt(v, -int32(decimals)).InexactFloat64()
}
