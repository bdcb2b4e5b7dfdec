package postgres

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"poolLedger/internal/model"
	"poolLedger/internal/storage"
)

// Options controls connection behavior.
type Options struct {
	MaxRetries   int
	RetryBackoff time.Duration
	Logger       *zap.Logger
}

// Store provides Postgres persistence for the pool.
type Store struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewStore connects, pings with retry and ensures the schema exists.
func NewStore(ctx context.Context, dsn string, opts Options) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}

	retry := newRetryPolicy(opts.MaxRetries, opts.RetryBackoff, logger)
	if err := retry.do(ctx, "ping", pool.Ping); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &Store{pool: pool, logger: logger}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Load returns the persisted pool record and every balance.
func (s *Store) Load(ctx context.Context) (storage.Snapshot, bool, error) {
	var (
		rec                                                model.PoolRecord
		address, owner                                     string
		state, decimals                                    int16
		feeRate                                            int32
		price, minBuy, collectedFee, holdings, totalSupply string
		sequence                                           int64
	)
	row := s.pool.QueryRow(ctx, `
		SELECT address, owner, state, price::text, fee_rate_bps, min_buy::text,
			collected_fee::text, holdings::text, total_supply::text, decimals, sequence
		FROM pool_state WHERE id = 1
	`)
	if err := row.Scan(&address, &owner, &state, &price, &feeRate, &minBuy, &collectedFee, &holdings, &totalSupply, &decimals, &sequence); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return storage.Snapshot{}, false, nil
		}
		return storage.Snapshot{}, false, err
	}

	rec.Address = common.HexToAddress(address)
	rec.Owner = common.HexToAddress(owner)
	rec.State = model.State(state)
	rec.FeeRateBps = uint16(feeRate)
	rec.Decimals = uint8(decimals)
	rec.Sequence = uint64(sequence)
	var err error
	if rec.Price, err = parseNumeric(price); err != nil {
		return storage.Snapshot{}, false, err
	}
	if rec.MinBuy, err = parseNumeric(minBuy); err != nil {
		return storage.Snapshot{}, false, err
	}
	if rec.CollectedFee, err = parseNumeric(collectedFee); err != nil {
		return storage.Snapshot{}, false, err
	}
	if rec.Holdings, err = parseNumeric(holdings); err != nil {
		return storage.Snapshot{}, false, err
	}
	if rec.TotalSupply, err = parseNumeric(totalSupply); err != nil {
		return storage.Snapshot{}, false, err
	}

	rows, err := s.pool.Query(ctx, `SELECT account, balance::text FROM pool_balances WHERE balance > 0`)
	if err != nil {
		return storage.Snapshot{}, false, err
	}
	defer rows.Close()

	balances := make(map[common.Address]*big.Int)
	for rows.Next() {
		var account, balance string
		if err := rows.Scan(&account, &balance); err != nil {
			return storage.Snapshot{}, false, err
		}
		bal, err := parseNumeric(balance)
		if err != nil {
			return storage.Snapshot{}, false, err
		}
		balances[common.HexToAddress(account)] = bal
	}
	if err := rows.Err(); err != nil {
		return storage.Snapshot{}, false, err
	}

	return storage.Snapshot{Pool: rec, Balances: balances}, true, nil
}

// Commit writes the changeset in a single transaction.
func (s *Store) Commit(ctx context.Context, changes model.Changeset) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	p := changes.Pool
	_, err = tx.Exec(ctx, `
		INSERT INTO pool_state (
			id, address, owner, state, price, fee_rate_bps, min_buy, collected_fee, holdings, total_supply, decimals, sequence, updated_at
		) VALUES (1, $1, $2, $3, $4::numeric, $5, $6::numeric, $7::numeric, $8::numeric, $9::numeric, $10, $11, now())
		ON CONFLICT (id) DO UPDATE SET
			owner = EXCLUDED.owner,
			state = EXCLUDED.state,
			collected_fee = EXCLUDED.collected_fee,
			holdings = EXCLUDED.holdings,
			sequence = EXCLUDED.sequence,
			updated_at = now()
	`,
		p.Address.Hex(),
		p.Owner.Hex(),
		int16(p.State),
		numeric(p.Price),
		int32(p.FeeRateBps),
		numeric(p.MinBuy),
		numeric(p.CollectedFee),
		numeric(p.Holdings),
		numeric(p.TotalSupply),
		int16(p.Decimals),
		int64(p.Sequence),
	)
	if err != nil {
		return fmt.Errorf("upsert pool: %w", err)
	}

	batch := &pgx.Batch{}
	if changes.Revoke != "" {
		batch.Queue(`DELETE FROM pool_events WHERE call_id = $1`, changes.Revoke)
	}
	for account, bal := range changes.Balances {
		batch.Queue(`
			INSERT INTO pool_balances (account, balance, updated_at)
			VALUES ($1, $2::numeric, now())
			ON CONFLICT (account) DO UPDATE
			SET balance = EXCLUDED.balance, updated_at = now()
		`, account.Hex(), numeric(bal))
	}
	for _, ev := range changes.Events {
		batch.Queue(`
			INSERT INTO pool_events (call_id, log_index, sequence, address, topics, data, ts)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, ev.CallID, int64(ev.LogIndex), int64(ev.Sequence), ev.Address, ev.Topics, ev.Data, int64(ev.Timestamp))
	}

	if batch.Len() > 0 {
		br := tx.SendBatch(ctx, batch)
		for i := 0; i < batch.Len(); i++ {
			if _, err := br.Exec(); err != nil {
				br.Close()
				return fmt.Errorf("write batch: %w", err)
			}
		}
		if err := br.Close(); err != nil {
			return fmt.Errorf("close batch: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Events returns every persisted event ordered by sequence.
func (s *Store) Events(ctx context.Context) ([]model.LogRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT call_id, log_index, sequence, address, topics, data, ts
		FROM pool_events ORDER BY sequence, log_index
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.LogRecord
	for rows.Next() {
		var rec model.LogRecord
		var logIndex, seq, ts int64
		if err := rows.Scan(&rec.CallID, &logIndex, &seq, &rec.Address, &rec.Topics, &rec.Data, &ts); err != nil {
			return nil, err
		}
		rec.LogIndex = uint64(logIndex)
		rec.Sequence = uint64(seq)
		rec.Timestamp = uint64(ts)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func numeric(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func parseNumeric(value string) (*big.Int, error) {
	parsed, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return nil, fmt.Errorf("invalid numeric: %s", value)
	}
	return parsed, nil
}
