package postgres

const schemaSQL = `
CREATE TABLE IF NOT EXISTS pool_state (
	id            SMALLINT PRIMARY KEY DEFAULT 1 CHECK (id = 1),
	address       TEXT NOT NULL,
	owner         TEXT NOT NULL,
	state         SMALLINT NOT NULL,
	price         NUMERIC(78, 0) NOT NULL CHECK (price > 0),
	fee_rate_bps  INTEGER NOT NULL CHECK (fee_rate_bps BETWEEN 0 AND 10000),
	min_buy       NUMERIC(78, 0) NOT NULL,
	collected_fee NUMERIC(78, 0) NOT NULL,
	holdings      NUMERIC(78, 0) NOT NULL,
	total_supply  NUMERIC(78, 0) NOT NULL,
	decimals      SMALLINT NOT NULL,
	sequence      BIGINT NOT NULL DEFAULT 0,
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	CHECK (collected_fee <= holdings)
);

CREATE TABLE IF NOT EXISTS pool_balances (
	account    TEXT PRIMARY KEY,
	balance    NUMERIC(78, 0) NOT NULL CHECK (balance >= 0),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS pool_events (
	call_id    TEXT NOT NULL,
	log_index  BIGINT NOT NULL,
	sequence   BIGINT NOT NULL,
	address    TEXT NOT NULL,
	topics     TEXT[] NOT NULL,
	data       TEXT NOT NULL,
	ts         BIGINT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (call_id, log_index)
);
`
