package transactions

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const schema = `
CREATE TABLE IF NOT EXISTS beem_transactions (
	id               UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	transaction_id   TEXT NOT NULL UNIQUE,
	reference_number TEXT NOT NULL DEFAULT '',
	amount           NUMERIC(18, 2) NOT NULL DEFAULT 0,
	status           TEXT NOT NULL DEFAULT 'pending'
	                 CHECK (status IN ('pending', 'success', 'failed')),
	msisdn           TEXT NOT NULL DEFAULT '',
	processed_at     TIMESTAMPTZ,
	raw_payload      JSONB,
	user_id          TEXT,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS beem_transactions_reference_idx ON beem_transactions (reference_number);
CREATE INDEX IF NOT EXISTS beem_transactions_status_idx ON beem_transactions (status, created_at DESC);
`

// Migrate creates the beem_transactions table if it does not exist.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrating beem_transactions: %w", err)
	}
	return nil
}

// PGStore is the Postgres Store.
type PGStore struct {
	pool *pgxpool.Pool
}

func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

var _ Store = (*PGStore)(nil)

const columns = "id, transaction_id, reference_number, amount::text, status, msisdn, processed_at, raw_payload::text, user_id, created_at, updated_at"

func scanTransaction(row pgx.Row) (*Transaction, error) {
	var (
		t      Transaction
		amount string
		status string
		raw    *string
	)
	err := row.Scan(&t.ID, &t.TransactionID, &t.ReferenceNumber, &amount, &status, &t.MSISDN,
		&t.ProcessedAt, &raw, &t.UserID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if t.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("parsing amount %q: %w", amount, err)
	}
	t.Status = Status(status)
	if raw != nil {
		t.RawPayload = []byte(*raw)
	}
	return &t, nil
}

// rawArg passes the payload as text so Postgres casts it to jsonb.
func rawArg(t *Transaction) *string {
	if len(t.RawPayload) == 0 {
		return nil
	}
	s := string(t.RawPayload)
	return &s
}

func statusOrPending(s Status) string {
	if s == "" {
		return string(StatusPending)
	}
	return string(s)
}

func (s *PGStore) Create(ctx context.Context, t *Transaction) error {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO beem_transactions
		   (transaction_id, reference_number, amount, status, msisdn, processed_at, raw_payload, user_id)
		 VALUES ($1, $2, $3::numeric, $4, $5, $6, $7::jsonb, $8)
		 RETURNING id, status, created_at, updated_at`,
		t.TransactionID, t.ReferenceNumber, t.Amount.String(), statusOrPending(t.Status),
		t.MSISDN, t.ProcessedAt, rawArg(t), t.UserID,
	)
	var status string
	if err := row.Scan(&t.ID, &status, &t.CreatedAt, &t.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("creating transaction %s: %w", t.TransactionID, ErrExists)
		}
		return fmt.Errorf("creating transaction %s: %w", t.TransactionID, err)
	}
	t.Status = Status(status)
	return nil
}

// UpsertByTransactionID keeps the stored reference, amount, msisdn, payload
// and user_id when the incoming row leaves them empty, so a sparse callback
// does not erase what Begin recorded.
func (s *PGStore) UpsertByTransactionID(ctx context.Context, t *Transaction) error {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO beem_transactions
		   (transaction_id, reference_number, amount, status, msisdn, processed_at, raw_payload, user_id)
		 VALUES ($1, $2, $3::numeric, $4, $5, $6, $7::jsonb, $8)
		 ON CONFLICT (transaction_id) DO UPDATE SET
		   reference_number = COALESCE(NULLIF(EXCLUDED.reference_number, ''), beem_transactions.reference_number),
		   amount           = COALESCE(NULLIF(EXCLUDED.amount, 0), beem_transactions.amount),
		   status           = EXCLUDED.status,
		   msisdn           = COALESCE(NULLIF(EXCLUDED.msisdn, ''), beem_transactions.msisdn),
		   processed_at     = EXCLUDED.processed_at,
		   raw_payload      = COALESCE(EXCLUDED.raw_payload, beem_transactions.raw_payload),
		   user_id          = COALESCE(EXCLUDED.user_id, beem_transactions.user_id),
		   updated_at       = NOW()
		 RETURNING id, reference_number, amount::text, status, msisdn, user_id, created_at, updated_at`,
		t.TransactionID, t.ReferenceNumber, t.Amount.String(), statusOrPending(t.Status),
		t.MSISDN, t.ProcessedAt, rawArg(t), t.UserID,
	)
	var status, amount string
	if err := row.Scan(&t.ID, &t.ReferenceNumber, &amount, &status, &t.MSISDN, &t.UserID, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return fmt.Errorf("upserting transaction %s: %w", t.TransactionID, err)
	}
	var err error
	if t.Amount, err = decimal.NewFromString(amount); err != nil {
		return fmt.Errorf("parsing amount %q: %w", amount, err)
	}
	t.Status = Status(status)
	return nil
}

func (s *PGStore) FindByTransactionID(ctx context.Context, transactionID string) (*Transaction, error) {
	row := s.pool.QueryRow(ctx, "SELECT "+columns+" FROM beem_transactions WHERE transaction_id = $1", transactionID)
	return scanTransaction(row)
}

// FindByReference returns the most recent transaction with the reference.
func (s *PGStore) FindByReference(ctx context.Context, reference string) (*Transaction, error) {
	row := s.pool.QueryRow(ctx,
		"SELECT "+columns+" FROM beem_transactions WHERE reference_number = $1 ORDER BY created_at DESC LIMIT 1",
		reference)
	return scanTransaction(row)
}

// ListByStatus returns up to limit transactions, newest first. limit <= 0
// means 100.
func (s *PGStore) ListByStatus(ctx context.Context, status Status, limit int) ([]Transaction, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx,
		"SELECT "+columns+" FROM beem_transactions WHERE status = $1 ORDER BY created_at DESC LIMIT $2",
		string(status), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *t)
	}
	return result, rows.Err()
}
