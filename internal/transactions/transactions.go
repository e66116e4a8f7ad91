// Package transactions persists Beem payment transactions, one row per
// transaction id, created pending before a checkout redirect and upserted
// by webhook callbacks.
package transactions

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when no transaction matches a lookup.
	ErrNotFound = errors.New("transaction not found")
	// ErrExists is returned by Create when the transaction id is taken.
	ErrExists = errors.New("transaction already exists")
)

// Status is the lifecycle state of a transaction.
type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// ParseStatus maps the free-form status strings Beem sends to a Status.
// Anything unrecognised is pending.
func ParseStatus(s string) Status {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "success", "successful", "completed", "complete", "paid":
		return StatusSuccess
	case "failed", "failure", "cancelled", "canceled", "rejected":
		return StatusFailed
	default:
		return StatusPending
	}
}

// Transaction is a row from beem_transactions.
type Transaction struct {
	ID              string          `json:"id"`
	TransactionID   string          `json:"transactionId"`
	ReferenceNumber string          `json:"referenceNumber"`
	Amount          decimal.Decimal `json:"amount"`
	Status          Status          `json:"status"`
	MSISDN          string          `json:"msisdn,omitempty"`
	ProcessedAt     *time.Time      `json:"processedAt,omitempty"`
	RawPayload      json.RawMessage `json:"rawPayload,omitempty"`
	UserID          *string         `json:"userId,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// Store is the transaction data access interface.
type Store interface {
	// Create inserts a new transaction. A duplicate transaction id wraps
	// ErrExists.
	Create(ctx context.Context, t *Transaction) error
	// UpsertByTransactionID inserts t or updates the row with the same
	// transaction id, last write wins. An empty reference, msisdn or raw
	// payload, a zero amount or a nil user id keeps the stored value.
	UpsertByTransactionID(ctx context.Context, t *Transaction) error
	FindByTransactionID(ctx context.Context, transactionID string) (*Transaction, error)
	FindByReference(ctx context.Context, reference string) (*Transaction, error)
	ListByStatus(ctx context.Context, status Status, limit int) ([]Transaction, error)
}
