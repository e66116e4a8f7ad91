package transactions_test

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beemafrica/beem-go/internal/transactions"
)

func TestParseStatus(t *testing.T) {
	cases := map[string]transactions.Status{
		"success":    transactions.StatusSuccess,
		"SUCCESSFUL": transactions.StatusSuccess,
		" completed": transactions.StatusSuccess,
		"failed":     transactions.StatusFailed,
		"Failure":    transactions.StatusFailed,
		"cancelled":  transactions.StatusFailed,
		"":           transactions.StatusPending,
		"processing": transactions.StatusPending,
	}
	for in, want := range cases {
		assert.Equal(t, want, transactions.ParseStatus(in), in)
	}
}

func TestMemoryStoreUpsertIsIdempotent(t *testing.T) {
	ctx := t.Context()
	store := transactions.NewMemoryStore()
	user := "user-1"

	require.NoError(t, store.Create(ctx, &transactions.Transaction{
		TransactionID:   "tx-1",
		ReferenceNumber: "REF-1",
		Amount:          decimal.RequireFromString("1000"),
		UserID:          &user,
	}))

	cb := &transactions.Transaction{
		TransactionID:   "tx-1",
		ReferenceNumber: "REF-1",
		Amount:          decimal.RequireFromString("1000.00"),
		Status:          transactions.StatusSuccess,
		MSISDN:          "255712345678",
		RawPayload:      json.RawMessage(`{"transaction_id":"tx-1"}`),
	}
	require.NoError(t, store.UpsertByTransactionID(ctx, cb))
	require.NoError(t, store.UpsertByTransactionID(ctx, cb))
	assert.Equal(t, 1, store.Len())

	got, err := store.FindByTransactionID(ctx, "tx-1")
	require.NoError(t, err)
	assert.Equal(t, transactions.StatusSuccess, got.Status)
	assert.Equal(t, "255712345678", got.MSISDN)
	require.NotNil(t, got.UserID)
	assert.Equal(t, "user-1", *got.UserID)
	assert.True(t, got.Amount.Equal(decimal.NewFromInt(1000)))
}

func TestMemoryStoreLastWriteWins(t *testing.T) {
	ctx := t.Context()
	store := transactions.NewMemoryStore()
	require.NoError(t, store.UpsertByTransactionID(ctx, &transactions.Transaction{TransactionID: "tx", Status: transactions.StatusSuccess}))
	require.NoError(t, store.UpsertByTransactionID(ctx, &transactions.Transaction{TransactionID: "tx", Status: transactions.StatusFailed}))

	got, err := store.FindByTransactionID(ctx, "tx")
	require.NoError(t, err)
	assert.Equal(t, transactions.StatusFailed, got.Status)
}

func TestMemoryStoreCreateRejectsDuplicate(t *testing.T) {
	ctx := t.Context()
	store := transactions.NewMemoryStore()
	tx := &transactions.Transaction{TransactionID: "dup"}
	require.NoError(t, store.Create(ctx, tx))
	assert.Equal(t, transactions.StatusPending, tx.Status)
	assert.NotEmpty(t, tx.ID)
	err := store.Create(ctx, &transactions.Transaction{TransactionID: "dup"})
	assert.ErrorIs(t, err, transactions.ErrExists)
}

func TestMemoryStoreSparseUpsertKeepsRecordedFields(t *testing.T) {
	ctx := t.Context()
	store := transactions.NewMemoryStore()
	require.NoError(t, store.Create(ctx, &transactions.Transaction{
		TransactionID:   "tx-1",
		ReferenceNumber: "ORDER-1",
		Amount:          decimal.RequireFromString("2500"),
		MSISDN:          "255712345678",
	}))

	require.NoError(t, store.UpsertByTransactionID(ctx, &transactions.Transaction{
		TransactionID: "tx-1",
		Status:        transactions.StatusSuccess,
	}))

	got, err := store.FindByTransactionID(ctx, "tx-1")
	require.NoError(t, err)
	assert.Equal(t, transactions.StatusSuccess, got.Status)
	assert.Equal(t, "ORDER-1", got.ReferenceNumber)
	assert.True(t, got.Amount.Equal(decimal.NewFromInt(2500)), got.Amount.String())
	assert.Equal(t, "255712345678", got.MSISDN)
}

func TestMemoryStoreLookups(t *testing.T) {
	ctx := t.Context()
	store := transactions.NewMemoryStore()
	require.NoError(t, store.Create(ctx, &transactions.Transaction{TransactionID: "a", ReferenceNumber: "R1"}))
	require.NoError(t, store.Create(ctx, &transactions.Transaction{TransactionID: "b", ReferenceNumber: "R2", Status: transactions.StatusSuccess}))
	require.NoError(t, store.Create(ctx, &transactions.Transaction{TransactionID: "c", ReferenceNumber: "R3"}))

	got, err := store.FindByReference(ctx, "R2")
	require.NoError(t, err)
	assert.Equal(t, "b", got.TransactionID)

	_, err = store.FindByReference(ctx, "nope")
	assert.ErrorIs(t, err, transactions.ErrNotFound)
	_, err = store.FindByTransactionID(ctx, "nope")
	assert.ErrorIs(t, err, transactions.ErrNotFound)

	pending, err := store.ListByStatus(ctx, transactions.StatusPending, 0)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	one, err := store.ListByStatus(ctx, transactions.StatusPending, 1)
	require.NoError(t, err)
	assert.Len(t, one, 1)

	failed, err := store.ListByStatus(ctx, transactions.StatusFailed, 10)
	require.NoError(t, err)
	assert.NotNil(t, failed)
	assert.Empty(t, failed)
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := t.Context()
	store := transactions.NewMemoryStore()
	require.NoError(t, store.Create(ctx, &transactions.Transaction{TransactionID: "x", MSISDN: "1"}))

	got, err := store.FindByTransactionID(ctx, "x")
	require.NoError(t, err)
	got.MSISDN = "changed"

	again, err := store.FindByTransactionID(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, "1", again.MSISDN)
}
