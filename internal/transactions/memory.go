package transactions

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store for tests and dry runs.
type MemoryStore struct {
	mu   sync.Mutex
	rows map[string]*Transaction // by transaction id
	now  func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: make(map[string]*Transaction), now: time.Now}
}

var _ Store = (*MemoryStore)(nil)

func clone(t *Transaction) *Transaction {
	c := *t
	c.RawPayload = slices.Clone(t.RawPayload)
	if t.UserID != nil {
		u := *t.UserID
		c.UserID = &u
	}
	if t.ProcessedAt != nil {
		p := *t.ProcessedAt
		c.ProcessedAt = &p
	}
	return &c
}

func (m *MemoryStore) Create(_ context.Context, t *Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[t.TransactionID]; ok {
		return fmt.Errorf("creating transaction %s: %w", t.TransactionID, ErrExists)
	}
	now := m.now()
	t.ID = uuid.NewString()
	if t.Status == "" {
		t.Status = StatusPending
	}
	t.CreatedAt, t.UpdatedAt = now, now
	m.rows[t.TransactionID] = clone(t)
	return nil
}

func (m *MemoryStore) UpsertByTransactionID(_ context.Context, t *Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	if t.Status == "" {
		t.Status = StatusPending
	}
	if existing, ok := m.rows[t.TransactionID]; ok {
		t.ID = existing.ID
		t.CreatedAt = existing.CreatedAt
		if t.ReferenceNumber == "" {
			t.ReferenceNumber = existing.ReferenceNumber
		}
		if t.Amount.IsZero() {
			t.Amount = existing.Amount
		}
		if t.MSISDN == "" {
			t.MSISDN = existing.MSISDN
		}
		if len(t.RawPayload) == 0 {
			t.RawPayload = slices.Clone(existing.RawPayload)
		}
		if t.UserID == nil && existing.UserID != nil {
			u := *existing.UserID
			t.UserID = &u
		}
	} else {
		t.ID = uuid.NewString()
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	m.rows[t.TransactionID] = clone(t)
	return nil
}

func (m *MemoryStore) FindByTransactionID(_ context.Context, transactionID string) (*Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.rows[transactionID]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(t), nil
}

func (m *MemoryStore) FindByReference(_ context.Context, reference string) (*Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var found *Transaction
	for _, t := range m.rows {
		if t.ReferenceNumber == reference && (found == nil || t.CreatedAt.After(found.CreatedAt)) {
			found = t
		}
	}
	if found == nil {
		return nil, ErrNotFound
	}
	return clone(found), nil
}

func (m *MemoryStore) ListByStatus(_ context.Context, status Status, limit int) ([]Transaction, error) {
	if limit <= 0 {
		limit = 100
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	result := []Transaction{}
	for _, t := range m.rows {
		if t.Status == status {
			result = append(result, *clone(t))
		}
	}
	slices.SortFunc(result, func(a, b Transaction) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.TransactionID, b.TransactionID)
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// Len reports how many transactions are stored.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}
