// Package collection is the Beem payment collection API: the collected
// balance, and the callbacks Beem posts for each payment received.
package collection

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/beemafrica/beem-go/internal/apiclient"
	"github.com/beemafrica/beem-go/internal/apierr"
	"github.com/beemafrica/beem-go/internal/payload"
	"github.com/beemafrica/beem-go/internal/phone"
	"github.com/beemafrica/beem-go/internal/transactions"
)

const balancePath = "/v1/balance"

type Balance struct {
	Balance  decimal.Decimal
	Currency string
}

func BalanceFromMap(m map[string]any) Balance {
	d := payload.Data(m)
	return Balance{
		Balance:  payload.Decimal(d, "balance"),
		Currency: payload.String(d, "currency"),
	}
}

// Callback is one payment notification.
type Callback struct {
	TransactionID    string
	AmountCollected  decimal.Decimal
	SubscriberMSISDN string
	ReferenceNumber  string
	PaybillNumber    string
	Timestamp        string
	NetworkName      string
	SourceCurrency   string
	TargetCurrency   string
}

// ParseCallback maps a decoded callback body. Only transaction_id is
// required.
func ParseCallback(m map[string]any) (*Callback, error) {
	cb := &Callback{
		TransactionID:    strings.TrimSpace(payload.String(m, "transaction_id")),
		AmountCollected:  payload.Decimal(m, "amount_collected"),
		SubscriberMSISDN: payload.String(m, "subscriber_msisdn"),
		ReferenceNumber:  payload.String(m, "reference_number"),
		PaybillNumber:    payload.String(m, "paybill_number"),
		Timestamp:        payload.String(m, "timestamp"),
		NetworkName:      payload.String(m, "network_name"),
		SourceCurrency:   payload.String(m, "source_currency"),
		TargetCurrency:   payload.String(m, "target_currency"),
	}
	if cb.TransactionID == "" {
		return nil, apierr.Invalidf("transaction_id is required")
	}
	return cb, nil
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"20060102150405",
}

// ProcessedAt parses Timestamp, returning nil when it is absent or in an
// unknown layout.
func (c *Callback) ProcessedAt() *time.Time {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, c.Timestamp); err == nil {
			return &t
		}
	}
	return nil
}

// Transaction converts the callback into a successful transaction. A
// collection callback is only sent for money already received.
func (c *Callback) Transaction(raw json.RawMessage, region string) *transactions.Transaction {
	msisdn := c.SubscriberMSISDN
	if n, err := phone.NormalizeMSISDN(msisdn, region); err == nil {
		msisdn = n
	}
	return &transactions.Transaction{
		TransactionID:   c.TransactionID,
		ReferenceNumber: c.ReferenceNumber,
		Amount:          c.AmountCollected,
		Status:          transactions.StatusSuccess,
		MSISDN:          msisdn,
		ProcessedAt:     c.ProcessedAt(),
		RawPayload:      raw,
	}
}

type Service struct {
	api *apiclient.Client
}

func NewService(api *apiclient.Client) *Service {
	return &Service{api: api}
}

func (s *Service) Balance(ctx context.Context) (*Balance, error) {
	resp, err := s.api.Get(ctx, balancePath, nil)
	if err != nil {
		return nil, err
	}
	m, err := resp.Expect(apierr.Collection)
	if err != nil {
		return nil, err
	}
	b := BalanceFromMap(m)
	return &b, nil
}
