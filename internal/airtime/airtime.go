// Package airtime is the Beem airtime top-up API.
package airtime

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/beemafrica/beem-go/internal/apiclient"
	"github.com/beemafrica/beem-go/internal/apierr"
	"github.com/beemafrica/beem-go/internal/payload"
	"github.com/beemafrica/beem-go/internal/phone"
)

const (
	transferPath = "/v1/transfer"
	statusPath   = "/v1/transaction-status"
	balancePath  = "/v1/credit-balance"
)

// TransferRequest tops up DestAddr. ReferenceID is generated when empty.
type TransferRequest struct {
	DestAddr    string
	Amount      decimal.Decimal
	ReferenceID string
}

func (r TransferRequest) Validate() error {
	if strings.TrimSpace(r.DestAddr) == "" {
		return apierr.Invalidf("destination number is required")
	}
	if !r.Amount.IsPositive() {
		return apierr.Invalidf("amount must be positive")
	}
	if strings.TrimSpace(r.ReferenceID) == "" {
		return apierr.Invalidf("reference id is required")
	}
	return nil
}

func (r TransferRequest) Payload() map[string]any {
	return map[string]any{
		"dest_addr":    r.DestAddr,
		"amount":       json.Number(r.Amount.String()),
		"reference_id": r.ReferenceID,
	}
}

// TransferResult is the reply to Transfer and Status.
type TransferResult struct {
	Code          int
	TransactionID string
	ReferenceID   string
	Amount        decimal.Decimal
	DestAddr      string
	Status        string
	Message       string
}

func TransferResultFromMap(m map[string]any) TransferResult {
	d := payload.Data(m)
	msg := payload.String(d, "message")
	if msg == "" {
		msg = payload.String(m, "message")
	}
	return TransferResult{
		Code:          payload.Int(d, "code"),
		TransactionID: payload.String(d, "transaction_id"),
		ReferenceID:   payload.String(d, "reference_id"),
		Amount:        payload.Decimal(d, "amount"),
		DestAddr:      payload.String(d, "dest_addr"),
		Status:        payload.String(d, "status"),
		Message:       msg,
	}
}

// Balance is the airtime credit balance.
type Balance struct {
	CreditBalance decimal.Decimal
}

func BalanceFromMap(m map[string]any) Balance {
	return Balance{CreditBalance: payload.Decimal(payload.Data(m), "credit_bal")}
}

// Config holds airtime settings.
type Config struct {
	Region string
}

// Service is the Beem airtime API. Transfers go to api, balance checks to
// the shared top-up host.
type Service struct {
	api   *apiclient.Client
	topup *apiclient.Client
	cfg   Config
}

// NewService creates a Service. A nil topup client sends balance checks to
// api.
func NewService(api, topup *apiclient.Client, cfg Config) *Service {
	if topup == nil {
		topup = api
	}
	return &Service{api: api, topup: topup, cfg: cfg}
}

func (s *Service) Transfer(ctx context.Context, req TransferRequest) (*TransferResult, error) {
	if req.ReferenceID == "" {
		req.ReferenceID = uuid.NewString()
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	dest, err := phone.NormalizeMSISDN(req.DestAddr, s.cfg.Region)
	if err != nil {
		return nil, apierr.Invalidf("destination %q: %v", req.DestAddr, err)
	}
	req.DestAddr = dest

	resp, err := s.api.Post(ctx, transferPath, req.Payload())
	if err != nil {
		return nil, err
	}
	m, err := resp.Expect(apierr.Airtime)
	if err != nil {
		return nil, err
	}
	result := TransferResultFromMap(m)
	if result.ReferenceID == "" {
		result.ReferenceID = req.ReferenceID
	}
	return &result, nil
}

// Status looks up a transfer by the transaction id Beem returned.
func (s *Service) Status(ctx context.Context, transactionID string) (*TransferResult, error) {
	if strings.TrimSpace(transactionID) == "" {
		return nil, apierr.Invalidf("transaction id is required")
	}
	resp, err := s.api.Post(ctx, statusPath, map[string]any{"transaction_id": transactionID})
	if err != nil {
		return nil, err
	}
	m, err := resp.Expect(apierr.Airtime)
	if err != nil {
		return nil, err
	}
	result := TransferResultFromMap(m)
	return &result, nil
}

func (s *Service) Balance(ctx context.Context) (*Balance, error) {
	resp, err := s.topup.Get(ctx, balancePath, url.Values{"app_name": {"AIRTIME"}})
	if err != nil {
		return nil, err
	}
	m, err := resp.Expect(apierr.Airtime)
	if err != nil {
		return nil, err
	}
	b := BalanceFromMap(m)
	return &b, nil
}
