// Package disbursement sends money from a Beem account to a mobile wallet.
package disbursement

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/beemafrica/beem-go/internal/apiclient"
	"github.com/beemafrica/beem-go/internal/apierr"
	"github.com/beemafrica/beem-go/internal/payload"
	"github.com/beemafrica/beem-go/internal/phone"
)

const transferPath = "/webservices/disbursement/transfer"

// DefaultCurrency is used when a request leaves Currency empty.
const DefaultCurrency = "TZS"

// Request pays Amount into WalletNumber on the wallet identified by
// WalletCode (e.g. "MPESA"), debiting AccountNo.
type Request struct {
	Amount            decimal.Decimal
	WalletNumber      string
	WalletCode        string
	AccountNo         string
	ClientReferenceID string // generated when empty
	Currency          string
}

func (r Request) Validate() error {
	switch {
	case !r.Amount.IsPositive():
		return apierr.Invalidf("amount must be positive")
	case strings.TrimSpace(r.WalletNumber) == "":
		return apierr.Invalidf("wallet number is required")
	case strings.TrimSpace(r.WalletCode) == "":
		return apierr.Invalidf("wallet code is required")
	case strings.TrimSpace(r.AccountNo) == "":
		return apierr.Invalidf("source account is required")
	case strings.TrimSpace(r.ClientReferenceID) == "":
		return apierr.Invalidf("client reference is required")
	case strings.TrimSpace(r.Currency) == "":
		return apierr.Invalidf("currency is required")
	}
	return nil
}

func (r Request) Payload() map[string]any {
	return map[string]any{
		"amount":           json.Number(r.Amount.String()),
		"client_reference": r.ClientReferenceID,
		"currency":         r.Currency,
		"dest_account":     r.WalletNumber,
		"source_account":   r.AccountNo,
		"wallet_code":      r.WalletCode,
	}
}

// Result is the reply to Transfer.
type Result struct {
	Code            int
	TransactionID   string
	ClientReference string
	Message         string
}

func ResultFromMap(m map[string]any) Result {
	d := payload.Data(m)
	msg := payload.String(d, "message")
	if msg == "" {
		msg = payload.String(m, "message")
	}
	return Result{
		Code:            payload.Int(d, "code"),
		TransactionID:   payload.String(d, "transaction_id"),
		ClientReference: payload.String(d, "client_reference"),
		Message:         msg,
	}
}

// Config holds disbursement defaults.
type Config struct {
	SourceAccount string // used when Request.AccountNo is empty
	Currency      string
	Region        string
}

type Service struct {
	api *apiclient.Client
	cfg Config
}

func NewService(api *apiclient.Client, cfg Config) *Service {
	return &Service{api: api, cfg: cfg}
}

func (s *Service) Transfer(ctx context.Context, req Request) (*Result, error) {
	if req.ClientReferenceID == "" {
		req.ClientReferenceID = uuid.NewString()
	}
	if req.AccountNo == "" {
		req.AccountNo = s.cfg.SourceAccount
	}
	if req.Currency == "" {
		req.Currency = s.cfg.Currency
	}
	if req.Currency == "" {
		req.Currency = DefaultCurrency
	}
	req.WalletCode = strings.ToUpper(strings.TrimSpace(req.WalletCode))
	if err := req.Validate(); err != nil {
		return nil, err
	}
	wallet, err := phone.NormalizeMSISDN(req.WalletNumber, s.cfg.Region)
	if err != nil {
		return nil, apierr.Invalidf("wallet number %q: %v", req.WalletNumber, err)
	}
	req.WalletNumber = wallet

	resp, err := s.api.Post(ctx, transferPath, req.Payload())
	if err != nil {
		return nil, err
	}
	m, err := resp.Expect(apierr.Disbursement)
	if err != nil {
		return nil, err
	}
	result := ResultFromMap(m)
	if result.ClientReference == "" {
		result.ClientReference = req.ClientReferenceID
	}
	return &result, nil
}
