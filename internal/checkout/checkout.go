// Package checkout builds Beem checkout redirects and registers the domains
// allowed to embed the checkout page.
package checkout

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/beemafrica/beem-go/internal/apiclient"
	"github.com/beemafrica/beem-go/internal/apierr"
	"github.com/beemafrica/beem-go/internal/payload"
	"github.com/beemafrica/beem-go/internal/phone"
	"github.com/beemafrica/beem-go/internal/transactions"
)

const (
	checkoutPath  = "/v1/checkout"
	whitelistPath = "/v1/whitelist/add-to-list"
)

// Request describes one payment. TransactionID is generated when empty.
type Request struct {
	Amount          decimal.Decimal
	TransactionID   string
	ReferenceNumber string
	Mobile          string
	UserID          string // stored with the pending transaction, never sent
}

func (r Request) Validate() error {
	if !r.Amount.IsPositive() {
		return apierr.Invalidf("amount must be positive")
	}
	if strings.TrimSpace(r.TransactionID) == "" {
		return apierr.Invalidf("transaction id is required")
	}
	if strings.TrimSpace(r.ReferenceNumber) == "" {
		return apierr.Invalidf("reference number is required")
	}
	return nil
}

// Query is the checkout query string. sendSource asks Beem to return the
// page source rather than redirect.
func (r Request) Query() url.Values {
	q := url.Values{}
	q.Set("amount", r.Amount.String())
	q.Set("transaction_id", r.TransactionID)
	q.Set("reference_number", r.ReferenceNumber)
	if r.Mobile != "" {
		q.Set("mobile", r.Mobile)
	}
	q.Set("sendSource", "true")
	return q
}

// Redirect is where to send the payer. The checkout page needs the
// Authorization header, which carries the account credentials; it never
// leaves the process as JSON and must only be sent from the server side.
type Redirect struct {
	URL           string `json:"url"`
	Authorization string `json:"-"`
	TransactionID string `json:"transactionId"`
}

// WhitelistResult is the reply to WhitelistDomain.
type WhitelistResult struct {
	Code    int
	Message string
}

func WhitelistResultFromMap(m map[string]any) WhitelistResult {
	d := payload.Data(m)
	msg := payload.String(d, "message")
	if msg == "" {
		msg = payload.String(m, "message")
	}
	return WhitelistResult{Code: payload.Int(d, "code"), Message: msg}
}

// Config holds checkout settings.
type Config struct {
	Region string
}

// Service is the Beem checkout API. Store may be nil, in which case Begin
// does not record anything.
type Service struct {
	api    *apiclient.Client
	store  transactions.Store
	cfg    Config
	logger *slog.Logger
}

func NewService(api *apiclient.Client, store transactions.Store, cfg Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{api: api, store: store, cfg: cfg, logger: logger}
}

func (s *Service) prepare(req Request) (Request, error) {
	if req.TransactionID == "" {
		req.TransactionID = uuid.NewString()
	}
	if err := req.Validate(); err != nil {
		return req, err
	}
	if req.Mobile != "" {
		m, err := phone.NormalizeMSISDN(req.Mobile, s.cfg.Region)
		if err != nil {
			return req, apierr.Invalidf("mobile %q: %v", req.Mobile, err)
		}
		req.Mobile = m
	}
	return req, nil
}

// RedirectURL builds the checkout redirect without calling Beem.
func (s *Service) RedirectURL(req Request) (*Redirect, error) {
	req, err := s.prepare(req)
	if err != nil {
		return nil, err
	}
	return s.redirect(req), nil
}

func (s *Service) redirect(req Request) *Redirect {
	r := &Redirect{
		URL:           s.api.URL(checkoutPath, req.Query()),
		TransactionID: req.TransactionID,
	}
	if c, ok := s.api.Auth().(apiclient.Credentials); ok {
		r.Authorization = c.AuthorizationHeader()
	}
	return r
}

// Begin records req as a pending transaction and returns its redirect.
func (s *Service) Begin(ctx context.Context, req Request) (*Redirect, error) {
	req, err := s.prepare(req)
	if err != nil {
		return nil, err
	}
	r := s.redirect(req)
	if s.store == nil {
		return r, nil
	}
	tx := &transactions.Transaction{
		TransactionID:   req.TransactionID,
		ReferenceNumber: req.ReferenceNumber,
		Amount:          req.Amount,
		Status:          transactions.StatusPending,
		MSISDN:          req.Mobile,
	}
	if req.UserID != "" {
		u := req.UserID
		tx.UserID = &u
	}
	if err := s.store.Create(ctx, tx); err != nil {
		return nil, fmt.Errorf("recording checkout: %w", err)
	}
	s.logger.Info("checkout started", "transaction_id", req.TransactionID, "reference", req.ReferenceNumber)
	return r, nil
}

// WhitelistDomain allows website to embed the checkout page.
func (s *Service) WhitelistDomain(ctx context.Context, website string) (*WhitelistResult, error) {
	website = strings.TrimSpace(website)
	if website == "" {
		return nil, apierr.Invalidf("website is required")
	}
	resp, err := s.api.Post(ctx, whitelistPath, map[string]any{"website": website})
	if err != nil {
		return nil, err
	}
	m, err := resp.Expect(apierr.Checkout)
	if err != nil {
		return nil, err
	}
	result := WhitelistResultFromMap(m)
	return &result, nil
}
