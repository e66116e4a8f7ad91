package sms

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/beemafrica/beem-go/internal/apiclient"
	"github.com/beemafrica/beem-go/internal/apierr"
	"github.com/beemafrica/beem-go/internal/payload"
	"github.com/beemafrica/beem-go/internal/phone"
)

const (
	intlSendPath    = "/api/sms/send"
	intlBalancePath = "/api/sms/balance"
)

// InternationalSendRequest sends one message to one non-local number.
type InternationalSendRequest struct {
	From string
	To   string
	Text string
}

func (r InternationalSendRequest) Validate() error {
	if strings.TrimSpace(r.From) == "" {
		return apierr.Invalidf("sender is required")
	}
	if strings.TrimSpace(r.To) == "" {
		return apierr.Invalidf("recipient is required")
	}
	if strings.TrimSpace(r.Text) == "" {
		return apierr.Invalidf("text is required")
	}
	return nil
}

func (r InternationalSendRequest) Payload() map[string]any {
	return map[string]any{"from": r.From, "to": r.To, "text": r.Text}
}

// InternationalSendResult is the reply to an international send.
type InternationalSendResult struct {
	MessageID string
	Status    string
	Message   string
	Parts     int
}

func InternationalSendResultFromMap(m map[string]any) InternationalSendResult {
	d := payload.Data(m)
	return InternationalSendResult{
		MessageID: payload.String(d, "message_id"),
		Status:    payload.String(d, "status"),
		Message:   payload.String(m, "message"),
		Parts:     payload.Int(d, "parts"),
	}
}

// InternationalBalance is the international SMS account balance.
type InternationalBalance struct {
	Balance  decimal.Decimal
	Currency string
}

func InternationalBalanceFromMap(m map[string]any) InternationalBalance {
	d := payload.Data(m)
	return InternationalBalance{
		Balance:  payload.Decimal(d, "balance"),
		Currency: payload.String(d, "currency"),
	}
}

// InternationalService is the Beem international SMS API.
type InternationalService struct {
	api *apiclient.Client
	cfg Config
}

func NewInternationalService(api *apiclient.Client, cfg Config) *InternationalService {
	return &InternationalService{api: api, cfg: cfg}
}

// Send delivers one message. From defaults to Config.DefaultSenderID.
func (s *InternationalService) Send(ctx context.Context, req InternationalSendRequest) (*InternationalSendResult, error) {
	if req.From == "" {
		req.From = s.cfg.DefaultSenderID
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	to, err := phone.NormalizeMSISDN(req.To, s.cfg.Region)
	if err != nil {
		return nil, apierr.Invalidf("recipient %q: %v", req.To, err)
	}
	req.To = to

	resp, err := s.api.Post(ctx, intlSendPath, req.Payload())
	if err != nil {
		return nil, err
	}
	m, err := resp.Expect(apierr.InternationalSMS)
	if err != nil {
		return nil, err
	}
	result := InternationalSendResultFromMap(m)
	return &result, nil
}

// Balance returns the international SMS balance.
func (s *InternationalService) Balance(ctx context.Context) (*InternationalBalance, error) {
	resp, err := s.api.Get(ctx, intlBalancePath, nil)
	if err != nil {
		return nil, err
	}
	m, err := resp.Expect(apierr.InternationalSMS)
	if err != nil {
		return nil, err
	}
	b := InternationalBalanceFromMap(m)
	return &b, nil
}
