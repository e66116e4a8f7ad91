package sms

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/beemafrica/beem-go/internal/apiclient"
	"github.com/beemafrica/beem-go/internal/apierr"
	"github.com/beemafrica/beem-go/internal/payload"
	"github.com/beemafrica/beem-go/internal/phone"
)

const (
	sendPath        = "/v1/send"
	balancePath     = "/public/v1/vendors/balance"
	senderNamesPath = "/public/v1/sender-names"
	templatesPath   = "/public/v1/sms-templates"
	deliveryPath    = "/public/v1/delivery-reports"
)

// Service is the Beem SMS API. Delivery reports live on a separate host and
// use their own client.
type Service struct {
	api      *apiclient.Client
	delivery *apiclient.Client
	cfg      Config
}

// NewService creates a Service. delivery may be nil, in which case
// DeliveryReports uses api.
func NewService(api, delivery *apiclient.Client, cfg Config) *Service {
	if delivery == nil {
		delivery = api
	}
	return &Service{api: api, delivery: delivery, cfg: cfg}
}

// Send submits one message to every recipient. Recipients are normalised
// to MSISDN form; an unparseable number rejects the whole request locally.
func (s *Service) Send(ctx context.Context, req SendRequest) (*SendResult, error) {
	if req.SourceAddr == "" {
		req.SourceAddr = s.cfg.DefaultSenderID
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	normalized := make([]string, len(req.Recipients))
	for i, to := range req.Recipients {
		msisdn, err := phone.NormalizeMSISDN(to, s.cfg.Region)
		if err != nil {
			return nil, apierr.Invalidf("recipient %q: %v", to, err)
		}
		normalized[i] = msisdn
	}
	req.Recipients = normalized

	resp, err := s.api.Post(ctx, sendPath, req.Payload())
	if err != nil {
		return nil, err
	}
	m, err := resp.Expect(apierr.SMS)
	if err != nil {
		return nil, err
	}
	result := SendResultFromMap(m)
	return &result, nil
}

// Balance returns the remaining SMS credit.
func (s *Service) Balance(ctx context.Context) (*Balance, error) {
	resp, err := s.api.Get(ctx, balancePath, nil)
	if err != nil {
		return nil, err
	}
	m, err := resp.Expect(apierr.SMS)
	if err != nil {
		return nil, err
	}
	b := BalanceFromMap(m)
	return &b, nil
}

// SenderNames lists sender ids, optionally filtered by a search term and a
// status ("active", "inactive", "pending").
func (s *Service) SenderNames(ctx context.Context, q, status string) ([]SenderName, error) {
	query := url.Values{}
	if q != "" {
		query.Set("q", q)
	}
	if status != "" {
		query.Set("status", status)
	}
	items, err := s.list(ctx, s.api, senderNamesPath, query)
	if err != nil {
		return nil, err
	}
	out := make([]SenderName, len(items))
	for i, item := range items {
		out[i] = SenderNameFromMap(item)
	}
	return out, nil
}

// RequestSenderName submits a new sender id for approval.
func (s *Service) RequestSenderName(ctx context.Context, req SenderNameRequest) (*SenderName, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	resp, err := s.api.Post(ctx, senderNamesPath, req.Payload())
	if err != nil {
		return nil, err
	}
	m, err := resp.Expect(apierr.SMS)
	if err != nil {
		return nil, err
	}
	sn := SenderNameFromMap(payload.Data(m))
	return &sn, nil
}

// Templates lists saved SMS templates.
func (s *Service) Templates(ctx context.Context) ([]Template, error) {
	items, err := s.list(ctx, s.api, templatesPath, nil)
	if err != nil {
		return nil, err
	}
	out := make([]Template, len(items))
	for i, item := range items {
		out[i] = TemplateFromMap(item)
	}
	return out, nil
}

// CreateTemplate saves a new template.
func (s *Service) CreateTemplate(ctx context.Context, req TemplateRequest) (*Template, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	resp, err := s.api.Post(ctx, templatesPath, req.Payload())
	if err != nil {
		return nil, err
	}
	return templateResult(resp)
}

// UpdateTemplate replaces the template with the given id.
func (s *Service) UpdateTemplate(ctx context.Context, id string, req TemplateRequest) (*Template, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apierr.Invalidf("template id is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	resp, err := s.api.Put(ctx, templatesPath+"/"+url.PathEscape(id), req.Payload())
	if err != nil {
		return nil, err
	}
	return templateResult(resp)
}

// DeleteTemplate removes the template with the given id.
func (s *Service) DeleteTemplate(ctx context.Context, id string) (*Ack, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apierr.Invalidf("template id is required")
	}
	resp, err := s.api.Delete(ctx, templatesPath+"/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	m, err := resp.Expect(apierr.SMS)
	if err != nil {
		return nil, err
	}
	ack := AckFromMap(m)
	return &ack, nil
}

// DeliveryReports returns the delivery state of requestID for destAddr.
func (s *Service) DeliveryReports(ctx context.Context, destAddr, requestID string) ([]DeliveryReport, error) {
	if strings.TrimSpace(destAddr) == "" {
		return nil, apierr.Invalidf("destination address is required")
	}
	if strings.TrimSpace(requestID) == "" {
		return nil, apierr.Invalidf("request id is required")
	}
	query := url.Values{"dest_addr": {destAddr}, "request_id": {requestID}}
	items, err := s.list(ctx, s.delivery, deliveryPath, query)
	if err != nil {
		return nil, err
	}
	out := make([]DeliveryReport, len(items))
	for i, item := range items {
		out[i] = DeliveryReportFromMap(item)
	}
	return out, nil
}

func (s *Service) list(ctx context.Context, c *apiclient.Client, path string, query url.Values) ([]map[string]any, error) {
	resp, err := c.Get(ctx, path, query)
	if err != nil {
		return nil, err
	}
	body, err := resp.ExpectValue(apierr.SMS)
	if err != nil {
		return nil, err
	}
	return payload.UnwrapList(body), nil
}

func templateResult(resp *apiclient.Response) (*Template, error) {
	m, err := resp.Expect(apierr.SMS)
	if err != nil {
		return nil, err
	}
	tpl := TemplateFromMap(payload.Data(m))
	return &tpl, nil
}

// String implements fmt.Stringer for log lines.
func (r SendResult) String() string {
	return fmt.Sprintf("request_id=%s code=%d valid=%d invalid=%d duplicates=%d", r.RequestID, r.Code, r.Valid, r.Invalid, r.Duplicates)
}
