// Package sms talks to the Beem SMS APIs: bulk send, credit balance, sender
// names, templates, delivery reports and international SMS.
package sms

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/beemafrica/beem-go/internal/apierr"
	"github.com/beemafrica/beem-go/internal/payload"
	"github.com/beemafrica/beem-go/internal/phone"
)

// Config holds SMS defaults.
type Config struct {
	DefaultSenderID string
	Region          string // region for national-format recipients; "" means phone.DefaultRegion
}

// SendRequest is one bulk send.
type SendRequest struct {
	SourceAddr   string   // sender id; Config.DefaultSenderID when empty
	Message      string
	Recipients   []string // MSISDNs
	ScheduleTime string   // "2006-01-02 15:04" GMT+0, empty for immediate
	Encoding     int      // 0 = GSM7
}

// Validate rejects requests with no message, no sender or no recipients.
func (r SendRequest) Validate() error {
	if strings.TrimSpace(r.SourceAddr) == "" {
		return apierr.Invalidf("sender id is required")
	}
	if strings.TrimSpace(r.Message) == "" {
		return apierr.Invalidf("message is required")
	}
	if len(r.Recipients) == 0 {
		return apierr.Invalidf("at least one recipient is required")
	}
	for i, to := range r.Recipients {
		if strings.TrimSpace(to) == "" {
			return apierr.Invalidf("recipient %d is empty", i+1)
		}
	}
	return nil
}

// Payload is the /v1/send body.
func (r SendRequest) Payload() map[string]any {
	recipients := make([]map[string]string, len(r.Recipients))
	for i, to := range r.Recipients {
		recipients[i] = map[string]string{
			"recipient_id": strconv.Itoa(i + 1),
			"dest_addr":    to,
		}
	}
	return map[string]any{
		"source_addr":   r.SourceAddr,
		"schedule_time": r.ScheduleTime,
		"encoding":      r.Encoding,
		"message":       r.Message,
		"recipients":    recipients,
	}
}

// SendResult is the reply to a bulk send.
type SendResult struct {
	Successful bool
	RequestID  string
	Code       int
	Message    string
	Valid      int
	Invalid    int
	Duplicates int
}

func SendResultFromMap(m map[string]any) SendResult {
	return SendResult{
		Successful: payload.Bool(m, "successful"),
		RequestID:  payload.String(m, "request_id"),
		Code:       payload.Int(m, "code"),
		Message:    payload.String(m, "message"),
		Valid:      payload.Int(m, "valid"),
		Invalid:    payload.Int(m, "invalid"),
		Duplicates: payload.Int(m, "duplicates"),
	}
}

// Balance is the vendor SMS credit balance.
type Balance struct {
	CreditBalance decimal.Decimal
}

func BalanceFromMap(m map[string]any) Balance {
	return Balance{CreditBalance: payload.Decimal(payload.Data(m), "credit_balance")}
}

// SenderName is a registered or pending sender id.
type SenderName struct {
	ID            string
	SenderID      string
	SampleContent string
	Status        string
	Created       string
}

func SenderNameFromMap(m map[string]any) SenderName {
	return SenderName{
		ID:            payload.String(m, "id"),
		SenderID:      payload.String(m, "senderid"),
		SampleContent: payload.String(m, "sample_content"),
		Status:        payload.String(m, "status"),
		Created:       payload.String(m, "created"),
	}
}

// SenderNameRequest asks Beem to register a new sender id.
type SenderNameRequest struct {
	SenderID      string
	SampleContent string
}

func (r SenderNameRequest) Validate() error {
	if strings.TrimSpace(r.SenderID) == "" {
		return apierr.Invalidf("sender id is required")
	}
	if strings.TrimSpace(r.SampleContent) == "" {
		return apierr.Invalidf("sample content is required")
	}
	return nil
}

func (r SenderNameRequest) Payload() map[string]any {
	return map[string]any{
		"senderid":       r.SenderID,
		"sample_content": r.SampleContent,
	}
}

// Template is a saved SMS template.
type Template struct {
	ID      string
	Title   string
	Message string
	Created string
}

func TemplateFromMap(m map[string]any) Template {
	return Template{
		ID:      payload.String(m, "id"),
		Title:   payload.String(m, "sms_title"),
		Message: payload.String(m, "message"),
		Created: payload.String(m, "created"),
	}
}

// TemplateRequest creates or replaces a template.
type TemplateRequest struct {
	Title   string
	Message string
}

func (r TemplateRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return apierr.Invalidf("template title is required")
	}
	if strings.TrimSpace(r.Message) == "" {
		return apierr.Invalidf("template message is required")
	}
	return nil
}

func (r TemplateRequest) Payload() map[string]any {
	return map[string]any{
		"sms_title": r.Title,
		"message":   r.Message,
	}
}

// Ack is the generic {code, message} reply to a mutation.
type Ack struct {
	Code    int
	Message string
}

func AckFromMap(m map[string]any) Ack {
	d := payload.Data(m)
	return Ack{Code: payload.Int(d, "code"), Message: payload.String(d, "message")}
}

// DeliveryReport is the delivery state of one message to one recipient.
type DeliveryReport struct {
	DestAddr  string
	RequestID string
	Status    string
	Timestamp string
}

func DeliveryReportFromMap(m map[string]any) DeliveryReport {
	return DeliveryReport{
		DestAddr:  payload.String(m, "dest_addr"),
		RequestID: payload.String(m, "request_id"),
		Status:    payload.String(m, "status"),
		Timestamp: payload.String(m, "timestamp"),
	}
}

const (
	singleSegmentLen = 160
	multiSegmentLen  = 153
)

// SplitRecipients normalises recipients and separates the numbers outside
// region, which bulk send cannot reach; they go through InternationalService.
func SplitRecipients(recipients []string, region string) (local, international []string, err error) {
	for _, to := range recipients {
		msisdn, err := phone.NormalizeMSISDN(to, region)
		if err != nil {
			return nil, nil, apierr.Invalidf("recipient %q: %v", to, err)
		}
		if phone.IsLocal(msisdn, region) {
			local = append(local, msisdn)
		} else {
			international = append(international, msisdn)
		}
	}
	return local, international, nil
}

// Segments returns how many SMS parts message is billed as: none for an
// empty message, one up to 160 characters, then one per 153 characters.
func Segments(message string) int {
	n := utf8.RuneCountInString(message)
	switch {
	case n == 0:
		return 0
	case n <= singleSegmentLen:
		return 1
	default:
		return (n + multiSegmentLen - 1) / multiSegmentLen
	}
}
