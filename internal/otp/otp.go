// Package otp talks to the Beem OTP API: request a PIN by SMS, then verify
// what the user typed.
package otp

import (
	"context"
	"strconv"
	"strings"

	"github.com/beemafrica/beem-go/internal/apiclient"
	"github.com/beemafrica/beem-go/internal/apierr"
	"github.com/beemafrica/beem-go/internal/payload"
	"github.com/beemafrica/beem-go/internal/phone"
)

const (
	requestPath = "/v1/request"
	verifyPath  = "/v1/verify"
)

// Result codes returned inside data.message.code.
const (
	CodeSMSSent          = 100
	CodeIncorrectPin     = 114
	CodePinTimeout       = 115
	CodeAttemptsExceeded = 116
	CodeValidPin         = 117
)

// Config holds OTP settings. PIN validity and attempt limits are enforced
// by Beem per application and are not sent with each request.
type Config struct {
	AppID     string
	PinLength int    // when > 0, Verify rejects PINs of any other length
	Region    string // region for national-format numbers
}

// Request asks Beem to send a PIN to MSISDN. AppID defaults to Config.AppID.
type Request struct {
	AppID  string
	MSISDN string
}

func (r Request) Validate() error {
	if strings.TrimSpace(r.AppID) == "" {
		return apierr.Invalidf("otp app id is required")
	}
	if strings.TrimSpace(r.MSISDN) == "" {
		return apierr.Invalidf("msisdn is required")
	}
	return nil
}

func (r Request) Payload() map[string]any {
	return map[string]any{"appId": r.AppID, "msisdn": r.MSISDN}
}

// RequestResult is the reply to Request.
type RequestResult struct {
	PinID   string
	Code    int
	Message string
}

func RequestResultFromMap(m map[string]any) RequestResult {
	d := payload.Data(m)
	msg := payload.Map(d, "message")
	return RequestResult{
		PinID:   payload.String(d, "pinId"),
		Code:    payload.Int(msg, "code"),
		Message: payload.String(msg, "message"),
	}
}

// Verification checks a PIN against a previous Request.
type Verification struct {
	PinID string
	Pin   string
}

// Validate rejects an empty pin id, an empty or non-numeric PIN, and, when
// pinLength > 0, a PIN of the wrong length.
func (v Verification) Validate(pinLength int) error {
	if strings.TrimSpace(v.PinID) == "" {
		return apierr.Invalidf("pin id is required")
	}
	if strings.TrimSpace(v.Pin) == "" {
		return apierr.Invalidf("pin is required")
	}
	if _, err := strconv.ParseUint(v.Pin, 10, 64); err != nil {
		return apierr.Invalidf("pin must be numeric")
	}
	if pinLength > 0 && len(v.Pin) != pinLength {
		return apierr.Invalidf("pin must be %d digits", pinLength)
	}
	return nil
}

func (v Verification) Payload() map[string]any {
	return map[string]any{"pinId": v.PinID, "pin": v.Pin}
}

// VerifyResult is the reply to Verify.
type VerifyResult struct {
	Code    int
	Message string
}

func VerifyResultFromMap(m map[string]any) VerifyResult {
	msg := payload.Map(payload.Data(m), "message")
	return VerifyResult{
		Code:    payload.Int(msg, "code"),
		Message: payload.String(msg, "message"),
	}
}

// Valid reports whether Beem accepted the PIN.
func (r VerifyResult) Valid() bool {
	return r.Code == CodeValidPin
}

// Service is the Beem OTP API.
type Service struct {
	api *apiclient.Client
	cfg Config
}

func NewService(api *apiclient.Client, cfg Config) *Service {
	return &Service{api: api, cfg: cfg}
}

// Request sends a PIN to req.MSISDN. Errors are tagged apierr.OTPRequest.
func (s *Service) Request(ctx context.Context, req Request) (*RequestResult, error) {
	if req.AppID == "" {
		req.AppID = s.cfg.AppID
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	msisdn, err := phone.NormalizeMSISDN(req.MSISDN, s.cfg.Region)
	if err != nil {
		return nil, apierr.Invalidf("msisdn %q: %v", req.MSISDN, err)
	}
	req.MSISDN = msisdn

	resp, err := s.api.Post(ctx, requestPath, req.Payload())
	if err != nil {
		return nil, err
	}
	m, err := resp.Expect(apierr.OTPRequest)
	if err != nil {
		return nil, err
	}
	result := RequestResultFromMap(m)
	return &result, nil
}

// Verify checks v.Pin. An incorrect PIN is a successful call whose result
// is not Valid; only transport-level failures are errors, tagged
// apierr.OTPVerification.
func (s *Service) Verify(ctx context.Context, v Verification) (*VerifyResult, error) {
	if err := v.Validate(s.cfg.PinLength); err != nil {
		return nil, err
	}
	resp, err := s.api.Post(ctx, verifyPath, v.Payload())
	if err != nil {
		return nil, err
	}
	m, err := resp.Expect(apierr.OTPVerification)
	if err != nil {
		return nil, err
	}
	result := VerifyResultFromMap(m)
	return &result, nil
}
