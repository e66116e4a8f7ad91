// Package apierr defines the error values returned by every Beem API family.
//
// A failed remote call is reported as an *Error tagged with the Family that
// produced it. Local validation failures wrap ErrInvalidArgument and are
// returned before any request leaves the process.
package apierr

import (
	"errors"
	"fmt"
)

// Family identifies which Beem API produced an error.
type Family string

const (
	Checkout         Family = "checkout"
	OTPRequest       Family = "otp_request"
	OTPVerification  Family = "otp_verification"
	SMS              Family = "sms"
	InternationalSMS Family = "international_sms"
	Airtime          Family = "airtime"
	Disbursement     Family = "disbursement"
	Contacts         Family = "contacts"
	Collection       Family = "collection"
	USSD             Family = "ussd"
)

var fallbackMessages = map[Family]string{
	Checkout:         "Checkout request failed",
	OTPRequest:       "OTP request failed",
	OTPVerification:  "OTP verification failed",
	SMS:              "SMS request failed",
	InternationalSMS: "International SMS request failed",
	Airtime:          "Airtime request failed",
	Disbursement:     "Disbursement request failed",
	Contacts:         "Contacts request failed",
	Collection:       "Collection request failed",
	USSD:             "USSD request failed",
}

// FallbackMessage is the message used when an error body carries no
// "message" field.
func (f Family) FallbackMessage() string {
	if msg, ok := fallbackMessages[f]; ok {
		return msg
	}
	return string(f) + " request failed"
}

var (
	// ErrInvalidArgument marks a request rejected locally, before any
	// network call.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidResponse matches (via errors.Is) an *Error built by
	// InvalidResponse: a 2xx reply whose body was empty or not JSON.
	ErrInvalidResponse = errors.New("invalid response")
)

// Invalidf returns an error wrapping ErrInvalidArgument.
func Invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// Error is a failed Beem API call.
type Error struct {
	Family     Family
	StatusCode int            // 0 for InvalidResponse errors
	Message    string         // body "message" field, or the family fallback
	Body       map[string]any // decoded error body, never nil
	Invalid    bool           // true when the call succeeded but the body was unusable
}

func (e *Error) Error() string {
	if e.Invalid {
		return fmt.Sprintf("%s: invalid response: %s", e.Family, e.Message)
	}
	return fmt.Sprintf("%s: error %d: %s", e.Family, e.StatusCode, e.Message)
}

// Is reports ErrInvalidResponse for errors built by InvalidResponse.
func (e *Error) Is(target error) bool {
	return e.Invalid && target == ErrInvalidResponse
}

// FromAPIResponse builds the family error for a non-2xx reply. body may be
// nil or empty.
func FromAPIResponse(family Family, body map[string]any, statusCode int) *Error {
	if body == nil {
		body = map[string]any{}
	}
	msg, _ := body["message"].(string)
	if msg == "" {
		msg = family.FallbackMessage()
	}
	return &Error{
		Family:     family,
		StatusCode: statusCode,
		Message:    msg,
		Body:       body,
	}
}

// InvalidResponse builds the family error for a 2xx reply that carried no
// usable body.
func InvalidResponse(family Family, message string) *Error {
	if message == "" {
		message = "empty response body"
	}
	return &Error{
		Family:  family,
		Message: message,
		Body:    map[string]any{},
		Invalid: true,
	}
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// StatusCode returns the HTTP status carried by err, or 0 when err is not
// an *Error.
func StatusCode(err error) int {
	if e, ok := As(err); ok {
		return e.StatusCode
	}
	return 0
}

// IsFamily reports whether err is an *Error from the given family.
func IsFamily(err error, family Family) bool {
	e, ok := As(err)
	return ok && e.Family == family
}
