package apierr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beemafrica/beem-go/internal/apierr"
)

func TestFromAPIResponseUsesBodyMessage(t *testing.T) {
	body := map[string]any{"message": "Invalid API key", "code": float64(120)}
	err := apierr.FromAPIResponse(apierr.SMS, body, http.StatusUnauthorized)

	assert.Equal(t, apierr.SMS, err.Family)
	assert.Equal(t, http.StatusUnauthorized, err.StatusCode)
	assert.Equal(t, "Invalid API key", err.Message)
	assert.Equal(t, body, err.Body)
	assert.False(t, err.Invalid)
	assert.Equal(t, "sms: error 401: Invalid API key", err.Error())
}

func TestFromAPIResponseFallbackMessage(t *testing.T) {
	cases := []struct {
		name string
		body map[string]any
	}{
		{"nil body", nil},
		{"empty body", map[string]any{}},
		{"message not a string", map[string]any{"message": map[string]any{"code": 1}}},
		{"empty message", map[string]any{"message": ""}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := apierr.FromAPIResponse(apierr.Airtime, tc.body, http.StatusBadGateway)
			assert.Equal(t, "Airtime request failed", err.Message)
			assert.Equal(t, http.StatusBadGateway, err.StatusCode)
			assert.NotNil(t, err.Body)
		})
	}
}

func TestEveryFamilyHasFallback(t *testing.T) {
	families := []apierr.Family{
		apierr.Checkout, apierr.OTPRequest, apierr.OTPVerification, apierr.SMS,
		apierr.InternationalSMS, apierr.Airtime, apierr.Disbursement,
		apierr.Contacts, apierr.Collection, apierr.USSD,
	}
	seen := map[string]bool{}
	for _, f := range families {
		msg := f.FallbackMessage()
		assert.NotEmpty(t, msg)
		assert.False(t, seen[msg], "duplicate fallback %q", msg)
		seen[msg] = true
	}
	assert.Equal(t, "mystery request failed", apierr.Family("mystery").FallbackMessage())
}

func TestInvalidResponse(t *testing.T) {
	err := apierr.InvalidResponse(apierr.OTPVerification, "")
	assert.True(t, err.Invalid)
	assert.Equal(t, 0, err.StatusCode)
	assert.Equal(t, "empty response body", err.Message)
	assert.True(t, errors.Is(err, apierr.ErrInvalidResponse))
	assert.Equal(t, "otp_verification: invalid response: empty response body", err.Error())

	notInvalid := apierr.FromAPIResponse(apierr.SMS, nil, 500)
	assert.False(t, errors.Is(notInvalid, apierr.ErrInvalidResponse))
}

func TestAsThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("sending batch: %w", apierr.FromAPIResponse(apierr.Contacts, nil, 404))

	e, ok := apierr.As(wrapped)
	require.True(t, ok)
	assert.Equal(t, apierr.Contacts, e.Family)
	assert.Equal(t, 404, apierr.StatusCode(wrapped))
	assert.True(t, apierr.IsFamily(wrapped, apierr.Contacts))
	assert.False(t, apierr.IsFamily(wrapped, apierr.SMS))

	_, ok = apierr.As(errors.New("plain"))
	assert.False(t, ok)
	assert.Equal(t, 0, apierr.StatusCode(errors.New("plain")))
}

func TestInvalidf(t *testing.T) {
	err := apierr.Invalidf("address book id is required")
	assert.True(t, errors.Is(err, apierr.ErrInvalidArgument))
	assert.Equal(t, "invalid argument: address book id is required", err.Error())
}
