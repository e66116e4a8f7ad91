// Package phone normalises mobile numbers into the MSISDN form Beem expects:
// E.164 digits without the leading '+', e.g. 255712345678.
package phone

import (
	"errors"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion is used for numbers written in national form ("0712...").
const DefaultRegion = "TZ"

// ErrInvalidPhoneNumber is returned when a number cannot be parsed or validated.
var ErrInvalidPhoneNumber = errors.New("invalid phone number")

// NormalizeMSISDN parses input and returns it as digits-only E.164. Numbers
// with a '+' prefix, bare international digits ("2557...") and national
// numbers ("07...", resolved against region) are accepted. An empty region
// means DefaultRegion.
func NormalizeMSISDN(input, region string) (string, error) {
	if region == "" {
		region = DefaultRegion
	}
	plusCount := 0
	digits := 0
	for _, r := range input {
		switch {
		case r == '+':
			plusCount++
		case r >= '0' && r <= '9':
			digits++
		case r == ' ', r == '-', r == '(', r == ')', r == '.':
		default:
			return "", ErrInvalidPhoneNumber
		}
	}
	if plusCount > 1 || digits == 0 {
		return "", ErrInvalidPhoneNumber
	}
	trimmed := strings.TrimSpace(input)
	if plusCount == 1 && !strings.HasPrefix(trimmed, "+") {
		return "", ErrInvalidPhoneNumber
	}

	if plusCount == 0 && !strings.HasPrefix(trimmed, "0") {
		if msisdn, ok := parse("+"+trimmed, ""); ok {
			return msisdn, nil
		}
	}
	if msisdn, ok := parse(trimmed, region); ok {
		return msisdn, nil
	}
	return "", ErrInvalidPhoneNumber
}

func parse(input, region string) (string, bool) {
	num, err := phonenumbers.Parse(input, region)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return "", false
	}
	return strings.TrimPrefix(phonenumbers.Format(num, phonenumbers.E164), "+"), true
}

// Country returns the ISO 3166-1 alpha-2 region of an MSISDN, or "" if it
// cannot be parsed.
func Country(msisdn string) string {
	num, err := phonenumbers.Parse("+"+strings.TrimPrefix(msisdn, "+"), "")
	if err != nil {
		return ""
	}
	return phonenumbers.GetRegionCodeForNumber(num)
}

// IsLocal reports whether msisdn belongs to region. International SMS is
// routed through a separate Beem API, so callers use this to pick one.
func IsLocal(msisdn, region string) bool {
	if region == "" {
		region = DefaultRegion
	}
	return Country(msisdn) == region
}
