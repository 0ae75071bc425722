package arpoone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// ValidateMobileNumber parses a raw phone number and returns it as the
// bare digit string the provider expects: international format with the
// leading "+" stripped. The number must carry its own country code (no
// default region is assumed) and must be classified as a mobile line;
// landlines are rejected so the failure surfaces here instead of as an
// opaque provider rejection.
func ValidateMobileNumber(raw string) (string, error) {
	parsed, err := phonenumbers.Parse(raw, "")
	if err != nil {
		return "", NewInvalidPhoneNumber(err.Error())
	}

	if !phonenumbers.IsValidNumber(parsed) {
		return "", NewInvalidPhoneNumber("not a valid number")
	}

	if phonenumbers.GetNumberType(parsed) != phonenumbers.MOBILE {
		return "", NewNonMobileNumber(raw)
	}

	return strings.TrimPrefix(phonenumbers.Format(parsed, phonenumbers.E164), "+"), nil
}
