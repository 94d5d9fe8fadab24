// Package phone canonicalises phone numbers used as join keys.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// Canonical returns the join form of a phone number.
//
// Surrounding whitespace and a spreadsheet float suffix (".0") are removed.
// When region is set, numbers that parse as valid for that region are
// formatted as E.164, so "0772 123456", "256772123456" and "+256772123456"
// share one key. Anything else is returned trimmed.
func Canonical(input, region string) string {
	trimmed := strings.TrimSpace(input)
	trimmed = strings.TrimSuffix(trimmed, ".0")
	if trimmed == "" || region == "" {
		return trimmed
	}

	if formatted, ok := e164(trimmed, region); ok {
		return formatted
	}
	if isDigits(trimmed) {
		if formatted, ok := e164("+"+trimmed, region); ok {
			return formatted
		}
	}
	return trimmed
}

func e164(input, region string) (string, bool) {
	number, err := phonenumbers.Parse(input, region)
	if err != nil {
		return "", false
	}
	if !phonenumbers.IsValidNumber(number) {
		return "", false
	}
	return phonenumbers.Format(number, phonenumbers.E164), true
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
