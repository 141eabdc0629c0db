package notify

import (
	"fmt"
	"strings"
)

// Ghana trunk-prefix numbers (0XXXXXXXXX) are rewritten to +233 form before
// dispatch. Anything already in international form passes through unchanged.
const countryCode = "+233"

// NormalizePhone rewrites a phone number into a single international format.
func NormalizePhone(phone string) (string, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')':
			return -1
		}
		return r
	}, phone)

	if cleaned == "" {
		return "", fmt.Errorf("empty phone number")
	}

	switch {
	case strings.HasPrefix(cleaned, "+"):
		if !digitsOnly(cleaned[1:]) || len(cleaned) < 11 {
			return "", fmt.Errorf("invalid international phone number %q", phone)
		}
		return cleaned, nil
	case strings.HasPrefix(cleaned, "233"):
		if !digitsOnly(cleaned) || len(cleaned) != 12 {
			return "", fmt.Errorf("invalid phone number %q", phone)
		}
		return "+" + cleaned, nil
	case strings.HasPrefix(cleaned, "0"):
		if !digitsOnly(cleaned) || len(cleaned) != 10 {
			return "", fmt.Errorf("invalid phone number %q", phone)
		}
		return countryCode + cleaned[1:], nil
	default:
		return "", fmt.Errorf("unrecognized phone number format %q", phone)
	}
}

func digitsOnly(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
