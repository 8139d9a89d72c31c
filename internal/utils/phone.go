package utils

import (
	"errors"
	"strings"
)

// NormalizePhone canonicalizes a phone number to E.164. Nigerian local
// formats ("0803...", "234803...") are folded to "+234..."; other numbers
// must already carry a country code.
func NormalizePhone(raw string) (string, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')', '.':
			return -1
		}
		return r
	}, strings.TrimSpace(raw))

	if cleaned == "" {
		return "", errors.New("empty phone number")
	}

	switch {
	case strings.HasPrefix(cleaned, "+"):
		// Already international.
	case strings.HasPrefix(cleaned, "234"):
		cleaned = "+" + cleaned
	case strings.HasPrefix(cleaned, "0") && len(cleaned) == 11:
		cleaned = "+234" + cleaned[1:]
	default:
		return "", errors.New("phone number must include a country code")
	}

	digits := cleaned[1:]
	if len(digits) < 10 || len(digits) > 15 {
		return "", errors.New("phone number has invalid length")
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return "", errors.New("phone number contains invalid characters")
		}
	}

	return cleaned, nil
}
