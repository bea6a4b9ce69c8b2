package domain

import (
	"errors"
	"regexp"
	"strings"
)

// indianMobileRe matches a 10-digit Indian mobile number starting 6-9,
// optionally prefixed with +91, 91, or a trunk 0. Separators are stripped
// before matching.
var indianMobileRe = regexp.MustCompile(`^(?:\+91|91|0)?([6-9][0-9]{9})$`)

// ErrInvalidMobile rejects phone numbers that are not Indian mobiles.
var ErrInvalidMobile = errors.New("not a valid Indian mobile number")

// NormalizeIndianMobile validates an Indian mobile number and returns it in
// E.164 form (+91XXXXXXXXXX). Spaces, dashes, and parentheses are tolerated.
func NormalizeIndianMobile(raw string) (string, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')':
			return -1
		}
		return r
	}, strings.TrimSpace(raw))

	m := indianMobileRe.FindStringSubmatch(cleaned)
	if m == nil {
		return "", ErrInvalidMobile
	}
	return "+91" + m[1], nil
}

// ValidIndianMobile reports whether raw is an acceptable Indian mobile number.
func ValidIndianMobile(raw string) bool {
	_, err := NormalizeIndianMobile(raw)
	return err == nil
}
