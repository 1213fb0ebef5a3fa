package subscriber

import (
	"strings"
	"unicode/utf8"
)

const (
	MinPasswordLength = 12
	PasswordSpecials  = "#?!@$%^&*-"
	passwordRuleTag   = "password"

	lineTerminators = "\n\r\u2028\u2029"
)

// IsStrongPassword reports whether p has at least MinPasswordLength characters
// and contains an upper-case letter, a lower-case letter, a digit and one of
// PasswordSpecials, in any order. Line terminators anywhere reject p.
func IsStrongPassword(p string) bool {
	if utf8.RuneCountInString(p) < MinPasswordLength {
		return false
	}

	if strings.ContainsAny(p, lineTerminators) {
		return false
	}

	var upper, lower, digit, special bool

	for _, r := range p {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(PasswordSpecials, r):
			special = true
		}
	}

	return upper && lower && digit && special
}
