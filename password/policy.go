package password

import "strings"

// Verdict is the outcome of a strength evaluation. Reason is empty when
// OK is true and human-readable otherwise.
type Verdict struct {
	OK     bool
	Reason string
}

// weakPasswords is a fixed denylist of commonly breached passwords.
// Matching is case-insensitive and exact; substring matching would
// reject too many legitimate passphrases.
var weakPasswords = map[string]struct{}{
	"password":    {},
	"password1":   {},
	"password123": {},
	"12345678":    {},
	"123456789":   {},
	"1234567890":  {},
	"qwerty":      {},
	"qwertyui":    {},
	"qwertyuiop":  {},
	"asdfghjk":    {},
	"asdfghjkl":   {},
	"zxcvbnm":     {},
	"abc12345":    {},
	"password!":   {},
	"pass1234":    {},
	"welcome1":    {},
	"admin123":    {},
	"letmein":     {},
}

// Evaluate scores a candidate password. It rejects denylisted values,
// then requires at least 3 of the 4 character classes {upper, lower,
// digit, symbol}. Minimum length is the caller's responsibility and is
// checked before this runs. Pure and deterministic: no I/O, no state.
func Evaluate(password string) Verdict {
	if _, weak := weakPasswords[strings.ToLower(password)]; weak {
		return Verdict{Reason: "password is too common"}
	}

	var upper, lower, digit, symbol bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		default:
			symbol = true
		}
	}

	score := 0
	for _, present := range []bool{upper, lower, digit, symbol} {
		if present {
			score++
		}
	}

	if score < 3 {
		return Verdict{Reason: "password must contain at least 3 of: uppercase, lowercase, digits, symbols"}
	}

	return Verdict{OK: true}
}
