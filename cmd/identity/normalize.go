package identity

import "strings"

// LoginKeyKind tells which column a login key is matched against.
type LoginKeyKind int

const (
	LoginKeyPhone LoginKeyKind = iota
	LoginKeyEmail
)

func (k LoginKeyKind) String() string {
	if k == LoginKeyEmail {
		return "email"
	}
	return "phone"
}

// NormalizePhone drops common formatting characters; a leading '+' is kept.
func NormalizePhone(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')', '.', '\t':
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}

// NormalizeEmail performs case-insensitive canonicalization.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ParseLoginKey classifies a raw login key and returns its normalized form.
// Anything containing '@' is an email, everything else a phone number.
func ParseLoginKey(raw string) (LoginKeyKind, string) {
	if strings.Contains(raw, "@") {
		return LoginKeyEmail, NormalizeEmail(raw)
	}
	return LoginKeyPhone, NormalizePhone(raw)
}
