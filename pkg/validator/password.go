package validator

import "strings"

// PasswordTag is the struct tag enforcing the account password policy.
const PasswordTag = "password"

// PasswordSymbols lists the symbols accepted (and one of which is required) in passwords.
const PasswordSymbols = "@$!%*?&"

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 8

// MaxPasswordLength is the longest password bcrypt will hash.
const MaxPasswordLength = 72

// IsStrongPassword reports whether password satisfies the policy: between
// MinPasswordLength and MaxPasswordLength characters drawn from ASCII letters,
// digits and PasswordSymbols, with one of each of lowercase, uppercase, digit
// and symbol.
func IsStrongPassword(password string) bool {
	if len(password) < MinPasswordLength || len(password) > MaxPasswordLength {
		return false
	}

	var lower, upper, digit, symbol bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(PasswordSymbols, r):
			symbol = true
		default:
			return false
		}
	}

	return lower && upper && digit && symbol
}
