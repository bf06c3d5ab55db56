package utils

import (
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// PasswordSymbols is the set a strong password must draw at least one
// character from.
const PasswordSymbols = "!@#$%^&*"

// HashPassword returns bcrypt hash using the given cost.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword safely compares bcrypt hash and plain password.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// PasswordProblems lists every strength rule plain breaks: at least 8
// characters, one uppercase, one lowercase, one digit and one symbol from
// PasswordSymbols.  An empty result means the password is acceptable.
func PasswordProblems(plain string) []string {
	var upper, lower, digit, symbol bool
	for _, r := range plain {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(PasswordSymbols, r):
			symbol = true
		}
	}
	var out []string
	if len([]rune(plain)) < 8 {
		out = append(out, "must be at least 8 characters long")
	}
	if !upper {
		out = append(out, "must contain an uppercase letter")
	}
	if !lower {
		out = append(out, "must contain a lowercase letter")
	}
	if !digit {
		out = append(out, "must contain a number")
	}
	if !symbol {
		out = append(out, "must contain one of "+PasswordSymbols)
	}
	return out
}
