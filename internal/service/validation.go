package service

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/Subham7008/Quick-Serve/internal/apperr"
)

var (
	userNameRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
	personRe   = regexp.MustCompile(`^[A-Za-z\s]+$`)
	emailRe    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRe    = regexp.MustCompile(`^[0-9]{10}$`)
)

func blank(s string) bool { return strings.TrimSpace(s) == "" }

func minLen(s string, n int) bool { return utf8.RuneCountInString(s) >= n }

// checkRequired adds a "is required" violation for each blank value.
func checkRequired(c *apperr.Collector, fields ...[2]string) {
	for _, f := range fields {
		c.Check(!blank(f[1]), f[0], f[0]+" is required")
	}
}

// checkPersonName validates first and last names: letters and spaces, at
// least two characters.
func checkPersonName(c *apperr.Collector, field, v string) {
	if !minLen(v, 2) {
		c.Add(field, field+" must be at least 2 characters long")
	} else if !personRe.MatchString(v) {
		c.Add(field, field+" can only contain letters and spaces")
	}
}

func checkPhone(c *apperr.Collector, field, v string) {
	c.Check(phoneRe.MatchString(v), field, field+" must be 10 digits")
}

func checkEmail(c *apperr.Collector, field, v string) {
	c.Check(emailRe.MatchString(v), field, field+" must be a valid email address")
}

func oneOf(v string, allowed ...string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
