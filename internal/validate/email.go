package validate

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidEmail is wrapped by every Email failure.
var ErrInvalidEmail = errors.New("invalid email address")

const maxLocalLength = 64

// Email checks that s is a plain address of the form local@domain.
//
// The local part may carry a "+tag" and is limited to 64 bytes. Dots may not
// lead, trail or repeat. Domain labels are letters, digits and inner hyphens,
// and the final label is at least two letters. No surrounding whitespace is
// tolerated.
func Email(s string) error {
	if s != strings.TrimSpace(s) {
		return fmt.Errorf("%q: %w: surrounding whitespace", s, ErrInvalidEmail)
	}
	local, domain, ok := strings.Cut(s, "@")
	if !ok || strings.Contains(domain, "@") {
		return fmt.Errorf("%q: %w: want exactly one @", s, ErrInvalidEmail)
	}
	if err := checkLocal(local); err != nil {
		return fmt.Errorf("%q: %w: %v", s, ErrInvalidEmail, err)
	}
	if err := checkDomain(domain); err != nil {
		return fmt.Errorf("%q: %w: %v", s, ErrInvalidEmail, err)
	}
	return nil
}

// IsEmail reports whether s passes Email.
func IsEmail(s string) bool { return Email(s) == nil }

func checkLocal(local string) error {
	if local == "" {
		return errors.New("empty local part")
	}
	if len(local) > maxLocalLength {
		return fmt.Errorf("local part longer than %d", maxLocalLength)
	}
	if strings.HasPrefix(local, ".") || strings.HasSuffix(local, ".") || strings.Contains(local, "..") {
		return errors.New("misplaced dot in local part")
	}
	for i := 0; i < len(local); i++ {
		if !localChar(local[i]) {
			return fmt.Errorf("character %q not allowed in local part", local[i])
		}
	}
	return nil
}

func localChar(c byte) bool {
	if isAlnum(c) {
		return true
	}
	return strings.IndexByte(".!#$%&'*+/=?^_`{|}~-", c) >= 0
}

func checkDomain(domain string) error {
	labels := strings.Split(domain, ".")
	if len(labels) < 2 {
		return errors.New("domain needs a top-level label")
	}
	for _, l := range labels {
		if l == "" {
			return errors.New("empty domain label")
		}
		if l[0] == '-' || l[len(l)-1] == '-' {
			return fmt.Errorf("label %q starts or ends with hyphen", l)
		}
		for i := 0; i < len(l); i++ {
			if !isAlnum(l[i]) && l[i] != '-' {
				return fmt.Errorf("character %q not allowed in domain", l[i])
			}
		}
	}
	tld := labels[len(labels)-1]
	if len(tld) < 2 {
		return fmt.Errorf("top-level label %q too short", tld)
	}
	for i := 0; i < len(tld); i++ {
		if !isAlpha(tld[i]) {
			return fmt.Errorf("top-level label %q must be alphabetic", tld)
		}
	}
	return nil
}

func isAlpha(c byte) bool { return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') }
func isAlnum(c byte) bool { return isAlpha(c) || ('0' <= c && c <= '9') }
