package validate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// UUID rejection reasons. ParseUUID wraps exactly one of these.
var (
	ErrWrongLength        = errors.New("UUID is wrong length")
	ErrWrongFormat        = errors.New("UUID is in wrong format")
	ErrUnsupportedVariant = errors.New("UUID is an unsupported variant")
	ErrIsNil              = errors.New("UUID is nil")
	ErrWrongVersion       = errors.New("UUID is not properly versioned")
)

// ParseUUID parses s as an RFC 4122 UUID of version 1 through 5.
//
// Accepted spellings are the canonical hyphenated form, the same wrapped in
// braces or prefixed with "urn:uuid:", and the 32-digit compact form.
// Surrounding whitespace is ignored and hex digits may be either case.
func ParseUUID(s string) (uuid.UUID, error) {
	t := strings.ToLower(strings.TrimSpace(s))
	t = strings.TrimPrefix(t, "urn:uuid:")
	if strings.HasPrefix(t, "{") && strings.HasSuffix(t, "}") {
		t = t[1 : len(t)-1]
	}

	switch len(t) {
	case 36:
		for _, i := range []int{8, 13, 18, 23} {
			if t[i] != '-' {
				return uuid.Nil, fmt.Errorf("%q: %w", s, ErrWrongFormat)
			}
		}
		t = t[:8] + t[9:13] + t[14:18] + t[19:23] + t[24:]
	case 32:
	default:
		return uuid.Nil, fmt.Errorf("%q: %w", s, ErrWrongLength)
	}

	for i := 0; i < len(t); i++ {
		if !isHex(t[i]) {
			return uuid.Nil, fmt.Errorf("%q: %w", s, ErrWrongFormat)
		}
	}

	u, err := uuid.Parse(t)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%q: %w: %v", s, ErrWrongFormat, err)
	}
	if u == uuid.Nil {
		return uuid.Nil, fmt.Errorf("%q: %w", s, ErrIsNil)
	}
	if u.Variant() != uuid.RFC4122 {
		return uuid.Nil, fmt.Errorf("%q: %w", s, ErrUnsupportedVariant)
	}
	if v := u.Version(); v < 1 || v > 5 {
		return uuid.Nil, fmt.Errorf("%q: %w", s, ErrWrongVersion)
	}
	return u, nil
}

// IsUUID reports whether s parses with ParseUUID.
func IsUUID(s string) bool {
	_, err := ParseUUID(s)
	return err == nil
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f')
}
