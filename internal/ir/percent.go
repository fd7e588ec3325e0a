package ir

import "strings"

const upperhex = "0123456789ABCDEF"

// PercentEncode escapes s the way JavaScript's encodeURIComponent does.
// Stored identifiers were produced by that function, so the unreserved set
// must match it byte for byte.
func PercentEncode(s string) string {
	n := 0
	for i := 0; i < len(s); i++ {
		if !unreserved(s[i]) {
			n++
		}
	}
	if n == 0 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 2*n)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if unreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&15])
	}
	return b.String()
}

func unreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}

func encodeAll(segs []string) []string {
	out := make([]string, len(segs))
	for i, s := range segs {
		out[i] = PercentEncode(s)
	}
	return out
}

// joinPath joins already-encoded segments and appends the fragment verbatim.
func joinPath(segs []string, fragment *string) string {
	p := strings.Join(segs, "/")
	if fragment != nil {
		p += "#" + *fragment
	}
	return p
}
