// Package people deduplicates the people a Dative export refers to.
//
// Dative numbers speakers and users in separate id spaces, and the same
// human may appear under several ids. The table maps every (space, id) pair
// seen in a job to one canonical Person whose id is a synthesized email.
package people

import (
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/dativeconv/internal/ir"
)

// Space is a legacy identifier space.
type Space int

const (
	// Other covers elicitors, enterers, modifiers and verifiers.
	Other Space = iota
	// Speaker covers language consultants.
	Speaker
)

func (s Space) String() string {
	if s == Speaker {
		return "speaker"
	}
	return "other"
}

// Key identifies a person by legacy id within its space.
type Key struct {
	Space Space
	ID    int
}

// Signed returns the key in the single signed-integer form used by older
// exports, where speaker ids are negated.
func (k Key) Signed() int {
	if k.Space == Speaker {
		return -k.ID
	}
	return k.ID
}

func (k Key) String() string { return fmt.Sprintf("%s/%d", k.Space, k.ID) }

// Ref is a person reference taken from a record.
type Ref struct {
	Key
	First string
	Last  string
}

// Domain is the mail domain of synthesized person ids.
const Domain = "example.com"

// CanonicalEmail builds the synthesized id for a name pair. Names are
// trimmed, NFC-normalized and lower-cased; the display name keeps its
// original case.
func CanonicalEmail(first, last string) string {
	local := cleanName(first) + "." + cleanName(last)
	return strings.ToLower(local) + "@" + Domain
}

func cleanName(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// Table maps legacy keys to canonical people. The zero value is not usable;
// call New.
type Table struct {
	byKey   map[Key]*ir.Person
	byEmail map[string]*ir.Person
	logger  *slog.Logger
}

// Option configures a Table.
type Option func(*Table)

// WithLogger sets the logger used for data-quality warnings.
func WithLogger(l *slog.Logger) Option {
	return func(t *Table) { t.logger = l }
}

// New returns an empty table.
func New(opts ...Option) *Table {
	t := &Table{
		byKey:   make(map[Key]*ir.Person),
		byEmail: make(map[string]*ir.Person),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Resolve returns the canonical person for ref and its storage key.
//
// A key seen before returns the stored person unchanged; the names on ref
// are ignored. A new key gets a person whose id is built from the trimmed
// names. If that id already belongs to a person reached through another
// key, the two keys share it and ref's legacy id is added to its names.
func (t *Table) Resolve(ref Ref) (*ir.Person, string) {
	if p, ok := t.byKey[ref.Key]; ok {
		return p, p.ID.String()
	}

	first := cleanName(ref.First)
	last := cleanName(ref.Last)
	if first == "" || last == "" {
		t.logger.Warn("person has an empty name",
			"key", ref.Key.String(),
			"first", first,
			"last", last,
		)
	}

	email := CanonicalEmail(first, last)
	display := first + " " + last

	p, ok := t.byEmail[email]
	if ok {
		if _, taken := p.Names[ref.ID]; !taken {
			p.Names[ref.ID] = display
		}
	} else {
		p = &ir.Person{
			ID:      ir.PersonID(email),
			Version: ir.DocumentVersion,
			Names:   map[int]string{ref.ID: display},
		}
		t.byEmail[email] = p
	}
	t.byKey[ref.Key] = p
	return p, p.ID.String()
}

// Lookup returns the person stored under key, if any.
func (t *Table) Lookup(key Key) (*ir.Person, bool) {
	p, ok := t.byKey[key]
	return p, ok
}

// Len returns the number of distinct keys.
func (t *Table) Len() int { return len(t.byKey) }

// People returns the number of distinct canonical people.
func (t *Table) People() int { return len(t.byEmail) }
