package ir

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Identifier is any value that serializes to a document storage key.
type Identifier interface {
	// String returns the percent-encoded storage path.
	String() string
}

// Root identifies a top-level document that derived documents hang off.
type Root interface {
	Identifier

	// Segments returns the encoded path segments of the root.
	Segments() []string

	// Simple returns the unencoded key (an email or a canonical UUID).
	Simple() string

	isRoot()
}

// PersonID identifies a Person document by its canonical email.
type PersonID string

func (PersonID) isRoot() {}

// Segments implements Root.
func (p PersonID) Segments() []string {
	return encodeAll([]string{"person", string(p)})
}

// Simple implements Root.
func (p PersonID) Simple() string { return string(p) }

func (p PersonID) String() string { return joinPath(p.Segments(), nil) }

// InterlinearID identifies an Interlinear document by the form UUID.
type InterlinearID uuid.UUID

func (InterlinearID) isRoot() {}

// Segments implements Root.
func (i InterlinearID) Segments() []string {
	return encodeAll([]string{"interlinear", uuid.UUID(i).String()})
}

// Simple implements Root.
func (i InterlinearID) Simple() string { return uuid.UUID(i).String() }

func (i InterlinearID) String() string { return joinPath(i.Segments(), nil) }

// TagID identifies a tag attached to a root.
type TagID struct {
	Root Root
	Kind string
}

func (t TagID) String() string {
	return joinPath(encodeAll(append(t.Root.Segments(), "tag", t.Kind)), nil)
}

// PropertyID identifies a kind/value property attached to a root.
type PropertyID struct {
	Root  Root
	Kind  string
	Value string
}

func (p PropertyID) String() string {
	return joinPath(encodeAll(append(p.Root.Segments(), "property", p.Kind, p.Value)), nil)
}

// DescriptionID identifies a free-text description attached to a root.
type DescriptionID struct {
	Root     Root
	Kind     string
	Fragment *string
}

func (d DescriptionID) String() string {
	return joinPath(encodeAll(append(d.Root.Segments(), "description", d.Kind)), d.Fragment)
}

// ModificationID identifies a change record: what happened to a root, when,
// and by whom.
type ModificationID struct {
	Root     Root
	Kind     string
	Time     time.Time
	Person   Root
	Fragment *string
}

func (m ModificationID) String() string {
	segs := append(m.Root.Segments(),
		"modification",
		m.Kind,
		strconv.FormatInt(m.Time.UnixMilli(), 10),
		m.Person.Simple(),
	)
	return joinPath(encodeAll(segs), m.Fragment)
}

// UtilityID identifies tool-specific data about a root. Unlike the other
// derived identifiers the kind precedes the root.
type UtilityID struct {
	Root     Root
	Kind     string
	Fragment *string
}

func (u UtilityID) String() string {
	segs := append([]string{"utility", u.Kind}, u.Root.Segments()...)
	return joinPath(encodeAll(segs), u.Fragment)
}
