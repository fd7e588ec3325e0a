package ir

import (
	"encoding/json"
	"fmt"
)

// Kind names a document variant.
type Kind string

const (
	KindPerson       Kind = "person"
	KindInterlinear  Kind = "interlinear"
	KindTag          Kind = "tag"
	KindProperty     Kind = "property"
	KindDescription  Kind = "description"
	KindModification Kind = "modification"
	KindUtility      Kind = "utility"
)

// Kinds lists every document variant in a stable order.
var Kinds = []Kind{
	KindPerson,
	KindInterlinear,
	KindTag,
	KindProperty,
	KindDescription,
	KindModification,
	KindUtility,
}

// Document is the closed set of normalized documents. The unexported method
// keeps the set sealed to this package.
type Document interface {
	// DocID returns the identifier the document is stored under.
	DocID() Identifier

	// Kind returns the document variant.
	Kind() Kind

	isDocument()
}

// Key returns the storage key of d.
func Key(d Document) string { return d.DocID().String() }

// Person is a canonical person. Names maps every legacy numeric id that
// resolved to this person to the display name it was first seen under.
type Person struct {
	Rev     *string        `json:"_rev,omitempty"`
	ID      PersonID       `json:"_id"`
	Version int            `json:"version"`
	Names   map[int]string `json:"names"`
}

// Annotations holds the interlinear analysis lines.
type Annotations struct {
	Breaks   string `json:"breaks"`
	Glosses  string `json:"glosses"`
	Phonemic string `json:"phonemic"`
	Judgment string `json:"judgment"`
}

// Translation is one translation of an interlinear text.
type Translation struct {
	Translation string `json:"translation"`
	Judgment    string `json:"judgment"`
}

// Interlinear is the canonical transcription of one form.
type Interlinear struct {
	Rev          *string             `json:"_rev,omitempty"`
	ID           InterlinearID       `json:"_id"`
	Version      int                 `json:"version"`
	Text         string              `json:"text"`
	Ann          Annotations         `json:"ann"`
	Translations map[int]Translation `json:"translations"`
}

// Tag marks a root with a named tag.
type Tag struct {
	Rev     *string `json:"_rev,omitempty"`
	ID      TagID   `json:"_id"`
	Version int     `json:"version"`
}

// Property records a kind/value pair on a root. The value lives in the id.
type Property struct {
	Rev     *string    `json:"_rev,omitempty"`
	ID      PropertyID `json:"_id"`
	Version int        `json:"version"`
}

// Description attaches free text to a root.
type Description struct {
	Rev     *string       `json:"_rev,omitempty"`
	ID      DescriptionID `json:"_id"`
	Version int           `json:"version"`
	Value   string        `json:"value"`
}

// Modification records a change event. Value is arbitrary JSON and is
// null unless the event carries a payload.
type Modification struct {
	Rev        *string         `json:"_rev,omitempty"`
	ID         ModificationID  `json:"_id"`
	Version    int             `json:"version"`
	Comment    string          `json:"comment"`
	DocVersion int             `json:"docversion"`
	Value      json.RawMessage `json:"value"`
}

// Utility carries tool-specific JSON about a root.
type Utility struct {
	Rev     *string         `json:"_rev,omitempty"`
	ID      UtilityID       `json:"_id"`
	Version int             `json:"version"`
	Value   json.RawMessage `json:"value"`
}

func (d *Person) DocID() Identifier       { return d.ID }
func (d *Interlinear) DocID() Identifier  { return d.ID }
func (d *Tag) DocID() Identifier          { return d.ID }
func (d *Property) DocID() Identifier     { return d.ID }
func (d *Description) DocID() Identifier  { return d.ID }
func (d *Modification) DocID() Identifier { return d.ID }
func (d *Utility) DocID() Identifier      { return d.ID }

func (*Person) Kind() Kind       { return KindPerson }
func (*Interlinear) Kind() Kind  { return KindInterlinear }
func (*Tag) Kind() Kind          { return KindTag }
func (*Property) Kind() Kind     { return KindProperty }
func (*Description) Kind() Kind  { return KindDescription }
func (*Modification) Kind() Kind { return KindModification }
func (*Utility) Kind() Kind      { return KindUtility }

func (*Person) isDocument()       {}
func (*Interlinear) isDocument()  {}
func (*Tag) isDocument()          {}
func (*Property) isDocument()     {}
func (*Description) isDocument()  {}
func (*Modification) isDocument() {}
func (*Utility) isDocument()      {}

// Identifiers serialize as their storage path wherever they appear in JSON.

func (p PersonID) MarshalText() ([]byte, error)       { return []byte(p.String()), nil }
func (i InterlinearID) MarshalText() ([]byte, error)  { return []byte(i.String()), nil }
func (t TagID) MarshalText() ([]byte, error)          { return []byte(t.String()), nil }
func (p PropertyID) MarshalText() ([]byte, error)     { return []byte(p.String()), nil }
func (d DescriptionID) MarshalText() ([]byte, error)  { return []byte(d.String()), nil }
func (m ModificationID) MarshalText() ([]byte, error) { return []byte(m.String()), nil }
func (u UtilityID) MarshalText() ([]byte, error)      { return []byte(u.String()), nil }

// MarshalDocuments encodes docs as a JSON array.
func MarshalDocuments(docs []Document) ([]byte, error) {
	raw := make([]json.RawMessage, len(docs))
	for i, d := range docs {
		b, err := json.Marshal(d)
		if err != nil {
			return nil, fmt.Errorf("marshal %s %s: %w", d.Kind(), Key(d), err)
		}
		raw[i] = b
	}
	return json.Marshal(raw)
}
