// Package dative models records exported from the Dative fieldwork database.
//
// A Form is one legacy transcription as it appears in the export. Forms are
// read-only once decoded: the converter derives documents from them but
// never changes them.
package dative

import (
	"time"

	"github.com/google/uuid"
)

// Form is one exported transcription record.
type Form struct {
	ID   int
	UUID uuid.UUID

	Transcription               string
	PhoneticTranscription       string
	NarrowPhoneticTranscription string
	MorphemeBreak               string
	MorphemeGloss               string
	Comments                    string
	SpeakerComments             string
	Grammaticality              string

	DateElicited     *time.Time
	DatetimeEntered  time.Time
	DatetimeModified time.Time

	SyntacticCategoryString *string
	MorphemeBreakIDs        [][]SubToken
	MorphemeGlossIDs        [][]SubToken
	BreakGlossCategory      *string

	Syntax    string
	Semantics string
	Status    string

	Elicitor *Person
	Enterer  *Person
	Modifier *Person
	Verifier *Person
	Speaker  *Speaker

	ElicitationMethod *Named
	SyntacticCategory *Named
	Source            *string

	Translations []Translation
	Tags         []Named
	Files        []string
}

// Person is a Dative user: an elicitor, enterer, modifier or verifier.
type Person struct {
	ID        int    `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

// Speaker is a language consultant. Speaker ids share no space with
// Person ids.
type Speaker struct {
	ID        int     `json:"id"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Dialect   *string `json:"dialect"`
}

// Named is an id/name pair used for tags, categories and methods.
type Named struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Translation is one translation of a form.
type Translation struct {
	ID             int    `json:"id"`
	Transcription  string `json:"transcription"`
	Grammaticality string `json:"grammaticality"`
}

// SubToken is one morpheme reference inside a token. The export writes it
// as a positional triple [id, code1, code2] whose members may be missing.
type SubToken struct {
	ID    *int    `json:"id"`
	Code1 *string `json:"code1"`
	Code2 *string `json:"code2"`
}
