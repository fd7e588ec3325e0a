package dative

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/dativeconv/internal/validate"
)

// ErrNotArray is returned by DecodeForms when the payload is not a JSON array.
var ErrNotArray = errors.New("payload is not a JSON array")

// RecordError reports a record that failed to decode and its position in
// the payload.
type RecordError struct {
	Index int
	Err   error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("record %d: %v", e.Index, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }

// FieldError names the field of a record that could not be decoded.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// ErrMissing marks a mandatory field that is absent or null.
var ErrMissing = errors.New("missing mandatory field")

// DecodeForms decodes a payload array. It fails on the first record that
// does not decode; a partially decoded payload is never returned.
func DecodeForms(data []byte) ([]Form, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, ErrNotArray
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotArray, err)
	}

	forms := make([]Form, len(raw))
	for i, r := range raw {
		if err := json.Unmarshal(r, &forms[i]); err != nil {
			return nil, &RecordError{Index: i, Err: err}
		}
	}
	return forms, nil
}

// wireForm mirrors the export layout. Strings absent from a record decode
// as empty; the identifying UUID and entry time are mandatory.
type wireForm struct {
	ID        int     `json:"id"`
	UUID      *string `json:"UUID"`
	UUIDLower *string `json:"uuid"`

	Transcription               string `json:"transcription"`
	PhoneticTranscription       string `json:"phonetic_transcription"`
	NarrowPhoneticTranscription string `json:"narrow_phonetic_transcription"`
	MorphemeBreak               string `json:"morpheme_break"`
	MorphemeGloss               string `json:"morpheme_gloss"`
	Comments                    string `json:"comments"`
	SpeakerComments             string `json:"speaker_comments"`
	Grammaticality              string `json:"grammaticality"`

	DateElicited     *string `json:"date_elicited"`
	DatetimeEntered  *string `json:"datetime_entered"`
	DatetimeModified *string `json:"datetime_modified"`

	SyntacticCategoryString *string      `json:"syntactic_category_string"`
	MorphemeBreakIDs        [][]SubToken `json:"morpheme_break_ids"`
	MorphemeGlossIDs        [][]SubToken `json:"morpheme_gloss_ids"`
	BreakGlossCategory      *string      `json:"break_gloss_category"`

	Syntax    string `json:"syntax"`
	Semantics string `json:"semantics"`
	Status    string `json:"status"`

	Elicitor *Person  `json:"elicitor"`
	Enterer  *Person  `json:"enterer"`
	Modifier *Person  `json:"modifier"`
	Verifier *Person  `json:"verifier"`
	Speaker  *Speaker `json:"speaker"`

	ElicitationMethod *Named  `json:"elicitation_method"`
	SyntacticCategory *Named  `json:"syntactic_category"`
	Source            *string `json:"source"`

	Translations []Translation `json:"translations"`
	Tags         []Named       `json:"tags"`
	Files        []string      `json:"files"`
}

// UnmarshalJSON decodes one export record.
func (f *Form) UnmarshalJSON(data []byte) error {
	var w wireForm
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	rawUUID := w.UUID
	if rawUUID == nil {
		rawUUID = w.UUIDLower
	}
	if rawUUID == nil {
		return &FieldError{Field: "UUID", Err: ErrMissing}
	}
	u, err := validate.ParseUUID(*rawUUID)
	if err != nil {
		return &FieldError{Field: "UUID", Err: err}
	}

	if w.DatetimeEntered == nil {
		return &FieldError{Field: "datetime_entered", Err: ErrMissing}
	}
	entered, err := ParseTime(*w.DatetimeEntered)
	if err != nil {
		return &FieldError{Field: "datetime_entered", Err: err}
	}

	modified := entered
	if w.DatetimeModified != nil {
		if modified, err = ParseTime(*w.DatetimeModified); err != nil {
			return &FieldError{Field: "datetime_modified", Err: err}
		}
	}

	var elicited *time.Time
	if w.DateElicited != nil {
		t, err := ParseTime(*w.DateElicited)
		if err != nil {
			return &FieldError{Field: "date_elicited", Err: err}
		}
		elicited = &t
	}

	*f = Form{
		ID:                          w.ID,
		UUID:                        u,
		Transcription:               w.Transcription,
		PhoneticTranscription:       w.PhoneticTranscription,
		NarrowPhoneticTranscription: w.NarrowPhoneticTranscription,
		MorphemeBreak:               w.MorphemeBreak,
		MorphemeGloss:               w.MorphemeGloss,
		Comments:                    w.Comments,
		SpeakerComments:             w.SpeakerComments,
		Grammaticality:              w.Grammaticality,
		DateElicited:                elicited,
		DatetimeEntered:             entered,
		DatetimeModified:            modified,
		SyntacticCategoryString:     w.SyntacticCategoryString,
		MorphemeBreakIDs:            w.MorphemeBreakIDs,
		MorphemeGlossIDs:            w.MorphemeGlossIDs,
		BreakGlossCategory:          w.BreakGlossCategory,
		Syntax:                      w.Syntax,
		Semantics:                   w.Semantics,
		Status:                      w.Status,
		Elicitor:                    w.Elicitor,
		Enterer:                     w.Enterer,
		Modifier:                    w.Modifier,
		Verifier:                    w.Verifier,
		Speaker:                     w.Speaker,
		ElicitationMethod:           w.ElicitationMethod,
		SyntacticCategory:           w.SyntacticCategory,
		Source:                      w.Source,
		Translations:                w.Translations,
		Tags:                        w.Tags,
		Files:                       w.Files,
	}
	return nil
}

// UnmarshalJSON accepts the positional triple written by the export and
// the object form written by SourceRecord. Members that are missing or of
// the wrong type decode as nil.
func (s *SubToken) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		type plain SubToken
		var p plain
		if err := json.Unmarshal(trimmed, &p); err != nil {
			return err
		}
		*s = SubToken(p)
		return nil
	}

	var parts []json.RawMessage
	if err := json.Unmarshal(trimmed, &parts); err != nil {
		return fmt.Errorf("sub-token: %w", err)
	}
	*s = SubToken{}
	if len(parts) > 0 {
		var id int
		if json.Unmarshal(parts[0], &id) == nil && !isNull(parts[0]) {
			s.ID = &id
		}
	}
	if len(parts) > 1 {
		s.Code1 = optionalString(parts[1])
	}
	if len(parts) > 2 {
		s.Code2 = optionalString(parts[2])
	}
	return nil
}

func optionalString(raw json.RawMessage) *string {
	if isNull(raw) {
		return nil
	}
	var v string
	if json.Unmarshal(raw, &v) != nil {
		return nil
	}
	return &v
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
