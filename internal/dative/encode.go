package dative

import (
	"encoding/json"
	"strings"

	"github.com/roach88/dativeconv/internal/ir"
)

// sourceRecord is the layout of a form as preserved in its import
// modification. Field order is part of the stored format.
type sourceRecord struct {
	ID                          string        `json:"_id"`
	Version                     int           `json:"version"`
	OldID                       int           `json:"oldid"`
	Transcription               string        `json:"transcription"`
	PhoneticTranscription       string        `json:"phonetic_transcription"`
	NarrowPhoneticTranscription string        `json:"narrow_phonetic_transcription"`
	MorphemeBreak               string        `json:"morpheme_break"`
	MorphemeGloss               string        `json:"morpheme_gloss"`
	Comments                    string        `json:"comments"`
	SpeakerComments             string        `json:"speaker_comments"`
	Grammaticality              string        `json:"grammaticality"`
	DateElicited                *string       `json:"date_elicited"`
	DatetimeEntered             string        `json:"datetime_entered"`
	DatetimeModified            string        `json:"datetime_modified"`
	SyntacticCategoryString     *string       `json:"syntactic_category_string"`
	MorphemeBreakIDs            [][]SubToken  `json:"morpheme_break_ids"`
	MorphemeGlossIDs            [][]SubToken  `json:"morpheme_gloss_ids"`
	BreakGlossCategory          *string       `json:"break_gloss_category"`
	Syntax                      string        `json:"syntax"`
	Semantics                   string        `json:"semantics"`
	Status                      string        `json:"status"`
	Elicitor                    *Person       `json:"elicitor"`
	Enterer                     *Person       `json:"enterer"`
	Modifier                    *Person       `json:"modifier"`
	Verifier                    *Person       `json:"verifier"`
	Speaker                     *Speaker      `json:"speaker"`
	ElicitationMethod           *Named        `json:"elicitation_method"`
	SyntacticCategory           *Named        `json:"syntactic_category"`
	Source                      *string       `json:"source"`
	Translations                []Translation `json:"translations"`
	Tags                        []Named       `json:"tags"`
	Files                       []string      `json:"files"`
}

// SourceRecord re-encodes f for preservation alongside the converted
// documents. The legacy numeric id is kept as "oldid".
func (f *Form) SourceRecord() (json.RawMessage, error) {
	var elicited *string
	if f.DateElicited != nil {
		s := FormatTime(*f.DateElicited)
		elicited = &s
	}
	rec := sourceRecord{
		ID:                          ir.InterlinearID(f.UUID).String(),
		Version:                     ir.DocumentVersion,
		OldID:                       f.ID,
		Transcription:               f.Transcription,
		PhoneticTranscription:       f.PhoneticTranscription,
		NarrowPhoneticTranscription: f.NarrowPhoneticTranscription,
		MorphemeBreak:               f.MorphemeBreak,
		MorphemeGloss:               f.MorphemeGloss,
		Comments:                    f.Comments,
		SpeakerComments:             f.SpeakerComments,
		Grammaticality:              f.Grammaticality,
		DateElicited:                elicited,
		DatetimeEntered:             FormatTime(f.DatetimeEntered),
		DatetimeModified:            FormatTime(f.DatetimeModified),
		SyntacticCategoryString:     f.SyntacticCategoryString,
		MorphemeBreakIDs:            f.MorphemeBreakIDs,
		MorphemeGlossIDs:            f.MorphemeGlossIDs,
		BreakGlossCategory:          f.BreakGlossCategory,
		Syntax:                      f.Syntax,
		Semantics:                   f.Semantics,
		Status:                      f.Status,
		Elicitor:                    f.Elicitor,
		Enterer:                     f.Enterer,
		Modifier:                    f.Modifier,
		Verifier:                    f.Verifier,
		Speaker:                     f.Speaker,
		ElicitationMethod:           f.ElicitationMethod,
		SyntacticCategory:           f.SyntacticCategory,
		Source:                      f.Source,
		Translations:                nonNil(f.Translations),
		Tags:                        nonNil(f.Tags),
		Files:                       nonNil(f.Files),
	}
	return json.Marshal(rec)
}

// utilityValue bundles the Dative-only analysis fields that have no place
// in the normalized model.
type utilityValue struct {
	Version                 int          `json:"version"`
	SyntacticCategoryString *string      `json:"syntactic_category_string"`
	MorphemeBreakIDs        [][]SubToken `json:"morpheme_break_ids"`
	MorphemeGlossIDs        [][]SubToken `json:"morpheme_gloss_ids"`
	BreakGlossCategory      *string      `json:"break_gloss_category"`
}

// UtilityValue returns the encoded utility payload for f. ok is false when
// none of the bundled fields carries anything, in which case no utility
// document should be written. An empty string or empty list counts as
// carrying nothing.
func (f *Form) UtilityValue() (value json.RawMessage, ok bool, err error) {
	if blank(f.SyntacticCategoryString) && len(f.MorphemeBreakIDs) == 0 &&
		len(f.MorphemeGlossIDs) == 0 && blank(f.BreakGlossCategory) {
		return nil, false, nil
	}
	value, err = json.Marshal(utilityValue{
		Version:                 ir.DocumentVersion,
		SyntacticCategoryString: f.SyntacticCategoryString,
		MorphemeBreakIDs:        f.MorphemeBreakIDs,
		MorphemeGlossIDs:        f.MorphemeGlossIDs,
		BreakGlossCategory:      f.BreakGlossCategory,
	})
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func blank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
