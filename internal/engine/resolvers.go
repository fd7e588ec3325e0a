package engine

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/roach88/dativeconv/internal/dative"
	"github.com/roach88/dativeconv/internal/ir"
	"github.com/roach88/dativeconv/internal/people"
)

// Document kinds written by the resolvers. They are part of the stored
// identifiers, spelling included.
const (
	ModImportSource = "importsource"
	ModElicitation  = "elicitation"
	ModEntered      = "entered"
	ModUpdated      = "updated"
	ModVerified     = "verified"

	DescSpeakerComment = "speaker comment"
	DescComment        = "comment"
	DescNarrowPhonetic = "narrow phonetic transription"

	PropDialect           = "dialect"
	PropElicitationMethod = "elicitation method"
	PropSyntax            = "syntax"
	PropSemantics         = "semantics"
	PropStatus            = "status"
	PropSource            = "source"
	PropSyntacticCategory = "syntactic category"

	UtilDative = "dative"

	// ImportComment is the comment on every modification the converter writes.
	ImportComment = "bulk import"
)

// resolution is the outcome of one stage applied to one record.
type resolution struct {
	docs    []ir.Document
	skipped bool
}

// resolve runs the resolver for stage against f.
func (c *Converter) resolve(stage Stage, f *dative.Form) (resolution, error) {
	root := ir.InterlinearID(f.UUID)
	switch stage {
	case StageOriginal:
		return c.resolveOriginal(root, f)
	case StageSpeaker:
		return c.resolveSpeaker(root, f), nil
	case StageElicitor:
		return c.resolveElicitor(root, f), nil
	case StageEnterer:
		return c.resolveUser(root, f.Enterer, ModEntered, &f.DatetimeEntered), nil
	case StageModifier:
		return c.resolveUser(root, f.Modifier, ModUpdated, &f.DatetimeModified), nil
	case StageVerifier:
		return c.resolveUser(root, f.Verifier, ModVerified, &f.DatetimeModified), nil
	case StageUtility:
		return resolveUtility(root, f)
	case StageInterlinear:
		return resolveInterlinear(root, f), nil
	default:
		return resolution{}, fmt.Errorf("unknown stage %d", stage)
	}
}

// resolveOriginal preserves the source record as an import modification
// authored by the job actor at the job time.
func (c *Converter) resolveOriginal(root ir.InterlinearID, f *dative.Form) (resolution, error) {
	src, err := f.SourceRecord()
	if err != nil {
		return resolution{}, fmt.Errorf("encode source record: %w", err)
	}
	mod := modification(root, ModImportSource, c.state.Time, ir.PersonID(c.state.Actor), src)
	return resolution{docs: []ir.Document{mod}}, nil
}

func (c *Converter) resolveSpeaker(root ir.InterlinearID, f *dative.Form) resolution {
	sp := f.Speaker
	if sp == nil {
		return resolution{skipped: true}
	}
	p, _ := c.state.People.Resolve(people.Ref{
		Key:   people.Key{Space: people.Speaker, ID: sp.ID},
		First: sp.FirstName,
		Last:  sp.LastName,
	})

	var docs documents
	docs.add(p)
	docs.add(nonBlankDescription(root, DescSpeakerComment, f.SpeakerComments))
	docs.add(maybeProperty(p.ID, PropDialect, sp.Dialect))
	docs.add(maybeProperty(root, PropDialect, sp.Dialect))
	return resolution{docs: docs}
}

func (c *Converter) resolveElicitor(root ir.InterlinearID, f *dative.Form) resolution {
	if f.Elicitor == nil {
		return resolution{skipped: true}
	}
	res := c.resolveUser(root, f.Elicitor, ModElicitation, f.DateElicited)

	docs := documents(res.docs)
	if m := f.ElicitationMethod; m != nil {
		docs.add(maybeProperty(root, PropElicitationMethod, &m.Name))
	}
	docs.add(nonBlankDescription(root, DescComment, f.Comments))
	res.docs = docs
	return res
}

// resolveUser handles the stages keyed on a Dative user: the person, and a
// modification of the given kind when at is known.
func (c *Converter) resolveUser(root ir.InterlinearID, u *dative.Person, kind string, at *time.Time) resolution {
	if u == nil {
		return resolution{skipped: true}
	}
	p, _ := c.state.People.Resolve(people.Ref{
		Key:   people.Key{Space: people.Other, ID: u.ID},
		First: u.FirstName,
		Last:  u.LastName,
	})

	var docs documents
	docs.add(p)
	if at != nil {
		docs.add(modification(root, kind, *at, p.ID, nil))
	}
	return resolution{docs: docs}
}

func resolveUtility(root ir.InterlinearID, f *dative.Form) (resolution, error) {
	value, ok, err := f.UtilityValue()
	if err != nil {
		return resolution{}, fmt.Errorf("encode utility value: %w", err)
	}
	if !ok {
		return resolution{skipped: true}, nil
	}
	return resolution{docs: []ir.Document{&ir.Utility{
		ID:      ir.UtilityID{Root: root, Kind: UtilDative},
		Version: ir.DocumentVersion,
		Value:   value,
	}}}, nil
}

func resolveInterlinear(root ir.InterlinearID, f *dative.Form) resolution {
	translations := make(map[int]ir.Translation, len(f.Translations))
	for _, t := range f.Translations {
		translations[t.ID] = ir.Translation{Translation: t.Transcription, Judgment: t.Grammaticality}
	}

	var docs documents
	docs.add(&ir.Interlinear{
		ID:      root,
		Version: ir.DocumentVersion,
		Text:    f.Transcription,
		Ann: ir.Annotations{
			Breaks:   f.MorphemeBreak,
			Glosses:  f.MorphemeGloss,
			Phonemic: f.PhoneticTranscription,
			Judgment: f.Grammaticality,
		},
		Translations: translations,
	})
	for _, tag := range f.Tags {
		docs.add(&ir.Tag{ID: ir.TagID{Root: root, Kind: tag.Name}, Version: ir.DocumentVersion})
	}
	docs.add(nonBlankDescription(root, DescNarrowPhonetic, f.NarrowPhoneticTranscription))
	docs.add(nonBlankProperty(root, PropSyntax, f.Syntax))
	docs.add(nonBlankProperty(root, PropSemantics, f.Semantics))
	docs.add(nonBlankProperty(root, PropStatus, f.Status))
	docs.add(maybeProperty(root, PropSource, f.Source))
	if sc := f.SyntacticCategory; sc != nil {
		docs.add(maybeProperty(root, PropSyntacticCategory, &sc.Name))
	}
	return resolution{docs: docs}
}

// documents collects stage output, dropping writers that produced nothing.
type documents []ir.Document

func (ds *documents) add(d ir.Document) {
	if d != nil {
		*ds = append(*ds, d)
	}
}

func modification(root ir.Root, kind string, at time.Time, by ir.Root, value json.RawMessage) ir.Document {
	return &ir.Modification{
		ID:         ir.ModificationID{Root: root, Kind: kind, Time: at, Person: by},
		Version:    ir.DocumentVersion,
		Comment:    ImportComment,
		DocVersion: ir.ImportDocVersion,
		Value:      value,
	}
}

// nonBlankDescription writes free text only when it has non-space content.
// The stored value is the text as given.
func nonBlankDescription(root ir.Root, kind, text string) ir.Document {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return &ir.Description{
		ID:      ir.DescriptionID{Root: root, Kind: kind},
		Version: ir.DocumentVersion,
		Value:   text,
	}
}

func nonBlankProperty(root ir.Root, kind, value string) ir.Document {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return property(root, kind, value)
}

// maybeProperty writes a property whenever the value is present, even if
// it is empty.
func maybeProperty(root ir.Root, kind string, value *string) ir.Document {
	if value == nil {
		return nil
	}
	return property(root, kind, *value)
}

func property(root ir.Root, kind, value string) ir.Document {
	return &ir.Property{
		ID:      ir.PropertyID{Root: root, Kind: kind, Value: value},
		Version: ir.DocumentVersion,
	}
}
