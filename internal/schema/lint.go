package schema

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cuejson "cuelang.org/go/encoding/json"

	"github.com/roach88/dativeconv/internal/dative"
)

//go:embed export.cue
var exportCUE string

// Problem is one finding about one record of an export.
type Problem struct {
	// Index is the position of the record in the export array.
	Index int `json:"index"`

	// UUID is the record's UUID as written, if it has one.
	UUID string `json:"uuid,omitempty"`

	// Path is the dotted field path the problem was found at.
	Path string `json:"path,omitempty"`

	Message string `json:"message"`
}

func (p Problem) String() string {
	loc := fmt.Sprintf("record %d", p.Index)
	if p.UUID != "" {
		loc += " (" + p.UUID + ")"
	}
	if p.Path != "" {
		loc += " " + p.Path
	}
	return loc + ": " + p.Message
}

// Linter checks Dative exports against the embedded CUE schema.
//
// A Linter is not safe for concurrent use: CUE values share the context
// they were built in.
type Linter struct {
	ctx  *cue.Context
	form cue.Value
}

// NewLinter compiles the embedded export schema.
func NewLinter() (*Linter, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(exportCUE, cue.Filename("export.cue"))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compile export schema: %w", err)
	}
	form := v.LookupPath(cue.ParsePath("#Form"))
	if err := form.Err(); err != nil {
		return nil, fmt.Errorf("lookup #Form: %w", err)
	}
	return &Linter{ctx: ctx, form: form}, nil
}

// Lint checks every record of an export. A nil slice means the export is
// clean. The error is non-nil only when data is not a JSON array.
//
// Records that satisfy the schema are also decoded, so problems the schema
// cannot express (UUID versions, unparseable dates, a missing UUID) are
// reported too.
func (l *Linter) Lint(data []byte) ([]Problem, error) {
	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("lint: %w: %v", dative.ErrNotArray, err)
	}

	var problems []Problem
	for i, raw := range records {
		problems = append(problems, l.lintRecord(i, raw)...)
	}
	return problems, nil
}

func (l *Linter) lintRecord(index int, raw json.RawMessage) []Problem {
	id := recordUUID(raw)

	expr, err := cuejson.Extract(fmt.Sprintf("record[%d]", index), raw)
	if err != nil {
		return []Problem{{Index: index, UUID: id, Message: err.Error()}}
	}
	v := l.ctx.BuildExpr(expr)
	if err := v.Err(); err != nil {
		return []Problem{{Index: index, UUID: id, Message: err.Error()}}
	}

	if err := l.form.Unify(v).Validate(cue.Concrete(true)); err != nil {
		var problems []Problem
		for _, e := range cueerrors.Errors(err) {
			format, args := e.Msg()
			problems = append(problems, Problem{
				Index:   index,
				UUID:    id,
				Path:    strings.Join(e.Path(), "."),
				Message: fmt.Sprintf(format, args...),
			})
		}
		return problems
	}

	var f dative.Form
	if err := json.Unmarshal(raw, &f); err != nil {
		p := Problem{Index: index, UUID: id, Message: err.Error()}
		var fe *dative.FieldError
		if errors.As(err, &fe) {
			p.Path = fe.Field
			p.Message = fe.Err.Error()
		}
		return []Problem{p}
	}
	return nil
}

// recordUUID returns the UUID a record claims, for labelling problems.
func recordUUID(raw json.RawMessage) string {
	var head struct {
		UUID      *string `json:"UUID"`
		UUIDLower *string `json:"uuid"`
	}
	if json.Unmarshal(raw, &head) != nil {
		return ""
	}
	switch {
	case head.UUID != nil:
		return *head.UUID
	case head.UUIDLower != nil:
		return *head.UUIDLower
	}
	return ""
}
