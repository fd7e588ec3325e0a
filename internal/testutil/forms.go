// Package testutil holds fixtures shared by package tests: Dative export
// builders and a deterministic wall clock.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// DefaultEntered is the datetime_entered of a new Form.
const DefaultEntered = "2020-01-01T00:00:00"

// Form builds one Dative export record. Methods return the builder so
// calls chain:
//
//	testutil.NewForm(1, id).Enterer(1, "A", "B").Tag(2, "verbs")
type Form struct {
	fields map[string]any
}

// NewForm returns a record with the two mandatory fields set and every
// list empty.
func NewForm(id int, uuid string) *Form {
	return &Form{fields: map[string]any{
		"id":               id,
		"UUID":             uuid,
		"datetime_entered": DefaultEntered,
		"translations":     []any{},
		"tags":             []any{},
		"files":            []any{},
	}}
}

// Set writes any field as given. A nil value is written as JSON null.
func (f *Form) Set(key string, value any) *Form {
	f.fields[key] = value
	return f
}

// Without removes a field.
func (f *Form) Without(key string) *Form {
	delete(f.fields, key)
	return f
}

// Transcription sets the transcription.
func (f *Form) Transcription(s string) *Form { return f.Set("transcription", s) }

// Entered sets datetime_entered.
func (f *Form) Entered(s string) *Form { return f.Set("datetime_entered", s) }

// Enterer sets the enterer.
func (f *Form) Enterer(id int, first, last string) *Form {
	return f.Set("enterer", user(id, first, last))
}

// Modifier sets the modifier.
func (f *Form) Modifier(id int, first, last string) *Form {
	return f.Set("modifier", user(id, first, last))
}

// Elicitor sets the elicitor and the elicitation date.
func (f *Form) Elicitor(id int, first, last, date string) *Form {
	f.Set("date_elicited", date)
	return f.Set("elicitor", user(id, first, last))
}

// Verifier sets the verifier.
func (f *Form) Verifier(id int, first, last string) *Form {
	return f.Set("verifier", user(id, first, last))
}

// Speaker sets the speaker. An empty dialect is written as null.
func (f *Form) Speaker(id int, first, last, dialect string) *Form {
	var d any
	if dialect != "" {
		d = dialect
	}
	return f.Set("speaker", map[string]any{
		"id":         id,
		"first_name": first,
		"last_name":  last,
		"dialect":    d,
	})
}

// Translation appends a translation.
func (f *Form) Translation(id int, text, grammaticality string) *Form {
	return f.appendTo("translations", map[string]any{
		"id":             id,
		"transcription":  text,
		"grammaticality": grammaticality,
	})
}

// Tag appends a tag.
func (f *Form) Tag(id int, name string) *Form {
	return f.appendTo("tags", map[string]any{"id": id, "name": name})
}

// Record returns the record as a JSON-ready map.
func (f *Form) Record() map[string]any {
	return f.fields
}

func (f *Form) appendTo(key string, v any) *Form {
	list, _ := f.fields[key].([]any)
	f.fields[key] = append(list, v)
	return f
}

func user(id int, first, last string) map[string]any {
	return map[string]any{
		"id":         id,
		"first_name": first,
		"last_name":  last,
		"role":       "contributor",
	}
}

// Export encodes records as a Dative export array.
func Export(forms ...*Form) []byte {
	records := make([]map[string]any, len(forms))
	for i, f := range forms {
		records[i] = f.fields
	}
	data, err := json.Marshal(records)
	if err != nil {
		panic(err)
	}
	return data
}

// WriteExport writes an export to a file in a fresh temporary directory and
// returns its path.
func WriteExport(t testing.TB, forms ...*Form) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "forms.json")
	if err := os.WriteFile(path, Export(forms...), 0o644); err != nil {
		t.Fatalf("write export: %v", err)
	}
	return path
}
