package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goodRecord = `{
	"id": 1,
	"UUID": "11111111-1111-4111-8111-111111111111",
	"transcription": "kan",
	"comments": null,
	"datetime_entered": "2020-01-01T00:00:00",
	"morpheme_break_ids": [[[12, "go", "V"], [null, "PST", null]]],
	"enterer": {"id": 1, "first_name": "A", "last_name": "B", "role": "admin"},
	"speaker": {"id": 2, "first_name": "C", "last_name": "D", "dialect": null},
	"translations": [{"id": 7, "transcription": "went", "grammaticality": ""}],
	"tags": [],
	"files": [],
	"extra_field": true
}`

func newTestLinter(t *testing.T) *Linter {
	t.Helper()
	l, err := NewLinter()
	require.NoError(t, err)
	return l
}

func TestLint_CleanExport(t *testing.T) {
	l := newTestLinter(t)

	problems, err := l.Lint([]byte("[" + goodRecord + "]"))
	require.NoError(t, err)
	assert.Empty(t, problems)
}

func TestLint_SchemaProblems(t *testing.T) {
	l := newTestLinter(t)

	tests := []struct {
		name     string
		record   string
		wantPath string
	}{
		{
			name:     "missing datetime_entered",
			record:   `{"UUID": "11111111-1111-4111-8111-111111111111"}`,
			wantPath: "datetime_entered",
		},
		{
			name:     "transcription is a number",
			record:   `{"UUID": "11111111-1111-4111-8111-111111111111", "datetime_entered": "2020-01-01", "transcription": 5}`,
			wantPath: "transcription",
		},
		{
			name:     "person without id",
			record:   `{"UUID": "11111111-1111-4111-8111-111111111111", "datetime_entered": "2020-01-01", "enterer": {"first_name": "A", "last_name": "B"}}`,
			wantPath: "enterer",
		},
		{
			name:     "malformed uuid",
			record:   `{"UUID": "xyz", "datetime_entered": "2020-01-01"}`,
			wantPath: "UUID",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			problems, err := l.Lint([]byte("[" + goodRecord + "," + tt.record + "]"))
			require.NoError(t, err)
			require.NotEmpty(t, problems)
			for _, p := range problems {
				assert.Equal(t, 1, p.Index, "only the second record is bad")
			}
			var paths []string
			for _, p := range problems {
				paths = append(paths, p.Path)
			}
			assert.Condition(t, func() bool {
				for _, p := range paths {
					if len(p) >= len(tt.wantPath) && p[:len(tt.wantPath)] == tt.wantPath {
						return true
					}
				}
				return false
			}, "paths %v should include %q", paths, tt.wantPath)
		})
	}
}

func TestLint_DecodeProblems(t *testing.T) {
	l := newTestLinter(t)

	tests := []struct {
		name     string
		record   string
		wantPath string
	}{
		{
			name:     "no uuid at all",
			record:   `{"datetime_entered": "2020-01-01"}`,
			wantPath: "UUID",
		},
		{
			name:     "uuid version 7",
			record:   `{"UUID": "11111111-1111-7111-8111-111111111111", "datetime_entered": "2020-01-01"}`,
			wantPath: "UUID",
		},
		{
			name:     "impossible date",
			record:   `{"UUID": "11111111-1111-4111-8111-111111111111", "datetime_entered": "2020-13-45"}`,
			wantPath: "datetime_entered",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			problems, err := l.Lint([]byte("[" + tt.record + "]"))
			require.NoError(t, err)
			require.Len(t, problems, 1)
			assert.Equal(t, tt.wantPath, problems[0].Path)
		})
	}
}

func TestLint_NotAnArray(t *testing.T) {
	l := newTestLinter(t)
	_, err := l.Lint([]byte(`"not-json-array"`))
	assert.Error(t, err)
}

func TestProblem_String(t *testing.T) {
	p := Problem{Index: 3, UUID: "u", Path: "speaker.id", Message: "incomplete value int"}
	assert.Equal(t, "record 3 (u) speaker.id: incomplete value int", p.String())
	assert.Equal(t, "record 0: bad", Problem{Message: "bad"}.String())
}

func TestJSON_Inbound(t *testing.T) {
	raw, err := JSON(MessageInbound)
	require.NoError(t, err)

	var s map[string]any
	require.NoError(t, json.Unmarshal(raw, &s))
	assert.Equal(t, "object", s["type"])
	assert.Equal(t, false, s["additionalProperties"])
	assert.Equal(t, []any{"command"}, s["required"])

	props, ok := s["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "command")
	assert.Contains(t, props, "project")
	assert.Contains(t, props, "payload")

	command := props["command"].(map[string]any)
	assert.Equal(t, []any{"convert"}, command["enum"])
}

func TestJSON_Outbound(t *testing.T) {
	raw, err := JSON(MessageOutbound)
	require.NoError(t, err)

	var s map[string]any
	require.NoError(t, json.Unmarshal(raw, &s))
	props := s["properties"].(map[string]any)
	assert.Contains(t, props, "documents")
	assert.Contains(t, props, "message")

	command := props["command"].(map[string]any)
	assert.ElementsMatch(t, []any{"bulk-write", "info", "error"}, command["enum"])
}

func TestJSON_Unknown(t *testing.T) {
	_, err := JSON("sideways")
	assert.Error(t, err)
}
