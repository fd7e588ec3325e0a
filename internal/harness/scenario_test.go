package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalScenario = `
name: minimal
description: "one empty job"
config:
  project: 6ba7b810-9dad-41d1-80b4-00c04fd430c8
  actor: importer@example.com
messages:
  - command: convert
    project: 6ba7b810-9dad-41d1-80b4-00c04fd430c8
    payload: []
assertions:
  - type: bulk_writes
    count: 1
`

func TestParseScenario_Minimal(t *testing.T) {
	s, err := ParseScenario([]byte(minimalScenario))
	require.NoError(t, err)

	assert.Equal(t, "minimal", s.Name)
	assert.Equal(t, "importer@example.com", s.Config.Actor)
	require.Len(t, s.Messages, 1)
	assert.Equal(t, "convert", s.Messages[0].Command)
	assert.Equal(t, []any{}, s.Messages[0].Payload)
	require.Len(t, s.Assertions, 1)
	assert.Equal(t, AssertBulkWrites, s.Assertions[0].Type)
	assert.Equal(t, 1, s.Assertions[0].Count)
}

func TestParseScenario_UnknownFieldRejected(t *testing.T) {
	_, err := ParseScenario([]byte(minimalScenario + "assertion: []\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing name",
			yaml:    "description: d\nmessages: [{command: convert}]\nassertions: [{type: bulk_writes}]\n",
			wantErr: "name is required",
		},
		{
			name:    "missing description",
			yaml:    "name: n\nmessages: [{command: convert}]\nassertions: [{type: bulk_writes}]\n",
			wantErr: "description is required",
		},
		{
			name:    "no messages",
			yaml:    "name: n\ndescription: d\nassertions: [{type: bulk_writes}]\n",
			wantErr: "messages list is required",
		},
		{
			name:    "no assertions",
			yaml:    "name: n\ndescription: d\nmessages: [{command: convert}]\n",
			wantErr: "assertions list is required",
		},
		{
			name:    "three seeds",
			yaml:    "name: n\ndescription: d\nconfig: {seeds: [1, 2, 3]}\nmessages: [{command: convert}]\nassertions: [{type: bulk_writes}]\n",
			wantErr: "config.seeds",
		},
		{
			name:    "raw with command",
			yaml:    "name: n\ndescription: d\nmessages: [{raw: '{}', command: convert}]\nassertions: [{type: bulk_writes}]\n",
			wantErr: "raw excludes",
		},
		{
			name:    "empty step",
			yaml:    "name: n\ndescription: d\nmessages: [{project: p}]\nassertions: [{type: bulk_writes}]\n",
			wantErr: "command or raw is required",
		},
		{
			name:    "payload and file",
			yaml:    "name: n\ndescription: d\nmessages: [{command: convert, payload: [], payload_file: x.json}]\nassertions: [{type: bulk_writes}]\n",
			wantErr: "exclusive",
		},
		{
			name:    "unknown assertion",
			yaml:    "name: n\ndescription: d\nmessages: [{command: convert}]\nassertions: [{type: sideways}]\n",
			wantErr: "unknown assertion type",
		},
		{
			name:    "document without key",
			yaml:    "name: n\ndescription: d\nmessages: [{command: convert}]\nassertions: [{type: document}]\n",
			wantErr: "key is required",
		},
		{
			name:    "stored without kind",
			yaml:    "name: n\ndescription: d\nmessages: [{command: convert}]\nassertions: [{type: stored, count: 1}]\n",
			wantErr: "kind is required",
		},
		{
			name:    "message_order without messages",
			yaml:    "name: n\ndescription: d\nmessages: [{command: convert}]\nassertions: [{type: message_order}]\n",
			wantErr: "messages list is required for message_order",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadScenario_ResolvesPayloadFile(t *testing.T) {
	dir := t.TempDir()
	body := `
name: relative
description: "payload next to the scenario"
messages:
  - command: convert
    project: 6ba7b810-9dad-41d1-80b4-00c04fd430c8
    payload_file: forms/x.json
assertions:
  - type: bulk_writes
    count: 1
`
	path := filepath.Join(dir, "relative.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	s, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "forms", "x.json"), s.Messages[0].PayloadFile)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}
