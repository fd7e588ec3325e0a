package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dativeconv/internal/testutil"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestValidate_ValidExport(t *testing.T) {
	path := testutil.WriteExport(t, enterForm(), testutil.NewForm(2, "22222222-2222-4222-8222-222222222222"))

	out, _, err := execute(NewValidateCommand(testRootOptions(t, "text")), path)
	require.NoError(t, err)
	assert.Contains(t, out, "✓")
	assert.Contains(t, out, "is valid")
}

func TestValidate_ValidExportJSON(t *testing.T) {
	path := testutil.WriteExport(t, enterForm())

	out, _, err := execute(NewValidateCommand(testRootOptions(t, "json")), path)
	require.NoError(t, err)

	var result ValidationResult
	resp := decodeResponse(t, out, &result)
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, result.Valid)
	assert.Equal(t, path, result.File)
	assert.Empty(t, result.Problems)
}

func TestValidate_Problems(t *testing.T) {
	path := writeFile(t, "forms.json", `[
		{"UUID": "11111111-1111-4111-8111-111111111111", "datetime_entered": "2020-01-01"},
		{"UUID": "11111111-1111-7111-8111-111111111111", "datetime_entered": "2020-01-01"}
	]`)

	out, _, err := execute(NewValidateCommand(testRootOptions(t, "text")), path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ "+path)
	assert.Contains(t, out, "record 1")
	assert.Contains(t, out, "1 problem(s)")
	assert.NotContains(t, out, "record 0")
}

func TestValidate_ProblemsJSON(t *testing.T) {
	path := writeFile(t, "forms.json", `[{"UUID": "11111111-1111-4111-8111-111111111111", "datetime_entered": "2020-13-45"}]`)

	out, _, err := execute(NewValidateCommand(testRootOptions(t, "json")), path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var result ValidationResult
	resp := decodeResponse(t, out, &result)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeLint, resp.Error.Code)
	assert.False(t, result.Valid)
	require.Len(t, result.Problems, 1)
	assert.Equal(t, "datetime_entered", result.Problems[0].Path)
}

func TestValidate_NotAnArray(t *testing.T) {
	path := writeFile(t, "forms.json", `{"forms": []}`)

	_, errOut, err := execute(NewValidateCommand(testRootOptions(t, "text")), path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, errOut, "Error [E005]")
}

func TestValidate_MissingFile(t *testing.T) {
	_, errOut, err := execute(NewValidateCommand(testRootOptions(t, "text")), filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, errOut, "Error [E002]")
}
