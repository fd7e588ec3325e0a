package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dativeconv/internal/engine"
	"github.com/roach88/dativeconv/internal/testutil"
)

const importKey = "interlinear/" + testFormID + "/modification/importsource/1622548800000/importer%40example.com"

func TestConvert_StoresDocuments(t *testing.T) {
	path := testutil.WriteExport(t, enterForm())
	db := filepath.Join(t.TempDir(), "docs.db")
	opts := testRootOptions(t, "text")

	out, _, err := execute(NewConvertCommand(opts), path,
		"--project", testProject, "--actor", testActor, "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Converted 1 record(s) into 4 document(s) for project "+testProject)
	assert.Contains(t, out, "modification  2")
	assert.Contains(t, out, "Stored in "+db+" (batch 1): 4 inserted, 0 updated, 0 unchanged")
	assert.NotContains(t, out, "warning:")

	// Same export, same import time: nothing changes.
	out, _, err = execute(NewConvertCommand(opts), path,
		"--project", testProject, "--actor", testActor, "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "(batch 2): 0 inserted, 0 updated, 4 unchanged")
}

func TestConvert_JSONWithOut(t *testing.T) {
	path := testutil.WriteExport(t, enterForm())
	outFile := filepath.Join(t.TempDir(), "bulk.json")

	out, _, err := execute(NewConvertCommand(testRootOptions(t, "json")), path,
		"--project", testProject, "--actor", testActor, "--no-store", "--out", outFile)
	require.NoError(t, err)

	var result ConvertResult
	resp := decodeResponse(t, out, &result)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, testProject, result.Project)
	assert.Equal(t, 1, result.Records)
	assert.Equal(t, 4, result.Documents)
	assert.Equal(t, map[string]int{"interlinear": 1, "person": 1, "modification": 2}, result.Kinds)
	assert.Empty(t, result.DB)
	assert.Nil(t, result.Stored)
	assert.Equal(t, outFile, result.Out)

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	var bulk struct {
		Command   string           `json:"command"`
		Project   string           `json:"project"`
		Documents []map[string]any `json:"documents"`
	}
	require.NoError(t, json.Unmarshal(data, &bulk))
	assert.Equal(t, "bulk-write", bulk.Command)
	assert.Equal(t, testProject, bulk.Project)
	require.Len(t, bulk.Documents, 4)

	var ids []string
	for _, d := range bulk.Documents {
		ids = append(ids, d["_id"].(string))
	}
	assert.Contains(t, ids, importKey)
}

func TestConvert_DefaultTimeIsNow(t *testing.T) {
	path := testutil.WriteExport(t, enterForm())
	outFile := filepath.Join(t.TempDir(), "bulk.json")

	_, _, err := execute(NewConvertCommand(testRootOptions(t, "text")), path,
		"--project", testProject, "--actor", testActor, "--no-store", "--out", outFile)
	require.NoError(t, err)

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), importKey)
}

func TestConvert_ExplicitTime(t *testing.T) {
	path := testutil.WriteExport(t, enterForm())
	outFile := filepath.Join(t.TempDir(), "bulk.json")

	_, _, err := execute(NewConvertCommand(testRootOptions(t, "text")), path,
		"--project", testProject, "--actor", testActor, "--time", "1700000000000",
		"--no-store", "--out", outFile)
	require.NoError(t, err)

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "/modification/importsource/1700000000000/importer%40example.com")
	assert.NotContains(t, string(data), "1622548800000")
}

func TestConvert_InvalidProjectWarns(t *testing.T) {
	path := testutil.WriteExport(t, enterForm())

	out, _, err := execute(NewConvertCommand(testRootOptions(t, "json")), path,
		"--project", "not-a-uuid", "--actor", testActor, "--seed", "1,2,3,4", "--no-store")
	require.NoError(t, err)

	var result ConvertResult
	decodeResponse(t, out, &result)
	assert.Equal(t, []string{engine.MsgInvalidProject}, result.Warnings)
	assert.Equal(t, 4, result.Documents)

	generated, err := uuid.Parse(result.Project)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(4), generated.Version())

	// Seeded generation repeats.
	out, _, err = execute(NewConvertCommand(testRootOptions(t, "json")), path,
		"--project", "not-a-uuid", "--actor", testActor, "--seed", "1,2,3,4", "--no-store")
	require.NoError(t, err)
	var again ConvertResult
	decodeResponse(t, out, &again)
	assert.Equal(t, result.Project, again.Project)
}

func TestConvert_NotAnArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forms.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"id": 1}`), 0o644))

	out, errOut, err := execute(NewConvertCommand(testRootOptions(t, "text")), path,
		"--project", testProject, "--no-store")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Empty(t, out)
	assert.Contains(t, errOut, "Error [E003]")
	assert.Contains(t, errOut, "DECODE_PAYLOAD")
}

func TestConvert_NotAnArrayJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forms.json")
	require.NoError(t, os.WriteFile(path, []byte(`"forms"`), 0o644))

	out, _, err := execute(NewConvertCommand(testRootOptions(t, "json")), path,
		"--project", testProject, "--no-store")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var result ConvertResult
	resp := decodeResponse(t, out, &result)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeDecode, resp.Error.Code)
	assert.Zero(t, result.Documents)
}

func TestConvert_MissingFile(t *testing.T) {
	_, errOut, err := execute(NewConvertCommand(testRootOptions(t, "text")),
		filepath.Join(t.TempDir(), "missing.json"), "--no-store")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, errOut, "Error [E002]")
}

func TestConvert_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "dativeconv.yaml")
	db := filepath.Join(dir, "from-config.db")
	cfg := "project: " + testProject + "\n" +
		"actor: " + testActor + "\n" +
		"db: " + db + "\n" +
		"seeds: [1, 2, 3, 4]\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	opts := testRootOptions(t, "json")
	opts.ConfigFile = cfgPath
	path := testutil.WriteExport(t, enterForm())

	out, _, err := execute(NewConvertCommand(opts), path)
	require.NoError(t, err)
	var result ConvertResult
	decodeResponse(t, out, &result)
	assert.Equal(t, testProject, result.Project)
	assert.Equal(t, db, result.DB)
	require.NotNil(t, result.Stored)
	assert.Equal(t, 4, result.Stored.Inserted)

	// A flag beats the file.
	other := "0b9f1c2e-3d4a-4b5c-8d6e-7f8091a2b3c4"
	out, _, err = execute(NewConvertCommand(opts), path, "--project", other, "--no-store")
	require.NoError(t, err)
	decodeResponse(t, out, &result)
	assert.Equal(t, other, result.Project)
}

func TestConvert_BadConfig(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "dativeconv.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("seeds: [1, 2]\n"), 0o644))

	opts := testRootOptions(t, "text")
	opts.ConfigFile = cfgPath
	path := testutil.WriteExport(t, enterForm())

	_, errOut, err := execute(NewConvertCommand(opts), path, "--no-store")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, errOut, "Error [E001]")
	assert.Contains(t, errOut, "seeds")
}

func TestSummarize(t *testing.T) {
	out := []engine.Outbound{
		engine.Info(engine.MsgInitialized),
		engine.Info("Completed Interlinear"),
		engine.Error("DECODE_RECORD: bad record (record=1)"),
		engine.Info("Completed Interlinear"),
		engine.Info(engine.MsgCompleted),
	}
	result := summarize(out)
	assert.Equal(t, 2, result.Records)
	assert.Zero(t, result.Documents)
	assert.Equal(t, []string{"DECODE_RECORD: bad record (record=1)"}, result.Warnings)
}
