package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, FileName+".yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(WithSearchPaths(t.TempDir()))
	require.NoError(t, err)

	assert.Equal(t, DefaultActor, cfg.Actor)
	assert.Equal(t, DefaultDB, cfg.DB)
	assert.Equal(t, DefaultLogFormat, cfg.LogFormat)
	assert.Equal(t, DefaultLockTimeout, cfg.LockTimeout)
	assert.Empty(t, cfg.Project)
	assert.Zero(t, cfg.TimeMillis)
	assert.Nil(t, cfg.Seeds)
	assert.Empty(t, cfg.File)
}

func TestLoad_FromSearchPath(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
project: 6ba7b810-9dad-41d1-80b4-00c04fd430c8
actor: importer@example.com
time: 1577836800000
seeds: [1, 2, 3, -4]
db: /var/lib/dativeconv.db
log_format: json
lock_timeout: 2s
`)

	cfg, err := Load(WithSearchPaths(dir))
	require.NoError(t, err)

	assert.Equal(t, "6ba7b810-9dad-41d1-80b4-00c04fd430c8", cfg.Project)
	assert.Equal(t, "importer@example.com", cfg.Actor)
	assert.Equal(t, int64(1577836800000), cfg.TimeMillis)
	assert.Equal(t, []int32{1, 2, 3, -4}, cfg.Seeds)
	assert.Equal(t, "/var/lib/dativeconv.db", cfg.DB)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 2*time.Second, cfg.LockTimeout)
	assert.Equal(t, path, cfg.File)
}

func TestLoad_ExplicitFileMustExist(t *testing.T) {
	_, err := Load(WithFile(filepath.Join(t.TempDir(), "missing.yaml")))
	assert.Error(t, err)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "actor: file@example.com\nseeds: [1, 2, 3, 4]\n")
	t.Setenv("DATIVECONV_ACTOR", "env@example.com")
	t.Setenv("DATIVECONV_SEEDS", "5,6,7,8")

	cfg, err := Load(WithSearchPaths(dir))
	require.NoError(t, err)
	assert.Equal(t, "env@example.com", cfg.Actor)
	assert.Equal(t, []int32{5, 6, 7, 8}, cfg.Seeds)
}

func TestLoad_FlagsOverrideEverything(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "actor: file@example.com\ndb: file.db\n")
	t.Setenv("DATIVECONV_ACTOR", "env@example.com")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("actor", "", "")
	fs.String("db", "", "")
	fs.IntSlice("seed", nil, "")
	require.NoError(t, fs.Parse([]string{"--actor", "flag@example.com", "--seed", "9,8,7,6"}))

	cfg, err := Load(WithSearchPaths(dir), WithFlags(map[string]*pflag.Flag{
		KeyActor: fs.Lookup("actor"),
		KeyDB:    fs.Lookup("db"),
		KeySeeds: fs.Lookup("seed"),
	}))
	require.NoError(t, err)
	assert.Equal(t, "flag@example.com", cfg.Actor)
	assert.Equal(t, "file.db", cfg.DB, "unset flags do not shadow the file")
	assert.Equal(t, []int32{9, 8, 7, 6}, cfg.Seeds)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"log format", "log_format: xml\n"},
		{"lock timeout", "lock_timeout: 0s\n"},
		{"negative time", "time: -5\n"},
		{"seed count", "seeds: [1, 2]\n"},
		{"seed range", "seeds: [1, 2, 3, 99999999999]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, tt.body)
			_, err := Load(WithSearchPaths(dir))
			assert.Error(t, err)
		})
	}
}

func TestConfig_JobTime(t *testing.T) {
	now := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	clock := func() time.Time { return now }

	assert.Equal(t, now, (&Config{}).JobTime(clock))
	assert.Equal(t, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		(&Config{TimeMillis: 1577836800000}).JobTime(clock))
}

func TestConfig_JobSeeds(t *testing.T) {
	seeds, err := (&Config{Seeds: []int32{1, 2, 3, 4}}).JobSeeds()
	require.NoError(t, err)
	assert.Equal(t, [4]int32{1, 2, 3, 4}, seeds)

	a, err := (&Config{}).JobSeeds()
	require.NoError(t, err)
	b, err := (&Config{}).JobSeeds()
	require.NoError(t, err)
	assert.NotEqual(t, a, b, "unset seeds are drawn fresh")
}
