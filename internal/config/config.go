// Package config loads dativeconv settings from a YAML file, the
// environment and command-line flags.
//
// Precedence, highest first: flags bound with WithFlags, DATIVECONV_*
// environment variables, the config file, defaults.
package config

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Keys understood in the config file. The environment variable for a key
// is DATIVECONV_ followed by the key in upper case.
const (
	KeyProject     = "project"
	KeyActor       = "actor"
	KeyTime        = "time"
	KeySeeds       = "seeds"
	KeyDB          = "db"
	KeyLogFormat   = "log_format"
	KeyLockTimeout = "lock_timeout"
)

// Defaults.
const (
	DefaultActor       = "nobody@example.com"
	DefaultDB          = "dativeconv.db"
	DefaultLogFormat   = "text"
	DefaultLockTimeout = 10 * time.Second
)

// EnvPrefix prefixes every environment variable read.
const EnvPrefix = "DATIVECONV"

// FileName is the config file name searched for, without extension.
const FileName = "dativeconv"

// Config is the resolved configuration.
type Config struct {
	// Project is the destination project UUID. Not validated here: the
	// converter substitutes a generated project for an invalid one.
	Project string

	// Actor is the email recorded on import modifications.
	Actor string

	// TimeMillis stamps import modifications, in epoch milliseconds.
	// Zero means the time the job starts.
	TimeMillis int64

	// Seeds initialize the fallback UUID generator. nil means draw fresh
	// seeds for every run.
	Seeds []int32

	DB          string
	LogFormat   string
	LockTimeout time.Duration

	// File is the config file that was read, if any.
	File string
}

// Option configures Load.
type Option func(*loader)

type loader struct {
	file  string
	paths []string
	flags map[string]*pflag.Flag
}

// WithFile reads the given config file instead of searching for one.
// The file must exist.
func WithFile(path string) Option {
	return func(l *loader) { l.file = path }
}

// WithSearchPaths replaces the directories searched for dativeconv.yaml.
func WithSearchPaths(dirs ...string) Option {
	return func(l *loader) { l.paths = dirs }
}

// WithFlags binds command-line flags to config keys. Only flags the user
// set take precedence over the file and environment.
func WithFlags(bindings map[string]*pflag.Flag) Option {
	return func(l *loader) { l.flags = bindings }
}

// DefaultSearchPaths returns the working directory and
// $HOME/.config/dativeconv.
func DefaultSearchPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "dativeconv"))
	}
	return paths
}

// Load resolves the configuration.
func Load(opts ...Option) (*Config, error) {
	l := &loader{paths: DefaultSearchPaths()}
	for _, opt := range opts {
		opt(l)
	}

	v := viper.New()
	v.SetDefault(KeyActor, DefaultActor)
	v.SetDefault(KeyDB, DefaultDB)
	v.SetDefault(KeyLogFormat, DefaultLogFormat)
	v.SetDefault(KeyLockTimeout, DefaultLockTimeout)
	v.SetDefault(KeyTime, 0)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for key, flag := range l.flags {
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return nil, fmt.Errorf("bind flag %s: %w", flag.Name, err)
		}
	}

	if l.file != "" {
		v.SetConfigFile(l.file)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		for _, p := range l.paths {
			v.AddConfigPath(p)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if l.file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	seeds, err := parseSeeds(v.Get(KeySeeds))
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", KeySeeds, err)
	}

	cfg := &Config{
		Project:     v.GetString(KeyProject),
		Actor:       v.GetString(KeyActor),
		TimeMillis:  v.GetInt64(KeyTime),
		Seeds:       seeds,
		DB:          v.GetString(KeyDB),
		LogFormat:   v.GetString(KeyLogFormat),
		LockTimeout: v.GetDuration(KeyLockTimeout),
		File:        v.ConfigFileUsed(),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values Load cannot repair.
func (c *Config) Validate() error {
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("config %s: must be text or json, got %q", KeyLogFormat, c.LogFormat)
	}
	if c.LockTimeout <= 0 {
		return fmt.Errorf("config %s: must be positive, got %s", KeyLockTimeout, c.LockTimeout)
	}
	if c.TimeMillis < 0 {
		return fmt.Errorf("config %s: must not be negative, got %d", KeyTime, c.TimeMillis)
	}
	if c.Seeds != nil && len(c.Seeds) != 4 {
		return fmt.Errorf("config %s: need 4 seeds, got %d", KeySeeds, len(c.Seeds))
	}
	return nil
}

// JobTime returns the configured job time, or now() when none is set.
func (c *Config) JobTime(now func() time.Time) time.Time {
	if c.TimeMillis == 0 {
		return now().UTC()
	}
	return time.UnixMilli(c.TimeMillis).UTC()
}

// JobSeeds returns the configured seeds, or four drawn from crypto/rand.
func (c *Config) JobSeeds() ([4]int32, error) {
	var seeds [4]int32
	if c.Seeds != nil {
		copy(seeds[:], c.Seeds)
		return seeds, nil
	}
	var raw [16]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return seeds, fmt.Errorf("draw seeds: %w", err)
	}
	for i := range seeds {
		seeds[i] = int32(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return seeds, nil
}

// parseSeeds accepts a YAML list, a flag slice, or a string of integers
// separated by commas or spaces (the form environment variables take).
func parseSeeds(raw any) ([]int32, error) {
	var parts []string
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case string:
		parts = strings.FieldsFunc(v, func(r rune) bool {
			return r == ',' || r == ' ' || r == '[' || r == ']'
		})
	case []any:
		for _, e := range v {
			parts = append(parts, fmt.Sprint(e))
		}
	case []int:
		for _, e := range v {
			parts = append(parts, strconv.Itoa(e))
		}
	case []string:
		parts = v
	default:
		return nil, fmt.Errorf("unsupported value %v", raw)
	}
	if len(parts) == 0 {
		return nil, nil
	}

	seeds := make([]int32, len(parts))
	for i, p := range parts {
		n, err := strconv.ParseInt(strings.TrimSpace(p), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("seed %d: %w", i, err)
		}
		seeds[i] = int32(n)
	}
	return seeds, nil
}
