package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/dativeconv/internal/config"
	"github.com/roach88/dativeconv/internal/engine"
	"github.com/roach88/dativeconv/internal/ir"
	"github.com/roach88/dativeconv/internal/store"
)

// converterFlags are the flags shared by convert and serve. Values left
// unset fall back to the config file and environment.
type converterFlags struct {
	NoStore bool
}

// converterFlagKeys maps config keys to the flags that override them.
var converterFlagKeys = map[string]string{
	config.KeyProject:     "project",
	config.KeyActor:       "actor",
	config.KeyTime:        "time",
	config.KeySeeds:       "seed",
	config.KeyDB:          "db",
	config.KeyLockTimeout: "lock-timeout",
}

func addConverterFlags(cmd *cobra.Command, f *converterFlags) {
	flags := cmd.Flags()
	flags.String("project", "", "destination project UUID (invalid: a UUID is generated)")
	flags.String("actor", "", "email recorded on import modifications (default "+config.DefaultActor+")")
	flags.Int64("time", 0, "import time in epoch milliseconds (default: now)")
	flags.IntSlice("seed", nil, "four PRNG seeds for generated UUIDs (default: random)")
	flags.String("db", "", "SQLite document store (default "+config.DefaultDB+")")
	flags.Duration("lock-timeout", 0, "how long to wait for the store lock (default 10s)")
	flags.BoolVar(&f.NoStore, "no-store", false, "do not write documents to the store")
}

// converterSession is an engine wired to its configuration and store.
type converterSession struct {
	cfg    *config.Config
	engine *engine.Engine
	writer *recordingWriter
	close  func()
}

// openSession loads the configuration, opens the store unless disabled and
// builds an engine delivering to sink.
func openSession(opts *RootOptions, f *converterFlags, cmd *cobra.Command, sink engine.Sink) (*converterSession, error) {
	formatter := opts.formatter(cmd)

	cfg, err := opts.loadConfig(cmd, converterFlagKeys)
	if err != nil {
		formatter.Error(ErrCodeConfig, err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	logger := newLogger(opts, cfg.LogFormat, cmd.ErrOrStderr())
	if cfg.File != "" {
		formatter.VerboseLog("Using config %s", cfg.File)
	}

	seeds, err := cfg.JobSeeds()
	if err != nil {
		formatter.Error(ErrCodeConfig, err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "cannot draw seeds", err)
	}

	s := &converterSession{cfg: cfg, close: func() {}}
	engOpts := []engine.EngineOption{engine.WithEngineLogger(logger)}
	if !f.NoStore {
		st, err := store.Open(cfg.DB, store.WithLockTimeout(cfg.LockTimeout))
		if err != nil {
			formatter.Error(ErrCodeStore, fmt.Sprintf("failed to open store: %v", err), nil)
			return nil, WrapExitError(ExitCommandError, "failed to open store", err)
		}
		s.close = func() {
			if err := st.Close(); err != nil {
				logger.Error("failed to close store", "error", err)
			}
		}
		s.writer = &recordingWriter{next: st}
		engOpts = append(engOpts, engine.WithWriter(s.writer))
	}

	s.engine = engine.New(engine.Config{
		Project: cfg.Project,
		Actor:   cfg.Actor,
		Time:    cfg.JobTime(opts.now),
		Seeds:   seeds,
	}, sink, engOpts...)
	return s, nil
}

// recordingWriter remembers the outcome of the last successful write.
type recordingWriter struct {
	next engine.BulkWriter
	last *store.BulkResult
}

func (w *recordingWriter) WriteBulk(ctx context.Context, project string, docs []ir.Document) (store.BulkResult, error) {
	res, err := w.next.WriteBulk(ctx, project, docs)
	if err == nil {
		w.last = &res
	}
	return res, err
}

// ConvertOptions holds flags for the convert command.
type ConvertOptions struct {
	*RootOptions
	converterFlags
	Out string // bulk-write JSON file
}

// ConvertResult summarizes one conversion.
type ConvertResult struct {
	Project   string            `json:"project"`
	Records   int               `json:"records"`
	Documents int               `json:"documents"`
	Kinds     map[string]int    `json:"kinds"`
	DB        string            `json:"db,omitempty"`
	Stored    *store.BulkResult `json:"stored,omitempty"`
	Out       string            `json:"out,omitempty"`
	Warnings  []string          `json:"warnings,omitempty"`
}

// NewConvertCommand creates the convert command.
func NewConvertCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ConvertOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "convert <forms.json>",
		Short: "Convert a Dative form export",
		Long: `Convert a Dative form export (a JSON array of forms) into normalized
documents for one project.

Documents are written to the SQLite store and, with --out, to a
bulk-write JSON file. Re-importing the same export leaves stored
documents unchanged.

Exit codes:
  0 - Export converted
  1 - Export rejected (not an array, bad record) or store write failed
  2 - Command error (unreadable file, bad config, store not opened)

Examples:
  dativeconv convert forms.json --project 6ba7b810-9dad-41d1-80b4-00c04fd430c8
  dativeconv convert forms.json --no-store --out documents.json
  dativeconv convert forms.json --seed 1,2,3,4 --time 1622548800000 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(opts, args[0], cmd)
		},
	}

	addConverterFlags(cmd, &opts.converterFlags)
	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "write the bulk-write message to this file")

	return cmd
}

func runConvert(opts *ConvertOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	data, err := os.ReadFile(path)
	if err != nil {
		formatter.Error(ErrCodeInput, fmt.Sprintf("cannot read export: %v", err), nil)
		return WrapExitError(ExitCommandError, "cannot read export", err)
	}
	formatter.VerboseLog("Read %d bytes from %s", len(data), path)

	var out []engine.Outbound
	session, err := openSession(opts.RootOptions, &opts.converterFlags, cmd, engine.Collect(&out))
	if err != nil {
		return err
	}
	defer session.close()

	// The job targets the effective project, so an invalid --project still
	// converts under the generated one.
	msg := engine.Inbound{
		Command: engine.CommandConvert,
		Project: session.engine.Converter().Project().String(),
		Payload: data,
	}
	procErr := session.engine.Process(cmd.Context(), msg)

	result := summarize(out)
	if !opts.NoStore {
		result.DB = session.cfg.DB
		result.Stored = session.writer.last
	}

	if procErr != nil {
		code := ErrCodeStore
		if engine.IsDecodeError(procErr) {
			code = ErrCodeDecode
		}
		formatter.Failure(result, code, procErr.Error())
		return WrapExitError(ExitFailure, "conversion failed", procErr)
	}

	if opts.Out != "" {
		if err := writeBulkFile(opts.Out, out); err != nil {
			formatter.Error(ErrCodeGeneric, err.Error(), nil)
			return WrapExitError(ExitCommandError, "cannot write bulk-write file", err)
		}
		result.Out = opts.Out
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}
	printConvertText(cmd.OutOrStdout(), result)
	return nil
}

// summarize reads a job's outcome off its outbound messages.
func summarize(out []engine.Outbound) ConvertResult {
	result := ConvertResult{Kinds: make(map[string]int)}
	for _, o := range out {
		switch o.Command {
		case engine.CommandBulkWrite:
			result.Project = o.Project
			result.Documents += len(o.Documents)
			for _, d := range o.Documents {
				result.Kinds[string(d.Kind())]++
			}
		case engine.CommandInfo:
			if o.Message == "Completed "+engine.StageInterlinear.String() {
				result.Records++
			}
		case engine.CommandError:
			result.Warnings = append(result.Warnings, o.Message)
		}
	}
	return result
}

func writeBulkFile(path string, out []engine.Outbound) error {
	for _, o := range out {
		if o.Command != engine.CommandBulkWrite {
			continue
		}
		data, err := json.MarshalIndent(o, "", "  ")
		if err != nil {
			return fmt.Errorf("encode bulk write: %w", err)
		}
		return os.WriteFile(path, append(data, '\n'), 0o644)
	}
	return fmt.Errorf("no bulk write to save")
}

func printConvertText(w io.Writer, r ConvertResult) {
	for _, warning := range r.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warning)
	}
	fmt.Fprintf(w, "Converted %d record(s) into %d document(s) for project %s\n", r.Records, r.Documents, r.Project)
	for _, k := range ir.Kinds {
		if n := r.Kinds[string(k)]; n > 0 {
			fmt.Fprintf(w, "  %-13s %d\n", k, n)
		}
	}
	if r.Stored != nil {
		fmt.Fprintf(w, "Stored in %s (batch %d): %d inserted, %d updated, %d unchanged\n",
			r.DB, r.Stored.Batch, r.Stored.Inserted, r.Stored.Updated, r.Stored.Unchanged)
	}
	if r.Out != "" {
		fmt.Fprintf(w, "Wrote %s\n", r.Out)
	}
}
