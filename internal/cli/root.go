package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/roach88/dativeconv/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigFile string
	LogFormat  string // "text" | "json"

	// ConfigPaths replaces the directories searched for dativeconv.yaml.
	// nil means config.DefaultSearchPaths.
	ConfigPaths []string

	// Now reads the wall clock. nil means time.Now.
	Now func() time.Time
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the dativeconv CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dativeconv",
		Short: "Convert Dative form exports to normalized documents",
		Long: `Convert records exported from the Dative fieldwork database into
normalized interlinear, person, property and modification documents.

Configuration is read from dativeconv.yaml in the working directory or
$HOME/.config/dativeconv, then DATIVECONV_* environment variables, then flags.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "config file (default: search for dativeconv.yaml)")
	cmd.PersistentFlags().StringVar(&opts.LogFormat, "log-format", config.DefaultLogFormat, "log format on stderr (json|text)")

	cmd.AddCommand(NewConvertCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewSchemaCommand(opts))
	cmd.AddCommand(NewInspectCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// Execute runs the CLI with os.Args.
func Execute() error {
	return NewRootCommand().Execute()
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

func (o *RootOptions) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
}

// loadConfig resolves the configuration with the named flags of cmd bound
// to config keys. Flags cmd does not define are skipped.
func (o *RootOptions) loadConfig(cmd *cobra.Command, flagsByKey map[string]string) (*config.Config, error) {
	bindings := map[string]*pflag.Flag{
		config.KeyLogFormat: cmd.Flags().Lookup("log-format"),
	}
	for key, name := range flagsByKey {
		if f := cmd.Flags().Lookup(name); f != nil {
			bindings[key] = f
		}
	}

	opts := []config.Option{config.WithFlags(bindings)}
	if o.ConfigFile != "" {
		opts = append(opts, config.WithFile(o.ConfigFile))
	} else if o.ConfigPaths != nil {
		opts = append(opts, config.WithSearchPaths(o.ConfigPaths...))
	}
	return config.Load(opts...)
}

// newLogger builds the stderr logger: Debug with --verbose, else Info.
func newLogger(opts *RootOptions, format string, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts))
}
