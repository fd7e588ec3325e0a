package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/dativeconv/internal/schema"
)

// ValidationResult holds lint results for one export.
type ValidationResult struct {
	File     string           `json:"file"`
	Valid    bool             `json:"valid"`
	Problems []schema.Problem `json:"problems,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <forms.json>",
		Short: "Lint an export without converting it",
		Long: `Check every record of a Dative form export against the export schema.

Reports problems per record (missing entry dates, malformed UUIDs, fields
of the wrong type, unparseable dates) without converting anything. A
clean lint means convert will accept every record.

Exit codes:
  0 - Export is valid
  1 - One or more records have problems, or the file is not an array
  2 - Command error (unreadable file)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	data, err := os.ReadFile(path)
	if err != nil {
		return outputValidateError(formatter, ErrCodeInput, fmt.Sprintf("cannot read export: %v", err), ExitCommandError)
	}

	linter, err := schema.NewLinter()
	if err != nil {
		return outputValidateError(formatter, ErrCodeGeneric, err.Error(), ExitCommandError)
	}

	problems, err := linter.Lint(data)
	if err != nil {
		return outputValidateError(formatter, ErrCodeLint, err.Error(), ExitFailure)
	}
	formatter.VerboseLog("Linted %s: %d problem(s)", path, len(problems))

	result := ValidationResult{File: path, Valid: len(problems) == 0, Problems: problems}
	if !result.Valid {
		return outputValidationProblems(formatter, result)
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "✓ %s is valid\n", path)
	return nil
}

// outputValidateError outputs an error that stopped the lint.
func outputValidateError(formatter *OutputFormatter, code, message string, exitCode int) error {
	_ = formatter.Error(code, message, nil)
	return NewExitError(exitCode, fmt.Sprintf("%s: %s", code, message))
}

// outputValidationProblems outputs every problem found.
func outputValidationProblems(formatter *OutputFormatter, result ValidationResult) error {
	summary := fmt.Sprintf("validation failed with %d problem(s)", len(result.Problems))

	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    ErrCodeLint,
				Message: summary,
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}
		return NewExitError(ExitFailure, summary)
	}

	fmt.Fprintf(formatter.Writer, "✗ %s\n\n", result.File)
	for _, p := range result.Problems {
		fmt.Fprintf(formatter.Writer, "  %s\n", p)
	}
	fmt.Fprintf(formatter.Writer, "\n%d problem(s)\n", len(result.Problems))

	return NewExitError(ExitFailure, summary)
}
