package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/dativeconv/internal/schema"
)

// NewSchemaCommand creates the schema command.
func NewSchemaCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema [inbound|outbound]",
		Short: "Print JSON Schema for converter messages",
		Long: `Print the JSON Schema of the messages serve reads (inbound) and
writes (outbound). Without an argument both are printed as one object
keyed by message direction.

The output is always JSON; --format does not apply.`,
		Args:          cobra.MaximumNArgs(1),
		ValidArgs:     []string{string(schema.MessageInbound), string(schema.MessageOutbound)},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchema(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runSchema(opts *RootOptions, args []string, cmd *cobra.Command) error {
	w := cmd.OutOrStdout()

	if len(args) == 1 {
		data, err := schema.JSON(schema.Message(args[0]))
		if err != nil {
			opts.formatter(cmd).Error(ErrCodeGeneric, err.Error(), nil)
			return WrapExitError(ExitCommandError, "unknown message", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	all := make(map[string]json.RawMessage, len(schema.Messages))
	for _, m := range schema.Messages {
		data, err := schema.JSON(m)
		if err != nil {
			return WrapExitError(ExitCommandError, "cannot build schema", err)
		}
		all[string(m)] = data
	}
	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
