package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/dativeconv/internal/engine"
)

// maxMessageSize bounds one inbound line. Exports of a few thousand forms
// fit comfortably.
const maxMessageSize = 256 << 20

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	converterFlags
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Convert messages read from stdin",
		Long: `Run the converter as a JSON-lines process.

Each stdin line is one inbound message:
  {"command": "convert", "project": "<uuid>", "payload": [ ...forms... ]}

Each stdout line is one outbound message: info and error notes, and one
bulk-write per finished job. Messages are handled in arrival order; a
payload that arrives while a job is running joins that job's queue.

The command exits when stdin closes and every queued message has been
handled, or on SIGINT/SIGTERM.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	addConverterFlags(cmd, &opts.converterFlags)

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	out := &lineWriter{enc: json.NewEncoder(cmd.OutOrStdout())}

	session, err := openSession(opts.RootOptions, &opts.converterFlags, cmd, out.write)
	if err != nil {
		return err
	}
	defer session.close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Handle signals for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	readErr := make(chan error, 1)
	go func() {
		readErr <- readMessages(cmd.InOrStdin(), session.engine, out.write)
		session.engine.Stop()
	}()

	if err := session.engine.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return WrapExitError(ExitFailure, "engine stopped", err)
	}

	if err := <-readErr; err != nil {
		opts.formatter(cmd).Error(ErrCodeInput, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed reading stdin", err)
	}
	if err := out.err(); err != nil {
		return WrapExitError(ExitCommandError, "failed writing stdout", err)
	}
	return nil
}

// readMessages decodes one inbound message per line and queues it. Lines
// that are not messages are answered on the error channel.
func readMessages(r io.Reader, eng *engine.Engine, reject engine.Sink) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxMessageSize)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		msg, err := engine.DecodeInbound(line)
		if err != nil {
			reject(engine.Error(err.Error()))
			continue
		}
		if !eng.Enqueue(msg) {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read message: %w", err)
	}
	return nil
}

// lineWriter encodes outbound messages one per line. It is called from the
// engine loop and the stdin reader.
type lineWriter struct {
	mu       sync.Mutex
	enc      *json.Encoder
	firstErr error
}

func (w *lineWriter) write(o engine.Outbound) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.firstErr != nil {
		return
	}
	w.firstErr = w.enc.Encode(o)
}

func (w *lineWriter) err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.firstErr
}
