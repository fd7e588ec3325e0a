package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/dativeconv/internal/ir"
	"github.com/roach88/dativeconv/internal/store"
)

// BulkWriter persists the documents of a finished job.
// Implemented by *store.Store.
type BulkWriter interface {
	WriteBulk(ctx context.Context, project string, docs []ir.Document) (store.BulkResult, error)
}

// Engine is the single-writer host loop around a Converter.
//
// Inbound messages are queued with Enqueue and handled one at a time by
// Run. A convert message is drained to completion before the next message
// is dequeued, so a payload submitted mid-job waits its turn.
//
// Thread-safety model:
//   - Enqueue(): safe from any goroutine
//   - Run(), Process(): must be called from exactly one goroutine
type Engine struct {
	conv   *Converter
	queue  *messageQueue
	writer BulkWriter
	sink   Sink
	logger *slog.Logger
	outbox []Outbound

	convOpts []Option
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithWriter persists every bulk write before it is forwarded to the sink.
func WithWriter(w BulkWriter) EngineOption {
	return func(e *Engine) { e.writer = w }
}

// WithEngineLogger sets the logger for the engine and its converter.
func WithEngineLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = l
		e.convOpts = append(e.convOpts, WithLogger(l))
	}
}

// WithUUIDGenerator replaces the converter's fallback UUID generator.
func WithUUIDGenerator(g UUIDGenerator) EngineOption {
	return func(e *Engine) { e.convOpts = append(e.convOpts, WithGenerator(g)) }
}

// New creates an Engine. Start-up messages from cfg validation are held
// until the first Run or Process call delivers them to sink.
func New(cfg Config, sink Sink, opts ...EngineOption) *Engine {
	e := &Engine{
		queue:  newMessageQueue(),
		sink:   sink,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.conv = NewConverter(cfg, e.collect, e.convOpts...)
	return e
}

// Converter returns the engine's converter.
func (e *Engine) Converter() *Converter { return e.conv }

// Enqueue submits a message for processing by the Run loop.
// Thread-safe: may be called from any goroutine.
//
// Returns false if the engine has been stopped.
func (e *Engine) Enqueue(msg Inbound) bool {
	return e.queue.Enqueue(msg)
}

// Run starts the single-writer loop.
// Blocks until the context is cancelled or Stop() is called and the queue
// has drained.
//
// Cancellation is observed between messages only: a job that has started
// runs to completion.
func (e *Engine) Run(ctx context.Context) error {
	e.logger.Info("engine starting")
	e.flush(ctx)

	for {
		msg, ok := e.queue.TryDequeue()
		if ok {
			if err := e.Process(ctx, msg); err != nil {
				e.logger.Debug("message not processed", "command", msg.Command, "error", err)
			}
			continue
		}

		select {
		case <-ctx.Done():
			e.logger.Info("engine stopping: context cancelled")
			e.queue.Close()
			return ctx.Err()

		case <-e.queue.Wait():
			// The signal channel closes with the queue, which makes this
			// case fire immediately once Stop has been called.
			if e.queue.Closed() && e.queue.Len() == 0 {
				e.logger.Info("engine stopping: queue closed")
				return nil
			}
		}
	}
}

// Stop closes the queue. Run returns once queued messages are handled.
func (e *Engine) Stop() {
	e.queue.Close()
}

// Process handles one message synchronously: it is received, any job it
// starts is drained, and every resulting message is delivered before
// Process returns. The returned error is the reason a message was dropped
// or a bulk write failed; either has already been reported to the sink.
func (e *Engine) Process(ctx context.Context, msg Inbound) error {
	err := e.conv.Receive(msg)
	if err == nil {
		e.conv.Drain()
	}
	if ferr := e.flush(ctx); ferr != nil && err == nil {
		err = ferr
	}
	return err
}

func (e *Engine) collect(o Outbound) {
	e.outbox = append(e.outbox, o)
}

// flush delivers buffered messages in order, persisting bulk writes first.
func (e *Engine) flush(ctx context.Context) error {
	var firstErr error
	for len(e.outbox) > 0 {
		o := e.outbox[0]
		e.outbox = e.outbox[1:]

		if o.Command == CommandBulkWrite && e.writer != nil {
			res, err := e.writer.WriteBulk(ctx, o.Project, o.Documents)
			if err != nil {
				err = fmt.Errorf("bulk write for project %s: %w", o.Project, err)
				e.logger.Error("bulk write failed", "project", o.Project, "error", err)
				if firstErr == nil {
					firstErr = err
				}
				e.deliver(Error(err.Error()))
			} else {
				e.logger.Info("bulk write stored",
					"project", o.Project,
					"inserted", res.Inserted,
					"updated", res.Updated,
					"unchanged", res.Unchanged,
				)
			}
		}
		e.deliver(o)
	}
	e.outbox = nil
	return firstErr
}

func (e *Engine) deliver(o Outbound) {
	if e.sink != nil {
		e.sink(o)
	}
}
