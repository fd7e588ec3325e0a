package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/dativeconv/internal/dative"
	"github.com/roach88/dativeconv/internal/ir"
	"github.com/roach88/dativeconv/internal/people"
	"github.com/roach88/dativeconv/internal/validate"
)

// PlaceholderActor stands in for a job actor that is not a valid email.
const PlaceholderActor = "nobody@example.com"

// Messages reported on the info and error channels.
const (
	MsgInitialized        = "Converter Initialized"
	MsgReceived           = "Received Dative Forms"
	MsgCompleted          = "Completed Processing"
	MsgInvalidProject     = "The project flag is an invalid UUID."
	MsgInvalidActor       = "The person flag is not a valid email address."
	MsgInvalidProjectUser = "The project and person flags are invalid."
)

// Config holds the start-up flags of a converter.
type Config struct {
	// Project is the destination project UUID. An invalid value is
	// replaced by a UUID drawn from the seeded generator.
	Project string

	// Actor is the email recorded on import modifications. An invalid
	// value is replaced by PlaceholderActor.
	Actor string

	// Time stamps import modifications.
	Time time.Time

	// Seeds initialize the fallback UUID generator.
	Seeds [4]int32
}

// Converter drives conversion jobs one stage at a time.
//
// Converter is not safe for concurrent use. Engine owns one and calls it
// from its Run loop only.
type Converter struct {
	state  State
	gen    UUIDGenerator
	clock  *Clock
	logger *slog.Logger
	sink   Sink
}

// Option configures a Converter.
type Option func(*Converter)

// WithGenerator replaces the seeded fallback UUID generator.
func WithGenerator(g UUIDGenerator) Option {
	return func(c *Converter) { c.gen = g }
}

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Converter) { c.logger = l }
}

// NewConverter validates cfg, applying fallbacks for an invalid project or
// actor, and reports the outcome to sink.
func NewConverter(cfg Config, sink Sink, opts ...Option) *Converter {
	c := &Converter{
		gen:    NewSeededGenerator(cfg.Seeds),
		clock:  NewClock(),
		logger: slog.Default(),
		sink:   sink,
	}
	for _, opt := range opts {
		opt(c)
	}

	project, projectErr := validate.ParseUUID(cfg.Project)
	actorErr := validate.Email(cfg.Actor)

	actor := cfg.Actor
	if actorErr != nil {
		actor = PlaceholderActor
	}
	if projectErr != nil {
		project = c.gen.NewUUID()
	}

	c.state = State{
		Stage:       StageOriginal,
		People:      people.New(people.WithLogger(c.logger)),
		Accumulated: make(map[string]ir.Document),
		Project:     project,
		Actor:       actor,
		Time:        cfg.Time,
	}

	switch {
	case projectErr != nil && actorErr != nil:
		c.logger.Warn("invalid start-up flags", "project_error", projectErr, "actor_error", actorErr)
		c.emit(Error(MsgInvalidProjectUser))
	case projectErr != nil:
		c.logger.Warn("invalid project flag", "error", projectErr, "synthesized", project)
		c.emit(Error(MsgInvalidProject))
	case actorErr != nil:
		c.logger.Warn("invalid actor flag", "error", actorErr)
		c.emit(Error(MsgInvalidActor))
	default:
		c.emit(Info(MsgInitialized))
	}
	return c
}

// State returns the current conversion state. The returned value shares
// maps with the converter and must not be modified.
func (c *Converter) State() State { return c.state }

// Project returns the project documents are currently written to.
func (c *Converter) Project() uuid.UUID { return c.state.Project }

// Actor returns the effective actor.
func (c *Converter) Actor() string { return c.state.Actor }

// Active reports whether a job is in progress.
func (c *Converter) Active() bool { return c.state.Active }

// Receive handles one inbound message. A convert message that fails to
// decode is reported on the error channel and leaves the state untouched.
func (c *Converter) Receive(msg Inbound) error {
	switch msg.Command {
	case CommandConvert:
		if err := c.ingest(msg); err != nil {
			c.logger.Error("message dropped", "error", err)
			c.emit(Error(err.Error()))
			return err
		}
		return nil
	default:
		c.emit(Info("Main command: " + string(msg.Command)))
		return nil
	}
}

func (c *Converter) ingest(msg Inbound) error {
	if msg.Project == "" {
		return newConvertError(ErrCodeDecodeProject, "message has no project", nil)
	}
	project, err := validate.ParseUUID(msg.Project)
	if err != nil {
		return newConvertError(ErrCodeDecodeProject, "invalid project", err)
	}

	forms, err := dative.DecodeForms(msg.Payload)
	if err != nil {
		var recErr *dative.RecordError
		if errors.As(err, &recErr) {
			ce := newConvertError(ErrCodeDecodeRecord, "invalid record", recErr.Err)
			ce.Index = recErr.Index
			return ce
		}
		return newConvertError(ErrCodeDecodePayload, "invalid payload", err)
	}

	if c.state.Active && project != c.state.Project {
		return newConvertError(ErrCodeDecodeProject,
			fmt.Sprintf("job in progress for project %s", c.state.Project), nil)
	}

	// A payload that arrives mid-job joins the back of the queue; documents
	// and known people carry over.
	c.state.Pending = append(c.state.Pending, forms...)
	c.state.Project = project
	c.state.Active = true
	c.logger.Info("job received", "project", project, "records", len(forms))
	c.emit(Info(MsgReceived))
	return nil
}

// Advance performs one tick. It runs the current stage against the head of
// the pending queue, or finalizes the job when the queue is empty. done is
// true once no job is active.
func (c *Converter) Advance() (done bool) {
	if !c.state.Active {
		return true
	}
	c.clock.Next()

	if len(c.state.Pending) == 0 {
		c.finalize()
		return true
	}

	head := &c.state.Pending[0]
	stage := c.state.Stage
	res, err := c.resolve(stage, head)
	if err != nil {
		// The record cannot be represented; drop it and carry on with the
		// rest of the job.
		ce := newConvertError(ErrCodeEncodeDocument, fmt.Sprintf("%s stage failed for %s", stage, head.UUID), err)
		c.logger.Error("record dropped", "error", ce, "uuid", head.UUID)
		c.emit(Error(ce.Error()))
		c.state.pop()
		c.state.Stage = StageOriginal
		return false
	}

	c.state.put(res.docs)
	if res.skipped {
		c.logger.Debug("stage skipped", "stage", stage, "uuid", head.UUID)
		c.emit(Info("Skip " + stage.String()))
	} else {
		c.logger.Debug("stage completed", "stage", stage, "uuid", head.UUID, "documents", len(res.docs))
		c.emit(Info("Completed " + stage.String()))
	}

	if stage == StageInterlinear {
		c.state.pop()
	}
	c.state.Stage = stage.Next()
	return false
}

// Drain advances until the active job completes. It runs a plain loop, so
// stack depth does not grow with the size of the batch.
func (c *Converter) Drain() {
	for !c.Advance() {
	}
}

// finalize emits the accumulated documents as one bulk write and starts a
// fresh state for the next job.
func (c *Converter) finalize() {
	docs := make([]ir.Document, 0, len(c.state.Accumulated))
	keys := make([]string, 0, len(c.state.Accumulated))
	for k := range c.state.Accumulated {
		keys = append(keys, k)
	}
	ir.SortKeys(keys)
	for _, k := range keys {
		docs = append(docs, c.state.Accumulated[k])
	}

	ticks := c.clock.Reset()
	c.logger.Info("job complete",
		"project", c.state.Project,
		"documents", len(docs),
		"people", c.state.People.People(),
		"ticks", ticks,
	)

	c.emit(Outbound{
		Command:   CommandBulkWrite,
		Project:   c.state.Project.String(),
		Documents: docs,
	})
	c.emit(Info(MsgCompleted))

	c.state.Stage = StageOriginal
	c.state.Pending = nil
	c.state.Accumulated = make(map[string]ir.Document)
	c.state.People = people.New(people.WithLogger(c.logger))
	c.state.Active = false
}

func (c *Converter) emit(o Outbound) {
	if c.sink != nil {
		c.sink(o)
	}
}
