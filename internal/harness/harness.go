package harness

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/roach88/dativeconv/internal/engine"
	"github.com/roach88/dativeconv/internal/store"
)

// Harness holds the per-scenario execution context.
type Harness struct {
	store  *store.Store
	engine *engine.Engine
	logger *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario gets a fresh store in a temporary directory that is
// removed when Run returns. Execution flow:
//  1. Open the store and build the engine from the scenario config
//  2. Deliver each message and drain the job it starts
//  3. Read back stored document counts
//  4. Evaluate the assertions
//
// The error is non-nil only when the scenario could not be executed; a
// failed assertion is reported through Result.Pass.
func Run(scenario *Scenario) (*Result, error) {
	dir, err := os.MkdirTemp("", "dativeconv-harness-")
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}
	defer os.RemoveAll(dir)

	st, err := store.Open(filepath.Join(dir, "harness.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	result := NewResult()
	h := &Harness{
		store:  st,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	h.engine = engine.New(converterConfig(scenario.Config), engine.Collect(&result.Messages), h.engineOptions(scenario.Config)...)

	ctx := context.Background()
	for i, step := range scenario.Messages {
		if err := h.deliver(ctx, step, result); err != nil {
			return nil, fmt.Errorf("messages[%d]: %w", i, err)
		}
	}

	if err := h.collectStored(ctx, result); err != nil {
		return nil, err
	}

	for _, a := range scenario.Assertions {
		if err := evaluate(a, scenario, result); err != nil {
			result.AddError(err.Error())
		}
	}
	return result, nil
}

func converterConfig(c ConverterConfig) engine.Config {
	cfg := engine.Config{
		Project: c.Project,
		Actor:   c.Actor,
		Time:    time.UnixMilli(c.Time).UTC(),
	}
	copy(cfg.Seeds[:], c.Seeds)
	return cfg
}

func (h *Harness) engineOptions(c ConverterConfig) []engine.EngineOption {
	opts := []engine.EngineOption{
		engine.WithWriter(h.store),
		engine.WithEngineLogger(h.logger),
	}
	if len(c.UUIDs) > 0 {
		opts = append(opts, engine.WithUUIDGenerator(engine.NewFixedGenerator(c.UUIDs...)))
	}
	return opts
}

// deliver hands one message to the engine. Envelope decode failures are
// reported on the outbound channel the way a host would report them.
// Conversion failures are already on the channel and are not returned.
func (h *Harness) deliver(ctx context.Context, step MessageStep, result *Result) error {
	var msg engine.Inbound
	if step.Raw != "" {
		decoded, err := engine.DecodeInbound([]byte(step.Raw))
		if err != nil {
			result.Messages = append(result.Messages, engine.Error(err.Error()))
			return nil
		}
		msg = decoded
	} else {
		payload, err := stepPayload(step)
		if err != nil {
			return err
		}
		msg = engine.Inbound{
			Command: engine.Command(step.Command),
			Project: step.Project,
			Payload: payload,
		}
	}

	if err := h.engine.Process(ctx, msg); err != nil {
		h.logger.Debug("message not converted", "error", err)
	}
	return nil
}

func stepPayload(step MessageStep) (json.RawMessage, error) {
	if step.PayloadFile != "" {
		data, err := os.ReadFile(step.PayloadFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read payload: %w", err)
		}
		return data, nil
	}
	if step.Payload == nil {
		return nil, nil
	}
	data, err := json.Marshal(step.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}
	return data, nil
}

func (h *Harness) collectStored(ctx context.Context, result *Result) error {
	projects, err := h.store.ListProjects(ctx)
	if err != nil {
		return err
	}
	for _, p := range projects {
		counts, err := h.store.CountByKind(ctx, p)
		if err != nil {
			return err
		}
		result.Stored[p] = counts
	}
	return nil
}
