package engine

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/roach88/dativeconv/internal/ir"
)

// Command names the kind of a message.
type Command string

const (
	// CommandConvert delivers a payload of Dative forms for a project.
	CommandConvert Command = "convert"

	// CommandBulkWrite carries a finished job's documents.
	CommandBulkWrite Command = "bulk-write"

	// CommandInfo carries a progress note.
	CommandInfo Command = "info"

	// CommandError carries a report of a dropped message or fallback.
	CommandError Command = "error"
)

// Inbound is a message delivered to the converter.
type Inbound struct {
	Command Command         `json:"command" jsonschema:"required,enum=convert"`
	Project string          `json:"project,omitempty" jsonschema:"format=uuid"`
	Payload json.RawMessage `json:"payload,omitempty" jsonschema:"type=array"`
}

// DecodeInbound parses one inbound message. Only the envelope is checked
// here; the project and payload are validated when the message is handled.
func DecodeInbound(data []byte) (Inbound, error) {
	var msg Inbound
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return Inbound{}, newConvertError(ErrCodeDecodeEnvelope, "message is not a JSON object", nil)
	}
	if err := json.Unmarshal(trimmed, &msg); err != nil {
		return Inbound{}, newConvertError(ErrCodeDecodeEnvelope, "malformed message", err)
	}
	if msg.Command == "" {
		return Inbound{}, newConvertError(ErrCodeDecodeEnvelope, "message has no command", errors.New("missing command"))
	}
	return msg, nil
}

// Outbound is a message emitted by the converter. Bulk writes carry
// Project and Documents; info and error messages carry Message.
type Outbound struct {
	Command   Command       `json:"command" jsonschema:"required,enum=bulk-write,enum=info,enum=error"`
	Project   string        `json:"project,omitempty" jsonschema:"format=uuid"`
	Documents []ir.Document `json:"documents,omitempty"`
	Message   string        `json:"message,omitempty"`
}

// Info returns an info message.
func Info(msg string) Outbound { return Outbound{Command: CommandInfo, Message: msg} }

// Error returns an error message.
func Error(msg string) Outbound { return Outbound{Command: CommandError, Message: msg} }

// MarshalJSON writes a bulk write with its document array even when the
// job produced nothing, and other messages without one.
func (o Outbound) MarshalJSON() ([]byte, error) {
	if o.Command != CommandBulkWrite {
		type notice struct {
			Command Command `json:"command"`
			Message string  `json:"message"`
		}
		return json.Marshal(notice{Command: o.Command, Message: o.Message})
	}
	type bulk struct {
		Command   Command           `json:"command"`
		Project   string            `json:"project"`
		Documents []json.RawMessage `json:"documents"`
	}
	docs := make([]json.RawMessage, len(o.Documents))
	for i, d := range o.Documents {
		b, err := json.Marshal(d)
		if err != nil {
			return nil, err
		}
		docs[i] = b
	}
	return json.Marshal(bulk{Command: o.Command, Project: o.Project, Documents: docs})
}

// Sink receives outbound messages in emission order.
type Sink func(Outbound)

// Collect returns a Sink that appends to *out.
func Collect(out *[]Outbound) Sink {
	return func(o Outbound) { *out = append(*out, o) }
}
