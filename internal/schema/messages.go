package schema

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"

	"github.com/roach88/dativeconv/internal/engine"
)

// Message names the message types a schema can be generated for.
type Message string

const (
	MessageInbound  Message = "inbound"
	MessageOutbound Message = "outbound"
)

// Messages lists the supported message types.
var Messages = []Message{MessageInbound, MessageOutbound}

func reflector() *jsonschema.Reflector {
	return &jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
}

// Reflect returns the JSON Schema of a message type.
func Reflect(m Message) (*jsonschema.Schema, error) {
	var s *jsonschema.Schema
	switch m {
	case MessageInbound:
		s = reflector().Reflect(&engine.Inbound{})
		s.Title = "dativeconv inbound message"
		s.Description = "A message delivered to the converter. convert carries a project UUID and an array of Dative forms."
	case MessageOutbound:
		s = reflector().Reflect(&engine.Outbound{})
		s.Title = "dativeconv outbound message"
		s.Description = "A message emitted by the converter: a bulk write of documents, or an info or error note."
	default:
		return nil, fmt.Errorf("unknown message type %q", m)
	}
	return s, nil
}

// JSON returns the indented JSON Schema of a message type.
func JSON(m Message) ([]byte, error) {
	s, err := Reflect(m)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(s, "", "  ")
}
