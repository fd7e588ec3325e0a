package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario is one conversion run with its expectations.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario checks.
	Description string `yaml:"description"`

	// Config holds the converter's start-up flags.
	Config ConverterConfig `yaml:"config"`

	// Messages are delivered to the engine in order.
	Messages []MessageStep `yaml:"messages"`

	// Assertions are checked after every message has been handled.
	Assertions []Assertion `yaml:"assertions"`
}

// ConverterConfig mirrors engine.Config in YAML form.
type ConverterConfig struct {
	Project string  `yaml:"project"`
	Actor   string  `yaml:"actor"`
	Time    int64   `yaml:"time"` // epoch milliseconds
	Seeds   []int32 `yaml:"seeds,omitempty"`

	// UUIDs, when set, replace the seeded generator with a fixed sequence.
	UUIDs []string `yaml:"uuids,omitempty"`
}

// MessageStep is one inbound message.
type MessageStep struct {
	// Raw is passed to the envelope decoder as written. When set, the
	// other fields must be empty.
	Raw string `yaml:"raw,omitempty"`

	Command string `yaml:"command,omitempty"`
	Project string `yaml:"project,omitempty"`

	// Payload is any YAML value; it is re-encoded as JSON.
	Payload any `yaml:"payload,omitempty"`

	// PayloadFile names a JSON file holding the payload.
	PayloadFile string `yaml:"payload_file,omitempty"`
}

// Assertion checks the outcome of a scenario.
type Assertion struct {
	Type string `yaml:"type"`

	// Message is the expected text (message).
	Message string `yaml:"message,omitempty"`

	// Command narrows message to info or error.
	Command string `yaml:"command,omitempty"`

	// Messages is the expected order (message_order).
	Messages []string `yaml:"messages,omitempty"`

	// Code is the expected error code (error_code).
	Code string `yaml:"code,omitempty"`

	// Key is a document key (document, no_document).
	Key string `yaml:"key,omitempty"`

	// Expect holds expected document fields (document).
	// Subset match: only the listed fields are compared.
	Expect map[string]any `yaml:"expect,omitempty"`

	// Kind narrows document_count and names the kind for stored.
	Kind string `yaml:"kind,omitempty"`

	// Project selects the stored project; defaults to the config project.
	Project string `yaml:"project,omitempty"`

	// Count is the expected number (document_count, bulk_writes, stored).
	Count int `yaml:"count"`
}

// Assertion type constants.
const (
	AssertMessage       = "message"
	AssertMessageOrder  = "message_order"
	AssertErrorCode     = "error_code"
	AssertDocument      = "document"
	AssertNoDocument    = "no_document"
	AssertDocumentCount = "document_count"
	AssertBulkWrites    = "bulk_writes"
	AssertStored        = "stored"
)

// LoadScenario reads and parses a scenario YAML file. Payload files are
// resolved against the scenario's directory. Unknown fields are rejected.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	base := filepath.Dir(path)
	for i, step := range scenario.Messages {
		if step.PayloadFile != "" && !filepath.IsAbs(step.PayloadFile) {
			scenario.Messages[i].PayloadFile = filepath.Join(base, step.PayloadFile)
		}
	}
	return scenario, nil
}

// ParseScenario parses scenario YAML. Relative payload files are left as
// written.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Config.Seeds) != 0 && len(s.Config.Seeds) != 4 {
		return fmt.Errorf("config.seeds: want 4 values, got %d", len(s.Config.Seeds))
	}
	if len(s.Messages) == 0 {
		return fmt.Errorf("messages list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Messages {
		if step.Raw != "" {
			if step.Command != "" || step.Project != "" || step.Payload != nil || step.PayloadFile != "" {
				return fmt.Errorf("messages[%d]: raw excludes the other fields", i)
			}
			continue
		}
		if step.Command == "" {
			return fmt.Errorf("messages[%d]: command or raw is required", i)
		}
		if step.Payload != nil && step.PayloadFile != "" {
			return fmt.Errorf("messages[%d]: payload and payload_file are exclusive", i)
		}
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertMessage:
		if a.Message == "" {
			return fmt.Errorf("assertions[%d]: message is required for message", index)
		}
	case AssertMessageOrder:
		if len(a.Messages) == 0 {
			return fmt.Errorf("assertions[%d]: messages list is required for message_order", index)
		}
	case AssertErrorCode:
		if a.Code == "" {
			return fmt.Errorf("assertions[%d]: code is required for error_code", index)
		}
	case AssertDocument, AssertNoDocument:
		if a.Key == "" {
			return fmt.Errorf("assertions[%d]: key is required for %s", index, a.Type)
		}
	case AssertDocumentCount, AssertBulkWrites:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	case AssertStored:
		if a.Kind == "" {
			return fmt.Errorf("assertions[%d]: kind is required for stored", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for stored", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
