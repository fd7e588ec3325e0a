package harness

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/roach88/dativeconv/internal/engine"
	"github.com/roach88/dativeconv/internal/ir"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string           // Assertion type for categorization
	Expected string           // Human-readable expected outcome
	Actual   string           // Human-readable actual outcome
	Messages []engine.Outbound // Outbound messages for context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Messages) > 0 {
		fmt.Fprintf(&buf, "\nMessages:\n")
		for i, m := range e.Messages {
			if m.Command == engine.CommandBulkWrite {
				fmt.Fprintf(&buf, "  [%d] %s %s (%d documents)\n", i+1, m.Command, m.Project, len(m.Documents))
				continue
			}
			fmt.Fprintf(&buf, "  [%d] %s %s\n", i+1, m.Command, m.Message)
		}
	}
	return buf.String()
}

func evaluate(a Assertion, s *Scenario, r *Result) error {
	switch a.Type {
	case AssertMessage:
		return assertMessage(r.Messages, a)
	case AssertMessageOrder:
		return assertMessageOrder(r.Messages, a)
	case AssertErrorCode:
		return assertErrorCode(r.Messages, a)
	case AssertDocument:
		return assertDocument(r, a)
	case AssertNoDocument:
		return assertNoDocument(r, a)
	case AssertDocumentCount:
		return assertDocumentCount(r, a)
	case AssertBulkWrites:
		return assertBulkWrites(r, a)
	case AssertStored:
		return assertStored(s, r, a)
	}
	return fmt.Errorf("unknown assertion type %q", a.Type)
}

// assertMessage checks for an info or error message with the exact text.
func assertMessage(msgs []engine.Outbound, a Assertion) error {
	for _, m := range msgs {
		if m.Command == engine.CommandBulkWrite {
			continue
		}
		if a.Command != "" && string(m.Command) != a.Command {
			continue
		}
		if m.Message == a.Message {
			return nil
		}
	}
	expected := fmt.Sprintf("message %q", a.Message)
	if a.Command != "" {
		expected = fmt.Sprintf("%s message %q", a.Command, a.Message)
	}
	return &AssertionError{
		Type:     AssertMessage,
		Expected: expected,
		Actual:   "not found",
		Messages: msgs,
	}
}

// assertMessageOrder checks that the texts occur in order. Other messages
// may come between them.
func assertMessageOrder(msgs []engine.Outbound, a Assertion) error {
	next := 0
	for _, m := range msgs {
		if next < len(a.Messages) && m.Command != engine.CommandBulkWrite && m.Message == a.Messages[next] {
			next++
		}
	}
	if next == len(a.Messages) {
		return nil
	}
	return &AssertionError{
		Type:     AssertMessageOrder,
		Expected: fmt.Sprintf("messages in order %v", a.Messages),
		Actual:   fmt.Sprintf("%q not found after %v", a.Messages[next], a.Messages[:next]),
		Messages: msgs,
	}
}

func assertErrorCode(msgs []engine.Outbound, a Assertion) error {
	for _, m := range msgs {
		if m.Command == engine.CommandError && strings.HasPrefix(m.Message, a.Code+":") {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertErrorCode,
		Expected: fmt.Sprintf("error message with code %s", a.Code),
		Actual:   "not found",
		Messages: msgs,
	}
}

// findDocument returns the last emitted document with the key.
func findDocument(r *Result, key string) (ir.Document, bool) {
	var found ir.Document
	for _, bw := range r.BulkWrites() {
		for _, d := range bw.Documents {
			if ir.Key(d) == key {
				found = d
			}
		}
	}
	return found, found != nil
}

// assertDocument checks a document exists and that its JSON form carries
// the expected fields (subset semantics).
func assertDocument(r *Result, a Assertion) error {
	d, ok := findDocument(r, a.Key)
	if !ok {
		return &AssertionError{
			Type:     AssertDocument,
			Expected: fmt.Sprintf("document %s", a.Key),
			Actual:   fmt.Sprintf("not in bulk writes; keys: %v", documentKeys(r)),
		}
	}
	if len(a.Expect) == 0 {
		return nil
	}

	actual, err := asJSONMap(d)
	if err != nil {
		return err
	}
	expect, err := asJSONMap(a.Expect)
	if err != nil {
		return err
	}

	for field, want := range expect {
		got, ok := actual[field]
		if !ok {
			return &AssertionError{
				Type:     AssertDocument,
				Expected: fmt.Sprintf("%s.%s = %v", a.Key, field, want),
				Actual:   "field missing",
			}
		}
		if !reflect.DeepEqual(got, want) {
			return &AssertionError{
				Type:     AssertDocument,
				Expected: fmt.Sprintf("%s.%s = %v", a.Key, field, want),
				Actual:   fmt.Sprintf("%v", got),
			}
		}
	}
	return nil
}

func assertNoDocument(r *Result, a Assertion) error {
	if _, ok := findDocument(r, a.Key); ok {
		return &AssertionError{
			Type:     AssertNoDocument,
			Expected: fmt.Sprintf("no document %s", a.Key),
			Actual:   "found in a bulk write",
		}
	}
	return nil
}

func assertDocumentCount(r *Result, a Assertion) error {
	n := 0
	for _, bw := range r.BulkWrites() {
		for _, d := range bw.Documents {
			if a.Kind == "" || string(d.Kind()) == a.Kind {
				n++
			}
		}
	}
	if n == a.Count {
		return nil
	}
	what := "documents"
	if a.Kind != "" {
		what = a.Kind + " documents"
	}
	return &AssertionError{
		Type:     AssertDocumentCount,
		Expected: fmt.Sprintf("%d %s", a.Count, what),
		Actual:   fmt.Sprintf("%d", n),
	}
}

func assertBulkWrites(r *Result, a Assertion) error {
	if n := len(r.BulkWrites()); n != a.Count {
		return &AssertionError{
			Type:     AssertBulkWrites,
			Expected: fmt.Sprintf("%d bulk writes", a.Count),
			Actual:   fmt.Sprintf("%d", n),
			Messages: r.Messages,
		}
	}
	return nil
}

func assertStored(s *Scenario, r *Result, a Assertion) error {
	project := a.Project
	if project == "" {
		project = s.Config.Project
	}
	n := r.Stored[project][a.Kind]
	if n == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertStored,
		Expected: fmt.Sprintf("%d stored %s documents in %s", a.Count, a.Kind, project),
		Actual:   fmt.Sprintf("%d", n),
	}
}

func documentKeys(r *Result) []string {
	var keys []string
	for _, bw := range r.BulkWrites() {
		for _, d := range bw.Documents {
			keys = append(keys, ir.Key(d))
		}
	}
	sort.Strings(keys)
	return keys
}

// asJSONMap round-trips v through JSON so YAML and document values compare
// with the same number and map types.
func asJSONMap(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}
