package harness

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/dativeconv/internal/ir"
)

// Snapshot renders a scenario's outbound messages as canonical JSON:
//
//	{"messages":[...],"scenario":"<name>"}
//
// Documents inside bulk writes are serialized the way they are sent, so a
// snapshot pins identifiers, versions and values.
func Snapshot(name string, result *Result) ([]byte, error) {
	msgs, err := json.Marshal(result.Messages)
	if err != nil {
		return nil, err
	}
	return ir.MarshalCanonical(map[string]any{
		"scenario": name,
		"messages": json.RawMessage(msgs),
	})
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an existing result against its golden file
// without re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := Snapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}
