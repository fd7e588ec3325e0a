package harness

import "github.com/roach88/dativeconv/internal/engine"

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every assertion held.
	Pass bool `json:"pass"`

	// Messages holds every outbound message in emission order.
	Messages []engine.Outbound `json:"messages"`

	// Errors contains assertion failures. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Stored maps project to kind to the number of stored documents.
	Stored map[string]map[string]int `json:"stored,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:     true,
		Messages: []engine.Outbound{},
		Errors:   []string{},
		Stored:   make(map[string]map[string]int),
	}
}

// AddError adds an assertion failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// BulkWrites returns the bulk-write messages in emission order.
func (r *Result) BulkWrites() []engine.Outbound {
	var out []engine.Outbound
	for _, m := range r.Messages {
		if m.Command == engine.CommandBulkWrite {
			out = append(out, m)
		}
	}
	return out
}
