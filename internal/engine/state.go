package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/roach88/dativeconv/internal/dative"
	"github.com/roach88/dativeconv/internal/ir"
	"github.com/roach88/dativeconv/internal/people"
)

// State is the conversion state of one job.
//
// Pending is read-only: its head is the record mid-pipeline and is popped
// only when the Interlinear stage completes. Every derived document goes
// into Accumulated, keyed by its serialized identifier, so a document
// derived twice is stored once.
type State struct {
	Stage       Stage
	Pending     []dative.Form
	People      *people.Table
	Accumulated map[string]ir.Document

	// Project receives the job's documents.
	Project uuid.UUID

	// Actor is recorded as the author of import modifications.
	Actor string

	// Time stamps import modifications.
	Time time.Time

	// Active is set from ingress until egress.
	Active bool
}

func (s *State) put(docs []ir.Document) {
	for _, d := range docs {
		s.Accumulated[ir.Key(d)] = d
	}
}

func (s *State) pop() {
	s.Pending = s.Pending[1:]
}
