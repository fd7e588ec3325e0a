package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/dativeconv/internal/ir"
)

// documentRow is a document in its stored form.
type documentRow struct {
	Project string
	ID      string
	Kind    string
	Version int
	Digest  string
	Body    string
}

// newDocumentRow encodes d as canonical JSON TEXT for storage.
// Uses RFC 8785 canonical JSON so the digest is stable across runs.
func newDocumentRow(project string, d ir.Document) (documentRow, error) {
	body, err := ir.MarshalCanonical(d)
	if err != nil {
		return documentRow{}, fmt.Errorf("marshal %s: %w", ir.Key(d), err)
	}
	digest, err := ir.DocumentDigest(d)
	if err != nil {
		return documentRow{}, err
	}

	var head struct {
		Version int `json:"version"`
	}
	if err := json.Unmarshal(body, &head); err != nil {
		return documentRow{}, fmt.Errorf("marshal %s: %w", ir.Key(d), err)
	}

	return documentRow{
		Project: project,
		ID:      ir.Key(d),
		Kind:    string(d.Kind()),
		Version: head.Version,
		Digest:  digest,
		Body:    string(body),
	}, nil
}
