package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// StoredDocument is a document as read back from the store.
type StoredDocument struct {
	Project string
	ID      string
	Kind    string
	Version int
	Rev     int
	Digest  string
	Batch   int64
	Body    json.RawMessage
}

// Batch is the record of one bulk write.
type Batch struct {
	Seq       int64  `json:"seq"`
	Project   string `json:"project"`
	Digest    string `json:"digest"`
	Documents int    `json:"documents"`
	Inserted  int    `json:"inserted"`
	Updated   int    `json:"updated"`
	Unchanged int    `json:"unchanged"`
	Converter string `json:"converter"`
}

// ReadDocument retrieves a single document by project and identifier.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadDocument(ctx context.Context, project, id string) (StoredDocument, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT project, id, kind, version, rev, digest, batch, body
		FROM documents
		WHERE project = ? AND id = ?
	`, project, id)

	return scanDocument(row)
}

// ReadDocuments returns the documents of a project, optionally limited to
// one kind. Results are ordered by identifier.
func (s *Store) ReadDocuments(ctx context.Context, project, kind string) ([]StoredDocument, error) {
	query := `
		SELECT project, id, kind, version, rev, digest, batch, body
		FROM documents
		WHERE project = ?`
	args := []any{project}
	if kind != "" {
		query += ` AND kind = ?`
		args = append(args, kind)
	}
	query += ` ORDER BY id COLLATE BINARY ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	docs := []StoredDocument{}
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return docs, nil
}

// CountByKind returns the number of stored documents per kind for a project.
func (s *Store) CountByKind(ctx context.Context, project string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT kind, COUNT(*)
		FROM documents
		WHERE project = ?
		GROUP BY kind
	`, project)
	if err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[kind] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate counts: %w", err)
	}
	return counts, nil
}

// ListProjects returns every project with stored documents, sorted.
func (s *Store) ListProjects(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT project FROM documents ORDER BY project COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	projects := []string{}
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}
	return projects, nil
}

// ReadBatches returns the bulk writes recorded for a project, oldest first.
func (s *Store) ReadBatches(ctx context.Context, project string) ([]Batch, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, project, digest, documents, inserted, updated, unchanged, converter
		FROM batches
		WHERE project = ?
		ORDER BY seq ASC
	`, project)
	if err != nil {
		return nil, fmt.Errorf("query batches: %w", err)
	}
	defer rows.Close()

	batches := []Batch{}
	for rows.Next() {
		var b Batch
		if err := rows.Scan(&b.Seq, &b.Project, &b.Digest, &b.Documents,
			&b.Inserted, &b.Updated, &b.Unchanged, &b.Converter); err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		batches = append(batches, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate batches: %w", err)
	}
	return batches, nil
}

// scanner is implemented by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (StoredDocument, error) {
	var d StoredDocument
	var body string
	if err := row.Scan(&d.Project, &d.ID, &d.Kind, &d.Version, &d.Rev, &d.Digest, &d.Batch, &body); err != nil {
		if err == sql.ErrNoRows {
			return StoredDocument{}, err
		}
		return StoredDocument{}, fmt.Errorf("scan document: %w", err)
	}
	d.Body = json.RawMessage(body)
	return d, nil
}
