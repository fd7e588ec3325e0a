package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/dativeconv/internal/ir"
)

// ErrLocked is returned when another process holds the database lock for
// longer than the lock timeout.
var ErrLocked = errors.New("database is locked by another process")

// BulkResult summarizes one bulk write.
type BulkResult struct {
	// Batch is the sequence number assigned to the write.
	Batch int64 `json:"batch"`

	// Digest identifies the batch content; see ir.BatchDigest.
	Digest string `json:"digest"`

	Inserted  int `json:"inserted"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
}

// WriteBulk stores the documents of one finished job in a single
// transaction.
//
// A document is keyed by project and identifier. Re-importing a document
// whose canonical encoding is unchanged leaves its row alone; a changed
// document is overwritten and its revision incremented. Documents are
// never deleted.
func (s *Store) WriteBulk(ctx context.Context, project string, docs []ir.Document) (BulkResult, error) {
	rows := make([]documentRow, len(docs))
	for i, d := range docs {
		row, err := newDocumentRow(project, d)
		if err != nil {
			return BulkResult{}, fmt.Errorf("write bulk: %w", err)
		}
		rows[i] = row
	}

	digest, err := ir.BatchDigest(project, docs)
	if err != nil {
		return BulkResult{}, fmt.Errorf("write bulk: %w", err)
	}

	var res BulkResult
	err = s.withFileLock(ctx, func() error {
		var txErr error
		res, txErr = s.writeBulkTx(ctx, project, digest, rows)
		return txErr
	})
	if err != nil {
		return BulkResult{}, fmt.Errorf("write bulk: %w", err)
	}
	return res, nil
}

func (s *Store) writeBulkTx(ctx context.Context, project, digest string, rows []documentRow) (BulkResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return BulkResult{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res := BulkResult{Digest: digest}
	r, err := tx.ExecContext(ctx, `
		INSERT INTO batches (project, digest, documents, converter)
		VALUES (?, ?, ?, ?)
	`, project, digest, len(rows), ir.ConverterVersion)
	if err != nil {
		return BulkResult{}, fmt.Errorf("insert batch: %w", err)
	}
	if res.Batch, err = r.LastInsertId(); err != nil {
		return BulkResult{}, fmt.Errorf("insert batch: %w", err)
	}

	for _, row := range rows {
		var existing string
		err := tx.QueryRowContext(ctx,
			`SELECT digest FROM documents WHERE project = ? AND id = ?`,
			row.Project, row.ID,
		).Scan(&existing)

		switch {
		case errors.Is(err, sql.ErrNoRows):
			_, err = tx.ExecContext(ctx, `
				INSERT INTO documents (project, id, kind, version, digest, body, batch)
				VALUES (?, ?, ?, ?, ?, ?, ?)
			`, row.Project, row.ID, row.Kind, row.Version, row.Digest, row.Body, res.Batch)
			if err != nil {
				return BulkResult{}, fmt.Errorf("insert %s: %w", row.ID, err)
			}
			res.Inserted++

		case err != nil:
			return BulkResult{}, fmt.Errorf("read %s: %w", row.ID, err)

		case existing == row.Digest:
			res.Unchanged++

		default:
			_, err = tx.ExecContext(ctx, `
				UPDATE documents
				SET kind = ?, version = ?, digest = ?, body = ?, rev = rev + 1, batch = ?
				WHERE project = ? AND id = ?
			`, row.Kind, row.Version, row.Digest, row.Body, res.Batch, row.Project, row.ID)
			if err != nil {
				return BulkResult{}, fmt.Errorf("update %s: %w", row.ID, err)
			}
			res.Updated++
		}
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE batches SET inserted = ?, updated = ?, unchanged = ? WHERE seq = ?
	`, res.Inserted, res.Updated, res.Unchanged, res.Batch)
	if err != nil {
		return BulkResult{}, fmt.Errorf("update batch: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return BulkResult{}, fmt.Errorf("commit: %w", err)
	}
	return res, nil
}
