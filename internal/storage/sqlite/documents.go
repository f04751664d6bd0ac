package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sandevgo/guardian/internal/core"
)

type DocumentRepo struct {
	db *sql.DB
}

func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

// Put validates the document and inserts it, marking any active row with
// the same (category, subject_key) as superseded. Rows are never updated
// in place.
func (r *DocumentRepo) Put(ctx context.Context, doc core.Document) (core.PutResult, error) {
	if strings.TrimSpace(doc.Content) == "" {
		return core.PutResult{}, &core.ValidationError{Field: "content", Reason: "is empty"}
	}
	if !core.KnownSource(doc.Source) {
		return core.PutResult{}, &core.ValidationError{Field: "source", Reason: fmt.Sprintf("%q is not a registered provider", doc.Source)}
	}
	if doc.ID == "" {
		doc.ID = core.DocumentID(doc.Category, doc.SubjectKey, doc.RetrievedAt)
	}

	numbersJSON, err := json.Marshal(doc.Numbers)
	if err != nil {
		return core.PutResult{}, fmt.Errorf("failed to marshal numbers: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.PutResult{}, err
	}
	defer tx.Rollback()

	// 1. Supersede the currently active row for this key, if any
	var supersededID string
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM documents WHERE category = ? AND subject_key = ? AND superseded = 0`,
		doc.Category, doc.SubjectKey,
	).Scan(&supersededID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return core.PutResult{}, fmt.Errorf("failed to look up active document: %w", err)
	}
	if supersededID == doc.ID {
		// The identical fact is already the active row; re-ingesting it
		// changes nothing.
		return core.PutResult{ID: doc.ID}, nil
	}
	if supersededID != "" {
		if _, err := tx.ExecContext(ctx, `UPDATE documents SET superseded = 1 WHERE id = ?`, supersededID); err != nil {
			return core.PutResult{}, fmt.Errorf("failed to supersede document %s: %w", supersededID, err)
		}
	}

	// 2. Insert the new row
	_, err = tx.ExecContext(ctx,
		`INSERT INTO documents (id, title, content, source, category, subject_key, numbers, retrieved_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.Title, doc.Content, doc.Source, doc.Category, doc.SubjectKey, string(numbersJSON), doc.RetrievedAt.UTC(),
	)
	if err != nil {
		return core.PutResult{}, fmt.Errorf("failed to insert document: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return core.PutResult{}, err
	}
	return core.PutResult{ID: doc.ID, SupersededID: supersededID}, nil
}

func (r *DocumentRepo) GetByID(ctx context.Context, id string) (core.Document, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, title, content, source, category, subject_key, numbers, retrieved_at
		 FROM documents WHERE id = ?`, id)

	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Document{}, &core.NotFoundError{ID: id}
	}
	if err != nil {
		return core.Document{}, fmt.Errorf("failed to get document %s: %w", id, err)
	}
	return doc, nil
}

func (r *DocumentRepo) ListActive(ctx context.Context, filter core.ListFilter) ([]core.Document, error) {
	query := `SELECT id, title, content, source, category, subject_key, numbers, retrieved_at
	          FROM documents WHERE superseded = 0`
	args := make([]any, 0, 2)

	if filter.Category != "" {
		query += ` AND category = ?`
		args = append(args, filter.Category)
	}
	if filter.MaxAge > 0 {
		query += ` AND retrieved_at >= ?`
		args = append(args, time.Now().UTC().Add(-filter.MaxAge))
	}
	query += ` ORDER BY retrieved_at DESC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []core.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// Purge deletes rows retrieved before the cutoff, superseded or not, and
// returns their ids so the caller can evict vectors from the index.
func (r *DocumentRepo) Purge(ctx context.Context, olderThan time.Time) ([]string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `SELECT id FROM documents WHERE retrieved_at < ?`, olderThan.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to select stale documents: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, tx.Commit()
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM embeddings WHERE doc_id IN (SELECT id FROM documents WHERE retrieved_at < ?)`, olderThan.UTC()); err != nil {
		return nil, fmt.Errorf("failed to purge embeddings: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE retrieved_at < ?`, olderThan.UTC()); err != nil {
		return nil, fmt.Errorf("failed to purge documents: %w", err)
	}

	return ids, tx.Commit()
}

func (r *DocumentRepo) SaveEmbedding(ctx context.Context, docID string, vector []float32, versionTag string) error {
	blob, err := serializeVector(vector)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO embeddings (doc_id, vector, version_tag) VALUES (?, ?, ?)
		 ON CONFLICT(doc_id) DO UPDATE SET vector = excluded.vector, version_tag = excluded.version_tag`,
		docID, blob, versionTag,
	)
	if err != nil {
		return fmt.Errorf("failed to save embedding for %s: %w", docID, err)
	}
	return nil
}

// ListUnembedded returns active documents with no stored vector or a
// vector produced under a different model version tag.
func (r *DocumentRepo) ListUnembedded(ctx context.Context, currentTag string, limit int) ([]core.Document, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT d.id, d.title, d.content, d.source, d.category, d.subject_key, d.numbers, d.retrieved_at
		 FROM documents d
		 LEFT JOIN embeddings e ON e.doc_id = d.id
		 WHERE d.superseded = 0 AND (e.doc_id IS NULL OR e.version_tag != ?)
		 ORDER BY d.retrieved_at ASC
		 LIMIT ?`,
		currentTag, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list unembedded documents: %w", err)
	}
	defer rows.Close()

	var docs []core.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (r *DocumentRepo) LoadEmbeddings(ctx context.Context) ([]core.StoredEmbedding, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT e.doc_id, e.vector, e.version_tag, d.category, d.retrieved_at
		 FROM embeddings e
		 JOIN documents d ON d.id = e.doc_id
		 WHERE d.superseded = 0`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load embeddings: %w", err)
	}
	defer rows.Close()

	var out []core.StoredEmbedding
	for rows.Next() {
		var (
			e    core.StoredEmbedding
			blob []byte
		)
		if err := rows.Scan(&e.DocID, &blob, &e.VersionTag, &e.Category, &e.RetrievedAt); err != nil {
			return nil, err
		}
		if e.Vector, err = deserializeVector(blob); err != nil {
			return nil, fmt.Errorf("embedding for %s: %w", e.DocID, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (core.Document, error) {
	var (
		doc         core.Document
		numbersJSON string
	)
	err := row.Scan(&doc.ID, &doc.Title, &doc.Content, &doc.Source, &doc.Category, &doc.SubjectKey, &numbersJSON, &doc.RetrievedAt)
	if err != nil {
		return core.Document{}, err
	}
	if numbersJSON != "" && numbersJSON != "{}" && numbersJSON != "null" {
		if err := json.Unmarshal([]byte(numbersJSON), &doc.Numbers); err != nil {
			return core.Document{}, fmt.Errorf("failed to unmarshal numbers for %s: %w", doc.ID, err)
		}
	}
	return doc, nil
}
