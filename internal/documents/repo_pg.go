package documents

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// PGStore implements Store using Postgres.
type PGStore struct {
	DB *sql.DB
}

// WithinTx runs fn inside a database transaction, committing on success and
// rolling back on any error or panic. A panic is re-raised after rollback.
func (s *PGStore) WithinTx(ctx context.Context, fn func(tx Tx) error) (err error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				err = errors.Join(err, fmt.Errorf("rollback tx: %w", rbErr))
			}
		}
	}()

	if err = fn(&pgTx{tx: tx}); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetForOwner fetches a document by ID and owner.
func (s *PGStore) GetForOwner(ctx context.Context, id int64, ownerID string) (Document, error) {
	const query = `
SELECT id, user_id, content, token_count, analysis, created_at, updated_at
FROM documents
WHERE id = $1 AND user_id = $2
LIMIT 1`
	var doc Document
	var owner sql.NullString
	var tokenCount sql.NullInt64
	var analysisRaw []byte
	err := s.DB.QueryRowContext(ctx, query, id, ownerID).Scan(
		&doc.ID,
		&owner,
		&doc.Content,
		&tokenCount,
		&analysisRaw,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	if owner.Valid {
		doc.OwnerID = owner.String
	}
	if err := json.Unmarshal(analysisRaw, &doc.Analysis); err != nil {
		return Document{}, fmt.Errorf("decode analysis for document %d: %w", doc.ID, err)
	}
	if tokenCount.Valid {
		doc.TokenCount = int(tokenCount.Int64)
	} else {
		doc.TokenCount = doc.Analysis.TokenCount
	}
	return doc, nil
}

// ListAudit lists the audit trail of an owned document, oldest first.
func (s *PGStore) ListAudit(ctx context.Context, documentID int64, ownerID string) ([]AuditEntry, error) {
	if _, err := s.GetForOwner(ctx, documentID, ownerID); err != nil {
		return nil, err
	}
	const query = `
SELECT id, document_id, user_id, status, details, created_at
FROM analysis_logs
WHERE document_id = $1
ORDER BY id ASC`
	rows, err := s.DB.QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []AuditEntry{}
	for rows.Next() {
		var entry AuditEntry
		var status string
		var details sql.NullString
		if err := rows.Scan(
			&entry.ID,
			&entry.DocumentID,
			&entry.OwnerID,
			&status,
			&details,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		entry.Status = AuditStatus(status)
		if details.Valid {
			entry.Details = details.String
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

// Ping runs a trivial query against the database.
func (s *PGStore) Ping(ctx context.Context) error {
	var one int
	return s.DB.QueryRowContext(ctx, `SELECT 1`).Scan(&one)
}

type pgTx struct {
	tx *sql.Tx
}

func (t *pgTx) CreateDocument(ctx context.Context, doc Document) (Document, error) {
	const query = `
INSERT INTO documents (
    user_id,
    content,
    token_count,
    analysis,
    created_at,
    updated_at
) VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id`

	var owner sql.NullString
	if doc.OwnerID != "" {
		owner = sql.NullString{String: doc.OwnerID, Valid: true}
	}
	analysisJSON, err := json.Marshal(doc.Analysis)
	if err != nil {
		return Document{}, fmt.Errorf("encode analysis: %w", err)
	}

	err = t.tx.QueryRowContext(
		ctx,
		query,
		owner,
		doc.Content,
		doc.TokenCount,
		string(analysisJSON),
		doc.CreatedAt,
		doc.UpdatedAt,
	).Scan(&doc.ID)
	if err != nil {
		return Document{}, fmt.Errorf("insert document: %w", err)
	}
	return doc, nil
}

func (t *pgTx) AppendAudit(ctx context.Context, entry AuditEntry) (AuditEntry, error) {
	if !entry.Status.Valid() {
		return AuditEntry{}, ErrInvalidStatus
	}
	const query = `
INSERT INTO analysis_logs (
    document_id,
    user_id,
    status,
    details,
    created_at
) VALUES ($1, $2, $3, $4, $5)
RETURNING id`

	var details sql.NullString
	if entry.Details != "" {
		details = sql.NullString{String: entry.Details, Valid: true}
	}

	err := t.tx.QueryRowContext(
		ctx,
		query,
		entry.DocumentID,
		entry.OwnerID,
		string(entry.Status),
		details,
		entry.CreatedAt,
	).Scan(&entry.ID)
	if err != nil {
		return AuditEntry{}, fmt.Errorf("insert analysis log: %w", err)
	}
	return entry, nil
}

var _ Store = (*PGStore)(nil)
