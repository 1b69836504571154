package documents

import (
	"context"
	"errors"
)

var (
	ErrNotFound        = errors.New("document not found")
	ErrDocumentMissing = errors.New("audit entry references unknown document")
	ErrInvalidStatus   = errors.New("invalid audit status")
)

// Store persists documents and their audit trail.
type Store interface {
	// WithinTx runs fn in one unit of work. Writes made through tx become
	// visible together when fn returns nil and are discarded otherwise.
	// fn must not call back into the Store.
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
	// GetForOwner returns the document matching both id and ownerID.
	GetForOwner(ctx context.Context, id int64, ownerID string) (Document, error)
	// ListAudit returns the audit entries of a document owned by ownerID, oldest first.
	ListAudit(ctx context.Context, documentID int64, ownerID string) ([]AuditEntry, error)
	// Ping checks connectivity without side effects.
	Ping(ctx context.Context) error
}

// Tx is the write side of a unit of work.
type Tx interface {
	// CreateDocument inserts doc and returns it with its generated ID.
	CreateDocument(ctx context.Context, doc Document) (Document, error)
	// AppendAudit inserts entry and returns it with its generated ID.
	AppendAudit(ctx context.Context, entry AuditEntry) (AuditEntry, error)
}
