package documents

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-memory implementation of Store.
type MemoryStore struct {
	mu          sync.RWMutex
	nextDocID   int64
	nextAuditID int64
	docs        map[int64]Document
	audit       []AuditEntry
}

// NewMemoryStore constructs a MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs: make(map[int64]Document),
	}
}

// WithinTx holds the write lock for the duration of fn, so readers see either
// none or all of its writes. IDs handed out to a rolled-back fn are not reused.
func (s *MemoryStore) WithinTx(ctx context.Context, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memoryTx{store: s}
	if err := fn(tx); err != nil {
		return err
	}
	for _, doc := range tx.docs {
		s.docs[doc.ID] = doc
	}
	s.audit = append(s.audit, tx.audit...)
	return nil
}

// GetForOwner returns the document matching id and ownerID.
func (s *MemoryStore) GetForOwner(ctx context.Context, id int64, ownerID string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok || ownerID == "" || doc.OwnerID != ownerID {
		return Document{}, ErrNotFound
	}
	return doc, nil
}

// ListAudit returns the audit entries for an owned document, oldest first.
func (s *MemoryStore) ListAudit(ctx context.Context, documentID int64, ownerID string) ([]AuditEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[documentID]
	if !ok || ownerID == "" || doc.OwnerID != ownerID {
		return nil, ErrNotFound
	}
	out := []AuditEntry{}
	for _, entry := range s.audit {
		if entry.DocumentID == documentID {
			out = append(out, entry)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Ping always succeeds for the in-memory store.
func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Counts returns the number of committed documents and audit entries.
func (s *MemoryStore) Counts() (documents int, auditEntries int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs), len(s.audit)
}

type memoryTx struct {
	store *MemoryStore
	docs  []Document
	audit []AuditEntry
}

func (tx *memoryTx) CreateDocument(ctx context.Context, doc Document) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	tx.store.nextDocID++
	doc.ID = tx.store.nextDocID
	tx.docs = append(tx.docs, doc)
	return doc, nil
}

func (tx *memoryTx) AppendAudit(ctx context.Context, entry AuditEntry) (AuditEntry, error) {
	if err := ctx.Err(); err != nil {
		return AuditEntry{}, err
	}
	if !entry.Status.Valid() {
		return AuditEntry{}, ErrInvalidStatus
	}
	if !tx.documentExists(entry.DocumentID) {
		return AuditEntry{}, ErrDocumentMissing
	}
	tx.store.nextAuditID++
	entry.ID = tx.store.nextAuditID
	tx.audit = append(tx.audit, entry)
	return entry, nil
}

func (tx *memoryTx) documentExists(id int64) bool {
	if _, ok := tx.store.docs[id]; ok {
		return true
	}
	for _, doc := range tx.docs {
		if doc.ID == id {
			return true
		}
	}
	return false
}

var _ Store = (*MemoryStore)(nil)
