package documents

import "time"

// AnonymousOwner is recorded on audit entries when the upload has no owner.
const AnonymousOwner = "anonymous"

// AuditStatus is the lifecycle state of an audit entry.
type AuditStatus string

const (
	AuditPending AuditStatus = "pending"
	AuditSuccess AuditStatus = "success"
	AuditFailed  AuditStatus = "failed"
)

// Valid reports whether s is one of the declared statuses.
func (s AuditStatus) Valid() bool {
	switch s {
	case AuditPending, AuditSuccess, AuditFailed:
		return true
	default:
		return false
	}
}

// Analysis holds the metrics computed for a document. It is stored as JSON.
type Analysis struct {
	TokenCount int `json:"tokenCount"`
	ByteSize   int `json:"byteSize"`
	CharCount  int `json:"charCount"`
	WordCount  int `json:"wordCount"`
}

// Document is the persisted outcome of one successful analysis. OwnerID is
// empty when the upload was anonymous. Records are never updated.
type Document struct {
	ID         int64
	OwnerID    string
	Content    string
	TokenCount int
	Analysis   Analysis
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// AuditEntry is an append-only record of an analysis attempt.
type AuditEntry struct {
	ID         int64
	DocumentID int64
	OwnerID    string
	Status     AuditStatus
	Details    string
	CreatedAt  time.Time
}
