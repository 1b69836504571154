package analysis

import (
	"time"

	"tokencount-backend/internal/documents"
)

// DocumentResponse is the outward-facing representation of a stored analysis.
type DocumentResponse struct {
	ID         int64              `json:"id"`
	UserID     *string            `json:"userId"`
	Content    string             `json:"content"`
	TokenCount int                `json:"tokenCount"`
	Analysis   documents.Analysis `json:"analysis"`
	CreatedAt  time.Time          `json:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt"`
}

// AnalyzeResponse is returned by POST /api/documents/analyze.
type AnalyzeResponse struct {
	Success  bool             `json:"success"`
	Message  string           `json:"message"`
	Analysis DocumentResponse `json:"analysis"`
}

// StatusResponse is the body of a status lookup.
type StatusResponse struct {
	DocumentID int64              `json:"documentId"`
	TokenCount int                `json:"tokenCount"`
	Analysis   documents.Analysis `json:"analysis"`
	CreatedAt  time.Time          `json:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt"`
}

// StatusEnvelope is returned by GET /api/documents/status.
type StatusEnvelope struct {
	Success bool           `json:"success"`
	Status  StatusResponse `json:"status"`
}

// HealthResponse is returned by the liveness routes.
type HealthResponse struct {
	Message             string   `json:"message"`
	SupportedMediaTypes []string `json:"supportedMediaTypes,omitempty"`
}

func toDocumentResponse(doc documents.Document) DocumentResponse {
	var owner *string
	if doc.OwnerID != "" {
		id := doc.OwnerID
		owner = &id
	}
	return DocumentResponse{
		ID:         doc.ID,
		UserID:     owner,
		Content:    doc.Content,
		TokenCount: doc.TokenCount,
		Analysis:   doc.Analysis,
		CreatedAt:  doc.CreatedAt,
		UpdatedAt:  doc.UpdatedAt,
	}
}

func toStatusResponse(view StatusView) StatusResponse {
	return StatusResponse{
		DocumentID: view.DocumentID,
		TokenCount: view.TokenCount,
		Analysis:   view.Analysis,
		CreatedAt:  view.CreatedAt,
		UpdatedAt:  view.UpdatedAt,
	}
}
