package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"tokencount-backend/internal/documents"
	"tokencount-backend/internal/measure"
	"tokencount-backend/internal/shared/apperrors"
	"tokencount-backend/internal/shared/metrics"
	"tokencount-backend/internal/shared/telemetry"
	"tokencount-backend/internal/shared/util"
)

const (
	DefaultMaxInputBytes  = 10 << 20 // 10MB
	DefaultExtractTimeout = 30 * time.Second

	successDetails = "Analysis completed successfully"
)

// TextExtractor resolves a declared media type to plain text.
type TextExtractor interface {
	Extract(ctx context.Context, mediaType string, data []byte) (string, error)
}

// TokenCounter counts tokens in extracted text.
type TokenCounter interface {
	Count(text string) int
}

// StatusView is the owner-facing summary of a stored analysis.
type StatusView struct {
	DocumentID int64
	TokenCount int
	Analysis   documents.Analysis
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Service runs the extract, measure, tokenize, persist pipeline.
type Service struct {
	Extractor      TextExtractor
	Tokenizer      TokenCounter
	Store          documents.Store
	MaxInputBytes  int
	ExtractTimeout time.Duration
	Now            func() time.Time
}

// Analyze extracts text from data, computes its metrics and stores the
// document together with a success audit entry. Nothing is stored unless
// every step succeeds.
func (s *Service) Analyze(ctx context.Context, data []byte, mediaType, ownerID string) (documents.Document, error) {
	start := time.Now()
	doc, err := s.analyze(ctx, data, mediaType, ownerID)
	elapsed := time.Since(start)

	fields := map[string]any{
		"media_type":  mediaType,
		"byte_size":   len(data),
		"sha256":      util.Digest(data),
		"owner_id":    ownerID,
		"duration_ms": float64(elapsed.Microseconds()) / 1000.0,
	}
	if err != nil {
		kind := apperrors.KindOf(err)
		metrics.ObserveAnalysis(metricLabel(mediaType, kind), string(kind), elapsed)
		fields["error_kind"] = kind
		fields["error"] = err.Error()
		telemetry.Error("analysis.failed", fields)
		return documents.Document{}, err
	}

	metrics.ObserveAnalysis(mediaType, "success", elapsed)
	metrics.ObserveTokens(doc.TokenCount)
	fields["document_id"] = doc.ID
	fields["token_count"] = doc.TokenCount
	telemetry.Info("analysis.complete", fields)
	return doc, nil
}

func (s *Service) analyze(ctx context.Context, data []byte, mediaType, ownerID string) (documents.Document, error) {
	if mediaType == "" {
		return documents.Document{}, apperrors.Validation("declared media type is required")
	}
	if data == nil {
		return documents.Document{}, apperrors.Validation(`"file" is required`)
	}
	if limit := s.maxInputBytes(); len(data) > limit {
		return documents.Document{}, apperrors.Validation(fmt.Sprintf("file exceeds maximum size of %d bytes", limit)).
			With("byte_size", len(data))
	}

	text, err := s.extract(ctx, mediaType, data)
	if err != nil {
		return documents.Document{}, err
	}

	var counts measure.Counts
	var tokens int
	var g errgroup.Group
	g.Go(func() error {
		counts = measure.Compute(data, text)
		return nil
	})
	g.Go(func() error {
		tokens = s.Tokenizer.Count(text)
		return nil
	})
	_ = g.Wait()

	now := s.now()
	doc := documents.Document{
		OwnerID:    ownerID,
		Content:    text,
		TokenCount: tokens,
		Analysis: documents.Analysis{
			TokenCount: tokens,
			ByteSize:   counts.ByteSize,
			CharCount:  counts.CharCount,
			WordCount:  counts.WordCount,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	auditOwner := ownerID
	if auditOwner == "" {
		auditOwner = documents.AnonymousOwner
	}

	// Persistence runs to completion even if the caller goes away.
	persistCtx := context.WithoutCancel(ctx)
	err = s.Store.WithinTx(persistCtx, func(tx documents.Tx) error {
		created, err := tx.CreateDocument(persistCtx, doc)
		if err != nil {
			return err
		}
		if _, err := tx.AppendAudit(persistCtx, documents.AuditEntry{
			DocumentID: created.ID,
			OwnerID:    auditOwner,
			Status:     documents.AuditSuccess,
			Details:    successDetails,
			CreatedAt:  now,
		}); err != nil {
			return err
		}
		doc = created
		return nil
	})
	if err != nil {
		return documents.Document{}, apperrors.Store("persist_analysis", err)
	}
	return doc, nil
}

// extract runs the extractor under the configured wall-clock bound.
func (s *Service) extract(ctx context.Context, mediaType string, data []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.extractTimeout())
	defer cancel()

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		text, err := s.Extractor.Extract(ctx, mediaType, data)
		done <- result{text: text, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil && apperrors.KindOf(res.err) == apperrors.KindInternal {
			return "", apperrors.Extraction(mediaType, res.err)
		}
		return res.text, res.err
	case <-ctx.Done():
		return "", apperrors.Extraction(mediaType, ctx.Err()).With("timeout", s.extractTimeout().String())
	}
}

// GetDocumentStatus returns the stored metrics of a document owned by ownerID.
// A document owned by someone else is reported exactly like a missing one.
func (s *Service) GetDocumentStatus(ctx context.Context, documentID int64, ownerID string) (StatusView, error) {
	if ownerID == "" {
		return StatusView{}, apperrors.Validation(`"userId" is required`)
	}
	doc, err := s.Store.GetForOwner(ctx, documentID, ownerID)
	if err != nil {
		if errors.Is(err, documents.ErrNotFound) {
			return StatusView{}, apperrors.NotFound("Document not found")
		}
		return StatusView{}, apperrors.Store("get_document", err)
	}
	return StatusView{
		DocumentID: doc.ID,
		TokenCount: doc.TokenCount,
		Analysis:   doc.Analysis,
		CreatedAt:  doc.CreatedAt,
		UpdatedAt:  doc.UpdatedAt,
	}, nil
}

// AuditTrail returns the audit entries of a document owned by ownerID.
func (s *Service) AuditTrail(ctx context.Context, documentID int64, ownerID string) ([]documents.AuditEntry, error) {
	if ownerID == "" {
		return nil, apperrors.Validation(`"userId" is required`)
	}
	entries, err := s.Store.ListAudit(ctx, documentID, ownerID)
	if err != nil {
		if errors.Is(err, documents.ErrNotFound) {
			return nil, apperrors.NotFound("Document not found")
		}
		return nil, apperrors.Store("list_audit", err)
	}
	return entries, nil
}

// TestConnection probes the document store.
func (s *Service) TestConnection(ctx context.Context) error {
	if err := s.Store.Ping(ctx); err != nil {
		return apperrors.Store("ping", err)
	}
	return nil
}

// metricLabel keeps caller-supplied media types out of metric labels unless a
// registered extractor accepted them.
func metricLabel(mediaType string, kind apperrors.Kind) string {
	switch {
	case mediaType == "":
		return "none"
	case kind == apperrors.KindUnsupportedMediaType || kind == apperrors.KindValidation:
		return "other"
	default:
		return mediaType
	}
}

func (s *Service) maxInputBytes() int {
	if s.MaxInputBytes > 0 {
		return s.MaxInputBytes
	}
	return DefaultMaxInputBytes
}

func (s *Service) extractTimeout() time.Duration {
	if s.ExtractTimeout > 0 {
		return s.ExtractTimeout
	}
	return DefaultExtractTimeout
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}
