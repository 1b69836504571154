package extract

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"tokencount-backend/internal/shared/apperrors"
)

const (
	MimePlainText = "text/plain"
	MimePDF       = "application/pdf"
	MimeDOCX      = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeXLSX      = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Extractor turns raw document bytes into plain text. Implementations must be
// pure: no retained state between calls.
type Extractor interface {
	Extract(data []byte) (string, error)
}

// Func adapts a plain function to Extractor.
type Func func(data []byte) (string, error)

// Extract calls f(data).
func (f Func) Extract(data []byte) (string, error) {
	return f(data)
}

// Registry maps declared media types to extractors. Lookups are exact string
// matches. Register during startup; Extract is safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	extractors map[string]Extractor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{extractors: make(map[string]Extractor)}
}

// Default returns a registry with the built-in formats registered.
func Default() *Registry {
	r := NewRegistry()
	r.Register(MimePlainText, Func(extractPlainText))
	r.Register(MimePDF, Func(extractPDF))
	r.Register(MimeDOCX, Func(extractDOCX))
	r.Register(MimeXLSX, Func(extractXLSX))
	return r
}

// Register binds mediaType to ex, replacing any previous binding.
func (r *Registry) Register(mediaType string, ex Extractor) {
	if ex == nil {
		panic(fmt.Sprintf("extract: nil extractor for %q", mediaType))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.extractors[mediaType] = ex
}

// Lookup returns the extractor bound to mediaType.
func (r *Registry) Lookup(mediaType string) (Extractor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ex, ok := r.extractors[mediaType]
	return ex, ok
}

// MediaTypes lists the registered media types in sorted order.
func (r *Registry) MediaTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.extractors))
	for mt := range r.extractors {
		out = append(out, mt)
	}
	sort.Strings(out)
	return out
}

// Extract runs the extractor registered for mediaType. It fails with
// UnsupportedMediaType before touching data when nothing is registered.
func (r *Registry) Extract(ctx context.Context, mediaType string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	ex, ok := r.Lookup(mediaType)
	if !ok {
		return "", apperrors.UnsupportedMediaType(mediaType)
	}
	text, err := safeExtract(ex, data)
	if err != nil {
		return "", apperrors.Extraction(mediaType, err)
	}
	return text, nil
}

// safeExtract converts a parser panic on malformed input into an error.
func safeExtract(ex Extractor, data []byte) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("extractor panic: %v", rec)
		}
	}()
	return ex.Extract(data)
}
