package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies a failure raised by the analysis core.
type Kind string

const (
	KindValidation           Kind = "VALIDATION_ERROR"
	KindUnsupportedMediaType Kind = "UNSUPPORTED_MEDIA_TYPE"
	KindExtraction           Kind = "EXTRACTION_ERROR"
	KindNotFound             Kind = "NOT_FOUND"
	KindStore                Kind = "STORE_ERROR"
	KindInternal             Kind = "INTERNAL_ERROR"
)

// Error is the typed failure carried through the core. Message is safe to show
// to callers; Cause and Context are for server-side logs only.
type Error struct {
	Kind    Kind
	Message string
	Context map[string]any
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New builds an Error of the given kind.
func New(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

// With attaches a context field and returns the same error.
func (e *Error) With(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

func Validation(msg string) *Error {
	return New(KindValidation, msg, nil)
}

func UnsupportedMediaType(mediaType string) *Error {
	return New(KindUnsupportedMediaType, "unsupported file type", nil).With("media_type", mediaType)
}

func Extraction(mediaType string, cause error) *Error {
	return New(KindExtraction, "failed to extract text from document", cause).With("media_type", mediaType)
}

func NotFound(msg string) *Error {
	return New(KindNotFound, msg, nil)
}

func Store(op string, cause error) *Error {
	return New(KindStore, "document store unavailable", cause).With("op", op)
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	if err == nil {
		return false
	}
	return KindOf(err) == kind
}

// PublicMessage returns the caller-safe message for err.
func PublicMessage(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Kind != KindInternal {
		return appErr.Message
	}
	return "Something went wrong"
}
