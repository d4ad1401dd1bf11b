package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrBackendUnavailable marks a generation backend that is not configured.
	ErrBackendUnavailable = errors.New("generation backend unavailable")
	// ErrNotFound is returned by stores for a missing record.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyPublished is returned when a publish update targets a published article.
	ErrAlreadyPublished = errors.New("article already published")
	// ErrLeaseHeld is returned when a stage lease is owned by another run.
	ErrLeaseHeld = errors.New("stage lease held")
)

// SourceError reports one source adapter being unreachable or unparsable.
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source %s: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// BackendError reports a failed generation call.
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend %s: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

// PersistenceError reports a failed store operation.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// ValidationError reports a malformed record caught before persistence.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
