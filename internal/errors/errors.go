// Package errors defines the error kinds produced by the build and search
// pipeline: one struct per kind, each carrying enough context to log without
// a second lookup. Every kind that wraps a cause implements Unwrap so
// callers can use errors.As/errors.Is against it; UnsafePathError and
// MissingIndexError carry no cause and have no Unwrap.
package errors

import (
	"fmt"
	"time"
)

// Kind identifies which part of the pipeline raised the error.
type Kind string

const (
	KindUnreadableSource Kind = "unreadable_source"
	KindStagingConflict  Kind = "staging_conflict"
	KindUnsafePath       Kind = "unsafe_path"
	KindPoolFailure      Kind = "pool_failure"
	KindArchiveRead      Kind = "archive_read_error"
	KindMissingIndex     Kind = "missing_index"
)

// UnreadableSourceError wraps a corpus file that could not be opened or
// decoded during ingestion. Logged and skipped; never fatal.
type UnreadableSourceError struct {
	Path       string
	Underlying error
	Timestamp  time.Time
}

func NewUnreadableSourceError(path string, err error) *UnreadableSourceError {
	return &UnreadableSourceError{Path: path, Underlying: err, Timestamp: time.Now()}
}

func (e *UnreadableSourceError) Error() string {
	return fmt.Sprintf("%s: cannot read %s: %v", KindUnreadableSource, e.Path, e.Underlying)
}

func (e *UnreadableSourceError) Unwrap() error { return e.Underlying }

// StagingConflictError reports a stale staging directory blocking a build.
// Pre-build cleanup deletes the directory; failure to delete is fatal.
type StagingConflictError struct {
	Dir        string
	Underlying error
}

func NewStagingConflictError(dir string, err error) *StagingConflictError {
	return &StagingConflictError{Dir: dir, Underlying: err}
}

func (e *StagingConflictError) Error() string {
	return fmt.Sprintf("%s: staging directory %s could not be cleared: %v", KindStagingConflict, e.Dir, e.Underlying)
}

func (e *StagingConflictError) Unwrap() error { return e.Underlying }

// UnsafePathError reports a token that could not be safely embedded as a
// filesystem path component, e.g. a reserved device name that collapses to
// the empty string under safeguard_path. Logged and skipped.
type UnsafePathError struct {
	Token string
}

func NewUnsafePathError(token string) *UnsafePathError {
	return &UnsafePathError{Token: token}
}

func (e *UnsafePathError) Error() string {
	return fmt.Sprintf("%s: token %q has no safe path representation", KindUnsafePath, e.Token)
}

// PoolFailureError reports a worker-pool task that failed irrecoverably.
// Fatal: both pools are force-terminated and the error surfaces to the
// caller after cleanup.
type PoolFailureError struct {
	Pool       string // "cpu" or "io"
	Underlying error
}

func NewPoolFailureError(pool string, err error) *PoolFailureError {
	return &PoolFailureError{Pool: pool, Underlying: err}
}

func (e *PoolFailureError) Error() string {
	return fmt.Sprintf("%s: %s pool worker failed: %v", KindPoolFailure, e.Pool, e.Underlying)
}

func (e *PoolFailureError) Unwrap() error { return e.Underlying }

// ArchiveReadError reports a malformed or unsupported tar encountered while
// searching an archived trie. The affected subtree is treated as empty for
// the current query; the build itself is unaffected.
type ArchiveReadError struct {
	Member     string
	Underlying error
}

func NewArchiveReadError(member string, err error) *ArchiveReadError {
	return &ArchiveReadError{Member: member, Underlying: err}
}

func (e *ArchiveReadError) Error() string {
	return fmt.Sprintf("%s: %s: %v", KindArchiveRead, e.Member, e.Underlying)
}

func (e *ArchiveReadError) Unwrap() error { return e.Underlying }

// MissingIndexError reports that the searcher factory was given a path that
// is neither a directory nor a recognized tar file.
type MissingIndexError struct {
	Path string
}

func NewMissingIndexError(path string) *MissingIndexError {
	return &MissingIndexError{Path: path}
}

func (e *MissingIndexError) Error() string {
	return fmt.Sprintf("%s: %s is neither a directory nor a recognized archive", KindMissingIndex, e.Path)
}

// MultiError aggregates multiple non-fatal errors, e.g. per-file skip
// warnings collected over an ingestion run.
type MultiError struct {
	Errors []error
}

func NewMultiError(errs []error) *MultiError {
	filtered := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	return &MultiError{Errors: filtered}
}

func (e *MultiError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors: %v", len(e.Errors), e.Errors)
}

func (e *MultiError) Unwrap() []error { return e.Errors }
