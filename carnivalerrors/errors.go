// Package carnivalerrors defines the error kinds surfaced by the
// installer core and a wrapping Error type built on pkg/errors.
package carnivalerrors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies a failure so callers can distinguish recoverable,
// per-chunk failures from aborting filesystem errors.
type Kind int

const (
	// NotInLibrary means the requested slug has no entry in the local
	// product library cache, or (for update, verify and uninstall) no
	// install record.
	NotInLibrary Kind = iota
	// VersionNotFound means the requested (or latest) version does not
	// exist for the given OS.
	VersionNotFound
	// ManifestFetch means the file or chunk manifest could not be
	// retrieved from the CDN.
	ManifestFetch
	// ManifestDecode means a manifest CSV failed structural decoding.
	ManifestDecode
	// ChunkFetch means an individual chunk request failed.
	ChunkFetch
	// ChunkCorrupted means a fetched chunk's content hash did not match
	// its recorded sha.
	ChunkCorrupted
	// FsPrepare means Phase A tree preparation (mkdir, truncate,
	// delete) failed.
	FsPrepare
	// FsWrite means an append to a target file failed.
	FsWrite
	// FsRead means reading back an installed file (verification) failed.
	FsRead
	// Truncated means the chunk channel closed before the write plan
	// drained.
	Truncated
	// Cancelled means the operation was abandoned by its caller.
	Cancelled
)

func (k Kind) String() string {
	switch k {
	case NotInLibrary:
		return "NotInLibrary"
	case VersionNotFound:
		return "VersionNotFound"
	case ManifestFetch:
		return "ManifestFetch"
	case ManifestDecode:
		return "ManifestDecode"
	case ChunkFetch:
		return "ChunkFetch"
	case ChunkCorrupted:
		return "ChunkCorrupted"
	case FsPrepare:
		return "FsPrepare"
	case FsWrite:
		return "FsWrite"
	case FsRead:
		return "FsRead"
	case Truncated:
		return "Truncated"
	case Cancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// Error pairs a Kind with the operation that produced it and an
// optional wrapped cause.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Err)
}

// Unwrap exposes the wrapped cause to errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// New builds an Error with no wrapped cause.
func New(kind Kind, op string) error {
	return &Error{Kind: kind, Op: op}
}

// Wrap builds an Error wrapping cause with errors.Wrap so a stack trace
// is attached, mirroring the teacher's pkg/errors usage.
func Wrap(cause error, kind Kind, op string) error {
	if cause == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: errors.Wrap(cause, op)}
}

// Is reports whether err is (or wraps) a carnivalerrors.Error of kind.
func Is(err error, kind Kind) bool {
	for err != nil {
		if ce, ok := err.(*Error); ok {
			return ce.Kind == kind
		}
		cause := errors.Cause(err)
		if cause == err {
			return false
		}
		err = cause
	}
	return false
}
