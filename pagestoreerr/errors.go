// Package pagestoreerr holds the shared error taxonomy used across the
// disk, buffer, and table layers: invalid argument, resource exhaustion,
// I/O failure, and end-of-iteration are distinct kinds, not sentinel
// return values, so callers can distinguish them with errors.Is.
package pagestoreerr

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidArgument marks a programming error: fail fast, never retry.
	ErrInvalidArgument = errors.New("pagestore: invalid argument")

	// ErrAllFramesPinned is returned by FetchPage/NewPage when no frame can
	// be evicted. Non-fatal: the caller decides, typically by releasing
	// pins and retrying.
	ErrAllFramesPinned = errors.New("pagestore: all frames pinned")

	// ErrNoSuchElement is raised by Iterator.Next on an exhausted iterator.
	ErrNoSuchElement = errors.New("pagestore: no such element")

	// ErrIO marks a surfaced disk I/O failure (read/write/fsync).
	ErrIO = errors.New("pagestore: i/o failure")
)

// WrapIO wraps err as an ErrIO-kind failure with page/offset context,
// preserving a stack trace via github.com/pkg/errors and keeping err
// itself reachable through errors.Is/errors.As. Returns nil if err is nil.
func WrapIO(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	tagged := fmt.Errorf("%w: %w", ErrIO, err)
	return errors.Wrapf(tagged, format, args...)
}

// Invalidf builds an ErrInvalidArgument-kind error with a formatted message.
func Invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
