// Package errs defines the error kinds surfaced by the storage, analytics
// and completion layers.
package errs

import (
	"errors"
	"fmt"
)

// StorageError reports a document that could not be read, written or decoded.
type StorageError struct {
	Op  string // "load", "save", "decode", "encode", "list"
	Key string // document name
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Storage wraps err as a StorageError. A nil err returns nil.
func Storage(op, key string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Key: key, Err: err}
}

// NotFoundError reports an operation on a session or role that does not exist.
type NotFoundError struct {
	Kind string // "session", "role"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// UpstreamKind classifies completion-service failures.
type UpstreamKind string

const (
	UpstreamUnavailable UpstreamKind = "unavailable"
	UpstreamTimeout     UpstreamKind = "timeout"
	UpstreamEmpty       UpstreamKind = "empty"
	UpstreamConfig      UpstreamKind = "config"
)

// UpstreamError reports a failed or unusable completion-service call.
type UpstreamError struct {
	Kind     UpstreamKind
	Provider string
	Detail   string
	Err      error
}

func (e *UpstreamError) Error() string {
	msg := fmt.Sprintf("%s upstream %s", e.Provider, e.Kind)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// IsStorage reports whether err wraps a StorageError.
func IsStorage(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}

// IsNotFound reports whether err wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsUpstream reports whether err wraps an UpstreamError.
func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}
