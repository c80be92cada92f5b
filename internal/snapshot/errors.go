package snapshot

import (
	"errors"
	"io/fs"
)

// Failure kinds. Callers match them with errors.Is.
var (
	ErrPathNotFound       = errors.New("path not found")
	ErrNotADirectory      = errors.New("not a directory")
	ErrOutsideRoot        = errors.New("path escapes local root")
	ErrAccessDenied       = errors.New("access denied")
	ErrPermissionOrRace   = errors.New("entry vanished or became unreadable during traversal")
	ErrStorageUnavailable = errors.New("snapshot storage unavailable")
)

// Error ties a failure kind to the path it happened on and the underlying
// cause.
type Error struct {
	Kind error
	Path string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Path != "" {
		msg += ": " + e.Path
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return sanitizeErrorMessage(msg)
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(kind error, path string, err error) *Error {
	return &Error{Kind: kind, Path: path, Err: err}
}

// traversalError classifies a stat/list failure seen mid-walk.
func traversalError(rel string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return newError(ErrPermissionOrRace, rel, err)
	}
	return newError(ErrAccessDenied, rel, err)
}
