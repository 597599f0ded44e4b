// Package fsx wraps the filesystem calls made by the planner, executor and
// reaper so that every failure is reduced to the same small set of statuses.
package fsx

import (
	"errors"
	"io/fs"
	"os"

	apperrors "dirsort/internal/errors"
)

// Status is the outcome class of a filesystem call.
type Status int

const (
	OK Status = iota
	NotFound
	PermissionDenied
	OtherError
)

func (s Status) String() string {
	switch s {
	case OK:
		return "ok"
	case NotFound:
		return "not found"
	case PermissionDenied:
		return "permission denied"
	default:
		return "error"
	}
}

// Classify maps an error to a Status.
func Classify(err error) Status {
	switch {
	case err == nil:
		return OK
	case errors.Is(err, fs.ErrNotExist), apperrors.IsFileNotFound(err):
		return NotFound
	case errors.Is(err, fs.ErrPermission), apperrors.IsFileAccessDenied(err):
		return PermissionDenied
	default:
		return OtherError
	}
}

// Result pairs a Status with the error that produced it.
type Result struct {
	Status Status
	Err    error
}

// Attempt runs op and classifies its error.
func Attempt(op func() error) Result {
	err := op()
	return Result{Status: Classify(err), Err: err}
}

// OK reports whether the call succeeded.
func (r Result) OK() bool {
	return r.Status == OK
}

// IsCrossDevice reports whether err came from renaming across filesystems.
func IsCrossDevice(err error) bool {
	var linkErr *os.LinkError
	if !errors.As(err, &linkErr) {
		return false
	}
	return isEXDEV(linkErr.Err)
}
