// Package errors provides standardized error handling for dirsort.
// It defines common error types, constants, and helper functions for consistent
// error creation, wrapping, and handling across the application.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Standard errors package errors that we re-export for convenience
var (
	// Unwrap unwraps an error to access the underlying error
	Unwrap = errors.Unwrap
	// Is reports whether any error in err's chain matches target
	Is = errors.Is
	// As finds the first error in err's chain that matches target
	As = errors.As
)

// Common error constants for frequently occurring errors
var (
	ErrFileNotFound         = NewFileError("file not found", "", FileNotFound, nil)
	ErrFileAccess           = NewFileError("file access denied", "", FileAccessDenied, nil)
	ErrDestinationExists    = NewFileError("destination already exists", "", DestinationExists, nil)
	ErrConfigNotFound       = NewConfigError("config file not found", "", ConfigNotFound, nil)
	ErrInvalidConfig        = NewConfigError("invalid configuration", "", InvalidConfig, nil)
	ErrUnsupportedConfigExt = NewConfigError("unsupported config file extension", "", InvalidConfig, nil)
)

// ErrorKind represents the kind of error
type ErrorKind int

// Error kinds
const (
	Unknown ErrorKind = iota
	// File error kinds
	FileNotFound
	FileAccessDenied
	InvalidPath
	FileOperationFailed
	DestinationExists
	// Config error kinds
	InvalidConfig
	ConfigNotFound
	// Lock error kinds
	LockHeld
	LockIOFailed
)

// ApplicationError is the base error type for all application errors
type ApplicationError struct {
	msg  string
	err  error
	kind ErrorKind
}

// Error returns the error message
func (e *ApplicationError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

// Unwrap returns the wrapped error
func (e *ApplicationError) Unwrap() error {
	return e.err
}

// Kind returns the kind of error
func (e *ApplicationError) Kind() ErrorKind {
	return e.kind
}

// FileError represents errors related to file operations
type FileError struct {
	ApplicationError
	path string
}

// NewFileError creates a new file error
func NewFileError(msg string, path string, kind ErrorKind, err error) *FileError {
	return &FileError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: kind,
		},
		path: path,
	}
}

// Error returns the file error message
func (e *FileError) Error() string {
	if e.path != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: %s: %v", e.msg, e.path, e.err)
		}
		return fmt.Sprintf("%s: %s", e.msg, e.path)
	}
	return e.ApplicationError.Error()
}

// Is matches two file errors of the same kind, so callers can compare a
// path-carrying error against the package-level sentinels.
func (e *FileError) Is(target error) bool {
	other, ok := target.(*FileError)
	if !ok {
		return false
	}
	return other.path == "" && other.kind == e.kind
}

// Path returns the file path associated with the error
func (e *FileError) Path() string {
	return e.path
}

// ConfigError represents errors related to configuration
type ConfigError struct {
	ApplicationError
	param string
}

// NewConfigError creates a new configuration error
func NewConfigError(msg string, param string, kind ErrorKind, err error) *ConfigError {
	return &ConfigError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: kind,
		},
		param: param,
	}
}

// Error returns the config error message
func (e *ConfigError) Error() string {
	if e.param != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: %s: %v", e.msg, e.param, e.err)
		}
		return fmt.Sprintf("%s: %s", e.msg, e.param)
	}
	return e.ApplicationError.Error()
}

// Is matches config errors of the same kind.
func (e *ConfigError) Is(target error) bool {
	other, ok := target.(*ConfigError)
	if !ok {
		return false
	}
	return other.param == "" && other.msg == e.msg && other.kind == e.kind
}

// Param returns the configuration parameter associated with the error
func (e *ConfigError) Param() string {
	return e.param
}

// LockError reports a problem with the run lock.
type LockError struct {
	ApplicationError
	sentinel string
	pid      string
}

// NewLockError creates a new lock error
func NewLockError(msg, sentinel, pid string, kind ErrorKind, err error) *LockError {
	return &LockError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: kind,
		},
		sentinel: sentinel,
		pid:      pid,
	}
}

// Error returns the lock error message
func (e *LockError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.msg, e.sentinel)
	if e.pid != "" {
		msg += fmt.Sprintf(" (pid %s)", e.pid)
	}
	if e.err != nil {
		msg += fmt.Sprintf(": %v", e.err)
	}
	return msg
}

// Sentinel returns the sentinel file path
func (e *LockError) Sentinel() string {
	return e.sentinel
}

// PID returns the process identifier recorded by the lock owner
func (e *LockError) PID() string {
	return e.pid
}

// Issue is a single configuration validation problem.
type Issue struct {
	Field   string
	Message string
}

func (i Issue) String() string {
	if i.Field == "" {
		return i.Message
	}
	return fmt.Sprintf("%s: %s", i.Field, i.Message)
}

// ValidationError collects every issue found while validating a config record.
type ValidationError struct {
	Issues []Issue
}

// Error returns all issues joined on one line
func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.String())
	}
	return "invalid configuration: " + strings.Join(parts, "; ")
}

// Is lets a ValidationError match ErrInvalidConfig.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidConfig
}

// New creates a new error with a message
func New(msg string) error {
	return &ApplicationError{
		msg:  msg,
		kind: Unknown,
	}
}

// Newf creates a new error with a formatted message
func Newf(format string, args ...interface{}) error {
	return &ApplicationError{
		msg:  fmt.Sprintf(format, args...),
		kind: Unknown,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &ApplicationError{
		msg:  msg,
		err:  err,
		kind: Unknown,
	}
}

// Wrapf wraps an existing error with additional formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &ApplicationError{
		msg:  fmt.Sprintf(format, args...),
		err:  err,
		kind: Unknown,
	}
}

// IsFileNotFound checks if the error is a file not found error
func IsFileNotFound(err error) bool {
	var fileErr *FileError
	if errors.As(err, &fileErr) {
		return fileErr.Kind() == FileNotFound
	}
	return false
}

// IsFileAccessDenied checks if the error is a file access denied error
func IsFileAccessDenied(err error) bool {
	var fileErr *FileError
	if errors.As(err, &fileErr) {
		return fileErr.Kind() == FileAccessDenied
	}
	return false
}

// IsInvalidConfig checks if the error is an invalid configuration error
func IsInvalidConfig(err error) bool {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return true
	}
	var configErr *ConfigError
	if errors.As(err, &configErr) {
		return configErr.Kind() == InvalidConfig
	}
	return false
}

// IsLockHeld checks if the error reports a lock held by another run
func IsLockHeld(err error) bool {
	var lockErr *LockError
	if errors.As(err, &lockErr) {
		return lockErr.Kind() == LockHeld
	}
	return false
}
