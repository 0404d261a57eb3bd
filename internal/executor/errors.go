package executor

import (
	"errors"
	"fmt"
	"os"
	"syscall"
)

// ErrorReason categorizes why a filesystem operation failed
type ErrorReason int

const (
	ErrorNotFound ErrorReason = iota
	ErrorPermissionDenied
	ErrorFileInUse
	ErrorDiskFull
	ErrorUnknown
)

// String returns a human-readable error reason
func (e ErrorReason) String() string {
	switch e {
	case ErrorNotFound:
		return "File not found"
	case ErrorPermissionDenied:
		return "Permission denied"
	case ErrorFileInUse:
		return "File is in use"
	case ErrorDiskFull:
		return "Disk full"
	case ErrorUnknown:
		return "Unknown error"
	default:
		return "Unspecified error"
	}
}

// OperationError is a categorized failure for one ledger entry
type OperationError struct {
	Path     string
	Reason   ErrorReason
	Original error
}

// Error implements the error interface
func (e *OperationError) Error() string {
	return fmt.Sprintf("%s: %s (%v)", e.Path, e.Reason, e.Original)
}

func (e *OperationError) Unwrap() error {
	return e.Original
}

// Categorize analyzes an error and returns a categorized OperationError
func Categorize(path string, err error) *OperationError {
	if err == nil {
		return nil
	}

	opErr := &OperationError{
		Path:     path,
		Original: err,
		Reason:   ErrorUnknown,
	}

	if os.IsNotExist(err) {
		opErr.Reason = ErrorNotFound
		return opErr
	}

	if os.IsPermission(err) {
		opErr.Reason = ErrorPermissionDenied
		return opErr
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.EACCES, syscall.EPERM:
			opErr.Reason = ErrorPermissionDenied
		case syscall.EBUSY, syscall.ETXTBSY:
			opErr.Reason = ErrorFileInUse
		case syscall.ENOENT:
			opErr.Reason = ErrorNotFound
		case syscall.ENOSPC:
			opErr.Reason = ErrorDiskFull
		}
	}

	return opErr
}
