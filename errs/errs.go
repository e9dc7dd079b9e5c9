// Package errs defines the error taxonomy shared by the kernel reader, time
// module, frames module, and query engine. Callers recover the kind with
// errors.Is against the sentinel values; every wrap names the offending
// body, epoch, or file offset.
package errs

import "github.com/pkg/errors"

// Sentinel kinds. Wrapped errors returned by this module satisfy
// errors.Is(err, ErrXxx) via github.com/pkg/errors' Unwrap chain.
var (
	ErrKernelInvalid      = errors.New("kernel invalid")
	ErrKernelTruncated    = errors.New("kernel truncated")
	ErrEpochOutOfRange    = errors.New("epoch out of range")
	ErrNoSegment          = errors.New("no segment")
	ErrTimeError          = errors.New("time error")
	ErrConfigError        = errors.New("config error")
	ErrNotInitialized     = errors.New("not initialized")
	ErrAlreadyInitialized = errors.New("already initialized")
)

// Wrap attaches kind to a descriptive, printf-style message so that the
// returned error both prints a useful diagnostic and satisfies
// errors.Is(result, kind).
func Wrap(kind error, format string, args ...interface{}) error {
	return errors.Wrapf(kind, format, args...)
}
