package persist

import (
	"errors"
	"fmt"
)

// RemoteError reports a failed remote operation. It is recoverable: the
// local copy is unaffected and remains the fallback of record.
type RemoteError struct {
	Op  string // "fetch", "upsert", "delete"
	Err error
}

// Error implements the error interface.
func (e *RemoteError) Error() string {
	return fmt.Sprintf("cloud %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *RemoteError) Unwrap() error { return e.Err }

// IsRemoteError reports whether err is, or wraps, a *RemoteError.
// Uses errors.As to handle wrapped errors.
func IsRemoteError(err error) bool {
	var re *RemoteError
	return errors.As(err, &re)
}
