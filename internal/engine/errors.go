package engine

import (
	"errors"
	"fmt"
)

// RuntimeError represents an error detected while the engine talks to its
// collaborators.
//
// Collaborator failures never reach the reducer. The engine logs them,
// turns recoverable ones into the snapshot's notice field, and returns a
// RuntimeError from the lifecycle call that hit them.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Op is the lifecycle operation that failed ("boot", "save", ...).
	Op string

	// Err is the underlying collaborator error.
	Err error
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeStopped indicates the engine no longer accepts work.
	ErrCodeStopped RuntimeErrorCode = "ENGINE_STOPPED"

	// ErrCodeLocalSave indicates the local store rejected a save. The
	// in-memory state stays authoritative until the next successful save.
	ErrCodeLocalSave RuntimeErrorCode = "LOCAL_SAVE_FAILED"

	// ErrCodeRemoteSync indicates a recoverable remote failure.
	ErrCodeRemoteSync RuntimeErrorCode = "REMOTE_SYNC_FAILED"

	// ErrCodeLoad indicates the stored snapshot could not be read. The
	// default state is used in memory and never saved.
	ErrCodeLoad RuntimeErrorCode = "LOAD_FAILED"
)

// ErrStopped is returned by lifecycle calls made after Shutdown.
var ErrStopped = &RuntimeError{Code: ErrCodeStopped, Op: "dispatch"}

// errSaveBlocked is the cause reported when a save is refused after a
// failed load.
var errSaveBlocked = errors.New("stored snapshot unreadable, save refused")

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Op)
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *RuntimeError) Unwrap() error { return e.Err }

// Is matches RuntimeErrors by code, so errors.Is(err, ErrStopped) works for
// any stopped error.
func (e *RuntimeError) Is(target error) bool {
	var t *RuntimeError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// IsRecoverable returns true if the error leaves local progress intact.
// Uses errors.As to handle wrapped errors.
func IsRecoverable(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeRemoteSync
	}
	return false
}
