package core

import (
	"errors"
	"fmt"
)

var (
	ErrOutOfRange          = errors.New("index out of range")
	ErrFeedbackBuffer      = errors.New("operation not allowed on a feedback buffer")
	ErrNotFeedbackBuffer   = errors.New("feedback operation on a non-feedback buffer")
	ErrFeedbackInitialized = errors.New("vertex buffer already created, cannot init feedback")
	ErrCaptureActive       = errors.New("feedback capture already active")
	ErrCaptureInactive     = errors.New("feedback capture not active")
	ErrSchemaFrozen        = errors.New("attribute schema is frozen after first upload")
	ErrStrideMismatch      = errors.New("data size does not match attribute stride")
	ErrEmptySchema         = errors.New("attribute schema has no attributes")
	ErrNotUploaded         = errors.New("gpu buffer has not been created")
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrAllocation          = errors.New("allocation failed")
	ErrQueueFull           = errors.New("queue is full")
	ErrQueueClosed         = errors.New("queue is closed")
	ErrUnknown             = errors.New("unknown")
)

// Assert panics when cond is false. Reserved for invariants whose violation means a
// structural bug in the caller, never for recoverable conditions.
func Assert(cond bool, msg string, args ...interface{}) {
	if cond {
		return
	}
	text := fmt.Sprintf(msg, args...)
	LogError("assertion failed: %s", text)
	panic("assertion failed: " + text)
}
