package common

import "errors"

// Error kinds from the apply state machine. All are programmer/data
// errors: the engine validates before mutating and leaves state
// unchanged on failure, then surfaces the error to the caller. There is
// no retry or backoff inside the core.
var (
	// ErrInvalidSide is raised when a side character is required but is
	// not in {A, B}.
	ErrInvalidSide = errors.New("invalid side")

	// ErrInvalidAction is raised when an action character falls outside
	// the alphabet the book variant accepts.
	ErrInvalidAction = errors.New("invalid action")

	// ErrFlagMisuse is raised when a full-depth book receives F_TOB, or
	// a top-of-book Add lacks F_TOB.
	ErrFlagMisuse = errors.New("flag misuse")

	// ErrDuplicateOrder is raised when Add sees an order id already
	// present in the id index.
	ErrDuplicateOrder = errors.New("duplicate order")

	// ErrUnknownOrder is raised when Cancel or Modify references an
	// order id absent from the id index.
	ErrUnknownOrder = errors.New("unknown order")

	// ErrInvariantViolation is raised for Modify side changes, Add with
	// an undefined price, or a remove amount exceeding the node's size.
	ErrInvariantViolation = errors.New("invariant violation")

	// ErrUnsupportedRecord is raised when Market.Apply receives a
	// record shape it does not handle.
	ErrUnsupportedRecord = errors.New("unsupported record")
)
