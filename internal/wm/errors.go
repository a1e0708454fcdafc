package wm

import "fmt"

// ValidationError rejects a single request: malformed command input or a
// reference to an entity that does not exist. State is left unchanged.
type ValidationError struct {
	Op  string
	Msg string
}

func (e *ValidationError) Error() string {
	if e.Op == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Msg)
}

func invalid(op, format string, args ...any) error {
	return &ValidationError{Op: op, Msg: fmt.Sprintf(format, args...)}
}

// InvariantViolation records an internal inconsistency that was repaired in
// place. It is logged, never returned to callers.
type InvariantViolation struct {
	Container string
	ID        int
	Detail    string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("invariant violation in %s %d: %s", e.Container, e.ID, e.Detail)
}

// CollaboratorFailure wraps an error reported by the window system. The
// event that triggered it is dropped.
type CollaboratorFailure struct {
	Op     string
	Window Window
	Err    error
}

func (e *CollaboratorFailure) Error() string {
	return fmt.Sprintf("%s on window 0x%x: %v", e.Op, uint32(e.Window), e.Err)
}

func (e *CollaboratorFailure) Unwrap() error { return e.Err }
