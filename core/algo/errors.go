package algo

import "errors"

// Error kinds returned by the engine. Match them with errors.Is.
var (
	ErrData        = errors.New("data error")
	ErrComputation = errors.New("computation error")
)

// ErrNoMetalColumns is returned when no header maps to a regulated metal.
var ErrNoMetalColumns = &Error{Kind: ErrData, Message: "no heavy metal concentration data found"}

// Error is a typed engine failure. It is terminal for the request.
type Error struct {
	Kind    error // ErrData or ErrComputation
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Is reports whether target is the kind of this error.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Cause
}

// dataError builds an ErrData failure.
func dataError(msg string) error {
	return &Error{Kind: ErrData, Message: msg}
}

// computationError builds an ErrComputation failure.
func computationError(msg string, cause error) error {
	return &Error{Kind: ErrComputation, Message: msg, Cause: cause}
}
