package signal

import "errors"

// ErrSignalReadOnly indicates a write to a non-writable signal. This is a
// distinct failure class from an unknown name, which is a normal control
// flow outcome and never an error.
var ErrSignalReadOnly = errors.New("Signal is read-only")

// ValidationError carries a validator's message for a rejected write to a
// known signal.
type ValidationError struct {
	// Name is the normalized signal name.
	Name string
	// Message is the validator's human-readable rejection reason.
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
