package zipwriter

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrFinalized is returned by AddEntry and Finalize after Finalize
	// has been called.
	ErrFinalized = errors.New("zipwriter: archive finalized")

	// ErrAborted wraps the cause of a mid-entry failure. Once an
	// archive is aborted its output stream is unrecoverable: later
	// AddEntry calls, and the first Finalize call, return an error
	// wrapping this value. Calls made after Finalize has been called
	// return ErrFinalized instead.
	ErrAborted = errors.New("zipwriter: archive aborted")

	// ErrInvalidOverride is returned by Finalize when an entry
	// override references an unknown entry or changes a frozen field.
	ErrInvalidOverride = errors.New("zipwriter: invalid finalize override")
)

// OptionsError describes a rejected EntryOptions field. It is returned
// synchronously by AddEntry before any byte is written; the archive
// remains usable.
type OptionsError struct {
	Field  string
	Reason string
}

func (e *OptionsError) Error() string {
	return fmt.Sprintf("zipwriter: invalid entry options: %s: %s", e.Field, e.Reason)
}
