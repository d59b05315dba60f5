package cbam

import "github.com/rshade/carbonfocus/internal/emission"

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

var (
	// ErrUnknownProduct indicates a CN code outside the CBAM product scope.
	ErrUnknownProduct = constError("unknown CBAM product")

	// ErrInvalidInput is shared with the emission package so callers match one
	// sentinel for every non-positive or non-finite input.
	ErrInvalidInput = emission.ErrInvalidInput

	// ErrNotFound is returned by DefaultSource for a missing default value.
	ErrNotFound = emission.ErrReferenceNotFound
)
