package emission

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

// Error kinds returned by resolution and calculation. They are sentinel errors
// and are matched with errors.Is; call sites wrap them with context.
var (
	// ErrUnknownCategory indicates a category code missing from the registry.
	ErrUnknownCategory = constError("unknown category")

	// ErrMethodNotAllowed indicates a method outside the category's legal set.
	ErrMethodNotAllowed = constError("method not allowed for category")

	// ErrUnsupportedUnit indicates an unknown unit or a cross-dimension conversion.
	ErrUnsupportedUnit = constError("unsupported unit")

	// ErrNoPriceAvailable indicates that neither a custom nor a system price is known.
	ErrNoPriceAvailable = constError("no price available")

	// ErrFactorNotFound indicates that no lookup tier produced a factor.
	ErrFactorNotFound = constError("emission factor not found")

	// ErrInvalidInput indicates a zero, negative or non-finite driving value.
	ErrInvalidInput = constError("invalid input")

	// ErrReferenceNotFound is returned by reference sources for a missing record.
	// Lookups treat it as "try the next tier", never as a failure on its own.
	ErrReferenceNotFound = constError("reference record not found")
)
