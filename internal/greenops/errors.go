package greenops

type constError string

func (e constError) Error() string { return string(e) }

// Sentinel errors returned by NormalizeToKg and Calculate.
const (
	ErrInvalidUnit         = constError("unrecognized CO2e unit")
	ErrNegativeValue       = constError("emissions must not be negative")
	ErrCalculationOverflow = constError("equivalent is not a finite number")
)
