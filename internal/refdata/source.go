// Package refdata provides reference data to the calculators: emission
// factors, fuel prices and CBAM default SEE values.
//
// HTTPClient talks to the Reference Data Service, Static serves an in-memory
// or YAML dataset for offline use and tests, and Cached wraps either with an
// in-memory and an on-disk TTL cache.
package refdata

import (
	"fmt"

	"github.com/rshade/carbonfocus/internal/cbam"
	"github.com/rshade/carbonfocus/internal/emission"
)

// Source is the full reference-data surface used by the engine.
type Source interface {
	emission.FactorSource
	emission.PriceSource
	cbam.DefaultSource
}

// ErrNotFound is returned for a missing record. It is the sentinel the
// calculators treat as "try the next tier".
var ErrNotFound = emission.ErrReferenceNotFound

// StatusError is a non-2xx, non-404 response from the Reference Data Service.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("reference data service returned %d: %s", e.StatusCode, e.Body)
}

// Compile-time interface checks.
var (
	_ Source = (*HTTPClient)(nil)
	_ Source = (*Static)(nil)
	_ Source = (*Cached)(nil)
)
