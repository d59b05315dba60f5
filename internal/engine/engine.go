// Package engine orchestrates activity emission previews, batch previews,
// submission to the Persistence Service and CBAM cost exposure.
//
// The calculators it drives (internal/emission, internal/cbam) are pure. The
// engine owns the two asynchronous boundaries: reference-data lookups and
// persistence. Both are single-shot; nothing is retried here.
package engine

import (
	"context"
	"errors"
	"time"

	"github.com/rshade/carbonfocus/internal/cbam"
	"github.com/rshade/carbonfocus/internal/emission"
	"github.com/rshade/carbonfocus/internal/persist"
	"github.com/rshade/carbonfocus/internal/refdata"
)

// SupplierSource labels factors declared by the supplier.
const SupplierSource = "supplier"

// ErrNoPersistence is returned by Submit when no Submitter is configured.
var ErrNoPersistence = errors.New("no persistence service configured")

// Submitter stores a finalized activity.
type Submitter interface {
	Submit(ctx context.Context, req persist.ActivityRequest) (persist.ActivityResponse, error)
}

// Options tune the engine.
type Options struct {
	// DefaultRegion is used when an input carries no region.
	DefaultRegion string

	// SupplierOverrideSuppressesWarnings drops the factor-lookup warnings
	// when a supplier factor overrides the looked-up factor. By default they
	// are kept.
	SupplierOverrideSuppressesWarnings bool

	// EUETSPriceEUR is the EU ETS reference price used for CBAM costs.
	EUETSPriceEUR float64

	// BatchSize and Workers control PreviewBatch. Zero uses defaults.
	BatchSize int
	Workers   int

	// Now returns the time used to select active fuel prices.
	Now func() time.Time
}

// Engine runs calculations against a reference-data source.
type Engine struct {
	factors   *emission.FactorResolver
	prices    emission.PriceSource
	cbam      *cbam.Calculator
	submitter Submitter
	opts      Options
}

// New returns an Engine. source may be nil, in which case factors come from
// the embedded estimates only and fuel spend needs a custom price.
// submitter may be nil when submission is not used.
func New(source refdata.Source, submitter Submitter, opts Options) *Engine {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	e := &Engine{
		factors:   emission.NewFactorResolver(nil),
		cbam:      cbam.NewCalculator(nil),
		submitter: submitter,
		opts:      opts,
	}
	if source != nil {
		e.factors = emission.NewFactorResolver(source)
		e.prices = source
		e.cbam = cbam.NewCalculator(source)
	}
	return e
}

// Options returns the engine options.
func (e *Engine) Options() Options {
	return e.opts
}
