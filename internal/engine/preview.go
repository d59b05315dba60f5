package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rshade/carbonfocus/internal/emission"
	"github.com/rshade/carbonfocus/internal/logging"
)

// Preview computes an emission result for one activity without persisting it.
//
// The method is resolved first. The factor lookup and, for fuel spend, the
// price lookup then run concurrently; a missing price blocks the calculation
// with emission.ErrNoPriceAvailable. A supplier factor on the input replaces
// the looked-up factor value at high confidence. Warnings from every step are
// kept on the result in the order they arose.
//
//nolint:funlen // Linear pipeline; each step depends on the previous one.
func (e *Engine) Preview(ctx context.Context, input emission.ActivityInput) (emission.EmissionResult, error) {
	log := logging.FromContext(ctx)
	start := time.Now()

	res, err := emission.Resolve(input)
	if err != nil {
		return emission.EmissionResult{}, err
	}
	region := input.Region
	if strings.TrimSpace(region) == "" {
		region = e.opts.DefaultRegion
	}

	log.Debug().
		Ctx(ctx).
		Str("component", "engine").
		Str("operation", "preview").
		Str("category", res.Category.Code).
		Str("activity_key", res.ActivityKey).
		Str("method", res.Kind.String()).
		Str("region", region).
		Msg("method resolved")

	if res.Kind == emission.MethodSupplierSpecific {
		return e.previewSupplier(input, res)
	}

	var (
		resolved   emission.ResolvedFactor
		factorErr  error
		conversion *emission.SpendConversion
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		resolved, factorErr = e.factors.Resolve(gctx, res.ActivityKey, region)
		if factorErr != nil && input.SupplierFactor != nil && errors.Is(factorErr, emission.ErrFactorNotFound) {
			// The supplier factor stands in; only the unit is missing.
			return nil
		}
		return factorErr
	})
	if spend, ok := input.Method.(emission.Spend); ok && res.Category.FuelSpend {
		g.Go(func() error {
			conv, err := emission.ConvertSpendToQuantity(gctx, e.prices, emission.SpendRequest{
				Amount:      spend.Amount,
				Currency:    spend.Currency,
				Fuel:        spend.Fuel,
				Region:      region,
				CustomPrice: spend.CustomPrice,
				Unit:        res.Unit,
				At:          e.opts.Now(),
			})
			if err != nil {
				return err
			}
			conversion = &conv
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return emission.EmissionResult{}, err
	}

	factor := resolved.Factor
	confidence := resolved.Confidence
	lookupWarnings := resolved.Warnings
	if factorErr != nil {
		factor = emission.EmissionFactor{ActivityKey: res.ActivityKey, ActivityUnit: res.Unit, Region: region}
		lookupWarnings = []string{fmt.Sprintf("no factor found for %s; supplier factor used", res.ActivityKey)}
	}
	if res.Approximated {
		confidence = confidence.Downgrade()
	}

	var quantity float64
	var unit string
	if conversion != nil {
		quantity, unit = conversion.Quantity, conversion.Unit
		if unit == "" {
			unit = res.Unit
		}
	} else {
		quantity, unit, err = emission.NormalizeQuantity(input, res)
		if err != nil {
			return emission.EmissionResult{}, err
		}
	}
	quantity, err = alignUnit(quantity, unit, factor.ActivityUnit)
	if err != nil {
		return emission.EmissionResult{}, err
	}
	if factor.ActivityUnit == "" {
		factor.ActivityUnit = unit
	}

	if input.SupplierFactor != nil {
		factor.CO2eFactor = *input.SupplierFactor
		factor.FactorUnit = emission.FactorUnitFor(factor.ActivityUnit)
		factor.Source = SupplierSource
		confidence = emission.ConfidenceHigh
		if e.opts.SupplierOverrideSuppressesWarnings {
			lookupWarnings = nil
		}
	}

	result, err := emission.Calculate(quantity, factor)
	if err != nil {
		return emission.EmissionResult{}, err
	}
	result.CategoryCode = res.Category.Code
	result.ActivityKey = res.ActivityKey
	result.Method = res.Kind
	result.Confidence = confidence
	result.Spend = conversion

	warnings := make([]string, 0, len(res.Warnings)+len(lookupWarnings)+len(result.Warnings)+1)
	warnings = append(warnings, res.Warnings...)
	warnings = append(warnings, lookupWarnings...)
	if conversion != nil {
		warnings = append(warnings, conversion.Warnings...)
	}
	result.Warnings = append(warnings, result.Warnings...)

	log.Debug().
		Ctx(ctx).
		Str("component", "engine").
		Str("operation", "preview").
		Str("category", result.CategoryCode).
		Str("activity_key", result.ActivityKey).
		Float64("co2e_kg", result.CO2eKg).
		Str("confidence", result.Confidence.String()).
		Int("warnings", len(result.Warnings)).
		Dur("duration", time.Since(start)).
		Msg("preview calculated")

	return result, nil
}

// previewSupplier handles the supplier-specific method, which never looks a
// factor up.
func (e *Engine) previewSupplier(input emission.ActivityInput, res emission.Resolution) (emission.EmissionResult, error) {
	quantity, unit, err := emission.NormalizeQuantity(input, res)
	if err != nil {
		return emission.EmissionResult{}, err
	}
	factorUnit := ""
	if m, ok := input.Method.(emission.SupplierSpecific); ok {
		factorUnit = m.FactorUnit
	}
	if factorUnit == "" {
		factorUnit = emission.FactorUnitFor(unit)
	}
	result, err := emission.Calculate(quantity, emission.EmissionFactor{
		ActivityKey:  res.ActivityKey,
		CO2eFactor:   res.Candidate,
		ActivityUnit: unit,
		FactorUnit:   factorUnit,
		Source:       SupplierSource,
		Region:       input.Region,
	})
	if err != nil {
		return emission.EmissionResult{}, err
	}
	result.CategoryCode = res.Category.Code
	result.Method = res.Kind
	result.Confidence = emission.ConfidenceHigh
	return result, nil
}

// alignUnit converts quantity from unit into the factor's unit when both are
// known and differ.
func alignUnit(quantity float64, unit, factorUnit string) (float64, error) {
	if unit == "" || factorUnit == "" {
		return quantity, nil
	}
	if emission.CanonicalUnit(unit) == emission.CanonicalUnit(factorUnit) {
		return quantity, nil
	}
	return emission.ConvertUnit(quantity, unit, factorUnit)
}
