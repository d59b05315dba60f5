package emission

import (
	"fmt"
	"math"
)

// HighGWPThreshold is the GWP above which a gas result carries a warning.
const HighGWPThreshold = 1000.0

// Calculate multiplies a normalised quantity by a factor.
//
// The quantity must already be expressed in factor.ActivityUnit. Zero,
// negative and non-finite operands fail with ErrInvalidInput; nothing is
// clamped. For gas keys the factor is a GWP and values above
// HighGWPThreshold set HighGWP with a warning. Confidence is left at its zero
// value for the caller to set from the lookup tier.
func Calculate(quantity float64, factor EmissionFactor) (EmissionResult, error) {
	if !isPositive(quantity) {
		return EmissionResult{}, fmt.Errorf("%w: quantity must be > 0, got %v", ErrInvalidInput, quantity)
	}
	if !isPositive(factor.CO2eFactor) {
		return EmissionResult{}, fmt.Errorf("%w: factor for %s must be > 0, got %v",
			ErrInvalidInput, factor.ActivityKey, factor.CO2eFactor)
	}

	co2e := quantity * factor.CO2eFactor
	if math.IsInf(co2e, 0) {
		return EmissionResult{}, fmt.Errorf("%w: result overflows for %v × %v", ErrInvalidInput, quantity, factor.CO2eFactor)
	}

	factorUnit := factor.FactorUnit
	if factorUnit == "" {
		factorUnit = FactorUnitFor(factor.ActivityUnit)
	}

	result := EmissionResult{
		ActivityKey:        factor.ActivityKey,
		QuantityNormalized: quantity,
		Unit:               factor.ActivityUnit,
		Factor:             factor,
		CO2eKg:             co2e,
		Formula:            RenderFormula(quantity, factor.ActivityUnit, factor.CO2eFactor, factorUnit, co2e),
		Warnings:           []string{},
	}

	if IsFugitiveKey(factor.ActivityKey) && factor.CO2eFactor > HighGWPThreshold {
		result.HighGWP = true
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"high global warming potential: %s has GWP %v; verify the leaked mass", factor.ActivityKey, factor.CO2eFactor))
	}
	return result, nil
}

// dimensionBase is the base unit of each composite distance dimension.
//
//nolint:gochecknoglobals // Static lookup table.
var dimensionBase = map[Dimension]string{
	DimensionFreight:   "tonne-km",
	DimensionPassenger: "passenger-km",
	DimensionVehicle:   "vehicle-km",
}

// NormalizeQuantity converts the driving scalar of input into the activity
// unit of the resolution.
//
// Distance inputs in a plain distance unit are multiplied by the freight
// weight (tonne-km), the passenger count (passenger-km, default 1) or 1
// (vehicle-km). Non-fuel spend is converted to USD for EEIO factors. An empty
// input unit means the input is already in the target unit. Supplier-specific
// resolutions keep the input unit.
//
// Fuel spend must go through ConvertSpendToQuantity first.
func NormalizeQuantity(input ActivityInput, res Resolution) (float64, string, error) {
	target := res.Unit
	if res.Kind == MethodSupplierSpecific || target == "" {
		if !isPositive(input.Quantity) {
			return 0, "", fmt.Errorf("%w: quantity must be > 0, got %v", ErrInvalidInput, input.Quantity)
		}
		return input.Quantity, CanonicalUnit(input.Unit), nil
	}

	if spend, ok := input.Method.(Spend); ok {
		if res.Category.FuelSpend {
			return 0, "", fmt.Errorf("%w: fuel spend needs a price conversion", ErrInvalidInput)
		}
		usd, err := ConvertCurrency(spend.Amount, spend.Currency, target)
		if err != nil {
			return 0, "", err
		}
		return usd, CanonicalUnit(target), nil
	}

	if input.Unit == "" {
		if !isPositive(input.Quantity) {
			return 0, "", fmt.Errorf("%w: quantity must be > 0, got %v", ErrInvalidInput, input.Quantity)
		}
		return input.Quantity, CanonicalUnit(target), nil
	}

	if d, ok := input.Method.(Distance); ok {
		q, err := normalizeDistance(input.Quantity, input.Unit, target, d)
		if err != nil {
			return 0, "", err
		}
		return q, CanonicalUnit(target), nil
	}

	q, err := ConvertUnit(input.Quantity, input.Unit, target)
	if err != nil {
		return 0, "", err
	}
	return q, CanonicalUnit(target), nil
}

// normalizeDistance handles plain distance units against composite targets.
func normalizeDistance(quantity float64, unit, target string, d Distance) (float64, error) {
	in, ok := LookupUnit(unit)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedUnit, unit)
	}
	out, ok := LookupUnit(target)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedUnit, target)
	}
	if in.Dimension != DimensionDistance {
		return ConvertUnit(quantity, unit, target)
	}
	base, composite := dimensionBase[out.Dimension]
	if !composite {
		return ConvertUnit(quantity, unit, target)
	}

	km, err := ConvertUnit(quantity, unit, "km")
	if err != nil {
		return 0, err
	}

	multiplier := 1.0
	switch out.Dimension {
	case DimensionFreight:
		if !isPositive(d.WeightTonnes) {
			return 0, fmt.Errorf("%w: freight distance needs a weight in tonnes", ErrInvalidInput)
		}
		multiplier = d.WeightTonnes
	case DimensionPassenger:
		if d.Passengers > 0 {
			multiplier = float64(d.Passengers)
		}
	}
	return ConvertUnit(km*multiplier, base, target)
}
