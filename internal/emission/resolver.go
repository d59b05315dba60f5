package emission

import (
	"fmt"
	"math"
)

// Resolution is the outcome of mapping a category and method to an activity key.
type Resolution struct {
	Category    Category   `json:"category"`
	Kind        MethodKind `json:"method"`
	ActivityKey string     `json:"activity_key"`

	// Unit is the activity unit the factor is expressed per. It is empty for
	// supplier-specific methods, where the caller's unit is kept.
	Unit string `json:"unit"`

	// Approximated is set when an unmapped selection fell back to a generic key.
	Approximated bool `json:"approximated"`

	// Candidate is the embedded estimate for the key, or the supplier factor.
	Candidate float64 `json:"candidate"`

	Warnings []string `json:"warnings,omitempty"`
}

// ResolveMethod maps a category code and method variant to a canonical
// activity key and candidate factor.
//
// It returns ErrUnknownCategory for unregistered codes, ErrMethodNotAllowed
// when the method is outside the category's legal set and ErrInvalidInput
// for a missing method or a non-positive supplier factor.
func ResolveMethod(categoryCode string, m Method) (Resolution, error) {
	cat, ok := LookupCategory(categoryCode)
	if !ok {
		return Resolution{}, fmt.Errorf("%w: %q", ErrUnknownCategory, categoryCode)
	}
	if m == nil {
		return Resolution{}, fmt.Errorf("%w: method is required", ErrInvalidInput)
	}
	if !cat.Allows(m.Kind()) {
		return Resolution{}, fmt.Errorf("%w: %s does not accept %s (allowed: %v)",
			ErrMethodNotAllowed, cat.Code, m.Kind(), cat.Methods)
	}

	res := Resolution{Category: cat, Kind: m.Kind()}

	switch v := m.(type) {
	case SupplierSpecific:
		if !isPositive(v.Factor) {
			return Resolution{}, fmt.Errorf("%w: supplier factor must be > 0, got %v", ErrInvalidInput, v.Factor)
		}
		res.ActivityKey = cat.Slug + ".supplier"
		res.Candidate = v.Factor
		return res, nil
	case Physical:
		res.ActivityKey, res.Approximated = physicalKey(cat, v)
	case Spend:
		key, approx, err := spendKey(cat, v)
		if err != nil {
			return Resolution{}, err
		}
		res.ActivityKey, res.Approximated = key, approx
	case Distance:
		res.ActivityKey, res.Approximated = firstKnown(cat.Slug, genericSuffix,
			joinSelectors(v.Mode, v.Vehicle), normalizeSelector(v.Mode))
	case Average:
		sel := v.ProductType
		if sel == "" {
			sel = v.BuildingType
		}
		res.ActivityKey, res.Approximated = firstKnown(cat.Slug+".average", genericSuffix, normalizeSelector(sel))
	case SiteSpecific:
		res.ActivityKey, res.Approximated = firstKnown(cat.Slug+".site", genericSuffix, normalizeSelector(v.Fuel))
	default:
		return Resolution{}, fmt.Errorf("%w: unsupported method variant %T", ErrMethodNotAllowed, m)
	}

	if _, e, found := lookupEstimate(res.ActivityKey); found {
		res.Unit = e.unit
		res.Candidate = e.value
	}
	if res.Approximated {
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("selection not mapped for category %s; using approximate key %s", cat.Code, res.ActivityKey))
	}
	return res, nil
}

// Resolve validates an activity input and resolves its method.
// Quantity must be positive for every method except Spend, whose amount must
// be positive and whose Quantity must be zero.
func Resolve(input ActivityInput) (Resolution, error) {
	if err := ValidateInput(input); err != nil {
		return Resolution{}, err
	}
	return ResolveMethod(input.CategoryCode, input.Method)
}

// ValidateInput checks the driving-scalar invariant of an ActivityInput.
func ValidateInput(input ActivityInput) error {
	if input.Method == nil {
		return fmt.Errorf("%w: method is required", ErrInvalidInput)
	}
	if spend, ok := input.Method.(Spend); ok {
		if input.Quantity != 0 {
			return fmt.Errorf("%w: quantity and spend amount are mutually exclusive", ErrInvalidInput)
		}
		if !isPositive(spend.Amount) {
			return fmt.Errorf("%w: spend amount must be > 0, got %v", ErrInvalidInput, spend.Amount)
		}
		if spend.CustomPrice < 0 || math.IsNaN(spend.CustomPrice) {
			return fmt.Errorf("%w: custom price must be >= 0, got %v", ErrInvalidInput, spend.CustomPrice)
		}
		return nil
	}
	if !isPositive(input.Quantity) {
		return fmt.Errorf("%w: quantity must be > 0, got %v", ErrInvalidInput, input.Quantity)
	}
	if input.SupplierFactor != nil && !isPositive(*input.SupplierFactor) {
		return fmt.Errorf("%w: supplier factor must be > 0, got %v", ErrInvalidInput, *input.SupplierFactor)
	}
	if d, ok := input.Method.(Distance); ok {
		if d.WeightTonnes < 0 || d.Passengers < 0 {
			return fmt.Errorf("%w: weight and passengers must be >= 0", ErrInvalidInput)
		}
	}
	return nil
}

// physicalKey resolves material, fuel, gas or treatment selections.
func physicalKey(cat Category, p Physical) (string, bool) {
	switch {
	case cat.Gas:
		gas := normalizeGas(p.Material)
		return firstKnown(cat.Slug, genericSuffix, gas)
	case cat.Treatment:
		material := normalizeSelector(p.Material)
		treatment := normalizeSelector(p.Treatment)
		return firstKnown(cat.Slug, genericSuffix,
			joinSelectors(material, treatment), joinSelectors(mixedSuffix, treatment))
	default:
		material := normalizeSelector(p.Material)
		if material == "" {
			material = cat.DefaultMaterial
		}
		fallback := genericSuffix
		if _, ok := catalog[cat.Slug+"."+mixedSuffix]; ok {
			fallback = mixedSuffix
		}
		return firstKnown(cat.Slug, fallback, material)
	}
}

// spendKey resolves a spend selection. Fuel-spend categories resolve to the
// fuel's physical key; the caller converts spend to quantity first.
func spendKey(cat Category, s Spend) (string, bool, error) {
	if !IsCurrency(s.Currency) {
		return "", false, fmt.Errorf("%w: currency %q", ErrUnsupportedUnit, s.Currency)
	}
	if cat.FuelSpend {
		fuel := normalizeSelector(s.Fuel)
		if fuel == "" {
			return "", false, fmt.Errorf("%w: fuel is required for spend in category %s", ErrInvalidInput, cat.Code)
		}
		key, approx := firstKnown(cat.Slug, mixedSuffix, fuel)
		return key, approx, nil
	}
	key, approx := firstKnown(cat.Slug+".spend", genericSuffix, normalizeSelector(s.Sector))
	return key, approx, nil
}

// firstKnown returns prefix.candidate for the first candidate present in the
// catalog, or prefix.fallback with approximated=true.
func firstKnown(prefix, fallback string, candidates ...string) (string, bool) {
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if key := prefix + "." + c; KnownActivityKey(key) {
			return key, false
		}
	}
	return prefix + "." + fallback, true
}

// joinSelectors joins two normalized selectors with a dot, or returns "" when
// either is empty.
func joinSelectors(a, b string) string {
	a, b = normalizeSelector(a), normalizeSelector(b)
	if a == "" || b == "" {
		return ""
	}
	return a + "." + b
}

// IsFugitiveKey reports whether key refers to a gas whose factor is a GWP.
func IsFugitiveKey(key string) bool {
	cat := registry["1.3"]
	return len(key) > len(cat.Slug) && key[:len(cat.Slug)+1] == cat.Slug+"."
}

func isPositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
