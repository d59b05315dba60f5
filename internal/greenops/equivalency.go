package greenops

import (
	"fmt"
	"math"
	"strings"
)

// Kind is a category of equivalent.
type Kind int

// Equivalent kinds, in display order.
const (
	KmDriven Kind = iota
	SmartphonesCharged
	TreeSeedlings
	HomeDays
)

//nolint:gochecknoglobals // Static lookup tables.
var (
	kindNames = map[Kind]string{
		KmDriven:           "km_driven",
		SmartphonesCharged: "smartphones_charged",
		TreeSeedlings:      "tree_seedlings",
		HomeDays:           "home_days",
	}
	kindFactors = map[Kind]float64{
		KmDriven:           KgPerKmDriven,
		SmartphonesCharged: KgPerSmartphoneCharge,
		TreeSeedlings:      KgPerTreeSeedling,
		HomeDays:           KgPerHomeDay,
	}
	kindLabels = map[Kind]string{
		KmDriven:           "km driven",
		SmartphonesCharged: "smartphones charged",
		TreeSeedlings:      "tree seedlings grown for 10 years",
		HomeDays:           "days of household electricity",
	}
)

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Equivalency is one calculated equivalent.
type Equivalency struct {
	Kind      Kind    `json:"kind"`
	Value     float64 `json:"value"`
	Formatted string  `json:"formatted"`
	Label     string  `json:"label"`
}

// Output holds the equivalents of one footprint.
type Output struct {
	InputKg     float64       `json:"input_kg"`
	Results     []Equivalency `json:"results"`
	DisplayText string        `json:"display_text"`
	CompactText string        `json:"compact_text"`
}

// IsEmpty reports whether no equivalents were calculated.
func (o Output) IsEmpty() bool {
	return len(o.Results) == 0
}

// NormalizeToKg converts value in unit (g, kg, t, lb, optionally suffixed
// with CO2e; case-insensitive) to kilograms.
func NormalizeToKg(value float64, unit string) (float64, error) {
	if math.IsInf(value, 0) || math.IsNaN(value) {
		return 0, ErrCalculationOverflow
	}
	if value < 0 {
		return 0, ErrNegativeValue
	}

	var factor float64
	switch strings.TrimSuffix(strings.ToLower(strings.TrimSpace(unit)), "co2e") {
	case "g":
		factor = gramsToKg
	case "kg":
		factor = 1
	case "t":
		factor = tonnesToKg
	case "lb":
		factor = poundsToKg
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidUnit, unit)
	}

	kg := value * factor
	if math.IsInf(kg, 0) {
		return 0, ErrCalculationOverflow
	}
	return kg, nil
}

// Calculate normalizes value to kilograms and computes its equivalents.
// Footprints below MinEquivalencyKg return an empty output and no error.
// Tree seedlings and household days are added from TreeThresholdKg.
func Calculate(value float64, unit string) (Output, error) {
	kg, err := NormalizeToKg(value, unit)
	if err != nil {
		return Output{}, err
	}
	out := Output{InputKg: kg}
	if kg < MinEquivalencyKg {
		return out, nil
	}

	kinds := []Kind{KmDriven, SmartphonesCharged}
	if kg >= TreeThresholdKg {
		kinds = append(kinds, TreeSeedlings, HomeDays)
	}
	for _, k := range kinds {
		v := kg / kindFactors[k]
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return Output{}, ErrCalculationOverflow
		}
		out.Results = append(out.Results, Equivalency{
			Kind: k, Value: v, Formatted: formatValue(v), Label: kindLabels[k],
		})
	}

	km, phones := out.Results[0].Formatted, out.Results[1].Formatted
	out.DisplayText = fmt.Sprintf("Equivalent to driving ~%s km or charging ~%s smartphones", km, phones)
	out.CompactText = fmt.Sprintf("(≈ %s km, %s phones)", km, phones)
	return out, nil
}

// ForKg returns the equivalents of kg CO2e, or an empty output for invalid
// input.
func ForKg(kg float64) Output {
	out, err := Calculate(kg, "kg")
	if err != nil {
		return Output{}
	}
	return out
}
