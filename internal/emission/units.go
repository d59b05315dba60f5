package emission

import (
	"fmt"
	"math"
	"strings"
)

// Dimension groups units that convert into each other multiplicatively.
type Dimension string

// Supported dimensions. Count-like units (unit, employee-day, room-night) are
// each their own dimension and only convert to themselves.
const (
	DimensionMass      Dimension = "mass"
	DimensionDistance  Dimension = "distance"
	DimensionEnergy    Dimension = "energy"
	DimensionVolume    Dimension = "volume"
	DimensionArea      Dimension = "area"
	DimensionAreaTime  Dimension = "area_time"
	DimensionFreight   Dimension = "freight"
	DimensionPassenger Dimension = "passenger"
	DimensionVehicle   Dimension = "vehicle"
	DimensionCurrency  Dimension = "currency"
	DimensionCount     Dimension = "count"
	DimensionWorkday   Dimension = "workday"
	DimensionStay      Dimension = "stay"
)

// Conversion constants.
const (
	// KgPerTonne converts metric tonnes to kilograms.
	KgPerTonne = 1000.0

	// KgPerPound converts pounds to kilograms.
	KgPerPound = 0.453592

	// KmPerMile converts statute miles to kilometres.
	KmPerMile = 1.609344

	// KWhPerGJ converts gigajoules to kilowatt-hours.
	KWhPerGJ = 277.7778

	// KWhPerTherm converts US therms to kilowatt-hours.
	KWhPerTherm = 29.3071

	// LitresPerUSGallon converts US gallons to litres.
	LitresPerUSGallon = 3.785411784

	// SquareMetresPerSquareFoot converts square feet to square metres.
	SquareMetresPerSquareFoot = 0.09290304

	// TonneKmPerTonMile converts short ton-miles to tonne-kilometres.
	TonneKmPerTonMile = 1.459972
)

// unitDef describes one accepted unit spelling.
type unitDef struct {
	canonical string
	dimension Dimension
	toBase    float64
}

// unitTable maps lower-cased unit spellings to their definitions. The base
// unit of each dimension has toBase 1.
//
//nolint:gochecknoglobals // Static conversion table.
var unitTable = map[string]unitDef{
	// Mass, base kg.
	"g":      {"g", DimensionMass, 0.001},
	"kg":     {"kg", DimensionMass, 1},
	"t":      {"t", DimensionMass, KgPerTonne},
	"tonne":  {"t", DimensionMass, KgPerTonne},
	"tonnes": {"t", DimensionMass, KgPerTonne},
	"lb":     {"lb", DimensionMass, KgPerPound},
	"lbs":    {"lb", DimensionMass, KgPerPound},

	// Distance, base km.
	"m":     {"m", DimensionDistance, 0.001},
	"km":    {"km", DimensionDistance, 1},
	"mi":    {"mi", DimensionDistance, KmPerMile},
	"mile":  {"mi", DimensionDistance, KmPerMile},
	"miles": {"mi", DimensionDistance, KmPerMile},

	// Energy, base kWh.
	"wh":    {"Wh", DimensionEnergy, 0.001},
	"kwh":   {"kWh", DimensionEnergy, 1},
	"mwh":   {"MWh", DimensionEnergy, 1000},
	"gwh":   {"GWh", DimensionEnergy, 1_000_000},
	"mj":    {"MJ", DimensionEnergy, KWhPerGJ / 1000},
	"gj":    {"GJ", DimensionEnergy, KWhPerGJ},
	"therm": {"therm", DimensionEnergy, KWhPerTherm},

	// Volume, base litre.
	"ml":     {"ml", DimensionVolume, 0.001},
	"l":      {"l", DimensionVolume, 1},
	"liter":  {"l", DimensionVolume, 1},
	"liters": {"l", DimensionVolume, 1},
	"litre":  {"l", DimensionVolume, 1},
	"litres": {"l", DimensionVolume, 1},
	"m3":     {"m3", DimensionVolume, 1000},
	"gal":    {"gal", DimensionVolume, LitresPerUSGallon},
	"gallon": {"gal", DimensionVolume, LitresPerUSGallon},

	// Area, base m2.
	"m2":  {"m2", DimensionArea, 1},
	"ft2": {"ft2", DimensionArea, SquareMetresPerSquareFoot},

	// Area over time, base m2-year.
	"m2-year":  {"m2-year", DimensionAreaTime, 1},
	"m2-month": {"m2-month", DimensionAreaTime, 1.0 / 12},
	"ft2-year": {"ft2-year", DimensionAreaTime, SquareMetresPerSquareFoot},

	// Freight, base tonne-km.
	"tonne-km": {"tonne-km", DimensionFreight, 1},
	"t-km":     {"tonne-km", DimensionFreight, 1},
	"tkm":      {"tonne-km", DimensionFreight, 1},
	"ton-mile": {"ton-mile", DimensionFreight, TonneKmPerTonMile},

	// Passenger distance, base passenger-km.
	"passenger-km":   {"passenger-km", DimensionPassenger, 1},
	"pkm":            {"passenger-km", DimensionPassenger, 1},
	"passenger-mile": {"passenger-mile", DimensionPassenger, KmPerMile},

	// Vehicle distance, base vehicle-km.
	"vehicle-km":   {"vehicle-km", DimensionVehicle, 1},
	"vkm":          {"vehicle-km", DimensionVehicle, 1},
	"vehicle-mile": {"vehicle-mile", DimensionVehicle, KmPerMile},

	// Counts.
	"unit":         {"unit", DimensionCount, 1},
	"units":        {"unit", DimensionCount, 1},
	"item":         {"unit", DimensionCount, 1},
	"employee-day": {"employee-day", DimensionWorkday, 1},
	"room-night":   {"room-night", DimensionStay, 1},
}

// currencyToUSD holds static reference rates used only to normalise spend for
// EEIO factors and the USD price fallback. They are approximations.
//
//nolint:gochecknoglobals // Static reference rates.
var currencyToUSD = map[string]float64{
	"USD": 1,
	"EUR": 1.08,
	"GBP": 1.27,
	"CHF": 1.13,
	"CAD": 0.74,
	"AUD": 0.66,
	"NZD": 0.61,
	"JPY": 0.0067,
	"CNY": 0.14,
	"INR": 0.012,
	"KRW": 0.00075,
	"SGD": 0.74,
	"SEK": 0.095,
	"NOK": 0.094,
	"DKK": 0.145,
	"PLN": 0.25,
	"BRL": 0.20,
	"MXN": 0.058,
	"ZAR": 0.054,
	"TRY": 0.031,
}

// BaseCurrency is the currency EEIO factors are expressed in.
const BaseCurrency = "USD"

// UnitInfo describes an accepted unit.
type UnitInfo struct {
	Canonical string
	Dimension Dimension
}

// LookupUnit returns the canonical spelling and dimension for a unit.
// Matching is case-insensitive. Currency codes are accepted as units.
func LookupUnit(unit string) (UnitInfo, bool) {
	key := strings.ToLower(strings.TrimSpace(unit))
	if def, ok := unitTable[key]; ok {
		return UnitInfo{Canonical: def.canonical, Dimension: def.dimension}, true
	}
	code := strings.ToUpper(strings.TrimSpace(unit))
	if _, ok := currencyToUSD[code]; ok {
		return UnitInfo{Canonical: code, Dimension: DimensionCurrency}, true
	}
	return UnitInfo{}, false
}

// CanonicalUnit returns the canonical spelling of unit, or unit unchanged if
// it is not recognised.
func CanonicalUnit(unit string) string {
	if info, ok := LookupUnit(unit); ok {
		return info.Canonical
	}
	return unit
}

// toBase returns the multiplier into the dimension's base unit.
func toBase(unit string) (float64, Dimension, bool) {
	key := strings.ToLower(strings.TrimSpace(unit))
	if def, ok := unitTable[key]; ok {
		return def.toBase, def.dimension, true
	}
	if rate, ok := currencyToUSD[strings.ToUpper(strings.TrimSpace(unit))]; ok {
		return rate, DimensionCurrency, true
	}
	return 0, "", false
}

// ConvertUnit converts value from one unit to another of the same dimension.
//
// It returns ErrUnsupportedUnit for unknown units or when the units belong to
// different dimensions, and ErrInvalidInput for negative or non-finite values.
func ConvertUnit(value float64, from, to string) (float64, error) {
	if math.IsInf(value, 0) || math.IsNaN(value) || value < 0 {
		return 0, fmt.Errorf("%w: value %v", ErrInvalidInput, value)
	}

	fromFactor, fromDim, ok := toBase(from)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedUnit, from)
	}
	toFactor, toDim, ok := toBase(to)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedUnit, to)
	}
	if fromDim != toDim {
		return 0, fmt.Errorf("%w: cannot convert %s (%s) to %s (%s)",
			ErrUnsupportedUnit, from, fromDim, to, toDim)
	}

	if fromFactor == toFactor {
		return value, nil
	}
	return value * fromFactor / toFactor, nil
}

// ConvertCurrency converts an amount between two currencies using the static
// reference rates.
func ConvertCurrency(amount float64, from, to string) (float64, error) {
	if _, ok := currencyToUSD[strings.ToUpper(from)]; !ok {
		return 0, fmt.Errorf("%w: currency %q", ErrUnsupportedUnit, from)
	}
	if _, ok := currencyToUSD[strings.ToUpper(to)]; !ok {
		return 0, fmt.Errorf("%w: currency %q", ErrUnsupportedUnit, to)
	}
	return ConvertUnit(amount, from, to)
}

// IsCurrency reports whether code is a supported ISO 4217 currency code.
func IsCurrency(code string) bool {
	_, ok := currencyToUSD[strings.ToUpper(strings.TrimSpace(code))]
	return ok
}
