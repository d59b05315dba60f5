package emission

import (
	"fmt"
	"strings"
)

// MethodKind names a calculation method family.
type MethodKind int

const (
	// MethodPhysical multiplies a physical quantity (mass, energy, volume) by a factor.
	MethodPhysical MethodKind = iota

	// MethodSpend uses monetary spend, either through a fuel price or an EEIO factor.
	MethodSpend

	// MethodSupplierSpecific uses a factor declared by the supplier.
	MethodSupplierSpecific

	// MethodDistance uses distance, optionally multiplied by freight weight.
	MethodDistance

	// MethodAverage uses an average-data factor per product or building type.
	MethodAverage

	// MethodSiteSpecific uses energy or fuel metered at the site.
	MethodSiteSpecific
)

//nolint:gochecknoglobals // Lookup table for method names.
var methodNames = map[MethodKind]string{
	MethodPhysical:         "physical",
	MethodSpend:            "spend",
	MethodSupplierSpecific: "supplier_specific",
	MethodDistance:         "distance",
	MethodAverage:          "average",
	MethodSiteSpecific:     "site_specific",
}

// String returns the snake_case method name.
func (k MethodKind) String() string {
	if name, ok := methodNames[k]; ok {
		return name
	}
	return fmt.Sprintf("MethodKind(%d)", int(k))
}

// MarshalText implements encoding.TextMarshaler.
func (k MethodKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *MethodKind) UnmarshalText(text []byte) error {
	parsed, err := ParseMethodKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseMethodKind parses a method name. Hyphens and case are ignored.
func ParseMethodKind(s string) (MethodKind, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	if normalized == "supplier" {
		return MethodSupplierSpecific, nil
	}
	for kind, name := range methodNames {
		if name == normalized {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown method %q", ErrMethodNotAllowed, s)
}

// Method is a closed set of calculation method variants. Each variant
// carries only the fields its calculation needs.
type Method interface {
	Kind() MethodKind
	sealed()
}

// Physical selects a material, fuel, gas or energy carrier, with an optional
// treatment (waste and end-of-life categories).
type Physical struct {
	Material  string `json:"material"`
	Treatment string `json:"treatment,omitempty"`
}

// Spend drives the calculation from a monetary amount. Fuel categories convert
// spend to a physical quantity through a fuel price; other categories use an
// EEIO factor selected by Sector.
type Spend struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Sector   string  `json:"sector,omitempty"`
	Fuel     string  `json:"fuel,omitempty"`

	// CustomPrice is a user price per fuel unit. Zero means "use the system price".
	CustomPrice float64 `json:"custom_price,omitempty"`
}

// SupplierSpecific carries the supplier-declared factor. No lookup is done.
type SupplierSpecific struct {
	Factor     float64 `json:"factor"`
	FactorUnit string  `json:"factor_unit,omitempty"`
}

// Distance selects a transport mode. WeightTonnes is required for freight
// categories; Passengers defaults to 1 for passenger categories.
type Distance struct {
	Mode         string  `json:"mode"`
	Vehicle      string  `json:"vehicle,omitempty"`
	WeightTonnes float64 `json:"weight_tonnes,omitempty"`
	Passengers   int     `json:"passengers,omitempty"`
}

// Average selects an average-data factor by product or building type.
type Average struct {
	ProductType  string `json:"product_type,omitempty"`
	BuildingType string `json:"building_type,omitempty"`
}

// SiteSpecific selects the metered energy carrier or fuel.
type SiteSpecific struct {
	Fuel string `json:"fuel"`
}

// Kind implements Method.
func (Physical) Kind() MethodKind { return MethodPhysical }

// Kind implements Method.
func (Spend) Kind() MethodKind { return MethodSpend }

// Kind implements Method.
func (SupplierSpecific) Kind() MethodKind { return MethodSupplierSpecific }

// Kind implements Method.
func (Distance) Kind() MethodKind { return MethodDistance }

// Kind implements Method.
func (Average) Kind() MethodKind { return MethodAverage }

// Kind implements Method.
func (SiteSpecific) Kind() MethodKind { return MethodSiteSpecific }

func (Physical) sealed()         {}
func (Spend) sealed()            {}
func (SupplierSpecific) sealed() {}
func (Distance) sealed()         {}
func (Average) sealed()          {}
func (SiteSpecific) sealed()     {}
