package emission

import (
	"sort"
	"strconv"
	"strings"
)

// Category describes one GHG Protocol activity category and the methods it
// accepts. Categories are defined once in the registry below.
type Category struct {
	Code    string       `json:"code"`
	Name    string       `json:"name"`
	Scope   int          `json:"scope"`
	Slug    string       `json:"slug"`
	Methods []MethodKind `json:"methods"`

	// Freight categories measure distance in tonne-km.
	Freight bool `json:"freight,omitempty"`

	// Passenger categories measure distance in passenger-km.
	Passenger bool `json:"passenger,omitempty"`

	// FuelSpend categories convert spend to a fuel quantity through a price.
	FuelSpend bool `json:"fuel_spend,omitempty"`

	// Gas categories select by gas and treat the factor as a GWP.
	Gas bool `json:"gas,omitempty"`

	// Treatment categories select by material and treatment route.
	Treatment bool `json:"treatment,omitempty"`

	// DefaultMaterial is used when a physical selection is empty.
	DefaultMaterial string `json:"default_material,omitempty"`
}

// Allows reports whether kind is a legal method for the category.
func (c Category) Allows(kind MethodKind) bool {
	for _, m := range c.Methods {
		if m == kind {
			return true
		}
	}
	return false
}

// registry is the single source of truth for category codes and their
// legal methods.
//
//nolint:gochecknoglobals // Static registry, read-only after init.
var registry = map[string]Category{
	"1.1": {
		Code: "1.1", Name: "Stationary combustion", Scope: 1, Slug: "stationary_combustion",
		Methods:   []MethodKind{MethodPhysical, MethodSpend},
		FuelSpend: true,
	},
	"1.2": {
		Code: "1.2", Name: "Mobile combustion", Scope: 1, Slug: "mobile_combustion",
		Methods:   []MethodKind{MethodPhysical, MethodSpend, MethodDistance},
		FuelSpend: true,
	},
	"1.3": {
		Code: "1.3", Name: "Fugitive emissions", Scope: 1, Slug: "fugitive",
		Methods: []MethodKind{MethodPhysical},
		Gas:     true,
	},
	"2.1": {
		Code: "2.1", Name: "Purchased electricity", Scope: 2, Slug: "electricity",
		Methods:         []MethodKind{MethodPhysical, MethodSupplierSpecific},
		DefaultMaterial: "grid",
	},
	"2.2": {
		Code: "2.2", Name: "Purchased heat, steam and cooling", Scope: 2, Slug: "heat_steam",
		Methods:         []MethodKind{MethodPhysical, MethodSupplierSpecific},
		DefaultMaterial: "heat",
	},
	"3.1": {
		Code: "3.1", Name: "Purchased goods and services", Scope: 3, Slug: "purchased_goods",
		Methods: []MethodKind{MethodPhysical, MethodSpend, MethodSupplierSpecific},
	},
	"3.2": {
		Code: "3.2", Name: "Capital goods", Scope: 3, Slug: "capital_goods",
		Methods: []MethodKind{MethodPhysical, MethodSpend, MethodSupplierSpecific},
	},
	"3.3": {
		Code: "3.3", Name: "Fuel- and energy-related activities", Scope: 3, Slug: "fuel_energy",
		Methods: []MethodKind{MethodPhysical, MethodSupplierSpecific},
	},
	"3.4": {
		Code: "3.4", Name: "Upstream transportation and distribution", Scope: 3, Slug: "upstream_transport",
		Methods: []MethodKind{MethodDistance, MethodSpend, MethodSupplierSpecific},
		Freight: true,
	},
	"3.5": {
		Code: "3.5", Name: "Waste generated in operations", Scope: 3, Slug: "waste",
		Methods:   []MethodKind{MethodPhysical, MethodSpend, MethodSupplierSpecific},
		Treatment: true,
	},
	"3.6": {
		Code: "3.6", Name: "Business travel", Scope: 3, Slug: "business_travel",
		Methods:   []MethodKind{MethodDistance, MethodSpend, MethodAverage},
		Passenger: true,
	},
	"3.7": {
		Code: "3.7", Name: "Employee commuting", Scope: 3, Slug: "employee_commuting",
		Methods:   []MethodKind{MethodDistance, MethodAverage},
		Passenger: true,
	},
	"3.8": {
		Code: "3.8", Name: "Upstream leased assets", Scope: 3, Slug: "upstream_leased",
		Methods: []MethodKind{MethodSiteSpecific, MethodAverage, MethodSpend},
	},
	"3.9": {
		Code: "3.9", Name: "Downstream transportation and distribution", Scope: 3, Slug: "downstream_transport",
		Methods: []MethodKind{MethodDistance, MethodSpend, MethodSupplierSpecific},
		Freight: true,
	},
	"3.10": {
		Code: "3.10", Name: "Processing of sold products", Scope: 3, Slug: "processing_sold",
		Methods: []MethodKind{MethodAverage, MethodSiteSpecific, MethodSupplierSpecific},
	},
	"3.11": {
		Code: "3.11", Name: "Use of sold products", Scope: 3, Slug: "use_of_sold",
		Methods: []MethodKind{MethodAverage, MethodSiteSpecific},
	},
	"3.12": {
		Code: "3.12", Name: "End-of-life treatment of sold products", Scope: 3, Slug: "end_of_life",
		Methods:   []MethodKind{MethodPhysical, MethodAverage},
		Treatment: true,
	},
	"3.13": {
		Code: "3.13", Name: "Downstream leased assets", Scope: 3, Slug: "downstream_leased",
		Methods: []MethodKind{MethodSiteSpecific, MethodAverage},
	},
	"3.14": {
		Code: "3.14", Name: "Franchises", Scope: 3, Slug: "franchises",
		Methods: []MethodKind{MethodSiteSpecific, MethodAverage},
	},
	"3.15": {
		Code: "3.15", Name: "Investments", Scope: 3, Slug: "investments",
		Methods: []MethodKind{MethodSpend, MethodSupplierSpecific},
	},
}

// LookupCategory returns the category registered under code.
func LookupCategory(code string) (Category, bool) {
	c, ok := registry[strings.TrimSpace(code)]
	return c, ok
}

// Categories returns every registered category ordered by scope and number.
func Categories() []Category {
	out := make([]Category, 0, len(registry))
	for _, c := range registry {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		return categoryLess(out[i].Code, out[j].Code)
	})
	return out
}

// categoryLess orders "3.2" before "3.10".
func categoryLess(a, b string) bool {
	as := strings.SplitN(a, ".", 2)
	bs := strings.SplitN(b, ".", 2)
	for i := 0; i < 2; i++ {
		var x, y int
		if i < len(as) {
			x, _ = strconv.Atoi(as[i])
		}
		if i < len(bs) {
			y, _ = strconv.Atoi(bs[i])
		}
		if x != y {
			return x < y
		}
	}
	return a < b
}

// selectorAliases maps common spellings to catalog selectors.
//
//nolint:gochecknoglobals // Static alias table.
var selectorAliases = map[string]string{
	"aluminum":    "aluminium",
	"gas":         "natural_gas",
	"gasoline":    "petrol",
	"fuel_oil":    "heating_oil",
	"truck":       "hgv",
	"lorry":       "hgv",
	"train":       "rail",
	"ship":        "sea",
	"flight":      "air",
	"plane":       "air",
	"data_centre": "data_center",
	"electric":    "electricity",
	"recycled":    "recycling",
	"incinerated": "incineration",
	"landfilled":  "landfill",
	"anaerobic":   "anaerobic_digestion",
	"short_haul":  "short",
	"long_haul":   "long",
	"waste":       "waste_management",
	"it_services": "it",
	"homeworking": "remote_worker",
	"commuter":    "employee",
	"hotel_night": "hotel_stay",
	"mixed":       mixedSuffix,
	"generic":     genericSuffix,
}

// normalizeSelector lower-cases a selector, replaces spaces and hyphens with
// underscores and applies aliases.
func normalizeSelector(s string) string {
	n := strings.ToLower(strings.TrimSpace(s))
	n = strings.NewReplacer(" ", "_", "-", "_").Replace(n)
	if alias, ok := selectorAliases[n]; ok {
		return alias
	}
	return n
}

// normalizeGas compacts a gas name: "R-410A" and "r 410a" become "r410a".
func normalizeGas(s string) string {
	n := strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "", "-", "", "_", "").Replace(n)
}
