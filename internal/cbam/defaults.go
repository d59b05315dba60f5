package cbam

import (
	"context"
	"strings"
)

// EmbeddedDefaultSource labels default SEE taken from the embedded table.
const EmbeddedDefaultSource = "embedded-eu-default"

// SectorFallbackSource labels the sector-wide fallback SEE.
const SectorFallbackSource = "sector-fallback"

// DefaultGridFactor is the grid factor in tCO2/MWh for countries without an
// entry in the grid table.
const DefaultGridFactor = 0.436

// DefaultSEE holds direct and indirect default SEE in tCO2e per tonne.
type DefaultSEE struct {
	CNCode   string  `json:"cn_code"`
	Country  string  `json:"country"`
	Direct   float64 `json:"direct_see"`
	Indirect float64 `json:"indirect_see"`
	Source   string  `json:"source"`
}

// DefaultSource returns EU default SEE values. Implementations return an
// error wrapping ErrNotFound when no value exists.
type DefaultSource interface {
	DefaultSEE(ctx context.Context, cnCode, country string) (DefaultSEE, error)
}

type see struct{ direct, indirect float64 }

// embeddedDefaults holds EU transitional-period default values by CN prefix.
//
//nolint:gochecknoglobals // Static default table.
var embeddedDefaults = map[string]see{
	"2523":   {0.76, 0.06},
	"252310": {0.89, 0.07},
	"252321": {0.98, 0.09},
	"252329": {0.70, 0.06},
	"252390": {0.60, 0.05},

	"2601": {0.31, 0.03},
	"72":   {2.05, 0.30},
	"7201": {1.90, 0.20},
	"7203": {1.25, 0.35},
	"7207": {2.10, 0.30},
	"7208": {2.20, 0.32},
	"7209": {2.30, 0.38},
	"7213": {2.25, 0.34},
	"73":   {2.30, 0.36},

	"76":   {1.90, 6.50},
	"7601": {1.70, 6.30},
	"7604": {2.00, 6.60},
	"7606": {2.10, 6.70},

	"2808": {0.93, 0.03},
	"2814": {2.40, 0.10},
	"3102": {2.10, 0.10},
	"3105": {1.60, 0.10},

	"280410": {10.40, 0.05},
}

// sectorFallback is used for products without a CN-level default.
//
//nolint:gochecknoglobals // Static fallback table.
var sectorFallback = map[Sector]see{
	SectorCement:      {0.80, 0.07},
	SectorIronSteel:   {2.30, 0.35},
	SectorAluminium:   {2.00, 7.00},
	SectorFertilisers: {2.50, 0.10},
	SectorHydrogen:    {10.50, 0.10},
}

// gridFactors holds average grid emission factors in tCO2/MWh.
//
//nolint:gochecknoglobals // Static grid factor table.
var gridFactors = map[string]float64{
	"CN": 0.581,
	"IN": 0.713,
	"TR": 0.442,
	"RU": 0.360,
	"UA": 0.380,
	"US": 0.367,
	"GB": 0.207,
	"NO": 0.019,
	"ZA": 0.928,
	"BR": 0.098,
	"KR": 0.436,
	"JP": 0.457,
	"EG": 0.470,
	"VN": 0.520,
	"RS": 0.690,
	"BA": 0.780,
}

// embeddedDefault returns the CN-level default with the longest matching prefix.
func embeddedDefault(cn string) (see, bool) {
	var best string
	for prefix := range embeddedDefaults {
		if strings.HasPrefix(cn, prefix) && len(prefix) > len(best) {
			best = prefix
		}
	}
	if best == "" {
		return see{}, false
	}
	return embeddedDefaults[best], true
}

// GridFactor returns the grid factor for a country and whether it came from
// the table rather than the default.
func GridFactor(country string) (float64, bool) {
	if f, ok := gridFactors[strings.ToUpper(strings.TrimSpace(country))]; ok {
		return f, true
	}
	return DefaultGridFactor, false
}
