// Package cbam computes Carbon Border Adjustment Mechanism exposure for
// imported goods: embedded emissions from actual or EU default specific
// embedded emissions (SEE), the deduction for a carbon price paid abroad, and
// the number and cost of CBAM certificates.
//
// All quantities are in tonnes of CO2e; prices are in EUR per tonne.
package cbam

import (
	"sort"
	"strings"
)

// Sector is a CBAM goods sector.
type Sector string

// CBAM sectors in scope.
const (
	SectorCement      Sector = "cement"
	SectorIronSteel   Sector = "iron_steel"
	SectorAluminium   Sector = "aluminium"
	SectorFertilisers Sector = "fertilisers"
	SectorHydrogen    Sector = "hydrogen"
)

// Product is a CBAM good identified by a Combined Nomenclature prefix.
type Product struct {
	CNPrefix string `json:"cn_prefix"`
	Name     string `json:"name"`
	Sector   Sector `json:"sector"`
}

//nolint:gochecknoglobals // Static product scope table.
var products = []Product{
	{"2507", "Kaolinic clays", SectorCement},
	{"2523", "Cement", SectorCement},
	{"252310", "Cement clinker", SectorCement},
	{"252321", "White Portland cement", SectorCement},
	{"252329", "Grey Portland cement", SectorCement},
	{"252390", "Other hydraulic cements", SectorCement},

	{"2601", "Agglomerated iron ores", SectorIronSteel},
	{"72", "Iron and steel", SectorIronSteel},
	{"7201", "Pig iron", SectorIronSteel},
	{"7203", "Direct reduced iron", SectorIronSteel},
	{"7207", "Semi-finished steel", SectorIronSteel},
	{"7208", "Hot-rolled flat steel", SectorIronSteel},
	{"7209", "Cold-rolled flat steel", SectorIronSteel},
	{"7213", "Steel wire rod", SectorIronSteel},
	{"73", "Articles of iron or steel", SectorIronSteel},

	{"76", "Aluminium", SectorAluminium},
	{"7601", "Unwrought aluminium", SectorAluminium},
	{"7604", "Aluminium bars and profiles", SectorAluminium},
	{"7606", "Aluminium plates and sheets", SectorAluminium},

	{"2808", "Nitric acid", SectorFertilisers},
	{"2814", "Ammonia", SectorFertilisers},
	{"283421", "Potassium nitrate", SectorFertilisers},
	{"3102", "Nitrogenous fertilisers", SectorFertilisers},
	{"3105", "Mixed fertilisers", SectorFertilisers},

	{"280410", "Hydrogen", SectorHydrogen},
}

// NormalizeCN strips spaces and dots from a CN code: "7208 51 20" becomes
// "72085120".
func NormalizeCN(cn string) string {
	return strings.NewReplacer(" ", "", ".", "").Replace(strings.TrimSpace(cn))
}

// LookupProduct returns the most specific product whose prefix matches cn.
func LookupProduct(cn string) (Product, bool) {
	cn = NormalizeCN(cn)
	if cn == "" {
		return Product{}, false
	}
	var best Product
	for _, p := range products {
		if strings.HasPrefix(cn, p.CNPrefix) && len(p.CNPrefix) > len(best.CNPrefix) {
			best = p
		}
	}
	return best, best.CNPrefix != ""
}

// Products returns the product scope ordered by CN prefix.
func Products() []Product {
	out := make([]Product, len(products))
	copy(out, products)
	sort.Slice(out, func(i, j int) bool { return out[i].CNPrefix < out[j].CNPrefix })
	return out
}
