package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rshade/carbonfocus/internal/emission"
)

// ActivitySpec is one activity as given on the command line or in a batch
// file. Only the fields of the selected method are used.
type ActivitySpec struct {
	Category string  `yaml:"category"`
	Method   string  `yaml:"method"`
	Quantity float64 `yaml:"quantity"`
	Unit     string  `yaml:"unit"`
	Region   string  `yaml:"region"`

	// Physical
	Material  string `yaml:"material"`
	Treatment string `yaml:"treatment"`

	// Spend
	Amount      float64 `yaml:"amount"`
	Currency    string  `yaml:"currency"`
	Sector      string  `yaml:"sector"`
	Fuel        string  `yaml:"fuel"`
	CustomPrice float64 `yaml:"custom_price"`

	// Supplier-specific, or an override for any other method.
	SupplierFactor float64 `yaml:"supplier_factor"`
	FactorUnit     string  `yaml:"factor_unit"`

	// Distance
	Mode         string  `yaml:"mode"`
	Vehicle      string  `yaml:"vehicle"`
	WeightTonnes float64 `yaml:"weight_tonnes"`
	Passengers   int     `yaml:"passengers"`

	// Average
	ProductType  string `yaml:"product_type"`
	BuildingType string `yaml:"building_type"`
}

// ToInput converts the activity into an engine input. The method defaults to
// the first method the category accepts.
func (s ActivitySpec) ToInput() (emission.ActivityInput, error) {
	if s.Category == "" {
		return emission.ActivityInput{}, errors.New("category is required")
	}
	cat, ok := emission.LookupCategory(s.Category)
	if !ok {
		return emission.ActivityInput{}, fmt.Errorf("%w: %s", emission.ErrUnknownCategory, s.Category)
	}

	kind := cat.Methods[0]
	switch {
	case s.Method == "" && s.Amount > 0 && cat.Allows(emission.MethodSpend):
		kind = emission.MethodSpend
	case s.Method != "":
		parsed, err := emission.ParseMethodKind(s.Method)
		if err != nil {
			return emission.ActivityInput{}, err
		}
		kind = parsed
	}

	input := emission.ActivityInput{
		CategoryCode: cat.Code,
		Quantity:     s.Quantity,
		Unit:         s.Unit,
		Region:       strings.ToUpper(s.Region),
	}

	switch kind {
	case emission.MethodPhysical:
		input.Method = emission.Physical{Material: s.Material, Treatment: s.Treatment}
	case emission.MethodSpend:
		input.Method = emission.Spend{
			Amount: s.Amount, Currency: strings.ToUpper(s.Currency),
			Sector: s.Sector, Fuel: s.Fuel, CustomPrice: s.CustomPrice,
		}
	case emission.MethodSupplierSpecific:
		input.Method = emission.SupplierSpecific{Factor: s.SupplierFactor, FactorUnit: s.FactorUnit}
		return input, nil
	case emission.MethodDistance:
		input.Method = emission.Distance{
			Mode: s.Mode, Vehicle: s.Vehicle, WeightTonnes: s.WeightTonnes, Passengers: s.Passengers,
		}
	case emission.MethodAverage:
		input.Method = emission.Average{ProductType: s.ProductType, BuildingType: s.BuildingType}
	case emission.MethodSiteSpecific:
		input.Method = emission.SiteSpecific{Fuel: s.Fuel}
	}

	if s.SupplierFactor != 0 {
		f := s.SupplierFactor
		input.SupplierFactor = &f
	}
	return input, nil
}

// bindActivityFlags registers the activity flags on cmd.
func bindActivityFlags(cmd *cobra.Command, s *ActivitySpec) {
	f := cmd.Flags()
	f.StringVarP(&s.Category, "category", "c", "", "GHG Protocol category code, e.g. 2.1 (required)")
	f.StringVarP(&s.Method, "method", "m", "",
		"calculation method: physical, spend, supplier_specific, distance, average, site_specific")
	f.Float64VarP(&s.Quantity, "quantity", "q", 0, "activity quantity")
	f.StringVarP(&s.Unit, "unit", "u", "", "unit of the quantity, e.g. kWh, l, km")
	f.StringVar(&s.Region, "region", "", "ISO country code; defaults to calculation.default_region")

	f.StringVar(&s.Material, "material", "", "material, fuel, gas or energy carrier")
	f.StringVar(&s.Treatment, "treatment", "", "waste treatment route")

	f.Float64Var(&s.Amount, "amount", 0, "spend amount")
	f.StringVar(&s.Currency, "currency", "", "ISO 4217 currency of the amount")
	f.StringVar(&s.Sector, "sector", "", "EEIO sector for spend on goods and services")
	f.StringVar(&s.Fuel, "fuel", "", "fuel type for fuel spend or site-specific metering")
	f.Float64Var(&s.CustomPrice, "custom-price", 0, "price per fuel unit, overriding the system price")

	f.Float64Var(&s.SupplierFactor, "supplier-factor", 0, "supplier-declared kg CO2e per unit")
	f.StringVar(&s.FactorUnit, "factor-unit", "", "unit of the supplier factor")

	f.StringVar(&s.Mode, "mode", "", "transport mode, e.g. road, rail, air")
	f.StringVar(&s.Vehicle, "vehicle", "", "vehicle class")
	f.Float64Var(&s.WeightTonnes, "weight-tonnes", 0, "freight weight in tonnes")
	f.IntVar(&s.Passengers, "passengers", 0, "number of passengers")

	f.StringVar(&s.ProductType, "product-type", "", "product type for average-data methods")
	f.StringVar(&s.BuildingType, "building-type", "", "building type for average-data methods")
}

// loadActivitySpecs reads a YAML (or JSON) list of activities.
func loadActivitySpecs(path string) ([]ActivitySpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading activities: %w", err)
	}
	var specs []ActivitySpec
	if err = yaml.Unmarshal(data, &specs); err != nil {
		return nil, fmt.Errorf("parsing activities %s: %w", path, err)
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("no activities in %s", path)
	}
	return specs, nil
}
