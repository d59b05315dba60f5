package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rshade/carbonfocus/internal/cbam"
	"github.com/rshade/carbonfocus/internal/config"
	"github.com/rshade/carbonfocus/internal/engine"
)

// CBAMExposureParams holds the flags of "cbam exposure".
type CBAMExposureParams struct {
	CNCode         string
	MassTonnes     float64
	Country        string
	DirectSEE      float64
	IndirectSEE    float64
	ElectricityMWh float64
	ForeignPrice   float64
	PaidTonnage    float64
	EUETSPrice     float64
}

// NewCBAMExposureCmd creates the "cbam exposure" command.
func NewCBAMExposureCmd() *cobra.Command {
	var p CBAMExposureParams

	cmd := &cobra.Command{
		Use:   "exposure",
		Short: "Embedded emissions, carbon price deduction and certificates for one import",
		Long: `Computes the embedded emissions of an imported CBAM good, deducts the carbon
price already paid in the country of origin and prices the remaining
certificates at the EU ETS price (pricing.eu_ets_price_eur, or --ets-price).

Actual SEE values are used when given; otherwise EU default values apply.`,
		Example: `  # Default values, carbon price of EUR 10/t paid in China
  carbonfocus cbam exposure --cn "7208 51 20" --mass 100 --country CN --foreign-price 10

  # Actual direct SEE, indirect from metered electricity
  carbonfocus cbam exposure --cn 7601 --mass 20 --country NO --direct-see 1.6 --electricity-mwh 300`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCBAMExposure(cmd, p)
		},
	}

	f := cmd.Flags()
	f.StringVar(&p.CNCode, "cn", "", "Combined Nomenclature code (required)")
	f.Float64Var(&p.MassTonnes, "mass", 0, "imported mass in tonnes (required)")
	f.StringVar(&p.Country, "country", "", "ISO country of origin (required)")
	f.Float64Var(&p.DirectSEE, "direct-see", 0, "actual direct SEE in tCO2e per tonne")
	f.Float64Var(&p.IndirectSEE, "indirect-see", 0, "actual indirect SEE in tCO2e per tonne")
	f.Float64Var(&p.ElectricityMWh, "electricity-mwh", 0, "electricity consumed in production, in MWh")
	f.Float64Var(&p.ForeignPrice, "foreign-price", 0, "carbon price paid abroad in EUR per tonne")
	f.Float64Var(&p.PaidTonnage, "paid-tonnage", 0, "tonnage the foreign price was paid on; defaults to all")
	f.Float64Var(&p.EUETSPrice, "ets-price", 0, "EU ETS price in EUR per tonne; overrides the config")
	_ = cmd.MarkFlagRequired("cn")
	_ = cmd.MarkFlagRequired("mass")
	_ = cmd.MarkFlagRequired("country")
	return cmd
}

// ToRequest converts the flags into an engine request. Only flags that were
// set become actual values.
func (p CBAMExposureParams) ToRequest(changed func(string) bool) engine.ExposureRequest {
	req := engine.ExposureRequest{
		EmbeddedInput: cbam.EmbeddedInput{
			CNCode:      p.CNCode,
			MassTonnes:  p.MassTonnes,
			CountryCode: strings.ToUpper(p.Country),
		},
		ForeignCarbonPriceEUR: p.ForeignPrice,
		EUETSPriceEUR:         p.EUETSPrice,
	}
	if changed("direct-see") {
		v := p.DirectSEE
		req.ActualDirectSEE = &v
	}
	if changed("indirect-see") {
		v := p.IndirectSEE
		req.ActualIndirectSEE = &v
	}
	if changed("electricity-mwh") {
		v := p.ElectricityMWh
		req.ElectricityConsumptionMWh = &v
	}
	if changed("paid-tonnage") {
		v := p.PaidTonnage
		req.PaidTonnageTCO2e = &v
	}
	return req
}

func runCBAMExposure(cmd *cobra.Command, p CBAMExposureParams) error {
	eng, err := newEngine(cmd)
	if err != nil {
		return err
	}
	exposure, err := eng.Exposure(cmd.Context(), p.ToRequest(cmd.Flags().Changed))
	if err != nil {
		return fmt.Errorf("CBAM exposure failed: %w", err)
	}
	if outputFormat() == config.FormatJSON {
		return writeJSON(cmd.OutOrStdout(), exposure)
	}
	return renderExposure(cmd.OutOrStdout(), exposure)
}

// NewCBAMProductsCmd creates the "cbam products" command listing the goods in
// CBAM scope.
func NewCBAMProductsCmd() *cobra.Command {
	var sector string

	cmd := &cobra.Command{
		Use:   "products",
		Short: "List the goods in CBAM scope",
		RunE: func(cmd *cobra.Command, _ []string) error {
			products := cbam.Products()
			if sector != "" {
				filtered := products[:0:0]
				for _, prod := range products {
					if strings.EqualFold(string(prod.Sector), sector) {
						filtered = append(filtered, prod)
					}
				}
				products = filtered
			}
			if outputFormat() == config.FormatJSON {
				return writeJSON(cmd.OutOrStdout(), products)
			}
			return renderProducts(cmd.OutOrStdout(), products)
		},
	}
	cmd.Flags().StringVar(&sector, "sector", "",
		"only list one sector: cement, iron_steel, aluminium, fertilisers, hydrogen")
	return cmd
}
