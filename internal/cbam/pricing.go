package cbam

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// centPlaces is the rounding applied to EUR amounts.
const centPlaces = 2

// CarbonPriceDeduction is the effect of a carbon price paid abroad.
// 0 <= DeductionTCO2e <= TotalEmissionsTCO2e and
// NetEmissionsTCO2e = TotalEmissionsTCO2e - DeductionTCO2e.
type CarbonPriceDeduction struct {
	TotalEmissionsTCO2e   float64         `json:"total_emissions_tco2e"`
	ForeignCarbonPriceEUR float64         `json:"foreign_carbon_price_eur"`
	PaidTonnageTCO2e      float64         `json:"paid_tonnage_tco2e"`
	DeductionTCO2e        float64         `json:"deduction_tco2e"`
	NetEmissionsTCO2e     float64         `json:"net_emissions_tco2e"`
	EUETSPriceEUR         float64         `json:"eu_ets_price_eur"`
	GrossCBAMCostEUR      decimal.Decimal `json:"gross_cbam_cost_eur"`
	NetCBAMCostEUR        decimal.Decimal `json:"net_cbam_cost_eur"`
}

// CertificateRequirement is the number and cost of CBAM certificates.
// FractionalCertificates is reported separately and is not purchasable.
type CertificateRequirement struct {
	NetEmissionsTCO2e      float64         `json:"net_emissions_tco2e"`
	CertificatesRequired   int64           `json:"certificates_required"`
	FractionalCertificates float64         `json:"fractional_certificates"`
	EUETSPriceEUR          float64         `json:"eu_ets_price_eur"`
	EstimatedCostEUR       decimal.Decimal `json:"estimated_cost_eur"`
}

// Pricer applies the EU ETS reference price.
type Pricer struct {
	EUETSPriceEUR float64
}

// NewPricer returns a pricer for a positive EU ETS price in EUR per tonne.
func NewPricer(euETSPriceEUR float64) (*Pricer, error) {
	if !positive(euETSPriceEUR) {
		return nil, fmt.Errorf("%w: EU ETS price must be > 0, got %v", ErrInvalidInput, euETSPriceEUR)
	}
	return &Pricer{EUETSPriceEUR: euETSPriceEUR}, nil
}

// ApplyDeduction deducts the tonnage covered by a foreign carbon price paid
// on the whole of total.
func (p *Pricer) ApplyDeduction(totalTCO2e, foreignPriceEUR float64) (CarbonPriceDeduction, error) {
	return p.ApplyDeductionOnTonnage(totalTCO2e, foreignPriceEUR, totalTCO2e)
}

// ApplyDeductionOnTonnage deducts the tonnage covered by a foreign carbon
// price paid on paidTCO2e tonnes. The covered tonnage is
// min(foreign/ets, 1) × paid, and never exceeds total.
func (p *Pricer) ApplyDeductionOnTonnage(totalTCO2e, foreignPriceEUR, paidTCO2e float64) (CarbonPriceDeduction, error) {
	if err := p.validate(); err != nil {
		return CarbonPriceDeduction{}, err
	}
	if !nonNegative(totalTCO2e) {
		return CarbonPriceDeduction{}, fmt.Errorf("%w: total emissions must be >= 0, got %v", ErrInvalidInput, totalTCO2e)
	}
	if !nonNegative(foreignPriceEUR) {
		return CarbonPriceDeduction{}, fmt.Errorf("%w: foreign carbon price must be >= 0, got %v",
			ErrInvalidInput, foreignPriceEUR)
	}
	if !nonNegative(paidTCO2e) {
		return CarbonPriceDeduction{}, fmt.Errorf("%w: paid tonnage must be >= 0, got %v", ErrInvalidInput, paidTCO2e)
	}

	paid := math.Min(paidTCO2e, totalTCO2e)
	covered := paid
	if foreignPriceEUR < p.EUETSPriceEUR {
		covered = foreignPriceEUR * paid / p.EUETSPriceEUR
	}
	deduction := math.Max(0, math.Min(covered, totalTCO2e))
	net := math.Max(0, totalTCO2e-deduction)

	return CarbonPriceDeduction{
		TotalEmissionsTCO2e:   totalTCO2e,
		ForeignCarbonPriceEUR: foreignPriceEUR,
		PaidTonnageTCO2e:      paid,
		DeductionTCO2e:        deduction,
		NetEmissionsTCO2e:     net,
		EUETSPriceEUR:         p.EUETSPriceEUR,
		GrossCBAMCostEUR:      p.cost(totalTCO2e),
		NetCBAMCostEUR:        p.cost(net),
	}, nil
}

// RequireCertificates returns the certificates needed for net emissions at
// the pricer's EU ETS price.
func (p *Pricer) RequireCertificates(netTCO2e float64) (CertificateRequirement, error) {
	if err := p.validate(); err != nil {
		return CertificateRequirement{}, err
	}
	return RequireCertificates(netTCO2e, p.EUETSPriceEUR)
}

// RequireCertificates returns ceil(net) certificates, the fractional part
// and their cost at euETSPriceEUR.
func RequireCertificates(netTCO2e, euETSPriceEUR float64) (CertificateRequirement, error) {
	if !nonNegative(netTCO2e) {
		return CertificateRequirement{}, fmt.Errorf("%w: net emissions must be >= 0, got %v", ErrInvalidInput, netTCO2e)
	}
	if !positive(euETSPriceEUR) {
		return CertificateRequirement{}, fmt.Errorf("%w: EU ETS price must be > 0, got %v", ErrInvalidInput, euETSPriceEUR)
	}

	required := math.Ceil(netTCO2e)
	return CertificateRequirement{
		NetEmissionsTCO2e:      netTCO2e,
		CertificatesRequired:   int64(required),
		FractionalCertificates: required - netTCO2e,
		EUETSPriceEUR:          euETSPriceEUR,
		EstimatedCostEUR: decimal.NewFromFloat(required).
			Mul(decimal.NewFromFloat(euETSPriceEUR)).
			Round(centPlaces),
	}, nil
}

func (p *Pricer) validate() error {
	if p == nil || !positive(p.EUETSPriceEUR) {
		return fmt.Errorf("%w: EU ETS price must be > 0", ErrInvalidInput)
	}
	return nil
}

func (p *Pricer) cost(tonnes float64) decimal.Decimal {
	return decimal.NewFromFloat(tonnes).Mul(decimal.NewFromFloat(p.EUETSPriceEUR)).Round(centPlaces)
}

func nonNegative(v float64) bool {
	return v >= 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}
