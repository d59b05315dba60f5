package engine

import (
	"context"
	"fmt"

	"github.com/rshade/carbonfocus/internal/cbam"
	"github.com/rshade/carbonfocus/internal/logging"
)

// ExposureRequest describes one CBAM import line and the carbon price paid
// for it abroad.
type ExposureRequest struct {
	cbam.EmbeddedInput

	ForeignCarbonPriceEUR float64 `json:"foreign_carbon_price_eur"`

	// PaidTonnageTCO2e is the tonnage the foreign price was paid on. Nil
	// means the whole embedded total.
	PaidTonnageTCO2e *float64 `json:"paid_tonnage_tco2e,omitempty"`

	// EUETSPriceEUR overrides the engine's EU ETS price when positive.
	EUETSPriceEUR float64 `json:"eu_ets_price_eur,omitempty"`
}

// Exposure is the full CBAM cost picture for one import line.
type Exposure struct {
	Embedded     cbam.EmbeddedEmissions      `json:"embedded"`
	Deduction    cbam.CarbonPriceDeduction   `json:"deduction"`
	Certificates cbam.CertificateRequirement `json:"certificates"`
	Warnings     []string                    `json:"warnings"`
}

// Exposure computes embedded emissions, applies the foreign carbon price
// deduction and derives the certificate requirement.
func (e *Engine) Exposure(ctx context.Context, req ExposureRequest) (Exposure, error) {
	ets := req.EUETSPriceEUR
	if ets <= 0 {
		ets = e.opts.EUETSPriceEUR
	}
	pricer, err := cbam.NewPricer(ets)
	if err != nil {
		return Exposure{}, err
	}

	embedded, err := e.cbam.CalculateEmbeddedEmissions(ctx, req.EmbeddedInput)
	if err != nil {
		return Exposure{}, err
	}

	paid := embedded.TotalEmissionsTCO2e
	if req.PaidTonnageTCO2e != nil {
		paid = *req.PaidTonnageTCO2e
	}
	deduction, err := pricer.ApplyDeductionOnTonnage(embedded.TotalEmissionsTCO2e, req.ForeignCarbonPriceEUR, paid)
	if err != nil {
		return Exposure{}, fmt.Errorf("applying carbon price deduction: %w", err)
	}
	certs, err := pricer.RequireCertificates(deduction.NetEmissionsTCO2e)
	if err != nil {
		return Exposure{}, fmt.Errorf("computing certificates: %w", err)
	}

	logging.FromContext(ctx).Debug().
		Ctx(ctx).
		Str("component", "engine").
		Str("operation", "cbam_exposure").
		Str("cn_code", embedded.CNCode).
		Str("method", string(embedded.Method)).
		Float64("total_tco2e", embedded.TotalEmissionsTCO2e).
		Float64("net_tco2e", deduction.NetEmissionsTCO2e).
		Int64("certificates", certs.CertificatesRequired).
		Msg("CBAM exposure calculated")

	return Exposure{
		Embedded:     embedded,
		Deduction:    deduction,
		Certificates: certs,
		Warnings:     embedded.Warnings,
	}, nil
}
