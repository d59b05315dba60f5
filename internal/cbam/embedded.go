package cbam

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/rshade/carbonfocus/internal/emission"
	"github.com/rshade/carbonfocus/internal/logging"
)

// Method names how SEE values were obtained.
type Method string

// SEE methods.
const (
	MethodActual  Method = "actual"
	MethodDefault Method = "default"
)

// EmbeddedInput is the input of CalculateEmbeddedEmissions. Nil pointers mean
// "not supplied".
type EmbeddedInput struct {
	CNCode                    string   `json:"cn_code"`
	MassTonnes                float64  `json:"mass_tonnes"`
	CountryCode               string   `json:"country_code"`
	ActualDirectSEE           *float64 `json:"actual_direct_see,omitempty"`
	ActualIndirectSEE         *float64 `json:"actual_indirect_see,omitempty"`
	ElectricityConsumptionMWh *float64 `json:"electricity_consumption_mwh,omitempty"`
}

// EmbeddedEmissions is the embedded-emissions result for one import line.
// TotalEmissionsTCO2e is always DirectEmissionsTCO2e + IndirectEmissionsTCO2e.
type EmbeddedEmissions struct {
	CNCode                 string              `json:"cn_code"`
	Product                string              `json:"product"`
	Sector                 Sector              `json:"sector"`
	CountryCode            string              `json:"country_code"`
	Method                 Method              `json:"method"`
	MassTonnes             float64             `json:"mass_tonnes"`
	DirectSEE              float64             `json:"direct_see"`
	IndirectSEE            float64             `json:"indirect_see"`
	TotalSEE               float64             `json:"total_see"`
	DirectEmissionsTCO2e   float64             `json:"direct_emissions_tco2e"`
	IndirectEmissionsTCO2e float64             `json:"indirect_emissions_tco2e"`
	TotalEmissionsTCO2e    float64             `json:"total_emissions_tco2e"`
	DefaultSource          string              `json:"default_source,omitempty"`
	Confidence             emission.Confidence `json:"confidence"`
	Warnings               []string            `json:"warnings"`
}

// Calculator computes embedded emissions. The zero value uses the embedded
// tables only.
type Calculator struct {
	source DefaultSource
}

// NewCalculator returns a calculator that asks source for default SEE before
// using the embedded tables. source may be nil.
func NewCalculator(source DefaultSource) *Calculator {
	return &Calculator{source: source}
}

// CalculateEmbeddedEmissions combines direct and indirect SEE into embedded
// emissions for the input mass.
//
// When any actual SEE is supplied the method is actual and a missing
// component is filled from defaults with a warning. Otherwise default SEE are
// used: the reference source, then the embedded CN table, then the sector
// fallback at low confidence. Electricity consumption without an indirect
// SEE derives indirect emissions from the country grid factor.
//
// It returns ErrUnknownProduct for CN codes outside the CBAM scope and
// ErrInvalidInput for a non-positive mass or negative SEE values.
//
//nolint:funlen,gocognit // Linear sequence of fill-in rules.
func (c *Calculator) CalculateEmbeddedEmissions(ctx context.Context, in EmbeddedInput) (EmbeddedEmissions, error) {
	cn := NormalizeCN(in.CNCode)
	product, ok := LookupProduct(cn)
	if !ok {
		return EmbeddedEmissions{}, fmt.Errorf("%w: CN code %q", ErrUnknownProduct, in.CNCode)
	}
	if !positive(in.MassTonnes) {
		return EmbeddedEmissions{}, fmt.Errorf("%w: mass must be > 0 tonnes, got %v", ErrInvalidInput, in.MassTonnes)
	}
	for name, v := range map[string]*float64{
		"actual direct SEE":       in.ActualDirectSEE,
		"actual indirect SEE":     in.ActualIndirectSEE,
		"electricity consumption": in.ElectricityConsumptionMWh,
	} {
		if v != nil && (*v < 0 || math.IsNaN(*v) || math.IsInf(*v, 0)) {
			return EmbeddedEmissions{}, fmt.Errorf("%w: %s must be >= 0, got %v", ErrInvalidInput, name, *v)
		}
	}

	country := strings.ToUpper(strings.TrimSpace(in.CountryCode))
	out := EmbeddedEmissions{
		CNCode:      cn,
		Product:     product.Name,
		Sector:      product.Sector,
		CountryCode: country,
		MassTonnes:  in.MassTonnes,
		Warnings:    []string{},
	}

	hasActual := in.ActualDirectSEE != nil || in.ActualIndirectSEE != nil
	useElectricity := in.ActualIndirectSEE == nil && in.ElectricityConsumptionMWh != nil
	needDefault := !hasActual || in.ActualDirectSEE == nil || (in.ActualIndirectSEE == nil && !useElectricity)

	var def DefaultSEE
	defConfidence := emission.ConfidenceMedium
	if needDefault {
		var warnings []string
		var err error
		def, defConfidence, warnings, err = c.lookupDefault(ctx, cn, product, country)
		if err != nil {
			return EmbeddedEmissions{}, err
		}
		out.DefaultSource = def.Source
		out.Warnings = append(out.Warnings, warnings...)
	}

	if hasActual {
		out.Method = MethodActual
		out.Confidence = emission.ConfidenceHigh
		if in.ActualDirectSEE != nil {
			out.DirectSEE = *in.ActualDirectSEE
		} else {
			out.DirectSEE = def.Direct
			out.Confidence = minConfidence(out.Confidence.Downgrade(), defConfidence)
			out.Warnings = append(out.Warnings, "actual direct SEE not supplied; using default value")
		}
		if in.ActualIndirectSEE != nil {
			out.IndirectSEE = *in.ActualIndirectSEE
		} else if !useElectricity {
			out.IndirectSEE = def.Indirect
			out.Confidence = minConfidence(out.Confidence.Downgrade(), defConfidence)
			out.Warnings = append(out.Warnings, "actual indirect SEE not supplied; using default value")
		}
	} else {
		out.Method = MethodDefault
		out.Confidence = defConfidence
		out.DirectSEE = def.Direct
		if !useElectricity {
			out.IndirectSEE = def.Indirect
		}
	}

	out.DirectEmissionsTCO2e = out.DirectSEE * in.MassTonnes
	if useElectricity {
		grid, known := GridFactor(country)
		if !known {
			out.Warnings = append(out.Warnings, fmt.Sprintf(
				"no grid factor for %q; using default %v tCO2/MWh", country, DefaultGridFactor))
		}
		out.IndirectEmissionsTCO2e = *in.ElectricityConsumptionMWh * grid
		out.IndirectSEE = out.IndirectEmissionsTCO2e / in.MassTonnes
	} else {
		out.IndirectEmissionsTCO2e = out.IndirectSEE * in.MassTonnes
	}
	out.TotalSEE = out.DirectSEE + out.IndirectSEE
	out.TotalEmissionsTCO2e = out.DirectEmissionsTCO2e + out.IndirectEmissionsTCO2e
	return out, nil
}

// lookupDefault walks the default tiers for a product.
func (c *Calculator) lookupDefault(
	ctx context.Context,
	cn string,
	product Product,
	country string,
) (DefaultSEE, emission.Confidence, []string, error) {
	log := logging.FromContext(ctx)
	var warnings []string

	if c != nil && c.source != nil {
		def, err := c.source.DefaultSEE(ctx, cn, country)
		switch {
		case err == nil:
			return def, emission.ConfidenceMedium, nil, nil
		case ctx.Err() != nil:
			return DefaultSEE{}, 0, nil, ctx.Err()
		case errors.Is(err, ErrNotFound):
			log.Debug().
				Ctx(ctx).
				Str("component", "cbam").
				Str("cn_code", cn).
				Str("country", country).
				Msg("no reference default SEE, using embedded table")
		default:
			log.Warn().
				Ctx(ctx).
				Str("component", "cbam").
				Str("cn_code", cn).
				Err(err).
				Msg("default SEE source unavailable")
			warnings = append(warnings, fmt.Sprintf("default SEE source unavailable: %v", err))
		}
	}

	if s, ok := embeddedDefault(cn); ok {
		warnings = append(warnings, fmt.Sprintf("using embedded EU default SEE for CN %s", cn))
		return DefaultSEE{
			CNCode:   cn,
			Country:  country,
			Direct:   s.direct,
			Indirect: s.indirect,
			Source:   EmbeddedDefaultSource,
		}, emission.ConfidenceMedium, warnings, nil
	}

	s := sectorFallback[product.Sector]
	log.Debug().
		Ctx(ctx).
		Str("component", "cbam").
		Str("cn_code", cn).
		Str("sector", string(product.Sector)).
		Msg("no CN default SEE, using sector fallback")
	warnings = append(warnings, fmt.Sprintf(
		"no default SEE for CN %s; using %s sector fallback", cn, product.Sector))
	return DefaultSEE{
		CNCode:   cn,
		Country:  country,
		Direct:   s.direct,
		Indirect: s.indirect,
		Source:   SectorFallbackSource,
	}, emission.ConfidenceLow, warnings, nil
}

func minConfidence(a, b emission.Confidence) emission.Confidence {
	if a < b {
		return a
	}
	return b
}

func positive(v float64) bool {
	return v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}
