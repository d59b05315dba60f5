package emission

import (
	"context"
	"fmt"
	"strings"

	"github.com/rshade/carbonfocus/internal/logging"
)

// GlobalRegion is the region of factors that apply everywhere.
const GlobalRegion = "GLOBAL"

// FactorSource returns reference emission factors. Implementations return an
// error wrapping ErrReferenceNotFound when no factor exists for the pair.
type FactorSource interface {
	Factor(ctx context.Context, activityKey, region string) (EmissionFactor, error)
}

// Tier identifies which lookup tier produced a factor.
type Tier string

// Lookup tiers, in the order they are tried.
const (
	TierExact    Tier = "exact"
	TierGlobal   Tier = "global"
	TierEstimate Tier = "estimate"
)

// ResolvedFactor is a factor together with how it was found.
type ResolvedFactor struct {
	Factor     EmissionFactor `json:"factor"`
	Tier       Tier           `json:"tier"`
	Confidence Confidence     `json:"confidence"`
	Warnings   []string       `json:"warnings,omitempty"`
}

// FactorResolver looks factors up through three tiers: exact region match,
// global region, then the embedded estimate table.
type FactorResolver struct {
	source FactorSource
}

// NewFactorResolver returns a resolver backed by source. A nil source skips
// the reference tiers and resolves from embedded estimates only.
func NewFactorResolver(source FactorSource) *FactorResolver {
	return &FactorResolver{source: source}
}

// Resolve returns the most specific factor available for key and region.
//
// Every tier transition is logged at debug level and recorded as a warning.
// Source errors other than not-found make that tier unavailable; context
// cancellation aborts. It returns ErrFactorNotFound when no tier matches.
func (r *FactorResolver) Resolve(ctx context.Context, activityKey, region string) (ResolvedFactor, error) {
	log := logging.FromContext(ctx)
	region = strings.ToUpper(strings.TrimSpace(region))
	var warnings []string

	if r.source != nil {
		tiers := []struct {
			tier       Tier
			region     string
			confidence Confidence
		}{
			{TierExact, region, ConfidenceHigh},
			{TierGlobal, GlobalRegion, ConfidenceMedium},
		}
		for _, t := range tiers {
			if t.region == "" || (t.tier == TierGlobal && region == GlobalRegion) {
				continue
			}
			f, err := r.source.Factor(ctx, activityKey, t.region)
			if err == nil {
				log.Debug().
					Ctx(ctx).
					Str("component", "emission").
					Str("activity_key", activityKey).
					Str("tier", string(t.tier)).
					Str("region", t.region).
					Msg("factor resolved")
				if t.tier == TierGlobal {
					warnings = append(warnings, fmt.Sprintf(
						"no factor for %s in region %q; using the global factor", activityKey, region))
				}
				return ResolvedFactor{Factor: f, Tier: t.tier, Confidence: t.confidence, Warnings: warnings}, nil
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ResolvedFactor{}, ctxErr
			}
			if !isNotFound(err) {
				log.Warn().
					Ctx(ctx).
					Str("component", "emission").
					Str("activity_key", activityKey).
					Str("tier", string(t.tier)).
					Err(err).
					Msg("reference source unavailable, skipping tier")
				warnings = append(warnings, fmt.Sprintf(
					"reference data unavailable for %s (%s tier): %v", activityKey, t.tier, err))
				continue
			}
			log.Debug().
				Ctx(ctx).
				Str("component", "emission").
				Str("activity_key", activityKey).
				Str("tier", string(t.tier)).
				Str("region", t.region).
				Msg("factor not found, falling back")
		}
	}

	est, ok := EstimateFactor(activityKey)
	if !ok {
		return ResolvedFactor{}, fmt.Errorf("%w: %s in region %q", ErrFactorNotFound, activityKey, region)
	}
	log.Debug().
		Ctx(ctx).
		Str("component", "emission").
		Str("activity_key", activityKey).
		Str("matched_key", est.ActivityKey).
		Str("tier", string(TierEstimate)).
		Msg("using embedded estimate")

	msg := fmt.Sprintf("no reference factor for %s; using embedded estimate", activityKey)
	if est.ActivityKey != activityKey {
		msg = fmt.Sprintf("no reference factor for %s; using embedded estimate for %s", activityKey, est.ActivityKey)
	}
	warnings = append(warnings, msg)
	return ResolvedFactor{Factor: est, Tier: TierEstimate, Confidence: ConfidenceLow, Warnings: warnings}, nil
}
