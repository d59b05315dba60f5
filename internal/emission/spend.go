package emission

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rshade/carbonfocus/internal/logging"
)

// CustomPriceSource labels a conversion that used a user-supplied price.
const CustomPriceSource = "custom"

// PriceSource returns the system price for a fuel. Implementations return an
// error wrapping ErrReferenceNotFound when no price exists.
type PriceSource interface {
	FuelPrice(ctx context.Context, fuelType, currency, region string) (FuelPrice, error)
}

// SpendRequest is the input of ConvertSpendToQuantity.
type SpendRequest struct {
	Amount   float64
	Currency string
	Fuel     string
	Region   string

	// CustomPrice overrides any system price when positive.
	CustomPrice float64

	// Unit is the fuel unit a custom price is expressed per.
	Unit string

	// At selects the active price. Zero means now.
	At time.Time
}

// SpendConversion records how a spend amount became a physical quantity.
type SpendConversion struct {
	Quantity  float64  `json:"quantity"`
	PriceUsed float64  `json:"price_used"`
	Currency  string   `json:"currency"`
	Unit      string   `json:"unit"`
	Source    string   `json:"source"`
	Warnings  []string `json:"warnings,omitempty"`
}

// ConvertSpendToQuantity converts a spend amount into a fuel quantity.
//
// A positive custom price always wins. Otherwise the active system price for
// (fuel, currency, region) is used; when none exists the USD price is used and
// the amount is normalised to USD through the static currency table, with a
// warning. Quantity is rounded to two decimal places.
//
// It returns ErrNoPriceAvailable when no price can be found.
func ConvertSpendToQuantity(ctx context.Context, prices PriceSource, req SpendRequest) (SpendConversion, error) {
	if !isPositive(req.Amount) {
		return SpendConversion{}, fmt.Errorf("%w: spend amount must be > 0, got %v", ErrInvalidInput, req.Amount)
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if !IsCurrency(currency) {
		return SpendConversion{}, fmt.Errorf("%w: currency %q", ErrUnsupportedUnit, req.Currency)
	}
	if req.CustomPrice < 0 || math.IsNaN(req.CustomPrice) {
		return SpendConversion{}, fmt.Errorf("%w: custom price must be >= 0, got %v", ErrInvalidInput, req.CustomPrice)
	}

	if req.CustomPrice > 0 {
		return SpendConversion{
			Quantity:  roundTo(req.Amount/req.CustomPrice, 2),
			PriceUsed: req.CustomPrice,
			Currency:  currency,
			Unit:      req.Unit,
			Source:    CustomPriceSource,
		}, nil
	}

	if prices == nil {
		return SpendConversion{}, fmt.Errorf("%w: no price source configured for %s", ErrNoPriceAvailable, req.Fuel)
	}

	at := req.At
	if at.IsZero() {
		at = time.Now()
	}
	log := logging.FromContext(ctx)

	price, err := activePrice(ctx, prices, req.Fuel, currency, req.Region, at)
	if err == nil {
		return SpendConversion{
			Quantity:  roundTo(req.Amount/price.PricePerUnit, 2),
			PriceUsed: price.PricePerUnit,
			Currency:  currency,
			Unit:      price.Unit,
			Source:    price.Source,
		}, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return SpendConversion{}, ctxErr
	}
	if currency == BaseCurrency {
		return SpendConversion{}, fmt.Errorf("%w: %s in %s for region %q: %w",
			ErrNoPriceAvailable, req.Fuel, currency, req.Region, err)
	}

	log.Debug().
		Ctx(ctx).
		Str("component", "emission").
		Str("operation", "convert_spend").
		Str("fuel", req.Fuel).
		Str("currency", currency).
		Err(err).
		Msg("no price in requested currency, trying USD")

	usdPrice, usdErr := activePrice(ctx, prices, req.Fuel, BaseCurrency, req.Region, at)
	if usdErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return SpendConversion{}, ctxErr
		}
		return SpendConversion{}, fmt.Errorf("%w: %s in %s or %s for region %q: %w",
			ErrNoPriceAvailable, req.Fuel, currency, BaseCurrency, req.Region, usdErr)
	}
	usdAmount, convErr := ConvertCurrency(req.Amount, currency, BaseCurrency)
	if convErr != nil {
		return SpendConversion{}, convErr
	}

	return SpendConversion{
		Quantity:  roundTo(usdAmount/usdPrice.PricePerUnit, 2),
		PriceUsed: usdPrice.PricePerUnit,
		Currency:  BaseCurrency,
		Unit:      usdPrice.Unit,
		Source:    usdPrice.Source,
		Warnings: []string{fmt.Sprintf(
			"no %s price for %s; converted %s spend to USD at a reference rate and used the USD price",
			currency, req.Fuel, currency)},
	}, nil
}

// activePrice fetches a price and checks it is positive and active at t.
func activePrice(
	ctx context.Context,
	prices PriceSource,
	fuel, currency, region string,
	at time.Time,
) (FuelPrice, error) {
	p, err := prices.FuelPrice(ctx, fuel, currency, region)
	if err != nil {
		return FuelPrice{}, err
	}
	if !isPositive(p.PricePerUnit) {
		return FuelPrice{}, fmt.Errorf("%w: non-positive price %v", ErrReferenceNotFound, p.PricePerUnit)
	}
	if !p.ActiveAt(at) {
		return FuelPrice{}, fmt.Errorf("%w: price for %s/%s not active at %s",
			ErrReferenceNotFound, fuel, currency, at.Format(time.DateOnly))
	}
	return p, nil
}

// roundTo rounds v to the given number of decimal places.
func roundTo(v float64, places int) float64 {
	const base = 10
	m := math.Pow(base, float64(places))
	return math.Round(v*m) / m
}

// isNotFound reports whether err means "record absent" rather than a failure.
func isNotFound(err error) bool {
	return errors.Is(err, ErrReferenceNotFound)
}
