package emission

import (
	"context"
	"fmt"
	"sync"
)

// fakeFactors is an in-memory FactorSource keyed by "key|region".
type fakeFactors struct {
	mu      sync.Mutex
	factors map[string]EmissionFactor
	errs    map[string]error
	calls   []string
}

func newFakeFactors() *fakeFactors {
	return &fakeFactors{factors: map[string]EmissionFactor{}, errs: map[string]error{}}
}

func (f *fakeFactors) add(key, region string, value float64, unit string) {
	f.factors[key+"|"+region] = EmissionFactor{
		ActivityKey:  key,
		CO2eFactor:   value,
		ActivityUnit: unit,
		FactorUnit:   FactorUnitFor(unit),
		Source:       "test",
		Region:       region,
		Year:         2024,
	}
}

func (f *fakeFactors) Factor(ctx context.Context, key, region string) (EmissionFactor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, key+"|"+region)
	if err := ctx.Err(); err != nil {
		return EmissionFactor{}, err
	}
	if err, ok := f.errs[key+"|"+region]; ok {
		return EmissionFactor{}, err
	}
	if ef, ok := f.factors[key+"|"+region]; ok {
		return ef, nil
	}
	return EmissionFactor{}, fmt.Errorf("%w: %s/%s", ErrReferenceNotFound, key, region)
}

// fakePrices is an in-memory PriceSource keyed by "fuel|currency".
type fakePrices struct {
	prices map[string]FuelPrice
}

func (f *fakePrices) add(fuel, currency string, price float64, unit string) {
	if f.prices == nil {
		f.prices = map[string]FuelPrice{}
	}
	f.prices[fuel+"|"+currency] = FuelPrice{
		FuelType:     fuel,
		Currency:     currency,
		PricePerUnit: price,
		Unit:         unit,
		Source:       "test-prices",
	}
}

func (f *fakePrices) FuelPrice(ctx context.Context, fuel, currency, _ string) (FuelPrice, error) {
	if err := ctx.Err(); err != nil {
		return FuelPrice{}, err
	}
	if p, ok := f.prices[fuel+"|"+currency]; ok {
		return p, nil
	}
	return FuelPrice{}, fmt.Errorf("%w: %s/%s", ErrReferenceNotFound, fuel, currency)
}
