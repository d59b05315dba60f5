package refdata

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/carbonfocus/internal/cbam"
	"github.com/rshade/carbonfocus/internal/emission"
	"github.com/rshade/carbonfocus/internal/engine/cache"
)

const datasetYAML = `
factors:
  - activity_key: electricity.grid
    co2e_factor: 0.38
    activity_unit: kWh
    source: uba
    region: DE
    year: 2024
  - activity_key: electricity.grid
    co2e_factor: 0.44
    activity_unit: kWh
    source: iea
fuel_prices:
  - fuel_type: diesel
    currency: usd
    price_per_unit: 0.9
    unit: l
    source: eia
    valid_from: 2020-01-01T00:00:00Z
  - fuel_type: diesel
    currency: EUR
    price_per_unit: 1.2
    unit: l
    region: DE
    valid_from: 2020-01-01T00:00:00Z
    valid_until: 2021-01-01T00:00:00Z
default_see:
  - cn_code: "7208 51 20"
    country: cn
    direct_see: 2.4
    indirect_see: 0.4
    source: eu-commission
`

func TestParseStatic(t *testing.T) {
	s, err := ParseStatic([]byte(datasetYAML))
	require.NoError(t, err)
	ctx := context.Background()

	f, err := s.Factor(ctx, "electricity.grid", "de")
	require.NoError(t, err)
	assert.InDelta(t, 0.38, f.CO2eFactor, 1e-12)
	assert.Equal(t, "kg CO2e/kWh", f.FactorUnit)

	g, err := s.Factor(ctx, "electricity.grid", emission.GlobalRegion)
	require.NoError(t, err)
	assert.InDelta(t, 0.44, g.CO2eFactor, 1e-12)

	p, err := s.FuelPrice(ctx, "diesel", "USD", "US")
	require.NoError(t, err)
	assert.InDelta(t, 0.9, p.PricePerUnit, 1e-12)

	_, err = s.FuelPrice(ctx, "diesel", "EUR", "DE")
	require.ErrorIs(t, err, ErrNotFound, "expired price must not be served")

	d, err := s.DefaultSEE(ctx, "72085120", "CN")
	require.NoError(t, err)
	assert.InDelta(t, 2.4, d.Direct, 1e-12)
}

func TestParseStatic_Invalid(t *testing.T) {
	_, err := ParseStatic([]byte("factors: [{co2e_factor: 1}]"))
	require.Error(t, err)
	_, err = ParseStatic([]byte("fuel_prices: [{fuel_type: diesel, currency: XYZ, price_per_unit: 1}]"))
	require.Error(t, err)
	_, err = ParseStatic([]byte("factors: {"))
	require.Error(t, err)
}

func TestLoadStatic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.yaml")
	require.NoError(t, os.WriteFile(path, []byte(datasetYAML), 0o600))

	s, err := LoadStatic(path)
	require.NoError(t, err)

	res, err := emission.NewFactorResolver(s).Resolve(context.Background(), "electricity.grid", "FR")
	require.NoError(t, err)
	assert.Equal(t, emission.TierGlobal, res.Tier)

	_, err = LoadStatic(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

// countingSource counts calls through to a Static source.
type countingSource struct {
	*Static
	factorCalls int
	seeCalls    int
}

func (c *countingSource) Factor(ctx context.Context, key, region string) (emission.EmissionFactor, error) {
	c.factorCalls++
	return c.Static.Factor(ctx, key, region)
}

func (c *countingSource) DefaultSEE(ctx context.Context, cn, country string) (cbam.DefaultSEE, error) {
	c.seeCalls++
	return c.Static.DefaultSEE(ctx, cn, country)
}

func TestCached_MemoryAndDisk(t *testing.T) {
	static, err := ParseStatic([]byte(datasetYAML))
	require.NoError(t, err)
	src := &countingSource{Static: static}

	dir := t.TempDir()
	disk, err := cache.NewFileStore(cache.Config{Enabled: true, Directory: dir, TTL: time.Hour})
	require.NoError(t, err)

	ctx := context.Background()
	c := NewCached(src, disk, time.Hour)

	for n := 0; n < 3; n++ {
		f, err := c.Factor(ctx, "electricity.grid", "DE")
		require.NoError(t, err)
		assert.InDelta(t, 0.38, f.CO2eFactor, 1e-12)
	}
	assert.Equal(t, 1, src.factorCalls)

	// A fresh process with the same disk cache does not hit the source.
	c2 := NewCached(src, disk, time.Hour)
	f, err := c2.Factor(ctx, "electricity.grid", "DE")
	require.NoError(t, err)
	assert.InDelta(t, 0.38, f.CO2eFactor, 1e-12)
	assert.Equal(t, 1, src.factorCalls)

	count, _, err := disk.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCached_NotFoundIsNotCached(t *testing.T) {
	src := &countingSource{Static: NewStatic()}
	c := NewCached(src, nil, time.Hour)
	ctx := context.Background()

	_, err := c.DefaultSEE(ctx, "7208", "CN")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = c.DefaultSEE(ctx, "7208", "CN")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 2, src.seeCalls)

	src.AddDefault(cbam.DefaultSEE{CNCode: "7208", Country: "CN", Direct: 2, Indirect: 0.3})
	d, err := c.DefaultSEE(ctx, "7208", "CN")
	require.NoError(t, err)
	assert.InDelta(t, 2.0, d.Direct, 1e-12)

	c.Flush()
	_, err = c.DefaultSEE(ctx, "7208", "CN")
	require.NoError(t, err)
	assert.Equal(t, 4, src.seeCalls)
}
