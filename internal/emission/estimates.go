package emission

import "strings"

// EstimateSource labels factors taken from the embedded estimate table.
const EstimateSource = "embedded-estimate"

// Fallback key suffixes. Unmapped selections resolve to one of these.
const (
	genericSuffix = "_generic"
	mixedSuffix   = "_mixed"
)

// estimate is one embedded default factor.
type estimate struct {
	value float64
	unit  string
}

// Shared sub-tables. Values are kg CO2e per activity unit and follow published
// conversion-factor sets (DEFRA/BEIS, EPA, IPCC AR5 GWP100). They are preview
// estimates only; authoritative factors come from the reference service.
//
//nolint:gochecknoglobals // Static estimate tables.
var (
	stationaryFuels = map[string]estimate{
		"diesel":       {2.70553, "l"},
		"natural_gas":  {0.18290, "kWh"},
		"lpg":          {1.55713, "l"},
		"heating_oil":  {2.54016, "l"},
		"propane":      {1.54358, "l"},
		"coal":         {2.40, "kg"},
		"wood_pellets": {0.05, "kg"},
		mixedSuffix:    {0.25, "kWh"},
	}

	mobileFuels = map[string]estimate{
		"diesel":    {2.68787, "l"},
		"petrol":    {2.33, "l"},
		"lpg":       {1.55713, "l"},
		"biodiesel": {0.17, "l"},
		"cng":       {2.54, "kg"},
		mixedSuffix: {2.50, "l"},
	}

	vehicleDistances = map[string]estimate{
		"car":         {0.171, "vehicle-km"},
		"van":         {0.240, "vehicle-km"},
		"hgv":         {0.860, "vehicle-km"},
		"motorcycle":  {0.113, "vehicle-km"},
		"bus":         {1.020, "vehicle-km"},
		genericSuffix: {0.200, "vehicle-km"},
	}

	// refrigerantGWP holds GWP100 values (IPCC AR5) keyed by compacted gas name.
	refrigerantGWP = map[string]estimate{
		"r134a":       {1300, "kg"},
		"r410a":       {1924, "kg"},
		"r32":         {677, "kg"},
		"r404a":       {3943, "kg"},
		"r407c":       {1624, "kg"},
		"r22":         {1760, "kg"},
		"r507a":       {3985, "kg"},
		"r744":        {1, "kg"},
		"r290":        {3, "kg"},
		"r1234yf":     {1, "kg"},
		"sf6":         {23500, "kg"},
		"ch4":         {28, "kg"},
		"n2o":         {265, "kg"},
		"hfc23":       {12400, "kg"},
		genericSuffix: {2000, "kg"},
	}

	freightModes = map[string]estimate{
		"road":            {0.107, "tonne-km"},
		"road.hgv":        {0.107, "tonne-km"},
		"road.van":        {0.600, "tonne-km"},
		"rail":            {0.028, "tonne-km"},
		"sea":             {0.016, "tonne-km"},
		"inland_waterway": {0.031, "tonne-km"},
		"air":             {1.130, "tonne-km"},
		genericSuffix:     {0.100, "tonne-km"},
	}

	passengerModes = map[string]estimate{
		"air":         {0.150, "passenger-km"},
		"air.short":   {0.151, "passenger-km"},
		"air.long":    {0.148, "passenger-km"},
		"rail":        {0.035, "passenger-km"},
		"car":         {0.171, "passenger-km"},
		"bus":         {0.105, "passenger-km"},
		"taxi":        {0.149, "passenger-km"},
		"ferry":       {0.113, "passenger-km"},
		"motorcycle":  {0.113, "passenger-km"},
		genericSuffix: {0.150, "passenger-km"},
	}

	wasteTreatments = map[string]estimate{
		"_mixed.landfill":          {0.467, "kg"},
		"_mixed.incineration":      {0.021, "kg"},
		"_mixed.recycling":         {0.021, "kg"},
		"paper.landfill":           {1.042, "kg"},
		"paper.recycling":          {0.021, "kg"},
		"food.landfill":            {0.700, "kg"},
		"food.composting":          {0.0089, "kg"},
		"food.anaerobic_digestion": {0.0089, "kg"},
		"plastic.landfill":         {0.009, "kg"},
		"plastic.incineration":     {0.021, "kg"},
		"plastic.recycling":        {0.021, "kg"},
		"metal.landfill":           {0.009, "kg"},
		"metal.recycling":          {0.021, "kg"},
		"glass.recycling":          {0.021, "kg"},
		"wood.landfill":            {0.828, "kg"},
		genericSuffix:              {0.467, "kg"},
	}

	siteFuels = map[string]estimate{
		"electricity": {0.436, "kWh"},
		"natural_gas": {0.1829, "kWh"},
		"diesel":      {2.70553, "l"},
		"heat":        {0.1707, "kWh"},
		genericSuffix: {0.300, "kWh"},
	}

	buildingAverages = map[string]estimate{
		"office":      {55, "m2-year"},
		"retail":      {80, "m2-year"},
		"warehouse":   {30, "m2-year"},
		"data_center": {400, "m2-year"},
		"restaurant":  {250, "m2-year"},
		"hotel":       {120, "m2-year"},
		genericSuffix: {60, "m2-year"},
	}
)

// catalog maps every known activity key to its embedded estimate.
//
//nolint:gochecknoglobals // Built once from the literal tables above.
var catalog = buildCatalog()

// buildCatalog assembles the activity-key catalog. Keys follow
// "<category slug>.<selector>" with method segments for spend, average and
// site-specific data.
//
//nolint:funlen // Declarative table assembly.
func buildCatalog() map[string]estimate {
	c := make(map[string]estimate)
	add := func(prefix string, table map[string]estimate) {
		for sel, e := range table {
			c[prefix+"."+sel] = e
		}
	}

	add("stationary_combustion", stationaryFuels)
	add("mobile_combustion", mobileFuels)
	add("mobile_combustion", vehicleDistances)
	add("fugitive", refrigerantGWP)

	add("electricity", map[string]estimate{
		"grid":        {0.436, "kWh"},
		genericSuffix: {0.436, "kWh"},
	})
	add("heat_steam", map[string]estimate{
		"heat":        {0.1707, "kWh"},
		"steam":       {0.1707, "kWh"},
		"cooling":     {0.0500, "kWh"},
		genericSuffix: {0.1700, "kWh"},
	})

	add("purchased_goods", map[string]estimate{
		"steel":     {1.85, "kg"},
		"aluminium": {8.24, "kg"},
		"copper":    {3.81, "kg"},
		"cement":    {0.91, "kg"},
		"concrete":  {0.13, "kg"},
		"plastic":   {3.10, "kg"},
		"paper":     {0.92, "kg"},
		"glass":     {0.85, "kg"},
		"textiles":  {15.0, "kg"},
		"timber":    {0.31, "kg"},
		mixedSuffix: {1.50, "kg"},
	})
	add("purchased_goods.spend", map[string]estimate{
		"manufacturing": {0.45, "USD"},
		"services":      {0.15, "USD"},
		"construction":  {0.35, "USD"},
		"it":            {0.20, "USD"},
		"food":          {0.60, "USD"},
		"chemicals":     {0.55, "USD"},
		"textiles":      {0.50, "USD"},
		"transport":     {0.55, "USD"},
		"utilities":     {0.90, "USD"},
		genericSuffix:   {0.30, "USD"},
	})

	add("capital_goods", map[string]estimate{
		"steel":        {1.85, "kg"},
		"machinery":    {2.00, "kg"},
		"vehicles":     {4.50, "kg"},
		"it_equipment": {25.0, "kg"},
		"furniture":    {1.20, "kg"},
		mixedSuffix:    {2.00, "kg"},
	})
	add("capital_goods.spend", map[string]estimate{
		"machinery":    {0.40, "USD"},
		"construction": {0.35, "USD"},
		"it":           {0.20, "USD"},
		"vehicles":     {0.38, "USD"},
		genericSuffix:  {0.35, "USD"},
	})

	add("fuel_energy", map[string]estimate{
		"diesel":      {0.61, "l"},
		"petrol":      {0.59, "l"},
		"natural_gas": {0.030, "kWh"},
		"electricity": {0.045, "kWh"},
		genericSuffix: {0.050, "kWh"},
	})

	add("upstream_transport", freightModes)
	add("upstream_transport.spend", map[string]estimate{
		"transport":   {0.55, "USD"},
		genericSuffix: {0.55, "USD"},
	})
	add("downstream_transport", freightModes)
	add("downstream_transport.spend", map[string]estimate{
		"transport":   {0.55, "USD"},
		genericSuffix: {0.55, "USD"},
	})

	add("waste", wasteTreatments)
	add("waste.spend", map[string]estimate{
		"waste_management": {0.60, "USD"},
		genericSuffix:      {0.60, "USD"},
	})
	add("end_of_life", wasteTreatments)
	add("end_of_life.average", map[string]estimate{
		"packaging":   {0.30, "kg"},
		"electronics": {1.50, "kg"},
		genericSuffix: {0.50, "kg"},
	})

	add("business_travel", passengerModes)
	add("business_travel.spend", map[string]estimate{
		"travel":      {0.25, "USD"},
		"hotel":       {0.20, "USD"},
		genericSuffix: {0.25, "USD"},
	})
	add("business_travel.average", map[string]estimate{
		"hotel_stay":  {15.0, "room-night"},
		genericSuffix: {15.0, "room-night"},
	})

	add("employee_commuting", passengerModes)
	add("employee_commuting.average", map[string]estimate{
		"employee":      {2.30, "employee-day"},
		"remote_worker": {0.34, "employee-day"},
		genericSuffix:   {2.30, "employee-day"},
	})

	add("upstream_leased.site", siteFuels)
	add("upstream_leased.average", buildingAverages)
	add("upstream_leased.spend", map[string]estimate{
		"real_estate": {0.12, "USD"},
		genericSuffix: {0.12, "USD"},
	})

	add("processing_sold.average", map[string]estimate{
		"metal_products": {250, "t"},
		"chemicals":      {400, "t"},
		"food":           {150, "t"},
		"plastics":       {320, "t"},
		genericSuffix:    {200, "t"},
	})
	add("processing_sold.site", siteFuels)

	add("use_of_sold.average", map[string]estimate{
		"laptop":          {150, "unit"},
		"smartphone":      {16, "unit"},
		"washing_machine": {600, "unit"},
		"refrigerator":    {900, "unit"},
		"lightbulb":       {12, "unit"},
		genericSuffix:     {100, "unit"},
	})
	add("use_of_sold.site", siteFuels)

	add("downstream_leased.site", siteFuels)
	add("downstream_leased.average", buildingAverages)
	add("franchises.site", siteFuels)
	add("franchises.average", buildingAverages)

	add("investments.spend", map[string]estimate{
		"equity":          {0.15, "USD"},
		"debt":            {0.10, "USD"},
		"project_finance": {0.30, "USD"},
		"real_estate":     {0.08, "USD"},
		genericSuffix:     {0.14, "USD"},
	})

	return c
}

// lookupEstimate returns the embedded estimate for key. It then tries the
// generic and mixed keys of each enclosing prefix, longest first, and reports
// the key that matched.
func lookupEstimate(key string) (string, estimate, bool) {
	if e, ok := catalog[key]; ok {
		return key, e, true
	}
	prefix := key
	for {
		idx := strings.LastIndex(prefix, ".")
		if idx < 0 {
			return "", estimate{}, false
		}
		prefix = prefix[:idx]
		for _, suffix := range []string{genericSuffix, mixedSuffix} {
			candidate := prefix + "." + suffix
			if e, ok := catalog[candidate]; ok {
				return candidate, e, true
			}
		}
	}
}

// KnownActivityKey reports whether key is in the embedded catalog.
func KnownActivityKey(key string) bool {
	_, ok := catalog[key]
	return ok
}

// EstimateFactor returns the embedded estimate for key as an EmissionFactor.
// The second result is false when neither the key nor any enclosing generic
// key is known.
func EstimateFactor(key string) (EmissionFactor, bool) {
	matched, e, ok := lookupEstimate(key)
	if !ok {
		return EmissionFactor{}, false
	}
	return EmissionFactor{
		ActivityKey:  matched,
		CO2eFactor:   e.value,
		ActivityUnit: e.unit,
		FactorUnit:   FactorUnitFor(e.unit),
		Source:       EstimateSource,
		Region:       GlobalRegion,
	}, true
}

// FactorUnitFor returns the display unit of a factor per activityUnit.
func FactorUnitFor(activityUnit string) string {
	return "kg CO2e/" + activityUnit
}
