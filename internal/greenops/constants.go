package greenops

// Equivalency factors in kg CO2e per unit of activity. An equivalent is
// kg_CO2e / factor.
// Source: EPA Greenhouse Gas Equivalencies Calculator (2024 edition).
const (
	// KgPerKmDriven is an average passenger car, 0.192 kg per mile.
	KgPerKmDriven = 0.192 / 1.609344

	// KgPerSmartphoneCharge is one full smartphone charge.
	KgPerSmartphoneCharge = 0.00822

	// KgPerTreeSeedling is the carbon absorbed by a tree seedling grown for
	// ten years.
	KgPerTreeSeedling = 60.0

	// KgPerHomeDay is one day of average household electricity use.
	KgPerHomeDay = 18.3
)

// Unit conversions to kilograms.
const (
	gramsToKg  = 0.001
	tonnesToKg = 1000.0
	poundsToKg = 0.453592
)

// Display thresholds.
const (
	// MinEquivalencyKg is the smallest footprint given equivalents; below it
	// they are meaninglessly small.
	MinEquivalencyKg = 1.0

	// TreeThresholdKg is the footprint from which tree seedlings and home
	// days are added to the output.
	TreeThresholdKg = 1000.0

	largeNumberThreshold = 1_000_000
	billionThreshold     = 1_000_000_000
)
