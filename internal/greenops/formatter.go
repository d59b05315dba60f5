package greenops

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// printer formats numbers with English thousands separators.
//
//nolint:gochecknoglobals // Global printer is idiomatic for x/text/message usage.
var printer = message.NewPrinter(language.English)

// FormatNumber formats an integer with thousands separators: 18248 becomes
// "18,248".
func FormatNumber(n int64) string {
	return printer.Sprintf("%d", n)
}

// FormatLarge abbreviates values from one million: 1.5e9 becomes
// "~1.5 billion". Smaller values are rounded and grouped.
func FormatLarge(n float64) string {
	switch {
	case n >= billionThreshold:
		return fmt.Sprintf("~%.1f billion", n/billionThreshold)
	case n >= largeNumberThreshold:
		return fmt.Sprintf("~%.1f million", n/largeNumberThreshold)
	default:
		return FormatNumber(int64(math.Round(n)))
	}
}

func formatValue(v float64) string {
	return FormatLarge(v)
}
