package emission

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formula separators. The multiplication sign is U+00D7.
const (
	timesSep  = " × "
	equalsSep = " = "
	kgSuffix  = " kg CO2e"
)

// printer formats display values with English thousands separators.
//
//nolint:gochecknoglobals // Global printer is idiomatic for x/text/message usage.
var printer = message.NewPrinter(language.English)

// Formula holds the operands of a rendered calculation string.
type Formula struct {
	Quantity   float64
	Unit       string
	Factor     float64
	FactorUnit string
	CO2eKg     float64
}

// RenderFormula returns "<q> <unit> × <factor> <factorUnit> = <co2e> kg CO2e".
// Operands use the shortest representation that parses back to the same
// float64; the result is shown with two decimals.
//
// Example: RenderFormula(1000, "kWh", 0.436, "kg CO2e/kWh", 436) returns
// "1000 kWh × 0.436 kg CO2e/kWh = 436.00 kg CO2e".
func RenderFormula(quantity float64, unit string, factor float64, factorUnit string, co2eKg float64) string {
	var b strings.Builder
	b.WriteString(formatOperand(quantity))
	if unit != "" {
		b.WriteString(" " + unit)
	}
	b.WriteString(timesSep)
	b.WriteString(formatOperand(factor))
	if factorUnit != "" {
		b.WriteString(" " + factorUnit)
	}
	b.WriteString(equalsSep)
	b.WriteString(strconv.FormatFloat(co2eKg, 'f', 2, 64))
	b.WriteString(kgSuffix)
	return b.String()
}

// ParseFormula extracts the operands of a string produced by RenderFormula.
// CO2eKg is the displayed, rounded value; recompute Quantity × Factor for the
// exact result.
func ParseFormula(s string) (Formula, error) {
	lhs, rest, ok := strings.Cut(s, timesSep)
	if !ok {
		return Formula{}, fmt.Errorf("%w: formula %q has no multiplication", ErrInvalidInput, s)
	}
	mid, rhs, ok := strings.Cut(rest, equalsSep)
	if !ok {
		return Formula{}, fmt.Errorf("%w: formula %q has no result", ErrInvalidInput, s)
	}

	var f Formula
	var err error
	if f.Quantity, f.Unit, err = splitOperand(lhs); err != nil {
		return Formula{}, err
	}
	if f.Factor, f.FactorUnit, err = splitOperand(mid); err != nil {
		return Formula{}, err
	}

	result := strings.TrimSuffix(rhs, kgSuffix)
	if result == rhs {
		return Formula{}, fmt.Errorf("%w: formula %q has no kg CO2e suffix", ErrInvalidInput, s)
	}
	if f.CO2eKg, err = strconv.ParseFloat(strings.TrimSpace(result), 64); err != nil {
		return Formula{}, fmt.Errorf("%w: formula result %q: %w", ErrInvalidInput, result, err)
	}
	return f, nil
}

// Recompute returns Quantity × Factor.
func (f Formula) Recompute() float64 {
	return f.Quantity * f.Factor
}

// FormatKg formats kilograms for display with thousands separators and two
// decimals, e.g. 18248.5 becomes "18,248.50 kg".
func FormatKg(kg float64) string {
	return printer.Sprintf("%.2f kg", kg)
}

// FormatTonnes formats tonnes for display, e.g. "1,234.568 t".
func FormatTonnes(t float64) string {
	return printer.Sprintf("%.3f t", t)
}

func formatOperand(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// splitOperand parses "<number>[ <unit>]".
func splitOperand(s string) (float64, string, error) {
	num, unit, _ := strings.Cut(strings.TrimSpace(s), " ")
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, "", fmt.Errorf("%w: operand %q: %w", ErrInvalidInput, num, err)
	}
	return v, unit, nil
}
