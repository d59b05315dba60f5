package cli

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/rshade/carbonfocus/internal/emission"
	"github.com/rshade/carbonfocus/internal/tui"
)

// errNotTerminal is returned when the interactive preview is started without
// a terminal on stdin and stdout.
var errNotTerminal = errors.New("interactive mode requires a terminal; use 'activity preview' instead")

// NewActivityInteractiveCmd creates the "activity interactive" command: a
// form whose emissions are recalculated as the fields change.
func NewActivityInteractiveCmd() *cobra.Command {
	var spec ActivitySpec

	cmd := &cobra.Command{
		Use:   "interactive",
		Short: "Edit an activity and preview its emissions live",
		Example: `  carbonfocus activity interactive
  carbonfocus activity interactive -c 2.1 -q 1000 -u kWh --region DE`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !isTerminal(os.Stdin) || !isTerminal(os.Stdout) {
				return errNotTerminal
			}
			eng, err := newEngine(cmd)
			if err != nil {
				return err
			}
			model := tui.NewPreviewModel(cmd.Context(), interactiveFields(spec), buildFromFields, eng.Preview)
			p := tea.NewProgram(model,
				tea.WithContext(cmd.Context()),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
				tea.WithAltScreen(),
			)
			if _, err = p.Run(); err != nil {
				return fmt.Errorf("running interactive preview: %w", err)
			}
			if r := model.Result(); r != nil {
				return renderEmissionResult(cmd.OutOrStdout(), *r)
			}
			return nil
		},
	}
	bindActivityFlags(cmd, &spec)
	return cmd
}

// Interactive field keys.
const (
	fieldCategory       = "category"
	fieldMethod         = "method"
	fieldQuantity       = "quantity"
	fieldUnit           = "unit"
	fieldRegion         = "region"
	fieldMaterial       = "material"
	fieldTreatment      = "treatment"
	fieldAmount         = "amount"
	fieldCurrency       = "currency"
	fieldSector         = "sector"
	fieldFuel           = "fuel"
	fieldCustomPrice    = "custom_price"
	fieldMode           = "mode"
	fieldVehicle        = "vehicle"
	fieldWeightTonnes   = "weight_tonnes"
	fieldPassengers     = "passengers"
	fieldProductType    = "product_type"
	fieldBuildingType   = "building_type"
	fieldSupplierFactor = "supplier_factor"
	fieldFactorUnit     = "factor_unit"
)

// interactiveFields seeds the form from the command-line flags.
func interactiveFields(s ActivitySpec) []tui.FieldRow {
	num := func(v float64) string {
		if v == 0 {
			return ""
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	passengers := ""
	if s.Passengers > 0 {
		passengers = strconv.Itoa(s.Passengers)
	}
	return []tui.FieldRow{
		{Key: fieldCategory, Label: "Category", Value: s.Category},
		{Key: fieldMethod, Label: "Method", Value: s.Method},
		{Key: fieldQuantity, Label: "Quantity", Value: num(s.Quantity)},
		{Key: fieldUnit, Label: "Unit", Value: s.Unit},
		{Key: fieldRegion, Label: "Region", Value: s.Region},
		{Key: fieldMaterial, Label: "Material", Value: s.Material},
		{Key: fieldTreatment, Label: "Treatment", Value: s.Treatment},
		{Key: fieldAmount, Label: "Amount", Value: num(s.Amount)},
		{Key: fieldCurrency, Label: "Currency", Value: s.Currency},
		{Key: fieldSector, Label: "Sector", Value: s.Sector},
		{Key: fieldFuel, Label: "Fuel", Value: s.Fuel},
		{Key: fieldCustomPrice, Label: "Custom price", Value: num(s.CustomPrice)},
		{Key: fieldMode, Label: "Mode", Value: s.Mode},
		{Key: fieldVehicle, Label: "Vehicle", Value: s.Vehicle},
		{Key: fieldWeightTonnes, Label: "Weight (t)", Value: num(s.WeightTonnes)},
		{Key: fieldPassengers, Label: "Passengers", Value: passengers},
		{Key: fieldProductType, Label: "Product type", Value: s.ProductType},
		{Key: fieldBuildingType, Label: "Building type", Value: s.BuildingType},
		{Key: fieldSupplierFactor, Label: "Supplier factor", Value: num(s.SupplierFactor)},
		{Key: fieldFactorUnit, Label: "Factor unit", Value: s.FactorUnit},
	}
}

// buildFromFields parses the form values into an engine input.
func buildFromFields(values map[string]string) (emission.ActivityInput, error) {
	text := func(key string) string { return strings.TrimSpace(values[key]) }
	spec := ActivitySpec{
		Category:     text(fieldCategory),
		Method:       text(fieldMethod),
		Unit:         text(fieldUnit),
		Region:       text(fieldRegion),
		Material:     text(fieldMaterial),
		Treatment:    text(fieldTreatment),
		Currency:     text(fieldCurrency),
		Sector:       text(fieldSector),
		Fuel:         text(fieldFuel),
		Mode:         text(fieldMode),
		Vehicle:      text(fieldVehicle),
		ProductType:  text(fieldProductType),
		BuildingType: text(fieldBuildingType),
		FactorUnit:   text(fieldFactorUnit),
	}
	numbers := []struct {
		key string
		dst *float64
	}{
		{fieldQuantity, &spec.Quantity},
		{fieldAmount, &spec.Amount},
		{fieldCustomPrice, &spec.CustomPrice},
		{fieldWeightTonnes, &spec.WeightTonnes},
		{fieldSupplierFactor, &spec.SupplierFactor},
	}
	var err error
	for _, n := range numbers {
		if *n.dst, err = parseField(values, n.key); err != nil {
			return emission.ActivityInput{}, err
		}
	}
	if v := text(fieldPassengers); v != "" {
		if spec.Passengers, err = strconv.Atoi(v); err != nil {
			return emission.ActivityInput{}, fmt.Errorf("passengers must be a whole number, got %q", v)
		}
	}
	return spec.ToInput()
}

func parseField(values map[string]string, key string) (float64, error) {
	v := strings.TrimSpace(values[key])
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number, got %q", key, v)
	}
	return f, nil
}
