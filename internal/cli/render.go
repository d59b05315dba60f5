package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/rshade/carbonfocus/internal/cbam"
	"github.com/rshade/carbonfocus/internal/config"
	"github.com/rshade/carbonfocus/internal/emission"
	"github.com/rshade/carbonfocus/internal/engine"
	"github.com/rshade/carbonfocus/internal/greenops"
)

// tabPadding is the minimum padding between table columns.
const tabPadding = 2

// ANSI 256 colour codes used in table output.
const (
	colorHeading = "33"
	colorWarning = "214"
	colorHigh    = "42"
	colorMedium  = "220"
	colorLow     = "203"
)

// styles are bound to the output writer so that colour is only emitted when
// it is a terminal.
type styles struct {
	heading lipgloss.Style
	label   lipgloss.Style
	warning lipgloss.Style
	conf    map[emission.Confidence]lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		heading: r.NewStyle().Bold(true).Foreground(lipgloss.Color(colorHeading)).TabWidth(lipgloss.NoTabConversion),
		label:   r.NewStyle().Faint(true),
		warning: r.NewStyle().Foreground(lipgloss.Color(colorWarning)),
		conf: map[emission.Confidence]lipgloss.Style{
			emission.ConfidenceHigh:   r.NewStyle().Foreground(lipgloss.Color(colorHigh)),
			emission.ConfidenceMedium: r.NewStyle().Foreground(lipgloss.Color(colorMedium)),
			emission.ConfidenceLow:    r.NewStyle().Foreground(lipgloss.Color(colorLow)),
		},
	}
}

// outputFormat returns the effective output format.
func outputFormat() string {
	return config.GetDefaultOutputFormat()
}

// writeJSON writes v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}
	return nil
}

func formatEUR(d decimal.Decimal) string {
	return "EUR " + groupDigits(d.StringFixed(2))
}

// groupDigits inserts thousands separators into a fixed-point string.
func groupDigits(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, hasFrac := strings.Cut(s, ".")
	var b strings.Builder
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	if hasFrac {
		return sign + b.String() + "." + frac
	}
	return sign + b.String()
}

// renderEmissionResult prints one preview.
func renderEmissionResult(w io.Writer, r emission.EmissionResult) error {
	st := newStyles(w)
	tw := tabwriter.NewWriter(w, 0, 0, tabPadding, ' ', 0)

	fmt.Fprintln(tw, st.heading.Render("EMISSION PREVIEW"))
	row := func(label, value string) {
		fmt.Fprintf(tw, "%s\t%s\n", st.label.Render(label), value)
	}
	row("Category", r.CategoryCode)
	row("Method", r.Method.String())
	row("Activity", r.ActivityKey)
	row("Quantity", fmt.Sprintf("%s %s", strconv.FormatFloat(r.QuantityNormalized, 'f', -1, 64), r.Unit))
	if r.Spend != nil {
		row("Fuel price", fmt.Sprintf("%v %s/%s (%s)", r.Spend.PriceUsed, r.Spend.Currency, r.Spend.Unit, r.Spend.Source))
	}
	row("Factor", fmt.Sprintf("%v %s (%s)", r.Factor.CO2eFactor, r.Factor.FactorUnit, factorOrigin(r.Factor)))
	row("Emissions", fmt.Sprintf("%s (%s)", emission.FormatKg(r.CO2eKg), emission.FormatTonnes(r.CO2eTonnes())))
	if eq := greenops.ForKg(r.CO2eKg); !eq.IsEmpty() {
		row("Equivalent", eq.CompactText)
	}
	row("Formula", r.Formula)
	row("Confidence", st.conf[r.Confidence].Render(r.Confidence.String()))
	if r.HighGWP {
		row("High GWP", "yes")
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	renderWarnings(w, st, r.Warnings)
	return nil
}

func factorOrigin(f emission.EmissionFactor) string {
	parts := []string{f.Source}
	if f.Region != "" {
		parts = append(parts, f.Region)
	}
	if f.Year > 0 {
		parts = append(parts, fmt.Sprint(f.Year))
	}
	return strings.Join(parts, ", ")
}

func renderWarnings(w io.Writer, st styles, warnings []string) {
	for _, msg := range warnings {
		fmt.Fprintln(w, st.warning.Render("warning: "+msg))
	}
}

// renderSubmitResult prints the stored activity and the service's emission.
func renderSubmitResult(w io.Writer, r engine.SubmitResult) error {
	if err := renderEmissionResult(w, r.Preview); err != nil {
		return err
	}
	st := newStyles(w)
	tw := tabwriter.NewWriter(w, 0, 0, tabPadding, ' ', 0)
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, st.heading.Render("STORED ACTIVITY"))
	fmt.Fprintf(tw, "%s\t%s\n", st.label.Render("Activity ID"), r.Response.Activity.ID)
	fmt.Fprintf(tw, "%s\t%s\n", st.label.Render("Date"), r.Response.Activity.Date)
	fmt.Fprintf(tw, "%s\t%s\n", st.label.Render("Emissions"), emission.FormatKg(r.Response.Emission.CO2eKg))
	fmt.Fprintf(tw, "%s\t%s\n", st.label.Render("Request ID"), r.Response.RequestID)
	return tw.Flush()
}

// renderBatchSummary prints one line per item followed by the totals.
func renderBatchSummary(w io.Writer, s engine.BatchSummary) error {
	st := newStyles(w)
	tw := tabwriter.NewWriter(w, 0, 0, tabPadding, ' ', 0)
	fmt.Fprintln(tw, st.heading.Render("#\tCATEGORY\tACTIVITY\tCO2E\tCONFIDENCE\tNOTE"))
	for _, item := range s.Items {
		if item.Result == nil {
			fmt.Fprintf(tw, "%d\t-\t-\t-\t-\t%s\n", item.Index+1, st.warning.Render(item.Error))
			continue
		}
		r := item.Result
		note := ""
		if len(r.Warnings) > 0 {
			note = fmt.Sprintf("%d warning(s)", len(r.Warnings))
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			item.Index+1, r.CategoryCode, r.ActivityKey, emission.FormatKg(r.CO2eKg), r.Confidence, note)
	}
	fmt.Fprintln(tw)
	total := emission.FormatKg(s.TotalCO2eKg)
	if eq := greenops.ForKg(s.TotalCO2eKg); !eq.IsEmpty() {
		total += " " + eq.CompactText
	}
	fmt.Fprintf(tw, "%s\t%s\n", st.label.Render("Total"), total)
	fmt.Fprintf(tw, "%s\t%d succeeded, %d failed\n", st.label.Render("Items"), s.Succeeded, s.Failed)
	return tw.Flush()
}

// renderExposure prints embedded emissions, the deduction and certificates.
func renderExposure(w io.Writer, x engine.Exposure) error {
	st := newStyles(w)
	tw := tabwriter.NewWriter(w, 0, 0, tabPadding, ' ', 0)
	row := func(label, value string) {
		fmt.Fprintf(tw, "%s\t%s\n", st.label.Render(label), value)
	}
	e, d, c := x.Embedded, x.Deduction, x.Certificates

	fmt.Fprintln(tw, st.heading.Render("EMBEDDED EMISSIONS"))
	row("Product", fmt.Sprintf("%s (%s, %s)", e.Product, e.CNCode, e.Sector))
	row("Origin", e.CountryCode)
	row("Mass", emission.FormatTonnes(e.MassTonnes))
	row("SEE method", string(e.Method))
	row("SEE (direct/indirect)", fmt.Sprintf("%v / %v tCO2e/t", e.DirectSEE, e.IndirectSEE))
	row("Embedded", emission.FormatTonnes(e.TotalEmissionsTCO2e)+" CO2e")
	if eq, err := greenops.Calculate(e.TotalEmissionsTCO2e, "t"); err == nil && !eq.IsEmpty() {
		row("Equivalent", eq.DisplayText)
	}
	row("Confidence", st.conf[e.Confidence].Render(e.Confidence.String()))
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, st.heading.Render("CARBON PRICE"))
	row("EU ETS price", fmt.Sprintf("EUR %v/t", d.EUETSPriceEUR))
	row("Foreign price", fmt.Sprintf("EUR %v/t on %s", d.ForeignCarbonPriceEUR, emission.FormatTonnes(d.PaidTonnageTCO2e)))
	row("Deduction", emission.FormatTonnes(d.DeductionTCO2e)+" CO2e")
	row("Net emissions", emission.FormatTonnes(d.NetEmissionsTCO2e)+" CO2e")
	row("Gross CBAM cost", formatEUR(d.GrossCBAMCostEUR))
	row("Net CBAM cost", formatEUR(d.NetCBAMCostEUR))
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, st.heading.Render("CERTIFICATES"))
	row("Required", fmt.Sprint(c.CertificatesRequired))
	if c.FractionalCertificates > 0 {
		row("Fractional", fmt.Sprintf("%.3f", c.FractionalCertificates))
	}
	row("Estimated cost", formatEUR(c.EstimatedCostEUR))
	if err := tw.Flush(); err != nil {
		return err
	}
	renderWarnings(w, st, x.Warnings)
	return nil
}

// renderProducts prints the CBAM product scope.
func renderProducts(w io.Writer, products []cbam.Product) error {
	st := newStyles(w)
	tw := tabwriter.NewWriter(w, 0, 0, tabPadding, ' ', 0)
	fmt.Fprintln(tw, st.heading.Render("CN PREFIX\tSECTOR\tPRODUCT"))
	for _, p := range products {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p.CNPrefix, p.Sector, p.Name)
	}
	return tw.Flush()
}

// renderCategories prints the category registry.
func renderCategories(w io.Writer, cats []emission.Category) error {
	st := newStyles(w)
	tw := tabwriter.NewWriter(w, 0, 0, tabPadding, ' ', 0)
	fmt.Fprintln(tw, st.heading.Render("CODE\tSCOPE\tNAME\tMETHODS"))
	for _, c := range cats {
		methods := make([]string, len(c.Methods))
		for i, m := range c.Methods {
			methods[i] = m.String()
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", c.Code, c.Scope, c.Name, strings.Join(methods, ", "))
	}
	return tw.Flush()
}
