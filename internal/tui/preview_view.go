package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rshade/carbonfocus/internal/emission"
	"github.com/rshade/carbonfocus/internal/greenops"
)

const fieldLabelWidth = 17

// View renders the current view.
func (m *PreviewModel) View() string {
	if m.state == PreviewStateQuitting {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(RenderPreviewHeader())
	sb.WriteString("\n\n")
	sb.WriteString(m.renderFields())
	sb.WriteString("\n")

	switch {
	case m.loading:
		sb.WriteString(RenderLoadingIndicator())
	case m.err != nil:
		sb.WriteString(lipgloss.NewStyle().Foreground(ColorError).Render("Error: " + m.err.Error()))
	case m.result != nil:
		sb.WriteString(RenderPreviewResult(*m.result))
	}
	sb.WriteString("\n\n")
	sb.WriteString(RenderPreviewHelp(m.state == PreviewStateEditing))
	return sb.String()
}

func (m *PreviewModel) renderFields() string {
	labelStyle := lipgloss.NewStyle().Foreground(ColorLabel).Width(fieldLabelWidth)
	valueStyle := lipgloss.NewStyle().Foreground(ColorValue)
	focusStyle := lipgloss.NewStyle().Foreground(ColorFocus).Bold(true)

	var sb strings.Builder
	for i, f := range m.fields {
		marker := "  "
		if i == m.focusedRow {
			marker = focusStyle.Render(IconFocus) + " "
		}
		value := valueStyle.Render(f.Value)
		if i == m.focusedRow && m.state == PreviewStateEditing {
			value = m.input.View()
		}
		sb.WriteString(marker + labelStyle.Render(f.Label) + value + "\n")
	}
	return sb.String()
}

// RenderPreviewHeader renders the title box.
func RenderPreviewHeader() string {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorHeader).
		Border(lipgloss.NormalBorder()).
		BorderForeground(ColorBorder).
		Padding(0, 1).
		Render("Live Emission Preview")
}

// RenderPreviewResult renders one emission result with its equivalents and
// warnings.
func RenderPreviewResult(r emission.EmissionResult) string {
	labelStyle := lipgloss.NewStyle().Foreground(ColorLabel).Width(fieldLabelWidth + 2)
	valueStyle := lipgloss.NewStyle().Foreground(ColorValue).Bold(true)
	warnStyle := lipgloss.NewStyle().Foreground(ColorWarning)

	lines := []string{
		labelStyle.Render("Emissions") + valueStyle.Render(emission.FormatKg(r.CO2eKg)),
		labelStyle.Render("Activity") + r.ActivityKey,
		labelStyle.Render("Formula") + r.Formula,
		labelStyle.Render("Confidence") + renderConfidence(r.Confidence),
	}
	if eq := greenops.ForKg(r.CO2eKg); !eq.IsEmpty() {
		lines = append(lines, labelStyle.Render("Equivalent")+eq.CompactText)
	}
	for _, w := range r.Warnings {
		lines = append(lines, warnStyle.Render("warning: "+w))
	}
	return strings.Join(lines, "\n")
}

func renderConfidence(c emission.Confidence) string {
	color := ColorError
	switch c {
	case emission.ConfidenceHigh:
		color = ColorOK
	case emission.ConfidenceMedium:
		color = ColorWarning
	case emission.ConfidenceLow:
	}
	return lipgloss.NewStyle().Foreground(color).Render(c.String())
}

// RenderPreviewHelp renders the keyboard shortcut help text.
func RenderPreviewHelp(editing bool) string {
	shortcuts := []string{"↑/↓: Navigate", "Enter: Edit field", "q: Quit"}
	if editing {
		shortcuts = []string{"Enter: Done", "Esc: Revert field", "Ctrl+C: Quit"}
	}
	return lipgloss.NewStyle().Foreground(ColorMuted).Render(strings.Join(shortcuts, " | "))
}

// RenderLoadingIndicator renders the in-flight preview indicator.
func RenderLoadingIndicator() string {
	return lipgloss.NewStyle().Foreground(ColorSpinner).Bold(true).Render("Calculating emissions...")
}
