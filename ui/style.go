package ui

import (
	"github.com/charmbracelet/lipgloss"

	"workshop-catalog-updater/catalog"
)

var stabilityColors = map[catalog.Stability]lipgloss.Color{
	catalog.StabilityIncompatible: lipgloss.Color("#e74c3c"),
	catalog.StabilityMajorIssues:  lipgloss.Color("#e67e22"),
	catalog.StabilityMinorIssues:  lipgloss.Color("#f1c40f"),
	catalog.StabilityStable:       lipgloss.Color("#2ecc71"),
	catalog.StabilityNotReviewed:  lipgloss.Color("#95a5a6"),
}

// Colorize renders the text in the color conventionally used for the mod's
// stability classification.
func Colorize(text string, s catalog.Stability) string {
	color, ok := stabilityColors[s]
	if !ok {
		return text
	}
	style := lipgloss.NewStyle().Foreground(color)
	return style.Render(text)
}
