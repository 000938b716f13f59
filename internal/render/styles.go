package render

import (
	"github.com/charmbracelet/lipgloss"
	"scriptline/internal/script"
)

// Semantic color palette.
var (
	colorPrimary    = lipgloss.Color("#00BFFF") // Cyan, structural markers
	colorAccent     = lipgloss.Color("#FFD700") // Gold, technical cues
	colorSuccess    = lipgloss.Color("#00E676") // Green, script items
	colorViolet     = lipgloss.Color("#B388FF") // Violet, transitions
	colorMuted      = lipgloss.Color("#636363") // Gray, de-emphasized
	colorMutedLight = lipgloss.Color("#8C8C8C") // Lighter gray, normal text
	colorWhite      = lipgloss.Color("#EEEEEE") // Off-white, primary text
)

var (
	styleHeader = lipgloss.NewStyle().
			Foreground(colorWhite).
			Bold(true)

	styleRule = lipgloss.NewStyle().
			Foreground(colorMuted)

	styleTime = lipgloss.NewStyle().
			Foreground(colorMutedLight)

	styleID = lipgloss.NewStyle().
		Foreground(colorMuted)

	styleText = lipgloss.NewStyle().
			Foreground(colorWhite)

	styleQuote = lipgloss.NewStyle().
			Foreground(colorMutedLight).
			Italic(true)

	styleTitleAct = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true).
			Underline(true)

	styleTitleScene = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)
)

// sectionColor maps each display section to its accent.
var sectionColor = map[script.Section]lipgloss.Color{
	script.SectionMarkers:       colorPrimary,
	script.SectionScript:        colorSuccess,
	script.SectionCues:          colorAccent,
	script.SectionMeta:          colorViolet,
	script.SectionUncategorized: colorMutedLight,
}

func badgeStyle(t script.Type) lipgloss.Style {
	c, ok := sectionColor[script.SpecFor(t).Section]
	if !ok {
		c = colorMutedLight
	}
	return lipgloss.NewStyle().Foreground(c).Bold(true)
}

func laneStyle(s script.Section) lipgloss.Style {
	c, ok := sectionColor[s]
	if !ok {
		c = colorMutedLight
	}
	return lipgloss.NewStyle().Foreground(c)
}
