package render

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// ApplyColorPreference sets the lipgloss color profile for this process.
// noColor (or a non-empty NO_COLOR) forces plain output; otherwise termenv's
// detection is used, upgraded to 256 colors when TERM says so.
func ApplyColorPreference(noColor bool) {
	if noColor || strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}
	profile := termenv.EnvColorProfile()
	term := strings.ToLower(os.Getenv("TERM"))
	if profile == termenv.ANSI && strings.Contains(term, "256color") {
		profile = termenv.ANSI256
	}
	lipgloss.SetColorProfile(profile)
}
