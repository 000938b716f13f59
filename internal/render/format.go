package render

import (
	"fmt"
	"math"
	"strings"

	xansi "github.com/charmbracelet/x/ansi"
)

// Timecode formats seconds as m:ss, or h:mm:ss from one hour up. Fractions
// round to the nearest second.
func Timecode(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	s := int64(math.Round(seconds))
	h, m, sec := s/3600, (s%3600)/60, s%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%d:%02d", m, sec)
}

// Duration formats a span compactly: "0.5s", "12.0s", "3m4s", "1h2m".
func Duration(seconds float64) string {
	ms := int64(math.Round(seconds * 1000))
	switch {
	case ms < 0:
		return "0.0s"
	case ms < 60000:
		return fmt.Sprintf("%d.%ds", ms/1000, (ms%1000)/100)
	case ms < 3600000:
		return fmt.Sprintf("%dm%ds", ms/60000, (ms%60000)/1000)
	default:
		return fmt.Sprintf("%dh%dm", ms/3600000, (ms%3600000)/60000)
	}
}

// ShortID keeps the first 8 characters of an id, enough to tell UUIDs apart.
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// Truncate cuts s to max display cells, ending in "…" when shortened.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if xansi.StringWidth(s) <= max {
		return s
	}
	if max == 1 {
		return "…"
	}
	return xansi.Cut(s, 0, max-1) + "…"
}

// TruncateMiddle shortens s by replacing the middle with "..." when it
// exceeds max bytes, keeping roughly equal portions of both ends.
func TruncateMiddle(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	available := max - 3
	first := (available + 1) / 2
	last := available / 2
	return s[:first] + "..." + s[len(s)-last:]
}

func pad(s string, width int) string {
	if w := xansi.StringWidth(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}
