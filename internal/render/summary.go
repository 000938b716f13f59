package render

import (
	"fmt"
	"strings"

	"scriptline/internal/aggregate"
	"scriptline/internal/script"
)

// Summary renders per-container aggregates: start, duration with a share
// bar of the total, and the characters and locations each container uses.
// titles maps container ids to display titles.
func Summary(sum aggregate.Summary, titles map[string]string, total float64, names Names) string {
	var b strings.Builder
	heading := strings.ToUpper(script.SpecFor(sum.Container).Label) + "S"
	fmt.Fprintf(&b, "  %s\n", styleHeader.Render(heading))
	fmt.Fprintf(&b, "  %s\n", styleRule.Render(strings.Repeat("─", 40)))

	if len(sum.Order) == 0 {
		fmt.Fprintf(&b, "  (no %ss)\n", sum.Container)
		return b.String()
	}

	for _, id := range sum.Order {
		title := titles[id]
		if title == "" {
			title = ShortID(id)
		}
		d := sum.Durations[id]
		fmt.Fprintf(&b, "  %s  %s  %s  %s\n",
			styleTime.Render(pad(Timecode(sum.Starts[id]), 8)),
			styleTime.Render(pad(Duration(d), 7)),
			styleRule.Render(shareBar(d, total, 10)),
			styleTitleScene.Render(Truncate(title, 40)))

		if chars := sum.Characters[id]; len(chars) > 0 {
			fmt.Fprintf(&b, "      %s %s\n", styleTime.Render("characters:"), joinNames(chars, names.Characters))
		}
		if locs := sum.Locations[id]; len(locs) > 0 {
			fmt.Fprintf(&b, "      %s %s\n", styleTime.Render("locations: "), joinNames(locs, names.Locations))
		}
	}
	return b.String()
}

// shareBar draws part/total as a fixed-width bar.
func shareBar(part, total float64, width int) string {
	n := 0
	if total > 0 {
		n = int(part / total * float64(width))
	}
	if n > width {
		n = width
	}
	if n < 0 {
		n = 0
	}
	return strings.Repeat("█", n) + strings.Repeat("░", width-n)
}

func joinNames(ids []string, m map[string]string) string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = nameOf(m, id)
	}
	return strings.Join(out, ", ")
}
