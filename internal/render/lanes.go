package render

import (
	"math"
	"strconv"
	"strings"

	"scriptline/internal/viewmodel"
)

// LaneOptions tunes Lanes.
type LaneOptions struct {
	Zoom   float64 // columns per second
	Offset int     // first visible column
	Width  int     // visible columns of the track area; 0 means all
}

// labelWidth is the fixed width of the lane-name gutter.
const labelWidth = 20

// tickEvery is the ruler spacing in columns.
const tickEvery = 10

// Columns is how many track columns a timeline of total seconds needs.
func Columns(total, zoom float64) int {
	return int(math.Ceil(total*zoom)) + 1
}

// Span returns the column and width at which an entry is drawn: start*zoom
// and max(1, duration*zoom).
func Span(e viewmodel.Entry, zoom float64) (col, width int) {
	col = int(math.Floor(e.Start * zoom))
	width = int(math.Round(e.Duration * zoom))
	if width < 1 {
		width = 1
	}
	return col, width
}

// Lanes renders the timeline as one row per non-empty section under a
// timecode ruler.
func Lanes(tl viewmodel.Timeline, opts LaneOptions) string {
	zoom := opts.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	width := opts.Width
	if width <= 0 {
		width = Columns(tl.TotalDuration, zoom) - opts.Offset
	}
	if width < 1 {
		width = 1
	}

	var b strings.Builder
	b.WriteString(strings.Repeat(" ", labelWidth))
	b.WriteString(styleRule.Render(ruler(zoom, opts.Offset, width)))
	b.WriteString("\n")

	for _, lane := range tl.Lanes() {
		b.WriteString(styleHeader.Render(pad(Truncate(string(lane.Section), labelWidth-2), labelWidth)))
		b.WriteString(laneStyle(lane.Section).Render(track(lane.Entries, zoom, opts.Offset, width)))
		b.WriteString("\n")
	}

	b.WriteString(strings.Repeat(" ", labelWidth))
	b.WriteString(styleTime.Render("total " + Timecode(tl.TotalDuration) + "  zoom " + formatZoom(zoom)))
	b.WriteString("\n")
	return b.String()
}

// ruler draws a tick with a timecode every tickEvery columns.
func ruler(zoom float64, offset, width int) string {
	cells := []rune(strings.Repeat("─", width))
	first := offset + (tickEvery-offset%tickEvery)%tickEvery
	for col := first; col < offset+width; col += tickEvery {
		label := []rune("┬" + Timecode(float64(col)/zoom))
		for i, r := range label {
			if at := col - offset + i; at < width {
				cells[at] = r
			}
		}
	}
	return string(cells)
}

// track draws one lane. Adjacent entries alternate fill glyphs so their
// boundaries stay visible; labels are written inside spans wide enough.
func track(entries []viewmodel.Entry, zoom float64, offset, width int) string {
	cells := []rune(strings.Repeat(" ", width))
	for i, e := range entries {
		col, w := Span(e, zoom)
		col -= offset
		fill := '█'
		if i%2 == 1 {
			fill = '▓'
		}
		if e.Duration == 0 {
			fill = '│'
		}
		for c := col; c < col+w; c++ {
			if c >= 0 && c < width {
				cells[c] = fill
			}
		}
		if w >= 4 {
			label := []rune(Truncate(e.Label, w-2))
			for j, r := range label {
				if c := col + 1 + j; c >= 0 && c < width {
					cells[c] = r
				}
			}
		}
	}
	return string(cells)
}

func formatZoom(z float64) string {
	if z >= 1 {
		return strconv.FormatFloat(z, 'g', -1, 64) + "x"
	}
	return "1/" + strconv.FormatFloat(1/z, 'g', -1, 64) + "x"
}
