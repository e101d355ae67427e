package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

const (
	defaultPlotHeight   = 10
	minPlotWidth        = 10
	axisSeparator       = " ┤ "
	terminalWidthBackup = 80
	lineColor           = "\x1b[36m"
	colorReset          = "\x1b[0m"
)

// PlotOptions controls the size and value axis of a line plot.
type PlotOptions struct {
	// Width is the plot area in terminal columns; 0 fits the terminal.
	Width int
	// Height is the plot area in terminal rows.
	Height int
	// Min and Max fix the value axis when Max > Min; otherwise the axis
	// follows the data.
	Min float64
	Max float64
	// Label formats axis values. Defaults to integers.
	Label func(float64) string
	// ForceColor colors the line even when w is not a terminal.
	ForceColor bool
}

// RateAxis is the value axis for rating plots.
func RateAxis() PlotOptions {
	return PlotOptions{Label: func(v float64) string { return strconv.Itoa(int(math.Round(v))) }}
}

// RankAxis is the value axis for rank plots: the whole ladder, labeled by rank.
func RankAxis(labels []string) PlotOptions {
	return PlotOptions{
		Min: 0,
		Max: float64(len(labels) - 1),
		Label: func(v float64) string {
			i := int(math.Round(v))
			if i < 0 || i >= len(labels) {
				return ""
			}
			return labels[i]
		},
	}
}

// PlotSeries renders points in order as a braille line plot.
func PlotSeries(w io.Writer, title string, points []Point, opts PlotOptions) error {
	if title != "" {
		if _, err := fmt.Fprintln(w, title); err != nil {
			return err
		}
	}
	if len(points) == 0 {
		_, err := fmt.Fprintln(w, "No data.")
		return err
	}

	height := opts.Height
	if height <= 0 {
		height = defaultPlotHeight
	}
	label := opts.Label
	if label == nil {
		label = RateAxis().Label
	}
	lo, hi := opts.Min, opts.Max
	if hi <= lo {
		lo, hi = valueRange(points)
	}
	axis := []string{label(hi), label((hi + lo) / 2), label(lo)}
	axisWidth := 0
	for _, a := range axis {
		axisWidth = max(axisWidth, runewidth.StringWidth(a))
	}
	width := opts.Width
	if width <= 0 {
		width = PlotWidthFor(terminalWidth(), axisWidth)
	}
	width = max(width, minPlotWidth)

	grid := newBrailleGrid(width, height)
	dotW, dotH := width*2, height*4
	prevX, prevY := -1, -1
	for i, p := range points {
		x := 0
		if len(points) > 1 {
			x = i * (dotW - 1) / (len(points) - 1)
		}
		y := int(math.Round((1 - (p.Value-lo)/(hi-lo)) * float64(dotH-1)))
		y = min(max(y, 0), dotH-1)
		if prevX < 0 {
			grid.set(x, y)
		} else {
			bresenham(prevX, prevY, x, y, grid.set)
		}
		prevX, prevY = x, y
	}

	useColor := shouldUseColor(w, opts.ForceColor)
	for row, line := range grid.lines() {
		tick := ""
		switch row {
		case 0:
			tick = axis[0]
		case height / 2:
			if height > 2 {
				tick = axis[1]
			}
		case height - 1:
			tick = axis[2]
		}
		if useColor {
			line = lineColor + line + colorReset
		}
		if _, err := fmt.Fprintf(w, "%s%s%s\n", runewidth.FillLeft(tick, axisWidth), axisSeparator, line); err != nil {
			return err
		}
	}
	footer := fmt.Sprintf("%s  #1 %s … #%d %s", strings.Repeat(" ", axisWidth), points[0].Label, points[len(points)-1].Index, points[len(points)-1].Label)
	if _, err := fmt.Fprintln(w, footer); err != nil {
		return err
	}
	return nil
}

// PlotWidthFor computes a plot width that fits within totalWidth next to an
// axis of axisWidth columns.
func PlotWidthFor(totalWidth, axisWidth int) int {
	if totalWidth <= 0 {
		return minPlotWidth
	}
	return max(totalWidth-axisWidth-runewidth.StringWidth(axisSeparator), minPlotWidth)
}

func valueRange(points []Point) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, p := range points {
		lo = math.Min(lo, p.Value)
		hi = math.Max(hi, p.Value)
	}
	if hi-lo < 1e-9 {
		lo--
		hi++
	}
	return lo, hi
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func shouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

// brailleGrid packs a 2x4 dot matrix into each terminal cell.
type brailleGrid struct {
	width, height int
	cells         [][]uint8
}

func newBrailleGrid(width, height int) *brailleGrid {
	cells := make([][]uint8, height)
	for i := range cells {
		cells[i] = make([]uint8, width)
	}
	return &brailleGrid{width: width, height: height, cells: cells}
}

// Dot bits by (column, row) inside a braille cell.
var brailleBits = [2][4]uint8{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

func (g *brailleGrid) set(x, y int) {
	cx, cy := x/2, y/4
	if x < 0 || y < 0 || cx >= g.width || cy >= g.height {
		return
	}
	g.cells[cy][cx] |= brailleBits[x%2][y%4]
}

func (g *brailleGrid) lines() []string {
	out := make([]string, g.height)
	for y, row := range g.cells {
		var b strings.Builder
		for _, mask := range row {
			b.WriteRune(rune(0x2800 + int(mask)))
		}
		out[y] = b.String()
	}
	return out
}

func bresenham(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
