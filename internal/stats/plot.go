// Package stats contains rescale summaries and terminal previews.
package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"golang.org/x/term"
)

// Series represents a named data series for plotting.
type Series struct {
	Name   string
	Values []float64
}

// PlotOptions sizes and scales a text plot. A positive Ceiling fixes the
// shared y axis to [0, Ceiling].
type PlotOptions struct {
	Width      int
	Height     int
	Ceiling    float64
	ForceColor bool
}

type lineStyle struct {
	name   string
	period int
	on     int
}

type ansiColor struct {
	name string
	code string
}

const (
	defaultPlotHeight   = 12
	minPlotWidth        = 10
	axisLabelWidth      = 9
	axisSeparator       = " │ "
	colorReset          = "\x1b[0m"
	terminalWidthBackup = 80
)

var lineStyles = []lineStyle{
	{name: "dotted", period: 4, on: 1},
	{name: "solid", period: 1, on: 1},
	{name: "dashed", period: 6, on: 3},
}

var colorPalette = []ansiColor{
	{name: "blue", code: "\x1b[34m"},
	{name: "green", code: "\x1b[32m"},
	{name: "red", code: "\x1b[31m"},
}

// PlotSeries renders the series on one shared y scale as a braille plot.
func PlotSeries(w io.Writer, title string, series []Series, opts PlotOptions) error {
	series = filterSeries(series)
	if len(series) == 0 {
		return nil
	}

	height := opts.Height
	if height <= 0 {
		height = defaultPlotHeight
	}
	width := opts.Width
	if width <= 0 {
		width = TerminalPlotWidth()
	}
	if width < minPlotWidth {
		width = minPlotWidth
	}

	scaled := make([]Series, 0, len(series))
	for _, s := range series {
		scaled = append(scaled, Series{
			Name:   s.Name,
			Values: resampleSeries(s.Values, width),
		})
	}

	minVal, maxVal := 0.0, opts.Ceiling
	if opts.Ceiling <= 0 {
		minVal, maxVal = sharedMinMax(scaled)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		minVal--
		maxVal++
	}

	seriesCells := make([][][]uint8, 0, len(scaled))
	for range scaled {
		seriesCells = append(seriesCells, makeCells(height, width))
	}
	for si, s := range scaled {
		style := lineStyles[si%len(lineStyles)]
		prevX, prevY := -1, -1
		for x, v := range s.Values {
			if math.IsNaN(v) {
				prevX, prevY = -1, -1
				continue
			}
			py := valueToRow(v, minVal, maxVal, height*4)
			px := x * 2
			if prevX >= 0 {
				drawLine(prevX, prevY, px, py, func(dx, dy int) {
					if style.shouldPlot(dx) {
						setBrailleDot(seriesCells[si], dx, dy)
					}
				})
			} else {
				setBrailleDot(seriesCells[si], px, py)
			}
			prevX, prevY = px, py
		}
	}

	useColor := shouldUseColor(w, opts.ForceColor)
	axisLabels := makeAxisLabels(height, minVal, maxVal)

	if title != "" {
		if _, err := fmt.Fprintln(w, title); err != nil {
			return err
		}
	}
	for y := 0; y < height; y++ {
		var row strings.Builder
		fmt.Fprintf(&row, "%*s%s", axisLabelWidth, axisLabels[y], axisSeparator)
		for x := 0; x < width; x++ {
			mask, colorIdx := composeCell(seriesCells, x, y)
			ch := brailleFromMask(mask)
			if useColor && colorIdx >= 0 {
				row.WriteString(colorPalette[colorIdx%len(colorPalette)].code)
				row.WriteRune(ch)
				row.WriteString(colorReset)
			} else {
				row.WriteRune(ch)
			}
		}
		if _, err := fmt.Fprintln(w, row.String()); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, renderLegend(scaled, useColor)); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

func filterSeries(series []Series) []Series {
	out := make([]Series, 0, len(series))
	for _, s := range series {
		if len(s.Values) == 0 {
			continue
		}
		out = append(out, s)
	}
	return out
}

// TerminalPlotWidth returns the plot width that fits the current terminal.
func TerminalPlotWidth() int {
	return PlotWidthFor(terminalWidth())
}

// PlotWidthFor computes a plot width that fits within the total available width.
func PlotWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		return minPlotWidth
	}
	plotWidth := totalWidth - axisLabelWidth - len([]rune(axisSeparator))
	if plotWidth < minPlotWidth {
		plotWidth = minPlotWidth
	}
	return plotWidth
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

// ColorEnabled reports whether styled output should be written to w.
func ColorEnabled(w io.Writer) bool {
	return shouldUseColor(w, false)
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

func makeAxisLabels(height int, minVal, maxVal float64) []string {
	labels := make([]string, height)
	if height <= 0 {
		return labels
	}
	labels[0] = formatAxisValue(maxVal)
	if height > 2 {
		labels[height/2] = formatAxisValue((minVal + maxVal) / 2)
	}
	if height > 1 {
		labels[height-1] = formatAxisValue(minVal)
	}
	return labels
}

func formatAxisValue(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	if len(s) > axisLabelWidth {
		s = fmt.Sprintf("%.2g", v)
	}
	return s
}

func makeCells(height, width int) [][]uint8 {
	cells := make([][]uint8, height)
	for y := 0; y < height; y++ {
		cells[y] = make([]uint8, width)
	}
	return cells
}

func composeCell(seriesCells [][][]uint8, x, y int) (uint8, int) {
	var mask uint8
	colorIdx := -1
	for i, cells := range seriesCells {
		if y < 0 || y >= len(cells) || x < 0 || x >= len(cells[y]) {
			continue
		}
		cellMask := cells[y][x]
		if cellMask == 0 {
			continue
		}
		// Later series are drawn on top.
		colorIdx = i
		mask |= cellMask
	}
	return mask, colorIdx
}

func (ls lineStyle) shouldPlot(x int) bool {
	if ls.period <= 1 {
		return true
	}
	if x < 0 {
		x = -x
	}
	return x%ls.period < ls.on
}

// resampleSeries maps values onto width columns. Downsampling averages the
// finite values of each column; a column with none is NaN.
func resampleSeries(values []float64, width int) []float64 {
	if len(values) == 0 || width <= 0 {
		return nil
	}
	out := make([]float64, width)
	if len(values) >= width {
		for i := 0; i < width; i++ {
			start := i * len(values) / width
			end := (i + 1) * len(values) / width
			if end <= start {
				end = start + 1
			}
			var sum float64
			n := 0
			for _, v := range values[start:end] {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					continue
				}
				sum += v
				n++
			}
			if n == 0 {
				out[i] = math.NaN()
				continue
			}
			out[i] = sum / float64(n)
		}
		return out
	}
	if len(values) == 1 || width == 1 {
		for i := range out {
			out[i] = values[0]
		}
		return out
	}
	for i := 0; i < width; i++ {
		pos := float64(i) * float64(len(values)-1) / float64(width-1)
		idx := int(math.Floor(pos))
		if idx >= len(values)-1 {
			out[i] = values[len(values)-1]
			continue
		}
		frac := pos - float64(idx)
		out[i] = values[idx]*(1-frac) + values[idx+1]*frac
	}
	return out
}

// BinByTime averages the finite values falling into each of bins equal time
// slots over [from, to). Slots without values are NaN.
func BinByTime(times []time.Time, values []float64, from, to time.Time, bins int) []float64 {
	if bins <= 0 || !to.After(from) {
		return nil
	}
	sums := make([]float64, bins)
	counts := make([]int, bins)
	span := to.Sub(from)
	for i, ts := range times {
		if i >= len(values) || ts.Before(from) || !ts.Before(to) {
			continue
		}
		v := values[i]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		slot := int(float64(ts.Sub(from)) / float64(span) * float64(bins))
		if slot >= bins {
			slot = bins - 1
		}
		sums[slot] += v
		counts[slot]++
	}
	out := make([]float64, bins)
	for i := range out {
		if counts[i] == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = sums[i] / float64(counts[i])
	}
	return out
}

func sharedMinMax(series []Series) (float64, float64) {
	minVal := math.Inf(1)
	maxVal := math.Inf(-1)
	for _, s := range series {
		for _, v := range s.Values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			minVal = math.Min(minVal, v)
			maxVal = math.Max(maxVal, v)
		}
	}
	if math.IsInf(minVal, 1) {
		return 0, 0
	}
	return minVal, maxVal
}

func valueToRow(v, minVal, maxVal float64, height int) int {
	if height <= 1 {
		return 0
	}
	pos := (v - minVal) / (maxVal - minVal)
	row := int(math.Round((1 - pos) * float64(height-1)))
	if row < 0 {
		row = 0
	}
	if row >= height {
		row = height - 1
	}
	return row
}

func renderLegend(series []Series, useColor bool) string {
	parts := make([]string, 0, len(series))
	marker := brailleFromMask(0x01)
	for i, s := range series {
		styleName := lineStyles[i%len(lineStyles)].name
		label := fmt.Sprintf("%c %s (%s)", marker, s.Name, styleName)
		if useColor {
			label = colorPalette[i%len(colorPalette)].code + label + colorReset
		}
		parts = append(parts, label)
	}
	return "Legend: " + strings.Join(parts, "  ")
}

// drawLine walks a Bresenham line from (x0, y0) to (x1, y1).
func drawLine(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := int(math.Abs(float64(x1 - x0)))
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -int(math.Abs(float64(y1 - y0)))
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
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

func setBrailleDot(cells [][]uint8, x, y int) {
	if y < 0 || x < 0 {
		return
	}
	cellY := y / 4
	cellX := x / 2
	if cellY >= len(cells) || cellX >= len(cells[cellY]) {
		return
	}
	cells[cellY][cellX] |= brailleDotMask(x%2, y%4)
}

var brailleDots = [2][4]uint8{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

func brailleDotMask(x, y int) uint8 {
	if x < 0 || x > 1 || y < 0 || y > 3 {
		return 0
	}
	return brailleDots[x][y]
}

func brailleFromMask(mask uint8) rune {
	return rune(0x2800 + int(mask))
}
