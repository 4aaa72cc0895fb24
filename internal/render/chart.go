// Package render draws comparison charts as PNG images.
package render

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/verte-zerg/tsrescale/internal/series"
)

const (
	DefaultWidth  = 1500
	DefaultHeight = 800
)

// ErrNothingToRender is returned when every layer is empty.
var ErrNothingToRender = errors.New("nothing to render")

// Layers groups the three granularities drawn on one chart.
type Layers struct {
	Monthly *series.Series
	Weekly  *series.Series
	Hourly  *series.Series
}

// Options control a single chart.
type Options struct {
	Title  string
	// YLimit fixes the y axis to [0, YLimit] when positive.
	YLimit float64
	Width  int
	Height int
}

// hourly: faint continuous line.
func hourlyStyle() chart.Style {
	return chart.Style{
		StrokeColor: chart.ColorBlue.WithAlpha(26),
		StrokeWidth: 1,
	}
}

// weekly: medium line with markers.
func weeklyStyle() chart.Style {
	col := chart.ColorGreen.WithAlpha(102)
	return chart.Style{
		StrokeColor: col,
		StrokeWidth: 1.5,
		DotColor:    col,
		DotWidth:    3,
	}
}

// monthly: bold markers only.
func monthlyStyle() chart.Style {
	return chart.Style{
		StrokeColor: chart.ColorRed.WithAlpha(0),
		StrokeWidth: 0,
		DotColor:    chart.ColorRed,
		DotWidth:    5,
	}
}

// Render draws the layers as PNG into w.
func Render(w io.Writer, layers Layers, opts Options) error {
	var seriesList []chart.Series
	add := func(name string, s *series.Series, style chart.Style) {
		var xs []time.Time
		var ys []float64
		for i := 0; i < s.Len(); i++ {
			// Non-finite values are dropped; the line bridges the gap.
			if p := s.At(i); finite(p.Value) {
				xs = append(xs, p.Time)
				ys = append(ys, p.Value)
			}
		}
		if len(xs) == 0 {
			return
		}
		if len(xs) == 1 {
			// go-chart needs two x values to compute a range.
			xs = append(xs, xs[0].Add(time.Second))
			ys = append(ys, ys[0])
		}
		seriesList = append(seriesList, chart.TimeSeries{Name: name, XValues: xs, YValues: ys, Style: style})
	}
	add("hourly", layers.Hourly, hourlyStyle())
	add("weekly", layers.Weekly, weeklyStyle())
	add("monthly", layers.Monthly, monthlyStyle())
	if len(seriesList) == 0 {
		return ErrNothingToRender
	}

	width, height := opts.Width, opts.Height
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}

	yAxis := chart.YAxis{}
	if opts.YLimit > 0 {
		yAxis.Range = &chart.ContinuousRange{Min: 0, Max: opts.YLimit}
	} else if lo, hi, ok := valueBounds(layers); ok {
		if hi <= lo {
			hi = lo + 1
		}
		yAxis.Range = &chart.ContinuousRange{Min: lo, Max: hi}
	}

	ch := chart.Chart{
		Title:      opts.Title,
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 28}},
		XAxis:      chart.XAxis{ValueFormatter: chart.TimeDateValueFormatter},
		YAxis:      yAxis,
		Series:     seriesList,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch, chart.Style{FillColor: drawing.ColorWhite})}
	return ch.Render(chart.PNG, w)
}

// RenderFile draws the layers into <dir>/<title>.png and returns the path.
func RenderFile(dir string, layers Layers, opts Options) (string, error) {
	path := filepath.Join(dir, opts.Title+".png")
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create chart file: %w", err)
	}
	buf := bufio.NewWriter(file)
	if err := Render(buf, layers, opts); err != nil {
		_ = file.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("failed to render %s: %w", opts.Title, err)
	}
	if err := buf.Flush(); err != nil {
		_ = file.Close()
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", path, err)
	}
	return path, nil
}

// valueBounds returns the min and max finite value over all layers.
func valueBounds(layers Layers) (float64, float64, bool) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range []*series.Series{layers.Monthly, layers.Weekly, layers.Hourly} {
		for i := 0; i < s.Len(); i++ {
			if v := s.At(i).Value; finite(v) {
				lo = math.Min(lo, v)
				hi = math.Max(hi, v)
			}
		}
	}
	return lo, hi, !math.IsInf(lo, 1)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
