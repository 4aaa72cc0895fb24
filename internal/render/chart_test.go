package render

import (
	"bytes"
	"errors"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/tsrescale/internal/model"
	"github.com/verte-zerg/tsrescale/internal/series"
)

func testLayers() Layers {
	start := time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)
	var hourly, weekly []model.Point
	for i := 0; i < 24*14; i++ {
		ts := start.Add(time.Duration(i) * time.Hour)
		hourly = append(hourly, model.Point{Key: ts.String(), Time: ts, Value: 50 + float64(i%24)})
	}
	for i := 0; i < 2; i++ {
		ts := start.AddDate(0, 0, 7*i)
		weekly = append(weekly, model.Point{Key: ts.String(), Time: ts, Value: 60 + float64(i)})
	}
	monthly := []model.Point{{Key: "m", Time: start, Value: 70}}
	return Layers{
		Monthly: series.New("monthly", monthly),
		Weekly:  series.New("weekly", weekly),
		Hourly:  series.New("hourly", hourly),
	}
}

func TestRenderPNG(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, testLayers(), Options{Title: "Test", YLimit: 150, Width: 400, Height: 300}); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 400 || b.Dy() != 300 {
		t.Fatalf("unexpected size %v", b)
	}
}

func TestRenderSkipsNonFiniteValues(t *testing.T) {
	layers := testLayers()
	layers.Weekly = series.New("weekly", []model.Point{
		{Key: "a", Time: time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC), Value: math.NaN()},
		{Key: "b", Time: time.Date(2018, 1, 8, 0, 0, 0, 0, time.UTC), Value: 5},
	})
	var buf bytes.Buffer
	if err := Render(&buf, layers, Options{Title: "NaN"}); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
}

func TestRenderNothing(t *testing.T) {
	empty := series.New("empty", nil)
	var buf bytes.Buffer
	err := Render(&buf, Layers{Monthly: empty, Weekly: empty, Hourly: empty}, Options{Title: "Empty"})
	if !errors.Is(err, ErrNothingToRender) {
		t.Fatalf("expected ErrNothingToRender, got %v", err)
	}
}

func TestRenderFile(t *testing.T) {
	dir := t.TempDir()
	path, err := RenderFile(dir, testLayers(), Options{Title: "Raw_Data", Width: 300, Height: 200})
	if err != nil {
		t.Fatalf("RenderFile failed: %v", err)
	}
	if path != filepath.Join(dir, "Raw_Data.png") {
		t.Fatalf("unexpected path %s", path)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat chart: %v", err)
	}
	if info.Size() == 0 {
		t.Fatalf("chart file is empty")
	}
}

func TestRenderFileRemovesFailedChart(t *testing.T) {
	dir := t.TempDir()
	empty := series.New("empty", nil)
	_, err := RenderFile(dir, Layers{Monthly: empty, Weekly: empty, Hourly: empty}, Options{Title: "Empty"})
	if !errors.Is(err, ErrNothingToRender) {
		t.Fatalf("expected ErrNothingToRender, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "Empty.png")); !os.IsNotExist(err) {
		t.Fatalf("expected no chart file, got %v", err)
	}
}
