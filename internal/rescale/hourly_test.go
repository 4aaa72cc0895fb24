package rescale

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/verte-zerg/tsrescale/internal/model"
	"github.com/verte-zerg/tsrescale/internal/series"
)

// hourlyRange builds hourly points every 6 hours from start for n points,
// valued 1, 2, 3, ...
func hourlyRange(start time.Time, n int) []model.Point {
	points := make([]model.Point, n)
	for i := range points {
		ts := start.Add(time.Duration(i*6) * time.Hour)
		points[i] = model.Point{Key: ts.Format(series.TimeLayout), Time: ts, Value: float64(i + 1)}
	}
	return points
}

func TestHourlyBucketRatioIsConstant(t *testing.T) {
	// Monday 2018-01-01 through Sunday 2018-01-14: two ISO weeks.
	start := time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)
	hourly := series.New("hourly", hourlyRange(start, 56))
	weekly := series.New("weekly", []model.Point{
		pt(t, "2018-01-01 00:00:00", 10),
		pt(t, "2018-01-08 00:00:00", 50),
	})

	out, factors, err := Hourly(weekly, hourly)
	if err != nil {
		t.Fatalf("Hourly failed: %v", err)
	}
	if len(factors) != 2 {
		t.Fatalf("expected 2 factors, got %d", len(factors))
	}
	if out.Len() != hourly.Len() {
		t.Fatalf("expected %d rows, got %d", hourly.Len(), out.Len())
	}

	for _, f := range factors {
		anchor, _ := hourly.Lookup(f.Key)
		w, _ := weekly.Lookup(f.Key)
		want := w.Value / anchor.Value
		if !almostEqual(f.Value, want) {
			t.Fatalf("%s: expected factor %f, got %f", f.Key, want, f.Value)
		}
		if f.Rescaled != 28 {
			t.Fatalf("%s: expected 28 rescaled points, got %d", f.Key, f.Rescaled)
		}
	}

	for i := 0; i < out.Len(); i++ {
		got := out.At(i)
		raw, _ := hourly.Lookup(got.Key)
		y, w := got.Time.ISOWeek()
		var f model.AnchorFactor
		for _, cand := range factors {
			if cand.ISOYear == y && cand.ISOWeek == w {
				f = cand
			}
		}
		if !almostEqual(got.Value/raw.Value, f.Value) {
			t.Fatalf("%s: ratio %f does not match factor %f", got.Key, got.Value/raw.Value, f.Value)
		}
	}
}

func TestHourlyAnchorValueMatchesWeekly(t *testing.T) {
	start := time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)
	hourly := series.New("hourly", hourlyRange(start, 28))
	weekly := series.New("weekly", []model.Point{pt(t, "2018-01-03 00:00:00", 42)})

	out, _, err := Hourly(weekly, hourly)
	if err != nil {
		t.Fatalf("Hourly failed: %v", err)
	}
	p, ok := out.Lookup("2018-01-03 00:00:00")
	if !ok {
		t.Fatalf("expected anchor in output")
	}
	if !almostEqual(p.Value, 42) {
		t.Fatalf("expected anchor value 42, got %f", p.Value)
	}
}

func TestHourlySharedWeekEmitsDuplicates(t *testing.T) {
	start := time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)
	hourly := series.New("hourly", hourlyRange(start, 28))
	weekly := series.New("weekly", []model.Point{
		pt(t, "2018-01-01 00:00:00", 1),
		pt(t, "2018-01-04 00:00:00", 2),
	})

	out, _, err := Hourly(weekly, hourly)
	if err != nil {
		t.Fatalf("Hourly failed: %v", err)
	}
	if out.Len() != 56 {
		t.Fatalf("expected week emitted twice (56 rows), got %d", out.Len())
	}
	if out.DuplicateKeys() != 28 {
		t.Fatalf("expected 28 duplicate keys, got %d", out.DuplicateKeys())
	}
	// The second emission uses the second anchor's factor.
	first, second := out.At(0), out.At(28)
	if first.Key != second.Key {
		t.Fatalf("expected repeated key, got %q and %q", first.Key, second.Key)
	}
	if almostEqual(first.Value, second.Value) {
		t.Fatalf("expected different factors per emission")
	}
}

func TestHourlyMissingAnchor(t *testing.T) {
	hourly := series.New("hourly", hourlyRange(time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC), 4))
	weekly := series.New("weekly", []model.Point{pt(t, "2018-03-05", 1)})
	_, _, err := Hourly(weekly, hourly)
	if !errors.Is(err, ErrMissingAnchor) {
		t.Fatalf("expected ErrMissingAnchor, got %v", err)
	}
}

func TestApplyAnchorFactorsIdentity(t *testing.T) {
	hourly := series.New("hourly", hourlyRange(time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC), 56))
	factors := []model.AnchorFactor{
		{ISOYear: 2018, ISOWeek: 1, ScaleFactor: model.ScaleFactor{Value: 1, Valid: true}},
		{ISOYear: 2018, ISOWeek: 2, ScaleFactor: model.ScaleFactor{Value: 1, Valid: true}},
	}
	out := ApplyAnchorFactors(hourly, factors)
	if out.Len() != hourly.Len() {
		t.Fatalf("expected %d rows, got %d", hourly.Len(), out.Len())
	}
	for i := 0; i < out.Len(); i++ {
		if out.At(i) != hourly.At(i) {
			t.Fatalf("row %d changed: %s", i, fmt.Sprint(out.At(i)))
		}
	}
}
