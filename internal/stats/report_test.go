package stats

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/verte-zerg/tsrescale/internal/model"
	"github.com/verte-zerg/tsrescale/internal/series"
)

func TestBuildSummary(t *testing.T) {
	pts := func(keys ...string) *series.Series {
		points := make([]model.Point, len(keys))
		for i, k := range keys {
			points[i] = model.Point{Key: k, Value: 1}
		}
		return series.New("s", points)
	}
	in := Inputs{
		Monthly:        pts("a"),
		Weekly:         pts("a", "b"),
		Hourly:         pts("a", "b", "c"),
		RescaledWeekly: pts("a", "b"),
		RescaledHourly: pts("a", "b", "a", "b"),
		YearFactors: []model.YearFactor{
			{Year: 2018, ScaleFactor: model.ScaleFactor{Value: 2, Valid: true, Samples: 1}},
			{Year: 2019, ScaleFactor: model.ScaleFactor{Value: math.NaN()}},
		},
		AnchorFactors: []model.AnchorFactor{
			{ScaleFactor: model.ScaleFactor{Value: 1, Valid: true}},
			{ScaleFactor: model.ScaleFactor{Value: math.Inf(1)}},
		},
	}
	s := BuildSummary(in, []string{"out.csv"})
	if s.MonthlyRows != 1 || s.WeeklyRows != 2 || s.HourlyRows != 3 {
		t.Fatalf("unexpected loaded counts: %+v", s)
	}
	if s.RescaledHourly != 4 || s.DuplicateHourly != 2 {
		t.Fatalf("unexpected rescaled counts: %+v", s)
	}
	if len(s.InvalidYears) != 1 || s.InvalidYears[0] != 2019 || s.InvalidAnchors != 1 {
		t.Fatalf("unexpected invalid counts: %+v", s)
	}

	var buf bytes.Buffer
	if err := RenderSummary(&buf, s); err != nil {
		t.Fatalf("RenderSummary failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Repeated hourly keys: 2", "years=1 anchors=1", "Wrote out.csv"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in summary:\n%s", want, out)
		}
	}
}

func TestRenderYearFactors(t *testing.T) {
	var buf bytes.Buffer
	err := RenderYearFactors(&buf, []model.YearFactor{
		{Year: 2018, WeeklyRows: 52, ScaleFactor: model.ScaleFactor{Value: 2, Valid: true, Samples: 12}},
		{Year: 2019, WeeklyRows: 3, ScaleFactor: model.ScaleFactor{Value: math.NaN()}},
	}, false)
	if err != nil {
		t.Fatalf("RenderYearFactors failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if !strings.HasSuffix(lines[1], "2.0000") || !strings.HasSuffix(lines[2], "n/a") {
		t.Fatalf("unexpected factor rows: %q", lines)
	}
}
