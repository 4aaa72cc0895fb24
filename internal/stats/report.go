package stats

import (
	"github.com/verte-zerg/tsrescale/internal/model"
	"github.com/verte-zerg/tsrescale/internal/series"
)

// Summary contains counts describing one rescale run.
type Summary struct {
	MonthlyRows     int
	WeeklyRows      int
	HourlyRows      int
	RescaledWeekly  int
	RescaledHourly  int
	DuplicateHourly int
	InvalidYears    []int
	InvalidAnchors  int
	AnchorFactors   []float64
	Files           []string
}

// Inputs holds the loaded and rescaled series of a run.
type Inputs struct {
	Monthly        *series.Series
	Weekly         *series.Series
	Hourly         *series.Series
	RescaledWeekly *series.Series
	RescaledHourly *series.Series
	YearFactors    []model.YearFactor
	AnchorFactors  []model.AnchorFactor
}

// BuildSummary derives the run counts from the pipeline outputs.
func BuildSummary(in Inputs, files []string) Summary {
	s := Summary{
		MonthlyRows:    in.Monthly.Len(),
		WeeklyRows:     in.Weekly.Len(),
		HourlyRows:     in.Hourly.Len(),
		RescaledWeekly: in.RescaledWeekly.Len(),
		RescaledHourly: in.RescaledHourly.Len(),
		AnchorFactors:  make([]float64, 0, len(in.AnchorFactors)),
		Files:          files,
	}
	if in.RescaledHourly != nil {
		s.DuplicateHourly = in.RescaledHourly.DuplicateKeys()
	}
	for _, f := range in.YearFactors {
		if !f.Valid {
			s.InvalidYears = append(s.InvalidYears, f.Year)
		}
	}
	for _, f := range in.AnchorFactors {
		if !f.Valid {
			s.InvalidAnchors++
		}
		s.AnchorFactors = append(s.AnchorFactors, f.Value)
	}
	return s
}
