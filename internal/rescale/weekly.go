// Package rescale aligns finer-grained series to coarser, trusted ones.
package rescale

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/verte-zerg/tsrescale/internal/model"
	"github.com/verte-zerg/tsrescale/internal/series"
)

var (
	// ErrMissingAnchor is returned when an aligned key is absent from the
	// series it should be compared against.
	ErrMissingAnchor = errors.New("missing anchor")
	// ErrEmptyBucket is returned under the fail policy for a year without
	// month-start samples.
	ErrEmptyBucket = errors.New("no aligned samples")
)

// DefaultYears is the year set rescaled when none is configured.
var DefaultYears = []int{2018, 2019, 2020, 2021, 2022}

// Weekly rescales the weekly series one year at a time against the monthly
// series and returns the concatenated result in year order.
func Weekly(monthly, weekly *series.Series, years []int, policy model.EmptyBucketPolicy) (*series.Series, []model.YearFactor, error) {
	factors, err := YearFactors(monthly, weekly, years)
	if err != nil {
		return nil, nil, err
	}
	out, err := ApplyYearFactors(weekly, factors, policy)
	if err != nil {
		return nil, factors, err
	}
	return out, factors, nil
}

// YearFactors computes, for each year, the mean of monthly/weekly ratios over
// the weekly rows falling on the first day of a month.
func YearFactors(monthly, weekly *series.Series, years []int) ([]model.YearFactor, error) {
	factors := make([]model.YearFactor, 0, len(years))
	for _, year := range years {
		rows := weekly.Year(year)
		starts := rows.MonthStarts()

		num := make([]float64, starts.Len())
		den := make([]float64, starts.Len())
		for i := 0; i < starts.Len(); i++ {
			p := starts.At(i)
			m, ok := monthly.Lookup(p.Key)
			if !ok {
				return nil, fmt.Errorf("year %d: %w: monthly value for %q", year, ErrMissingAnchor, p.Key)
			}
			num[i] = m.Value
			den[i] = p.Value
		}

		f := model.YearFactor{Year: year, WeeklyRows: rows.Len()}
		f.Samples = starts.Len()
		if f.Samples > 0 {
			ratios := make([]float64, f.Samples)
			floats.DivTo(ratios, num, den)
			f.Value = stat.Mean(ratios, nil)
			f.Valid = true
		} else {
			f.Value = math.NaN()
		}
		factors = append(factors, f)
	}
	return factors, nil
}

// ApplyYearFactors multiplies every weekly row of each factor's year by the
// factor. Years without a valid factor follow policy.
func ApplyYearFactors(weekly *series.Series, factors []model.YearFactor, policy model.EmptyBucketPolicy) (*series.Series, error) {
	parts := make([]*series.Series, 0, len(factors))
	for _, f := range factors {
		rows := weekly.Year(f.Year)
		if !f.Valid {
			switch policy {
			case model.EmptySkip:
				continue
			case model.EmptyFail:
				if rows.Len() > 0 {
					return nil, fmt.Errorf("year %d: %w", f.Year, ErrEmptyBucket)
				}
			}
		}
		parts = append(parts, rows.Scale(f.Value))
	}
	return series.Concat(weekly.Name, parts...), nil
}
