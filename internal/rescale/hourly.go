package rescale

import (
	"fmt"
	"math"

	"github.com/verte-zerg/tsrescale/internal/model"
	"github.com/verte-zerg/tsrescale/internal/series"
)

// Hourly rescales each ISO week of the hourly series by the ratio between the
// rescaled weekly value and the hourly value at the weekly anchor. Buckets are
// emitted once per anchor, so anchors sharing a week repeat that week.
func Hourly(rescaledWeekly, hourly *series.Series) (*series.Series, []model.AnchorFactor, error) {
	factors, err := AnchorFactors(rescaledWeekly, hourly)
	if err != nil {
		return nil, nil, err
	}
	return ApplyAnchorFactors(hourly, factors), factors, nil
}

// AnchorFactors computes one factor per rescaled weekly point.
func AnchorFactors(rescaledWeekly, hourly *series.Series) ([]model.AnchorFactor, error) {
	weeks := hourly.WeekIndex()
	factors := make([]model.AnchorFactor, 0, rescaledWeekly.Len())
	for i := 0; i < rescaledWeekly.Len(); i++ {
		w := rescaledWeekly.At(i)
		h, ok := hourly.Lookup(w.Key)
		if !ok {
			return nil, fmt.Errorf("%w: hourly value for %q", ErrMissingAnchor, w.Key)
		}
		b := series.ISOBucket(h.Time)
		v := w.Value / h.Value
		factors = append(factors, model.AnchorFactor{
			Key:      w.Key,
			Time:     h.Time,
			ISOYear:  b.Year,
			ISOWeek:  b.Week,
			Rescaled: len(weeks[b]),
			ScaleFactor: model.ScaleFactor{
				Value:   v,
				Valid:   !math.IsNaN(v) && !math.IsInf(v, 0),
				Samples: 1,
			},
		})
	}
	return factors, nil
}

// ApplyAnchorFactors emits the hourly points of each factor's ISO week scaled
// by that factor, in factor order.
func ApplyAnchorFactors(hourly *series.Series, factors []model.AnchorFactor) *series.Series {
	weeks := hourly.WeekIndex()
	var out []model.Point
	for _, f := range factors {
		for _, idx := range weeks[series.WeekBucket{Year: f.ISOYear, Week: f.ISOWeek}] {
			p := hourly.At(idx)
			p.Value *= f.Value
			out = append(out, p)
		}
	}
	return series.New(hourly.Name, out)
}
