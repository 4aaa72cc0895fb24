// Package series provides ordered, key-indexed time series and their file I/O.
package series

import (
	"time"

	"github.com/verte-zerg/tsrescale/internal/model"
)

// Series is an ordered sequence of points indexed by key. Lookups resolve to
// the first point carrying a key; later repeats stay in order.
type Series struct {
	Name   string
	points []model.Point
	index  map[string]int
}

// WeekBucket is an ISO 8601 (year, week) pair.
type WeekBucket struct {
	Year int
	Week int
}

// ISOBucket returns the ISO week bucket of t.
func ISOBucket(t time.Time) WeekBucket {
	y, w := t.ISOWeek()
	return WeekBucket{Year: y, Week: w}
}

// New builds a series from points. The slice is copied.
func New(name string, points []model.Point) *Series {
	s := &Series{
		Name:   name,
		points: make([]model.Point, len(points)),
		index:  make(map[string]int, len(points)),
	}
	copy(s.points, points)
	for i, p := range s.points {
		if _, ok := s.index[p.Key]; !ok {
			s.index[p.Key] = i
		}
	}
	return s
}

// Concat joins series in order.
func Concat(name string, parts ...*Series) *Series {
	n := 0
	for _, p := range parts {
		n += p.Len()
	}
	points := make([]model.Point, 0, n)
	for _, p := range parts {
		points = append(points, p.points...)
	}
	return New(name, points)
}

// Len returns the number of points.
func (s *Series) Len() int {
	if s == nil {
		return 0
	}
	return len(s.points)
}

// At returns the i-th point.
func (s *Series) At(i int) model.Point {
	return s.points[i]
}

// Points returns a copy of the points.
func (s *Series) Points() []model.Point {
	out := make([]model.Point, len(s.points))
	copy(out, s.points)
	return out
}

// Lookup returns the first point with the given key.
func (s *Series) Lookup(key string) (model.Point, bool) {
	i, ok := s.index[key]
	if !ok {
		return model.Point{}, false
	}
	return s.points[i], true
}

// TimeOf returns the timestamp recorded for key.
func (s *Series) TimeOf(key string) (time.Time, bool) {
	p, ok := s.Lookup(key)
	return p.Time, ok
}

// Values returns the values in order.
func (s *Series) Values() []float64 {
	out := make([]float64, len(s.points))
	for i, p := range s.points {
		out[i] = p.Value
	}
	return out
}

// Times returns the timestamps in order.
func (s *Series) Times() []time.Time {
	out := make([]time.Time, len(s.points))
	for i, p := range s.points {
		out[i] = p.Time
	}
	return out
}

// Filter returns the points for which keep returns true.
func (s *Series) Filter(keep func(model.Point) bool) *Series {
	out := make([]model.Point, 0)
	for _, p := range s.points {
		if keep(p) {
			out = append(out, p)
		}
	}
	return New(s.Name, out)
}

// Year returns the points whose timestamp falls in the calendar year.
func (s *Series) Year(year int) *Series {
	return s.Filter(func(p model.Point) bool { return p.Time.Year() == year })
}

// MonthStarts returns the points recorded on the first day of a month.
func (s *Series) MonthStarts() *Series {
	return s.Filter(func(p model.Point) bool { return p.Time.Day() == 1 })
}

// Week returns the points in the ISO week bucket.
func (s *Series) Week(b WeekBucket) *Series {
	return s.Filter(func(p model.Point) bool { return ISOBucket(p.Time) == b })
}

// Since returns the points at or after t.
func (s *Series) Since(t time.Time) *Series {
	return s.Filter(func(p model.Point) bool { return !p.Time.Before(t) })
}

// Scale returns a new series with every value multiplied by f.
func (s *Series) Scale(f float64) *Series {
	out := make([]model.Point, len(s.points))
	for i, p := range s.points {
		p.Value *= f
		out[i] = p
	}
	return New(s.Name, out)
}

// WeekIndex groups point positions by ISO week bucket, preserving order
// within each bucket.
func (s *Series) WeekIndex() map[WeekBucket][]int {
	idx := make(map[WeekBucket][]int)
	for i, p := range s.points {
		b := ISOBucket(p.Time)
		idx[b] = append(idx[b], i)
	}
	return idx
}

// DuplicateKeys counts points whose key already appeared earlier.
func (s *Series) DuplicateKeys() int {
	return len(s.points) - len(s.index)
}
