// Package model defines shared data structures.
package model

import (
	"fmt"
	"time"
)

// Granularity identifies the sampling interval of a series.
type Granularity int

const (
	Monthly Granularity = iota
	Weekly
	Hourly
)

// String returns the lower-case granularity name.
func (g Granularity) String() string {
	switch g {
	case Monthly:
		return "monthly"
	case Weekly:
		return "weekly"
	case Hourly:
		return "hourly"
	default:
		return fmt.Sprintf("granularity(%d)", int(g))
	}
}

// FileName returns the input CSV name for the granularity.
func (g Granularity) FileName() string {
	return g.String() + "_data.csv"
}

// ValueColumn returns the name of the value column for the granularity.
func (g Granularity) ValueColumn() string {
	switch g {
	case Monthly:
		return "value_month"
	case Weekly:
		return "value_week"
	case Hourly:
		return "value_hour"
	default:
		return "value"
	}
}

// Point is a single observation. Key is the raw first-column label shared
// between input tables; Time comes from the date column.
type Point struct {
	Key   string
	Time  time.Time
	Value float64
}

// EmptyBucketPolicy decides what happens to a year without month-start samples.
type EmptyBucketPolicy string

const (
	// EmptyPropagate emits the year's rows with NaN values.
	EmptyPropagate EmptyBucketPolicy = "propagate"
	// EmptySkip drops the year from the output.
	EmptySkip EmptyBucketPolicy = "skip"
	// EmptyFail aborts the run.
	EmptyFail EmptyBucketPolicy = "fail"
)

// ParseEmptyBucketPolicy validates a policy name.
func ParseEmptyBucketPolicy(s string) (EmptyBucketPolicy, error) {
	switch p := EmptyBucketPolicy(s); p {
	case EmptyPropagate, EmptySkip, EmptyFail:
		return p, nil
	case "":
		return EmptyPropagate, nil
	default:
		return "", fmt.Errorf("unknown empty-year policy %q (want propagate, skip or fail)", s)
	}
}

// ScaleFactor is a multiplicative factor that may be undefined when its
// bucket had no aligned samples.
type ScaleFactor struct {
	Value   float64
	Valid   bool
	Samples int
}

// YearFactor is the monthly/weekly factor for one calendar year.
type YearFactor struct {
	Year       int
	WeeklyRows int
	ScaleFactor
}

// AnchorFactor is the weekly/hourly factor computed at one weekly anchor.
type AnchorFactor struct {
	Key      string
	Time     time.Time
	ISOYear  int
	ISOWeek  int
	Rescaled int
	ScaleFactor
}

// Config defines a rescale run.
type Config struct {
	DataDir       string
	ResultDir     string
	Years         []int
	EmptyYear     EmptyBucketPolicy
	DisplayFrom   int
	YLimit        float64
	ChartWidth    int
	ChartHeight   int
	ExportParquet bool
}
