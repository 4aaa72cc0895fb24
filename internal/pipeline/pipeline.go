// Package pipeline runs a full rescale: load, rescale, export and chart.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/verte-zerg/tsrescale/internal/model"
	"github.com/verte-zerg/tsrescale/internal/render"
	"github.com/verte-zerg/tsrescale/internal/rescale"
	"github.com/verte-zerg/tsrescale/internal/series"
)

const (
	RescaledHourlyFile = "rescaled_hourly_data.csv"
	RescaledParquet    = "rescaled_hourly_data.parquet"
	FactorsParquet     = "scale_factors.parquet"

	RawChart      = "Raw_Data"
	ZoomedChart   = "Rescaled_Data_Zoomed"
	RescaledChart = "Rescaled_Data"

	DefaultYLimit      = 150.0
	DefaultDisplayYear = 2018
)

// Inputs holds the three raw series.
type Inputs struct {
	Monthly *series.Series
	Weekly  *series.Series
	Hourly  *series.Series
}

// Result contains everything a run produced.
type Result struct {
	Inputs
	RescaledWeekly *series.Series
	RescaledHourly *series.Series
	YearFactors    []model.YearFactor
	AnchorFactors  []model.AnchorFactor
	Files          []string
}

// Load reads monthly_data.csv, weekly_data.csv and hourly_data.csv from dir.
func Load(ctx context.Context, dir string) (Inputs, error) {
	var in Inputs
	targets := []struct {
		g   model.Granularity
		dst **series.Series
	}{
		{model.Monthly, &in.Monthly},
		{model.Weekly, &in.Weekly},
		{model.Hourly, &in.Hourly},
	}
	for _, t := range targets {
		if err := ctx.Err(); err != nil {
			return Inputs{}, err
		}
		path := filepath.Join(dir, t.g.FileName())
		s, err := series.LoadFile(path, t.g.ValueColumn())
		if err != nil {
			return Inputs{}, fmt.Errorf("failed to load %s data: %w", t.g, err)
		}
		s.Name = t.g.String()
		*t.dst = s
	}
	return in, nil
}

// Rescale loads the inputs and runs both rescaling stages without writing
// anything.
func Rescale(ctx context.Context, cfg model.Config, log logrus.FieldLogger) (Result, error) {
	in, err := Load(ctx, cfg.DataDir)
	if err != nil {
		return Result{}, err
	}
	log.WithFields(logrus.Fields{
		"monthly": in.Monthly.Len(),
		"weekly":  in.Weekly.Len(),
		"hourly":  in.Hourly.Len(),
	}).Info("loaded input series")
	return RescaleInputs(ctx, in, cfg, log)
}

// RescaleInputs rescales already loaded series.
func RescaleInputs(ctx context.Context, in Inputs, cfg model.Config, log logrus.FieldLogger) (Result, error) {
	res := Result{Inputs: in}
	years := cfg.Years
	if len(years) == 0 {
		years = rescale.DefaultYears
	}

	weekly, yearFactors, err := rescale.Weekly(in.Monthly, in.Weekly, years, cfg.EmptyYear)
	res.YearFactors = yearFactors
	logYearFactors(log, yearFactors)
	if err != nil {
		return res, fmt.Errorf("failed to rescale weekly data: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	hourly, anchorFactors, err := rescale.Hourly(weekly, in.Hourly)
	if err != nil {
		return res, fmt.Errorf("failed to rescale hourly data: %w", err)
	}
	res.AnchorFactors = anchorFactors
	logAnchorFactors(log, anchorFactors)
	if dups := hourly.DuplicateKeys(); dups > 0 {
		log.WithField("rows", dups).Warn("rescaled hourly series repeats keys from weeks shared by several anchors")
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	if res.RescaledHourly, err = rescale.Reindex(hourly, in.Hourly); err != nil {
		return res, fmt.Errorf("failed to reindex hourly data: %w", err)
	}
	if res.RescaledWeekly, err = rescale.Reindex(weekly, in.Weekly); err != nil {
		return res, fmt.Errorf("failed to reindex weekly data: %w", err)
	}
	res.RescaledHourly.Name = "rescaled hourly"
	res.RescaledWeekly.Name = "rescaled weekly"
	log.WithFields(logrus.Fields{
		"weekly": res.RescaledWeekly.Len(),
		"hourly": res.RescaledHourly.Len(),
	}).Info("rescaled series")
	return res, nil
}

// Run performs a full rescale and writes the CSV, optional Parquet files and
// the three charts into cfg.ResultDir.
func Run(ctx context.Context, cfg model.Config, log logrus.FieldLogger) (Result, error) {
	res, err := Rescale(ctx, cfg, log)
	if err != nil {
		return res, err
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}
	if err := os.MkdirAll(cfg.ResultDir, 0o755); err != nil {
		return res, fmt.Errorf("failed to create result directory: %w", err)
	}

	if err := res.export(cfg); err != nil {
		return res, err
	}
	log.WithField("files", len(res.Files)).Info("exported rescaled data")
	if err := ctx.Err(); err != nil {
		return res, err
	}

	for _, c := range res.charts(cfg) {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		path, err := render.RenderFile(cfg.ResultDir, c.layers, c.opts)
		if err != nil {
			return res, err
		}
		log.WithField("path", path).Debug("wrote chart")
		res.Files = append(res.Files, path)
	}
	return res, nil
}

func (r *Result) export(cfg model.Config) error {
	path := filepath.Join(cfg.ResultDir, RescaledHourlyFile)
	if err := series.SaveCSV(path, r.RescaledHourly, model.Hourly.ValueColumn()); err != nil {
		return fmt.Errorf("failed to export rescaled hourly data: %w", err)
	}
	r.Files = append(r.Files, path)
	if !cfg.ExportParquet {
		return nil
	}

	path = filepath.Join(cfg.ResultDir, RescaledParquet)
	if err := series.SaveParquet(path, r.RescaledHourly.PointRows()); err != nil {
		return fmt.Errorf("failed to export %s: %w", path, err)
	}
	r.Files = append(r.Files, path)

	path = filepath.Join(cfg.ResultDir, FactorsParquet)
	if err := series.SaveParquet(path, FactorRows(r.YearFactors, r.AnchorFactors)); err != nil {
		return fmt.Errorf("failed to export %s: %w", path, err)
	}
	r.Files = append(r.Files, path)
	return nil
}

type chartSpec struct {
	layers render.Layers
	opts   render.Options
}

func (r *Result) charts(cfg model.Config) []chartSpec {
	from := DisplayStart(cfg.DisplayFrom)
	monthly := r.Monthly.Since(from)
	raw := render.Layers{
		Monthly: monthly,
		Weekly:  r.Weekly.Since(from),
		Hourly:  r.Hourly.Since(from),
	}
	rescaled := render.Layers{
		Monthly: monthly,
		Weekly:  r.RescaledWeekly,
		Hourly:  r.RescaledHourly,
	}
	ylim := cfg.YLimit
	if ylim <= 0 {
		ylim = DefaultYLimit
	}
	opts := func(title string, ylim float64) render.Options {
		return render.Options{Title: title, YLimit: ylim, Width: cfg.ChartWidth, Height: cfg.ChartHeight}
	}
	return []chartSpec{
		{raw, opts(RawChart, ylim)},
		{rescaled, opts(ZoomedChart, ylim)},
		{rescaled, opts(RescaledChart, 0)},
	}
}

// DisplayStart returns Jan 1 of year in UTC, defaulting to DefaultDisplayYear.
func DisplayStart(year int) time.Time {
	if year <= 0 {
		year = DefaultDisplayYear
	}
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
}

// FactorRows flattens year and anchor factors into Parquet rows.
func FactorRows(years []model.YearFactor, anchors []model.AnchorFactor) []series.FactorRow {
	rows := make([]series.FactorRow, 0, len(years)+len(anchors))
	for _, f := range years {
		rows = append(rows, series.FactorRow{
			Kind:    "year",
			Bucket:  strconv.Itoa(f.Year),
			Factor:  f.Value,
			Valid:   f.Valid,
			Samples: int32(f.Samples),
		})
	}
	for _, f := range anchors {
		rows = append(rows, series.FactorRow{
			Kind:    "anchor",
			Bucket:  fmt.Sprintf("%d-W%02d", f.ISOYear, f.ISOWeek),
			Factor:  f.Value,
			Valid:   f.Valid,
			Samples: int32(f.Samples),
		})
	}
	return rows
}

func logYearFactors(log logrus.FieldLogger, factors []model.YearFactor) {
	for _, f := range factors {
		entry := log.WithFields(logrus.Fields{
			"year":    f.Year,
			"rows":    f.WeeklyRows,
			"samples": f.Samples,
		})
		if !f.Valid {
			if f.WeeklyRows > 0 {
				entry.Warn("no month-start samples; year factor is undefined")
			}
			continue
		}
		entry.WithField("factor", f.Value).Debug("year factor")
	}
}

func logAnchorFactors(log logrus.FieldLogger, factors []model.AnchorFactor) {
	invalid := 0
	for _, f := range factors {
		if !f.Valid {
			invalid++
		}
	}
	if invalid > 0 {
		log.WithFields(logrus.Fields{
			"anchors": len(factors),
			"invalid": invalid,
		}).Warn("some weekly anchors produced undefined hourly factors")
	}
}
