package series

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/verte-zerg/tsrescale/internal/model"
)

// DateColumn is the column holding display timestamps.
const DateColumn = "date"

// TimeLayout is the timestamp layout used when writing CSV files.
const TimeLayout = "2006-01-02 15:04:05"

var (
	ErrMissingColumn = errors.New("missing column")
	ErrDuplicateKey  = errors.New("duplicate key")
	ErrNoRows        = errors.New("no rows")
)

var timeLayouts = []string{
	TimeLayout,
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02",
}

// LoadFile reads a series from a CSV file.
func LoadFile(path, valueColumn string) (*Series, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for a read-only input.
			_ = cerr
		}
	}()
	s, err := Load(file, valueColumn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Load reads a series from CSV. Rows are keyed by the first column; the
// timestamp comes from the date column, or from the first column when the
// table has none.
func Load(r io.Reader, valueColumn string) (*Series, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrNoRows
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	valueIdx, dateIdx := -1, 0
	for i, h := range header {
		switch strings.TrimSpace(h) {
		case valueColumn:
			valueIdx = i
		case DateColumn:
			dateIdx = i
		}
	}
	if valueIdx < 0 {
		return nil, fmt.Errorf("%w %q", ErrMissingColumn, valueColumn)
	}

	var points []model.Point
	seen := make(map[string]int)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := reader.FieldPos(0)
		key := strings.TrimSpace(record[0])
		if prev, ok := seen[key]; ok {
			return nil, fmt.Errorf("line %d: %w %q (first seen on line %d)", line, ErrDuplicateKey, key, prev)
		}
		seen[key] = line

		ts, err := ParseTime(record[dateIdx])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		val, err := parseValue(record[valueIdx])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		points = append(points, model.Point{Key: key, Time: ts, Value: val})
	}
	if len(points) == 0 {
		return nil, ErrNoRows
	}
	return New(valueColumn, points), nil
}

// ParseTime parses a timestamp in any of the accepted layouts as UTC.
func ParseTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range timeLayouts {
		if ts, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", raw)
}

func parseValue(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	switch raw {
	case "", "NA", "NaN", "nan", "null":
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value %q", raw)
	}
	return v, nil
}

// WriteCSV writes the series as "date,<valueColumn>" rows.
func WriteCSV(w io.Writer, s *Series, valueColumn string) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{DateColumn, valueColumn}); err != nil {
		return err
	}
	for _, p := range s.points {
		row := []string{p.Time.Format(TimeLayout), strconv.FormatFloat(p.Value, 'g', -1, 64)}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// SaveCSV writes the series to path.
func SaveCSV(path string, s *Series, valueColumn string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	buf := bufio.NewWriter(file)
	if err := WriteCSV(buf, s, valueColumn); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := buf.Flush(); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	return file.Close()
}
