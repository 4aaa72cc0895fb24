package series

import (
	"fmt"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"
)

// PointRow is the Parquet row layout of a series point.
type PointRow struct {
	Key   string    `parquet:"key,snappy"`
	Time  time.Time `parquet:"date,snappy"`
	Value float64   `parquet:"value,snappy"`
}

// FactorRow is the Parquet row layout of a computed scale factor.
type FactorRow struct {
	// Kind is "year" for monthly/weekly factors and "anchor" for weekly/hourly.
	Kind    string  `parquet:"kind,snappy"`
	Bucket  string  `parquet:"bucket,snappy"`
	Factor  float64 `parquet:"factor,snappy"`
	Valid   bool    `parquet:"valid"`
	Samples int32   `parquet:"samples"`
}

// PointRows converts the series into Parquet rows.
func (s *Series) PointRows() []PointRow {
	rows := make([]PointRow, len(s.points))
	for i, p := range s.points {
		rows[i] = PointRow{Key: p.Key, Time: p.Time, Value: p.Value}
	}
	return rows
}

// SaveParquet writes rows to a Parquet file at path.
func SaveParquet[T any](path string, rows []T) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(rows); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return file.Close()
}
