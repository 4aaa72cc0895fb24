package series

import (
	"path/filepath"
	"testing"

	"github.com/parquet-go/parquet-go"
)

func TestSaveParquetPoints(t *testing.T) {
	path := filepath.Join(t.TempDir(), "points.parquet")
	s := testSeries()
	if err := SaveParquet(path, s.PointRows()); err != nil {
		t.Fatalf("SaveParquet failed: %v", err)
	}
	rows, err := parquet.ReadFile[PointRow](path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if len(rows) != s.Len() {
		t.Fatalf("expected %d rows, got %d", s.Len(), len(rows))
	}
	for i, row := range rows {
		if row.Key != s.At(i).Key || row.Value != s.At(i).Value {
			t.Fatalf("row %d mismatch: %+v", i, row)
		}
	}
}

func TestSaveParquetFactors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "factors.parquet")
	in := []FactorRow{
		{Kind: "year", Bucket: "2018", Factor: 2, Valid: true, Samples: 12},
		{Kind: "year", Bucket: "2019", Valid: false},
	}
	if err := SaveParquet(path, in); err != nil {
		t.Fatalf("SaveParquet failed: %v", err)
	}
	rows, err := parquet.ReadFile[FactorRow](path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if len(rows) != 2 || rows[0] != in[0] || rows[1].Valid {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}
