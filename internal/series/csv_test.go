package series

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/tsrescale/internal/model"
)

func TestLoadKeysByFirstColumn(t *testing.T) {
	csvData := `timestamp,date,value_week
k1,2018-01-01,50
k2,2018-01-08 00:00:00,60
k3,2018-01-15T00:00:00,NaN`

	s, err := Load(strings.NewReader(csvData), "value_week")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.Len() != 3 {
		t.Fatalf("expected 3 points, got %d", s.Len())
	}
	p, ok := s.Lookup("k2")
	if !ok {
		t.Fatalf("expected key k2")
	}
	if p.Value != 60 || !p.Time.Equal(time.Date(2018, 1, 8, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected point: %+v", p)
	}
	if !math.IsNaN(s.At(2).Value) {
		t.Fatalf("expected NaN for k3, got %f", s.At(2).Value)
	}
}

func TestLoadWithoutDateColumn(t *testing.T) {
	csvData := `ts,value_month
2018-01-01 00:00:00,100
2018-02-01 00:00:00,110`

	s, err := Load(strings.NewReader(csvData), "value_month")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := s.At(1).Time.Month(); got != time.February {
		t.Fatalf("expected February, got %v", got)
	}
	if s.At(0).Key != "2018-01-01 00:00:00" {
		t.Fatalf("unexpected key %q", s.At(0).Key)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		csvData string
		want    error
	}{
		{"missing value column", "ts,date,other\na,2018-01-01,1", ErrMissingColumn},
		{"duplicate key", "ts,date,value_hour\na,2018-01-01,1\na,2018-01-02,2", ErrDuplicateKey},
		{"header only", "ts,date,value_hour\n", ErrNoRows},
		{"empty", "", ErrNoRows},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.csvData), "value_hour")
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestLoadRejectsMalformedRows(t *testing.T) {
	for _, csvData := range []string{
		"ts,date,value_hour\na,not-a-date,1",
		"ts,date,value_hour\na,2018-01-01,abc",
	} {
		if _, err := Load(strings.NewReader(csvData), "value_hour"); err == nil {
			t.Fatalf("expected error for %q", csvData)
		}
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.csv"), "value_hour")
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestWriteCSV(t *testing.T) {
	s := New("out", []model.Point{
		{Key: "a", Time: time.Date(2018, 1, 1, 5, 0, 0, 0, time.UTC), Value: 1.5},
		{Key: "b", Time: time.Date(2018, 1, 1, 6, 0, 0, 0, time.UTC), Value: math.NaN()},
	})
	var buf bytes.Buffer
	if err := WriteCSV(&buf, s, "value_hour"); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}
	expected := "date,value_hour\n2018-01-01 05:00:00,1.5\n2018-01-01 06:00:00,NaN\n"
	if buf.String() != expected {
		t.Fatalf("unexpected output:\n%s", buf.String())
	}
}

func TestSaveCSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	s := testSeries()
	if err := SaveCSV(path, s, "value_week"); err != nil {
		t.Fatalf("SaveCSV failed: %v", err)
	}
	loaded, err := LoadFile(path, "value_week")
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if loaded.Len() != s.Len() {
		t.Fatalf("expected %d rows, got %d", s.Len(), loaded.Len())
	}
	for i := 0; i < s.Len(); i++ {
		if !loaded.At(i).Time.Equal(s.At(i).Time) || loaded.At(i).Value != s.At(i).Value {
			t.Fatalf("row %d mismatch: %+v vs %+v", i, loaded.At(i), s.At(i))
		}
	}
}
