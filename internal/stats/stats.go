package stats

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/tsrescale/internal/model"
)

const sparkChars = " .:-=+*#%@"

var headerStyle = lipgloss.NewStyle().Bold(true).Underline(true)

// Sparkline renders a single-line ASCII sparkline. Non-finite values render
// as '?'.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	var b strings.Builder
	for _, v := range values {
		switch {
		case math.IsNaN(v) || math.IsInf(v, 0):
			b.WriteByte('?')
		case maxVal-minVal < 1e-9:
			b.WriteByte(sparkChars[len(sparkChars)/2])
		default:
			pos := (v - minVal) / (maxVal - minVal)
			idx := int(math.Round(pos * float64(len(sparkChars)-1)))
			b.WriteByte(sparkChars[idx])
		}
	}
	return b.String()
}

// RenderYearFactors prints the monthly/weekly factor of every year.
func RenderYearFactors(w io.Writer, factors []model.YearFactor, styled bool) error {
	if len(factors) == 0 {
		_, err := fmt.Fprintln(w, "No years configured.")
		return err
	}
	headers := []string{"Year", "Weekly rows", "Month starts", "Factor"}
	rows := make([][]string, 0, len(factors))
	for _, f := range factors {
		rows = append(rows, []string{
			strconv.Itoa(f.Year),
			strconv.Itoa(f.WeeklyRows),
			strconv.Itoa(f.Samples),
			formatFactor(f.ScaleFactor),
		})
	}
	lines := formatTable(headers, rows, map[int]bool{1: true, 2: true, 3: true})
	for i, line := range lines {
		if i == 0 && styled {
			line = headerStyle.Render(line)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderSummary prints run counts and the anchor factor trend.
func RenderSummary(w io.Writer, s Summary) error {
	lines := []string{
		"Summary",
		fmt.Sprintf("Loaded rows: monthly=%d weekly=%d hourly=%d", s.MonthlyRows, s.WeeklyRows, s.HourlyRows),
		fmt.Sprintf("Rescaled rows: weekly=%d hourly=%d", s.RescaledWeekly, s.RescaledHourly),
		fmt.Sprintf("Repeated hourly keys: %d", s.DuplicateHourly),
		fmt.Sprintf("Undefined factors: years=%d anchors=%d", len(s.InvalidYears), s.InvalidAnchors),
	}
	if len(s.AnchorFactors) > 0 {
		lines = append(lines, "Anchor factors: "+Sparkline(s.AnchorFactors))
	}
	for _, f := range s.Files {
		lines = append(lines, "Wrote "+f)
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func formatFactor(f model.ScaleFactor) string {
	if !f.Valid {
		return "n/a"
	}
	return strconv.FormatFloat(f.Value, 'f', 4, 64)
}
