package config

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ErrInvalidYears is returned for a malformed year list.
var ErrInvalidYears = errors.New("invalid years")

// ParseYears parses a comma separated list of years and inclusive ranges,
// e.g. "2018,2020-2022". The result keeps the first occurrence order.
func ParseYears(raw string) ([]int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty list", ErrInvalidYears)
	}
	seen := make(map[int]bool)
	var years []int
	add := func(y int) {
		if !seen[y] {
			seen[y] = true
			years = append(years, y)
		}
	}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		from, to, isRange := strings.Cut(part, "-")
		start, err := parseYear(from)
		if err != nil {
			return nil, err
		}
		if !isRange {
			add(start)
			continue
		}
		end, err := parseYear(to)
		if err != nil {
			return nil, err
		}
		if end < start {
			return nil, fmt.Errorf("%w: range %q is reversed", ErrInvalidYears, part)
		}
		for y := start; y <= end; y++ {
			add(y)
		}
	}
	return years, nil
}

// FormatYears renders years compactly, collapsing consecutive runs into ranges.
func FormatYears(years []int) string {
	if len(years) == 0 {
		return ""
	}
	sorted := append([]int(nil), years...)
	sort.Ints(sorted)
	var parts []string
	start, prev := sorted[0], sorted[0]
	flush := func() {
		if start == prev {
			parts = append(parts, strconv.Itoa(start))
		} else {
			parts = append(parts, fmt.Sprintf("%d-%d", start, prev))
		}
	}
	for _, y := range sorted[1:] {
		if y == prev {
			continue
		}
		if y == prev+1 {
			prev = y
			continue
		}
		flush()
		start, prev = y, y
	}
	flush()
	return strings.Join(parts, ",")
}

func parseYear(raw string) (int, error) {
	y, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || y < 1 || y > 9999 {
		return 0, fmt.Errorf("%w: %q is not a year", ErrInvalidYears, raw)
	}
	return y, nil
}
