package report

import (
	"sort"
	"strconv"
	"strings"

	"schedrecur/internal/model"
)

const weeklyInterval = 7

// FormatDates renders dates compactly. Runs of dates exactly one week apart
// collapse into ranges:
//
//	1.12.              single date
//	1-22.12.           weekly run within a month
//	30.11.-21.12.      weekly run across months
//
// Runs are joined with ", ". Duplicates are ignored; empty input gives "".
func FormatDates(dates []model.Date) string {
	if len(dates) == 0 {
		return ""
	}
	sorted := uniqueSorted(dates)

	var runs [][]model.Date
	current := []model.Date{sorted[0]}
	for i := 1; i < len(sorted); i++ {
		if sorted[i].DaysSince(sorted[i-1]) == weeklyInterval {
			current = append(current, sorted[i])
			continue
		}
		runs = append(runs, current)
		current = []model.Date{sorted[i]}
	}
	runs = append(runs, current)

	parts := make([]string, 0, len(runs))
	for _, run := range runs {
		parts = append(parts, formatRun(run))
	}
	return strings.Join(parts, ", ")
}

func formatRun(run []model.Date) string {
	start, end := run[0], run[len(run)-1]
	if len(run) == 1 {
		return dayMonth(start)
	}
	if start.Month == end.Month {
		return strconv.Itoa(start.Day) + "-" + dayMonth(end)
	}
	return dayMonth(start) + "-" + dayMonth(end)
}

func dayMonth(d model.Date) string {
	return strconv.Itoa(d.Day) + "." + strconv.Itoa(int(d.Month)) + "."
}

func uniqueSorted(dates []model.Date) []model.Date {
	out := append([]model.Date(nil), dates...)
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	n := 0
	for i, d := range out {
		if i > 0 && d == out[n-1] {
			continue
		}
		out[n] = d
		n++
	}
	return out[:n]
}
