package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"golang.org/x/text/language"

	"schedrecur/internal/locale"
	"schedrecur/internal/model"
)

// Weekdays names weekdays for presentation.
type Weekdays struct {
	Namer locale.WeekdayNamer
	Tag   language.Tag
}

// Name returns the display name of weekday (0=Monday).
func (w Weekdays) Name(weekday int) (string, error) {
	namer := w.Namer
	if namer == nil {
		namer = locale.Abbrev{}
	}
	return namer.NameOf(weekday, w.Tag)
}

// FormatTime formats hour and minute as HH:MM.
func FormatTime(hour, minute int) string {
	return fmt.Sprintf("%02d:%02d", hour, minute)
}

// Label is the display label of an entry: its name, plus the channel in
// multi-channel runs.
func Label(e model.RecurringEntry) string {
	if e.Channel == "" {
		return e.Name
	}
	return e.Name + " [" + e.Channel + "]"
}

// WriteText writes the weekday-grouped text report:
//
//	ma:
//	  20:30: Monday Show / Uutiset (1-8.1.)
//
// An entry seen on fewer dates than its weekday occurs in window is
// annotated with its contributing dates.
func WriteText(w io.Writer, entries []model.RecurringEntry, window []model.Date, days Weekdays) error {
	byWeekday := make(map[int]map[string][]string)
	names := make(map[int]string)
	for _, e := range entries {
		if _, ok := names[e.Weekday]; !ok {
			name, err := days.Name(e.Weekday)
			if err != nil {
				return err
			}
			names[e.Weekday] = name
		}
		label := Label(e)
		if len(e.Dates) < model.CountWeekday(window, e.Weekday) {
			label += " (" + FormatDates(e.Dates) + ")"
		}
		slots := byWeekday[e.Weekday]
		if slots == nil {
			slots = make(map[string][]string)
			byWeekday[e.Weekday] = slots
		}
		t := FormatTime(e.Hour, e.Minute)
		slots[t] = append(slots[t], label)
	}

	for weekday := 0; weekday < 7; weekday++ {
		slots, ok := byWeekday[weekday]
		if !ok {
			continue
		}
		if _, err := fmt.Fprintf(w, "%s:\n", names[weekday]); err != nil {
			return err
		}

		times := make([]string, 0, len(slots))
		for t := range slots {
			times = append(times, t)
		}
		sort.Strings(times)
		for _, t := range times {
			labels := slots[t]
			sort.Strings(labels)
			if _, err := fmt.Fprintf(w, "  %s: %s\n", t, strings.Join(labels, " / ")); err != nil {
				return err
			}
		}
	}
	return nil
}
