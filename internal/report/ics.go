package report

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"

	"schedrecur/internal/model"
)

const icsTimestampUTC = "20060102T150405Z"

var rruleWeekdays = [7]rrule.Weekday{rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA, rrule.SU}

// ICSOptions controls the iCalendar export.
type ICSOptions struct {
	// Location is the zone the representative times are interpreted in.
	// If nil, time.UTC is used.
	Location *time.Location

	// Now stamps DTSTAMP. If zero, time.Now() is used.
	Now time.Time
}

// WriteICS exports entries as an iCalendar feed. Each entry becomes a
// weekly VEVENT starting on its first date at its representative time and
// ending on its last date; weeks in between without an occurrence are
// listed as EXDATEs.
func WriteICS(w io.Writer, entries []model.RecurringEntry, opts ICSOptions) error {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//schedrecur//recurring programs//EN")

	for _, e := range entries {
		if len(e.Dates) == 0 {
			continue
		}
		rule, exdates, err := weeklyRule(e, opts.Location)
		if err != nil {
			return err
		}

		first := e.Dates[0]
		start := time.Date(first.Year, first.Month, first.Day, e.Hour, e.Minute, 0, 0, opts.Location)

		ev := cal.AddEvent(entryUID(e))
		ev.SetDtStampTime(opts.Now)
		ev.SetSummary(Label(e))
		ev.SetDescription("Seen on " + FormatDates(e.Dates) + " (" + strconv.Itoa(len(e.Dates)) + " times)")
		ev.SetStartAt(start)
		ev.AddProperty(ical.ComponentPropertyRrule, rule)
		for _, ex := range exdates {
			ev.AddProperty(ical.ComponentPropertyExdate, ex.UTC().Format(icsTimestampUTC))
		}
	}

	if _, err := io.WriteString(w, cal.Serialize()); err != nil {
		return fmt.Errorf("write ics: %w", err)
	}
	return nil
}

// weeklyRule builds the RRULE value for e and the weekly instants between
// its first and last date that e was not seen on.
func weeklyRule(e model.RecurringEntry, loc *time.Location) (string, []time.Time, error) {
	if e.Weekday < 0 || e.Weekday > 6 {
		return "", nil, fmt.Errorf("%w: weekday %d", model.ErrInvalidConfiguration, e.Weekday)
	}
	first, last := e.Dates[0], e.Dates[len(e.Dates)-1]
	start := time.Date(first.Year, first.Month, first.Day, e.Hour, e.Minute, 0, 0, loc)
	until := time.Date(last.Year, last.Month, last.Day, e.Hour, e.Minute, 0, 0, loc)

	opt := rrule.ROption{
		Freq:      rrule.WEEKLY,
		Dtstart:   start,
		Until:     until,
		Byweekday: []rrule.Weekday{rruleWeekdays[e.Weekday]},
	}
	r, err := rrule.NewRRule(opt)
	if err != nil {
		return "", nil, fmt.Errorf("build rrule for %q: %w", e.Name, err)
	}

	seen := make(map[model.Date]bool, len(e.Dates))
	for _, d := range e.Dates {
		seen[d] = true
	}
	var exdates []time.Time
	for _, t := range r.All() {
		if !seen[model.DateOf(t)] {
			exdates = append(exdates, t)
		}
	}
	return opt.RRuleString(), exdates, nil
}

func entryUID(e model.RecurringEntry) string {
	key := fmt.Sprintf("%s\x00%s\x00%d\x00%02d:%02d", e.Name, e.Channel, e.Weekday, e.Hour, e.Minute)
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:8]) + "@schedrecur"
}
