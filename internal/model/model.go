package model

import "time"

// ScheduleDay is one day's raw schedule record as decoded from the archive.
// It is consumed by the extractor and not retained afterwards.
type ScheduleDay struct {
	// Date is the calendar date of the archive file. Zero when the record
	// did not come from a dated file.
	Date Date

	// Channels in document order.
	Channels []Channel
}

// Channel is a single channel's programme list within a ScheduleDay.
type Channel struct {
	ID         string
	Programmes []ProgramEntry
}

// ProgramEntry is a single broadcast instance as it appears in the archive.
type ProgramEntry struct {
	Series    string `yaml:"series" json:"series,omitempty"`
	Title     string `yaml:"title" json:"title,omitempty"`
	StartTime string `yaml:"start_time" json:"start_time"`
}

// DisplayName resolves the series/title pair: the series when set,
// otherwise the title, otherwise "".
func (p ProgramEntry) DisplayName() string {
	if p.Series != "" {
		return p.Series
	}
	return p.Title
}

// Occurrence is a normalized (program, start) pair produced by the extractor.
type Occurrence struct {
	Name    string
	Channel string
	Start   time.Time
}

// Weekday returns 0 for Monday through 6 for Sunday.
func (o Occurrence) Weekday() int {
	return MondayIndex(o.Start.Weekday())
}

// Date returns the calendar date of the start time in its own offset.
func (o Occurrence) Date() Date {
	return DateOf(o.Start)
}

// TimeOfDay returns the start time with the date fields normalized away,
// expressed as the offset from midnight.
func (o Occurrence) TimeOfDay() time.Duration {
	h, m, s := o.Start.Clock()
	return time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second +
		time.Duration(o.Start.Nanosecond())
}

// RecurringEntry is one time slot that survived the minimum-occurrence filter.
type RecurringEntry struct {
	Weekday int    `json:"weekday"`
	Hour    int    `json:"hour"`
	Minute  int    `json:"minute"`
	Name    string `json:"name"`
	Channel string `json:"channel,omitempty"`

	// Dates that contributed to the slot, ascending.
	Dates []Date `json:"dates"`

	// Earliest / Latest are the slot bounds as offsets from midnight.
	// Report documents carry them as "HH:MM".
	Earliest time.Duration `json:"-"`
	Latest   time.Duration `json:"-"`
}

// Less reports whether e sorts before o: weekday, hour, minute, name, channel.
func (e RecurringEntry) Less(o RecurringEntry) bool {
	if e.Weekday != o.Weekday {
		return e.Weekday < o.Weekday
	}
	if e.Hour != o.Hour {
		return e.Hour < o.Hour
	}
	if e.Minute != o.Minute {
		return e.Minute < o.Minute
	}
	if e.Name != o.Name {
		return e.Name < o.Name
	}
	return e.Channel < o.Channel
}

// MondayIndex converts time.Weekday (Sunday=0) to the 0=Monday..6=Sunday scheme.
func MondayIndex(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}
