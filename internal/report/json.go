package report

import (
	"encoding/json"
	"io"
	"time"

	"schedrecur/internal/model"
)

// Document is the JSON shape of a report.
type Document struct {
	Window  []model.Date    `json:"window"`
	Entries []EntryDocument `json:"entries"`
}

// EntryDocument is one recurring entry with presentation fields filled in.
type EntryDocument struct {
	model.RecurringEntry
	WeekdayName string `json:"weekday_name"`
	Time        string `json:"time"`
	Earliest    string `json:"earliest"`
	Latest      string `json:"latest"`
	DatesText   string `json:"dates_text"`
	Expected    int    `json:"expected"`
}

// NewDocument builds the JSON document for entries over window.
func NewDocument(entries []model.RecurringEntry, window []model.Date, days Weekdays) (Document, error) {
	doc := Document{
		Window:  window,
		Entries: make([]EntryDocument, 0, len(entries)),
	}
	if doc.Window == nil {
		doc.Window = []model.Date{}
	}
	for _, e := range entries {
		name, err := days.Name(e.Weekday)
		if err != nil {
			return Document{}, err
		}
		doc.Entries = append(doc.Entries, EntryDocument{
			RecurringEntry: e,
			WeekdayName:    name,
			Time:           FormatTime(e.Hour, e.Minute),
			Earliest:       formatOffset(e.Earliest),
			Latest:         formatOffset(e.Latest),
			DatesText:      FormatDates(e.Dates),
			Expected:       model.CountWeekday(window, e.Weekday),
		})
	}
	return doc, nil
}

// formatOffset renders an offset from midnight as "HH:MM".
func formatOffset(d time.Duration) string {
	return FormatTime(int(d/time.Hour), int(d%time.Hour/time.Minute))
}

// WriteJSON writes the indented JSON document.
func WriteJSON(w io.Writer, entries []model.RecurringEntry, window []model.Date, days Weekdays) error {
	doc, err := NewDocument(entries, window, days)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
