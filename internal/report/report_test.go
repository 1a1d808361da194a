package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"
	"golang.org/x/text/language"

	"schedrecur/internal/model"
)

var english = Weekdays{Tag: language.English}

func TestWriteText(t *testing.T) {
	window := []model.Date{d(2024, 1, 1), d(2024, 1, 8), d(2024, 1, 15), d(2024, 1, 2)}
	entries := []model.RecurringEntry{
		{Weekday: 0, Hour: 20, Minute: 30, Name: "Monday Show", Dates: []model.Date{d(2024, 1, 1), d(2024, 1, 8), d(2024, 1, 15)}},
		{Weekday: 0, Hour: 20, Minute: 30, Name: "Another", Dates: []model.Date{d(2024, 1, 1), d(2024, 1, 15)}},
		{Weekday: 0, Hour: 7, Minute: 5, Name: "Morning", Dates: []model.Date{d(2024, 1, 8), d(2024, 1, 15)}},
		{Weekday: 1, Hour: 18, Minute: 0, Name: "Tuesday", Dates: []model.Date{d(2024, 1, 2)}},
	}

	var buf bytes.Buffer
	if err := WriteText(&buf, entries, window, english); err != nil {
		t.Fatalf("WriteText error: %v", err)
	}
	want := "mon:\n" +
		"  07:05: Morning (8-15.1.)\n" +
		"  20:30: Another (1.1., 15.1.) / Monday Show\n" +
		"tue:\n" +
		"  18:00: Tuesday\n"
	if got := buf.String(); got != want {
		t.Fatalf("WriteText =\n%s\nwant\n%s", got, want)
	}
}

func TestWriteTextChannelLabel(t *testing.T) {
	entries := []model.RecurringEntry{
		{Weekday: 4, Hour: 21, Minute: 0, Name: "News", Channel: "tv2", Dates: []model.Date{d(2024, 1, 5)}},
	}
	var buf bytes.Buffer
	if err := WriteText(&buf, entries, nil, english); err != nil {
		t.Fatalf("WriteText error: %v", err)
	}
	if got := buf.String(); got != "fri:\n  21:00: News [tv2]\n" {
		t.Fatalf("WriteText = %q", got)
	}
}

func TestWriteTextInvalidWeekday(t *testing.T) {
	entries := []model.RecurringEntry{{Weekday: 9, Name: "x"}}
	err := WriteText(&bytes.Buffer{}, entries, nil, english)
	if !errors.Is(err, model.ErrInvalidConfiguration) {
		t.Fatalf("err = %v, want ErrInvalidConfiguration", err)
	}
}

func TestRenderHTML(t *testing.T) {
	// 2024-01-03 is a Wednesday; Monday and Tuesday columns are padded.
	window := []model.Date{d(2024, 1, 3), d(2024, 1, 8), d(2024, 1, 10)}
	entries := []model.RecurringEntry{
		{Weekday: 0, Hour: 20, Minute: 30, Name: "Monday <Show>", Dates: []model.Date{d(2024, 1, 8)}},
		{Weekday: 2, Hour: 19, Minute: 0, Name: "Wednesday", Dates: []model.Date{d(2024, 1, 3), d(2024, 1, 10)}},
	}

	var buf bytes.Buffer
	err := RenderHTML(&buf, entries, window, HTMLOptions{
		Weekdays: english,
		Today:    d(2024, 1, 10),
		Timezone: "Europe/Helsinki",
	})
	if err != nil {
		t.Fatalf("RenderHTML error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`data-ready="true"`,
		`data-timezone="Europe/Helsinki"`,
		`data-date="2024-01-08"`,
		`Monday &lt;Show&gt;`,
		`class="present today"`,
		">mon<",
		">wed<",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if strings.Contains(out, "<Show>") {
		t.Error("program name not escaped")
	}
}

func TestRenderHTMLInvalidWeekday(t *testing.T) {
	entries := []model.RecurringEntry{{Weekday: 7, Name: "x", Dates: []model.Date{d(2024, 1, 1)}}}
	err := RenderHTML(&bytes.Buffer{}, entries, []model.Date{d(2024, 1, 1)}, HTMLOptions{Weekdays: english})
	if !errors.Is(err, model.ErrInvalidConfiguration) {
		t.Fatalf("err = %v, want ErrInvalidConfiguration", err)
	}
}

func TestRenderHTMLScriptAndDrawer(t *testing.T) {
	window := []model.Date{d(2024, 1, 1), d(2024, 1, 8)}
	entries := []model.RecurringEntry{
		{Weekday: 0, Hour: 20, Minute: 30, Name: "Monday Show", Dates: window},
	}

	tests := []struct {
		name    string
		opts    HTMLOptions
		want    []string
		notWant []string
	}{
		{
			name: "inline script",
			opts: HTMLOptions{Weekdays: english},
			want: []string{
				"updateTimeHighlight",
				`id="drawer"`,
				`id="hidden-count"`,
				"programs hidden",
				`data-toggle-program="Monday Show"`,
				`data-iso-weekday="1"`,
				">Program<",
			},
			notWant: []string{`<script src=`},
		},
		{
			name:    "script url",
			opts:    HTMLOptions{Weekdays: english, ScriptURL: "/schedule.js"},
			want:    []string{`<script src="/schedule.js" defer>`},
			notWant: []string{"updateTimeHighlight"},
		},
		{
			name: "finnish labels",
			opts: HTMLOptions{Weekdays: Weekdays{Tag: language.Finnish}},
			want: []string{"ohjelmaa piilotettu", ">Ohjelma<", `data-show-label="näytä"`},
		},
		{
			name: "swedish labels",
			opts: HTMLOptions{Weekdays: Weekdays{Tag: language.Swedish}},
			want: []string{"program dolda", `data-show-label="visa"`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := RenderHTML(&buf, entries, window, tt.opts); err != nil {
				t.Fatalf("RenderHTML error: %v", err)
			}
			out := buf.String()
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q", want)
				}
			}
			for _, bad := range tt.notWant {
				if strings.Contains(out, bad) {
					t.Errorf("output contains %q", bad)
				}
			}
		})
	}
}

func TestGridAlignsMidWeekStart(t *testing.T) {
	// 2024-01-03 is a Wednesday, so the Monday and Tuesday rows open with
	// an empty cell for the week before the window.
	window := []model.Date{d(2024, 1, 3), d(2024, 1, 8), d(2024, 1, 9), d(2024, 1, 10)}
	entries := []model.RecurringEntry{
		{Weekday: 0, Hour: 20, Minute: 30, Name: "Monday Show", Dates: []model.Date{d(2024, 1, 8)}},
		{Weekday: 1, Hour: 18, Minute: 0, Name: "Tuesday Show", Dates: []model.Date{d(2024, 1, 9)}},
		{Weekday: 2, Hour: 19, Minute: 0, Name: "Wednesday Show", Dates: []model.Date{d(2024, 1, 10)}},
	}

	view, err := buildGrid(entries, window, HTMLOptions{Weekdays: english})
	if err != nil {
		t.Fatalf("buildGrid error: %v", err)
	}
	if len(view.Days) != 3 {
		t.Fatalf("days = %d, want 3", len(view.Days))
	}

	type cell struct {
		class string
		date  string
	}
	classOf := func(c gridCell) string {
		switch {
		case c.Empty:
			return "empty"
		case c.Present:
			return "present"
		default:
			return "absent"
		}
	}
	want := [][]cell{
		{{"empty", ""}, {"present", "2024-01-08"}},
		{{"empty", ""}, {"present", "2024-01-09"}},
		{{"absent", "2024-01-03"}, {"present", "2024-01-10"}},
	}
	for i, day := range view.Days {
		if len(day.Rows) != 1 {
			t.Fatalf("%s rows = %d, want 1", day.Name, len(day.Rows))
		}
		cells := day.Rows[0].Cells
		if len(cells) != len(want[i]) {
			t.Fatalf("%s cells = %d, want %d", day.Name, len(cells), len(want[i]))
		}
		for j, c := range cells {
			got := cell{classOf(c), c.Date}
			if got != want[i][j] {
				t.Errorf("%s cell %d = %+v, want %+v", day.Name, j, got, want[i][j])
			}
			if col := day.Columns[j]; col.Date != c.Date {
				t.Errorf("%s cell %d date %q under column %q", day.Name, j, c.Date, col.Date)
			}
		}
	}

	var buf bytes.Buffer
	if err := RenderHTML(&buf, entries, window, HTMLOptions{Weekdays: english}); err != nil {
		t.Fatalf("RenderHTML error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`<td class="empty"></td>`,
		`class="present" data-date="2024-01-08"`,
		`class="present" data-date="2024-01-09"`,
		`class="absent" data-date="2024-01-03"`,
		`class="present" data-date="2024-01-10"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestWeekdayColumns(t *testing.T) {
	window := []model.Date{d(2024, 1, 3), d(2024, 1, 8), d(2024, 1, 9)}
	columns, maxDates := weekdayColumns(window, d(2024, 1, 10))

	if maxDates != 2 {
		t.Fatalf("maxDates = %d, want 2", maxDates)
	}
	// Monday: padding then 8.1.
	if len(columns[0]) != 2 || !columns[0][0].IsZero() || columns[0][1] != d(2024, 1, 8) {
		t.Fatalf("monday column = %v", columns[0])
	}
	// Wednesday: 3.1. and today 10.1.
	if len(columns[2]) != 2 || columns[2][1] != d(2024, 1, 10) {
		t.Fatalf("wednesday column = %v", columns[2])
	}
	// Sunday: nothing, not padded (after the first weekday).
	if len(columns[6]) != 0 {
		t.Fatalf("sunday column = %v", columns[6])
	}
}

func TestWriteICS(t *testing.T) {
	entries := []model.RecurringEntry{{
		Weekday: 0, Hour: 20, Minute: 30, Name: "Monday Show",
		Dates: []model.Date{d(2024, 1, 1), d(2024, 1, 8), d(2024, 1, 22)},
	}}

	var buf bytes.Buffer
	err := WriteICS(&buf, entries, ICSOptions{Now: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)})
	if err != nil {
		t.Fatalf("WriteICS error: %v", err)
	}

	cal, err := ical.ParseCalendar(strings.NewReader(buf.String()))
	if err != nil {
		t.Fatalf("ParseCalendar error: %v", err)
	}
	events := cal.Events()
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	ev := events[0]

	if p := ev.GetProperty(ical.ComponentPropertySummary); p == nil || p.Value != "Monday Show" {
		t.Fatalf("summary = %+v", p)
	}
	rule := ev.GetProperty(ical.ComponentPropertyRrule)
	if rule == nil || !strings.Contains(rule.Value, "FREQ=WEEKLY") || !strings.Contains(rule.Value, "BYDAY=MO") {
		t.Fatalf("rrule = %+v", rule)
	}
	ex := ev.GetProperties(ical.ComponentPropertyExdate)
	if len(ex) != 1 || ex[0].Value != "20240115T203000Z" {
		t.Fatalf("exdates = %+v, want one for 2024-01-15", ex)
	}
	if p := ev.GetProperty(ical.ComponentPropertyDtStart); p == nil || p.Value != "20240101T203000Z" {
		t.Fatalf("dtstart = %+v", p)
	}
}

func TestWriteJSON(t *testing.T) {
	window := []model.Date{d(2024, 1, 1), d(2024, 1, 8)}
	entries := []model.RecurringEntry{
		{
			Weekday: 0, Hour: 20, Minute: 30, Name: "Monday Show", Dates: []model.Date{d(2024, 1, 1), d(2024, 1, 8)},
			Earliest: 20*time.Hour + 25*time.Minute, Latest: 20*time.Hour + 35*time.Minute,
		},
	}
	var buf bytes.Buffer
	if err := WriteJSON(&buf, entries, window, english); err != nil {
		t.Fatalf("WriteJSON error: %v", err)
	}

	var doc struct {
		Window  []string `json:"window"`
		Entries []struct {
			Name        string   `json:"name"`
			WeekdayName string   `json:"weekday_name"`
			Time        string   `json:"time"`
			Earliest    string   `json:"earliest"`
			Latest      string   `json:"latest"`
			Dates       []string `json:"dates"`
			DatesText   string   `json:"dates_text"`
			Expected    int      `json:"expected"`
		} `json:"entries"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(doc.Window) != 2 || len(doc.Entries) != 1 {
		t.Fatalf("doc = %+v", doc)
	}
	e := doc.Entries[0]
	if e.Name != "Monday Show" || e.WeekdayName != "mon" || e.Time != "20:30" || e.DatesText != "1-8.1." || e.Expected != 2 {
		t.Fatalf("entry = %+v", e)
	}
	if len(e.Dates) != 2 || e.Dates[0] != "2024-01-01" {
		t.Fatalf("dates = %v", e.Dates)
	}
	if e.Earliest != "20:25" || e.Latest != "20:35" {
		t.Fatalf("bounds = %q..%q, want 20:25..20:35", e.Earliest, e.Latest)
	}
}
