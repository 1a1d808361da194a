package report

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"sort"

	"schedrecur/internal/locale"
	"schedrecur/internal/model"
)

//go:embed templates/grid.html.tmpl templates/style.css templates/schedule.js
var templatesFS embed.FS

var gridTemplate = template.Must(template.ParseFS(templatesFS, "templates/grid.html.tmpl"))

// HTMLOptions controls the HTML grid.
type HTMLOptions struct {
	Weekdays Weekdays

	// Today is added to the grid's dates and highlighted.
	Today model.Date

	// Timezone is exposed as data-timezone on the table.
	Timezone string

	Title string

	// ScriptURL, when set, loads the grid script from this URL instead of
	// inlining it into the page.
	ScriptURL string
}

// ScheduleJS returns the grid script: the hidden-program drawer and the
// current-time highlighting.
func ScheduleJS() []byte {
	b, err := templatesFS.ReadFile("templates/schedule.js")
	if err != nil {
		panic(err)
	}
	return b
}

type gridView struct {
	Lang      string
	Title     string
	Timezone  string
	Style     template.CSS
	Script    template.JS
	ScriptURL string
	Text      locale.Strings
	Days      []gridDay
}

type gridDay struct {
	Weekday int
	// ISOWeekday is 1 for Monday through 7 for Sunday.
	ISOWeekday int
	Name       string
	Columns    []gridColumn
	Rows       []gridRow
}

type gridColumn struct {
	Label string
	Date  string
	Today bool
}

type gridRow struct {
	Time    string
	Program string
	Cells   []gridCell
}

type gridCell struct {
	Date    string
	Present bool
	Empty   bool
	Today   bool
}

// RenderHTML writes the weekday grid. Each weekday with entries gets a
// header row of its dates in the window (plus opts.Today) and one row per
// entry marking on which of those dates the entry was seen.
func RenderHTML(w io.Writer, entries []model.RecurringEntry, window []model.Date, opts HTMLOptions) error {
	view, err := buildGrid(entries, window, opts)
	if err != nil {
		return err
	}
	if err := gridTemplate.Execute(w, view); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}

func buildGrid(entries []model.RecurringEntry, window []model.Date, opts HTMLOptions) (gridView, error) {
	style, err := templatesFS.ReadFile("templates/style.css")
	if err != nil {
		return gridView{}, err
	}
	title := opts.Title
	if title == "" {
		title = "Recurring programs"
	}
	view := gridView{
		Lang:     opts.Weekdays.Tag.String(),
		Title:    title,
		Timezone: opts.Timezone,
		Style:    template.CSS(style),
		Text:     locale.UIStrings(opts.Weekdays.Tag),
	}
	if opts.ScriptURL != "" {
		view.ScriptURL = opts.ScriptURL
	} else {
		view.Script = template.JS(ScheduleJS())
	}

	columns, maxDates := weekdayColumns(window, opts.Today)

	byWeekday := make(map[int][]model.RecurringEntry)
	names := make(map[int]string)
	for _, e := range entries {
		if _, ok := names[e.Weekday]; !ok {
			name, err := opts.Weekdays.Name(e.Weekday)
			if err != nil {
				return gridView{}, err
			}
			names[e.Weekday] = name
		}
		byWeekday[e.Weekday] = append(byWeekday[e.Weekday], e)
	}

	for weekday := 0; weekday < 7; weekday++ {
		list, ok := byWeekday[weekday]
		if !ok {
			continue
		}
		day := gridDay{Weekday: weekday, ISOWeekday: weekday + 1, Name: names[weekday]}

		dates := columns[weekday]
		for i := 0; i < maxDates; i++ {
			var col gridColumn
			if i < len(dates) && !dates[i].IsZero() {
				col = gridColumn{Label: dayMonth(dates[i]), Date: dates[i].String(), Today: dates[i] == opts.Today}
			}
			day.Columns = append(day.Columns, col)
		}

		sort.SliceStable(list, func(i, j int) bool { return list[i].Less(list[j]) })
		for _, e := range list {
			present := make(map[model.Date]bool, len(e.Dates))
			for _, d := range e.Dates {
				present[d] = true
			}
			row := gridRow{Time: FormatTime(e.Hour, e.Minute), Program: Label(e)}
			for i := 0; i < maxDates; i++ {
				if i >= len(dates) || dates[i].IsZero() {
					row.Cells = append(row.Cells, gridCell{Empty: true})
					continue
				}
				row.Cells = append(row.Cells, gridCell{
					Date:    dates[i].String(),
					Present: present[dates[i]],
					Today:   dates[i] == opts.Today,
				})
			}
			day.Rows = append(day.Rows, row)
		}
		view.Days = append(view.Days, day)
	}
	return view, nil
}

// weekdayColumns groups the window dates (plus today, when set) by weekday
// in week order. Weekdays before the first date's weekday get a leading
// zero Date so that columns line up by week. It also returns the widest
// column count.
func weekdayColumns(window []model.Date, today model.Date) ([7][]model.Date, int) {
	all := append([]model.Date(nil), window...)
	if !today.IsZero() {
		all = append(all, today)
	}
	all = uniqueSorted(all)

	var columns [7][]model.Date
	if len(all) == 0 {
		return columns, 0
	}
	first := all[0].Weekday()
	for weekday := 0; weekday < first; weekday++ {
		columns[weekday] = append(columns[weekday], model.Date{})
	}
	for _, d := range all {
		columns[d.Weekday()] = append(columns[d.Weekday()], d)
	}

	maxDates := 0
	for _, c := range columns {
		if len(c) > maxDates {
			maxDates = len(c)
		}
	}
	return columns, maxDates
}
