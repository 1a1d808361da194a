// Package archive discovers dated schedule files laid out as
// <root>/YYYY/MM/DD.yaml and loads them one at a time.
package archive

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	homedir "github.com/mitchellh/go-homedir"

	appLog "schedrecur/internal/log"
	"schedrecur/internal/model"
	"schedrecur/internal/schedule"
)

// DefaultWeeks is the default traversal window length.
const DefaultWeeks = 4

// DayFile is one dated schedule file. It implements recur.Source.
type DayFile struct {
	Path string
	Date model.Date
}

func (f DayFile) Name() string { return f.Path }

// Load reads and decodes the file. The returned day carries f.Date.
func (f DayFile) Load() (model.ScheduleDay, error) {
	body, err := os.ReadFile(f.Path)
	if err != nil {
		return model.ScheduleDay{}, err
	}
	day, err := schedule.Decode(body)
	if err != nil {
		return model.ScheduleDay{}, err
	}
	day.Date = f.Date
	return day, nil
}

// Discover returns the schedule files of the analysis window, newest first.
//
// The newest file fixes the end of the window. The start (cutoff) is the
// earlier of now and newest-weeks, moved back to its Monday; files dated
// before the cutoff are skipped. An empty window returns ErrInputNotFound.
func Discover(root string, weeks int, now time.Time, log appLog.Logger) ([]DayFile, error) {
	if weeks <= 0 {
		weeks = DefaultWeeks
	}
	expanded, err := homedir.Expand(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidConfiguration, err)
	}
	root = expanded
	log.Debug("searching archive", "root", root)

	years, err := numberedEntries(root, 4, true, "")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", model.ErrInputNotFound, root)
		}
		return nil, err
	}

	var (
		files  []DayFile
		cutoff model.Date
	)
	for _, y := range years {
		months, err := numberedEntries(filepath.Join(root, y.name), 2, true, "")
		if err != nil {
			return nil, err
		}
		for _, m := range months {
			if m.n < 1 || m.n > 12 {
				continue
			}
			dir := filepath.Join(root, y.name, m.name)
			days, err := numberedEntries(dir, 2, false, ".yaml")
			if err != nil {
				return nil, err
			}
			for _, d := range days {
				date := model.Date{Year: y.n, Month: time.Month(m.n), Day: d.n}
				if model.NewDate(date.Year, date.Month, date.Day) != date {
					log.Debug("skipping invalid date file", "file", filepath.Join(dir, d.name))
					continue
				}
				if len(files) == 0 {
					cutoff = windowStart(date, weeks, now)
					log.Debug("date range", "from", cutoff.String(), "to", date.String())
				} else if date.Before(cutoff) {
					log.Debug("reached cutoff date", "date", date.String())
					break
				}
				path := filepath.Join(dir, d.name)
				log.Debug("found schedule file", "file", path)
				files = append(files, DayFile{Path: path, Date: date})
			}
		}
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %s", model.ErrInputNotFound, root)
	}
	return files, nil
}

// windowStart returns min(now, latest-weeks) moved back to a Monday.
func windowStart(latest model.Date, weeks int, now time.Time) model.Date {
	cutoff := latest.AddDays(-7 * weeks)
	if today := model.DateOf(now); today.Before(cutoff) {
		cutoff = today
	}
	return cutoff.AddDays(-cutoff.Weekday())
}

// Dates returns the distinct dates of files, ascending.
func Dates(files []DayFile) []model.Date {
	set := make(map[model.Date]struct{}, len(files))
	out := make([]model.Date, 0, len(files))
	for _, f := range files {
		if _, ok := set[f.Date]; ok {
			continue
		}
		set[f.Date] = struct{}{}
		out = append(out, f.Date)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

type numbered struct {
	name string
	n    int
}

// numberedEntries lists entries of dir whose name is exactly digits decimal
// digits followed by suffix, newest (largest) first.
func numberedEntries(dir string, digits int, wantDir bool, suffix string) ([]numbered, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	out := make([]numbered, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() != wantDir {
			continue
		}
		name := e.Name()
		if len(name) != digits+len(suffix) || name[digits:] != suffix {
			continue
		}
		n, ok := parseDigits(name[:digits])
		if !ok {
			continue
		}
		out = append(out, numbered{name: name, n: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].n > out[j].n })
	return out, nil
}

func parseDigits(s string) (int, bool) {
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	return n, err == nil
}
