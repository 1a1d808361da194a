// Package recur detects programs that recur at a consistent weekday and
// time-of-day slot across many days of schedule data.
//
// Occurrences are grouped by (name, weekday). Within a group, start times
// are clustered into slots: an occurrence joins the first existing slot whose
// [earliest-tolerance, latest+tolerance] window contains its time of day,
// widening that slot's bounds; otherwise it opens a new slot. Slots observed
// on at least MinOccurrences distinct dates are reported.
package recur

import (
	"fmt"
	"sort"
	"time"

	appLog "schedrecur/internal/log"
	"schedrecur/internal/model"
	"schedrecur/internal/schedule"
)

const (
	DefaultMinOccurrences = 2
	DefaultTolerance      = 13 * time.Minute
)

// Options controls an analysis run. Zero values take the defaults.
type Options struct {
	// MinOccurrences is the number of distinct dates a slot needs to be
	// reported. Defaults to DefaultMinOccurrences.
	MinOccurrences int

	// Tolerance is the maximum time-of-day distance from a slot's bounds for
	// an occurrence to join it. Zero means unset and takes DefaultTolerance;
	// callers taking user input reject non-positive values before this.
	Tolerance time.Duration

	// Channels selects single- or multi-channel extraction. In ChannelAll
	// mode the channel is part of the grouping key.
	Channels schedule.ChannelMode

	Log appLog.Logger
}

func (o Options) withDefaults() Options {
	if o.MinOccurrences <= 0 {
		o.MinOccurrences = DefaultMinOccurrences
	}
	if o.Tolerance <= 0 {
		o.Tolerance = DefaultTolerance
	}
	if o.Channels == "" {
		o.Channels = schedule.ChannelFirst
	}
	return o
}

// Source yields one day's schedule record. Sources are loaded lazily, one
// at a time, in the order given to Analyze.
type Source interface {
	Name() string
	Load() (model.ScheduleDay, error)
}

// Analyze loads every source in order, clusters all extracted occurrences
// and returns the recurring entries sorted by weekday, hour, minute, name.
// The first load or extraction error aborts the run.
func Analyze(sources []Source, opts Options) ([]model.RecurringEntry, error) {
	opts = opts.withDefaults()
	c := New(opts)

	for _, src := range sources {
		day, err := src.Load()
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", src.Name(), err)
		}
		occurrences, err := schedule.Extract(day, opts.Channels)
		if err != nil {
			return nil, fmt.Errorf("extract %s: %w", src.Name(), err)
		}

		opts.Log.Debug("processing file", "file", src.Name(), "programs", len(occurrences))
		for _, occ := range occurrences {
			opts.Log.Debug("found program", "name", occ.Name, "start", occ.Start.Format(time.RFC3339))
			c.Add(occ)
		}
	}

	return c.Entries(), nil
}

type slotKey struct {
	name    string
	channel string
	weekday int
}

// slot is a tolerance-bounded time-of-day window for one key. Bounds only
// ever widen; slots are never split.
type slot struct {
	earliest time.Duration
	latest   time.Duration
	dates    map[model.Date]struct{}
}

func (s *slot) accepts(t, tolerance time.Duration) bool {
	return s.earliest-tolerance <= t && t <= s.latest+tolerance
}

func (s *slot) merge(t time.Duration, d model.Date) {
	if t < s.earliest {
		s.earliest = t
	}
	if t > s.latest {
		s.latest = t
	}
	s.dates[d] = struct{}{}
}

// Clusterer accumulates occurrences into slots. It is not safe for
// concurrent use; each analysis run owns its own Clusterer.
type Clusterer struct {
	opts  Options
	slots map[slotKey][]*slot
	keys  []slotKey
}

// New returns an empty Clusterer.
func New(opts Options) *Clusterer {
	return &Clusterer{
		opts:  opts.withDefaults(),
		slots: make(map[slotKey][]*slot),
	}
}

// Add merges occ into the first slot of its (name, weekday) group that
// accepts its time of day, or opens a new slot. First match wins even when a
// later slot would be closer.
func (c *Clusterer) Add(occ model.Occurrence) {
	key := slotKey{name: occ.Name, weekday: occ.Weekday()}
	if c.opts.Channels == schedule.ChannelAll {
		key.channel = occ.Channel
	}
	t := occ.TimeOfDay()
	d := occ.Date()

	slots, seen := c.slots[key]
	for _, s := range slots {
		if s.accepts(t, c.opts.Tolerance) {
			s.merge(t, d)
			return
		}
	}

	if !seen {
		c.keys = append(c.keys, key)
	}
	c.slots[key] = append(slots, &slot{
		earliest: t,
		latest:   t,
		dates:    map[model.Date]struct{}{d: {}},
	})
}

// Entries returns the slots seen on at least MinOccurrences distinct dates,
// in natural order. The representative time is the midpoint of the slot
// bounds, truncated toward the earliest bound.
func (c *Clusterer) Entries() []model.RecurringEntry {
	out := make([]model.RecurringEntry, 0)
	for _, key := range c.keys {
		for _, s := range c.slots[key] {
			if len(s.dates) < c.opts.MinOccurrences {
				continue
			}
			mid := s.earliest + (s.latest-s.earliest)/2
			entry := model.RecurringEntry{
				Weekday:  key.weekday,
				Hour:     int(mid / time.Hour),
				Minute:   int(mid % time.Hour / time.Minute),
				Name:     key.name,
				Channel:  key.channel,
				Dates:    sortedDates(s.dates),
				Earliest: s.earliest,
				Latest:   s.latest,
			}
			c.opts.Log.Debug("recurring slot",
				"name", entry.Name,
				"weekday", entry.Weekday,
				"time", fmt.Sprintf("%02d:%02d", entry.Hour, entry.Minute),
				"range", clock(s.earliest)+"-"+clock(s.latest),
				"occurrences", len(entry.Dates),
			)
			out = append(out, entry)
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

func sortedDates(set map[model.Date]struct{}) []model.Date {
	dates := make([]model.Date, 0, len(set))
	for d := range set {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

func clock(d time.Duration) string {
	return fmt.Sprintf("%02d:%02d", int(d/time.Hour), int(d%time.Hour/time.Minute))
}
