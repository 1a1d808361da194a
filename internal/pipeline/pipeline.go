// Package pipeline runs one full analysis: discover the archive window,
// cluster its schedule days and hand back everything the renderers need.
package pipeline

import (
	"time"

	"schedrecur/internal/archive"
	"schedrecur/internal/config"
	appLog "schedrecur/internal/log"
	"schedrecur/internal/model"
	"schedrecur/internal/recur"
)

// Request describes an analysis run.
type Request struct {
	Root  string
	Weeks int

	// Now fixes "today". Its location is the display timezone.
	Now time.Time

	Recur recur.Options
}

// Result is the outcome of a run.
type Result struct {
	Entries []model.RecurringEntry
	// Window holds the distinct dates of the analyzed files, ascending.
	Window      []model.Date
	Today       model.Date
	Location    *time.Location
	GeneratedAt time.Time
}

// FromConfig builds a Request from a validated config, with now taken in
// the configured timezone.
func FromConfig(cfg *config.Config, now time.Time, log appLog.Logger) (Request, error) {
	loc, err := cfg.Location()
	if err != nil {
		return Request{}, err
	}
	tolerance, err := cfg.ToleranceDuration()
	if err != nil {
		return Request{}, err
	}
	mode, err := cfg.ChannelMode()
	if err != nil {
		return Request{}, err
	}
	root, err := cfg.ArchiveRoot()
	if err != nil {
		return Request{}, err
	}
	return Request{
		Root:  root,
		Weeks: cfg.Weeks,
		Now:   now.In(loc),
		Recur: recur.Options{
			MinOccurrences: cfg.MinOccurrences,
			Tolerance:      tolerance,
			Channels:       mode,
			Log:            log,
		},
	}, nil
}

// Run discovers the window and analyzes it. Errors from archive discovery
// (including model.ErrInputNotFound) and from analysis are returned as is.
func Run(req Request) (Result, error) {
	if req.Now.IsZero() {
		req.Now = time.Now()
	}
	log := req.Recur.Log

	start := time.Now()
	files, err := archive.Discover(req.Root, req.Weeks, req.Now, log)
	if err != nil {
		return Result{}, err
	}

	sources := make([]recur.Source, 0, len(files))
	for _, f := range files {
		sources = append(sources, f)
	}
	entries, err := recur.Analyze(sources, req.Recur)
	if err != nil {
		return Result{}, err
	}

	log.Info("analysis complete",
		"files", len(files),
		"entries", len(entries),
		"elapsed", time.Since(start).String(),
	)

	return Result{
		Entries:     entries,
		Window:      archive.Dates(files),
		Today:       model.DateOf(req.Now),
		Location:    req.Now.Location(),
		GeneratedAt: req.Now,
	}, nil
}
