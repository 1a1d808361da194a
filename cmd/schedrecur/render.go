package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"schedrecur/internal/capture"
	"schedrecur/internal/model"
	"schedrecur/internal/pipeline"
	"schedrecur/internal/report"
)

type renderRequest struct {
	format   string
	output   string
	timezone string
	days     report.Weekdays
	result   pipeline.Result
	stdout   io.Writer
}

// render writes the result in the requested format to req.output, or to
// stdout when no output file is given.
func render(ctx context.Context, req renderRequest) error {
	if req.format == "png" {
		return renderPNG(ctx, req)
	}

	if req.output == "" {
		return renderTo(req.stdout, req)
	}
	f, err := os.Create(req.output)
	if err != nil {
		return err
	}
	if err := renderTo(f, req); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func renderTo(w io.Writer, req renderRequest) error {
	res := req.result
	switch req.format {
	case "text":
		return report.WriteText(w, res.Entries, res.Window, req.days)
	case "html":
		return report.RenderHTML(w, res.Entries, res.Window, htmlOptions(req))
	case "ics":
		return report.WriteICS(w, res.Entries, report.ICSOptions{Location: res.Location, Now: res.GeneratedAt})
	case "json":
		return report.WriteJSON(w, res.Entries, res.Window, req.days)
	default:
		return fmt.Errorf("%w: unknown format %q", model.ErrInvalidConfiguration, req.format)
	}
}

func htmlOptions(req renderRequest) report.HTMLOptions {
	return report.HTMLOptions{
		Weekdays: req.days,
		Today:    req.result.Today,
		Timezone: req.timezone,
	}
}

// renderPNG renders the HTML grid into a temporary file and snapshots it
// with headless Chromium.
func renderPNG(ctx context.Context, req renderRequest) error {
	dir, err := os.MkdirTemp("", "schedrecur-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	page := filepath.Join(dir, "grid.html")
	f, err := os.Create(page)
	if err != nil {
		return err
	}
	res := req.result
	if err := report.RenderHTML(f, res.Entries, res.Window, htmlOptions(req)); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	return capture.SnapshotPNG(ctx, capture.Options{
		URL:        "file://" + filepath.ToSlash(page),
		OutputPath: req.output,
	})
}
