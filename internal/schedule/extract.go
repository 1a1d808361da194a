package schedule

import (
	"fmt"
	"strings"
	"time"

	"schedrecur/internal/model"
)

// ChannelMode selects which channels of a ScheduleDay are extracted.
type ChannelMode string

const (
	// ChannelFirst extracts only the first channel in document order.
	ChannelFirst ChannelMode = "first"
	// ChannelAll extracts every channel and keeps channel identity.
	ChannelAll ChannelMode = "all"
)

// ParseChannelMode accepts "first", "all" or "" (first).
func ParseChannelMode(s string) (ChannelMode, error) {
	switch ChannelMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ChannelFirst:
		return ChannelFirst, nil
	case ChannelAll:
		return ChannelAll, nil
	default:
		return "", fmt.Errorf("%w: unknown channel mode %q", model.ErrInvalidConfiguration, s)
	}
}

// Extract yields one Occurrence per programme entry, in input order.
func Extract(day model.ScheduleDay, mode ChannelMode) ([]model.Occurrence, error) {
	channels := day.Channels
	if mode != ChannelAll && len(channels) > 1 {
		channels = channels[:1]
	}

	out := make([]model.Occurrence, 0)
	for _, ch := range channels {
		for i, p := range ch.Programmes {
			start, err := ParseStartTime(p.StartTime)
			if err != nil {
				return nil, fmt.Errorf("channel %q programme %d: %w", ch.ID, i, err)
			}
			out = append(out, model.Occurrence{
				Name:    NormalizeName(p.DisplayName()),
				Channel: ch.ID,
				Start:   start,
			})
		}
	}
	return out, nil
}

// Accepted start_time layouts, tried in order. Layouts without an offset are
// interpreted as UTC.
var startTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04Z07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
}

// ParseStartTime parses an ISO-8601 start time. A value without a UTC offset
// is assigned UTC.
func ParseStartTime(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: missing start_time", model.ErrMalformedInput)
	}
	for _, layout := range startTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unparseable start_time %q", model.ErrMalformedInput, raw)
}
