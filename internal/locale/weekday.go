package locale

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"

	"schedrecur/internal/model"
)

const maxWeekday = 6 // Sunday, 0-based from Monday

// WeekdayNamer names a weekday (0=Monday..6=Sunday) in a given locale.
type WeekdayNamer interface {
	NameOf(weekday int, tag language.Tag) (string, error)
}

// English comes first so it is the matcher's fallback.
var supported = []language.Tag{language.English, language.Finnish, language.Swedish}

// abbreviations holds lowercase short weekday names, Monday first, indexed
// like supported.
var abbreviations = [][7]string{
	{"mon", "tue", "wed", "thu", "fri", "sat", "sun"},
	{"ma", "ti", "ke", "to", "pe", "la", "su"},
	{"mån", "tis", "ons", "tors", "fre", "lör", "sön"},
}

var matcher = language.NewMatcher(supported)

// Abbrev names weekdays with lowercase abbreviations. Tags without a
// table are matched to the closest supported language, falling back to
// English.
type Abbrev struct{}

var _ WeekdayNamer = Abbrev{}

func (Abbrev) NameOf(weekday int, tag language.Tag) (string, error) {
	if weekday < 0 || weekday > maxWeekday {
		return "", fmt.Errorf("%w: invalid weekday number: %d. Must be 0-%d.", model.ErrInvalidConfiguration, weekday, maxWeekday)
	}
	_, idx, _ := matcher.Match(tag)
	return abbreviations[idx][weekday], nil
}

// ParsePOSIX converts a POSIX locale string such as "fi_FI.UTF-8" or
// "sv_SE" into a language tag. "", "C" and "POSIX" map to English.
func ParsePOSIX(s string) (language.Tag, error) {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, ".@"); i >= 0 {
		s = s[:i]
	}
	switch s {
	case "", "C", "POSIX":
		return language.English, nil
	}
	tag, err := language.Parse(strings.ReplaceAll(s, "_", "-"))
	if err != nil {
		return language.Und, fmt.Errorf("%w: unknown locale %q: %v", model.ErrInvalidConfiguration, s, err)
	}
	return tag, nil
}
